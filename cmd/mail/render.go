package main

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

// queuedMail 与 domain.MailMessage 相同，但 Data 延迟到确定类型后再解析
type queuedMail struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

var templateFuncs = template.FuncMap{
	"roleLabel": func(role string) string {
		switch domain.Role(role) {
		case domain.RolePrimary:
			return "主监考"
		case domain.RoleSecondary:
			return "副监考"
		default:
			return role
		}
	},
}

func parseTemplate(dir, name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFiles(filepath.Join(dir, name))
}

// buildMail 根据队列中的消息构建邮件，返回错误的消息不应重新入队
func buildMail(from, templateDir string, body []byte) (*mail.Msg, error) {
	queued := queuedMail{}
	if err := json.Unmarshal(body, &queued); err != nil {
		return nil, fmt.Errorf("邮件信息反序列化失败: %w", err)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(queued.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	switch queued.Type {
	case domain.MailTypeAssignmentNotice:
		data := domain.AssignmentNoticeMailData{}
		if err := json.Unmarshal(queued.Data, &data); err != nil {
			return nil, fmt.Errorf("邮件数据反序列化失败: %w", err)
		}
		tmpl, err := parseTemplate(templateDir, "assignment_notice_email.html")
		if err != nil {
			return nil, fmt.Errorf("无法解析邮件模板: %w", err)
		}
		if err := m.SetBodyHTMLTemplate(tmpl, data); err != nil {
			return nil, fmt.Errorf("无法设置邮件正文: %w", err)
		}
		m.Subject(fmt.Sprintf("监考安排通知 - %s", data.PlanName))
	default:
		return nil, fmt.Errorf("不支持的邮件类型: %s", queued.Type)
	}

	return m, nil
}
