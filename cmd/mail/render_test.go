package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

const testTemplateDir = "../../templates"

func TestBuildMail(t *testing.T) {
	body, err := json.Marshal(domain.MailMessage{
		Type: domain.MailTypeAssignmentNotice,
		To:   "zhangsan@school.edu",
		Data: domain.AssignmentNoticeMailData{
			PlanName:  "期末考试",
			StaffName: "张三",
			Duties: []domain.AssignmentNoticeDuty{
				{Day: 1, Period: 2, Grade: 3, Room: 4, Role: string(domain.RolePrimary)},
			},
		},
	})
	require.NoError(t, err)

	m, err := buildMail("noreply@school.edu", testTemplateDir, body)
	require.NoError(t, err)
	require.Equal(t, []string{"监考安排通知 - 期末考试"}, m.GetGenHeader(mail.HeaderSubject))

	buf := &bytes.Buffer{}
	_, err = m.WriteTo(buf)
	require.NoError(t, err)
	require.NotEmpty(t, buf.String())
}

func TestBuildMailRejectsBadMessages(t *testing.T) {
	_, err := buildMail("noreply@school.edu", testTemplateDir, []byte("not json"))
	require.Error(t, err)

	_, err = buildMail("noreply@school.edu", testTemplateDir, []byte(`{"type":"unknown","to":"a@b.cn"}`))
	require.Error(t, err)

	_, err = buildMail("noreply@school.edu", testTemplateDir, []byte(`{"type":"assignment_notice","to":"not an address"}`))
	require.Error(t, err)
}

func TestRoleLabel(t *testing.T) {
	label := templateFuncs["roleLabel"].(func(string) string)
	require.Equal(t, "主监考", label("primary"))
	require.Equal(t, "副监考", label("secondary"))
	require.Equal(t, "other", label("other"))
}
