package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/exclusion"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/repository"
)

var ErrMissingNameColumn = errors.New("名单中必须包含 name 列")

// 表格软件导出的 UTF-8 文件常带有 BOM
const utf8BOM = "\ufeff"

// ParseRoster 读取 name, exclude, priority, email 四列，只有 name 是必需的。
// 行的顺序就是名单顺序，姓名为空的行会被跳过。
func ParseRoster(r io.Reader) ([]*domain.StaffMember, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingNameColumn
		}
		return nil, err
	}

	columns := make(map[string]int, len(headers))
	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, utf8BOM)
		}
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, ErrMissingNameColumn
	}

	field := func(row []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	roster := make([]*domain.StaffMember, 0)
	seen := make(map[string]bool)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		name := field(row, "name")
		if name == "" {
			slog.Warn("跳过姓名为空的行", "line", line)
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("第 %d 行: 教师 %s 重复出现", line, name)
		}
		seen[name] = true

		staff := &domain.StaffMember{
			Name:          name,
			ExclusionText: field(row, "exclude"),
			Email:         field(row, "email"),
		}
		if raw := field(row, "priority"); raw != "" {
			priority, err := strconv.Atoi(raw)
			if err != nil || priority < 0 {
				return nil, fmt.Errorf("第 %d 行: 无法识别的优先级 %q", line, raw)
			}
			staff.Priority = &priority
		}

		roster = append(roster, staff)
	}

	return roster, nil
}

// ImportRoster 从 CSV 文件导入名单并覆盖考试计划原有的名单
func ImportRoster(r *repository.Repository, examPlanID int64, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	roster, err := ParseRoster(file)
	if err != nil {
		return 0, err
	}

	// 规则写错不会报错，这里提示一下哪些教师的规则一条都没有被识别
	for _, staff := range roster {
		if staff.ExclusionText != "" && exclusion.ParseText(staff.ExclusionText).Len() == 0 {
			slog.Warn("回避规则无法识别", "name", staff.Name, "exclude", staff.ExclusionText)
		}
	}

	if err := r.ReplaceRoster(examPlanID, roster); err != nil {
		return 0, err
	}

	return len(roster), nil
}
