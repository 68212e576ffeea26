package utils

import (
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/exclusion"
)

type ValidateOptions struct {
	AllowMultiRoom bool
	AllowDualRole  bool
}

// ValidateAssignment 检查分配结果（自动生成或手动修改）中的所有冲突。
// 手动修改会绕过分配引擎的约束，所以每次修改之后都要重新检查。
func ValidateAssignment(a domain.Assignment, idx *exclusion.Index, opts ValidateOptions) []domain.Violation {
	violations := make([]domain.Violation, 0)

	// 每个时段中每个教师第一次出现的考场
	occupied := make(map[domain.Slot]map[string]domain.Cell)

	for _, entry := range a {
		slot := domain.Slot{Day: entry.Day, Period: entry.Period}
		cell := domain.Cell{Grade: entry.Grade, Room: entry.Room}
		if _, exists := occupied[slot]; !exists {
			occupied[slot] = make(map[string]domain.Cell)
		}

		for _, role := range []domain.Role{domain.RolePrimary, domain.RoleSecondary} {
			name := entry.StaffFor(role)
			if name == domain.Unassigned {
				continue
			}

			violation := domain.Violation{
				Day:       entry.Day,
				Period:    entry.Period,
				Grade:     entry.Grade,
				Room:      entry.Room,
				Role:      role,
				StaffName: name,
			}

			if !idx.Has(name) {
				violation.Kind = domain.ViolationUnknownStaff
				violations = append(violations, violation)
			} else if idx.IsExcluded(name, entry.Day, entry.Period, entry.Grade, entry.Room) {
				violation.Kind = domain.ViolationExclusion
				violations = append(violations, violation)
			}

			if role == domain.RoleSecondary && name == entry.Primary && !opts.AllowDualRole {
				violation.Kind = domain.ViolationDualRole
				violations = append(violations, violation)
			}

			if at, exists := occupied[slot][name]; !exists {
				occupied[slot][name] = cell
			} else if at != cell && !opts.AllowMultiRoom {
				violation.Kind = domain.ViolationMultiRoom
				violations = append(violations, violation)
			}
		}
	}

	return violations
}
