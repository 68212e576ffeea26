package utils

import (
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/grid"
)

// CellEdit 对某个考场某个角色的手动修改，StaffName 为空表示取消分配
type CellEdit struct {
	Day       int         `json:"day" validate:"required,min=1"`
	Period    int         `json:"period" validate:"required,min=1"`
	Grade     int         `json:"grade" validate:"required,min=1"`
	Room      int         `json:"room" validate:"required,min=1"`
	Role      domain.Role `json:"role" validate:"required,oneof=primary secondary"`
	StaffName string      `json:"staffName"`
}

func (e *CellEdit) Key() domain.CellKey {
	return domain.CellKey{Day: e.Day, Period: e.Period, Grade: e.Grade, Room: e.Room}
}

// Align 按网格重新排列分配结果：网格中的每个活跃考场恰好对应一项，
// 原结果中找不到的考场记为未分配，网格中已不存在的考场被丢弃。
func Align(a domain.Assignment, g *grid.Grid) domain.Assignment {
	index := a.Index()
	aligned := make(domain.Assignment, 0, g.CellCount())

	for _, slot := range g.Slots() {
		for _, cell := range g.ActiveCells(slot.Day, slot.Period) {
			key := domain.CellKey{Day: slot.Day, Period: slot.Period, Grade: cell.Grade, Room: cell.Room}
			if entry, exists := index[key]; exists {
				aligned = append(aligned, *entry)
				continue
			}
			aligned = append(aligned, domain.AssignmentEntry{
				Day:       slot.Day,
				Period:    slot.Period,
				Grade:     cell.Grade,
				Room:      cell.Room,
				Primary:   domain.Unassigned,
				Secondary: domain.Unassigned,
			})
		}
	}

	return aligned
}

// ApplyPatch 在 a 的副本上应用手动修改，返回新的结果和被丢弃的修改。
// 指向非活跃考场的修改会被丢弃。返回的结果不做任何约束检查。
func ApplyPatch(a domain.Assignment, g *grid.Grid, edits []CellEdit) (domain.Assignment, []CellEdit) {
	patched := Align(a, g)
	index := patched.Index()
	discarded := make([]CellEdit, 0)

	for _, edit := range edits {
		entry, exists := index[edit.Key()]
		if !exists || !g.IsActive(edit.Key()) {
			discarded = append(discarded, edit)
			continue
		}

		switch edit.Role {
		case domain.RolePrimary:
			entry.Primary = edit.StaffName
		case domain.RoleSecondary:
			entry.Secondary = edit.StaffName
		default:
			discarded = append(discarded, edit)
		}
	}

	return patched, discarded
}
