package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/exclusion"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/grid"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/quota"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/utils"
)

var (
	ErrEmptyRoster    = errors.New("监考教师名单为空")
	ErrDuplicateStaff = errors.New("监考教师名单中存在重名")
)

type Scheduler struct {
	input   Input
	staff   []*domain.StaffMember
	grid    *grid.Grid
	index   *exclusion.Index
	primary quota.Quotas
	second  quota.Quotas
}

func New(input Input) (*Scheduler, error) {
	if len(input.Roster) == 0 {
		return nil, ErrEmptyRoster
	}

	seen := make(map[string]bool, len(input.Roster))
	for _, s := range input.Roster {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, errors.New("监考教师姓名不能为空")
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStaff, name)
		}
		seen[name] = true
	}

	if _, err := NewPolicy(input.Strategy, input.Roster); err != nil {
		return nil, err
	}

	g, err := grid.New(input.Grid)
	if err != nil {
		return nil, err
	}

	// 两个角色的总需求都等于整个考试期间的活跃考场数
	primary, secondary, err := quota.Allocate(input.Roster, g.CellCount())
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		input:   input,
		staff:   input.Roster,
		grid:    g,
		index:   exclusion.FromRoster(input.Roster),
		primary: primary,
		second:  secondary,
	}, nil
}

func (s *Scheduler) Grid() *grid.Grid {
	return s.grid
}

// Schedule 生成一份新的分配结果。相同输入多次调用得到完全相同的结果。
func (s *Scheduler) Schedule(ctx context.Context) (*Result, error) {
	policy, err := NewPolicy(s.input.Strategy, s.staff)
	if err != nil {
		return nil, err
	}

	roles := []*roleState{
		{role: domain.RolePrimary, remaining: append([]int{}, s.primary...)},
		{role: domain.RoleSecondary, remaining: append([]int{}, s.second...)},
	}
	loads := make([]int, len(s.staff))

	entries := make(domain.Assignment, 0, s.grid.CellCount())
	shortage := 0

	for _, slot := range s.grid.Slots() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 本时段已经被安排的教师 -> 所在考场
		taken := make(map[int]domain.Cell)

		for _, cell := range s.grid.ActiveCells(slot.Day, slot.Period) {
			primaryIdx := s.pick(policy, roles[0], loads, taken, slot, cell, -1)
			secondaryIdx := s.pick(policy, roles[1], loads, taken, slot, cell, primaryIdx)

			entry := domain.AssignmentEntry{
				Day:       slot.Day,
				Period:    slot.Period,
				Grade:     cell.Grade,
				Room:      cell.Room,
				Primary:   domain.Unassigned,
				Secondary: domain.Unassigned,
			}
			if primaryIdx >= 0 {
				entry.Primary = s.staff[primaryIdx].Name
			} else {
				shortage++
			}
			if secondaryIdx >= 0 {
				entry.Secondary = s.staff[secondaryIdx].Name
			} else {
				shortage++
			}
			entries = append(entries, entry)
		}
	}

	// 自动生成的结果必须满足所有约束
	violations := utils.ValidateAssignment(entries, s.index, utils.ValidateOptions{
		AllowMultiRoom: s.input.AllowMultiRoom,
		AllowDualRole:  s.input.AllowDualRole,
	})
	if len(violations) > 0 {
		return nil, fmt.Errorf("自动分配结果存在 %d 处冲突", len(violations))
	}

	quotas := make([]StaffQuota, len(s.staff))
	for i, staff := range s.staff {
		quotas[i] = StaffQuota{Name: staff.Name, Primary: s.primary[i], Secondary: s.second[i]}
	}

	return &Result{
		Entries:  entries,
		Quotas:   quotas,
		Loads:    Summarize(entries, s.staff),
		Shortage: shortage,
	}, nil
}

// pick 先在还有配额的教师中选人，没有合适人选时忽略配额再扫描一遍。都找不到返回 -1。
func (s *Scheduler) pick(policy Policy, rs *roleState, loads []int, taken map[int]domain.Cell, slot domain.Slot, cell domain.Cell, primaryIdx int) int {
	order := policy.Order(loads)

	for _, respectQuota := range []bool{true, false} {
		for _, idx := range order {
			if respectQuota && rs.remaining[idx] <= 0 {
				continue
			}
			if !s.eligible(idx, rs.role, taken, slot, cell, primaryIdx) {
				continue
			}

			// 补位阶段选中的教师配额已经用完，不再扣减
			if respectQuota {
				rs.remaining[idx]--
			}
			taken[idx] = cell
			loads[idx]++
			policy.Commit(idx)
			return idx
		}
	}

	return -1
}

func (s *Scheduler) eligible(idx int, role domain.Role, taken map[int]domain.Cell, slot domain.Slot, cell domain.Cell, primaryIdx int) bool {
	if s.index.IsExcluded(s.staff[idx].Name, slot.Day, slot.Period, cell.Grade, cell.Room) {
		return false
	}

	// 同一考场的主副监考由 AllowDualRole 控制，这里只拦截其他考场
	if at, exists := taken[idx]; exists && at != cell && !s.input.AllowMultiRoom {
		return false
	}

	if role == domain.RoleSecondary && idx == primaryIdx && !s.input.AllowDualRole {
		return false
	}

	return true
}
