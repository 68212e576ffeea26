package scheduler

import (
	"errors"
	"slices"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

var ErrUnknownStrategy = errors.New("未知的分配策略")

// Policy 决定每次选人时候选教师的扫描顺序。
// 引擎对同一次选人的两个阶段使用同一个顺序，每个阶段最多扫描一遍。
type Policy interface {
	// Order 返回名单下标的扫描顺序，loads 为本次运行中每个教师已分配的次数
	Order(loads []int) []int
	// Commit 通知策略某个教师被选中
	Commit(idx int)
}

func NewPolicy(strategy domain.Strategy, staff []*domain.StaffMember) (Policy, error) {
	switch strategy {
	case domain.StrategyLoadSorted, "":
		return NewLoadSortedPolicy(staff), nil
	case domain.StrategyCursor:
		return NewCursorPolicy(len(staff)), nil
	default:
		return nil, ErrUnknownStrategy
	}
}

// LoadSortedPolicy 按 (已分配次数升序, 优先级降序, 原始顺序升序) 排序
type LoadSortedPolicy struct {
	ranks []int
}

var _ Policy = (*LoadSortedPolicy)(nil)

func NewLoadSortedPolicy(staff []*domain.StaffMember) *LoadSortedPolicy {
	ranks := make([]int, len(staff))
	for i, s := range staff {
		ranks[i] = s.Rank()
	}
	return &LoadSortedPolicy{ranks: ranks}
}

func (p *LoadSortedPolicy) Order(loads []int) []int {
	order := make([]int, len(p.ranks))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if loads[a] != loads[b] {
			return loads[a] - loads[b]
		}
		// 优先级越低（数值越大）越靠前
		if p.ranks[a] != p.ranks[b] {
			if p.ranks[a] > p.ranks[b] {
				return -1
			}
			return 1
		}
		return a - b
	})
	return order
}

func (p *LoadSortedPolicy) Commit(int) {}

// CursorPolicy 单调前进的游标，每次从游标处开始轮转扫描
type CursorPolicy struct {
	n      int
	cursor int
}

var _ Policy = (*CursorPolicy)(nil)

func NewCursorPolicy(n int) *CursorPolicy {
	return &CursorPolicy{n: n}
}

func (p *CursorPolicy) Order([]int) []int {
	order := make([]int, p.n)
	for i := range order {
		order[i] = (p.cursor + i) % p.n
	}
	return order
}

func (p *CursorPolicy) Commit(idx int) {
	p.cursor = (idx + 1) % p.n
}
