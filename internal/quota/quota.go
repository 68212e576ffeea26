package quota

import (
	"errors"
	"slices"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

var ErrNoStaff = errors.New("没有可用于分配配额的教师")

// Order 返回名单下标，按 (优先级, 原始顺序) 升序
func Order(staff []*domain.StaffMember) []int {
	order := make([]int, len(staff))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ra, rb := staff[a].Rank(), staff[b].Rank()
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		}
		return a - b
	})
	return order
}

// Divide 把 demand 分给 count 个已按优先级排好序的教师。
// 每人先得 demand / count，余数从最不优先的教师开始每人加 1。
func Divide(demand, count int) ([]int, error) {
	if count <= 0 {
		return nil, ErrNoStaff
	}

	base := demand / count
	remainder := demand % count

	quotas := make([]int, count)
	for i := range quotas {
		quotas[i] = base
	}
	for i := 0; i < remainder; i++ {
		quotas[count-1-i]++
	}
	return quotas, nil
}

// Quotas 某一角色按名单下标索引的配额
type Quotas []int

func (q Quotas) Sum() int {
	sum := 0
	for _, v := range q {
		sum += v
	}
	return sum
}

// Allocate 计算主监考和副监考的配额，两者都以 demand 为总量
func Allocate(staff []*domain.StaffMember, demand int) (primary Quotas, secondary Quotas, err error) {
	order := Order(staff)
	divided, err := Divide(demand, len(order))
	if err != nil {
		return nil, nil, err
	}

	primary = make(Quotas, len(staff))
	for pos, idx := range order {
		primary[idx] = divided[pos]
	}
	secondary = slices.Clone(primary)

	return primary, secondary, nil
}
