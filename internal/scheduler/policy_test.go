package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

func TestLoadSortedPolicy_Order(t *testing.T) {
	staff := []*domain.StaffMember{
		{Name: "p1", Priority: priority(1)},
		{Name: "none"},
		{Name: "p2", Priority: priority(2)},
		{Name: "p2-late", Priority: priority(2)},
	}
	policy := NewLoadSortedPolicy(staff)

	t.Run("least favored first when loads are equal", func(t *testing.T) {
		require.Equal(t, []int{1, 2, 3, 0}, policy.Order([]int{0, 0, 0, 0}))
	})

	t.Run("lower load wins over priority", func(t *testing.T) {
		require.Equal(t, []int{3, 0, 2, 1}, policy.Order([]int{0, 2, 1, 0}))
	})

	t.Run("commit does not change the order", func(t *testing.T) {
		policy.Commit(1)
		require.Equal(t, []int{1, 2, 3, 0}, policy.Order([]int{0, 0, 0, 0}))
	})
}

func TestCursorPolicy_Order(t *testing.T) {
	policy := NewCursorPolicy(4)

	require.Equal(t, []int{0, 1, 2, 3}, policy.Order(nil))

	policy.Commit(1)
	require.Equal(t, []int{2, 3, 0, 1}, policy.Order(nil))

	policy.Commit(3)
	require.Equal(t, []int{0, 1, 2, 3}, policy.Order(nil))
}

func TestNewPolicy(t *testing.T) {
	staff := []*domain.StaffMember{{Name: "A"}}

	p, err := NewPolicy("", staff)
	require.NoError(t, err)
	require.IsType(t, &LoadSortedPolicy{}, p)

	p, err = NewPolicy(domain.StrategyCursor, staff)
	require.NoError(t, err)
	require.IsType(t, &CursorPolicy{}, p)

	_, err = NewPolicy("random", staff)
	require.ErrorIs(t, err, ErrUnknownStrategy)
}
