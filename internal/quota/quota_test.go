package quota

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

func priority(p int) *int {
	return &p
}

func TestOrder(t *testing.T) {
	staff := []*domain.StaffMember{
		{Name: "none-1"},
		{Name: "p2", Priority: priority(2)},
		{Name: "p1", Priority: priority(1)},
		{Name: "none-2"},
		{Name: "p1-late", Priority: priority(1)},
	}

	require.Equal(t, []int{2, 4, 1, 0, 3}, Order(staff))
}

func TestDivide(t *testing.T) {
	t.Run("remainder goes to least favored first", func(t *testing.T) {
		quotas, err := Divide(7, 5)

		require.NoError(t, err)
		require.Equal(t, []int{1, 1, 1, 2, 2}, quotas)
	})

	t.Run("demand smaller than staff", func(t *testing.T) {
		quotas, err := Divide(2, 4)

		require.NoError(t, err)
		require.Equal(t, []int{0, 0, 1, 1}, quotas)
	})

	t.Run("exact division", func(t *testing.T) {
		quotas, err := Divide(9, 3)

		require.NoError(t, err)
		require.Equal(t, []int{3, 3, 3}, quotas)
	})

	t.Run("no staff", func(t *testing.T) {
		_, err := Divide(3, 0)

		require.ErrorIs(t, err, ErrNoStaff)
	})
}

func TestAllocate(t *testing.T) {
	// 名单顺序与优先级顺序不同，配额要按名单下标返回
	staff := []*domain.StaffMember{
		{Name: "S5"},
		{Name: "S1", Priority: priority(1)},
		{Name: "S3", Priority: priority(3)},
		{Name: "S2", Priority: priority(2)},
		{Name: "S4", Priority: priority(4)},
	}

	primary, secondary, err := Allocate(staff, 7)

	require.NoError(t, err)
	require.Equal(t, Quotas{2, 1, 1, 1, 2}, primary)
	require.Equal(t, primary, secondary)
	require.Equal(t, 7, primary.Sum())
	require.Equal(t, 7, secondary.Sum())

	for demand := 0; demand < 40; demand++ {
		p, s, err := Allocate(staff, demand)
		require.NoError(t, err)
		require.Equal(t, demand, p.Sum())
		require.Equal(t, demand, s.Sum())
	}
}
