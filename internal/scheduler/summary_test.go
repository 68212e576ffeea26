package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

func TestSummarize(t *testing.T) {
	roster := []*domain.StaffMember{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	a := domain.Assignment{
		{Day: 1, Period: 1, Grade: 1, Room: 1, Primary: "A", Secondary: "B"},
		{Day: 1, Period: 1, Grade: 1, Room: 2, Primary: "C", Secondary: domain.Unassigned},
		{Day: 1, Period: 2, Grade: 1, Room: 1, Primary: "A", Secondary: "ghost"},
	}

	loads := Summarize(a, roster)

	require.Equal(t, []domain.StaffLoad{
		{Name: "A", PrimaryCount: 2, Total: 2, IdealTarget: 2},
		{Name: "B", SecondaryCount: 1, Total: 1, IdealTarget: 2},
		{Name: "C", PrimaryCount: 1, Total: 1, IdealTarget: 2},
	}, loads)
}

func TestSummarize_RoundsIdealTarget(t *testing.T) {
	roster := []*domain.StaffMember{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	a := domain.Assignment{{Day: 1, Period: 1, Grade: 1, Room: 1}}

	loads := Summarize(a, roster)

	require.Equal(t, 0.67, loads[0].IdealTarget)
}

func TestSummarizeSlots(t *testing.T) {
	a := domain.Assignment{
		{Day: 1, Period: 1, Grade: 1, Room: 1, Primary: "A", Secondary: "B"},
		{Day: 1, Period: 1, Grade: 1, Room: 2, Primary: "C", Secondary: "A"},
		{Day: 1, Period: 2, Grade: 1, Room: 1, Primary: domain.Unassigned, Secondary: "B"},
	}

	require.Equal(t, []SlotSummary{
		{Day: 1, Period: 1, Proctors: []string{"A", "B", "C"}},
		{Day: 1, Period: 2, Proctors: []string{"B"}},
	}, SummarizeSlots(a))
}
