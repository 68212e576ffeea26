package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/exclusion"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/utils"
)

func priority(p int) *int {
	return &p
}

func singleCellGrid() domain.GridConfig {
	return domain.GridConfig{DayCount: 1, GradeCount: 1, RoomsPerGrade: 1, PeriodCounts: [][]int{{1}}}
}

func schedule(t *testing.T, input Input) *Result {
	t.Helper()

	s, err := New(input)
	require.NoError(t, err)

	res, err := s.Schedule(context.Background())
	require.NoError(t, err)
	return res
}

func largeInput(strategy domain.Strategy, multiRoom, dualRole bool) Input {
	roster := make([]*domain.StaffMember, 0, 20)
	for i := 0; i < 20; i++ {
		s := &domain.StaffMember{Name: fmt.Sprintf("T%02d", i+1)}
		switch i % 5 {
		case 0:
			s.ExclusionText = fmt.Sprintf("D1P%d; D2P1", i%3+1)
		case 1:
			s.ExclusionText = fmt.Sprintf("C%d-%d", i%3+1, i%4+1)
		case 2:
			s.ExclusionText = fmt.Sprintf("D2P2@%d-1; garbage", i%3+1)
		}
		if i%4 == 0 {
			s.Priority = priority(i % 3)
		}
		roster = append(roster, s)
	}

	return Input{
		Roster: roster,
		Grid: domain.GridConfig{
			DayCount:      2,
			GradeCount:    3,
			RoomsPerGrade: 3,
			PeriodCounts:  [][]int{{3, 2, 1}, {2, 2, 0}},
		},
		AllowMultiRoom: multiRoom,
		AllowDualRole:  dualRole,
		Strategy:       strategy,
	}
}

func TestSchedule_ExcludedStaffNeverAssigned(t *testing.T) {
	for _, strategy := range []domain.Strategy{domain.StrategyLoadSorted, domain.StrategyCursor} {
		t.Run(string(strategy), func(t *testing.T) {
			res := schedule(t, Input{
				Roster: []*domain.StaffMember{
					{Name: "A", ExclusionText: "D1P1"},
					{Name: "B"},
					{Name: "C"},
				},
				Grid:     singleCellGrid(),
				Strategy: strategy,
			})

			require.Len(t, res.Entries, 1)
			entry := res.Entries[0]
			require.NotEqual(t, "A", entry.Primary)
			require.NotEqual(t, "A", entry.Secondary)
			require.NotEqual(t, entry.Primary, entry.Secondary)
			// C 拿到唯一的余数配额，B 通过补位成为副监考
			require.Equal(t, "C", entry.Primary)
			require.Equal(t, "B", entry.Secondary)
			require.Equal(t, 0, res.Shortage)
		})
	}
}

func TestSchedule_Properties(t *testing.T) {
	for _, strategy := range []domain.Strategy{domain.StrategyLoadSorted, domain.StrategyCursor} {
		for _, flags := range [][2]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
			name := fmt.Sprintf("%s/multi=%v/dual=%v", strategy, flags[0], flags[1])
			t.Run(name, func(t *testing.T) {
				input := largeInput(strategy, flags[0], flags[1])
				s, err := New(input)
				require.NoError(t, err)

				res, err := s.Schedule(context.Background())
				require.NoError(t, err)

				cells := s.Grid().CellCount()
				require.Len(t, res.Entries, cells)

				primarySum, secondarySum := 0, 0
				for _, q := range res.Quotas {
					primarySum += q.Primary
					secondarySum += q.Secondary
				}
				require.Equal(t, cells, primarySum)
				require.Equal(t, cells, secondarySum)

				violations := utils.ValidateAssignment(res.Entries, exclusion.FromRoster(input.Roster), utils.ValidateOptions{
					AllowMultiRoom: input.AllowMultiRoom,
					AllowDualRole:  input.AllowDualRole,
				})
				require.Empty(t, violations)

				perSlot := make(map[domain.Slot]map[string]domain.Cell)
				for _, e := range res.Entries {
					slot := domain.Slot{Day: e.Day, Period: e.Period}
					if perSlot[slot] == nil {
						perSlot[slot] = make(map[string]domain.Cell)
					}
					if !input.AllowDualRole && e.Primary != domain.Unassigned {
						require.NotEqual(t, e.Primary, e.Secondary)
					}
					for _, n := range []string{e.Primary, e.Secondary} {
						if n == domain.Unassigned {
							continue
						}
						cell := domain.Cell{Grade: e.Grade, Room: e.Room}
						if at, ok := perSlot[slot][n]; ok && !input.AllowMultiRoom {
							require.Equal(t, cell, at, "%s 在同一时段出现在两个考场", n)
						}
						perSlot[slot][n] = cell
					}
				}
			})
		}
	}
}

func TestSchedule_Deterministic(t *testing.T) {
	for _, strategy := range []domain.Strategy{domain.StrategyLoadSorted, domain.StrategyCursor} {
		t.Run(string(strategy), func(t *testing.T) {
			first := schedule(t, largeInput(strategy, false, false))
			second := schedule(t, largeInput(strategy, false, false))

			b1, err := json.Marshal(first.Entries)
			require.NoError(t, err)
			b2, err := json.Marshal(second.Entries)
			require.NoError(t, err)
			require.Equal(t, b1, b2)
		})
	}
}

func TestSchedule_EvenLoadWithoutExclusions(t *testing.T) {
	roster := make([]*domain.StaffMember, 6)
	for i := range roster {
		roster[i] = &domain.StaffMember{Name: fmt.Sprintf("T%d", i+1)}
	}

	res := schedule(t, Input{
		Roster: roster,
		Grid: domain.GridConfig{
			DayCount:      1,
			GradeCount:    1,
			RoomsPerGrade: 3,
			PeriodCounts:  [][]int{{4}},
		},
	})

	require.Equal(t, 0, res.Shortage)
	for _, load := range res.Loads {
		require.Equal(t, 4, load.Total)
		require.Equal(t, 4.0, load.IdealTarget)
	}
}

func TestSchedule_Shortage(t *testing.T) {
	t.Run("single staff without dual role leaves secondary empty", func(t *testing.T) {
		res := schedule(t, Input{
			Roster: []*domain.StaffMember{{Name: "A"}},
			Grid:   singleCellGrid(),
		})

		require.Equal(t, "A", res.Entries[0].Primary)
		require.Equal(t, domain.Unassigned, res.Entries[0].Secondary)
		require.Equal(t, 1, res.Shortage)
	})

	t.Run("dual role lets the same staff hold both roles", func(t *testing.T) {
		res := schedule(t, Input{
			Roster:        []*domain.StaffMember{{Name: "A"}},
			Grid:          singleCellGrid(),
			AllowDualRole: true,
		})

		require.Equal(t, "A", res.Entries[0].Primary)
		require.Equal(t, "A", res.Entries[0].Secondary)
		require.Equal(t, 0, res.Shortage)
	})

	t.Run("multi room off leaves later rooms empty", func(t *testing.T) {
		input := Input{
			Roster: []*domain.StaffMember{{Name: "A"}, {Name: "B"}},
			Grid:   domain.GridConfig{DayCount: 1, GradeCount: 1, RoomsPerGrade: 2, PeriodCounts: [][]int{{1}}},
		}

		res := schedule(t, input)
		require.Equal(t, 2, res.Shortage)
		require.Equal(t, domain.Unassigned, res.Entries[1].Primary)
		require.Equal(t, domain.Unassigned, res.Entries[1].Secondary)

		input.AllowMultiRoom = true
		res = schedule(t, input)
		require.Equal(t, 0, res.Shortage)
	})

	t.Run("everyone excluded", func(t *testing.T) {
		res := schedule(t, Input{
			Roster: []*domain.StaffMember{{Name: "A", ExclusionText: "1-1"}, {Name: "B", ExclusionText: "D1P1"}},
			Grid:   singleCellGrid(),
		})

		require.Equal(t, 2, res.Shortage)
	})
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Input{Grid: singleCellGrid()})
	require.ErrorIs(t, err, ErrEmptyRoster)

	_, err = New(Input{Roster: []*domain.StaffMember{{Name: "A"}, {Name: "A"}}, Grid: singleCellGrid()})
	require.ErrorIs(t, err, ErrDuplicateStaff)

	_, err = New(Input{Roster: []*domain.StaffMember{{Name: "A"}}, Grid: singleCellGrid(), Strategy: "ilp"})
	require.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = New(Input{Roster: []*domain.StaffMember{{Name: "A"}}, Grid: domain.GridConfig{}})
	require.Error(t, err)
}

func TestSchedule_Cancelled(t *testing.T) {
	s, err := New(largeInput(domain.StrategyLoadSorted, false, false))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Schedule(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, res)
}

func TestSchedule_BackfillBeyondQuota(t *testing.T) {
	res := schedule(t, Input{
		Roster: []*domain.StaffMember{
			{Name: "A", ExclusionText: "D1P1; D1P2"},
			{Name: "B"},
		},
		Grid:          domain.GridConfig{DayCount: 1, GradeCount: 1, RoomsPerGrade: 1, PeriodCounts: [][]int{{2}}},
		AllowDualRole: true,
	})

	require.Equal(t, []StaffQuota{
		{Name: "A", Primary: 1, Secondary: 1},
		{Name: "B", Primary: 1, Secondary: 1},
	}, res.Quotas)
	require.Zero(t, res.Shortage)
	require.Equal(t, 0, res.Loads[0].Total)
	require.Equal(t, 2, res.Loads[1].PrimaryCount)
	require.Equal(t, 2, res.Loads[1].SecondaryCount)
}
