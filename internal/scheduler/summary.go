package scheduler

import (
	"math"
	"slices"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

// Summarize 统计名单中每个教师的监考次数，不在名单中的名字不计入
// IdealTarget 按需求计算：每个考场主副两个角色，未分配的角色同样计入。
func Summarize(a domain.Assignment, roster []*domain.StaffMember) []domain.StaffLoad {
	loads := make([]domain.StaffLoad, len(roster))
	position := make(map[string]int, len(roster))
	for i, s := range roster {
		loads[i].Name = s.Name
		position[s.Name] = i
	}

	for _, entry := range a {
		if i, ok := position[entry.Primary]; ok && entry.Primary != domain.Unassigned {
			loads[i].PrimaryCount++
		}
		if i, ok := position[entry.Secondary]; ok && entry.Secondary != domain.Unassigned {
			loads[i].SecondaryCount++
		}
	}

	ideal := 0.0
	if len(roster) > 0 {
		// 每个考场需要主副两名监考
		ideal = math.Round(float64(2*len(a))/float64(len(roster))*100) / 100
	}
	for i := range loads {
		loads[i].Total = loads[i].PrimaryCount + loads[i].SecondaryCount
		loads[i].IdealTarget = ideal
	}

	return loads
}

type SlotSummary struct {
	Day      int      `json:"day"`
	Period   int      `json:"period"`
	Proctors []string `json:"proctors"`
}

// SummarizeSlots 按时段汇总监考教师，按考场顺序先主后副，去重
func SummarizeSlots(a domain.Assignment) []SlotSummary {
	summaries := make([]SlotSummary, 0)
	for _, entry := range a {
		n := len(summaries)
		if n == 0 || summaries[n-1].Day != entry.Day || summaries[n-1].Period != entry.Period {
			summaries = append(summaries, SlotSummary{Day: entry.Day, Period: entry.Period, Proctors: make([]string, 0)})
			n++
		}
		for _, name := range []string{entry.Primary, entry.Secondary} {
			if name != domain.Unassigned && !slices.Contains(summaries[n-1].Proctors, name) {
				summaries[n-1].Proctors = append(summaries[n-1].Proctors, name)
			}
		}
	}
	return summaries
}
