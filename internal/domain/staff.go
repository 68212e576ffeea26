package domain

// StaffMember 监考教师，Name 在同一名单中唯一
type StaffMember struct {
	Name          string `json:"name"`
	ExclusionText string `json:"exclude"`
	Priority      *int   `json:"priority"` // 为 nil 时视为优先级最低
	Email         string `json:"email"`
}

// Rank 返回用于排序的优先级，数值越小越优先
func (s *StaffMember) Rank() int {
	if s.Priority == nil {
		return MaxRank
	}
	return *s.Priority
}

const MaxRank = int(^uint(0) >> 1)
