package domain

// GridConfig 考试网格配置
type GridConfig struct {
	DayCount      int     `json:"dayCount"`
	GradeCount    int     `json:"gradeCount"`
	RoomsPerGrade int     `json:"roomsPerGrade"`
	PeriodCounts  [][]int `json:"periodCounts"` // PeriodCounts[day-1][grade-1] = 该年级当天的节数
}

// Slot 表示一个 (day, period)
type Slot struct {
	Day    int `json:"day"`
	Period int `json:"period"`
}

// Cell 表示一个 (grade, room)
type Cell struct {
	Grade int `json:"grade"`
	Room  int `json:"room"`
}

type CellKey struct {
	Day    int
	Period int
	Grade  int
	Room   int
}
