package domain

import "time"

type Strategy string

const (
	StrategyLoadSorted Strategy = "load-sorted"
	StrategyCursor     Strategy = "cursor"
)

type ExamPlan struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Grid           GridConfig `json:"grid"`
	AllowMultiRoom bool       `json:"allowMultiRoom"`
	AllowDualRole  bool       `json:"allowDualRole"`
	Strategy       Strategy   `json:"strategy"`
	CreatedAt      time.Time  `json:"createdAt"`
	Version        int32      `json:"-"`
}
