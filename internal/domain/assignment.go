package domain

import "time"

type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
)

// Unassigned 表示该角色没有被分配到任何人
const Unassigned = ""

type AssignmentEntry struct {
	Day       int    `json:"day"`
	Period    int    `json:"period"`
	Grade     int    `json:"grade"`
	Room      int    `json:"room"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

func (e *AssignmentEntry) Key() CellKey {
	return CellKey{Day: e.Day, Period: e.Period, Grade: e.Grade, Room: e.Room}
}

// StaffFor 返回该格子中指定角色的教师
func (e *AssignmentEntry) StaffFor(role Role) string {
	if role == RolePrimary {
		return e.Primary
	}
	return e.Secondary
}

// Assignment 按 (day, period, grade, room) 升序排列
type Assignment []AssignmentEntry

func (a Assignment) Index() map[CellKey]*AssignmentEntry {
	index := make(map[CellKey]*AssignmentEntry, len(a))
	for i := range a {
		index[a[i].Key()] = &a[i]
	}
	return index
}

// Clone 深拷贝，手动编辑时不能修改原结果
func (a Assignment) Clone() Assignment {
	cloned := make(Assignment, len(a))
	copy(cloned, a)
	return cloned
}

type ViolationKind string

const (
	ViolationExclusion    ViolationKind = "exclusion"
	ViolationMultiRoom    ViolationKind = "multi_room"
	ViolationDualRole     ViolationKind = "dual_role"
	ViolationUnknownStaff ViolationKind = "unknown_staff"
)

type Violation struct {
	Day       int           `json:"day"`
	Period    int           `json:"period"`
	Grade     int           `json:"grade"`
	Room      int           `json:"room"`
	Role      Role          `json:"role"`
	StaffName string        `json:"staffName"`
	Kind      ViolationKind `json:"kind"`
}

type StaffLoad struct {
	Name           string  `json:"name"`
	PrimaryCount   int     `json:"primaryCount"`
	SecondaryCount int     `json:"secondaryCount"`
	Total          int     `json:"total"`
	IdealTarget    float64 `json:"idealTarget"`
}

// AssignmentResult 某个考试计划被保存下来的分配结果
type AssignmentResult struct {
	ID         int64      `json:"id"`
	ExamPlanID int64      `json:"examPlanID"`
	Entries    Assignment `json:"entries"`
	CreatedAt  time.Time  `json:"createdAt"`
	Version    int32      `json:"-"`
}
