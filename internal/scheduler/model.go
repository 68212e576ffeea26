package scheduler

import (
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

// Input 一次分配所需的全部输入，分配过程中不会被修改
type Input struct {
	Roster         []*domain.StaffMember
	Grid           domain.GridConfig
	AllowMultiRoom bool
	AllowDualRole  bool
	Strategy       domain.Strategy
}

type StaffQuota struct {
	Name      string `json:"name"`
	Primary   int    `json:"primary"`
	Secondary int    `json:"secondary"`
}

type Result struct {
	Entries  domain.Assignment  `json:"entries"`
	Quotas   []StaffQuota       `json:"quotas"`
	Loads    []domain.StaffLoad `json:"loads"`
	Shortage int                `json:"shortage"` // 未分配到人的角色数量
}

// 每个角色的运行状态
type roleState struct {
	role      domain.Role
	remaining []int
}
