package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const MailTypeAssignmentNotice = "assignment_notice"

type AssignmentNoticeDuty struct {
	Day    int    `json:"day"`
	Period int    `json:"period"`
	Grade  int    `json:"grade"`
	Room   int    `json:"room"`
	Role   string `json:"role"`
}

type AssignmentNoticeMailData struct {
	PlanName  string                 `json:"planName"`
	StaffName string                 `json:"staffName"`
	Duties    []AssignmentNoticeDuty `json:"duties"`
}
