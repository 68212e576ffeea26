package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/scheduler"
)

func intPtr(v int) *int {
	return &v
}

func TestBuildRoster(t *testing.T) {
	roster, err := buildRoster([]staffRequest{
		{Name: " 张三 ", Exclude: " D1P1 ", Priority: intPtr(1), Email: " zhangsan@school.edu "},
		{Name: "李四"},
	})
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.Equal(t, "张三", roster[0].Name)
	require.Equal(t, "D1P1", roster[0].ExclusionText)
	require.Equal(t, "zhangsan@school.edu", roster[0].Email)
	require.Equal(t, 1, roster[0].Rank())
	require.Equal(t, domain.MaxRank, roster[1].Rank())

	_, err = buildRoster([]staffRequest{{Name: "张三"}, {Name: "张三 "}})
	require.Error(t, err)

	_, err = buildRoster([]staffRequest{{Name: "  "}})
	require.Error(t, err)
}

func TestValidateRequests(t *testing.T) {
	validate, _, err := newValidator()
	require.NoError(t, err)

	valid := gridRequest{
		DayCount:      1,
		GradeCount:    2,
		RoomsPerGrade: 3,
		PeriodCounts:  [][]int{{1, 0}},
	}
	require.NoError(t, validate.Struct(valid))

	invalid := valid
	invalid.DayCount = 0
	require.Error(t, validate.Struct(invalid))

	invalid = valid
	invalid.PeriodCounts = [][]int{{1, -1}}
	require.Error(t, validate.Struct(invalid))

	require.NoError(t, validate.Var([]staffRequest{{Name: "张三", Email: "a@b.cn"}}, "required,dive"))
	require.Error(t, validate.Var([]staffRequest{{Name: "张三", Email: "not-an-email"}}, "required,dive"))
	require.Error(t, validate.Var([]staffRequest{{Name: "张三", Priority: intPtr(-1)}}, "required,dive"))
	require.Error(t, validate.Var([]staffRequest{}, "required,dive"))
}

func TestReadJSON(t *testing.T) {
	h := &Handler{}

	var req struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"期末考试"}`))
	require.NoError(t, h.readJSON(httptest.NewRecorder(), r, &req))
	require.Equal(t, "期末考试", req.Name)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"期末考试","unknown":1}`))
	require.Error(t, h.readJSON(httptest.NewRecorder(), r, &req))
}

func TestDescribeAssignment(t *testing.T) {
	plan := &domain.ExamPlan{Name: "期末考试"}
	roster := []*domain.StaffMember{
		{Name: "A", ExclusionText: "D1P1"},
		{Name: "B"},
	}
	a := domain.Assignment{
		{Day: 1, Period: 1, Grade: 1, Room: 1, Primary: "A", Secondary: "B"},
		{Day: 1, Period: 2, Grade: 1, Room: 1, Primary: "B", Secondary: domain.Unassigned},
	}

	resp := describeAssignment(plan, roster, a)
	require.Equal(t, 1, resp.Shortage)
	require.Len(t, resp.Violations, 1)
	require.Equal(t, domain.ViolationExclusion, resp.Violations[0].Kind)
	require.Equal(t, "A", resp.Violations[0].StaffName)
	require.Len(t, resp.Loads, 2)
	require.Equal(t, 1, resp.Loads[0].Total)
	require.Equal(t, 2, resp.Loads[1].Total)
	require.Len(t, resp.Slots, 2)
}

func TestBuildNotices(t *testing.T) {
	plan := &domain.ExamPlan{Name: "期末考试"}
	roster := []*domain.StaffMember{
		{Name: "A", Email: "a@school.edu"},
		{Name: "B"},
		{Name: "C", Email: "c@school.edu"},
	}
	a := domain.Assignment{
		{Day: 1, Period: 1, Grade: 1, Room: 1, Primary: "A", Secondary: "B"},
		{Day: 1, Period: 2, Grade: 2, Room: 1, Primary: "B", Secondary: "A"},
	}

	messages := buildNotices(plan, roster, a)
	require.Len(t, messages, 1)
	require.Equal(t, domain.MailTypeAssignmentNotice, messages[0].Type)
	require.Equal(t, "a@school.edu", messages[0].To)

	data, ok := messages[0].Data.(domain.AssignmentNoticeMailData)
	require.True(t, ok)
	require.Equal(t, "期末考试", data.PlanName)
	require.Equal(t, "A", data.StaffName)
	require.Equal(t, []domain.AssignmentNoticeDuty{
		{Day: 1, Period: 1, Grade: 1, Room: 1, Role: "primary"},
		{Day: 1, Period: 2, Grade: 2, Room: 1, Role: "secondary"},
	}, data.Duties)
}

func TestStoredResultFollowsShrunkGrid(t *testing.T) {
	plan := &domain.ExamPlan{
		Name: "期末考试",
		Grid: domain.GridConfig{DayCount: 1, GradeCount: 1, RoomsPerGrade: 1, PeriodCounts: [][]int{{1}}},
	}
	roster := []*domain.StaffMember{
		{Name: "A", Email: "a@school.edu"},
		{Name: "B", Email: "b@school.edu"},
	}
	stored := &domain.AssignmentResult{
		ExamPlanID: 1,
		Entries: domain.Assignment{
			{Day: 1, Period: 1, Grade: 1, Room: 1, Primary: "A", Secondary: "B"},
			{Day: 1, Period: 1, Grade: 1, Room: 2, Primary: "B", Secondary: "A"},
		},
	}

	entries, err := currentEntries(plan, stored)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, entries[0].Room)

	resp := describeAssignment(plan, roster, entries)
	require.Len(t, resp.Entries, 1)
	require.Zero(t, resp.Shortage)
	for _, load := range resp.Loads {
		require.Equal(t, 1.0, load.IdealTarget)
		require.Equal(t, 1, load.Total)
	}

	messages := buildNotices(plan, roster, entries)
	require.Len(t, messages, 2)
	for _, message := range messages {
		data := message.Data.(domain.AssignmentNoticeMailData)
		require.Len(t, data.Duties, 1)
		require.Equal(t, 1, data.Duties[0].Room)
	}
}

func TestStoredResultFollowsGrownGrid(t *testing.T) {
	plan := &domain.ExamPlan{
		Grid: domain.GridConfig{DayCount: 1, GradeCount: 1, RoomsPerGrade: 2, PeriodCounts: [][]int{{1}}},
	}
	stored := &domain.AssignmentResult{
		Entries: domain.Assignment{
			{Day: 1, Period: 1, Grade: 1, Room: 1, Primary: "A", Secondary: "B"},
		},
	}

	entries, err := currentEntries(plan, stored)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, domain.Unassigned, entries[1].Primary)
	require.Equal(t, 2, countShortage(entries))
}

func TestPreviewValidForPlanVersion(t *testing.T) {
	p := &preview{PlanVersion: 3, Result: &scheduler.Result{}}
	require.True(t, p.validFor(3))

	// 更新名单或配置后版本号递增
	require.False(t, p.validFor(4))

	var missing *preview
	require.False(t, missing.validFor(3))
	require.False(t, (&preview{PlanVersion: 3}).validFor(3))
}
