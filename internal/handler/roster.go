package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/exclusion"
)

type staffRequest struct {
	Name     string `json:"name" validate:"required"`
	Exclude  string `json:"exclude"`
	Priority *int   `json:"priority" validate:"omitnil,min=0"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// buildRoster 按提交顺序构建名单，顺序即同优先级时的先后
func buildRoster(req []staffRequest) ([]*domain.StaffMember, error) {
	roster := make([]*domain.StaffMember, 0, len(req))
	seen := make(map[string]bool, len(req))

	for i, item := range req {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("第 %d 位教师的姓名不能为空", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("教师 %s 重复出现", name)
		}
		seen[name] = true

		roster = append(roster, &domain.StaffMember{
			Name:          name,
			ExclusionText: strings.TrimSpace(item.Exclude),
			Priority:      item.Priority,
			Email:         strings.TrimSpace(item.Email),
		})
	}

	return roster, nil
}

func (h *Handler) ReplaceRoster(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(ExamPlanCtx).(*domain.ExamPlan)

	var req []staffRequest

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Var(req, "required,dive"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	roster, err := buildRoster(req)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.ReplaceRoster(plan.ID, roster); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "考试计划不存在")
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "staff_members_exam_plan_id_name_key":
				h.errorResponse(w, r, "名单中存在重名教师")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidatePreview(r.Context(), plan.ID)

	h.successResponse(w, r, "更新监考名单成功", rosterView(roster))
}

type rosterItem struct {
	*domain.StaffMember
	RuleCount int `json:"ruleCount"` // 成功解析的规则数量，便于发现写错的规则
}

func rosterView(roster []*domain.StaffMember) []rosterItem {
	items := make([]rosterItem, len(roster))
	for i, staff := range roster {
		items[i] = rosterItem{
			StaffMember: staff,
			RuleCount:   exclusion.ParseText(staff.ExclusionText).Len(),
		}
	}
	return items
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(ExamPlanCtx).(*domain.ExamPlan)

	roster, err := h.repository.GetRosterByExamPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取监考名单成功", rosterView(roster))
}
