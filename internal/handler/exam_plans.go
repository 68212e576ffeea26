package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/grid"
)

type gridRequest struct {
	DayCount      int     `json:"dayCount" validate:"required,min=1,max=31"`
	GradeCount    int     `json:"gradeCount" validate:"required,min=1,max=12"`
	RoomsPerGrade int     `json:"roomsPerGrade" validate:"required,min=1,max=50"`
	PeriodCounts  [][]int `json:"periodCounts" validate:"required,dive,required,dive,min=0,max=20"`
}

func (g *gridRequest) toGridConfig() domain.GridConfig {
	return domain.GridConfig{
		DayCount:      g.DayCount,
		GradeCount:    g.GradeCount,
		RoomsPerGrade: g.RoomsPerGrade,
		PeriodCounts:  g.PeriodCounts,
	}
}

func (h *Handler) CreateExamPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string      `json:"name" validate:"required"`
		Description    string      `json:"description"`
		Grid           gridRequest `json:"grid" validate:"required"`
		AllowMultiRoom bool        `json:"allowMultiRoom"`
		AllowDualRole  bool        `json:"allowDualRole"`
		Strategy       string      `json:"strategy" validate:"omitempty,oneof=load-sorted cursor"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	plan := &domain.ExamPlan{
		Name:           req.Name,
		Description:    req.Description,
		Grid:           req.Grid.toGridConfig(),
		AllowMultiRoom: req.AllowMultiRoom,
		AllowDualRole:  req.AllowDualRole,
		Strategy:       domain.Strategy(req.Strategy),
	}
	if plan.Strategy == "" {
		plan.Strategy = domain.Strategy(h.config.Scheduler.DefaultStrategy)
	}

	// 检查每天每个年级的节数是否和天数、年级数对得上
	if err := grid.Validate(plan.Grid); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateExamPlan(plan); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "exam_plans_name_key":
				h.errorResponse(w, r, "考试计划名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建考试计划成功", plan)
}

func (h *Handler) GetAllExamPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.repository.GetAllExamPlans()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有考试计划成功", plans)
}

func (h *Handler) GetExamPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(ExamPlanCtx).(*domain.ExamPlan)

	h.successResponse(w, r, "获取考试计划成功", plan)
}

func (h *Handler) UpdateExamPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(ExamPlanCtx).(*domain.ExamPlan)

	var req struct {
		Name           *string      `json:"name"`
		Description    *string      `json:"description"`
		Grid           *gridRequest `json:"grid" validate:"omitnil"`
		AllowMultiRoom *bool        `json:"allowMultiRoom"`
		AllowDualRole  *bool        `json:"allowDualRole"`
		Strategy       *string      `json:"strategy" validate:"omitnil,oneof=load-sorted cursor"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Grid != nil {
		plan.Grid = req.Grid.toGridConfig()
	}
	if req.AllowMultiRoom != nil {
		plan.AllowMultiRoom = *req.AllowMultiRoom
	}
	if req.AllowDualRole != nil {
		plan.AllowDualRole = *req.AllowDualRole
	}
	if req.Strategy != nil {
		plan.Strategy = domain.Strategy(*req.Strategy)
	}

	if err := grid.Validate(plan.Grid); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateExamPlan(plan); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "exam_plans_name_key":
				h.errorResponse(w, r, "考试计划名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 配置变了，之前生成的结果不再有效
	h.invalidatePreview(r.Context(), plan.ID)

	h.successResponse(w, r, "更新考试计划成功", plan)
}

func (h *Handler) DeleteExamPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(ExamPlanCtx).(*domain.ExamPlan)

	if err := h.repository.DeleteExamPlan(plan.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidatePreview(r.Context(), plan.ID)

	h.successResponse(w, r, "删除考试计划成功", nil)
}

type slotResponse struct {
	Day    int           `json:"day"`
	Period int           `json:"period"`
	Cells  []domain.Cell `json:"cells"`
}

func (h *Handler) GetExamPlanSlots(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(ExamPlanCtx).(*domain.ExamPlan)

	g, err := grid.New(plan.Grid)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	slots := make([]slotResponse, 0, len(g.Slots()))
	for _, slot := range g.Slots() {
		slots = append(slots, slotResponse{
			Day:    slot.Day,
			Period: slot.Period,
			Cells:  g.ActiveCells(slot.Day, slot.Period),
		})
	}

	h.successResponse(w, r, "获取考试时段成功", slots)
}
