package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/exclusion"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/grid"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/utils"
)

type assignmentResponse struct {
	Entries    domain.Assignment       `json:"entries"`
	Violations []domain.Violation      `json:"violations"`
	Loads      []domain.StaffLoad      `json:"loads"`
	Slots      []scheduler.SlotSummary `json:"slots"`
	Shortage   int                     `json:"shortage"`
	Quotas     []scheduler.StaffQuota  `json:"quotas,omitempty"`
	Discarded  []utils.CellEdit        `json:"discarded,omitempty"`
}

func countShortage(a domain.Assignment) int {
	shortage := 0
	for _, entry := range a {
		if entry.Primary == domain.Unassigned {
			shortage++
		}
		if entry.Secondary == domain.Unassigned {
			shortage++
		}
	}
	return shortage
}

// describeAssignment 对任意一份分配结果重新检查冲突并统计负载
func describeAssignment(plan *domain.ExamPlan, roster []*domain.StaffMember, a domain.Assignment) *assignmentResponse {
	violations := utils.ValidateAssignment(a, exclusion.FromRoster(roster), utils.ValidateOptions{
		AllowMultiRoom: plan.AllowMultiRoom,
		AllowDualRole:  plan.AllowDualRole,
	})

	return &assignmentResponse{
		Entries:    a,
		Violations: violations,
		Loads:      scheduler.Summarize(a, roster),
		Slots:      scheduler.SummarizeSlots(a),
		Shortage:   countShortage(a),
	}
}

// currentEntries 将保存的结果对齐到计划当前的网格，已不存在的考场被丢弃，新增的考场记为未分配
func currentEntries(plan *domain.ExamPlan, stored *domain.AssignmentResult) (domain.Assignment, error) {
	g, err := grid.New(plan.Grid)
	if err != nil {
		return nil, err
	}
	return utils.Align(stored.Entries, g), nil
}

func (h *Handler) GenerateAssignment(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(ExamPlanCtx).(*domain.ExamPlan)

	roster, err := h.repository.GetRosterByExamPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	s, err := scheduler.New(scheduler.Input{
		Roster:         roster,
		Grid:           plan.Grid,
		AllowMultiRoom: plan.AllowMultiRoom,
		AllowDualRole:  plan.AllowDualRole,
		Strategy:       plan.Strategy,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrEmptyRoster):
			h.errorResponse(w, r, "请先上传监考名单")
		case errors.Is(err, grid.ErrInvalidConfig), errors.Is(err, scheduler.ErrDuplicateStaff), errors.Is(err, scheduler.ErrUnknownStrategy):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	ok, err := h.acquireLock(r.Context(), plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.errorResponse(w, r, "该考试计划正在生成分配结果，请稍后再试")
		return
	}
	defer h.releaseLock(plan.ID)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Scheduler.Timeout)*time.Second)
	defer cancel()

	res, err := s.Schedule(ctx)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			h.errorResponse(w, r, "生成分配结果超时")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if res.Shortage > 0 {
		slog.Warn("部分考场未能分配监考教师", "planID", plan.ID, "shortage", res.Shortage)
	}

	if err := h.savePreview(r.Context(), plan.ID, &preview{PlanVersion: plan.Version, Result: res}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	resp := describeAssignment(plan, roster, res.Entries)
	resp.Quotas = res.Quotas

	h.successResponse(w, r, "自动分配成功", resp)
}

func (h *Handler) SubmitAssignment(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(ExamPlanCtx).(*domain.ExamPlan)

	var req struct {
		Base  string           `json:"base" validate:"required,oneof=generated stored"`
		Edits []utils.CellEdit `json:"edits" validate:"dive"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	var base domain.Assignment
	switch req.Base {
	case "generated":
		p, err := h.loadPreview(r.Context(), plan.ID, plan.Version)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if p == nil {
			h.errorResponse(w, r, "没有可用的自动分配结果，请重新生成")
			return
		}
		base = p.Result.Entries
	case "stored":
		stored, err := h.repository.GetAssignmentResultByExamPlanID(plan.ID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "该考试计划还没有保存过分配结果")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		base = stored.Entries
	}

	g, err := grid.New(plan.Grid)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	patched, discarded := utils.ApplyPatch(base, g, req.Edits)
	if len(discarded) > 0 {
		slog.Info("丢弃了指向非活跃考场的修改", "planID", plan.ID, "count", len(discarded))
	}

	roster, err := h.repository.GetRosterByExamPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	result := &domain.AssignmentResult{
		ExamPlanID: plan.ID,
		Entries:    patched,
	}
	if err := h.repository.InsertAssignmentResult(result); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 手动修改会绕过分配约束，冲突会一并返回给调用方
	resp := describeAssignment(plan, roster, patched)
	resp.Discarded = discarded

	h.successResponse(w, r, "保存分配结果成功", resp)
}

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(ExamPlanCtx).(*domain.ExamPlan)

	stored, err := h.repository.GetAssignmentResultByExamPlanID(plan.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "该考试计划还没有分配结果", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	roster, err := h.repository.GetRosterByExamPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	entries, err := currentEntries(plan, stored)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.successResponse(w, r, "获取分配结果成功", describeAssignment(plan, roster, entries))
}

// buildNotices 按名单顺序为每个有邮箱且有监考任务的教师生成一封通知
func buildNotices(plan *domain.ExamPlan, roster []*domain.StaffMember, a domain.Assignment) []domain.MailMessage {
	duties := make(map[string][]domain.AssignmentNoticeDuty)
	for _, entry := range a {
		for _, role := range []domain.Role{domain.RolePrimary, domain.RoleSecondary} {
			name := entry.StaffFor(role)
			if name == domain.Unassigned {
				continue
			}
			duties[name] = append(duties[name], domain.AssignmentNoticeDuty{
				Day:    entry.Day,
				Period: entry.Period,
				Grade:  entry.Grade,
				Room:   entry.Room,
				Role:   string(role),
			})
		}
	}

	messages := make([]domain.MailMessage, 0)
	for _, staff := range roster {
		if staff.Email == "" || len(duties[staff.Name]) == 0 {
			continue
		}
		messages = append(messages, domain.MailMessage{
			Type: domain.MailTypeAssignmentNotice,
			To:   staff.Email,
			Data: domain.AssignmentNoticeMailData{
				PlanName:  plan.Name,
				StaffName: staff.Name,
				Duties:    duties[staff.Name],
			},
		})
	}
	return messages
}

func (h *Handler) NotifyAssignment(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(ExamPlanCtx).(*domain.ExamPlan)

	stored, err := h.repository.GetAssignmentResultByExamPlanID(plan.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请先保存分配结果再发送通知")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	roster, err := h.repository.GetRosterByExamPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	entries, err := currentEntries(plan, stored)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	messages := buildNotices(plan, roster, entries)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	for _, message := range messages {
		body, err := json.Marshal(message)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		if err := h.mailChannel.PublishWithContext(
			ctx,
			"",
			h.config.RabbitMQ.Queue,
			true,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			},
		); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "监考通知已加入发送队列", map[string]int{"count": len(messages)})
}
