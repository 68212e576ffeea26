package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

func insertPeriodCounts(ctx context.Context, tx *sql.Tx, plan *domain.ExamPlan) error {
	query := `
		INSERT INTO exam_plan_period_counts (exam_plan_id, day, grade, period_count)
		VALUES ($1, $2, $3, $4)
	`

	for d, row := range plan.Grid.PeriodCounts {
		for g, count := range row {
			if _, err := tx.ExecContext(ctx, query, plan.ID, d+1, g+1, count); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Repository) CreateExamPlan(plan *domain.ExamPlan) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO exam_plans (
			name,
			description,
			day_count,
			grade_count,
			rooms_per_grade,
			allow_multi_room,
			allow_dual_role,
			strategy
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	params := []any{
		plan.Name,
		plan.Description,
		plan.Grid.DayCount,
		plan.Grid.GradeCount,
		plan.Grid.RoomsPerGrade,
		plan.AllowMultiRoom,
		plan.AllowDualRole,
		plan.Strategy,
	}
	dst := []any{&plan.ID, &plan.CreatedAt, &plan.Version}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	if err := insertPeriodCounts(ctx, tx, plan); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) loadPeriodCounts(ctx context.Context, plan *domain.ExamPlan) error {
	query := `
		SELECT day, grade, period_count
		FROM exam_plan_period_counts
		WHERE exam_plan_id = $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, plan.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	plan.Grid.PeriodCounts = make([][]int, plan.Grid.DayCount)
	for d := range plan.Grid.PeriodCounts {
		plan.Grid.PeriodCounts[d] = make([]int, plan.Grid.GradeCount)
	}

	for rows.Next() {
		var day, grade, count int
		if err := rows.Scan(&day, &grade, &count); err != nil {
			return err
		}
		if day < 1 || day > plan.Grid.DayCount || grade < 1 || grade > plan.Grid.GradeCount {
			// 理论上不会出现，修改天数或年级数时会整体重写
			continue
		}
		plan.Grid.PeriodCounts[day-1][grade-1] = count
	}

	return rows.Err()
}

func (r *Repository) GetExamPlanByID(id int64) (*domain.ExamPlan, error) {
	query := `
		SELECT
			name,
			description,
			day_count,
			grade_count,
			rooms_per_grade,
			allow_multi_room,
			allow_dual_role,
			strategy,
			created_at,
			version
		FROM exam_plans
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	plan := &domain.ExamPlan{
		ID: id,
	}

	dst := []any{
		&plan.Name,
		&plan.Description,
		&plan.Grid.DayCount,
		&plan.Grid.GradeCount,
		&plan.Grid.RoomsPerGrade,
		&plan.AllowMultiRoom,
		&plan.AllowDualRole,
		&plan.Strategy,
		&plan.CreatedAt,
		&plan.Version,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := r.loadPeriodCounts(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// GetAllExamPlans 列表中不包含每天的节数
func (r *Repository) GetAllExamPlans() ([]*domain.ExamPlan, error) {
	query := `
		SELECT
			id,
			name,
			description,
			day_count,
			grade_count,
			rooms_per_grade,
			allow_multi_room,
			allow_dual_role,
			strategy,
			created_at,
			version
		FROM exam_plans
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []*domain.ExamPlan{}
	for rows.Next() {
		var plan domain.ExamPlan
		dst := []any{
			&plan.ID,
			&plan.Name,
			&plan.Description,
			&plan.Grid.DayCount,
			&plan.Grid.GradeCount,
			&plan.Grid.RoomsPerGrade,
			&plan.AllowMultiRoom,
			&plan.AllowDualRole,
			&plan.Strategy,
			&plan.CreatedAt,
			&plan.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *Repository) UpdateExamPlan(plan *domain.ExamPlan) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE exam_plans
		SET
			name = $1,
			description = $2,
			day_count = $3,
			grade_count = $4,
			rooms_per_grade = $5,
			allow_multi_room = $6,
			allow_dual_role = $7,
			strategy = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	params := []any{
		plan.Name,
		plan.Description,
		plan.Grid.DayCount,
		plan.Grid.GradeCount,
		plan.Grid.RoomsPerGrade,
		plan.AllowMultiRoom,
		plan.AllowDualRole,
		plan.Strategy,
		plan.ID,
		plan.Version,
	}

	if err := tx.QueryRowContext(ctx, query, params...).Scan(&plan.Version); err != nil {
		return err
	}

	// 节数配置整体重写
	if _, err := tx.ExecContext(ctx, `DELETE FROM exam_plan_period_counts WHERE exam_plan_id = $1`, plan.ID); err != nil {
		return err
	}
	if err := insertPeriodCounts(ctx, tx, plan); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) DeleteExamPlan(id int64) error {
	query := `
		DELETE FROM exam_plans WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
