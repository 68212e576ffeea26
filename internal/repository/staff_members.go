package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

// ReplaceRoster 用新的名单覆盖考试计划原有的名单，名单顺序保存在 position 中。
// 同时递增考试计划的版本号，基于旧名单生成的缓存结果随之失效。
func (r *Repository) ReplaceRoster(examPlanID int64, roster []*domain.StaffMember) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `DELETE FROM staff_members WHERE exam_plan_id = $1`
	if _, err := tx.ExecContext(ctx, query, examPlanID); err != nil {
		return err
	}

	query = `
		INSERT INTO staff_members (exam_plan_id, position, name, exclusion_text, priority, email)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, staff := range roster {
		if _, err := tx.ExecContext(ctx, query, examPlanID, i, staff.Name, staff.ExclusionText, staff.Priority, staff.Email); err != nil {
			return err
		}
	}

	query = `UPDATE exam_plans SET version = version + 1 WHERE id = $1`
	res, err := tx.ExecContext(ctx, query, examPlanID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

func (r *Repository) GetRosterByExamPlanID(examPlanID int64) ([]*domain.StaffMember, error) {
	query := `
		SELECT name, exclusion_text, priority, email
		FROM staff_members
		WHERE exam_plan_id = $1
		ORDER BY position
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, examPlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := make([]*domain.StaffMember, 0)
	for rows.Next() {
		staff := &domain.StaffMember{}
		var priority sql.NullInt64
		if err := rows.Scan(&staff.Name, &staff.ExclusionText, &priority, &staff.Email); err != nil {
			return nil, err
		}
		if priority.Valid {
			p := int(priority.Int64)
			staff.Priority = &p
		}
		roster = append(roster, staff)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return roster, nil
}
