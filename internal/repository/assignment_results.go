package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
)

func nullableName(name string) sql.NullString {
	return sql.NullString{String: name, Valid: name != domain.Unassigned}
}

func (r *Repository) InsertAssignmentResult(result *domain.AssignmentResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先将之前的分配结果删除
	query := `DELETE FROM assignment_results WHERE exam_plan_id = $1`
	if _, err := tx.ExecContext(ctx, query, result.ExamPlanID); err != nil {
		return err
	}

	query = `
		INSERT INTO assignment_results (exam_plan_id)
		VALUES ($1)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, result.ExamPlanID).Scan(&result.ID, &result.CreatedAt, &result.Version); err != nil {
		return err
	}

	query = `
		INSERT INTO assignment_result_entries (assignment_result_id, day, period, grade, room, primary_name, secondary_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, entry := range result.Entries {
		params := []any{
			result.ID,
			entry.Day,
			entry.Period,
			entry.Grade,
			entry.Room,
			nullableName(entry.Primary),
			nullableName(entry.Secondary),
		}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetAssignmentResultByExamPlanID(examPlanID int64) (*domain.AssignmentResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			ar.id,
			are.day,
			are.period,
			are.grade,
			are.room,
			are.primary_name,
			are.secondary_name,
			ar.created_at,
			ar.version
		FROM assignment_results ar
		LEFT JOIN assignment_result_entries are ON ar.id = are.assignment_result_id
		WHERE ar.exam_plan_id = $1
		ORDER BY are.day, are.period, are.grade, are.room
	`

	rows, err := r.dbpool.QueryContext(ctx, query, examPlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.AssignmentResult{
		ExamPlanID: examPlanID,
		Entries:    make(domain.Assignment, 0),
	}

	for rows.Next() {
		var row struct {
			resultID  int64
			day       sql.NullInt32
			period    sql.NullInt32
			grade     sql.NullInt32
			room      sql.NullInt32
			primary   sql.NullString
			secondary sql.NullString
			createdAt time.Time
			version   int32
		}

		dst := []any{
			&row.resultID,
			&row.day,
			&row.period,
			&row.grade,
			&row.room,
			&row.primary,
			&row.secondary,
			&row.createdAt,
			&row.version,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		result.ID = row.resultID
		result.CreatedAt = row.createdAt
		result.Version = row.version

		if !row.day.Valid {
			// 说明这个结果没有任何考场，网格为空时是有可能的
			continue
		}

		result.Entries = append(result.Entries, domain.AssignmentEntry{
			Day:       int(row.day.Int32),
			Period:    int(row.period.Int32),
			Grade:     int(row.grade.Int32),
			Room:      int(row.room.Int32),
			Primary:   row.primary.String,
			Secondary: row.secondary.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 还需要处理没有结果的情况
	if result.ID == 0 {
		return nil, sql.ErrNoRows
	}

	return result, nil
}
