// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"

	"github.com/zhiban/zhiban/internal/loader"
)

// WorkerRepository 员工与考试数据仓储
type WorkerRepository struct {
	db DB
}

// NewWorkerRepository 创建员工仓储
func NewWorkerRepository(db DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

// ListWorkers 列出全部员工记录
func (r *WorkerRepository) ListWorkers(ctx context.Context) ([]loader.WorkerRecord, error) {
	query := `
		SELECT id, name, email, role, position, is_commuter, is_active, desired_hours
		FROM workers
		WHERE deleted_at IS NULL
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	defer rows.Close()

	var records []loader.WorkerRecord
	for rows.Next() {
		var rec loader.WorkerRecord
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Email, &rec.Role, &rec.Position,
			&rec.IsCommuter, &rec.IsActive, &rec.DesiredHours,
		); err != nil {
			return nil, fmt.Errorf("读取员工记录失败: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历员工记录失败: %w", err)
	}

	return records, nil
}

// ListExams 列出全部考试记录
func (r *WorkerRepository) ListExams(ctx context.Context) ([]loader.ExamRecord, error) {
	query := `
		SELECT user_id, to_char(date, 'YYYY-MM-DD'), start_time, end_time
		FROM finals
		ORDER BY date, start_time, user_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询考试失败: %w", err)
	}
	defer rows.Close()

	var records []loader.ExamRecord
	for rows.Next() {
		var rec loader.ExamRecord
		if err := rows.Scan(&rec.UserID, &rec.Date, &rec.StartTime, &rec.EndTime); err != nil {
			return nil, fmt.Errorf("读取考试记录失败: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历考试记录失败: %w", err)
	}

	return records, nil
}

// Load 一次性加载排班输入
func (r *WorkerRepository) Load(ctx context.Context) (*loader.Input, error) {
	workers, err := r.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}
	exams, err := r.ListExams(ctx)
	if err != nil {
		return nil, err
	}
	return &loader.Input{Workers: workers, Exams: exams}, nil
}
