// Package loader 负责加载并校验员工与考试数据
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
)

// WorkerRecord 外部系统传入的员工记录
type WorkerRecord struct {
	ID           string `json:"id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Role         string `json:"role" validate:"omitempty,oneof=user admin"`
	Position     string `json:"position" validate:"required"` // "Tier 1" ... "Tier 4"
	IsCommuter   bool   `json:"is_commuter"`
	IsActive     bool   `json:"is_active"`
	IsFloater    bool   `json:"is_floater,omitempty"`
	DesiredHours int    `json:"desired_hours" validate:"min=10,max=20"`
}

// ExamRecord 外部系统传入的考试记录
type ExamRecord struct {
	UserID    string `json:"user_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// Input 一次排班运行的完整输入
type Input struct {
	Workers []WorkerRecord `json:"workers"`
	Exams   []ExamRecord   `json:"exams"`
}

var validate = validator.New()

// LoadFile 从 JSON 文件加载输入
func LoadFile(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, fmt.Sprintf("无法读取输入文件 %s", path))
	}

	var input Input
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, fmt.Sprintf("输入文件 %s 不是合法的 JSON", path))
	}
	return &input, nil
}

// BuildWorkers 校验输入并构建员工模型
// 任何一条记录非法都立即报错并指明出错的记录；
// 考试记录转换为对应员工的不可用时间段。
func BuildWorkers(input *Input) ([]*model.Worker, error) {
	if input == nil || len(input.Workers) == 0 {
		return nil, apperrors.ErrEmptyRoster
	}

	workers := make([]*model.Worker, 0, len(input.Workers))
	byID := make(map[string]*model.Worker, len(input.Workers))

	for i, rec := range input.Workers {
		if err := validate.Struct(rec); err != nil {
			id := rec.ID
			if id == "" {
				id = fmt.Sprintf("#%d", i)
			}
			return nil, apperrors.InvalidRecord("员工", id, err.Error())
		}
		if _, dup := byID[rec.ID]; dup {
			return nil, apperrors.InvalidRecord("员工", rec.ID, "ID 重复")
		}

		w := &model.Worker{
			ID:           rec.ID,
			Name:         rec.Name,
			Email:        rec.Email,
			Role:         rec.Role,
			Tier:         ParseTier(rec.Position),
			IsCommuter:   rec.IsCommuter,
			IsActive:     rec.IsActive,
			IsFloater:    rec.IsFloater,
			DesiredHours: rec.DesiredHours,
		}
		workers = append(workers, w)
		byID[rec.ID] = w
	}

	for i, rec := range input.Exams {
		if err := validate.Struct(rec); err != nil {
			return nil, apperrors.InvalidRecord("考试", fmt.Sprintf("#%d", i), err.Error())
		}
		w, ok := byID[rec.UserID]
		if !ok {
			return nil, apperrors.InvalidRecord("考试", fmt.Sprintf("#%d", i),
				fmt.Sprintf("user_id %q 不在员工名单中", rec.UserID))
		}

		start, err := model.ToMinutes(rec.StartTime)
		if err != nil {
			return nil, apperrors.InvalidRecord("考试", fmt.Sprintf("#%d", i), err.Error())
		}
		end, err := model.ToMinutes(rec.EndTime)
		if err != nil {
			return nil, apperrors.InvalidRecord("考试", fmt.Sprintf("#%d", i), err.Error())
		}
		if end <= start {
			return nil, apperrors.InvalidRecord("考试", fmt.Sprintf("#%d", i), "结束时间不晚于开始时间")
		}

		w.AddBusy(model.Interval{Date: rec.Date, StartMin: start, EndMin: end})
	}

	if len(model.ActiveWorkers(workers)) == 0 {
		return nil, apperrors.ErrEmptyRoster
	}

	model.SortWorkers(workers)
	LogRoster(workers)
	return workers, nil
}

// ParseTier 从职级名称解析级别，如 "Tier 3" -> 3
// 无法解析时按 Tier 1 处理。
func ParseTier(position string) int {
	var tier int
	if _, err := fmt.Sscanf(strings.TrimSpace(position), "Tier %d", &tier); err == nil {
		if tier >= 1 && tier <= 4 {
			return tier
		}
	}
	logger.Warn().Str("position", position).Msg("无法解析职级，按 Tier 1 处理")
	return 1
}

// LogRoster 记录加载到的花名册概况
func LogRoster(workers []*model.Worker) {
	active := 0
	commuters := 0
	busyCount := 0
	tiers := make(map[int]int)
	for _, w := range workers {
		if w.IsActive {
			active++
		}
		if w.IsCommuter {
			commuters++
		}
		busyCount += len(w.BusyIntervals)
		tiers[w.Tier]++
	}

	logger.Info().
		Int("total", len(workers)).
		Int("active", active).
		Int("commuters", commuters).
		Int("busy_intervals", busyCount).
		Interface("tiers", tiers).
		Msg("花名册加载完成")
}
