// Package validator 提供排班结果的快速验证
package validator

import (
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
	"github.com/zhiban/zhiban/pkg/stats"
)

// Quality 排班质量等级
type Quality string

const (
	QualityPerfect     Quality = "Perfect"      // 惩罚值为 0
	QualityExcellent   Quality = "Excellent"    // 惩罚值 < 500
	QualityGood        Quality = "Good"         // 惩罚值 500-1500
	QualityNeedsReview Quality = "Needs Review" // 惩罚值 > 1500
)

// 质量分级阈值
const (
	excellentThreshold = 500
	goodThreshold      = 1500
)

// criticalTypes 关键约束类型，任何一项非零都需要人工复核
var criticalTypes = [...]constraint.Type{
	constraint.TypeCoverageUnder,
	constraint.TypeWorkerConflict,
	constraint.TypeCommuter,
	constraint.TypeHourOver,
}

// Report 验证报告
type Report struct {
	Quality         Quality               `json:"quality"`
	Penalty         float64               `json:"penalty"`
	AllCriticalPass bool                  `json:"all_critical_pass"`
	Violations      map[string]int        `json:"violations"`
	UncoveredSlots  []stats.UncoveredSlot `json:"uncovered_slots,omitempty"`

	// 工时概览
	MinHours float64 `json:"min_hours"`
	MaxHours float64 `json:"max_hours"`
	AvgHours float64 `json:"avg_hours"`
}

// QuickValidate 对求解结果做快速验证
// 调用评估器分级，统计各类违反并列出人数不足的班次。
func QuickValidate(env *scheduler.Environment, st *scheduler.State) *Report {
	penalty, breakdown := env.Evaluate(st)

	report := &Report{
		Quality:         classify(penalty),
		Penalty:         penalty,
		AllCriticalPass: true,
		Violations:      breakdown.Counts(),
	}

	for _, t := range criticalTypes {
		if breakdown.Count(t) > 0 {
			report.AllCriticalPass = false
			break
		}
	}

	coverage := stats.NewCoverageAnalyzer().Analyze(env.Slots, st.Assignees)
	report.UncoveredSlots = coverage.UncoveredSlots

	fairness := stats.NewFairnessAnalyzer().Analyze(env.Slots, st.Assignees, env.Workers)
	report.MinHours = fairness.MinHours
	report.MaxHours = fairness.MaxHours
	report.AvgHours = fairness.AvgHours

	return report
}

// classify 按总惩罚值分级
func classify(penalty float64) Quality {
	switch {
	case penalty == 0:
		return QualityPerfect
	case penalty < excellentThreshold:
		return QualityExcellent
	case penalty <= goodThreshold:
		return QualityGood
	default:
		return QualityNeedsReview
	}
}

// IsAcceptable 报告是否达到可用水平
func (r *Report) IsAcceptable() bool {
	return r.Quality != QualityNeedsReview
}
