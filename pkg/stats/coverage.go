// Package stats 提供排班统计分析功能
package stats

import (
	"sort"

	"github.com/zhiban/zhiban/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	TotalSlots      int     `json:"total_slots"`      // 总班次数
	FilledSlots     int     `json:"filled_slots"`     // 达到人数下限的班次数
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	// DailyCoverage 每日覆盖情况
	DailyCoverage map[string]DayCoverage `json:"daily_coverage"`

	// KindCoverage 按班次类型的覆盖率 (%)
	KindCoverage map[string]float64 `json:"kind_coverage"`

	// UncoveredSlots 人数不足的班次
	UncoveredSlots []UncoveredSlot `json:"uncovered_slots"`
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Date        string  `json:"date"`
	TotalSlots  int     `json:"total_slots"`
	FilledSlots int     `json:"filled_slots"`
	Coverage    float64 `json:"coverage"`
}

// UncoveredSlot 人数不足的班次
type UncoveredSlot struct {
	Index     int    `json:"index"`
	Date      string `json:"date"`
	TimeRange string `json:"time_range"`
	Kind      string `json:"kind"`
	Assigned  int    `json:"assigned"`
	Required  int    `json:"required"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 分析排班覆盖情况
func (c *CoverageAnalyzer) Analyze(slots []model.TimeSlot, assignees [][]string) *CoverageMetrics {
	metrics := &CoverageMetrics{
		TotalSlots:    len(slots),
		DailyCoverage: make(map[string]DayCoverage),
		KindCoverage:  make(map[string]float64),
	}

	kindTotal := make(map[string]int)
	kindFilled := make(map[string]int)

	for i, slot := range slots {
		assigned := 0
		if i < len(assignees) {
			assigned = len(assignees[i])
		}
		filled := assigned >= slot.StaffMin

		day := metrics.DailyCoverage[slot.Date]
		day.Date = slot.Date
		day.TotalSlots++
		kindTotal[string(slot.Kind)]++

		if filled {
			metrics.FilledSlots++
			day.FilledSlots++
			kindFilled[string(slot.Kind)]++
		} else {
			metrics.UncoveredSlots = append(metrics.UncoveredSlots, UncoveredSlot{
				Index:     slot.Index,
				Date:      slot.Date,
				TimeRange: slot.TimeRange(),
				Kind:      string(slot.Kind),
				Assigned:  assigned,
				Required:  slot.StaffMin,
			})
		}
		metrics.DailyCoverage[slot.Date] = day
	}

	for date, day := range metrics.DailyCoverage {
		if day.TotalSlots > 0 {
			day.Coverage = float64(day.FilledSlots) / float64(day.TotalSlots) * 100
		}
		metrics.DailyCoverage[date] = day
	}

	for kind, total := range kindTotal {
		if total > 0 {
			metrics.KindCoverage[kind] = float64(kindFilled[kind]) / float64(total) * 100
		}
	}

	if metrics.TotalSlots > 0 {
		metrics.OverallCoverage = float64(metrics.FilledSlots) / float64(metrics.TotalSlots) * 100
	}

	sort.Slice(metrics.UncoveredSlots, func(i, j int) bool {
		a, b := metrics.UncoveredSlots[i], metrics.UncoveredSlots[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.TimeRange < b.TimeRange
	})

	return metrics
}
