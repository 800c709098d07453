// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/zhiban/zhiban/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	WorkloadGini     float64 `json:"workload_gini"`     // 工时基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance float64 `json:"workload_variance"` // 工时方差
	WorkloadStdDev   float64 `json:"workload_std_dev"`  // 工时标准差
	AvgHours         float64 `json:"avg_hours"`         // 人均工时
	MaxHours         float64 `json:"max_hours"`
	MinHours         float64 `json:"min_hours"`
	HoursRange       float64 `json:"hours_range"` // 工时极差

	// WorkerStats 员工级别统计，按工时降序
	WorkerStats []WorkerStat `json:"worker_stats"`

	// OverallFairnessScore 综合公平性评分 (0-100)
	OverallFairnessScore float64 `json:"overall_fairness_score"`
}

// WorkerStat 员工统计
type WorkerStat struct {
	WorkerID      string  `json:"worker_id"`
	WorkerName    string  `json:"worker_name"`
	TotalHours    float64 `json:"total_hours"`
	ShiftCount    int     `json:"shift_count"`    // 连续值班块数
	MorningShifts int     `json:"morning_shifts"` // 9 点前开始的班次数
	DesiredHours  int     `json:"desired_hours"`
	Deviation     float64 `json:"deviation"` // 与期望工时的偏差（小时）
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct {
	morningStartMin int
}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{
		morningStartMin: model.CommuterCutoffMin,
	}
}

// Analyze 分析排班公平性
// 基于逐班次分配统计在职员工的工时分布。
func (f *FairnessAnalyzer) Analyze(slots []model.TimeSlot, assignees [][]string, workers []*model.Worker) *FairnessMetrics {
	active := model.ActiveWorkers(workers)
	if len(active) == 0 {
		return &FairnessMetrics{OverallFairnessScore: 100}
	}

	hoursByWorker := model.HoursByWorker(slots, assignees)
	runs := model.WorkerRuns(slots, assignees)

	// 早班按原子班次计数，不按合并后的块
	morningSlots := make(map[string]int)
	for i, ids := range assignees {
		if i >= len(slots) {
			break
		}
		if slots[i].StartMin >= f.morningStartMin {
			continue
		}
		for _, id := range ids {
			morningSlots[id]++
		}
	}

	workerStats := make([]WorkerStat, 0, len(active))
	hours := make([]float64, 0, len(active))

	for _, w := range active {
		stat := WorkerStat{
			WorkerID:      w.ID,
			WorkerName:    w.Name,
			TotalHours:    hoursByWorker[w.ID],
			DesiredHours:  w.DesiredHours,
			Deviation:     hoursByWorker[w.ID] - float64(w.DesiredHours),
			ShiftCount:    len(runs[w.ID]),
			MorningShifts: morningSlots[w.ID],
		}
		workerStats = append(workerStats, stat)
		hours = append(hours, stat.TotalHours)
	}

	sort.Slice(workerStats, func(i, j int) bool {
		if workerStats[i].TotalHours != workerStats[j].TotalHours {
			return workerStats[i].TotalHours > workerStats[j].TotalHours
		}
		return workerStats[i].WorkerID < workerStats[j].WorkerID
	})

	avg := mean(hours)
	variance := varianceOf(hours, avg)
	stdDev := math.Sqrt(variance)
	maxH, minH := rangeOf(hours)
	gini := giniOf(hours)

	return &FairnessMetrics{
		WorkloadGini:         gini,
		WorkloadVariance:     variance,
		WorkloadStdDev:       stdDev,
		AvgHours:             avg,
		MaxHours:             maxH,
		MinHours:             minH,
		HoursRange:           maxH - minH,
		WorkerStats:          workerStats,
		OverallFairnessScore: overallScore(gini, stdDev, avg),
	}
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// varianceOf 计算方差
func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// rangeOf 计算极值
func rangeOf(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// giniOf 计算基尼系数
func giniOf(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}
	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// overallScore 计算综合公平性评分
// 基尼系数与变异系数加权折算到 0-100。
func overallScore(gini, stdDev, avgHours float64) float64 {
	const (
		giniWeight = 0.7
		cvWeight   = 0.3
	)

	giniScore := (1 - gini) * 100

	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := giniWeight*giniScore + cvWeight*cvScore
	return math.Max(0, math.Min(100, score))
}
