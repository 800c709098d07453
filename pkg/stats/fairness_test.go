package stats

import (
	"math"
	"testing"

	"github.com/zhiban/zhiban/pkg/model"
)

func statsWorker(id string, desired int) *model.Worker {
	return &model.Worker{ID: id, Name: "员工" + id, Tier: 1, IsActive: true, DesiredHours: desired}
}

func statsSlots(n int) []model.TimeSlot {
	var slots []model.TimeSlot
	for i := 0; i < n; i++ {
		start := 600 + i*60
		slots = append(slots, model.TimeSlot{
			Index: i, Date: "2026-05-11", Day: model.Monday,
			StartMin: start, EndMin: start + 60,
			Kind: model.KindWindow, StaffMin: 1, StaffMax: 2,
		})
	}
	return slots
}

func TestFairnessAnalyzeBalanced(t *testing.T) {
	workers := []*model.Worker{statsWorker("a", 15), statsWorker("b", 15)}
	slots := statsSlots(4)
	assignees := [][]string{{"a"}, {"a"}, {"b"}, {"b"}}

	metrics := NewFairnessAnalyzer().Analyze(slots, assignees, workers)

	if metrics.WorkloadVariance != 0 {
		t.Errorf("均衡分配方差 = %v, want 0", metrics.WorkloadVariance)
	}
	if metrics.WorkloadGini != 0 {
		t.Errorf("均衡分配基尼系数 = %v, want 0", metrics.WorkloadGini)
	}
	if metrics.AvgHours != 2 || metrics.MaxHours != 2 || metrics.MinHours != 2 {
		t.Errorf("工时统计 = %+v", metrics)
	}
	if metrics.OverallFairnessScore != 100 {
		t.Errorf("完全均衡评分 = %v, want 100", metrics.OverallFairnessScore)
	}
}

func TestFairnessAnalyzeSkewed(t *testing.T) {
	workers := []*model.Worker{statsWorker("a", 15), statsWorker("b", 15)}
	slots := statsSlots(4)
	assignees := [][]string{{"a"}, {"a"}, {"a"}, {"a"}}

	metrics := NewFairnessAnalyzer().Analyze(slots, assignees, workers)

	// 工时 (4, 0)：均值 2，方差 4，极差 4
	if metrics.WorkloadVariance != 4 {
		t.Errorf("方差 = %v, want 4", metrics.WorkloadVariance)
	}
	if metrics.HoursRange != 4 {
		t.Errorf("极差 = %v, want 4", metrics.HoursRange)
	}
	if metrics.WorkloadGini != 0.5 {
		t.Errorf("基尼系数 = %v, want 0.5", metrics.WorkloadGini)
	}
	if metrics.OverallFairnessScore >= 100 {
		t.Errorf("倾斜分配评分 = %v, 应低于 100", metrics.OverallFairnessScore)
	}

	// 员工统计按工时降序
	if metrics.WorkerStats[0].WorkerID != "a" || metrics.WorkerStats[0].TotalHours != 4 {
		t.Errorf("员工统计排序错误: %+v", metrics.WorkerStats)
	}
	if metrics.WorkerStats[0].Deviation != -11 {
		t.Errorf("偏差 = %v, want -11", metrics.WorkerStats[0].Deviation)
	}
}

func TestFairnessMorningShiftCount(t *testing.T) {
	workers := []*model.Worker{statsWorker("a", 15)}
	// 周一 07:30-10:30 三个连续小时班次（07:30、08:30 在 9 点前开始），
	// 周二一个 10:00 班次
	var slots []model.TimeSlot
	for i := 0; i < 3; i++ {
		start := 450 + i*60
		slots = append(slots, model.TimeSlot{
			Index: len(slots), Date: "2026-05-11", Day: model.Monday,
			StartMin: start, EndMin: start + 60,
			Kind: model.KindWindow, StaffMin: 1, StaffMax: 2,
		})
	}
	slots = append(slots, model.TimeSlot{
		Index: len(slots), Date: "2026-05-12", Day: model.Tuesday,
		StartMin: 600, EndMin: 720,
		Kind: model.KindWindow, StaffMin: 1, StaffMax: 2,
	})
	assignees := [][]string{{"a"}, {"a"}, {"a"}, {"a"}}

	metrics := NewFairnessAnalyzer().Analyze(slots, assignees, workers)

	stat := metrics.WorkerStats[0]
	if stat.ShiftCount != 2 {
		t.Errorf("块数 = %d, want 2", stat.ShiftCount)
	}
	// 早班按原子班次计：周一的连续块贡献 2 个
	if stat.MorningShifts != 2 {
		t.Errorf("早班数 = %d, want 2", stat.MorningShifts)
	}
}

func TestFairnessEmptyRoster(t *testing.T) {
	metrics := NewFairnessAnalyzer().Analyze(nil, nil, nil)
	if metrics.OverallFairnessScore != 100 {
		t.Errorf("空输入评分 = %v, want 100", metrics.OverallFairnessScore)
	}
}

func TestGini(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "完全均匀", values: []float64{10, 10, 10}, want: 0},
		{name: "完全集中", values: []float64{12, 0, 0}, want: 2.0 / 3.0},
		{name: "空列表", values: nil, want: 0},
		{name: "全零", values: []float64{0, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := giniOf(tt.values); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("giniOf(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}
