// Package constraint 定义约束接口和管理器
package constraint

import (
	"github.com/zhiban/zhiban/pkg/model"
)

// Type 约束类型标识
type Type string

const (
	// 硬约束类型
	TypeCoverageUnder  Type = "coverage_under"     // 班次人数不足
	TypeWorkerConflict Type = "worker_conflict"    // 与不可用时间冲突
	TypeCommuter       Type = "commuter_violation" // 通勤员工被排早班
	TypeHourOver       Type = "hour_over"          // 周工时超上限

	// 软约束类型
	TypeCoverageOver     Type = "coverage_over"     // 班次人数超编
	TypeHourUnder        Type = "hour_under"        // 周工时低于软下限
	TypeDesiredDeviation Type = "desired_deviation" // 偏离期望工时
	TypeTierMismatch     Type = "tier_mismatch"     // 级别与班次类型不匹配
	TypeMorningOverload  Type = "morning_overload"  // 早班过多
	TypeFairnessVariance Type = "fairness_variance" // 工时方差
	TypeShiftLength      Type = "shift_length"      // 连续值班时长越界
)

// Category 约束类别
type Category string

const (
	CategoryHard Category = "hard" // 硬约束（必须满足）
	CategorySoft Category = "soft" // 软约束（尽量满足）
)

// Weights 各约束类别的惩罚权重
type Weights struct {
	CoverageUnder    float64 `json:"coverage_under" yaml:"coverage_under"`
	CoverageOver     float64 `json:"coverage_over" yaml:"coverage_over"`
	WorkerConflict   float64 `json:"worker_conflict" yaml:"worker_conflict"`
	Commuter         float64 `json:"commuter_violation" yaml:"commuter_violation"`
	HourOver         float64 `json:"hour_over" yaml:"hour_over"`
	HourUnder        float64 `json:"hour_under" yaml:"hour_under"`
	DesiredDeviation float64 `json:"desired_deviation" yaml:"desired_deviation"`
	TierMismatch     float64 `json:"tier_mismatch" yaml:"tier_mismatch"`
	MorningOverload  float64 `json:"morning_overload" yaml:"morning_overload"`
	FairnessVariance float64 `json:"fairness_variance" yaml:"fairness_variance"`
	ShiftLength      float64 `json:"shift_length" yaml:"shift_length"`
}

// DefaultWeights 默认权重，硬约束远高于软约束
func DefaultWeights() Weights {
	return Weights{
		CoverageUnder:    200,
		CoverageOver:     50,
		WorkerConflict:   500,
		Commuter:         300,
		HourOver:         100,
		HourUnder:        10,
		DesiredDeviation: 2,
		TierMismatch:     5,
		MorningOverload:  20,
		FairnessVariance: 1,
		ShiftLength:      20,
	}
}

// Rules 工时与班次形态规则
type Rules struct {
	TargetHours  int `json:"target_hours" yaml:"target_hours"`   // 目标周工时
	MaxHours     int `json:"max_hours" yaml:"max_hours"`         // 周工时硬上限
	MinHours     int `json:"min_hours" yaml:"min_hours"`         // 周工时软下限
	MorningMax   int `json:"morning_max" yaml:"morning_max"`     // 每人早班上限
	MinRunMin    int `json:"min_run_min" yaml:"min_run_min"`     // 连续值班最短分钟数
	MaxRunMin    int `json:"max_run_min" yaml:"max_run_min"`     // 连续值班最长分钟数
	MorningStart int `json:"morning_start" yaml:"morning_start"` // 早班判定：开始时间早于该分钟数
}

// DefaultRules 默认规则
func DefaultRules() Rules {
	return Rules{
		TargetHours:  15,
		MaxHours:     20,
		MinHours:     14,
		MorningMax:   2,
		MinRunMin:    90,
		MaxRunMin:    360,
		MorningStart: model.CommuterCutoffMin,
	}
}

// Constraint 约束接口
type Constraint interface {
	// Name 返回约束名称
	Name() string

	// Type 返回约束类型
	Type() Type

	// Category 返回约束类别
	Category() Category

	// Weight 返回单位惩罚权重
	Weight() float64

	// Evaluate 评估整个排班，返回惩罚值和违反次数
	Evaluate(ctx *Context) (penalty float64, count int)
}

// CategoryStat 单个约束类型的统计
type CategoryStat struct {
	Count   int     `json:"count"`
	Penalty float64 `json:"penalty"`
}

// Breakdown 按约束类型汇总的违反明细
type Breakdown map[Type]CategoryStat

// Add 累加某类约束的统计
func (b Breakdown) Add(t Type, count int, penalty float64) {
	stat := b[t]
	stat.Count += count
	stat.Penalty += penalty
	b[t] = stat
}

// Count 返回某类约束的违反次数
func (b Breakdown) Count(t Type) int {
	return b[t].Count
}

// Total 返回总惩罚值
func (b Breakdown) Total() float64 {
	var total float64
	for _, stat := range b {
		total += stat.Penalty
	}
	return total
}

// Counts 返回 类型 -> 次数 的映射（用于导出）
func (b Breakdown) Counts() map[string]int {
	counts := make(map[string]int, len(b))
	for t, stat := range b {
		counts[string(t)] = stat.Count
	}
	return counts
}

// Context 排班评估上下文
// 每次评估构造一次，预计算各约束共用的统计量。
type Context struct {
	Workers   []*model.Worker
	Slots     []model.TimeSlot
	Assignees [][]string
	Rules     Rules

	// 预计算缓存
	Hours     map[string]float64       // 每个员工的总工时
	Runs      map[string][]model.Block // 每个员工的连续值班块
	workerMap map[string]*model.Worker

	// UnderCovered 由覆盖约束填充，记录人数不足的班次序号
	UnderCovered []int
}

// NewContext 创建评估上下文并预计算统计量
func NewContext(workers []*model.Worker, slots []model.TimeSlot, assignees [][]string, rules Rules) *Context {
	ctx := &Context{
		Workers:   workers,
		Slots:     slots,
		Assignees: assignees,
		Rules:     rules,
		workerMap: make(map[string]*model.Worker, len(workers)),
	}
	for _, w := range workers {
		ctx.workerMap[w.ID] = w
	}
	ctx.Hours = model.HoursByWorker(slots, assignees)
	ctx.Runs = model.WorkerRuns(slots, assignees)
	return ctx
}

// Worker 根据 ID 获取员工
func (c *Context) Worker(id string) *model.Worker {
	return c.workerMap[id]
}
