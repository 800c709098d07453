// Package scheduler 提供排班问题的环境与求解状态
package scheduler

import (
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint/builtin"
)

// Environment 排班环境：员工、班次目录和评估器
// 求解期间只读，所有求解器共用同一个评估口径。
type Environment struct {
	Workers []*model.Worker
	Slots   []model.TimeSlot
	Rules   constraint.Rules

	manager   *constraint.Manager
	workerMap map[string]*model.Worker
	durs      []float64

	// Evaluations 累计评估次数（求解诊断用）
	Evaluations int
}

// NewEnvironment 创建排班环境
// 员工按 ID 排序以保证迭代顺序确定。
func NewEnvironment(workers []*model.Worker, slots []model.TimeSlot, weights constraint.Weights, rules constraint.Rules) *Environment {
	sorted := make([]*model.Worker, len(workers))
	copy(sorted, workers)
	model.SortWorkers(sorted)

	env := &Environment{
		Workers:   sorted,
		Slots:     slots,
		Rules:     rules,
		manager:   constraint.NewManager(),
		workerMap: make(map[string]*model.Worker, len(sorted)),
		durs:      make([]float64, len(slots)),
	}
	for _, w := range sorted {
		env.workerMap[w.ID] = w
	}
	for i, s := range slots {
		env.durs[i] = s.DurationHours()
	}
	builtin.RegisterDefaults(env.manager, weights)
	return env
}

// NewState 创建与环境匹配的空状态
func (e *Environment) NewState() *State {
	return NewState(e.durs)
}

// Manager 返回约束管理器
func (e *Environment) Manager() *constraint.Manager {
	return e.manager
}

// Worker 根据 ID 获取员工
func (e *Environment) Worker(id string) *model.Worker {
	return e.workerMap[id]
}

// Evaluate 评估候选解，返回总惩罚值和违反明细
func (e *Environment) Evaluate(st *State) (float64, constraint.Breakdown) {
	e.Evaluations++
	ctx := constraint.NewContext(e.Workers, e.Slots, st.Assignees, e.Rules)
	return e.manager.Evaluate(ctx)
}

// AvailableWorkers 返回可承担某班次的在职员工（按 ID 有序）
func (e *Environment) AvailableWorkers(slot model.TimeSlot) []*model.Worker {
	var available []*model.Worker
	for _, w := range e.Workers {
		if w.IsAvailable(slot.Date, slot.StartMin, slot.EndMin) {
			available = append(available, w)
		}
	}
	return available
}

// EligibleWorkers 在可用员工基础上再过滤：未在该班次中、加入后不超过工时上限
func (e *Environment) EligibleWorkers(slot model.TimeSlot, st *State, capHours float64) []*model.Worker {
	var eligible []*model.Worker
	dur := slot.DurationHours()
	for _, w := range e.AvailableWorkers(slot) {
		if st.Has(slot.Index, w.ID) {
			continue
		}
		if st.Hours(w.ID)+dur > capHours {
			continue
		}
		eligible = append(eligible, w)
	}
	return eligible
}

// UncoveredSlots 返回人数不足的班次序号
func (e *Environment) UncoveredSlots(st *State) []int {
	var uncovered []int
	for i, slot := range e.Slots {
		if st.Count(i) < slot.StaffMin {
			uncovered = append(uncovered, i)
		}
	}
	return uncovered
}

// HasHardViolation 检查明细中是否有硬约束违反
func (e *Environment) HasHardViolation(breakdown constraint.Breakdown) bool {
	return e.manager.HasHardViolation(breakdown)
}
