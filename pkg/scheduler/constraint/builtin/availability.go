// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// WorkerConflictConstraint 员工不可用时间冲突约束
// 员工被排到与其考试等不可用时间段重叠的班次时计一次违反。
type WorkerConflictConstraint struct {
	*BaseConstraint
}

// NewWorkerConflictConstraint 创建不可用时间冲突约束
func NewWorkerConflictConstraint(weight float64) *WorkerConflictConstraint {
	return &WorkerConflictConstraint{
		BaseConstraint: NewBaseConstraint(
			"不可用时间冲突",
			constraint.TypeWorkerConflict,
			constraint.CategoryHard,
			weight,
		),
	}
}

// Evaluate 评估整个排班
func (c *WorkerConflictConstraint) Evaluate(ctx *constraint.Context) (float64, int) {
	var penalty float64
	count := 0

	for i, ids := range ctx.Assignees {
		if i >= len(ctx.Slots) {
			break
		}
		slot := ctx.Slots[i]
		target := slot.Interval()
		for _, id := range ids {
			w := ctx.Worker(id)
			if w == nil {
				continue
			}
			for _, busy := range w.BusyIntervals {
				if busy.Conflicts(target) {
					penalty += c.Weight()
					count++
					break
				}
			}
		}
	}

	return penalty, count
}

// CommuterConstraint 通勤员工早班约束
// 通勤员工不得被排到 9 点前开始的班次。
type CommuterConstraint struct {
	*BaseConstraint
}

// NewCommuterConstraint 创建通勤早班约束
func NewCommuterConstraint(weight float64) *CommuterConstraint {
	return &CommuterConstraint{
		BaseConstraint: NewBaseConstraint(
			"通勤员工早班",
			constraint.TypeCommuter,
			constraint.CategoryHard,
			weight,
		),
	}
}

// Evaluate 评估整个排班
func (c *CommuterConstraint) Evaluate(ctx *constraint.Context) (float64, int) {
	var penalty float64
	count := 0

	for i, ids := range ctx.Assignees {
		if i >= len(ctx.Slots) {
			break
		}
		if !ctx.Slots[i].StartsBeforeCommuterCutoff() {
			continue
		}
		for _, id := range ids {
			if w := ctx.Worker(id); w != nil && w.IsCommuter {
				penalty += c.Weight()
				count++
			}
		}
	}

	return penalty, count
}
