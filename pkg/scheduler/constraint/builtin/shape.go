// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// ShiftLengthConstraint 连续值班时长约束
// 合并后的连续值班块短于下限或长于上限时各计一次违反。
type ShiftLengthConstraint struct {
	*BaseConstraint
}

// NewShiftLengthConstraint 创建连续值班时长约束
func NewShiftLengthConstraint(weight float64) *ShiftLengthConstraint {
	return &ShiftLengthConstraint{
		BaseConstraint: NewBaseConstraint(
			"连续值班时长越界",
			constraint.TypeShiftLength,
			constraint.CategorySoft,
			weight,
		),
	}
}

// Evaluate 评估整个排班
func (c *ShiftLengthConstraint) Evaluate(ctx *constraint.Context) (float64, int) {
	var penalty float64
	count := 0

	for _, w := range ctx.Workers {
		for _, run := range ctx.Runs[w.ID] {
			dur := run.DurationMin()
			if dur < ctx.Rules.MinRunMin || dur > ctx.Rules.MaxRunMin {
				penalty += c.Weight()
				count++
			}
		}
	}

	return penalty, count
}
