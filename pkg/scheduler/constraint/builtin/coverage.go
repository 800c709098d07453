// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// CoverageUnderConstraint 班次人数不足约束
// 每缺一人计一次惩罚，并把不足的班次序号记录到上下文中。
type CoverageUnderConstraint struct {
	*BaseConstraint
}

// NewCoverageUnderConstraint 创建人数不足约束
func NewCoverageUnderConstraint(weight float64) *CoverageUnderConstraint {
	return &CoverageUnderConstraint{
		BaseConstraint: NewBaseConstraint(
			"班次人数不足",
			constraint.TypeCoverageUnder,
			constraint.CategoryHard,
			weight,
		),
	}
}

// Evaluate 评估整个排班
func (c *CoverageUnderConstraint) Evaluate(ctx *constraint.Context) (float64, int) {
	var penalty float64
	count := 0
	ctx.UnderCovered = ctx.UnderCovered[:0]

	for i, slot := range ctx.Slots {
		assigned := 0
		if i < len(ctx.Assignees) {
			assigned = len(ctx.Assignees[i])
		}
		if assigned < slot.StaffMin {
			missing := slot.StaffMin - assigned
			penalty += c.Weight() * float64(missing)
			count += missing
			ctx.UnderCovered = append(ctx.UnderCovered, i)
		}
	}

	return penalty, count
}

// CoverageOverConstraint 班次人数超编约束
type CoverageOverConstraint struct {
	*BaseConstraint
}

// NewCoverageOverConstraint 创建人数超编约束
func NewCoverageOverConstraint(weight float64) *CoverageOverConstraint {
	return &CoverageOverConstraint{
		BaseConstraint: NewBaseConstraint(
			"班次人数超编",
			constraint.TypeCoverageOver,
			constraint.CategorySoft,
			weight,
		),
	}
}

// Evaluate 评估整个排班
func (c *CoverageOverConstraint) Evaluate(ctx *constraint.Context) (float64, int) {
	var penalty float64
	count := 0

	for i, slot := range ctx.Slots {
		if i >= len(ctx.Assignees) {
			break
		}
		if extra := len(ctx.Assignees[i]) - slot.StaffMax; extra > 0 {
			penalty += c.Weight() * float64(extra)
			count += extra
		}
	}

	return penalty, count
}
