// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// TierMismatchConstraint 级别偏好约束
// Tier 1-2 偏好 Window，Tier 3-4 偏好 Remote；排反方向时轻度惩罚。
type TierMismatchConstraint struct {
	*BaseConstraint
}

// NewTierMismatchConstraint 创建级别偏好约束
func NewTierMismatchConstraint(weight float64) *TierMismatchConstraint {
	return &TierMismatchConstraint{
		BaseConstraint: NewBaseConstraint(
			"级别偏好不符",
			constraint.TypeTierMismatch,
			constraint.CategorySoft,
			weight,
		),
	}
}

// Evaluate 评估整个排班
func (c *TierMismatchConstraint) Evaluate(ctx *constraint.Context) (float64, int) {
	var penalty float64
	count := 0

	for i, ids := range ctx.Assignees {
		if i >= len(ctx.Slots) {
			break
		}
		kind := ctx.Slots[i].Kind
		for _, id := range ids {
			w := ctx.Worker(id)
			if w == nil {
				continue
			}
			mismatch := (kind == model.KindWindow && !w.PrefersWindow()) ||
				(kind == model.KindRemote && w.PrefersWindow())
			if mismatch {
				penalty += c.Weight()
				count++
			}
		}
	}

	return penalty, count
}

// MorningOverloadConstraint 早班过多约束
// 统计每个员工 9 点前开始的班次，超过上限的部分按次惩罚。
type MorningOverloadConstraint struct {
	*BaseConstraint
}

// NewMorningOverloadConstraint 创建早班过多约束
func NewMorningOverloadConstraint(weight float64) *MorningOverloadConstraint {
	return &MorningOverloadConstraint{
		BaseConstraint: NewBaseConstraint(
			"早班过多",
			constraint.TypeMorningOverload,
			constraint.CategorySoft,
			weight,
		),
	}
}

// Evaluate 评估整个排班
func (c *MorningOverloadConstraint) Evaluate(ctx *constraint.Context) (float64, int) {
	var penalty float64
	count := 0

	mornings := make(map[string]int)
	for i, ids := range ctx.Assignees {
		if i >= len(ctx.Slots) {
			break
		}
		if ctx.Slots[i].StartMin >= ctx.Rules.MorningStart {
			continue
		}
		for _, id := range ids {
			mornings[id]++
		}
	}

	for _, w := range ctx.Workers {
		if extra := mornings[w.ID] - ctx.Rules.MorningMax; extra > 0 {
			penalty += c.Weight() * float64(extra)
			count += extra
		}
	}

	return penalty, count
}
