// Package builtin 提供内置约束实现
package builtin

import (
	"math"

	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// HourOverConstraint 周工时超上限约束
// 超出上限的每小时计一次惩罚。
type HourOverConstraint struct {
	*BaseConstraint
}

// NewHourOverConstraint 创建工时超上限约束
func NewHourOverConstraint(weight float64) *HourOverConstraint {
	return &HourOverConstraint{
		BaseConstraint: NewBaseConstraint(
			"周工时超上限",
			constraint.TypeHourOver,
			constraint.CategoryHard,
			weight,
		),
	}
}

// Evaluate 评估整个排班
func (c *HourOverConstraint) Evaluate(ctx *constraint.Context) (float64, int) {
	var penalty float64
	count := 0
	limit := float64(ctx.Rules.MaxHours)

	for _, w := range ctx.Workers {
		if over := ctx.Hours[w.ID] - limit; over > 0 {
			units := int(math.Ceil(over))
			penalty += c.Weight() * over
			count += units
		}
	}

	return penalty, count
}

// HourUnderConstraint 周工时低于软下限约束
// 只统计在职员工；低于下限的每小时计一次惩罚。
type HourUnderConstraint struct {
	*BaseConstraint
}

// NewHourUnderConstraint 创建工时不足约束
func NewHourUnderConstraint(weight float64) *HourUnderConstraint {
	return &HourUnderConstraint{
		BaseConstraint: NewBaseConstraint(
			"周工时不足",
			constraint.TypeHourUnder,
			constraint.CategorySoft,
			weight,
		),
	}
}

// Evaluate 评估整个排班
func (c *HourUnderConstraint) Evaluate(ctx *constraint.Context) (float64, int) {
	var penalty float64
	count := 0
	floor := float64(ctx.Rules.MinHours)

	for _, w := range ctx.Workers {
		if !w.IsActive {
			continue
		}
		if short := floor - ctx.Hours[w.ID]; short > 0 {
			units := int(math.Ceil(short))
			penalty += c.Weight() * short
			count += units
		}
	}

	return penalty, count
}

// DesiredDeviationConstraint 偏离期望工时约束
type DesiredDeviationConstraint struct {
	*BaseConstraint
}

// NewDesiredDeviationConstraint 创建期望工时偏差约束
func NewDesiredDeviationConstraint(weight float64) *DesiredDeviationConstraint {
	return &DesiredDeviationConstraint{
		BaseConstraint: NewBaseConstraint(
			"偏离期望工时",
			constraint.TypeDesiredDeviation,
			constraint.CategorySoft,
			weight,
		),
	}
}

// Evaluate 评估整个排班
func (c *DesiredDeviationConstraint) Evaluate(ctx *constraint.Context) (float64, int) {
	var penalty float64
	count := 0

	for _, w := range ctx.Workers {
		if !w.IsActive {
			continue
		}
		diff := math.Abs(ctx.Hours[w.ID] - float64(w.DesiredHours))
		if diff > 0 {
			penalty += c.Weight() * diff
			count++
		}
	}

	return penalty, count
}

// FairnessVarianceConstraint 工时方差约束
// 以在职员工工时的方差衡量整体公平性。
type FairnessVarianceConstraint struct {
	*BaseConstraint
}

// NewFairnessVarianceConstraint 创建工时方差约束
func NewFairnessVarianceConstraint(weight float64) *FairnessVarianceConstraint {
	return &FairnessVarianceConstraint{
		BaseConstraint: NewBaseConstraint(
			"工时方差",
			constraint.TypeFairnessVariance,
			constraint.CategorySoft,
			weight,
		),
	}
}

// Evaluate 评估整个排班
func (c *FairnessVarianceConstraint) Evaluate(ctx *constraint.Context) (float64, int) {
	var hours []float64
	for _, w := range ctx.Workers {
		if w.IsActive {
			hours = append(hours, ctx.Hours[w.ID])
		}
	}
	if len(hours) == 0 {
		return 0, 0
	}

	var sum float64
	for _, h := range hours {
		sum += h
	}
	mean := sum / float64(len(hours))

	var variance float64
	for _, h := range hours {
		diff := h - mean
		variance += diff * diff
	}
	variance /= float64(len(hours))

	if variance == 0 {
		return 0, 0
	}
	return c.Weight() * variance, 1
}
