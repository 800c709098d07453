// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// RegisterDefaults 按权重配置注册全部内置约束
func RegisterDefaults(m *constraint.Manager, w constraint.Weights) {
	m.Register(NewCoverageUnderConstraint(w.CoverageUnder))
	m.Register(NewCoverageOverConstraint(w.CoverageOver))
	m.Register(NewWorkerConflictConstraint(w.WorkerConflict))
	m.Register(NewCommuterConstraint(w.Commuter))
	m.Register(NewHourOverConstraint(w.HourOver))
	m.Register(NewHourUnderConstraint(w.HourUnder))
	m.Register(NewDesiredDeviationConstraint(w.DesiredDeviation))
	m.Register(NewTierMismatchConstraint(w.TierMismatch))
	m.Register(NewMorningOverloadConstraint(w.MorningOverload))
	m.Register(NewFairnessVarianceConstraint(w.FairnessVariance))
	m.Register(NewShiftLengthConstraint(w.ShiftLength))
}
