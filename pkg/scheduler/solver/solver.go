// Package solver 提供排班求解器
package solver

import (
	"context"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// 算法名称
const (
	AlgorithmGreedy = "greedy"
	AlgorithmGA     = "GA"
	AlgorithmSA     = "SA"
	AlgorithmCSP    = "CSP"
)

// Options 单次求解的运行参数
type Options struct {
	Seed    int64         `json:"seed"`     // 随机种子，同种子同输入结果可复现
	MaxTime time.Duration `json:"max_time"` // 墙钟时间预算，在外层循环边界检查
}

// Result 求解结果
type Result struct {
	Algorithm  string               `json:"algorithm"`
	State      *scheduler.State     `json:"-"`
	Penalty    float64              `json:"penalty"`
	Breakdown  constraint.Breakdown `json:"breakdown"`
	Iterations int                  `json:"iterations"`
	Duration   time.Duration        `json:"duration"`
	Converged  bool                 `json:"converged"`
	Seed       int64                `json:"seed"`
	// History 每次改进时的最优惩罚值轨迹
	History []float64 `json:"history,omitempty"`
}

// Solver 求解器接口
type Solver interface {
	// Solve 在给定环境上求解，总是返回已见到的最优解
	Solve(ctx context.Context, env *scheduler.Environment, opts Options) (*Result, error)

	// Name 返回求解器名称
	Name() string
}

// Config 各求解器的参数集合
type Config struct {
	GA  GAConfig  `json:"ga" yaml:"ga"`
	SA  SAConfig  `json:"sa" yaml:"sa"`
	CSP CSPConfig `json:"csp" yaml:"csp"`
}

// DefaultConfig 返回默认求解器参数
func DefaultConfig() Config {
	return Config{
		GA:  DefaultGAConfig(),
		SA:  DefaultSAConfig(),
		CSP: DefaultCSPConfig(),
	}
}

// New 按算法名称创建求解器
func New(algorithm string, cfg Config) (Solver, error) {
	switch algorithm {
	case AlgorithmGreedy:
		return NewGreedy(), nil
	case AlgorithmGA:
		return NewGA(cfg.GA), nil
	case AlgorithmSA:
		return NewSA(cfg.SA), nil
	case AlgorithmCSP:
		return NewCSP(cfg.CSP), nil
	default:
		return nil, errors.UnknownAlgorithm(algorithm)
	}
}

// deadline 计算本次求解的截止时间，零预算表示不限时
func deadline(start time.Time, opts Options) time.Time {
	if opts.MaxTime <= 0 {
		return time.Time{}
	}
	return start.Add(opts.MaxTime)
}

// expired 检查截止时间是否已过
func expired(dl time.Time) bool {
	return !dl.IsZero() && time.Now().After(dl)
}

// cancelled 检查外部取消
func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
