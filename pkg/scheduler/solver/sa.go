// Package solver 提供排班求解器
package solver

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/scheduler/optimizer"
)

// SAConfig 模拟退火参数
type SAConfig struct {
	InitialTemp   float64 `json:"initial_temp" yaml:"initial_temp"`
	FinalTemp     float64 `json:"final_temp" yaml:"final_temp"`
	CoolingRate   float64 `json:"cooling_rate" yaml:"cooling_rate"` // 几何降温系数
	ItersPerTemp  int     `json:"iters_per_temp" yaml:"iters_per_temp"`
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations"`
	ReheatAfter   int     `json:"reheat_after" yaml:"reheat_after"` // 连续无改进多少次后回温
}

// DefaultSAConfig 默认模拟退火参数
func DefaultSAConfig() SAConfig {
	return SAConfig{
		InitialTemp:   1000.0,
		FinalTemp:     0.1,
		CoolingRate:   0.995,
		ItersPerTemp:  50,
		MaxIterations: 100000,
		ReheatAfter:   1000,
	}
}

// SASolver 模拟退火求解器
// 单状态搜索：贪心解起步，块感知邻域移动，Metropolis 接受准则，
// 几何降温，卡住时回温到 T0/2。
type SASolver struct {
	cfg    SAConfig
	logger *logger.SolverLogger
}

// NewSA 创建模拟退火求解器
func NewSA(cfg SAConfig) *SASolver {
	return &SASolver{
		cfg:    cfg,
		logger: logger.NewSolverLogger(AlgorithmSA),
	}
}

// Name 返回求解器名称
func (s *SASolver) Name() string {
	return "SASolver"
}

// Solve 运行模拟退火
func (s *SASolver) Solve(ctx context.Context, env *scheduler.Environment, opts Options) (*Result, error) {
	start := time.Now()
	dl := deadline(start, opts)
	if len(env.Workers) == 0 {
		return nil, errors.ErrEmptyRoster
	}
	s.logger.StartSolve(len(env.Workers), len(env.Slots), opts.Seed)

	rng := rand.New(rand.NewSource(opts.Seed))
	gen := optimizer.NewGenerator(env, rng)

	// 初始解使用贪心基线
	greedyRes, err := NewGreedy().Solve(ctx, env, Options{})
	if err != nil {
		return nil, err
	}
	current := greedyRes.State
	currentCost, _ := env.Evaluate(current)

	best := current.Clone()
	bestCost := currentCost
	history := []float64{bestCost}

	temperature := s.cfg.InitialTemp
	iteration := 0
	sinceImprove := 0
	converged := false

outer:
	for temperature > s.cfg.FinalTemp && iteration < s.cfg.MaxIterations {
		if cancelled(ctx) || expired(dl) {
			break
		}

		for i := 0; i < s.cfg.ItersPerTemp; i++ {
			iteration++
			if iteration > s.cfg.MaxIterations {
				break outer
			}

			neighbor := gen.Neighbor(current)
			if neighbor == nil {
				sinceImprove++
				continue
			}
			neighborCost, _ := env.Evaluate(neighbor)

			if accept(currentCost, neighborCost, temperature, rng) {
				current = neighbor
				currentCost = neighborCost

				if currentCost < bestCost {
					best = current.Clone()
					bestCost = currentCost
					history = append(history, bestCost)
					sinceImprove = 0
					s.logger.Improvement(iteration, bestCost)
					continue
				}
			}
			sinceImprove++

			if bestCost == 0 {
				converged = true
				break outer
			}

			// 长时间无改进时回温，跳出局部最优
			if s.cfg.ReheatAfter > 0 && sinceImprove >= s.cfg.ReheatAfter {
				temperature = s.cfg.InitialTemp / 2
				sinceImprove = 0
			}
		}

		temperature *= s.cfg.CoolingRate
	}

	if temperature <= s.cfg.FinalTemp {
		converged = true
	}

	penalty, breakdown := env.Evaluate(best)
	duration := time.Since(start)
	s.logger.SolveComplete(duration, penalty, converged)

	return &Result{
		Algorithm:  AlgorithmSA,
		State:      best,
		Penalty:    penalty,
		Breakdown:  breakdown,
		Iterations: iteration,
		Duration:   duration,
		Converged:  converged,
		Seed:       opts.Seed,
		History:    history,
	}, nil
}

// accept Metropolis 接受准则
// 不劣于当前解总是接受，劣解以 exp(-ΔE/T) 的概率接受。
func accept(currentCost, newCost, temperature float64, rng *rand.Rand) bool {
	if newCost <= currentCost {
		return true
	}
	if temperature <= 0 {
		return false
	}
	delta := newCost - currentCost
	return rng.Float64() < math.Exp(-delta/temperature)
}
