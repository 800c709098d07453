// Package solver 提供排班求解器
package solver

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/scheduler/optimizer"
)

// CSPConfig 两阶段求解器参数
type CSPConfig struct {
	MaxIterations int           `json:"max_iterations" yaml:"max_iterations"`
	SampleSize    int           `json:"sample_size" yaml:"sample_size"`   // 每轮采样的邻域解数
	ExhaustLimit  int           `json:"exhaust_limit" yaml:"exhaust_limit"` // 连续无改进多少轮视为搜索枯竭
	MaxTime       time.Duration `json:"max_time" yaml:"max_time"`
}

// DefaultCSPConfig 默认两阶段求解器参数
func DefaultCSPConfig() CSPConfig {
	return CSPConfig{
		MaxIterations: 10000,
		SampleSize:    20,
		ExhaustLimit:  500,
		MaxTime:       60 * time.Second,
	}
}

// CSPSolver 约束满足式两阶段求解器
// 第一阶段按最少剩余可选（MRV）顺序做贪心构造：
// 可用人最少的班次优先填，人选取工时距期望最远者。
// 第二阶段在同一邻域移动集上做最优改进局部搜索，只接受严格改进。
type CSPSolver struct {
	cfg    CSPConfig
	logger *logger.SolverLogger
}

// NewCSP 创建两阶段求解器
func NewCSP(cfg CSPConfig) *CSPSolver {
	return &CSPSolver{
		cfg:    cfg,
		logger: logger.NewSolverLogger(AlgorithmCSP),
	}
}

// Name 返回求解器名称
func (s *CSPSolver) Name() string {
	return "CSPSolver"
}

// Solve 运行两阶段求解
func (s *CSPSolver) Solve(ctx context.Context, env *scheduler.Environment, opts Options) (*Result, error) {
	start := time.Now()
	if len(env.Workers) == 0 {
		return nil, errors.ErrEmptyRoster
	}
	maxTime := opts.MaxTime
	if maxTime <= 0 {
		maxTime = s.cfg.MaxTime
	}
	dl := deadline(start, Options{MaxTime: maxTime})
	s.logger.StartSolve(len(env.Workers), len(env.Slots), opts.Seed)

	rng := rand.New(rand.NewSource(opts.Seed))
	gen := optimizer.NewGenerator(env, rng)

	// 第一阶段：约束最紧的班次优先的贪心构造
	current := s.construct(env)
	currentCost, _ := env.Evaluate(current)

	best := current.Clone()
	bestCost := currentCost
	history := []float64{bestCost}

	// 第二阶段：最优改进局部搜索
	iteration := 0
	noImprove := 0
	converged := false

	for iteration = 0; iteration < s.cfg.MaxIterations; iteration++ {
		if cancelled(ctx) || expired(dl) {
			break
		}
		if bestCost == 0 {
			converged = true
			break
		}
		if noImprove >= s.cfg.ExhaustLimit {
			// 移动枯竭，视为收敛
			converged = true
			break
		}

		// 采样一批邻域解，取其中最优者
		var bestNeighbor *scheduler.State
		bestNeighborCost := 0.0
		for i := 0; i < s.cfg.SampleSize; i++ {
			neighbor := gen.Neighbor(current)
			if neighbor == nil {
				continue
			}
			cost, _ := env.Evaluate(neighbor)
			if bestNeighbor == nil || cost < bestNeighborCost {
				bestNeighbor = neighbor
				bestNeighborCost = cost
			}
		}

		// 只接受严格改进
		if bestNeighbor != nil && bestNeighborCost < currentCost {
			current = bestNeighbor
			currentCost = bestNeighborCost
			noImprove = 0

			if currentCost < bestCost {
				best = current.Clone()
				bestCost = currentCost
				history = append(history, bestCost)
				s.logger.Improvement(iteration, bestCost)
			}
		} else {
			noImprove++
		}
	}

	penalty, breakdown := env.Evaluate(best)
	duration := time.Since(start)
	s.logger.SolveComplete(duration, penalty, converged)

	return &Result{
		Algorithm:  AlgorithmCSP,
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

// construct 第一阶段贪心构造
// 班次按可用人数升序处理（并列时按日期、时间、类型），
// 每个班次填到人数下限，人选按距期望工时的差距从大到小。
func (s *CSPSolver) construct(env *scheduler.Environment) *scheduler.State {
	st := env.NewState()
	capHours := float64(env.Rules.MaxHours)

	order := make([]int, len(env.Slots))
	availCount := make([]int, len(env.Slots))
	for i := range env.Slots {
		order[i] = i
		availCount[i] = len(env.AvailableWorkers(env.Slots[i]))
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if availCount[ia] != availCount[ib] {
			return availCount[ia] < availCount[ib]
		}
		sa, sb := env.Slots[ia], env.Slots[ib]
		if sa.Date != sb.Date {
			return sa.Date < sb.Date
		}
		if sa.StartMin != sb.StartMin {
			return sa.StartMin < sb.StartMin
		}
		return sa.Kind == model.KindWindow && sb.Kind == model.KindRemote
	})

	for _, idx := range order {
		slot := env.Slots[idx]
		for st.Count(idx) < slot.StaffMin {
			eligible := env.EligibleWorkers(slot, st, capHours)
			if len(eligible) == 0 {
				break
			}
			sort.SliceStable(eligible, func(a, b int) bool {
				wa, wb := eligible[a], eligible[b]
				// 距期望工时差距大者优先
				da := float64(wa.DesiredHours) - st.Hours(wa.ID)
				db := float64(wb.DesiredHours) - st.Hours(wb.ID)
				if da != db {
					return da > db
				}
				return wa.ID < wb.ID
			})
			st.Add(idx, eligible[0].ID)
		}
	}

	return st
}
