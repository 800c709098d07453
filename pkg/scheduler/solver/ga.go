// Package solver 提供排班求解器
package solver

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/scheduler/optimizer"
)

// GAConfig 遗传算法参数
type GAConfig struct {
	PopulationSize  int     `json:"population_size" yaml:"population_size"`
	Generations     int     `json:"generations" yaml:"generations"`
	CrossoverRate   float64 `json:"crossover_rate" yaml:"crossover_rate"`
	MutationRate    float64 `json:"mutation_rate" yaml:"mutation_rate"`
	MutationRateMax float64 `json:"mutation_rate_max" yaml:"mutation_rate_max"` // 自适应变异的上限
	EliteCount      int     `json:"elite_count" yaml:"elite_count"`
	TournamentSize  int     `json:"tournament_size" yaml:"tournament_size"`
	AdaptAfter      int     `json:"adapt_after" yaml:"adapt_after"`           // 停滞多少代后提升变异率
	StagnationLimit int     `json:"stagnation_limit" yaml:"stagnation_limit"` // 停滞多少代后终止
	GreedySeeds     int     `json:"greedy_seeds" yaml:"greedy_seeds"`         // 初始种群中贪心解的份数
}

// DefaultGAConfig 默认遗传算法参数
func DefaultGAConfig() GAConfig {
	return GAConfig{
		PopulationSize:  100,
		Generations:     300,
		CrossoverRate:   0.85,
		MutationRate:    0.15,
		MutationRateMax: 0.5,
		EliteCount:      5,
		TournamentSize:  3,
		AdaptAfter:      20,
		StagnationLimit: 100,
		GreedySeeds:     10,
	}
}

// GASolver 遗传算法求解器
// 染色体即一份完整分配；锦标赛选择、两点交叉、块感知变异、
// 修复、精英保留和自适应变异率。
type GASolver struct {
	cfg    GAConfig
	logger *logger.SolverLogger
}

// NewGA 创建遗传算法求解器
func NewGA(cfg GAConfig) *GASolver {
	return &GASolver{
		cfg:    cfg,
		logger: logger.NewSolverLogger(AlgorithmGA),
	}
}

// Name 返回求解器名称
func (s *GASolver) Name() string {
	return "GASolver"
}

// individual 种群中的个体
type individual struct {
	state   *scheduler.State
	penalty float64
}

// Solve 运行遗传算法
func (s *GASolver) Solve(ctx context.Context, env *scheduler.Environment, opts Options) (*Result, error) {
	start := time.Now()
	dl := deadline(start, opts)
	if len(env.Workers) == 0 {
		return nil, errors.ErrEmptyRoster
	}
	s.logger.StartSolve(len(env.Workers), len(env.Slots), opts.Seed)

	rng := rand.New(rand.NewSource(opts.Seed))
	gen := optimizer.NewGenerator(env, rng)

	pop := s.initPopulation(env, gen, rng)
	for i := range pop {
		pop[i].penalty, _ = env.Evaluate(pop[i].state)
	}

	best := pop[bestIndex(pop)]
	best = individual{state: best.state.Clone(), penalty: best.penalty}
	history := []float64{best.penalty}

	mutationRate := s.cfg.MutationRate
	stagnation := 0
	converged := false
	generation := 0

	for generation = 0; generation < s.cfg.Generations; generation++ {
		if cancelled(ctx) || expired(dl) {
			break
		}
		if best.penalty == 0 {
			converged = true
			break
		}
		if stagnation > s.cfg.StagnationLimit {
			converged = true
			break
		}

		next := make([]individual, 0, s.cfg.PopulationSize)

		// 精英直接保留
		sort.SliceStable(pop, func(i, j int) bool { return pop[i].penalty < pop[j].penalty })
		for i := 0; i < s.cfg.EliteCount && i < len(pop); i++ {
			next = append(next, individual{state: pop[i].state.Clone(), penalty: pop[i].penalty})
		}

		for len(next) < s.cfg.PopulationSize {
			p1 := s.tournament(pop, rng)
			p2 := s.tournament(pop, rng)

			c1, c2 := p1.state.Clone(), p2.state.Clone()
			if rng.Float64() < s.cfg.CrossoverRate {
				c1, c2 = crossover(env, p1.state, p2.state, rng)
			}

			s.mutate(gen, rng, c1, mutationRate)
			s.mutate(gen, rng, c2, mutationRate)

			repair(env, gen, c1)
			repair(env, gen, c2)

			pen1, _ := env.Evaluate(c1)
			next = append(next, individual{state: c1, penalty: pen1})
			if len(next) < s.cfg.PopulationSize {
				pen2, _ := env.Evaluate(c2)
				next = append(next, individual{state: c2, penalty: pen2})
			}
		}

		pop = next

		genBest := pop[bestIndex(pop)]
		if genBest.penalty < best.penalty {
			best = individual{state: genBest.state.Clone(), penalty: genBest.penalty}
			history = append(history, best.penalty)
			stagnation = 0
			mutationRate = s.cfg.MutationRate // 改进后恢复基础变异率
			s.logger.Improvement(generation, best.penalty)
		} else {
			stagnation++
			if s.cfg.AdaptAfter > 0 && stagnation%s.cfg.AdaptAfter == 0 {
				// 停滞时放大变异率以跳出局部最优
				mutationRate *= 1.5
				if mutationRate > s.cfg.MutationRateMax {
					mutationRate = s.cfg.MutationRateMax
				}
			}
		}
	}

	if generation >= s.cfg.Generations {
		converged = best.penalty == 0
	}

	penalty, breakdown := env.Evaluate(best.state)
	duration := time.Since(start)
	s.logger.SolveComplete(duration, penalty, converged)

	return &Result{
		Algorithm:  AlgorithmGA,
		State:      best.state,
		Penalty:    penalty,
		Breakdown:  breakdown,
		Iterations: generation,
		Duration:   duration,
		Converged:  converged,
		Seed:       opts.Seed,
		History:    history,
	}, nil
}

// initPopulation 构造初始种群：部分贪心解 + 随机可行解
func (s *GASolver) initPopulation(env *scheduler.Environment, gen *optimizer.Generator, rng *rand.Rand) []individual {
	pop := make([]individual, 0, s.cfg.PopulationSize)

	seeds := s.cfg.GreedySeeds
	if seeds > s.cfg.PopulationSize/2 {
		seeds = s.cfg.PopulationSize / 2
	}
	if seeds > 0 {
		if res, err := NewGreedy().Solve(context.Background(), env, Options{}); err == nil {
			for i := 0; i < seeds; i++ {
				pop = append(pop, individual{state: res.State.Clone()})
			}
		}
	}

	for len(pop) < s.cfg.PopulationSize {
		pop = append(pop, individual{state: randomState(env, rng)})
	}
	return pop
}

// randomState 随机构造一个解：每个班次从可用员工中抽到人数下限
func randomState(env *scheduler.Environment, rng *rand.Rand) *scheduler.State {
	st := env.NewState()
	capHours := float64(env.Rules.MaxHours)

	for i, slot := range env.Slots {
		for st.Count(i) < slot.StaffMin {
			eligible := env.EligibleWorkers(slot, st, capHours)
			if len(eligible) == 0 {
				break
			}
			st.Add(i, eligible[rng.Intn(len(eligible))].ID)
		}
	}
	return st
}

// tournament 锦标赛选择，取惩罚值最低者
func (s *GASolver) tournament(pop []individual, rng *rand.Rand) individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < s.cfg.TournamentSize; i++ {
		other := pop[rng.Intn(len(pop))]
		if other.penalty < best.penalty {
			best = other
		}
	}
	return best
}

// crossover 在班次序号序列上做两点交叉，产生两个子代
func crossover(env *scheduler.Environment, p1, p2 *scheduler.State, rng *rand.Rand) (*scheduler.State, *scheduler.State) {
	n := len(env.Slots)
	a := rng.Intn(n)
	b := a + rng.Intn(n-a)

	c1 := env.NewState()
	c2 := env.NewState()
	for i := 0; i < n; i++ {
		if i >= a && i < b {
			c1.SetSlot(i, p2.Assignees[i])
			c2.SetSlot(i, p1.Assignees[i])
		} else {
			c1.SetSlot(i, p1.Assignees[i])
			c2.SetSlot(i, p2.Assignees[i])
		}
	}
	return c1, c2
}

// mutate 块感知变异：均匀抽取四种算子之一
func (s *GASolver) mutate(gen *optimizer.Generator, rng *rand.Rand, st *scheduler.State, rate float64) {
	if rng.Float64() >= rate {
		return
	}

	switch rng.Intn(4) {
	case 0:
		gen.Extend(st) // 延长：向未满班次加人
	case 1:
		gen.SwapWorkers(st) // 交换：在两个兼容班次间互换员工
	case 2:
		gen.FillGaps(st) // 补缺：填充人数不足的班次
	case 3:
		gen.Reassign(st) // 重排：换掉某班次中的一人
	}
}

// repair 修复子代：移除不可用的员工，压回工时上限，再补齐人数不足的班次
func repair(env *scheduler.Environment, gen *optimizer.Generator, st *scheduler.State) {
	for i, slot := range env.Slots {
		ids := make([]string, len(st.Assignees[i]))
		copy(ids, st.Assignees[i])
		for _, id := range ids {
			w := env.Worker(id)
			if w == nil || !w.IsAvailable(slot.Date, slot.StartMin, slot.EndMin) {
				st.Remove(i, id)
			}
		}
	}

	trimOverCap(env, st)

	for i, slot := range env.Slots {
		if st.Count(i) < slot.StaffMin {
			gen.FillToMin(st, i)
		}
	}
}

// trimOverCap 把超过周工时上限的员工从班次中移出
// 先动超出人数下限的班次，仍超限时从后往前移出。
func trimOverCap(env *scheduler.Environment, st *scheduler.State) {
	capHours := float64(env.Rules.MaxHours)

	for _, w := range env.Workers {
		if st.Hours(w.ID) <= capHours {
			continue
		}
		// 两轮扫描：第一轮只动有富余的班次
		for _, looseOnly := range [...]bool{true, false} {
			for i := len(env.Slots) - 1; i >= 0 && st.Hours(w.ID) > capHours; i-- {
				if !st.Has(i, w.ID) {
					continue
				}
				if looseOnly && st.Count(i) <= env.Slots[i].StaffMin {
					continue
				}
				st.Remove(i, w.ID)
			}
			if st.Hours(w.ID) <= capHours {
				break
			}
		}
	}
}

// bestIndex 返回种群中惩罚值最低个体的下标
func bestIndex(pop []individual) int {
	best := 0
	for i := 1; i < len(pop); i++ {
		if pop[i].penalty < pop[best].penalty {
			best = i
		}
	}
	return best
}
