package solver

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// softFreeWeights 只保留硬约束权重，便于构造零惩罚场景
func softFreeWeights() constraint.Weights {
	w := constraint.DefaultWeights()
	w.HourUnder = 0
	w.DesiredDeviation = 0
	w.FairnessVariance = 0
	w.ShiftLength = 0
	w.TierMismatch = 0
	w.MorningOverload = 0
	return w
}

// fastConfig 缩小各算法规模，保证测试耗时可控
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.GA.PopulationSize = 16
	cfg.GA.Generations = 30
	cfg.GA.EliteCount = 2
	cfg.GA.GreedySeeds = 4
	cfg.SA.MaxIterations = 2000
	cfg.SA.ItersPerTemp = 25
	cfg.CSP.MaxIterations = 400
	cfg.CSP.SampleSize = 8
	cfg.CSP.ExhaustLimit = 100
	return cfg
}

// manyWorkers n 个在职非通勤员工（级别轮换）
func manyWorkers(n int) []*model.Worker {
	var workers []*model.Worker
	for i := 0; i < n; i++ {
		workers = append(workers, &model.Worker{
			ID:           fmt.Sprintf("w%02d", i+1),
			Name:         fmt.Sprintf("员工%02d", i+1),
			Tier:         i%4 + 1,
			IsActive:     true,
			DesiredHours: 15,
		})
	}
	return workers
}

// alignedDaySlots 单日 08:00-16:00 的逐小时目录（与贪心候选块对齐）
func alignedDaySlots() []model.TimeSlot {
	var slots []model.TimeSlot
	for i := 0; i < 8; i++ {
		start := 480 + i*60
		slots = append(slots,
			model.TimeSlot{
				Index: len(slots), Date: "2026-05-11", Day: model.Monday,
				StartMin: start, EndMin: start + 60,
				Kind: model.KindWindow, StaffMin: 1, StaffMax: 2,
			},
			model.TimeSlot{
				Index: len(slots) + 1, Date: "2026-05-11", Day: model.Monday,
				StartMin: start, EndMin: start + 60,
				Kind: model.KindRemote, StaffMin: 2, StaffMax: 4,
			},
		)
	}
	return slots
}

// singleSlot 只有一个班次的目录
func singleSlot(startMin, endMin int, kind model.ShiftKind, staffMin, staffMax int) []model.TimeSlot {
	return []model.TimeSlot{{
		Index: 0, Date: "2026-05-11", Day: model.Monday,
		StartMin: startMin, EndMin: endMin, Kind: kind,
		StaffMin: staffMin, StaffMax: staffMax,
	}}
}

// finalsEnv 考试周目录 + n 个员工（含通勤员工）的环境
func finalsEnv(n int) *scheduler.Environment {
	workers := manyWorkers(n)
	for i, w := range workers {
		if i%3 == 2 {
			w.IsCommuter = true
		}
	}
	slots := model.BuildCatalog(model.ScheduleFinals, testMonday, model.DefaultStaffing())
	return scheduler.NewEnvironment(workers, slots, constraint.DefaultWeights(), constraint.DefaultRules())
}

// metaSolvers 三个随机化求解器
func metaSolvers(t *testing.T) []Solver {
	t.Helper()
	cfg := fastConfig()
	return []Solver{NewGA(cfg.GA), NewSA(cfg.SA), NewCSP(cfg.CSP)}
}

func TestSolverFactory(t *testing.T) {
	cfg := DefaultConfig()
	for _, name := range []string{AlgorithmGreedy, AlgorithmGA, AlgorithmSA, AlgorithmCSP} {
		s, err := New(name, cfg)
		require.NoError(t, err)
		require.NotNil(t, s)
	}

	_, err := New("tabu", cfg)
	assert.Error(t, err, "未知算法应报错")
}

// TestScenarioSingleSlot S1：单个 Window 班次，只有在职员工可被选中
func TestScenarioSingleSlot(t *testing.T) {
	active := &model.Worker{ID: "a", Name: "A", Tier: 1, IsActive: true, DesiredHours: 15}
	inactive := &model.Worker{ID: "b", Name: "B", Tier: 1, IsActive: false, DesiredHours: 15}

	for _, s := range metaSolvers(t) {
		env := scheduler.NewEnvironment(
			[]*model.Worker{active, inactive},
			singleSlot(600, 660, model.KindWindow, 1, 1),
			softFreeWeights(), constraint.DefaultRules(),
		)

		res, err := s.Solve(context.Background(), env, Options{Seed: 1})
		require.NoError(t, err, s.Name())

		assert.Equal(t, float64(0), res.Penalty, s.Name())
		assert.True(t, res.State.Has(0, "a"), "%s 应选中在职员工", s.Name())
		assert.False(t, res.State.Has(0, "b"), "%s 不应选中离职员工", s.Name())
	}
}

// TestScenarioCommuterExclusion S2：通勤员工不会被排到早班
func TestScenarioCommuterExclusion(t *testing.T) {
	commuter := &model.Worker{ID: "a", Name: "A", Tier: 1, IsActive: true, IsCommuter: true, DesiredHours: 15}
	regular := &model.Worker{ID: "b", Name: "B", Tier: 1, IsActive: true, DesiredHours: 15}

	for _, s := range metaSolvers(t) {
		env := scheduler.NewEnvironment(
			[]*model.Worker{commuter, regular},
			singleSlot(450, 510, model.KindWindow, 1, 1),
			softFreeWeights(), constraint.DefaultRules(),
		)

		res, err := s.Solve(context.Background(), env, Options{Seed: 2})
		require.NoError(t, err, s.Name())

		assert.False(t, res.State.Has(0, "a"), "%s 不应选中通勤员工", s.Name())
		assert.True(t, res.State.Has(0, "b"), s.Name())
	}
}

// TestScenarioExamConflict S3：有考试冲突的员工不会被排班
func TestScenarioExamConflict(t *testing.T) {
	examined := &model.Worker{ID: "a", Name: "A", Tier: 1, IsActive: true, DesiredHours: 15}
	examined.AddBusy(model.Interval{Date: "2026-05-11", StartMin: 540, EndMin: 660}) // 09:00-11:00
	free := &model.Worker{ID: "b", Name: "B", Tier: 1, IsActive: true, DesiredHours: 15}

	for _, s := range metaSolvers(t) {
		env := scheduler.NewEnvironment(
			[]*model.Worker{examined, free},
			singleSlot(600, 660, model.KindWindow, 1, 1),
			softFreeWeights(), constraint.DefaultRules(),
		)

		res, err := s.Solve(context.Background(), env, Options{Seed: 3})
		require.NoError(t, err, s.Name())

		assert.False(t, res.State.Has(0, "a"), "%s 不应选中考试冲突的员工", s.Name())
		assert.True(t, res.State.Has(0, "b"), s.Name())
	}
}

// TestZeroPenaltyFeasibility 小实例上每个求解器都能找到零惩罚解
func TestZeroPenaltyFeasibility(t *testing.T) {
	// 一天 10:00-12:00：两个小时时段，Window 1 人 / Remote 2 人
	var slots []model.TimeSlot
	for i := 0; i < 2; i++ {
		start := 600 + i*60
		slots = append(slots,
			model.TimeSlot{
				Index: len(slots), Date: "2026-05-11", Day: model.Monday,
				StartMin: start, EndMin: start + 60,
				Kind: model.KindWindow, StaffMin: 1, StaffMax: 2,
			},
			model.TimeSlot{
				Index: len(slots) + 1, Date: "2026-05-11", Day: model.Monday,
				StartMin: start, EndMin: start + 60,
				Kind: model.KindRemote, StaffMin: 2, StaffMax: 4,
			},
		)
	}

	cfg := fastConfig()
	solvers := []Solver{NewGreedy(), NewGA(cfg.GA), NewSA(cfg.SA), NewCSP(cfg.CSP)}

	for _, s := range solvers {
		env := scheduler.NewEnvironment(manyWorkers(3), slots, softFreeWeights(), constraint.DefaultRules())

		res, err := s.Solve(context.Background(), env, Options{Seed: 4})
		require.NoError(t, err, s.Name())
		assert.Equal(t, float64(0), res.Penalty, "%s 应找到零惩罚解 (%v)", s.Name(), res.Breakdown)
	}
}

// TestSolverInvariants 返回解的硬不变量：
// 通勤员工不出现在 9 点前的班次，任何员工周工时不超过 20。
func TestSolverInvariants(t *testing.T) {
	cfg := fastConfig()
	solvers := []Solver{NewGreedy(), NewGA(cfg.GA), NewSA(cfg.SA), NewCSP(cfg.CSP)}

	for _, s := range solvers {
		env := finalsEnv(12)
		// 给两个员工加考试
		env.Workers[0].AddBusy(model.Interval{Date: "2026-05-11", StartMin: 540, EndMin: 660})
		env.Workers[1].AddBusy(model.Interval{Date: "2026-05-13", StartMin: 780, EndMin: 900})

		res, err := s.Solve(context.Background(), env, Options{Seed: 5})
		require.NoError(t, err, s.Name())

		// 通勤不变量
		for i, slot := range env.Slots {
			if !slot.StartsBeforeCommuterCutoff() {
				continue
			}
			for _, id := range res.State.Assignees[i] {
				w := env.Worker(id)
				require.NotNil(t, w)
				assert.False(t, w.IsCommuter, "%s: 通勤员工 %s 被排到 %s", s.Name(), id, slot.TimeRange())
			}
		}

		// 工时上限不变量
		hours := model.HoursByWorker(env.Slots, res.State.Assignees)
		for id, h := range hours {
			assert.LessOrEqual(t, h, float64(env.Rules.MaxHours)+1e-9,
				"%s: 员工 %s 工时 %v 超过上限", s.Name(), id, h)
		}
	}
}

// TestSolverDeterminism 同种子同输入结果一致
func TestSolverDeterminism(t *testing.T) {
	cfg := fastConfig()
	builders := map[string]func() Solver{
		AlgorithmGreedy: func() Solver { return NewGreedy() },
		AlgorithmGA:     func() Solver { return NewGA(cfg.GA) },
		AlgorithmSA:     func() Solver { return NewSA(cfg.SA) },
		AlgorithmCSP:    func() Solver { return NewCSP(cfg.CSP) },
	}

	for name, build := range builders {
		run := func() [][]string {
			env := scheduler.NewEnvironment(
				manyWorkers(6), alignedDaySlots(),
				constraint.DefaultWeights(), constraint.DefaultRules(),
			)
			res, err := build().Solve(context.Background(), env, Options{Seed: 7})
			require.NoError(t, err, name)
			return res.State.Assignees
		}

		if !reflect.DeepEqual(run(), run()) {
			t.Errorf("%s: 同种子的两次求解结果不一致", name)
		}
	}
}

// TestScenarioHourFairness S4：4 个员工 8 个单人班次，零惩罚时每人 2 小时
func TestScenarioHourFairness(t *testing.T) {
	// 4 天、每天 2 个 Window 班次（10:00-12:00），min=max=1
	var slots []model.TimeSlot
	dates := []string{"2026-05-11", "2026-05-12", "2026-05-13", "2026-05-14"}
	for d, date := range dates {
		for i := 0; i < 2; i++ {
			start := 600 + i*60
			slots = append(slots, model.TimeSlot{
				Index: len(slots), Date: date, Day: model.Day(d),
				StartMin: start, EndMin: start + 60,
				Kind: model.KindWindow, StaffMin: 1, StaffMax: 1,
			})
		}
	}

	weights := softFreeWeights()
	weights.FairnessVariance = 1

	env := scheduler.NewEnvironment(manyWorkers(4), slots, weights, constraint.DefaultRules())
	res, err := NewCSP(fastConfig().CSP).Solve(context.Background(), env, Options{Seed: 8})
	require.NoError(t, err)

	require.Equal(t, float64(0), res.Penalty, "明细: %v", res.Breakdown)
	hours := model.HoursByWorker(env.Slots, res.State.Assignees)
	for _, w := range env.Workers {
		assert.Equal(t, 2.0, hours[w.ID], "员工 %s 的工时", w.ID)
	}
}

// TestScenarioGreedySeed S5：SA 以贪心解起步，总惩罚值不会劣于贪心
func TestScenarioGreedySeed(t *testing.T) {
	greedyEnv := finalsEnv(10)
	greedyRes, err := NewGreedy().Solve(context.Background(), greedyEnv, Options{Seed: 9})
	require.NoError(t, err)

	saEnv := finalsEnv(10)
	saRes, err := NewSA(fastConfig().SA).Solve(context.Background(), saEnv, Options{Seed: 9})
	require.NoError(t, err)

	assert.LessOrEqual(t, saRes.Penalty, greedyRes.Penalty)
}

// TestScenarioDesiredHours S6：期望工时低的员工不会被明显超排
func TestScenarioDesiredHours(t *testing.T) {
	workers := []*model.Worker{
		{ID: "s1", Name: "低时长", Tier: 1, IsActive: true, DesiredHours: 10},
		{ID: "s2", Name: "高时长A", Tier: 1, IsActive: true, DesiredHours: 18},
		{ID: "s3", Name: "高时长B", Tier: 1, IsActive: true, DesiredHours: 18},
	}

	// 5 天、每天 8 个单人 Window 班次（10:00-18:00），共 40 个
	var slots []model.TimeSlot
	dates := []string{"2026-05-11", "2026-05-12", "2026-05-13", "2026-05-14", "2026-05-15"}
	for d, date := range dates {
		for i := 0; i < 8; i++ {
			start := 600 + i*60
			slots = append(slots, model.TimeSlot{
				Index: len(slots), Date: date, Day: model.Day(d),
				StartMin: start, EndMin: start + 60,
				Kind: model.KindWindow, StaffMin: 1, StaffMax: 1,
			})
		}
	}

	weights := constraint.DefaultWeights()
	weights.HourUnder = 0
	weights.ShiftLength = 0
	weights.TierMismatch = 0
	weights.MorningOverload = 0

	env := scheduler.NewEnvironment(workers, slots, weights, constraint.DefaultRules())
	res, err := NewCSP(fastConfig().CSP).Solve(context.Background(), env, Options{Seed: 10})
	require.NoError(t, err)

	hours := model.HoursByWorker(env.Slots, res.State.Assignees)
	assert.InDelta(t, 10.0, hours["s1"], 2.0, "期望 10 小时的员工实际 %v 小时", hours["s1"])
}

// TestResultMetadata 结果元数据完整
func TestResultMetadata(t *testing.T) {
	env := scheduler.NewEnvironment(
		manyWorkers(4), alignedDaySlots(),
		constraint.DefaultWeights(), constraint.DefaultRules(),
	)

	res, err := NewSA(fastConfig().SA).Solve(context.Background(), env, Options{Seed: 11})
	require.NoError(t, err)

	assert.Equal(t, AlgorithmSA, res.Algorithm)
	assert.Equal(t, int64(11), res.Seed)
	assert.NotEmpty(t, res.History)
	assert.Positive(t, res.Iterations)
	assert.NotNil(t, res.Breakdown)
}
