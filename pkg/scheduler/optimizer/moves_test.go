package optimizer

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// testSlots 周一 10:00 起的 n 个小时时段，每时段 Window + Remote 各一
func testSlots(n int) []model.TimeSlot {
	var slots []model.TimeSlot
	for i := 0; i < n; i++ {
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
	return slots
}

func testEnv(n int, workerIDs ...string) *scheduler.Environment {
	var workers []*model.Worker
	for _, id := range workerIDs {
		workers = append(workers, &model.Worker{
			ID: id, Name: "员工" + id, Tier: 1, IsActive: true, DesiredHours: 15,
		})
	}
	return scheduler.NewEnvironment(workers, testSlots(n), constraint.DefaultWeights(), constraint.DefaultRules())
}

func TestNeighborDeterminism(t *testing.T) {
	run := func() [][]string {
		env := testEnv(4, "a", "b", "c", "d")
		gen := NewGenerator(env, rand.New(rand.NewSource(7)))

		st := env.NewState()
		st.Add(0, "a")
		st.Add(1, "b")
		st.Add(1, "c")

		for i := 0; i < 50; i++ {
			if neighbor := gen.Neighbor(st); neighbor != nil {
				st = neighbor
			}
		}
		return st.Assignees
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Error("同种子的邻域序列应一致")
	}
}

func TestExtendRespectsLimits(t *testing.T) {
	env := testEnv(1, "a", "b", "c")
	gen := NewGenerator(env, rand.New(rand.NewSource(1)))

	st := env.NewState()
	st.Add(0, "a")
	st.Add(0, "b") // Window 满编

	// 多次尝试后只可能向 Remote 加人
	for i := 0; i < 20; i++ {
		gen.Extend(st)
	}
	if st.Count(0) > env.Slots[0].StaffMax {
		t.Errorf("Window 超过上限: %d", st.Count(0))
	}
	if st.Count(1) > env.Slots[1].StaffMax {
		t.Errorf("Remote 超过上限: %d", st.Count(1))
	}
}

func TestShrinkKeepsMin(t *testing.T) {
	env := testEnv(1, "a", "b", "c", "d")
	gen := NewGenerator(env, rand.New(rand.NewSource(1)))

	st := env.NewState()
	st.Add(1, "a")
	st.Add(1, "b")
	st.Add(1, "c") // Remote 3 人，下限 2

	changed := false
	for i := 0; i < 20 && !changed; i++ {
		changed = gen.Shrink(st)
	}
	if !changed {
		t.Fatal("超出下限的班次应可减人")
	}
	if st.Count(1) < env.Slots[1].StaffMin {
		t.Errorf("减人后低于下限: %d", st.Count(1))
	}

	// 到达下限后不再减
	for i := 0; i < 20; i++ {
		gen.Shrink(st)
	}
	if st.Count(1) != env.Slots[1].StaffMin {
		t.Errorf("下限班次被继续减人: %d", st.Count(1))
	}
}

func TestFillToMin(t *testing.T) {
	env := testEnv(1, "a", "b", "c")
	gen := NewGenerator(env, rand.New(rand.NewSource(1)))

	st := env.NewState()
	st.Add(0, "a") // a 已有 1 小时

	if !gen.FillToMin(st, 1) {
		t.Fatal("FillToMin 应有变化")
	}
	if st.Count(1) != env.Slots[1].StaffMin {
		t.Fatalf("Remote 人数 = %d, want %d", st.Count(1), env.Slots[1].StaffMin)
	}
	// 工时少者优先：b、c 都是 0 小时，按 ID 先取 b 再取 c
	if !st.Has(1, "b") || !st.Has(1, "c") {
		t.Errorf("应优先选工时少的员工: %v", st.Assignees[1])
	}
}

func TestFillGapsTargetsUnderMin(t *testing.T) {
	env := testEnv(2, "a", "b", "c", "d")
	gen := NewGenerator(env, rand.New(rand.NewSource(3)))

	st := env.NewState()
	st.Add(0, "a")
	st.Add(1, "b")
	st.Add(1, "c")
	st.Add(2, "a")
	// slot 3（第二小时 Remote）为空

	if !gen.FillGaps(st) {
		t.Fatal("存在缺口时 FillGaps 应有变化")
	}
	if st.Count(3) != env.Slots[3].StaffMin {
		t.Errorf("缺口未补齐: %d", st.Count(3))
	}

	// 无缺口时不变
	if gen.FillGaps(st) {
		t.Error("无缺口时 FillGaps 不应有变化")
	}
}

func TestSwapWorkersKeepsCounts(t *testing.T) {
	env := testEnv(2, "a", "b", "c", "d")
	gen := NewGenerator(env, rand.New(rand.NewSource(5)))

	st := env.NewState()
	st.Add(0, "a") // 第一小时 Window
	st.Add(2, "b") // 第二小时 Window

	changed := false
	for i := 0; i < 50 && !changed; i++ {
		changed = gen.SwapWorkers(st)
	}
	if !changed {
		t.Fatal("应能完成一次员工互换")
	}
	if st.Count(0) != 1 || st.Count(2) != 1 {
		t.Errorf("互换后人数变化: %d/%d", st.Count(0), st.Count(2))
	}
	if !st.Has(0, "b") || !st.Has(2, "a") {
		t.Errorf("互换结果错误: %v / %v", st.Assignees[0], st.Assignees[2])
	}
}

func TestMoveRespectsAvailability(t *testing.T) {
	busy := &model.Worker{ID: "x", Name: "员工x", Tier: 1, IsActive: true, DesiredHours: 15}
	busy.AddBusy(model.Interval{Date: "2026-05-11", StartMin: 600, EndMin: 720})
	free := &model.Worker{ID: "a", Name: "员工a", Tier: 1, IsActive: true, DesiredHours: 15}

	env := scheduler.NewEnvironment(
		[]*model.Worker{busy, free}, testSlots(1),
		constraint.DefaultWeights(), constraint.DefaultRules(),
	)
	gen := NewGenerator(env, rand.New(rand.NewSource(2)))

	st := env.NewState()
	for i := 0; i < 100; i++ {
		gen.Apply(st)
		for slotIdx := range env.Slots {
			if st.Has(slotIdx, "x") {
				t.Fatal("移动不应选中不可用的员工")
			}
		}
	}
}
