// Package optimizer 提供求解器共用的邻域移动
package optimizer

import (
	"math/rand"
	"sort"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
)

// MoveType 邻域移动类型
type MoveType int

const (
	MoveSwap      MoveType = iota // 交换两个班次的人员
	MoveExtend                    // 向未满班次加人
	MoveShrink                    // 从超出下限的班次减人
	MoveReassign                  // 替换某个班次中的一名员工
	MoveFillEmpty                 // 填充空班次至下限
)

// moveTypes 移动类型的固定顺序（均匀抽取用）
var moveTypes = [...]MoveType{MoveSwap, MoveExtend, MoveShrink, MoveReassign, MoveFillEmpty}

// maxAttempts 单次移动的随机尝试次数上限
const maxAttempts = 8

// Generator 邻域移动生成器
// 持有环境的只读引用和一个显式随机源，保证同种子可复现。
type Generator struct {
	env *scheduler.Environment
	rng *rand.Rand
}

// NewGenerator 创建邻域移动生成器
func NewGenerator(env *scheduler.Environment, rng *rand.Rand) *Generator {
	return &Generator{env: env, rng: rng}
}

// Neighbor 生成一个邻域解：克隆当前解并施加一次随机移动
// 无法生成有效移动时返回 nil。
func (g *Generator) Neighbor(st *scheduler.State) *scheduler.State {
	neighbor := st.Clone()
	if g.Apply(neighbor) {
		return neighbor
	}
	return nil
}

// Apply 在原地施加一次随机移动，返回是否发生了改变
func (g *Generator) Apply(st *scheduler.State) bool {
	switch moveTypes[g.rng.Intn(len(moveTypes))] {
	case MoveSwap:
		return g.Swap(st)
	case MoveExtend:
		return g.Extend(st)
	case MoveShrink:
		return g.Shrink(st)
	case MoveReassign:
		return g.Reassign(st)
	case MoveFillEmpty:
		return g.FillEmpty(st)
	}
	return false
}

// Swap 交换两个同类型、同时长班次的人员
// 仅当双方人员在对方时间段都可用时才交换。
func (g *Generator) Swap(st *scheduler.State) bool {
	slots := g.env.Slots
	n := len(slots)
	if n < 2 {
		return false
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		if i == j {
			continue
		}
		si, sj := slots[i], slots[j]
		if si.Kind != sj.Kind || si.EndMin-si.StartMin != sj.EndMin-sj.StartMin {
			continue
		}
		if st.Count(i) == 0 && st.Count(j) == 0 {
			continue
		}
		if !g.workersFit(st.Assignees[i], sj) || !g.workersFit(st.Assignees[j], si) {
			continue
		}
		st.SwapSlots(i, j)
		return true
	}
	return false
}

// workersFit 检查一组员工在目标班次时间段是否都可用
func (g *Generator) workersFit(ids []string, slot model.TimeSlot) bool {
	for _, id := range ids {
		w := g.env.Worker(id)
		if w == nil || !w.IsAvailable(slot.Date, slot.StartMin, slot.EndMin) {
			return false
		}
	}
	return true
}

// Extend 向一个未满编的班次加入一名合格员工
func (g *Generator) Extend(st *scheduler.State) bool {
	slots := g.env.Slots
	capHours := float64(g.env.Rules.MaxHours)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		i := g.rng.Intn(len(slots))
		if st.Count(i) >= slots[i].StaffMax {
			continue
		}
		eligible := g.env.EligibleWorkers(slots[i], st, capHours)
		if len(eligible) == 0 {
			continue
		}
		chosen := eligible[g.rng.Intn(len(eligible))]
		return st.Add(i, chosen.ID)
	}
	return false
}

// Shrink 从超出下限的班次移除一名员工
func (g *Generator) Shrink(st *scheduler.State) bool {
	slots := g.env.Slots

	for attempt := 0; attempt < maxAttempts; attempt++ {
		i := g.rng.Intn(len(slots))
		if st.Count(i) <= slots[i].StaffMin {
			continue
		}
		ids := st.Assignees[i]
		victim := ids[g.rng.Intn(len(ids))]
		return st.Remove(i, victim)
	}
	return false
}

// Reassign 把班次中的一名员工换成另一名合格员工
func (g *Generator) Reassign(st *scheduler.State) bool {
	slots := g.env.Slots
	capHours := float64(g.env.Rules.MaxHours)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		i := g.rng.Intn(len(slots))
		if st.Count(i) == 0 {
			continue
		}
		ids := st.Assignees[i]
		old := ids[g.rng.Intn(len(ids))]
		eligible := g.env.EligibleWorkers(slots[i], st, capHours)
		if len(eligible) == 0 {
			continue
		}
		chosen := eligible[g.rng.Intn(len(eligible))]
		return st.Replace(i, old, chosen.ID)
	}
	return false
}

// SwapWorkers 在两个同类型班次之间互换一名员工
// 双方在对方时间段都可用时才交换。
func (g *Generator) SwapWorkers(st *scheduler.State) bool {
	slots := g.env.Slots
	n := len(slots)
	if n < 2 {
		return false
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		if i == j || slots[i].Kind != slots[j].Kind {
			continue
		}
		if slots[i].EndMin-slots[i].StartMin != slots[j].EndMin-slots[j].StartMin {
			continue
		}
		if st.Count(i) == 0 || st.Count(j) == 0 {
			continue
		}
		wi := st.Assignees[i][g.rng.Intn(st.Count(i))]
		wj := st.Assignees[j][g.rng.Intn(st.Count(j))]
		if wi == wj || st.Has(i, wj) || st.Has(j, wi) {
			continue
		}
		if !g.workersFit([]string{wi}, slots[j]) || !g.workersFit([]string{wj}, slots[i]) {
			continue
		}
		st.Remove(i, wi)
		st.Remove(j, wj)
		st.Add(i, wj)
		st.Add(j, wi)
		return true
	}
	return false
}

// FillEmpty 把一个空班次填充到人数下限
// 优先选择工时少的员工。
func (g *Generator) FillEmpty(st *scheduler.State) bool {
	slots := g.env.Slots

	for attempt := 0; attempt < maxAttempts; attempt++ {
		i := g.rng.Intn(len(slots))
		if st.Count(i) != 0 {
			continue
		}
		if g.FillToMin(st, i) {
			return true
		}
	}
	return false
}

// FillGaps 把一个人数不足的班次补齐到下限（遗传算法的变异算子之一）
func (g *Generator) FillGaps(st *scheduler.State) bool {
	var under []int
	for i, slot := range g.env.Slots {
		if st.Count(i) < slot.StaffMin {
			under = append(under, i)
		}
	}
	if len(under) == 0 {
		return false
	}
	return g.FillToMin(st, under[g.rng.Intn(len(under))])
}

// FillToMin 向指定班次补人直到达到下限或无人可用
func (g *Generator) FillToMin(st *scheduler.State, i int) bool {
	slot := g.env.Slots[i]
	capHours := float64(g.env.Rules.MaxHours)
	changed := false

	for st.Count(i) < slot.StaffMin {
		eligible := g.env.EligibleWorkers(slot, st, capHours)
		if len(eligible) == 0 {
			break
		}
		// 工时少者优先，相同工时按 ID
		sort.SliceStable(eligible, func(a, b int) bool {
			ha, hb := st.Hours(eligible[a].ID), st.Hours(eligible[b].ID)
			if ha != hb {
				return ha < hb
			}
			return eligible[a].ID < eligible[b].ID
		})
		if !st.Add(i, eligible[0].ID) {
			break
		}
		changed = true
	}
	return changed
}
