// Package scheduler 提供排班问题的环境与求解状态
package scheduler

import "sort"

// State 求解器的候选解：每个班次对应一组员工 ID
// 内部维护每个员工的工时缓存，移动操作增量更新。
type State struct {
	Assignees [][]string
	durs      []float64
	hours     map[string]float64
}

// NewState 创建空状态
func NewState(durs []float64) *State {
	return &State{
		Assignees: make([][]string, len(durs)),
		durs:      durs,
		hours:     make(map[string]float64),
	}
}

// Clone 深拷贝状态
func (s *State) Clone() *State {
	clone := &State{
		Assignees: make([][]string, len(s.Assignees)),
		durs:      s.durs,
		hours:     make(map[string]float64, len(s.hours)),
	}
	for i, ids := range s.Assignees {
		if len(ids) == 0 {
			continue
		}
		cp := make([]string, len(ids))
		copy(cp, ids)
		clone.Assignees[i] = cp
	}
	for id, h := range s.hours {
		clone.hours[id] = h
	}
	return clone
}

// NumSlots 返回班次数量
func (s *State) NumSlots() int {
	return len(s.Assignees)
}

// Count 返回某班次已分配的人数
func (s *State) Count(i int) int {
	return len(s.Assignees[i])
}

// Has 检查员工是否已在某班次中
func (s *State) Has(i int, id string) bool {
	for _, x := range s.Assignees[i] {
		if x == id {
			return true
		}
	}
	return false
}

// Add 将员工加入班次，已存在时返回 false
func (s *State) Add(i int, id string) bool {
	if s.Has(i, id) {
		return false
	}
	s.Assignees[i] = append(s.Assignees[i], id)
	sort.Strings(s.Assignees[i])
	s.hours[id] += s.durs[i]
	return true
}

// Remove 将员工移出班次，不存在时返回 false
func (s *State) Remove(i int, id string) bool {
	for j, x := range s.Assignees[i] {
		if x == id {
			s.Assignees[i] = append(s.Assignees[i][:j], s.Assignees[i][j+1:]...)
			s.hours[id] -= s.durs[i]
			return true
		}
	}
	return false
}

// Replace 用新员工替换班次中的某个员工
func (s *State) Replace(i int, oldID, newID string) bool {
	if !s.Has(i, oldID) || s.Has(i, newID) {
		return false
	}
	s.Remove(i, oldID)
	s.Add(i, newID)
	return true
}

// SetSlot 整体替换某班次的人员
func (s *State) SetSlot(i int, ids []string) {
	for _, id := range s.Assignees[i] {
		s.hours[id] -= s.durs[i]
	}
	cp := make([]string, len(ids))
	copy(cp, ids)
	sort.Strings(cp)
	s.Assignees[i] = cp
	for _, id := range cp {
		s.hours[id] += s.durs[i]
	}
}

// SwapSlots 交换两个班次的全部人员
func (s *State) SwapSlots(i, j int) {
	a := make([]string, len(s.Assignees[i]))
	copy(a, s.Assignees[i])
	b := make([]string, len(s.Assignees[j]))
	copy(b, s.Assignees[j])
	s.SetSlot(i, b)
	s.SetSlot(j, a)
}

// Hours 返回员工当前的累计工时
func (s *State) Hours(id string) float64 {
	return s.hours[id]
}

// TotalAssignments 返回分配总数
func (s *State) TotalAssignments() int {
	total := 0
	for _, ids := range s.Assignees {
		total += len(ids)
	}
	return total
}
