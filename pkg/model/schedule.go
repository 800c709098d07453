// Package model 定义排班引擎的核心数据模型
package model

import "sort"

// Block 同一员工连续值班的时间块，是对外展示的单位
type Block struct {
	Date     string    `json:"date"`
	Day      Day       `json:"day"`
	StartMin int       `json:"start_min"`
	EndMin   int       `json:"end_min"`
	Kind     ShiftKind `json:"kind"`
	WorkerID string    `json:"worker_id"`
}

// DurationMin 返回时间块的分钟数
func (b Block) DurationMin() int {
	return b.EndMin - b.StartMin
}

// WorkerRuns 计算每个员工的连续值班块
// 同日期、同类型且时间首尾相接的班次合并为一个块。
func WorkerRuns(slots []TimeSlot, assignees [][]string) map[string][]Block {
	// 按员工收集其分配到的班次
	byWorker := make(map[string][]TimeSlot)
	for i, ids := range assignees {
		if i >= len(slots) {
			break
		}
		for _, id := range ids {
			byWorker[id] = append(byWorker[id], slots[i])
		}
	}

	runs := make(map[string][]Block, len(byWorker))
	for id, ws := range byWorker {
		sort.Slice(ws, func(i, j int) bool {
			a, b := ws[i], ws[j]
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			if a.Kind != b.Kind {
				return a.Kind == KindWindow
			}
			return a.StartMin < b.StartMin
		})

		var blocks []Block
		for _, s := range ws {
			n := len(blocks)
			if n > 0 {
				last := &blocks[n-1]
				if last.Date == s.Date && last.Kind == s.Kind && last.EndMin == s.StartMin {
					last.EndMin = s.EndMin
					continue
				}
			}
			blocks = append(blocks, Block{
				Date:     s.Date,
				Day:      s.Day,
				StartMin: s.StartMin,
				EndMin:   s.EndMin,
				Kind:     s.Kind,
				WorkerID: id,
			})
		}
		runs[id] = blocks
	}

	return runs
}

// StaffedBlock 多人合班的时间块：同一时间段、同类型、同一批员工
type StaffedBlock struct {
	Date      string    `json:"date"`
	Day       Day       `json:"day"`
	StartMin  int       `json:"start_min"`
	EndMin    int       `json:"end_min"`
	Kind      ShiftKind `json:"kind"`
	Assignees []string  `json:"assignees"`
}

// CoalesceBlocks 将逐小时的分配合并为人员组相同的连续时间块
func CoalesceBlocks(slots []TimeSlot, assignees [][]string) []StaffedBlock {
	// 先按 (日期, 类型) 分组并按时间排序
	type entry struct {
		slot TimeSlot
		ids  []string
	}
	groups := make(map[string][]entry)
	var keys []string
	for i, s := range slots {
		var ids []string
		if i < len(assignees) {
			ids = append(ids, assignees[i]...)
		}
		sort.Strings(ids)
		key := s.Date + "/" + string(s.Kind)
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], entry{slot: s, ids: ids})
	}
	sort.Strings(keys)

	var blocks []StaffedBlock
	for _, key := range keys {
		entries := groups[key]
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].slot.StartMin < entries[j].slot.StartMin
		})

		for _, e := range entries {
			if len(e.ids) == 0 {
				continue
			}
			n := len(blocks)
			if n > 0 {
				last := &blocks[n-1]
				if last.Date == e.slot.Date && last.Kind == e.slot.Kind &&
					last.EndMin == e.slot.StartMin && sameIDs(last.Assignees, e.ids) {
					last.EndMin = e.slot.EndMin
					continue
				}
			}
			ids := make([]string, len(e.ids))
			copy(ids, e.ids)
			blocks = append(blocks, StaffedBlock{
				Date:      e.slot.Date,
				Day:       e.slot.Day,
				StartMin:  e.slot.StartMin,
				EndMin:    e.slot.EndMin,
				Kind:      e.slot.Kind,
				Assignees: ids,
			})
		}
	}

	sort.Slice(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartMin != b.StartMin {
			return a.StartMin < b.StartMin
		}
		return a.Kind == KindWindow && b.Kind == KindRemote
	})
	return blocks
}

// sameIDs 比较两个已排序的 ID 列表
func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HoursByWorker 统计每个员工的总工时
func HoursByWorker(slots []TimeSlot, assignees [][]string) map[string]float64 {
	hours := make(map[string]float64)
	for i, ids := range assignees {
		if i >= len(slots) {
			break
		}
		dur := slots[i].DurationHours()
		for _, id := range ids {
			hours[id] += dur
		}
	}
	return hours
}
