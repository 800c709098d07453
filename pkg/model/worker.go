// Package model 定义排班引擎的核心数据模型
package model

import "sort"

// CommuterCutoffMin 通勤员工最早可上班时间（09:00）
const CommuterCutoffMin = 9 * 60

// Worker 学生员工
type Worker struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`     // user/admin（仅供外部权限层使用）
	Tier       int    `json:"tier"`     // 1-4，1-2 偏好 Window，3-4 偏好 Remote
	IsCommuter bool   `json:"is_commuter"`
	IsActive   bool   `json:"is_active"`
	IsFloater  bool   `json:"is_floater,omitempty"` // 预留字段，排班时不参与判定
	// DesiredHours 期望周工时，公平性以此为基准
	DesiredHours int `json:"desired_hours"`
	// BusyIntervals 考试等不可用时间段，同一员工内互不重叠
	BusyIntervals []Interval `json:"busy_intervals,omitempty"`
}

// PrefersWindow 是否偏好 Window 班次（Tier 1-2）
func (w *Worker) PrefersWindow() bool {
	return w.Tier <= 2
}

// IsAvailable 检查员工在某日期时间段是否可用
// 要求：在职、通勤限制（9 点前不可上班）、与不可用时间段无冲突
func (w *Worker) IsAvailable(date string, startMin, endMin int) bool {
	if !w.IsActive {
		return false
	}
	if w.IsCommuter && startMin < CommuterCutoffMin {
		return false
	}
	target := Interval{Date: date, StartMin: startMin, EndMin: endMin}
	for _, busy := range w.BusyIntervals {
		if busy.Conflicts(target) {
			return false
		}
	}
	return true
}

// AddBusy 添加不可用时间段
func (w *Worker) AddBusy(iv Interval) {
	w.BusyIntervals = append(w.BusyIntervals, iv)
	sort.Slice(w.BusyIntervals, func(i, j int) bool {
		a, b := w.BusyIntervals[i], w.BusyIntervals[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.StartMin < b.StartMin
	})
}

// SortWorkers 按 ID 排序，保证迭代顺序确定
func SortWorkers(workers []*Worker) {
	sort.Slice(workers, func(i, j int) bool {
		return workers[i].ID < workers[j].ID
	})
}

// ActiveWorkers 过滤出在职员工
func ActiveWorkers(workers []*Worker) []*Worker {
	var active []*Worker
	for _, w := range workers {
		if w.IsActive {
			active = append(active, w)
		}
	}
	return active
}
