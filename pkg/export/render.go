// Package export 将求解结果转换为对外格式
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
)

// FormatSchedule 渲染逐时段的人员矩阵，供管理员审阅
// 每行一个时段，左列 Window、右列 Remote。
func FormatSchedule(env *scheduler.Environment, st *scheduler.State) string {
	type row struct {
		startMin int
		endMin   int
		window   []string
		remote   []string
	}

	byDate := make(map[string]map[int]*row)
	var dates []string

	for i, slot := range env.Slots {
		rows, ok := byDate[slot.Date]
		if !ok {
			rows = make(map[int]*row)
			byDate[slot.Date] = rows
			dates = append(dates, slot.Date)
		}
		r, ok := rows[slot.StartMin]
		if !ok {
			r = &row{startMin: slot.StartMin, endMin: slot.EndMin}
			rows[slot.StartMin] = r
		}

		var names []string
		for _, id := range st.Assignees[i] {
			names = append(names, workerLabel(env, id))
		}
		if slot.Kind == model.KindWindow {
			r.window = names
		} else {
			r.remote = names
		}
	}
	sort.Strings(dates)

	var sb strings.Builder
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString("SCHEDULE\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	for _, date := range dates {
		rows := byDate[date]
		starts := make([]int, 0, len(rows))
		for s := range rows {
			starts = append(starts, s)
		}
		sort.Ints(starts)

		day := ""
		for _, slot := range env.Slots {
			if slot.Date == date {
				day = slot.Day.String()
				break
			}
		}

		fmt.Fprintf(&sb, "\n%s (%s):\n", day, date)
		sb.WriteString(strings.Repeat("-", 80) + "\n")

		for _, s := range starts {
			r := rows[s]
			window := "---"
			if len(r.window) > 0 {
				window = strings.Join(r.window, ", ")
			}
			remote := "---"
			if len(r.remote) > 0 {
				remote = strings.Join(r.remote, ", ")
			}
			fmt.Fprintf(&sb, "  %s-%s | Window: %-30s | Remote: %s\n",
				model.ToClock(r.startMin), model.ToClock(r.endMin), window, remote)
		}
	}

	return sb.String()
}

// workerLabel 员工显示名（名字 + 级别）
func workerLabel(env *scheduler.Environment, id string) string {
	if w := env.Worker(id); w != nil {
		return fmt.Sprintf("%s (T%d)", w.Name, w.Tier)
	}
	return id
}
