// Package export 将求解结果转换为对外格式
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/scheduler/solver"
)

// Metadata 导出元数据
type Metadata struct {
	RunID       string         `json:"run_id"`
	Algorithm   string         `json:"algorithm"`
	GeneratedAt string         `json:"generated_at"`
	RuntimeS    float64        `json:"runtime_s"`
	Penalty     float64        `json:"penalty"`
	Violations  map[string]int `json:"violations"`
	Seed        int64          `json:"seed"`
	Converged   bool           `json:"converged"`
}

// WorkerOut 导出的员工信息
type WorkerOut struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Tier         int    `json:"tier"`
	IsCommuter   bool   `json:"is_commuter"`
	DesiredHours int    `json:"desired_hours"`
}

// SlotOut 导出的班次信息
type SlotOut struct {
	Index    int    `json:"index"`
	Date     string `json:"date"`
	Day      string `json:"day"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Kind     string `json:"kind"`
	StaffMin int    `json:"staff_min"`
	StaffMax int    `json:"staff_max"`
}

// BlockOut 导出的连续时间块
type BlockOut struct {
	Date      string   `json:"date"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Kind      string   `json:"kind"`
	Assignees []string `json:"assignees"`
}

// WorkerSummary 每个员工的工时汇总
type WorkerSummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Hours   float64 `json:"hours"`
	Desired int     `json:"desired"`
}

// Output 完整的 JSON 导出结构
type Output struct {
	Metadata      Metadata        `json:"metadata"`
	Workers       []WorkerOut     `json:"workers"`
	Slots         []SlotOut       `json:"slots"`
	Assignment    [][]string      `json:"assignment"`
	Schedule      []BlockOut      `json:"schedule"`
	WorkerSummary []WorkerSummary `json:"worker_summary"`
}

// ShiftRecord 对接外部排班系统的单条记录
type ShiftRecord struct {
	ID         string   `json:"id"`
	Date       string   `json:"date"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time"`
	AssignedTo []string `json:"assigned_to"`
	ShiftType  string   `json:"shift_type"`
	Notes      string   `json:"notes,omitempty"`
}

// Exporter 排班导出器
type Exporter struct {
	env    *scheduler.Environment
	result *solver.Result
	runID  string
	now    time.Time
}

// New 创建导出器
func New(env *scheduler.Environment, result *solver.Result) *Exporter {
	return &Exporter{
		env:    env,
		result: result,
		runID:  uuid.NewString(),
		now:    time.Now(),
	}
}

// BuildOutput 构建完整导出结构
func (e *Exporter) BuildOutput() *Output {
	out := &Output{
		Metadata: Metadata{
			RunID:       e.runID,
			Algorithm:   e.result.Algorithm,
			GeneratedAt: e.now.Format(time.RFC3339),
			RuntimeS:    e.result.Duration.Seconds(),
			Penalty:     e.result.Penalty,
			Violations:  e.result.Breakdown.Counts(),
			Seed:        e.result.Seed,
			Converged:   e.result.Converged,
		},
	}

	for _, w := range e.env.Workers {
		out.Workers = append(out.Workers, WorkerOut{
			ID:           w.ID,
			Name:         w.Name,
			Tier:         w.Tier,
			IsCommuter:   w.IsCommuter,
			DesiredHours: w.DesiredHours,
		})
	}

	for _, s := range e.env.Slots {
		out.Slots = append(out.Slots, SlotOut{
			Index:    s.Index,
			Date:     s.Date,
			Day:      s.Day.String(),
			Start:    model.ToClock(s.StartMin),
			End:      model.ToClock(s.EndMin),
			Kind:     string(s.Kind),
			StaffMin: s.StaffMin,
			StaffMax: s.StaffMax,
		})
	}

	out.Assignment = make([][]string, len(e.result.State.Assignees))
	for i, ids := range e.result.State.Assignees {
		cp := make([]string, len(ids))
		copy(cp, ids)
		sort.Strings(cp)
		out.Assignment[i] = cp
	}

	out.Schedule = e.Blocks()
	out.WorkerSummary = e.WorkerSummaries()
	return out
}

// Blocks 返回合并后的时间块列表
func (e *Exporter) Blocks() []BlockOut {
	blocks := model.CoalesceBlocks(e.env.Slots, e.result.State.Assignees)
	var outs []BlockOut
	for _, b := range blocks {
		outs = append(outs, BlockOut{
			Date:      b.Date,
			Start:     model.ToClock(b.StartMin),
			End:       model.ToClock(b.EndMin),
			Kind:      string(b.Kind),
			Assignees: b.Assignees,
		})
	}
	return outs
}

// WorkerSummaries 返回每个员工的工时汇总（按 ID 排序）
func (e *Exporter) WorkerSummaries() []WorkerSummary {
	hours := model.HoursByWorker(e.env.Slots, e.result.State.Assignees)
	var summaries []WorkerSummary
	for _, w := range e.env.Workers {
		summaries = append(summaries, WorkerSummary{
			ID:      w.ID,
			Name:    w.Name,
			Hours:   hours[w.ID],
			Desired: w.DesiredHours,
		})
	}
	return summaries
}

// ShiftRecords 返回逐块的排班记录
func (e *Exporter) ShiftRecords() []ShiftRecord {
	blocks := model.CoalesceBlocks(e.env.Slots, e.result.State.Assignees)
	var records []ShiftRecord
	for _, b := range blocks {
		records = append(records, ShiftRecord{
			ID:         uuid.NewString(),
			Date:       b.Date,
			StartTime:  model.ToClock(b.StartMin),
			EndTime:    model.ToClock(b.EndMin),
			AssignedTo: b.Assignees,
			ShiftType:  string(b.Kind),
			Notes:      fmt.Sprintf("generated by %s", e.result.Algorithm),
		})
	}
	return records
}

// WriteJSON 写出 JSON 文件
func (e *Exporter) WriteJSON(dir string) (string, error) {
	path := filepath.Join(dir, e.fileName("json"))
	data, err := json.MarshalIndent(e.BuildOutput(), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExportFailed, "序列化排班结果失败")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, errors.CodeExportFailed, "写出 JSON 文件失败")
	}
	return path, nil
}

// WriteCSV 写出 CSV 文件，每个时间块一行
func (e *Exporter) WriteCSV(dir string) (string, error) {
	path := filepath.Join(dir, e.fileName("csv"))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExportFailed, "创建 CSV 文件失败")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "day", "start", "end", "kind", "assignees"}); err != nil {
		return "", errors.Wrap(err, errors.CodeExportFailed, "写出 CSV 表头失败")
	}

	blocks := model.CoalesceBlocks(e.env.Slots, e.result.State.Assignees)
	for _, b := range blocks {
		row := []string{
			b.Date,
			b.Day.String(),
			model.ToClock(b.StartMin),
			model.ToClock(b.EndMin),
			string(b.Kind),
			strings.Join(b.Assignees, "|"),
		}
		if err := w.Write(row); err != nil {
			return "", errors.Wrap(err, errors.CodeExportFailed, "写出 CSV 行失败")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, errors.CodeExportFailed, "刷新 CSV 失败")
	}
	return path, nil
}

// WriteShiftRecords 写出排班记录文件
func (e *Exporter) WriteShiftRecords(dir string) (string, error) {
	path := filepath.Join(dir, e.fileName("shifts.json"))
	data, err := json.MarshalIndent(e.ShiftRecords(), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExportFailed, "序列化排班记录失败")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, errors.CodeExportFailed, "写出排班记录失败")
	}
	return path, nil
}

// WriteAll 写出全部格式，返回生成的文件路径
func (e *Exporter) WriteAll(dir string) ([]string, error) {
	var paths []string
	for _, write := range []func(string) (string, error){e.WriteJSON, e.WriteCSV, e.WriteShiftRecords} {
		path, err := write(dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// fileName 生成导出文件名
func (e *Exporter) fileName(ext string) string {
	ts := e.now.Format("2006-01-02_15-04-05")
	return fmt.Sprintf("schedule_%s_%s.%s", e.result.Algorithm, ts, ext)
}
