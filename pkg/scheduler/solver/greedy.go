// Package solver 提供排班求解器
package solver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
)

// 贪心算法的候选块时长（分钟），优先取长块
var greedyBlockDurations = [...]int{240, 180, 120}

// gridStep 候选块起点的扫描步长（半小时网格）
const gridStep = 30

// GreedySolver 确定性贪心求解器
// 按天生成 2-4 小时的时间块，先排 Window 再排 Remote，
// 最后用 balance-hours 给工时不足的员工补 Remote 班。
// 不使用随机数，同输入必得同输出。
type GreedySolver struct {
	logger *logger.SolverLogger
}

// NewGreedy 创建贪心求解器
func NewGreedy() *GreedySolver {
	return &GreedySolver{
		logger: logger.NewSolverLogger(AlgorithmGreedy),
	}
}

// Name 返回求解器名称
func (s *GreedySolver) Name() string {
	return "GreedySolver"
}

// greedyBlock 贪心求解过程中的时间块
type greedyBlock struct {
	date      string
	day       model.Day
	startMin  int
	endMin    int
	kind      model.ShiftKind
	staffMin  int
	staffMax  int
	assignees []string
}

// durationHours 返回块的小时数
func (b *greedyBlock) durationHours() float64 {
	return float64(b.endMin-b.startMin) / 60.0
}

// has 检查员工是否已在块中
func (b *greedyBlock) has(id string) bool {
	for _, x := range b.assignees {
		if x == id {
			return true
		}
	}
	return false
}

// dayRange 某天的营业区间（由班次目录推得）
type dayRange struct {
	date     string
	day      model.Day
	openMin  int
	closeMin int
}

// greedyRun 单次贪心求解的可变状态
type greedyRun struct {
	env          *scheduler.Environment
	blocks       []*greedyBlock
	hours        map[string]float64
	lastAssigned map[string]int // 轮转用的分配序号
	seq          int
	unfilled     int // 未达到人数下限的块数
}

// Solve 运行贪心算法
func (s *GreedySolver) Solve(ctx context.Context, env *scheduler.Environment, opts Options) (*Result, error) {
	start := time.Now()
	if len(env.Workers) == 0 {
		return nil, errors.ErrEmptyRoster
	}
	s.logger.StartSolve(len(env.Workers), len(env.Slots), opts.Seed)

	run := &greedyRun{
		env:          env,
		hours:        make(map[string]float64),
		lastAssigned: make(map[string]int),
	}

	for _, dr := range dayRanges(env.Slots) {
		if cancelled(ctx) {
			break
		}
		for _, span := range candidateSpans(dr.openMin, dr.closeMin) {
			// 先排 Window，再把已选中的人排除后排 Remote
			window := run.fillBlock(dr, span, model.KindWindow, nil)
			run.fillBlock(dr, span, model.KindRemote, window.assignees)
		}
	}

	run.balanceHours()

	if run.unfilled > 0 {
		s.logger.ConstraintViolation("coverage_under",
			fmt.Sprintf("%d 个时间块未达到人数下限", run.unfilled))
	}

	st := run.toState()
	penalty, breakdown := env.Evaluate(st)
	duration := time.Since(start)
	s.logger.SolveComplete(duration, penalty, true)

	return &Result{
		Algorithm:  AlgorithmGreedy,
		State:      st,
		Penalty:    penalty,
		Breakdown:  breakdown,
		Iterations: len(run.blocks),
		Duration:   duration,
		Converged:  true,
		Seed:       opts.Seed,
		History:    []float64{penalty},
	}, nil
}

// dayRanges 从班次目录推出每天的营业区间，按日期排序
func dayRanges(slots []model.TimeSlot) []dayRange {
	byDate := make(map[string]*dayRange)
	var dates []string
	for _, s := range slots {
		dr, ok := byDate[s.Date]
		if !ok {
			byDate[s.Date] = &dayRange{date: s.Date, day: s.Day, openMin: s.StartMin, closeMin: s.EndMin}
			dates = append(dates, s.Date)
			continue
		}
		if s.StartMin < dr.openMin {
			dr.openMin = s.StartMin
		}
		if s.EndMin > dr.closeMin {
			dr.closeMin = s.EndMin
		}
	}
	sort.Strings(dates)

	ranges := make([]dayRange, 0, len(dates))
	for _, d := range dates {
		ranges = append(ranges, *byDate[d])
	}
	return ranges
}

// span 候选块的时间区间
type span struct {
	startMin int
	endMin   int
}

// candidateSpans 在半小时网格上生成互不重叠的候选块
// 每个起点取能放下且整点结束的最长时长（4h > 3h > 2h）。
func candidateSpans(openMin, closeMin int) []span {
	var spans []span
	cur := openMin
	for cur < closeMin {
		picked := 0
		for _, d := range greedyBlockDurations {
			end := cur + d
			if end <= closeMin && end%60 == 0 {
				picked = d
				break
			}
		}
		if picked == 0 {
			cur += gridStep
			continue
		}
		spans = append(spans, span{startMin: cur, endMin: cur + picked})
		cur += picked
	}
	return spans
}

// fillBlock 为一个时间块选人并记录
func (r *greedyRun) fillBlock(dr dayRange, sp span, kind model.ShiftKind, exclude []string) *greedyBlock {
	limits := staffLimitsFor(r.env.Slots, kind)
	block := &greedyBlock{
		date:     dr.date,
		day:      dr.day,
		startMin: sp.startMin,
		endMin:   sp.endMin,
		kind:     kind,
		staffMin: limits.Min,
		staffMax: limits.Max,
	}

	dur := block.durationHours()
	target := float64(r.env.Rules.TargetHours)
	maxHours := float64(r.env.Rules.MaxHours)

	pool := r.eligible(block, dur, target, exclude)
	if len(pool) < limits.Min {
		// 目标工时内凑不够人时放宽到硬上限重试
		pool = r.eligible(block, dur, maxHours, exclude)
	}

	r.rankCandidates(pool)

	take := limits.Min
	if take > len(pool) {
		take = len(pool)
	}
	for _, w := range pool[:take] {
		block.assignees = append(block.assignees, w.ID)
		r.hours[w.ID] += dur
		r.seq++
		r.lastAssigned[w.ID] = r.seq
	}

	if len(block.assignees) < limits.Min {
		r.unfilled++
	}

	r.blocks = append(r.blocks, block)
	return block
}

// eligible 计算时间块的候选池
func (r *greedyRun) eligible(block *greedyBlock, dur, capHours float64, exclude []string) []*model.Worker {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	var pool []*model.Worker
	for _, w := range r.env.Workers {
		if excluded[w.ID] {
			continue
		}
		if !w.IsAvailable(block.date, block.startMin, block.endMin) {
			continue
		}
		if r.hours[w.ID]+dur > capHours {
			continue
		}
		pool = append(pool, w)
	}
	return pool
}

// rankCandidates 候选人排序：
// 未达目标工时者在前，其次工时少者，再次最久未被分配者（轮转），最后按 ID
func (r *greedyRun) rankCandidates(pool []*model.Worker) {
	target := float64(r.env.Rules.TargetHours)
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		ua, ub := r.hours[a.ID] < target, r.hours[b.ID] < target
		if ua != ub {
			return ua
		}
		if r.hours[a.ID] != r.hours[b.ID] {
			return r.hours[a.ID] < r.hours[b.ID]
		}
		if r.lastAssigned[a.ID] != r.lastAssigned[b.ID] {
			return r.lastAssigned[a.ID] < r.lastAssigned[b.ID]
		}
		return a.ID < b.ID
	})
}

// balanceHours 给工时不足的员工补 Remote 班
// 扫描有空位的 Remote 块，员工可用且不在块中时加入，直到达到目标工时。
func (r *greedyRun) balanceHours() {
	target := float64(r.env.Rules.TargetHours)

	workers := make([]*model.Worker, len(r.env.Workers))
	copy(workers, r.env.Workers)
	model.SortWorkers(workers)

	for _, w := range workers {
		if !w.IsActive {
			continue
		}
		for _, block := range r.blocks {
			if r.hours[w.ID] >= target {
				break
			}
			if block.kind != model.KindRemote {
				continue
			}
			if len(block.assignees) >= block.staffMax {
				continue
			}
			if block.has(w.ID) {
				continue
			}
			if !w.IsAvailable(block.date, block.startMin, block.endMin) {
				continue
			}
			block.assignees = append(block.assignees, w.ID)
			r.hours[w.ID] += block.durationHours()
		}
	}
}

// toState 把时间块展开成逐班次的分配状态
// 块内员工落到被块完整覆盖的同日期同类型班次上。
func (r *greedyRun) toState() *scheduler.State {
	st := r.env.NewState()
	for i, slot := range r.env.Slots {
		for _, block := range r.blocks {
			if block.date != slot.Date || block.kind != slot.Kind {
				continue
			}
			if slot.StartMin < block.startMin || slot.EndMin > block.endMin {
				continue
			}
			for _, id := range block.assignees {
				st.Add(i, id)
			}
		}
	}
	return st
}

// staffLimitsFor 从目录中取某类班次的人数上下限
func staffLimitsFor(slots []model.TimeSlot, kind model.ShiftKind) model.StaffLimits {
	for _, s := range slots {
		if s.Kind == kind {
			return model.StaffLimits{Min: s.StaffMin, Max: s.StaffMax}
		}
	}
	return model.StaffLimits{Min: 1, Max: 1}
}
