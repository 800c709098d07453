package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhiban/zhiban/internal/config"
	"github.com/zhiban/zhiban/internal/database"
	"github.com/zhiban/zhiban/internal/loader"
	"github.com/zhiban/zhiban/internal/repository"
	"github.com/zhiban/zhiban/pkg/export"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/scheduler/solver"
	"github.com/zhiban/zhiban/pkg/validator"
)

// runFlags run 命令的参数
type runFlags struct {
	algorithm    string
	compare      bool
	scheduleType string
	seed         int64
	maxTimeS     int
	exportFormat string
	outputDir    string
	showSchedule bool
	inputFile    string
	fromDB       bool
}

// newRunCmd 构建 run 命令
func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "生成一周排班",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			return runSchedule(cmd.Context(), cfgPath, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.algorithm, "algorithm", "a", solver.AlgorithmSA, "求解算法 (GA/SA/CSP/greedy)")
	cmd.Flags().BoolVar(&flags.compare, "compare", false, "运行全部算法并对比结果")
	cmd.Flags().StringVar(&flags.scheduleType, "schedule-type", "", "周类型 (finals/regular)，默认取配置")
	cmd.Flags().Int64Var(&flags.seed, "seed", 42, "随机种子，同种子同输入结果可复现")
	cmd.Flags().IntVar(&flags.maxTimeS, "max-time", 0, "求解时间预算（秒），0 表示使用各算法默认值")
	cmd.Flags().StringVar(&flags.exportFormat, "export", "", "导出格式 (json/csv/shifts/all)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "outputs", "导出目录")
	cmd.Flags().BoolVar(&flags.showSchedule, "show-schedule", false, "打印逐时段排班矩阵")
	cmd.Flags().StringVarP(&flags.inputFile, "input", "i", "", "员工与考试数据的 JSON 文件")
	cmd.Flags().BoolVar(&flags.fromDB, "from-db", false, "从数据库加载员工与考试数据")

	return cmd
}

// runSchedule run 命令主流程
func runSchedule(ctx context.Context, cfgPath string, flags *runFlags) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if flags.scheduleType != "" {
		cfg.Week.ScheduleType = flags.scheduleType
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	workers, err := loadWorkers(ctx, cfg, flags)
	if err != nil {
		return err
	}

	monday, err := cfg.WeekStart(time.Now())
	if err != nil {
		return err
	}
	slots := model.BuildCatalog(model.ScheduleType(cfg.Week.ScheduleType), monday, cfg.Staffing)
	env := scheduler.NewEnvironment(workers, slots, cfg.Weights, cfg.Rules)

	logger.Info().
		Str("schedule_type", cfg.Week.ScheduleType).
		Str("week_start", monday.Format(model.DateLayout)).
		Int("workers", len(env.Workers)).
		Int("slots", len(env.Slots)).
		Msg("排班环境就绪")

	opts := solver.Options{
		Seed:    flags.seed,
		MaxTime: time.Duration(flags.maxTimeS) * time.Second,
	}

	var results []*solver.Result
	if flags.compare {
		results, err = runAll(ctx, env, cfg, opts)
	} else {
		results, err = runOne(ctx, env, cfg, flags.algorithm, opts)
	}
	if err != nil {
		return err
	}

	best := pickBest(results)

	if flags.compare {
		printComparison(results)
	}
	printReport(env, best)

	if flags.showSchedule {
		fmt.Println(export.FormatSchedule(env, best.State))
	}

	if flags.exportFormat != "" {
		if err := exportResult(env, best, flags.exportFormat, flags.outputDir); err != nil {
			return err
		}
	}

	return nil
}

// loadWorkers 按参数选择数据来源
func loadWorkers(ctx context.Context, cfg *config.Config, flags *runFlags) ([]*model.Worker, error) {
	var input *loader.Input
	var err error

	switch {
	case flags.fromDB:
		db, dbErr := database.New(&cfg.Database)
		if dbErr != nil {
			return nil, dbErr
		}
		defer db.Close()
		input, err = repository.NewWorkerRepository(db).Load(ctx)
	case flags.inputFile != "":
		input, err = loader.LoadFile(flags.inputFile)
	default:
		return nil, fmt.Errorf("必须通过 --input 或 --from-db 指定数据来源")
	}
	if err != nil {
		return nil, err
	}

	return loader.BuildWorkers(input)
}

// runOne 运行单个算法
func runOne(ctx context.Context, env *scheduler.Environment, cfg *config.Config, algorithm string, opts solver.Options) ([]*solver.Result, error) {
	s, err := solver.New(algorithm, cfg.Solver)
	if err != nil {
		return nil, err
	}
	res, err := s.Solve(ctx, env, opts)
	if err != nil {
		return nil, err
	}
	return []*solver.Result{res}, nil
}

// runAll 依次运行全部算法
func runAll(ctx context.Context, env *scheduler.Environment, cfg *config.Config, opts solver.Options) ([]*solver.Result, error) {
	var results []*solver.Result
	for _, name := range []string{solver.AlgorithmGreedy, solver.AlgorithmGA, solver.AlgorithmSA, solver.AlgorithmCSP} {
		res, err := runOne(ctx, env, cfg, name, opts)
		if err != nil {
			return nil, err
		}
		results = append(results, res...)
	}
	return results, nil
}

// pickBest 取惩罚值最低的结果
func pickBest(results []*solver.Result) *solver.Result {
	best := results[0]
	for _, r := range results[1:] {
		if r.Penalty < best.Penalty {
			best = r
		}
	}
	return best
}

// printComparison 打印算法对比表
func printComparison(results []*solver.Result) {
	ranked := make([]*solver.Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Penalty < ranked[j].Penalty })

	fmt.Println()
	fmt.Println("ALGORITHM COMPARISON")
	fmt.Println("--------------------------------------------------------------")
	fmt.Printf("%-8s %12s %10s %12s %10s\n", "算法", "惩罚值", "迭代数", "耗时", "收敛")
	for _, r := range ranked {
		fmt.Printf("%-8s %12.2f %10d %12s %10v\n",
			r.Algorithm, r.Penalty, r.Iterations, r.Duration.Round(time.Millisecond), r.Converged)
		counts := r.Breakdown.Counts()
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("         %-20s %d\n", k, counts[k])
		}
	}
	fmt.Println("--------------------------------------------------------------")
	fmt.Printf("最优: %s (%.2f)\n", ranked[0].Algorithm, ranked[0].Penalty)
}

// printReport 打印验证报告
func printReport(env *scheduler.Environment, res *solver.Result) {
	report := validator.QuickValidate(env, res.State)

	fmt.Println()
	fmt.Printf("算法: %s  惩罚值: %.2f  质量: %s\n", res.Algorithm, report.Penalty, report.Quality)
	fmt.Printf("关键约束: 通过=%v\n", report.AllCriticalPass)
	fmt.Printf("工时: min=%.1f max=%.1f avg=%.1f\n", report.MinHours, report.MaxHours, report.AvgHours)

	if len(report.Violations) > 0 {
		fmt.Println("违反明细:")
		keys := make([]string, 0, len(report.Violations))
		for k := range report.Violations {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-20s %d\n", k, report.Violations[k])
		}
	}

	if len(report.UncoveredSlots) > 0 {
		fmt.Printf("人数不足的班次 (%d):\n", len(report.UncoveredSlots))
		for _, s := range report.UncoveredSlots {
			fmt.Printf("  %s %s %-6s %d/%d\n", s.Date, s.TimeRange, s.Kind, s.Assigned, s.Required)
		}
	}
}

// exportResult 按指定格式导出
func exportResult(env *scheduler.Environment, res *solver.Result, format, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建导出目录失败: %w", err)
	}

	exporter := export.New(env, res)

	var paths []string
	var err error
	switch format {
	case "json":
		var p string
		p, err = exporter.WriteJSON(dir)
		paths = append(paths, p)
	case "csv":
		var p string
		p, err = exporter.WriteCSV(dir)
		paths = append(paths, p)
	case "shifts":
		var p string
		p, err = exporter.WriteShiftRecords(dir)
		paths = append(paths, p)
	case "all":
		paths, err = exporter.WriteAll(dir)
	default:
		return fmt.Errorf("未知的导出格式 %q (json/csv/shifts/all)", format)
	}
	if err != nil {
		return err
	}

	for _, p := range paths {
		logger.Info().Str("path", p).Msg("导出完成")
	}
	return nil
}
