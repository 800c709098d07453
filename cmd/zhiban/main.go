// ZhiBan 值班排班引擎
// 主程序入口

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zhiban/zhiban/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "zhiban",
		Short: "ZhiBan 值班排班引擎 - IT 服务台学生员工排班",
		Long: `ZhiBan 为 IT 服务台生成学生员工的周排班表。
支持遗传算法、模拟退火、两阶段局部搜索和确定性贪心基线，
同一评估口径下可对比各算法的排班质量。`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logger.Init(logger.Config{
				Level:  level,
				Format: "console",
			})
		},
	}

	rootCmd.PersistentFlags().String("log-level", os.Getenv("ZHIBAN_LOG_LEVEL"), "日志级别 (debug/info/warn/error)")
	rootCmd.PersistentFlags().String("config", "", "配置文件路径 (YAML)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newVersionCmd 版本信息命令
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("zhiban v%s\n", Version)
			fmt.Printf("build: %s (%s)\n", BuildTime, GitCommit)
		},
	}
}
