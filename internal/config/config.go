// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	apperrors "github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
	"github.com/zhiban/zhiban/pkg/scheduler/solver"
)

// Config 应用配置
// 默认值 -> YAML 文件 -> 环境变量，后者覆盖前者。
type Config struct {
	App      AppConfig          `yaml:"app"`
	Week     WeekConfig         `yaml:"week"`
	Staffing model.Staffing     `yaml:"staffing"`
	Rules    constraint.Rules   `yaml:"rules"`
	Weights  constraint.Weights `yaml:"weights"`
	Solver   solver.Config      `yaml:"solver"`
	Database DatabaseConfig     `yaml:"database"`
	Log      logger.Config      `yaml:"log"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name string `yaml:"name" env:"ZHIBAN_APP_NAME"`
	Env  string `yaml:"env" env:"ZHIBAN_ENV"`
}

// WeekConfig 排班周配置
type WeekConfig struct {
	// ScheduleType finals 或 regular
	ScheduleType string `yaml:"schedule_type" env:"ZHIBAN_SCHEDULE_TYPE"`
	// StartDate 周一日期（YYYY-MM-DD），空值表示使用下一个周一
	StartDate string `yaml:"start_date" env:"ZHIBAN_WEEK_START"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `yaml:"host" env:"DB_HOST"`
	Port            int           `yaml:"port" env:"DB_PORT"`
	Name            string        `yaml:"name" env:"DB_NAME"`
	User            string        `yaml:"user" env:"DB_USER"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	SSLMode         string        `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "zhiban",
			Env:  "development",
		},
		Week: WeekConfig{
			ScheduleType: string(model.ScheduleFinals),
		},
		Staffing: model.DefaultStaffing(),
		Rules:    constraint.DefaultRules(),
		Weights:  constraint.DefaultWeights(),
		Solver:   solver.DefaultConfig(),
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "zhiban",
			User:            "zhiban",
			Password:        "zhiban123",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Log: logger.DefaultConfig(),
	}
}

// Load 加载配置：默认值 -> 可选 YAML 文件 -> 环境变量
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, fmt.Sprintf("无法读取配置文件 %s", path))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, fmt.Sprintf("配置文件 %s 解析失败", path))
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "环境变量解析失败")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置的自洽性
func (c *Config) Validate() error {
	switch model.ScheduleType(c.Week.ScheduleType) {
	case model.ScheduleFinals, model.ScheduleRegular:
	default:
		return apperrors.InvalidInput("week.schedule_type",
			fmt.Sprintf("必须是 finals 或 regular，实际为 %q", c.Week.ScheduleType))
	}

	if c.Week.StartDate != "" {
		if _, err := time.Parse(model.DateLayout, c.Week.StartDate); err != nil {
			return apperrors.InvalidInput("week.start_date", err.Error())
		}
	}

	if c.Rules.MinHours > c.Rules.TargetHours || c.Rules.TargetHours > c.Rules.MaxHours {
		return apperrors.InvalidInput("rules",
			fmt.Sprintf("工时规则必须满足 min <= target <= max，实际为 %d/%d/%d",
				c.Rules.MinHours, c.Rules.TargetHours, c.Rules.MaxHours))
	}

	if c.Staffing.Window.Min > c.Staffing.Window.Max || c.Staffing.Remote.Min > c.Staffing.Remote.Max {
		return apperrors.InvalidInput("staffing", "人数下限不能大于上限")
	}
	if c.Staffing.Window.Min < 0 || c.Staffing.Remote.Min < 0 {
		return apperrors.InvalidInput("staffing", "人数不能为负")
	}

	return nil
}

// WeekStart 返回排班周的周一日期
// 未配置时取当前时间之后的下一个周一。
func (c *Config) WeekStart(now time.Time) (time.Time, error) {
	if c.Week.StartDate != "" {
		return model.ParseMonday(c.Week.StartDate)
	}
	offset := (8 - int(now.Weekday())) % 7
	if offset == 0 {
		offset = 7
	}
	next := now.AddDate(0, 0, offset)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC), nil
}
