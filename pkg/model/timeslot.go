// Package model 定义排班引擎的核心数据模型
package model

import (
	"fmt"
	"time"
)

// ShiftKind 班次类型
type ShiftKind string

const (
	KindWindow ShiftKind = "Window" // 前台值班
	KindRemote ShiftKind = "Remote" // 远程值班
)

// Kinds 班次类型的固定顺序
var Kinds = [...]ShiftKind{KindWindow, KindRemote}

// StaffLimits 单个班次的人数上下限
type StaffLimits struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Staffing 每类班次的人数配置
type Staffing struct {
	Window StaffLimits `json:"window" yaml:"window"`
	Remote StaffLimits `json:"remote" yaml:"remote"`
}

// DefaultStaffing 默认人数配置：Window 1-2 人，Remote 2-4 人
func DefaultStaffing() Staffing {
	return Staffing{
		Window: StaffLimits{Min: 1, Max: 2},
		Remote: StaffLimits{Min: 2, Max: 4},
	}
}

// Limits 返回某类班次的人数上下限
func (s Staffing) Limits(kind ShiftKind) StaffLimits {
	if kind == KindWindow {
		return s.Window
	}
	return s.Remote
}

// DayWindow 某天的营业时间
type DayWindow struct {
	Day      Day
	OpenMin  int
	CloseMin int
}

// OperatingHours 返回某周类型下各天的营业时间
// 考试周：周一至周四 07:30-20:00，周五 07:30-17:00
// 常规周：另加周六 10:00-18:00
func OperatingHours(scheduleType ScheduleType) []DayWindow {
	windows := []DayWindow{
		{Monday, 7*60 + 30, 20 * 60},
		{Tuesday, 7*60 + 30, 20 * 60},
		{Wednesday, 7*60 + 30, 20 * 60},
		{Thursday, 7*60 + 30, 20 * 60},
		{Friday, 7*60 + 30, 17 * 60},
	}
	if scheduleType == ScheduleRegular {
		windows = append(windows, DayWindow{Saturday, 10 * 60, 18 * 60})
	}
	return windows
}

// TimeSlot 求解器分配的最小单元
type TimeSlot struct {
	Index    int       `json:"index"` // 在目录中的位置
	Date     string    `json:"date"`
	Day      Day       `json:"day"`
	StartMin int       `json:"start_min"`
	EndMin   int       `json:"end_min"`
	Kind     ShiftKind `json:"kind"`
	StaffMin int       `json:"staff_min"`
	StaffMax int       `json:"staff_max"`
}

// Interval 返回班次对应的时间段
func (s TimeSlot) Interval() Interval {
	return Interval{Date: s.Date, StartMin: s.StartMin, EndMin: s.EndMin}
}

// DurationHours 返回班次小时数
func (s TimeSlot) DurationHours() float64 {
	return float64(s.EndMin-s.StartMin) / 60.0
}

// StartsBeforeCommuterCutoff 班次是否在 9 点前开始
func (s TimeSlot) StartsBeforeCommuterCutoff() bool {
	return s.StartMin < CommuterCutoffMin
}

// TimeRange 返回 HH:MM-HH:MM 形式的时间描述
func (s TimeSlot) TimeRange() string {
	return fmt.Sprintf("%s-%s", ToClock(s.StartMin), ToClock(s.EndMin))
}

// BuildCatalog 为指定周生成班次目录
// 每天从开门时间起按 60 分钟步进切分；收尾不足一小时时生成一个短班次。
// 每个时间点各生成一个 Window 和一个 Remote 班次，序号按 (天, 时间, 类型) 排列。
func BuildCatalog(scheduleType ScheduleType, monday time.Time, staffing Staffing) []TimeSlot {
	dates := WeekDates(monday)
	var slots []TimeSlot

	for _, dw := range OperatingHours(scheduleType) {
		start := dw.OpenMin
		for start < dw.CloseMin {
			end := start + 60
			if end > dw.CloseMin {
				end = dw.CloseMin
			}
			for _, kind := range Kinds {
				limits := staffing.Limits(kind)
				slots = append(slots, TimeSlot{
					Index:    len(slots),
					Date:     dates[dw.Day],
					Day:      dw.Day,
					StartMin: start,
					EndMin:   end,
					Kind:     kind,
					StaffMin: limits.Min,
					StaffMax: limits.Max,
				})
			}
			start = end
		}
	}

	return slots
}
