package model

import (
	"testing"
	"time"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "整点", input: "09:00", want: 540},
		{name: "半点", input: "07:30", want: 450},
		{name: "午夜", input: "00:00", want: 0},
		{name: "深夜", input: "23:59", want: 1439},
		{name: "非法格式", input: "abc", wantErr: true},
		{name: "小时越界", input: "24:00", wantErr: true},
		{name: "分钟越界", input: "12:60", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinutes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToMinutes(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ToMinutes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestToClock(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{450, "07:30"},
		{540, "09:00"},
		{0, "00:00"},
		{1200, "20:00"},
	}

	for _, tt := range tests {
		if got := ToClock(tt.minutes); got != tt.want {
			t.Errorf("ToClock(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestIntervalConflicts(t *testing.T) {
	base := Interval{Date: "2026-05-11", StartMin: 600, EndMin: 720}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{name: "完全重叠", other: Interval{Date: "2026-05-11", StartMin: 600, EndMin: 720}, want: true},
		{name: "部分重叠", other: Interval{Date: "2026-05-11", StartMin: 660, EndMin: 780}, want: true},
		{name: "包含", other: Interval{Date: "2026-05-11", StartMin: 630, EndMin: 660}, want: true},
		{name: "首尾相接不冲突", other: Interval{Date: "2026-05-11", StartMin: 720, EndMin: 780}, want: false},
		{name: "前面相接不冲突", other: Interval{Date: "2026-05-11", StartMin: 540, EndMin: 600}, want: false},
		{name: "不同日期不冲突", other: Interval{Date: "2026-05-12", StartMin: 600, EndMin: 720}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Conflicts(tt.other); got != tt.want {
				t.Errorf("Conflicts() = %v, want %v", got, tt.want)
			}
			// 冲突关系是对称的
			if got := tt.other.Conflicts(base); got != tt.want {
				t.Errorf("反向 Conflicts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMonday(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "周一原样返回", input: "2026-05-11", want: "2026-05-11"},
		{name: "周三对齐到周一", input: "2026-05-13", want: "2026-05-11"},
		{name: "周日对齐到周一", input: "2026-05-17", want: "2026-05-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonday(tt.input)
			if err != nil {
				t.Fatalf("ParseMonday(%q) err = %v", tt.input, err)
			}
			if got.Format(DateLayout) != tt.want {
				t.Errorf("ParseMonday(%q) = %s, want %s", tt.input, got.Format(DateLayout), tt.want)
			}
		})
	}

	if _, err := ParseMonday("not-a-date"); err == nil {
		t.Error("非法日期应报错")
	}
}

func TestWeekDates(t *testing.T) {
	monday := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)
	dates := WeekDates(monday)

	want := [6]string{"2026-05-11", "2026-05-12", "2026-05-13", "2026-05-14", "2026-05-15", "2026-05-16"}
	if dates != want {
		t.Errorf("WeekDates() = %v, want %v", dates, want)
	}
}
