package scheduler

import "testing"

func newTestState() *State {
	// 四个班次：三个 1 小时，一个半小时
	return NewState([]float64{1, 1, 1, 0.5})
}

func TestStateAddRemove(t *testing.T) {
	st := newTestState()

	if !st.Add(0, "a") {
		t.Fatal("首次加入应成功")
	}
	if st.Add(0, "a") {
		t.Fatal("重复加入应失败")
	}
	if st.Hours("a") != 1 {
		t.Errorf("工时 = %v, want 1", st.Hours("a"))
	}

	st.Add(3, "a")
	if st.Hours("a") != 1.5 {
		t.Errorf("工时 = %v, want 1.5", st.Hours("a"))
	}

	if !st.Remove(0, "a") {
		t.Fatal("移除应成功")
	}
	if st.Remove(0, "a") {
		t.Fatal("重复移除应失败")
	}
	if st.Hours("a") != 0.5 {
		t.Errorf("工时 = %v, want 0.5", st.Hours("a"))
	}
}

func TestStateReplace(t *testing.T) {
	st := newTestState()
	st.Add(0, "a")
	st.Add(0, "b")

	if !st.Replace(0, "a", "c") {
		t.Fatal("替换应成功")
	}
	if st.Has(0, "a") || !st.Has(0, "c") {
		t.Errorf("替换后人员 = %v", st.Assignees[0])
	}
	if st.Hours("a") != 0 || st.Hours("c") != 1 {
		t.Errorf("替换后工时 a=%v c=%v", st.Hours("a"), st.Hours("c"))
	}

	// 替换不存在的员工失败
	if st.Replace(0, "x", "y") {
		t.Error("替换不存在的员工应失败")
	}
	// 新员工已在班次中时失败
	if st.Replace(0, "b", "c") {
		t.Error("新员工已在班次中应失败")
	}
}

func TestStateSwapSlots(t *testing.T) {
	st := newTestState()
	st.Add(0, "a")
	st.Add(1, "b")
	st.Add(1, "c")

	st.SwapSlots(0, 1)

	if st.Count(0) != 2 || st.Count(1) != 1 {
		t.Fatalf("交换后人数 = %d/%d", st.Count(0), st.Count(1))
	}
	if !st.Has(0, "b") || !st.Has(0, "c") || !st.Has(1, "a") {
		t.Errorf("交换后人员错误: %v / %v", st.Assignees[0], st.Assignees[1])
	}
	// 同时长班次的交换不改变工时
	if st.Hours("a") != 1 || st.Hours("b") != 1 || st.Hours("c") != 1 {
		t.Errorf("交换后工时变化: a=%v b=%v c=%v", st.Hours("a"), st.Hours("b"), st.Hours("c"))
	}
}

func TestStateClone(t *testing.T) {
	st := newTestState()
	st.Add(0, "a")
	st.Add(1, "b")

	clone := st.Clone()
	clone.Add(2, "a")
	clone.Remove(0, "a")

	if !st.Has(0, "a") {
		t.Error("修改克隆不应影响原状态")
	}
	if st.Hours("a") != 1 {
		t.Errorf("原状态工时被污染: %v", st.Hours("a"))
	}
	if clone.Hours("a") != 1 {
		t.Errorf("克隆工时 = %v, want 1", clone.Hours("a"))
	}
}

func TestStateSetSlot(t *testing.T) {
	st := newTestState()
	st.Add(0, "a")
	st.Add(0, "b")

	st.SetSlot(0, []string{"c"})

	if st.Count(0) != 1 || !st.Has(0, "c") {
		t.Errorf("SetSlot 后人员 = %v", st.Assignees[0])
	}
	if st.Hours("a") != 0 || st.Hours("b") != 0 || st.Hours("c") != 1 {
		t.Errorf("SetSlot 后工时 a=%v b=%v c=%v", st.Hours("a"), st.Hours("b"), st.Hours("c"))
	}

	if st.TotalAssignments() != 1 {
		t.Errorf("TotalAssignments = %d", st.TotalAssignments())
	}
}
