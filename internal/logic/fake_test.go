package logic

import (
	"testing"
	"time"
)

func TestFakeSchedulerOrder(t *testing.T) {
	f := NewFakeScheduler()
	var got []string

	f.Schedule(300*time.Millisecond, func() { got = append(got, "c") })
	f.Schedule(100*time.Millisecond, func() { got = append(got, "a") })
	f.Schedule(100*time.Millisecond, func() { got = append(got, "b") })

	f.Advance(200 * time.Millisecond)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("after 200ms: got %v, want [a b]", got)
	}

	f.Advance(100 * time.Millisecond)
	if len(got) != 3 || got[2] != "c" {
		t.Fatalf("after 300ms: got %v, want [a b c]", got)
	}
}

func TestFakeSchedulerCancel(t *testing.T) {
	f := NewFakeScheduler()
	fired := false

	task := f.Schedule(time.Second, func() { fired = true })
	if !task.Cancel() {
		t.Error("first Cancel should report pending")
	}
	if task.Cancel() {
		t.Error("second Cancel should report not pending")
	}

	f.Advance(2 * time.Second)
	if fired {
		t.Error("cancelled task fired")
	}
	if f.Pending() != 0 {
		t.Errorf("expected 0 pending, got %d", f.Pending())
	}
}

func TestFakeSchedulerTaskSchedulesTask(t *testing.T) {
	f := NewFakeScheduler()
	n := 0

	f.Schedule(time.Second, func() {
		n++
		f.Schedule(0, func() { n++ })
	})

	f.Advance(time.Second)
	if n != 2 {
		t.Errorf("expected nested task to run in same Advance, got n=%d", n)
	}
}
