package backtest

import (
	"testing"
	"time"
)

type stamped struct {
	at time.Time
}

func hourlyEvents(start time.Time, days int) []stamped {
	var events []stamped
	for i := 0; i < days*24; i++ {
		events = append(events, stamped{at: start.Add(time.Duration(i) * time.Hour)})
	}
	return events
}

func TestWalkForward_NoLeakage(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	events := hourlyEvents(start, 10)

	splits := WalkForward(events, func(e stamped) time.Time { return e.at }, 5*24*time.Hour, 24*time.Hour)
	if len(splits) == 0 {
		t.Fatalf("expected splits")
	}

	for i, s := range splits {
		if !s.TrainEnd.After(s.TrainStart) || !s.TestEnd.After(s.TrainEnd) {
			t.Fatalf("split %d: windows out of order", i)
		}
		// 训练事件严格早于测试事件
		for _, e := range s.Train {
			if !e.at.Before(s.TrainEnd) {
				t.Fatalf("split %d: train event %s leaked past %s", i, e.at, s.TrainEnd)
			}
		}
		for _, e := range s.Test {
			if e.at.Before(s.TrainEnd) || !e.at.Before(s.TestEnd) {
				t.Fatalf("split %d: test event %s outside window", i, e.at)
			}
		}
	}

	// 窗口按测试段长度向前滚动
	for i := 1; i < len(splits); i++ {
		if got := splits[i].TrainEnd.Sub(splits[i-1].TrainEnd); got != 24*time.Hour {
			t.Fatalf("split stride: got %s, want 24h", got)
		}
	}
}

func TestWalkForward_UnsortedInput(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	events := []stamped{
		{at: start.Add(72 * time.Hour)},
		{at: start},
		{at: start.Add(24 * time.Hour)},
		{at: start.Add(96 * time.Hour)},
		{at: start.Add(48 * time.Hour)},
	}

	splits := WalkForward(events, func(e stamped) time.Time { return e.at }, 48*time.Hour, 24*time.Hour)
	if len(splits) == 0 {
		t.Fatalf("expected splits from unsorted input")
	}
	for _, s := range splits {
		for i := 1; i < len(s.Train); i++ {
			if s.Train[i].at.Before(s.Train[i-1].at) {
				t.Fatalf("train events must come out sorted")
			}
		}
	}
}

func TestWalkForward_Degenerate(t *testing.T) {
	if splits := WalkForward(nil, func(e stamped) time.Time { return e.at }, time.Hour, time.Hour); splits != nil {
		t.Fatalf("nil events must yield nil")
	}
	events := hourlyEvents(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 1)
	if splits := WalkForward(events, func(e stamped) time.Time { return e.at }, 0, time.Hour); splits != nil {
		t.Fatalf("zero train window must yield nil")
	}
}
