package backtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/betbot/gokelly/internal/domain"
)

func writeEventsCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestLoadEventsCSV(t *testing.T) {
	path := writeEventsCSV(t, `type,timestamp,ticker,yes_bid,yes_ask,no_bid,no_ask,yes_ask_size,no_ask_size,result
resolution,2024-06-01T18:00:00Z,weather-lax-high-85,,,,,,,yes
snapshot,2024-06-01T12:00:00Z,weather-lax-high-85,38,40,58,60,500,400,
`)

	events, err := LoadEventsCSV(path)
	if err != nil {
		t.Fatalf("LoadEventsCSV: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events: got %d, want 2", len(events))
	}

	// 乱序输入必须按时间升序返回
	if events[0].Snapshot == nil {
		t.Fatalf("first event must be the earlier snapshot")
	}
	snap := events[0].Snapshot
	if snap.Ticker != "weather-lax-high-85" || snap.YesBid != 38 || snap.YesAsk != 40 {
		t.Fatalf("snapshot parsed wrong: %+v", snap)
	}
	if snap.YesAskSize != 500 || snap.NoAskSize != 400 {
		t.Fatalf("sizes parsed wrong: %d/%d", snap.YesAskSize, snap.NoAskSize)
	}

	if events[1].Resolution == nil {
		t.Fatalf("second event must be the resolution")
	}
	res := events[1].Resolution
	if res.Ticker != "weather-lax-high-85" || res.Resolution != domain.ResolutionYes {
		t.Fatalf("resolution parsed wrong: %+v", res)
	}
	want := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	if !events[1].Time.Equal(want) {
		t.Fatalf("resolution time: got %s, want %s", events[1].Time, want)
	}
}

func TestLoadEventsCSV_BadRows(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad timestamp", "type,timestamp,ticker\nsnapshot,not-a-time,t,38,40,58,60\n"},
		{"unknown type", "type,timestamp,ticker\nweird,2024-06-01T12:00:00Z,t\n"},
		{"bad resolution", "type,timestamp,ticker,a,b,c,d,e,f,result\nresolution,2024-06-01T12:00:00Z,t,,,,,,,maybe\n"},
	}
	for _, tc := range cases {
		path := writeEventsCSV(t, tc.content)
		if _, err := LoadEventsCSV(path); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadEventsCSV_MissingFile(t *testing.T) {
	if _, err := LoadEventsCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatalf("missing file must error")
	}
}
