package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/betbot/gokelly/internal/domain"
)

// Event 回放事件：快照或结算，二选一非空
type Event struct {
	Time       time.Time
	Snapshot   *domain.MarketSnapshot
	Resolution *ResolutionEvent
}

// ResolutionEvent 市场结算事件
type ResolutionEvent struct {
	Ticker     string
	Resolution domain.Resolution
}

// LoadEventsCSV 从 CSV 加载回放事件流，按时间升序返回。
//
// 格式（带表头）：
//
//	type,timestamp,ticker,yes_bid,yes_ask,no_bid,no_ask,yes_ask_size,no_ask_size,result
//	snapshot,2024-06-01T12:00:00Z,lax-high-85,40,42,58,60,500,500,
//	resolution,2024-06-01T18:00:00Z,lax-high-85,,,,,,,yes
//
// timestamp 为 RFC3339。snapshot 行忽略 result 列；resolution 行忽略价格列。
func LoadEventsCSV(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open events file %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // 结算行允许省略尾部空列

	// 表头
	if _, err := r.Read(); err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}

	var events []Event
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "read csv line %d", line)
		}
		ev, err := parseEventRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "csv line %d", line)
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
	return events, nil
}

func parseEventRow(row []string) (Event, error) {
	if len(row) < 3 {
		return Event{}, errors.Errorf("expected at least 3 columns, got %d", len(row))
	}
	ts, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return Event{}, errors.Wrap(err, "parse timestamp")
	}
	ticker := row[2]

	switch row[0] {
	case "snapshot":
		if len(row) < 7 {
			return Event{}, errors.New("snapshot row needs price columns")
		}
		snap := &domain.MarketSnapshot{
			Timestamp: ts,
			Ticker:    ticker,
		}
		if snap.YesBid, err = parsePrice(row[3]); err != nil {
			return Event{}, errors.Wrap(err, "yes_bid")
		}
		if snap.YesAsk, err = parsePrice(row[4]); err != nil {
			return Event{}, errors.Wrap(err, "yes_ask")
		}
		if snap.NoBid, err = parsePrice(row[5]); err != nil {
			return Event{}, errors.Wrap(err, "no_bid")
		}
		if snap.NoAsk, err = parsePrice(row[6]); err != nil {
			return Event{}, errors.Wrap(err, "no_ask")
		}
		if len(row) > 7 {
			snap.YesAskSize, _ = strconv.Atoi(row[7])
		}
		if len(row) > 8 {
			snap.NoAskSize, _ = strconv.Atoi(row[8])
		}
		return Event{Time: ts, Snapshot: snap}, nil

	case "resolution":
		var result string
		if len(row) > 9 {
			result = row[9]
		} else {
			result = row[len(row)-1]
		}
		res := domain.Resolution(result)
		if !res.IsValid() {
			return Event{}, errors.Errorf("invalid resolution %q", result)
		}
		return Event{Time: ts, Resolution: &ResolutionEvent{Ticker: ticker, Resolution: res}}, nil

	default:
		return Event{}, errors.Errorf("unknown event type %q", row[0])
	}
}

func parsePrice(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
