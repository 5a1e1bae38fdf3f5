package correlation

import (
	"path/filepath"
	"sort"
	"testing"
)

func openTestStore(t *testing.T) *ReturnsStore {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "returns.badger"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestReturnsStore_AppendAndSeries(t *testing.T) {
	s := openTestStore(t)

	for _, r := range []float64{0.01, -0.02, 0.03} {
		if err := s.Append("weather-lax-high-85", r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	series, err := s.Series("weather-lax-high-85")
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	want := []float64{0.01, -0.02, 0.03}
	if len(series) != len(want) {
		t.Fatalf("series length: got %d, want %d", len(series), len(want))
	}
	for i := range want {
		if series[i] != want[i] {
			t.Fatalf("series[%d]: got %f, want %f", i, series[i], want[i])
		}
	}
}

func TestReturnsStore_MissingTicker(t *testing.T) {
	s := openTestStore(t)

	series, err := s.Series("nope")
	if err != nil {
		t.Fatalf("missing ticker must not error: %v", err)
	}
	if series != nil {
		t.Fatalf("missing ticker must yield nil series: %v", series)
	}
}

func TestReturnsStore_Tickers(t *testing.T) {
	s := openTestStore(t)

	for _, ticker := range []string{"b", "a", "c"} {
		if err := s.Append(ticker, 0.01); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	tickers, err := s.Tickers()
	if err != nil {
		t.Fatalf("Tickers: %v", err)
	}
	sort.Strings(tickers)
	if len(tickers) != 3 || tickers[0] != "a" || tickers[1] != "b" || tickers[2] != "c" {
		t.Fatalf("tickers: %v", tickers)
	}
}

func TestReturnsStore_AllSeriesFeedsCluster(t *testing.T) {
	s := openTestStore(t)

	data := map[string][]float64{
		"lax": {0.01, -0.02, 0.03, 0.01},
		"sfo": {0.011, -0.021, 0.029, 0.012},
	}
	for ticker, series := range data {
		for _, r := range series {
			if err := s.Append(ticker, r); err != nil {
				t.Fatalf("Append: %v", err)
			}
		}
	}

	all, err := s.AllSeries()
	if err != nil {
		t.Fatalf("AllSeries: %v", err)
	}

	groups := Cluster(all, 0.5)
	if len(groups) != 1 {
		t.Fatalf("near-identical series must cluster together: %+v", groups)
	}
}

func TestReturnsStore_Validation(t *testing.T) {
	if _, err := OpenStore(""); err == nil {
		t.Fatalf("empty path must be rejected")
	}

	s := openTestStore(t)
	if err := s.Append("", 0.01); err == nil {
		t.Fatalf("empty ticker must be rejected")
	}

	var closed *ReturnsStore
	if err := closed.Append("t", 0.01); err == nil {
		t.Fatalf("nil store must error")
	}
}
