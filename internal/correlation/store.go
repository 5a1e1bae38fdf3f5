package correlation

import (
	"encoding/json"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

const keyPrefix = "returns:"

// ReturnsStore 逐市场历史收益序列的本地 KV 存储（Badger）。
// 值为 JSON 编码的 []float64，按 ticker 分键。
type ReturnsStore struct {
	db *badger.DB
}

// OpenStore 打开（或创建）path 下的收益库
func OpenStore(path string) (*ReturnsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("correlation: store path is required")
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open returns store")
	}
	return &ReturnsStore{db: db}, nil
}

func (s *ReturnsStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append 在 ticker 的序列尾部追加一期收益
func (s *ReturnsStore) Append(ticker string, r float64) error {
	if s == nil || s.db == nil {
		return errors.New("correlation: store not opened")
	}
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return errors.New("correlation: ticker is empty")
	}
	key := []byte(keyPrefix + ticker)
	return s.db.Update(func(txn *badger.Txn) error {
		var series []float64
		item, err := txn.Get(key)
		if err == nil {
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &series)
			})
			if err != nil {
				return errors.Wrapf(err, "decode series %s", ticker)
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		series = append(series, r)
		buf, err := json.Marshal(series)
		if err != nil {
			return err
		}
		return txn.Set(key, buf)
	})
}

// Series 返回 ticker 的完整收益序列；不存在时返回 nil, nil
func (s *ReturnsStore) Series(ticker string) ([]float64, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("correlation: store not opened")
	}
	var series []float64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + ticker))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &series)
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "read series %s", ticker)
	}
	return series, nil
}

// Tickers 列出库内所有 ticker
func (s *ReturnsStore) Tickers() ([]string, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("correlation: store not opened")
	}
	var tickers []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			tickers = append(tickers, strings.TrimPrefix(key, keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tickers, nil
}

// AllSeries 读出全部序列，供 Cluster 使用
func (s *ReturnsStore) AllSeries() (map[string][]float64, error) {
	tickers, err := s.Tickers()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]float64, len(tickers))
	for _, ticker := range tickers {
		series, err := s.Series(ticker)
		if err != nil {
			return nil, err
		}
		out[ticker] = series
	}
	return out, nil
}
