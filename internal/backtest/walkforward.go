package backtest

import (
	"sort"
	"time"
)

// Split walk-forward 的一个训练/测试窗口切分
type Split[E any] struct {
	TrainStart time.Time // 训练窗口起点（含）
	TrainEnd   time.Time // 训练窗口终点（不含），同时是测试窗口起点
	TestEnd    time.Time // 测试窗口终点（不含）
	Train      []E       // 训练事件
	Test       []E       // 测试事件
}

// WalkForward 按时间滚动切分事件序列，只用每个决策点之前的数据训练，
// 避免数据泄漏。timeOf 提取事件时间戳；输入无需预排序。
//
// 两个窗口都为空的切分被跳过；窗口随测试段长度向前推进。
func WalkForward[E any](events []E, timeOf func(E) time.Time, trainWindow, testWindow time.Duration) []Split[E] {
	if len(events) == 0 || trainWindow <= 0 || testWindow <= 0 {
		return nil
	}

	sorted := append([]E(nil), events...)
	sort.Slice(sorted, func(i, j int) bool {
		return timeOf(sorted[i]).Before(timeOf(sorted[j]))
	})

	start := timeOf(sorted[0])
	end := timeOf(sorted[len(sorted)-1])

	var splits []Split[E]
	for current := start.Add(trainWindow); current.Before(end); current = current.Add(testWindow) {
		trainStart := current.Add(-trainWindow)
		testEnd := current.Add(testWindow)

		var train, test []E
		for _, e := range sorted {
			ts := timeOf(e)
			switch {
			case !ts.Before(trainStart) && ts.Before(current):
				train = append(train, e)
			case !ts.Before(current) && ts.Before(testEnd):
				test = append(test, e)
			}
		}

		if len(train) == 0 || len(test) == 0 {
			continue
		}

		splits = append(splits, Split[E]{
			TrainStart: trainStart,
			TrainEnd:   current,
			TestEnd:    testEnd,
			Train:      train,
			Test:       test,
		})
	}
	return splits
}
