// Package correlation 离线相关性分组工具。
//
// 对历史逐市场收益序列做层次聚类（相关性距离矩阵 + 平均链接 + 阈值
// 切割），产出交易入场时使用的 market_group 标签。不在热路径上，
// 运行时核心不依赖本包。
package correlation

import (
	"fmt"
	"math"
	"sort"
)

// Cluster 把相关性超过 threshold 的市场聚为一组。
//
// 流程：Pearson 相关系数矩阵 → 距离 = 1 - |ρ| → 平均链接凝聚聚类 →
// 在距离 1-threshold 处切割。返回 groupID -> tickers。
// 序列长度不一致时统一截断到最短长度；长度不足 2 的序列被忽略。
func Cluster(returns map[string][]float64, threshold float64) map[string][]string {
	tickers := make([]string, 0, len(returns))
	minLen := math.MaxInt
	for ticker, series := range returns {
		if len(series) < 2 {
			continue
		}
		tickers = append(tickers, ticker)
		if len(series) < minLen {
			minLen = len(series)
		}
	}
	sort.Strings(tickers)

	if len(tickers) == 0 {
		return map[string][]string{}
	}
	if len(tickers) == 1 {
		return map[string][]string{"group_1": tickers}
	}

	// 距离矩阵：1 - |pearson|
	n := len(tickers)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			rho := pearson(returns[tickers[i]][:minLen], returns[tickers[j]][:minLen])
			d := 1 - math.Abs(rho)
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	labels := agglomerate(dist, 1-threshold)

	// 按簇号分组，组名稳定（按首个成员顺序编号）
	groups := make(map[string][]string)
	order := make(map[int]int)
	for i, ticker := range tickers {
		cluster := labels[i]
		if _, ok := order[cluster]; !ok {
			order[cluster] = len(order) + 1
		}
		groupID := fmt.Sprintf("group_%d", order[cluster])
		groups[groupID] = append(groups[groupID], ticker)
	}
	return groups
}

// pearson 皮尔逊相关系数；任一序列方差为 0 时返回 0
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0
	}

	mx, my := 0.0, 0.0
	for i := 0; i < n; i++ {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// agglomerate 平均链接凝聚聚类，合并到簇间距离超过 cutoff 为止。
// 返回每个元素的簇号。
func agglomerate(dist [][]float64, cutoff float64) []int {
	n := len(dist)
	labels := make([]int, n)
	clusters := make(map[int][]int, n) // 簇号 -> 成员下标
	for i := 0; i < n; i++ {
		labels[i] = i
		clusters[i] = []int{i}
	}

	// 簇间平均距离
	avgDist := func(a, b []int) float64 {
		sum := 0.0
		for _, i := range a {
			for _, j := range b {
				sum += dist[i][j]
			}
		}
		return sum / float64(len(a)*len(b))
	}

	for len(clusters) > 1 {
		// 找最近的簇对
		ids := make([]int, 0, len(clusters))
		for id := range clusters {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		best := math.MaxFloat64
		var bestA, bestB int
		for x := 0; x < len(ids); x++ {
			for y := x + 1; y < len(ids); y++ {
				d := avgDist(clusters[ids[x]], clusters[ids[y]])
				if d < best {
					best = d
					bestA, bestB = ids[x], ids[y]
				}
			}
		}

		if best > cutoff {
			break
		}

		// 合并 bestB 到 bestA
		clusters[bestA] = append(clusters[bestA], clusters[bestB]...)
		for _, i := range clusters[bestB] {
			labels[i] = bestA
		}
		delete(clusters, bestB)
	}

	return labels
}
