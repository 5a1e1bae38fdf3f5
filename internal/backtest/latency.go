package backtest

import (
	"math/rand"
	"time"
)

// LatencyModel 模拟 API 延迟与时钟偏移。
//
// 提交/成交延迟为互相独立的高斯抽样（截断到 >=0），时钟偏移为固定
// 常量，用于还原真实的持仓时长和 walk-forward 时序，不参与并发控制。
type LatencyModel struct {
	SubmitLatencyMean time.Duration // 提交延迟均值
	SubmitLatencyStd  time.Duration // 提交延迟标准差
	FillLatencyMean   time.Duration // 成交回报延迟均值
	FillLatencyStd    time.Duration // 成交回报延迟标准差
	ClockSkew         time.Duration // 客户端与交易所时钟偏移

	rng *rand.Rand
}

// NewLatencyModel 创建延迟模型（默认参数贴近实测 API 表现）
func NewLatencyModel(seed int64) *LatencyModel {
	return &LatencyModel{
		SubmitLatencyMean: 50 * time.Millisecond,
		SubmitLatencyStd:  20 * time.Millisecond,
		FillLatencyMean:   30 * time.Millisecond,
		FillLatencyStd:    15 * time.Millisecond,
		ClockSkew:         100 * time.Millisecond,
		rng:               rand.New(rand.NewSource(seed)),
	}
}

// gaussian 高斯抽样，截断到 >=0
func (l *LatencyModel) gaussian(mean, std time.Duration) time.Duration {
	d := time.Duration(float64(mean) + l.rng.NormFloat64()*float64(std))
	if d < 0 {
		return 0
	}
	return d
}

// SubmitLatency 抽取一次订单提交延迟
func (l *LatencyModel) SubmitLatency() time.Duration {
	return l.gaussian(l.SubmitLatencyMean, l.SubmitLatencyStd)
}

// FillLatency 抽取一次成交回报延迟
func (l *LatencyModel) FillLatency() time.Duration {
	return l.gaussian(l.FillLatencyMean, l.FillLatencyStd)
}

// SkewedTime 给时间戳叠加固定时钟偏移
func (l *LatencyModel) SkewedTime(t time.Time) time.Time {
	return t.Add(l.ClockSkew)
}
