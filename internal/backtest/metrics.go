package backtest

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Metrics 回测绩效指标。
//
// SharpeRatio 按逐笔净盈亏序列计算（mean/std × √252），不是按日聚合
// 收益——这是对真实 Sharpe 的简化，为保持口径兼容而保留。
type Metrics struct {
	// 资金
	InitialCapital decimal.Decimal // 初始资金
	FinalCapital   decimal.Decimal // 最终资金
	TotalPnL       decimal.Decimal // 净盈亏合计
	TotalReturnPct float64         // 总收益率（%）

	// 交易
	TotalTrades   int     // 总笔数
	WinningTrades int     // 盈利笔数
	LosingTrades  int     // 亏损笔数
	WinRate       float64 // 胜率（%）

	// 盈亏分布
	AvgWin       float64 // 平均盈利（美元）
	AvgLoss      float64 // 平均亏损（美元，负数）
	WinLossRatio float64 // 盈亏比 |avgWin/avgLoss|
	BestTrade    float64 // 最佳单笔（美元）
	WorstTrade   float64 // 最差单笔（美元）

	// 风险
	MaxDrawdown float64 // 最大回撤（相对权益峰值，负数）
	SharpeRatio float64 // 逐笔 Sharpe 近似

	// 手续费
	TotalFees      decimal.Decimal // 手续费合计
	AvgFeePerTrade float64         // 单笔平均手续费
	FeePctOfPnL    float64         // 手续费占 |净盈亏| 比例（%）

	// 时间与 ROI
	AvgHoldingPeriod time.Duration // 平均持仓时长
	AvgROI           float64       // 平均 ROI（%）
	MedianROI        float64       // ROI 中位数（%）
}

// ErrNoTrades 还没有任何已结算交易
var ErrNoTrades = errors.New("no trades executed")

// Metrics 计算全量回测指标
func (b *EventBacktester) Metrics() (Metrics, error) {
	if len(b.trades) == 0 {
		return Metrics{}, ErrNoTrades
	}

	m := Metrics{
		InitialCapital: b.initialCapital,
		FinalCapital:   b.capital,
		TotalTrades:    b.totalTrades,
		WinningTrades:  b.winningTrades,
		LosingTrades:   b.totalTrades - b.winningTrades,
		TotalFees:      b.totalFees,
	}

	totalPnL := decimal.Zero
	nets := make([]float64, 0, len(b.trades))
	rois := make([]float64, 0, len(b.trades))
	var holdingSum time.Duration
	for _, tr := range b.trades {
		totalPnL = totalPnL.Add(tr.NetPnL)
		net, _ := tr.NetPnL.Float64()
		nets = append(nets, net)
		rois = append(rois, tr.ROI)
		holdingSum += tr.HoldingPeriod
	}
	m.TotalPnL = totalPnL

	if b.initialCapital.IsPositive() {
		m.TotalReturnPct, _ = b.capital.Sub(b.initialCapital).Div(b.initialCapital).Mul(decimal.NewFromInt(100)).Float64()
	}
	m.WinRate = float64(b.winningTrades) / float64(b.totalTrades) * 100

	// 盈亏分布
	var wins, losses []float64
	m.BestTrade = nets[0]
	m.WorstTrade = nets[0]
	for _, net := range nets {
		if net > 0 {
			wins = append(wins, net)
		} else if net < 0 {
			losses = append(losses, net)
		}
		if net > m.BestTrade {
			m.BestTrade = net
		}
		if net < m.WorstTrade {
			m.WorstTrade = net
		}
	}
	m.AvgWin = meanOf(wins)
	m.AvgLoss = meanOf(losses)
	if m.AvgLoss < 0 {
		m.WinLossRatio = math.Abs(m.AvgWin / m.AvgLoss)
	} else {
		m.WinLossRatio = math.Inf(1)
	}

	// 回撤：相对权益曲线运行峰值
	m.MaxDrawdown = maxDrawdown(b.equityCurve)

	// 逐笔 Sharpe（样本标准差）
	if std := stddev(nets); std > 0 {
		m.SharpeRatio = meanOf(nets) / std * math.Sqrt(252)
	}

	// 手续费
	totalFeesF, _ := b.totalFees.Float64()
	m.AvgFeePerTrade = totalFeesF / float64(b.totalTrades)
	if !totalPnL.IsZero() {
		absPnL, _ := totalPnL.Abs().Float64()
		m.FeePctOfPnL = totalFeesF / absPnL * 100
	}

	m.AvgHoldingPeriod = holdingSum / time.Duration(len(b.trades))
	m.AvgROI = meanOf(rois)
	m.MedianROI = median(rois)

	return m, nil
}

// maxDrawdown 权益曲线最大回撤（负数，0 表示无回撤）
func maxDrawdown(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	worst := 0.0
	runningMax, _ := curve[0].Equity.Float64()
	for _, p := range curve {
		eq, _ := p.Equity.Float64()
		if eq > runningMax {
			runningMax = eq
		}
		if runningMax > 0 {
			dd := (eq - runningMax) / runningMax
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev 样本标准差（n-1）
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := meanOf(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
