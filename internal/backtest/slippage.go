package backtest

import (
	"github.com/betbot/gokelly/internal/domain"
)

// SlippageModel 按订单大小和盘口流动性模拟真实成交价。
type SlippageModel struct {
	BaseSlippageBps  float64 // 基础滑点（基点）
	SizeImpactFactor float64 // 订单大小对滑点的冲击系数
	SizeFloor        int     // size_ratio 分母下限（挂单量过小时避免爆炸）
}

// NewSlippageModel 创建滑点模型（默认参数：5bps 基础滑点，0.1 冲击系数）
func NewSlippageModel() *SlippageModel {
	return &SlippageModel{
		BaseSlippageBps:  5.0,
		SizeImpactFactor: 0.1,
		SizeFloor:        100,
	}
}

// FillPrice 计算含滑点的成交价（分）。
//
// 返回 (成交价, 实际滑点bps, 是否成交)。订单超过盘口挂单量 2 倍时
// 判定流动性不足，拒绝成交且不改变任何状态。
//
// 滑点只朝不利方向作用：买单成交价只会高于报价，卖单只会低于报价；
// 最终价格截断到合法概率区间 [1,99] 分。
func (s *SlippageModel) FillPrice(snapshot *domain.MarketSnapshot, side domain.Side, action domain.Action, contracts int) (fillPriceCents, slippageBps float64, filled bool) {
	quotePrice, quoteSize := snapshot.Quote(side, action)

	// 流动性检查
	if quoteSize > 0 && contracts > quoteSize*2 {
		return quotePrice, 0, false
	}

	// size_ratio = 张数 / max(挂单量, 下限)；挂单量未知时取保守值 0.5
	sizeRatio := 0.5
	if quoteSize > 0 {
		den := quoteSize
		if den < s.SizeFloor {
			den = s.SizeFloor
		}
		sizeRatio = float64(contracts) / float64(den)
	}

	slippageBps = s.BaseSlippageBps + sizeRatio*s.SizeImpactFactor*10000

	if action == domain.ActionBuy {
		fillPriceCents = quotePrice * (1 + slippageBps/10000)
	} else {
		fillPriceCents = quotePrice * (1 - slippageBps/10000)
	}

	// 合法概率区间
	if fillPriceCents < 1.0 {
		fillPriceCents = 1.0
	}
	if fillPriceCents > 99.0 {
		fillPriceCents = 99.0
	}

	return fillPriceCents, slippageBps, true
}
