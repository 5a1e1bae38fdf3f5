package domain

import "fmt"

// SignalKind 信号类型标签
type SignalKind string

const (
	// SignalFavorite 热门信号：高概率事件被低估，买入 YES
	SignalFavorite SignalKind = "favorite"
	// SignalLongshot 冷门信号：低概率事件被高估，反向买入 NO
	SignalLongshot SignalKind = "longshot"
)

// TradeSignal 策略层产出的交易提案。
//
// 这是进入风控闸门的唯一入口形状：{ticker, side, edge, win_probability, price}，
// 外加可选的相关性分组标签。用带标签的结构体取代松散的 map 形状信号。
type TradeSignal struct {
	Kind           SignalKind // favorite / longshot
	Ticker         string     // 市场代码
	Side           Side       // 建仓方向
	PriceCents     int        // 建议入场价（分）
	Edge           float64    // 预估优势（小数，0.05 = 5%）
	WinProbability float64    // 预估获胜概率
	MarketGroup    string     // 相关性分组标签（可选）
	Reason         string     // 信号说明（人类可读）
}

// NewFavoriteSignal 创建热门信号（买入 YES）
func NewFavoriteSignal(ticker string, priceCents int, edge, winProb float64, group string) *TradeSignal {
	return &TradeSignal{
		Kind:           SignalFavorite,
		Ticker:         ticker,
		Side:           SideYes,
		PriceCents:     priceCents,
		Edge:           edge,
		WinProbability: winProb,
		MarketGroup:    group,
		Reason:         fmt.Sprintf("favorite at %d¢, edge=%.2f%%", priceCents, edge*100),
	}
}

// NewLongshotSignal 创建冷门信号（买入 NO 反向押注）
func NewLongshotSignal(ticker string, priceCents int, edge, winProb float64, group string) *TradeSignal {
	return &TradeSignal{
		Kind:           SignalLongshot,
		Ticker:         ticker,
		Side:           SideNo,
		PriceCents:     priceCents,
		Edge:           edge,
		WinProbability: winProb,
		MarketGroup:    group,
		Reason:         fmt.Sprintf("longshot fade at %d¢, edge=%.2f%%", priceCents, edge*100),
	}
}

// Validate 校验信号字段
func (s *TradeSignal) Validate() error {
	if s.Ticker == "" {
		return fmt.Errorf("signal ticker is empty")
	}
	if !s.Side.IsValid() {
		return fmt.Errorf("signal side invalid: %s", s.Side)
	}
	if s.PriceCents <= 0 || s.PriceCents >= 100 {
		return fmt.Errorf("signal price out of range: %d", s.PriceCents)
	}
	if s.WinProbability < 0 || s.WinProbability > 1 {
		return fmt.Errorf("signal win probability out of range: %f", s.WinProbability)
	}
	return nil
}
