package domain

import "time"

// MarketSnapshot 某一时刻的市场盘口快照（价格单位：分）。
//
// 行情来源（交易所 WS/REST 或历史数据集）负责填充；核心引擎只读。
type MarketSnapshot struct {
	Timestamp time.Time // 快照时间
	Ticker    string    // 市场代码

	YesBid float64 // YES 买一价（分）
	YesAsk float64 // YES 卖一价（分）
	NoBid  float64 // NO 买一价（分）
	NoAsk  float64 // NO 卖一价（分）

	YesBidSize int // YES 买一挂单量（张）
	YesAskSize int // YES 卖一挂单量（张）
	NoBidSize  int // NO 买一挂单量（张）
	NoAskSize  int // NO 卖一挂单量（张）
}

// YesMid YES 中间价（分）
func (s *MarketSnapshot) YesMid() float64 {
	return (s.YesBid + s.YesAsk) / 2.0
}

// NoMid NO 中间价（分）
func (s *MarketSnapshot) NoMid() float64 {
	return (s.NoBid + s.NoAsk) / 2.0
}

// YesSpreadBps YES 买卖价差（基点）
func (s *MarketSnapshot) YesSpreadBps() float64 {
	mid := s.YesMid()
	if mid <= 0 {
		return 0
	}
	return (s.YesAsk - s.YesBid) / mid * 10000
}

// Quote 按方向和动作选择对应的盘口报价和挂单量。
// 买单吃 ask，卖单吃 bid。
func (s *MarketSnapshot) Quote(side Side, action Action) (price float64, size int) {
	if action == ActionBuy {
		if side == SideYes {
			return s.YesAsk, s.YesAskSize
		}
		return s.NoAsk, s.NoAskSize
	}
	if side == SideYes {
		return s.YesBid, s.YesBidSize
	}
	return s.NoBid, s.NoBidSize
}
