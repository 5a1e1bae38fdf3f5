package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord 已结算交易记录（供指标/监控消费）。
type TradeRecord struct {
	Ticker          string          // 市场代码
	Side            Side            // 持仓方向
	Contracts       int             // 合约张数
	EntryPriceCents float64         // 入场均价（分）
	EntryTime       time.Time       // 入场时间
	Resolution      Resolution      // 结算结果
	ResolutionTime  time.Time       // 结算时间
	HoldingPeriod   time.Duration   // 持仓时长
	GrossPnL        decimal.Decimal // 毛盈亏（美元）
	NetPnL          decimal.Decimal // 净盈亏（美元）
	Fee             decimal.Decimal // 手续费（美元）
	ROI             float64         // 净盈亏 / 入场成本（%）
}
