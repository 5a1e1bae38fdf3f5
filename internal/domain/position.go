package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeCalculator 结算手续费计算接口（由 fees.Schedule 实现）。
type FeeCalculator interface {
	// Fee 计算结算手续费（美元）。只有获胜仓位收费。
	Fee(entryPriceCents float64, contracts int, won bool) decimal.Decimal
}

// Position 仓位领域模型。
//
// 不变式：每个 ticker 最多一个未结算仓位；加仓通过 AddFill 按张数加权
// 重新平均入场价。资金（美元）一律用 decimal，避免上千次结算后的浮点漂移。
type Position struct {
	Ticker          string    // 市场代码
	Side            Side      // 持仓方向（yes/no）
	Contracts       int       // 合约张数（>=0）
	EntryPriceCents float64   // 入场均价（分，加仓后可能为小数）
	EntryTime       time.Time // 入场时间
	MarketGroup     string    // 相关性分组标签（可选，入场时由调用方提供）
}

// Cost 持仓成本（美元）= 入场价 × 张数
func (p *Position) Cost() decimal.Decimal {
	return centsToDollars(p.EntryPriceCents).Mul(decimal.NewFromInt(int64(p.Contracts)))
}

// AddFill 加仓：按张数加权重新计算入场均价
func (p *Position) AddFill(contracts int, priceCents float64) {
	if contracts <= 0 {
		return
	}
	total := p.Contracts + contracts
	p.EntryPriceCents = (p.EntryPriceCents*float64(p.Contracts) + priceCents*float64(contracts)) / float64(total)
	p.Contracts = total
}

// SettleResult 结算结果
type SettleResult struct {
	Won      bool            // 是否获胜
	GrossPnL decimal.Decimal // 毛盈亏（美元）
	NetPnL   decimal.Decimal // 净盈亏（美元，已扣手续费）
	Fee      decimal.Decimal // 手续费（美元，输家恒为 0）
}

// Settle 按市场结算结果计算盈亏。
//
// 获胜：每张利润 = (100 - 入场价)/100，毛利 = 利润 × 张数，净利 = 毛利 - 手续费。
// 失败：毛亏 = 净亏 = -(入场价/100) × 张数，手续费为 0。
// 只对赢家收费是本引擎最核心的经济规则，必须精确保持。
func (p *Position) Settle(resolution Resolution, fees FeeCalculator) SettleResult {
	won := resolution.Wins(p.Side)
	contracts := decimal.NewFromInt(int64(p.Contracts))

	if won {
		profitPerContract := decimal.NewFromInt(100).Sub(decimal.NewFromFloat(p.EntryPriceCents)).Div(decimal.NewFromInt(100))
		gross := profitPerContract.Mul(contracts)
		fee := decimal.Zero
		if fees != nil {
			fee = fees.Fee(p.EntryPriceCents, p.Contracts, true)
		}
		return SettleResult{
			Won:      true,
			GrossPnL: gross,
			NetPnL:   gross.Sub(fee),
			Fee:      fee,
		}
	}

	loss := centsToDollars(p.EntryPriceCents).Mul(contracts).Neg()
	return SettleResult{
		Won:      false,
		GrossPnL: loss,
		NetPnL:   loss,
		Fee:      decimal.Zero,
	}
}

// centsToDollars 分 → 美元
func centsToDollars(cents float64) decimal.Decimal {
	return decimal.NewFromFloat(cents).Div(decimal.NewFromInt(100))
}
