package fees

import (
	"github.com/shopspring/decimal"
)

// Schedule 交易所手续费规则。
//
// 关键规则：
// - 只有获胜合约收费，失败合约零费
// - 费率按利润的百分比计（默认 7%）
// 这一不对称（只收赢家）费用结构会实质性改变最优下注规模，
// 与对称费用模型不可互换。
type Schedule struct {
	ProfitFeeRate decimal.Decimal // 利润费率（0.07 = 7%）
	MinFee        decimal.Decimal // 单笔最低手续费（美元，<=0 表示不启用）
	MaxFee        decimal.Decimal // 单笔最高手续费（美元，<=0 表示不启用）
}

// DefaultProfitFeeRate 默认利润费率
var DefaultProfitFeeRate = decimal.NewFromFloat(0.07)

// NewSchedule 创建手续费规则；rate 为利润费率
func NewSchedule(rate decimal.Decimal) *Schedule {
	return &Schedule{ProfitFeeRate: rate}
}

// Default 默认手续费规则（7% 利润费，无上下限）
func Default() *Schedule {
	return NewSchedule(DefaultProfitFeeRate)
}

// Fee 计算结算手续费（美元）。
//
// 未获胜返回 0。获胜时：
//   每张利润 = (100 - 入场价)/100
//   手续费 = 每张利润 × 张数 × 费率，再按配置的 [MinFee, MaxFee] 截断。
func (s *Schedule) Fee(entryPriceCents float64, contracts int, won bool) decimal.Decimal {
	if !won || contracts <= 0 {
		return decimal.Zero
	}

	profitPerContract := decimal.NewFromInt(100).
		Sub(decimal.NewFromFloat(entryPriceCents)).
		Div(decimal.NewFromInt(100))
	totalProfit := profitPerContract.Mul(decimal.NewFromInt(int64(contracts)))

	fee := totalProfit.Mul(s.ProfitFeeRate)

	if s.MinFee.IsPositive() && fee.LessThan(s.MinFee) {
		fee = s.MinFee
	}
	if s.MaxFee.IsPositive() && fee.GreaterThan(s.MaxFee) {
		fee = s.MaxFee
	}
	return fee
}
