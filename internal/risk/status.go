package risk

import (
	"github.com/shopspring/decimal"
)

// Status 风控状态快照（供看板/CLI 消费）。
type Status struct {
	TradingState     TradingState     // 当前状态
	KillSwitchReason KillSwitchReason // 熔断原因（未熔断时为空）

	CurrentCapital   decimal.Decimal // 当前资金（美元）
	CapitalChangePct float64         // 资金变化（相对初始资金，%）
	TotalExposure    decimal.Decimal // 总敞口（美元）
	ExposurePct      float64         // 敞口占资金比例（%）
	ActivePositions  int             // 未结算仓位数

	DailyPnL    decimal.Decimal // 当日盈亏（美元）
	DailyTrades int             // 当日交易笔数

	ConsecutiveLosses int     // 当前连败次数
	RealizedEdgeAvg   float64 // 已实现 ROI 窗口均值
	RecentSlippageAvg float64 // 近期滑点均值（基点）
}

// GetStatus 当前风控状态快照
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	totalExposure := m.totalExposureLocked()

	exposurePct := 0.0
	if m.currentCapital.IsPositive() {
		exposurePct, _ = totalExposure.Div(m.currentCapital).Mul(decimal.NewFromInt(100)).Float64()
	}

	changePct := 0.0
	if m.initialCapital.IsPositive() {
		changePct, _ = m.currentCapital.Sub(m.initialCapital).Div(m.initialCapital).Mul(decimal.NewFromInt(100)).Float64()
	}

	slippage := make([]float64, 0, len(m.recentSlippage))
	for _, s := range m.recentSlippage {
		slippage = append(slippage, s.bps)
	}

	return Status{
		TradingState:     m.state,
		KillSwitchReason: m.killSwitchReason,

		CurrentCapital:   m.currentCapital,
		CapitalChangePct: changePct,
		TotalExposure:    totalExposure,
		ExposurePct:      exposurePct,
		ActivePositions:  len(m.positions),

		DailyPnL:    m.dailyPnL,
		DailyTrades: m.dailyTrades,

		ConsecutiveLosses: m.consecutiveLosses,
		RealizedEdgeAvg:   mean(m.realizedEdgeWindow),
		RecentSlippageAvg: mean(slippage),
	}
}
