package backtest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/betbot/gokelly/internal/domain"
	"github.com/betbot/gokelly/internal/fees"
	"github.com/betbot/gokelly/internal/risk"
)

var log = logrus.WithField("component", "backtest")

// EquityPoint 权益曲线上的一个点
type EquityPoint struct {
	Time   time.Time       // 结算时间
	Equity decimal.Decimal // 当时资金（美元）
}

// EventBacktester 事件驱动回测器。
//
// 手续费精确的 P&L、真实成交建模（滑点/延迟/流动性）、权益曲线与
// 绩效指标。单线程同步：每次 SubmitOrder/ResolveMarket 相对内存状态
// 原子，不存在中途挂起的变更。
type EventBacktester struct {
	feeSchedule *fees.Schedule
	slippage    *SlippageModel
	latency     *LatencyModel

	initialCapital decimal.Decimal
	capital        decimal.Decimal

	positions   map[string]*domain.Position
	orders      []*domain.Order
	trades      []*domain.TradeRecord
	equityCurve []EquityPoint

	totalTrades   int
	winningTrades int
	totalFees     decimal.Decimal

	// 可选挂接：挂接后结算净盈亏通过 risk.Manager.ClosePosition 流转，
	// 成交滑点写入其监控窗口，保证资金/连败/熔断走同一条路径。
	riskMgr *risk.Manager
}

// NewEventBacktester 创建回测器。fee/slippage/latency 传 nil 时使用默认模型。
func NewEventBacktester(feeSchedule *fees.Schedule, slippage *SlippageModel, latency *LatencyModel, initialCapital decimal.Decimal) *EventBacktester {
	if feeSchedule == nil {
		feeSchedule = fees.Default()
	}
	if slippage == nil {
		slippage = NewSlippageModel()
	}
	if latency == nil {
		latency = NewLatencyModel(time.Now().UnixNano())
	}
	return &EventBacktester{
		feeSchedule:    feeSchedule,
		slippage:       slippage,
		latency:        latency,
		initialCapital: initialCapital,
		capital:        initialCapital,
		positions:      make(map[string]*domain.Position),
	}
}

// AttachRiskManager 挂接风控管理器（可选）
func (b *EventBacktester) AttachRiskManager(m *risk.Manager) {
	b.riskMgr = m
}

// SubmitOrder 提交订单并模拟真实执行。
//
// 流动性不足或买入成本超过可用资金时拒绝（返回 nil，不改变任何状态）。
// 买入扣减资金并开仓/加仓；卖出只记入资金。
func (b *EventBacktester) SubmitOrder(ts time.Time, ticker string, side domain.Side, action domain.Action, contracts int, snapshot *domain.MarketSnapshot) *domain.Order {
	submitLatency := b.latency.SubmitLatency()
	executionTime := ts.Add(submitLatency)

	fillPrice, slippageBps, filled := b.slippage.FillPrice(snapshot, side, action, contracts)
	if !filled {
		log.Warnf("order rejected: insufficient liquidity for %d contracts on %s", contracts, ticker)
		return nil
	}

	cost := decimal.NewFromFloat(fillPrice).Div(decimal.NewFromInt(100)).Mul(decimal.NewFromInt(int64(contracts)))
	if action == domain.ActionBuy && cost.GreaterThan(b.capital) {
		log.Warnf("order rejected: insufficient capital (need $%s, have $%s)", cost.StringFixed(2), b.capital.StringFixed(2))
		return nil
	}

	fillLatency := b.latency.FillLatency()
	order := &domain.Order{
		ID:                uuid.NewString(),
		Timestamp:         b.latency.SkewedTime(executionTime),
		Ticker:            ticker,
		Side:              side,
		Action:            action,
		Contracts:         contracts,
		PriceCents:        int(fillPrice),
		State:             domain.OrderStateFilled,
		FilledContracts:   contracts,
		AvgFillPriceCents: fillPrice,
		SubmitLatency:     submitLatency,
		FillLatency:       fillLatency,
	}

	if action == domain.ActionBuy {
		b.capital = b.capital.Sub(cost)
	} else {
		b.capital = b.capital.Add(cost)
	}

	b.orders = append(b.orders, order)

	if action == domain.ActionBuy {
		if pos, ok := b.positions[ticker]; ok {
			pos.AddFill(contracts, fillPrice)
		} else {
			b.positions[ticker] = &domain.Position{
				Ticker:          ticker,
				Side:            side,
				Contracts:       contracts,
				EntryPriceCents: fillPrice,
				EntryTime:       executionTime,
			}
		}
	}

	if b.riskMgr != nil {
		b.riskMgr.RecordSlippage(slippageBps)
	}

	return order
}

// ResolveMarket 结算市场并计算盈亏。
//
// 获胜仓位收回 $1×张数 的赔付再扣手续费；失败仓位成本已在买入时扣除，
// 无额外资金变动。结算后生成交易记录、追加权益曲线点、删除仓位。
func (b *EventBacktester) ResolveMarket(ticker string, resolution domain.Resolution, resolutionTime time.Time) *domain.TradeRecord {
	pos, ok := b.positions[ticker]
	if !ok {
		return nil
	}

	result := pos.Settle(resolution, b.feeSchedule)

	if result.Won {
		payout := decimal.NewFromInt(int64(pos.Contracts)) // $1/张
		b.capital = b.capital.Add(payout.Sub(result.Fee))
	}

	b.totalTrades++
	if result.NetPnL.IsPositive() {
		b.winningTrades++
	}
	b.totalFees = b.totalFees.Add(result.Fee)

	roi := 0.0
	if cost := pos.Cost(); cost.IsPositive() {
		roi, _ = result.NetPnL.Div(cost).Mul(decimal.NewFromInt(100)).Float64()
	}

	record := &domain.TradeRecord{
		Ticker:          ticker,
		Side:            pos.Side,
		Contracts:       pos.Contracts,
		EntryPriceCents: pos.EntryPriceCents,
		EntryTime:       pos.EntryTime,
		Resolution:      resolution,
		ResolutionTime:  resolutionTime,
		HoldingPeriod:   resolutionTime.Sub(pos.EntryTime),
		GrossPnL:        result.GrossPnL,
		NetPnL:          result.NetPnL,
		Fee:             result.Fee,
		ROI:             roi,
	}

	b.trades = append(b.trades, record)
	b.equityCurve = append(b.equityCurve, EquityPoint{Time: resolutionTime, Equity: b.capital})

	delete(b.positions, ticker)

	// 净盈亏经由风控管理器流转（资金/连败/熔断的唯一路径）
	if b.riskMgr != nil {
		b.riskMgr.ClosePosition(ticker, resolution, result.NetPnL)
	}

	return record
}

// Capital 当前资金（美元）
func (b *EventBacktester) Capital() decimal.Decimal {
	return b.capital
}

// Position 指定市场的未结算仓位
func (b *EventBacktester) Position(ticker string) (domain.Position, bool) {
	pos, ok := b.positions[ticker]
	if !ok {
		return domain.Position{}, false
	}
	return *pos, true
}

// Trades 全部已结算交易记录
func (b *EventBacktester) Trades() []*domain.TradeRecord {
	return b.trades
}

// Orders 全部已提交订单
func (b *EventBacktester) Orders() []*domain.Order {
	return b.orders
}

// EquityCurve 权益曲线（每次结算追加一个点）
func (b *EventBacktester) EquityCurve() []EquityPoint {
	return b.equityCurve
}
