package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/betbot/gokelly/internal/domain"
	"github.com/betbot/gokelly/pkg/clock"
)

var log = logrus.WithField("component", "risk")

// 滚动窗口容量
const (
	slippageWindowCap  = 100 // 滑点监控窗口
	errorWindowCap     = 100 // 错误监控窗口
	edgeWindowCap      = 50  // 已实现 ROI 窗口
	throttleMinSamples = 20  // 触发限流所需的最少样本数
	errorBurstMinCount = 5   // 错误爆发检测的最少样本数
)

// Manager 风控管理器。
//
// 职责：Kelly 仓位计算、相关性敞口限额、多路熔断、实时风险监控。
// 所有状态变更都在单一互斥锁下完成：Kelly 仓位和敞口上限要求对总敞口与
// 分组敞口的全局一致快照，部分/过期视图会悄悄破坏敞口不变式。
type Manager struct {
	mu sync.Mutex

	limits Limits
	clk    clock.Clock

	initialCapital decimal.Decimal // 初始资金（美元）
	currentCapital decimal.Decimal // 当前资金（美元），只在 ClosePosition 更新

	// 状态机
	state            TradingState
	killSwitchReason KillSwitchReason

	// 仓位跟踪
	positions    map[string]*domain.Position    // ticker -> 仓位
	marketGroups map[string]*domain.MarketGroup // groupID -> 分组

	// 每日跟踪（按日历日惰性重置，dayKey = YYYYMMDD）
	dailyPnL    decimal.Decimal
	dailyTrades int
	dayKey      int

	// 连败跟踪
	consecutiveLosses int
	lastLossTime      time.Time

	// 质量跟踪（滚动窗口）
	recentSlippage []slippageSample
	recentErrors   []errorSample
	recentFills    []bool

	// 业绩跟踪：最近已结算交易的 ROI
	realizedEdgeWindow []float64
}

type slippageSample struct {
	at  time.Time
	bps float64
}

type errorSample struct {
	at   time.Time
	kind string
}

// NewManager 创建风控管理器。limits 非法时返回错误（硬错误路径）。
func NewManager(initialCapital decimal.Decimal, limits Limits, clk clock.Clock) (*Manager, error) {
	if !initialCapital.IsPositive() {
		return nil, fmt.Errorf("initial capital must be positive: %s", initialCapital)
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.Real{}
	}

	m := &Manager{
		limits:         limits,
		clk:            clk,
		initialCapital: initialCapital,
		currentCapital: initialCapital,
		state:          StateActive,
		positions:      make(map[string]*domain.Position),
		marketGroups:   make(map[string]*domain.MarketGroup),
		dayKey:         dayKeyOf(clk.Now()),
	}

	log.Infof("risk manager initialized: capital=$%s kellyFraction=%.2f", initialCapital.StringFixed(2), limits.KellyFraction)
	return m, nil
}

// dayKeyOf 日历日键（YYYYMMDD）
func dayKeyOf(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// resetDailyLimitsLocked 跨日时重置每日计数器（恰好一次）。调用方必须持锁。
func (m *Manager) resetDailyLimitsLocked() {
	key := dayKeyOf(m.clk.Now())
	if key == m.dayKey {
		return
	}
	log.Info("resetting daily limits")
	m.dayKey = key
	m.dailyPnL = decimal.Zero
	m.dailyTrades = 0
}

// CanTrade 唯一权威的交易闸门。
//
// 返回 (允许, 原因)；原因只在拒绝时非空。调用方应在提案前调用，
// CalculatePositionSize 内部也会再防御性地调用一次。
func (m *Manager) CanTrade() (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canTradeLocked()
}

func (m *Manager) canTradeLocked() (bool, string) {
	m.resetDailyLimitsLocked()

	if m.state == StateHalted {
		return false, fmt.Sprintf("trading halted: %s", m.killSwitchReason)
	}

	if m.state == StatePaused {
		// 冷却期过后惰性解除暂停
		if !m.lastLossTime.IsZero() {
			pause := m.clk.Now().Sub(m.lastLossTime)
			if pause < time.Duration(m.limits.LossStreakPauseHours)*time.Hour {
				return false, fmt.Sprintf("paused due to loss streak (%d losses)", m.consecutiveLosses)
			}
			m.state = StateActive
			m.consecutiveLosses = 0
			log.Info("trading pause lifted")
		}
	}

	// 当日亏损（美元）。熔断只针对亏损，盈利不触发。
	if m.dailyPnL.IsNegative() {
		loss := m.dailyPnL.Neg()
		if loss.GreaterThanOrEqual(decimal.NewFromFloat(m.limits.MaxDailyLossDollars)) {
			m.killSwitchLocked(KillReasonDailyLossLimit)
			return false, fmt.Sprintf("daily loss limit reached: $%s", m.dailyPnL.StringFixed(2))
		}

		// 当日亏损（占资金比例）
		if m.currentCapital.IsPositive() {
			lossPct, _ := loss.Div(m.currentCapital).Float64()
			if lossPct >= m.limits.MaxDailyLossPct {
				m.killSwitchLocked(KillReasonDailyLossLimit)
				return false, fmt.Sprintf("daily loss %% limit reached: %.1f%%", lossPct*100)
			}
		}
	}

	if m.dailyTrades >= m.limits.MaxDailyTrades {
		return false, fmt.Sprintf("daily trade limit reached: %d", m.dailyTrades)
	}

	if m.errorBurstLocked() {
		m.killSwitchLocked(KillReasonErrorBurst)
		return false, "error burst detected"
	}

	if m.noFillsLocked() {
		m.killSwitchLocked(KillReasonNoFills)
		return false, "no fills detected in recent scans"
	}

	if m.state == StateThrottled {
		return false, "trading throttled due to poor realized edge"
	}

	return true, ""
}

// AddPosition 登记新仓位。同一 ticker 已有仓位时按张数加权加仓。
func (m *Manager) AddPosition(ticker string, side domain.Side, contracts int, entryPriceCents float64, marketGroup string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pos, ok := m.positions[ticker]; ok {
		pos.AddFill(contracts, entryPriceCents)
	} else {
		m.positions[ticker] = &domain.Position{
			Ticker:          ticker,
			Side:            side,
			Contracts:       contracts,
			EntryPriceCents: entryPriceCents,
			EntryTime:       m.clk.Now(),
			MarketGroup:     marketGroup,
		}
	}
	m.dailyTrades++

	if marketGroup != "" {
		g, ok := m.marketGroups[marketGroup]
		if !ok {
			g = domain.NewMarketGroup(marketGroup)
			m.marketGroups[marketGroup] = g
		}
		g.Add(ticker)
	}

	log.Infof("added position: %s %s %d@%.1f¢", ticker, side, contracts, entryPriceCents)
}

// ClosePosition 结算仓位并更新风险指标。
//
// 资金只在这里变动；连败/限流/分组成员同步在同一临界区完成。
func (m *Manager) ClosePosition(ticker string, resolution domain.Resolution, netPnL decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.positions[ticker]
	if !ok {
		log.Warnf("attempted to close non-existent position: %s", ticker)
		return
	}

	m.currentCapital = m.currentCapital.Add(netPnL)
	m.dailyPnL = m.dailyPnL.Add(netPnL)

	// 连败跟踪
	if netPnL.IsNegative() {
		m.consecutiveLosses++
		m.lastLossTime = m.clk.Now()

		if m.consecutiveLosses >= m.limits.MaxConsecutiveLosses && m.state != StateHalted {
			m.state = StatePaused
			log.Warnf("trading paused: %d consecutive losses", m.consecutiveLosses)
		}
	} else {
		m.consecutiveLosses = 0
	}

	// 已实现 ROI
	roi := 0.0
	if cost := pos.Cost(); cost.IsPositive() {
		roi, _ = netPnL.Div(cost).Float64()
	}
	m.realizedEdgeWindow = appendCapped(m.realizedEdgeWindow, roi, edgeWindowCap)

	// 实现优势持续为负 → 限流
	if len(m.realizedEdgeWindow) >= throttleMinSamples {
		avg := mean(m.realizedEdgeWindow)
		if avg < 0 && m.state != StateHalted {
			m.state = StateThrottled
			log.Warnf("trading throttled: negative realized edge (%.2f%%)", avg*100)
		}
	}

	// 同步分组成员
	if pos.MarketGroup != "" {
		if g, ok := m.marketGroups[pos.MarketGroup]; ok {
			g.Remove(ticker)
		}
	}

	delete(m.positions, ticker)

	log.Infof("closed position: %s resolution=%s pnl=$%s roi=%.2f%%", ticker, resolution, netPnL.StringFixed(2), roi*100)
}

// killSwitchLocked 触发熔断。调用方必须持锁。
func (m *Manager) killSwitchLocked(reason KillSwitchReason) {
	m.state = StateHalted
	m.killSwitchReason = reason
	log.Errorf("KILL SWITCH TRIGGERED: %s", reason)
}

// Halt 人工熔断
func (m *Manager) Halt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.killSwitchLocked(KillReasonManual)
}

// ManualResume 人工恢复交易。HALTED 的唯一出口，同时清空连败计数。
func (m *Manager) ManualResume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	log.Warn("trading manually resumed")
	m.state = StateActive
	m.killSwitchReason = ""
	m.consecutiveLosses = 0
}

// Position 返回指定市场未结算仓位的副本（值语义，调用方只读）。
func (m *Manager) Position(ticker string) (domain.Position, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.positions[ticker]
	if !ok {
		return domain.Position{}, false
	}
	return *pos, true
}

// OpenPositions 未结算仓位数量
func (m *Manager) OpenPositions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.positions)
}

// CurrentCapital 当前资金（美元）
func (m *Manager) CurrentCapital() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentCapital
}

// totalExposureLocked 全部未结算仓位的敞口之和（美元）
func (m *Manager) totalExposureLocked() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range m.positions {
		total = total.Add(pos.Cost())
	}
	return total
}

// groupExposureLocked 指定相关性分组的敞口之和（美元）
func (m *Manager) groupExposureLocked(groupID string) decimal.Decimal {
	g, ok := m.marketGroups[groupID]
	if !ok {
		return decimal.Zero
	}
	total := decimal.Zero
	for ticker, pos := range m.positions {
		if g.Contains(ticker) {
			total = total.Add(pos.Cost())
		}
	}
	return total
}

// appendCapped 追加并保持窗口容量（丢弃最老样本）
func appendCapped[T any](window []T, v T, capacity int) []T {
	window = append(window, v)
	if len(window) > capacity {
		window = window[len(window)-capacity:]
	}
	return window
}

// mean 算术平均
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
