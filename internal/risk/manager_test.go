package risk

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betbot/gokelly/internal/domain"
)

// loseOnce 开仓后立即按失败结算，净亏 lossDollars
func loseOnce(m *Manager, ticker string, lossDollars float64) {
	m.AddPosition(ticker, domain.SideYes, 10, 50, "")
	m.ClosePosition(ticker, domain.ResolutionNo, decimal.NewFromFloat(-lossDollars))
}

func TestLossStreak_PausesTrading(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	for i := 0; i < 5; i++ {
		loseOnce(m, "weather-lax-high-85", 1)
	}

	status := m.GetStatus()
	if status.TradingState != StatePaused {
		t.Fatalf("state: got %s, want %s", status.TradingState, StatePaused)
	}
	if status.ConsecutiveLosses != 5 {
		t.Fatalf("consecutive losses: got %d, want 5", status.ConsecutiveLosses)
	}

	ok, reason := m.CanTrade()
	if ok {
		t.Fatalf("trading must be paused")
	}
	if !strings.Contains(reason, "loss streak") {
		t.Fatalf("unexpected reason: %s", reason)
	}
}

func TestLossStreak_AutoResumeAfterCooldown(t *testing.T) {
	m, clk := newTestManager(t, 10000, DefaultLimits())

	for i := 0; i < 5; i++ {
		loseOnce(m, "weather-lax-high-85", 1)
	}
	if ok, _ := m.CanTrade(); ok {
		t.Fatalf("trading must be paused")
	}

	// 冷却期（4 小时）结束后惰性恢复，连败计数清零
	clk.Advance(4*time.Hour + time.Minute)

	ok, reason := m.CanTrade()
	if !ok {
		t.Fatalf("trading must resume after cooldown: %s", reason)
	}
	if got := m.GetStatus(); got.TradingState != StateActive || got.ConsecutiveLosses != 0 {
		t.Fatalf("post-resume status: state=%s losses=%d", got.TradingState, got.ConsecutiveLosses)
	}
}

func TestLossStreak_WinResetsCounter(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	for i := 0; i < 4; i++ {
		loseOnce(m, "weather-lax-high-85", 1)
	}
	m.AddPosition("weather-nyc-high-90", domain.SideYes, 10, 50, "")
	m.ClosePosition("weather-nyc-high-90", domain.ResolutionYes, decimal.NewFromFloat(2))

	if got := m.GetStatus().ConsecutiveLosses; got != 0 {
		t.Fatalf("win must reset loss streak: got %d", got)
	}
	if ok, _ := m.CanTrade(); !ok {
		t.Fatalf("trading must stay active")
	}
}

func TestDailyLossLimit_TriggersKillSwitch(t *testing.T) {
	m, _ := newTestManager(t, 100000, DefaultLimits())

	// 单日净亏 $600 > 上限 $500
	loseOnce(m, "weather-lax-high-85", 600)

	ok, reason := m.CanTrade()
	if ok {
		t.Fatalf("kill switch must engage")
	}
	if !strings.Contains(reason, "daily loss limit") {
		t.Fatalf("unexpected reason: %s", reason)
	}

	status := m.GetStatus()
	if status.TradingState != StateHalted {
		t.Fatalf("state: got %s, want %s", status.TradingState, StateHalted)
	}
	if status.KillSwitchReason != KillReasonDailyLossLimit {
		t.Fatalf("reason: got %s, want %s", status.KillSwitchReason, KillReasonDailyLossLimit)
	}
}

func TestDailyProfit_NeverTriggersLossLimit(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	// 单日大幅盈利绝不触发「亏损」熔断
	m.AddPosition("weather-lax-high-85", domain.SideYes, 10, 50, "")
	m.ClosePosition("weather-lax-high-85", domain.ResolutionYes, decimal.NewFromFloat(900))

	if ok, reason := m.CanTrade(); !ok {
		t.Fatalf("profit blocked trading: %s", reason)
	}
}

func TestHalt_PersistsAcrossDailyReset(t *testing.T) {
	m, clk := newTestManager(t, 100000, DefaultLimits())

	loseOnce(m, "weather-lax-high-85", 600)
	if ok, _ := m.CanTrade(); ok {
		t.Fatalf("kill switch must engage")
	}

	// 跨日：每日计数器重置，但 HALTED 不自动恢复
	clk.Advance(24 * time.Hour)
	if ok, _ := m.CanTrade(); ok {
		t.Fatalf("halt must survive the daily reset")
	}

	// 唯一出口：人工恢复
	m.ManualResume()
	if ok, reason := m.CanTrade(); !ok {
		t.Fatalf("manual resume failed: %s", reason)
	}
	if got := m.GetStatus().TradingState; got != StateActive {
		t.Fatalf("state after resume: got %s, want %s", got, StateActive)
	}
}

func TestManualHalt(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	m.Halt()

	ok, reason := m.CanTrade()
	if ok {
		t.Fatalf("manual halt ignored")
	}
	if !strings.Contains(reason, string(KillReasonManual)) {
		t.Fatalf("unexpected reason: %s", reason)
	}
}

func TestDailyTradeLimit_ResetsNextDay(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxDailyTrades = 2
	m, clk := newTestManager(t, 10000, limits)

	m.AddPosition("a", domain.SideYes, 10, 50, "")
	m.AddPosition("b", domain.SideYes, 10, 50, "")

	ok, reason := m.CanTrade()
	if ok {
		t.Fatalf("daily trade limit ignored")
	}
	if !strings.Contains(reason, "daily trade limit") {
		t.Fatalf("unexpected reason: %s", reason)
	}

	clk.Advance(24 * time.Hour)
	if ok, reason := m.CanTrade(); !ok {
		t.Fatalf("daily counters must reset next day: %s", reason)
	}
}

func TestDailyReset_ClearsCountersKeepsCapital(t *testing.T) {
	m, clk := newTestManager(t, 10000, DefaultLimits())

	loseOnce(m, "weather-lax-high-85", 100)

	status := m.GetStatus()
	if !status.DailyPnL.Equal(decimal.NewFromInt(-100)) || status.DailyTrades != 1 {
		t.Fatalf("pre-reset: pnl=%s trades=%d", status.DailyPnL, status.DailyTrades)
	}

	// 跨日惰性重置：每日计数器清零，资金不受影响
	clk.Advance(24 * time.Hour)
	if ok, reason := m.CanTrade(); !ok {
		t.Fatalf("CanTrade after reset: %s", reason)
	}

	status = m.GetStatus()
	if !status.DailyPnL.IsZero() || status.DailyTrades != 0 {
		t.Fatalf("post-reset: pnl=%s trades=%d", status.DailyPnL, status.DailyTrades)
	}
	if !status.CurrentCapital.Equal(decimal.NewFromInt(9900)) {
		t.Fatalf("capital must survive the reset: %s", status.CurrentCapital)
	}
}

func TestNegativeRealizedEdge_Throttles(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	// 20 笔已结算交易的平均 ROI 为负 → 限流
	for i := 0; i < 20; i++ {
		loseOnce(m, "weather-lax-high-85", 0.5)
	}

	if got := m.GetStatus().TradingState; got != StateThrottled {
		t.Fatalf("state: got %s, want %s", got, StateThrottled)
	}

	ok, reason := m.CanTrade()
	if ok {
		t.Fatalf("throttled manager must not trade")
	}
	if !strings.Contains(reason, "throttled") {
		t.Fatalf("unexpected reason: %s", reason)
	}

	// 限流没有自动出口，人工恢复是唯一路径
	m.ManualResume()
	if ok, reason := m.CanTrade(); !ok {
		t.Fatalf("manual resume failed: %s", reason)
	}
}

func TestClosePosition_UpdatesCapital(t *testing.T) {
	m, _ := newTestManager(t, 1000, DefaultLimits())

	m.AddPosition("weather-lax-high-85", domain.SideYes, 208, 40, "")
	m.ClosePosition("weather-lax-high-85", domain.ResolutionYes, decimal.NewFromFloat(116.064))

	want := decimal.NewFromFloat(1116.064)
	if got := m.CurrentCapital(); !got.Equal(want) {
		t.Fatalf("capital: got %s, want %s", got, want)
	}
	if m.OpenPositions() != 0 {
		t.Fatalf("position must be removed after close")
	}
}

func TestAddPosition_AveragesSameTicker(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	m.AddPosition("t", domain.SideYes, 100, 40, "")
	m.AddPosition("t", domain.SideYes, 50, 46, "")

	pos, ok := m.Position("t")
	if !ok {
		t.Fatalf("position missing")
	}
	if pos.Contracts != 150 || pos.EntryPriceCents != 42 {
		t.Fatalf("averaging: got %d@%f, want 150@42", pos.Contracts, pos.EntryPriceCents)
	}
}
