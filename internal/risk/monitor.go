package risk

import (
	"fmt"
	"time"
)

// RecordSlippage 登记一次成交滑点（基点）。
//
// 单次超标只告警；当滚动窗口内超标占比达到 30% 时视为系统性滑点
// 模式异常，触发熔断。
func (m *Manager) RecordSlippage(slippageBps float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recentSlippage = appendCapped(m.recentSlippage, slippageSample{at: m.clk.Now(), bps: slippageBps}, slippageWindowCap)

	if slippageBps <= m.limits.MaxSlippageBps {
		return
	}
	log.Warnf("excessive slippage: %.1f bps", slippageBps)

	high := 0
	for _, s := range m.recentSlippage {
		if s.bps > m.limits.MaxSlippageBps {
			high++
		}
	}
	if float64(high)/float64(len(m.recentSlippage)) >= 0.3 {
		m.killSwitchLocked(KillReasonSlippageExcessive)
	}
}

// RecordError 登记一次错误（下单失败、API 异常等），供错误爆发检测
func (m *Manager) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recentErrors = appendCapped(m.recentErrors, errorSample{at: m.clk.Now(), kind: kind}, errorWindowCap)
}

// RecordScanResult 登记一轮市场扫描是否有成交，供无成交检测
func (m *Manager) RecordScanResult(hadFills bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recentFills = appendCapped(m.recentFills, hadFills, m.limits.MinFillsLookbackScans)
}

// errorBurstLocked 最近 1 小时错误数达到上限
func (m *Manager) errorBurstLocked() bool {
	if len(m.recentErrors) < errorBurstMinCount {
		return false
	}

	cutoff := m.clk.Now().Add(-time.Hour)
	count := 0
	for _, e := range m.recentErrors {
		if !e.at.Before(cutoff) {
			count++
		}
	}
	return count >= m.limits.MaxErrorRatePerHour
}

// noFillsLocked 回看窗口已满且成交次数不足
func (m *Manager) noFillsLocked() bool {
	if len(m.recentFills) < m.limits.MinFillsLookbackScans {
		return false
	}

	fills := 0
	for _, had := range m.recentFills {
		if had {
			fills++
		}
	}
	return fills < m.limits.MinFillsPerScan
}

// CheckMarketQuality 市场质量过滤：价差过宽或订单簿陈旧时拒绝（非致命）。
func (m *Manager) CheckMarketQuality(spreadBps float64, lastUpdate time.Time) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if spreadBps > m.limits.MaxSpreadBps {
		return false, fmt.Sprintf("spread too wide: %.1f bps", spreadBps)
	}

	age := m.clk.Now().Sub(lastUpdate)
	if age > time.Duration(m.limits.MaxStaleBookSeconds)*time.Second {
		return false, fmt.Sprintf("stale book: %.1fs old", age.Seconds())
	}

	return true, ""
}
