package risk

// TradingState 交易系统状态。
//
// 转移规则：
//   ACTIVE → PAUSED     连败达到上限，冷却期过后在 CanTrade 内惰性自动恢复
//   ACTIVE → THROTTLED  最近 20 笔已实现 ROI 均值为负；无自动恢复（见 DESIGN.md）
//   *      → HALTED     任一熔断条件触发；只能通过 ManualResume 退出，绝不自清
type TradingState string

const (
	StateActive    TradingState = "active"    // 正常交易
	StateThrottled TradingState = "throttled" // 已限流（实现优势为负）
	StatePaused    TradingState = "paused"    // 连败暂停（带冷却自动恢复）
	StateHalted    TradingState = "halted"    // 已熔断（终态，需人工恢复）
)

// KillSwitchReason 熔断原因
type KillSwitchReason string

const (
	KillReasonDailyLossLimit    KillSwitchReason = "daily_loss_limit"   // 当日亏损超限
	KillReasonStreakLoss        KillSwitchReason = "streak_loss"        // 连败
	KillReasonSlippageExcessive KillSwitchReason = "slippage_excessive" // 滑点模式异常
	KillReasonErrorBurst        KillSwitchReason = "error_burst"        // 错误爆发
	KillReasonStaleBook         KillSwitchReason = "stale_book"         // 订单簿陈旧
	KillReasonNoFills           KillSwitchReason = "no_fills"           // 持续无成交
	KillReasonCorrelationBreach KillSwitchReason = "correlation_breach" // 相关性敞口违规
	KillReasonManual            KillSwitchReason = "manual"             // 人工熔断
)
