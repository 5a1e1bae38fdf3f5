package risk

import "fmt"

// Limits 风控限额配置。
type Limits struct {
	// ===== 资金限额 =====
	MaxTotalExposurePct   float64 `yaml:"maxTotalExposurePct" envconfig:"MAX_TOTAL_EXPOSURE_PCT"`     // 总敞口上限（占资金比例）
	MaxSinglePositionPct  float64 `yaml:"maxSinglePositionPct" envconfig:"MAX_SINGLE_POSITION_PCT"`   // 单仓上限（占资金比例）
	MaxCorrelatedGroupPct float64 `yaml:"maxCorrelatedGroupPct" envconfig:"MAX_CORRELATED_GROUP_PCT"` // 相关性分组敞口上限（占资金比例）

	// ===== Kelly 参数 =====
	KellyFraction float64 `yaml:"kellyFraction" envconfig:"KELLY_FRACTION"` // Kelly 系数（0.25 = 四分之一 Kelly）
	MinKellyBet   float64 `yaml:"minKellyBet"`                              // 最小下注（占资金比例）
	MaxKellyBet   float64 `yaml:"maxKellyBet"`                              // 最大下注（占资金比例）

	// ===== 每日限额 =====
	MaxDailyLossDollars float64 `yaml:"maxDailyLossDollars" envconfig:"MAX_DAILY_LOSS_DOLLARS"` // 当日最大亏损（美元）
	MaxDailyLossPct     float64 `yaml:"maxDailyLossPct"`                                        // 当日最大亏损（占资金比例）
	MaxDailyTrades      int     `yaml:"maxDailyTrades"`                                         // 当日最大交易笔数

	// ===== 连败限制 =====
	MaxConsecutiveLosses int `yaml:"maxConsecutiveLosses"` // 最大连败次数（达到后暂停）
	LossStreakPauseHours int `yaml:"lossStreakPauseHours"` // 连败暂停时长（小时）

	// ===== 质量阈值 =====
	MaxSlippageBps float64 `yaml:"maxSlippageBps"` // 最大可接受滑点（基点）
	MaxSpreadBps   float64 `yaml:"maxSpreadBps"`   // 最大可接受价差（基点）
	MinEdgeToTrade float64 `yaml:"minEdgeToTrade"` // 最小交易优势

	// ===== 系统健康 =====
	MaxErrorRatePerHour   int `yaml:"maxErrorRatePerHour"`   // 每小时错误上限（错误爆发熔断）
	MaxStaleBookSeconds   int `yaml:"maxStaleBookSeconds"`   // 订单簿最大陈旧时间（秒）
	MinFillsPerScan       int `yaml:"minFillsPerScan"`       // 回看窗口内最少成交数
	MinFillsLookbackScans int `yaml:"minFillsLookbackScans"` // 无成交检测回看的扫描次数

	// ===== 相关性 =====
	CorrelationThreshold   float64 `yaml:"correlationThreshold"`   // 离线聚类分组阈值（|相关系数|）
	MaxCorrelatedPositions int     `yaml:"maxCorrelatedPositions"` // 单分组最大持仓数
}

// DefaultLimits 默认风控限额
func DefaultLimits() Limits {
	return Limits{
		MaxTotalExposurePct:   0.20,
		MaxSinglePositionPct:  0.05,
		MaxCorrelatedGroupPct: 0.15,

		KellyFraction: 0.25,
		MinKellyBet:   0.01,
		MaxKellyBet:   0.10,

		MaxDailyLossDollars: 500.0,
		MaxDailyLossPct:     0.05,
		MaxDailyTrades:      50,

		MaxConsecutiveLosses: 5,
		LossStreakPauseHours: 4,

		MaxSlippageBps: 50.0,
		MaxSpreadBps:   200.0,
		MinEdgeToTrade: 0.03,

		MaxErrorRatePerHour:   10,
		MaxStaleBookSeconds:   30,
		MinFillsPerScan:       1,
		MinFillsLookbackScans: 20,

		CorrelationThreshold:   0.5,
		MaxCorrelatedPositions: 3,
	}
}

// Validate 校验限额配置。配置错误是唯一的硬错误路径，直接返回 error。
func (l Limits) Validate() error {
	if l.KellyFraction <= 0 || l.KellyFraction > 1 {
		return fmt.Errorf("kellyFraction must be in (0,1]: %f", l.KellyFraction)
	}
	if l.MinKellyBet < 0 || l.MaxKellyBet <= 0 || l.MinKellyBet > l.MaxKellyBet {
		return fmt.Errorf("kelly bet bounds invalid: min=%f max=%f", l.MinKellyBet, l.MaxKellyBet)
	}
	checkPct := func(name string, v float64) error {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be in (0,1]: %f", name, v)
		}
		return nil
	}
	if err := checkPct("maxTotalExposurePct", l.MaxTotalExposurePct); err != nil {
		return err
	}
	if err := checkPct("maxSinglePositionPct", l.MaxSinglePositionPct); err != nil {
		return err
	}
	if err := checkPct("maxCorrelatedGroupPct", l.MaxCorrelatedGroupPct); err != nil {
		return err
	}
	if err := checkPct("maxDailyLossPct", l.MaxDailyLossPct); err != nil {
		return err
	}
	if l.MaxDailyLossDollars <= 0 {
		return fmt.Errorf("maxDailyLossDollars must be positive: %f", l.MaxDailyLossDollars)
	}
	if l.MaxDailyTrades <= 0 {
		return fmt.Errorf("maxDailyTrades must be positive: %d", l.MaxDailyTrades)
	}
	if l.MaxConsecutiveLosses <= 0 {
		return fmt.Errorf("maxConsecutiveLosses must be positive: %d", l.MaxConsecutiveLosses)
	}
	if l.LossStreakPauseHours <= 0 {
		return fmt.Errorf("lossStreakPauseHours must be positive: %d", l.LossStreakPauseHours)
	}
	if l.MinEdgeToTrade < 0 {
		return fmt.Errorf("minEdgeToTrade must be non-negative: %f", l.MinEdgeToTrade)
	}
	if l.MinFillsLookbackScans <= 0 {
		return fmt.Errorf("minFillsLookbackScans must be positive: %d", l.MinFillsLookbackScans)
	}
	return nil
}
