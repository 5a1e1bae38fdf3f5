// Package config 应用配置：默认值 ← YAML 文件 ← 环境变量，三层覆盖。
// 环境变量前缀 GOKELLY_，例如 GOKELLY_INITIAL_CAPITAL。
package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/betbot/gokelly/internal/backtest"
	"github.com/betbot/gokelly/internal/fees"
	"github.com/betbot/gokelly/internal/risk"
	"github.com/betbot/gokelly/internal/strategy/flb"
	"github.com/betbot/gokelly/pkg/logger"
)

// envPrefix 环境变量前缀
const envPrefix = "gokelly"

// FeesConfig 手续费配置
type FeesConfig struct {
	ProfitFeeRate float64 `yaml:"profit_fee_rate" envconfig:"PROFIT_FEE_RATE"` // 利润费率（0.07 = 7%）
	MinFee        float64 `yaml:"min_fee" envconfig:"MIN_FEE"`                 // 单笔最低手续费（美元，0=不启用）
	MaxFee        float64 `yaml:"max_fee" envconfig:"MAX_FEE"`                 // 单笔最高手续费（美元，0=不启用）
}

// SlippageConfig 滑点模型配置
type SlippageConfig struct {
	BaseSlippageBps  float64 `yaml:"base_slippage_bps" envconfig:"BASE_SLIPPAGE_BPS"`   // 基础滑点（基点）
	SizeImpactFactor float64 `yaml:"size_impact_factor" envconfig:"SIZE_IMPACT_FACTOR"` // 订单大小冲击系数
	SizeFloor        int     `yaml:"size_floor" envconfig:"SIZE_FLOOR"`                 // size_ratio 分母下限
}

// LatencyConfig 延迟模型配置（毫秒）
type LatencyConfig struct {
	SubmitLatencyMeanMs float64 `yaml:"submit_latency_mean_ms" envconfig:"SUBMIT_LATENCY_MEAN_MS"` // 提交延迟均值
	SubmitLatencyStdMs  float64 `yaml:"submit_latency_std_ms" envconfig:"SUBMIT_LATENCY_STD_MS"`   // 提交延迟标准差
	FillLatencyMeanMs   float64 `yaml:"fill_latency_mean_ms" envconfig:"FILL_LATENCY_MEAN_MS"`     // 成交回报延迟均值
	FillLatencyStdMs    float64 `yaml:"fill_latency_std_ms" envconfig:"FILL_LATENCY_STD_MS"`       // 成交回报延迟标准差
	ClockSkewMs         float64 `yaml:"clock_skew_ms" envconfig:"CLOCK_SKEW_MS"`                   // 固定时钟偏移
	Seed                int64   `yaml:"seed" envconfig:"LATENCY_SEED"`                             // 随机种子（可复现）
}

// Config 应用配置
type Config struct {
	InitialCapital float64        `yaml:"initial_capital" envconfig:"INITIAL_CAPITAL"` // 初始资金（美元）
	Risk           risk.Limits    `yaml:"risk"`                                        // 风控参数
	Fees           FeesConfig     `yaml:"fees"`                                        // 手续费
	Slippage       SlippageConfig `yaml:"slippage"`                                    // 滑点模型
	Latency        LatencyConfig  `yaml:"latency"`                                     // 延迟模型
	Strategy       flb.Config     `yaml:"strategy"`                                    // 策略参数
	Log            logger.Config  `yaml:"log"`                                         // 日志
}

// Default 全默认配置
func Default() *Config {
	slip := backtest.NewSlippageModel()
	lat := backtest.NewLatencyModel(0)
	cfg := &Config{
		InitialCapital: 10000,
		Risk:           risk.DefaultLimits(),
		Fees: FeesConfig{
			ProfitFeeRate: 0.07,
		},
		Slippage: SlippageConfig{
			BaseSlippageBps:  slip.BaseSlippageBps,
			SizeImpactFactor: slip.SizeImpactFactor,
			SizeFloor:        slip.SizeFloor,
		},
		Latency: LatencyConfig{
			SubmitLatencyMeanMs: float64(lat.SubmitLatencyMean) / float64(time.Millisecond),
			SubmitLatencyStdMs:  float64(lat.SubmitLatencyStd) / float64(time.Millisecond),
			FillLatencyMeanMs:   float64(lat.FillLatencyMean) / float64(time.Millisecond),
			FillLatencyStdMs:    float64(lat.FillLatencyStd) / float64(time.Millisecond),
			ClockSkewMs:         float64(lat.ClockSkew) / float64(time.Millisecond),
			Seed:                42,
		},
		Log: logger.Config{Level: "info"},
	}
	cfg.Strategy.ApplyDefaults()
	return cfg
}

// Load 加载配置：默认值 → YAML（path 为空则跳过）→ 环境变量覆盖
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "process env overrides")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.InitialCapital <= 0 {
		return errors.New("initial_capital must be positive")
	}
	if err := c.Risk.Validate(); err != nil {
		return errors.Wrap(err, "risk")
	}
	if c.Fees.ProfitFeeRate < 0 || c.Fees.ProfitFeeRate >= 1 {
		return errors.New("fees.profit_fee_rate must be in [0, 1)")
	}
	if c.Fees.MinFee > 0 && c.Fees.MaxFee > 0 && c.Fees.MinFee > c.Fees.MaxFee {
		return errors.New("fees.min_fee must not exceed fees.max_fee")
	}
	if c.Slippage.BaseSlippageBps < 0 {
		return errors.New("slippage.base_slippage_bps must be non-negative")
	}
	if c.Latency.SubmitLatencyMeanMs < 0 || c.Latency.FillLatencyMeanMs < 0 {
		return errors.New("latency means must be non-negative")
	}
	if err := c.Strategy.Validate(); err != nil {
		return errors.Wrap(err, "strategy")
	}
	return nil
}

// FeeSchedule 构造手续费规则
func (c *Config) FeeSchedule() *fees.Schedule {
	s := fees.NewSchedule(decimal.NewFromFloat(c.Fees.ProfitFeeRate))
	if c.Fees.MinFee > 0 {
		s.MinFee = decimal.NewFromFloat(c.Fees.MinFee)
	}
	if c.Fees.MaxFee > 0 {
		s.MaxFee = decimal.NewFromFloat(c.Fees.MaxFee)
	}
	return s
}

// SlippageModel 构造滑点模型
func (c *Config) SlippageModel() *backtest.SlippageModel {
	return &backtest.SlippageModel{
		BaseSlippageBps:  c.Slippage.BaseSlippageBps,
		SizeImpactFactor: c.Slippage.SizeImpactFactor,
		SizeFloor:        c.Slippage.SizeFloor,
	}
}

// LatencyModel 构造延迟模型
func (c *Config) LatencyModel() *backtest.LatencyModel {
	m := backtest.NewLatencyModel(c.Latency.Seed)
	m.SubmitLatencyMean = msToDuration(c.Latency.SubmitLatencyMeanMs)
	m.SubmitLatencyStd = msToDuration(c.Latency.SubmitLatencyStdMs)
	m.FillLatencyMean = msToDuration(c.Latency.FillLatencyMeanMs)
	m.FillLatencyStd = msToDuration(c.Latency.FillLatencyStdMs)
	m.ClockSkew = msToDuration(c.Latency.ClockSkewMs)
	return m
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
