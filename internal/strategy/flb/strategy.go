// Package flb 实现 FLB（Favorite-Longshot Bias）信号评估。
//
// 预测市场存在系统性定价偏差：热门（高概率事件）被低估，冷门（低概率
// 事件）被高估。本包只做纯函数式的信号评估——输入盘口快照，输出交易
// 提案；下单、风控、结算都在引擎其余部分完成。
package flb

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/betbot/gokelly/internal/domain"
)

var log = logrus.WithField("strategy", ID)

// 概率估计的保守截断区间
const (
	maxEstimatedProb = 0.98
	minEstimatedProb = 0.02
)

// Evaluator FLB 信号评估器
type Evaluator struct {
	cfg Config
}

// NewEvaluator 创建评估器；配置先补默认值再校验
func NewEvaluator(cfg Config) (*Evaluator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{cfg: cfg}, nil
}

// Evaluate 评估一个市场快照是否存在 FLB 机会。
//
// 热门：YES 卖一价 >= favoriteThreshold ⇒ 买入 YES；
// 冷门：YES 卖一价 <= longshotThreshold ⇒ 反向买入 NO。
// 无机会或被过滤时返回 nil。
func (e *Evaluator) Evaluate(snapshot *domain.MarketSnapshot) *domain.TradeSignal {
	if snapshot == nil || snapshot.Ticker == "" {
		return nil
	}
	if e.excluded(snapshot.Ticker) {
		return nil
	}
	if snapshot.YesAsk <= 0 {
		return nil
	}

	yesPrice := snapshot.YesAsk / 100.0
	group := MarketGroupFor(snapshot.Ticker)

	switch {
	case yesPrice >= e.cfg.FavoriteThreshold:
		// 热门实际胜率高于市场隐含概率：保守按 +edgeAssumption 估计
		if snapshot.YesAskSize < e.cfg.MinLiquidity {
			return nil
		}
		estimatedProb := yesPrice + e.cfg.EdgeAssumption
		if estimatedProb > maxEstimatedProb {
			estimatedProb = maxEstimatedProb
		}
		edge := estimatedProb - yesPrice
		if edge < e.cfg.MinEdgeToTrade {
			return nil
		}
		sig := domain.NewFavoriteSignal(snapshot.Ticker, int(snapshot.YesAsk), edge, estimatedProb, group)
		log.Debugf("favorite signal: %s yesAsk=%.0f¢ edge=%.2f%%", snapshot.Ticker, snapshot.YesAsk, edge*100)
		return sig

	case yesPrice <= e.cfg.LongshotThreshold:
		// 冷门实际胜率低于隐含概率：买 NO 反向押注
		if snapshot.NoAskSize < e.cfg.MinLiquidity {
			return nil
		}
		yesTrueProb := yesPrice - e.cfg.EdgeAssumption
		if yesTrueProb < minEstimatedProb {
			yesTrueProb = minEstimatedProb
		}
		edge := yesPrice - yesTrueProb
		if edge < e.cfg.MinEdgeToTrade {
			return nil
		}

		noPrice := snapshot.NoAsk
		if noPrice <= 0 {
			noPrice = (1 - yesPrice) * 100
		}
		noWinProb := 1.0 - yesTrueProb

		sig := domain.NewLongshotSignal(snapshot.Ticker, int(noPrice), edge, noWinProb, group)
		log.Debugf("longshot signal: %s yesAsk=%.0f¢ edge=%.2f%%", snapshot.Ticker, snapshot.YesAsk, edge*100)
		return sig
	}

	return nil
}

// excluded 判断该市场是否命中排除系列
func (e *Evaluator) excluded(ticker string) bool {
	for _, series := range e.cfg.ExcludeSeries {
		if series != "" && strings.HasPrefix(ticker, series) {
			return true
		}
	}
	return false
}

// MarketGroupFor 按 ticker 前缀推断相关性分组。
//
// 简单启发式：同系列/同地区的市场大概率相关。生产环境应改用
// correlation 包的离线历史相关性聚类产出分组标签。
func MarketGroupFor(ticker string) string {
	parts := strings.Split(ticker, "-")
	if len(parts) < 2 {
		return ""
	}

	category := strings.ToLower(parts[0])
	location := strings.ToLower(parts[1])

	if category == "weather" {
		switch location {
		case "lax", "sfo", "san":
			return "weather_california"
		case "nyc", "jfk", "lga":
			return "weather_newyork"
		default:
			return "weather_" + location
		}
	}

	return category + "_general"
}
