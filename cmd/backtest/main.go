// 事件驱动回测 CLI：加载历史快照/结算事件流，跑策略-风控-执行全链路，
// 输出绩效报告。
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/betbot/gokelly/internal/backtest"
	"github.com/betbot/gokelly/internal/domain"
	"github.com/betbot/gokelly/internal/risk"
	"github.com/betbot/gokelly/internal/strategy/flb"
	"github.com/betbot/gokelly/pkg/clock"
	"github.com/betbot/gokelly/pkg/config"
	"github.com/betbot/gokelly/pkg/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "config yaml path (optional)")
		dataPath   = flag.String("data", "data/events.csv", "historical events csv path")
		envPath    = flag.String("env", ".env", "dotenv file path (optional)")
	)
	flag.Parse()

	// .env 不存在不算错误
	_ = godotenv.Load(*envPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		fatal(err)
	}

	events, err := backtest.LoadEventsCSV(*dataPath)
	if err != nil {
		fatal(err)
	}
	logger.Infof("加载 %d 个回放事件：%s", len(events), *dataPath)

	initialCapital := decimal.NewFromFloat(cfg.InitialCapital)
	riskMgr, err := risk.NewManager(initialCapital, cfg.Risk, clock.Real{})
	if err != nil {
		fatal(err)
	}

	evaluator, err := flb.NewEvaluator(cfg.Strategy)
	if err != nil {
		fatal(err)
	}

	bt := backtest.NewEventBacktester(cfg.FeeSchedule(), cfg.SlippageModel(), cfg.LatencyModel(), initialCapital)
	bt.AttachRiskManager(riskMgr)

	for _, ev := range events {
		switch {
		case ev.Snapshot != nil:
			handleSnapshot(bt, riskMgr, evaluator, ev.Snapshot)
		case ev.Resolution != nil:
			bt.ResolveMarket(ev.Resolution.Ticker, ev.Resolution.Resolution, ev.Time)
		}
	}

	metrics, err := bt.Metrics()
	if err != nil {
		logger.Warnf("回测结束：%v", err)
		return
	}
	printReport(metrics, riskMgr.GetStatus())
}

// handleSnapshot 单个快照的完整决策路径：策略评估 → 风控闸门 →
// 仓位规模 → 模拟执行。
func handleSnapshot(bt *backtest.EventBacktester, riskMgr *risk.Manager, evaluator *flb.Evaluator, snap *domain.MarketSnapshot) {
	// 已有仓位的市场不再加仓
	if _, ok := bt.Position(snap.Ticker); ok {
		return
	}

	signal := evaluator.Evaluate(snap)
	if signal == nil {
		riskMgr.RecordScanResult(false)
		return
	}

	if ok, reason := riskMgr.CanTrade(); !ok {
		logger.Debugf("signal skipped (%s): %s", snap.Ticker, reason)
		riskMgr.RecordScanResult(false)
		return
	}

	contracts, reason := riskMgr.CalculatePositionSize(signal.Edge, signal.WinProbability, signal.PriceCents, signal.MarketGroup)
	if contracts <= 0 {
		logger.Debugf("signal not sized (%s): %s", snap.Ticker, reason)
		riskMgr.RecordScanResult(false)
		return
	}

	order := bt.SubmitOrder(snap.Timestamp, snap.Ticker, signal.Side, domain.ActionBuy, contracts, snap)
	if order == nil {
		riskMgr.RecordScanResult(false)
		return
	}

	riskMgr.AddPosition(snap.Ticker, signal.Side, order.FilledContracts, order.AvgFillPriceCents, signal.MarketGroup)
	riskMgr.RecordScanResult(true)
	logger.Infof("%s: %s %d@%.1f¢ (%s)", snap.Ticker, signal.Side, order.FilledContracts, order.AvgFillPriceCents, signal.Reason)
}

func printReport(m backtest.Metrics, status risk.Status) {
	fmt.Println()
	fmt.Println("================ 回测报告 ================")
	fmt.Printf("初始资金:        $%s\n", m.InitialCapital.StringFixed(2))
	fmt.Printf("最终资金:        $%s\n", m.FinalCapital.StringFixed(2))
	fmt.Printf("净盈亏:          $%s (%.2f%%)\n", m.TotalPnL.StringFixed(2), m.TotalReturnPct)
	fmt.Println("------------------------------------------")
	fmt.Printf("总笔数:          %d\n", m.TotalTrades)
	fmt.Printf("胜率:            %.1f%% (%d 胜 / %d 负)\n", m.WinRate, m.WinningTrades, m.LosingTrades)
	fmt.Printf("平均盈利:        $%.2f\n", m.AvgWin)
	fmt.Printf("平均亏损:        $%.2f\n", m.AvgLoss)
	fmt.Printf("盈亏比:          %.2f\n", m.WinLossRatio)
	fmt.Printf("最佳/最差单笔:   $%.2f / $%.2f\n", m.BestTrade, m.WorstTrade)
	fmt.Println("------------------------------------------")
	fmt.Printf("最大回撤:        %.2f%%\n", m.MaxDrawdown*100)
	fmt.Printf("Sharpe(逐笔):    %.2f\n", m.SharpeRatio)
	fmt.Printf("平均 ROI:        %.2f%% (中位数 %.2f%%)\n", m.AvgROI, m.MedianROI)
	fmt.Printf("平均持仓时长:    %s\n", m.AvgHoldingPeriod)
	fmt.Println("------------------------------------------")
	fmt.Printf("手续费合计:      $%s (单笔 $%.2f, 占盈亏 %.1f%%)\n", m.TotalFees.StringFixed(2), m.AvgFeePerTrade, m.FeePctOfPnL)
	fmt.Println("------------------------------------------")
	fmt.Printf("风控状态:        %s", status.TradingState)
	if status.KillSwitchReason != "" {
		fmt.Printf(" (%s)", status.KillSwitchReason)
	}
	fmt.Println()
	fmt.Printf("连败计数:        %d\n", status.ConsecutiveLosses)
	fmt.Println("==========================================")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
