package risk

import (
	"strings"
	"testing"
	"testing/quick"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betbot/gokelly/internal/domain"
	"github.com/betbot/gokelly/pkg/clock"
)

func newTestManager(t *testing.T, capital float64, limits Limits) (*Manager, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	m, err := NewManager(decimal.NewFromFloat(capital), limits, clk)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, clk
}

func TestCalculatePositionSize_KellyBaseCase(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	// price=50¢ → b=1；p=0.6 → f=(0.6−0.4)/1=0.2；×0.25=0.05 → $500 → 1000 张
	contracts, reason := m.CalculatePositionSize(0.10, 0.6, 50, "")
	if reason != "OK" {
		t.Fatalf("unexpected reason: %s", reason)
	}
	if contracts != 1000 {
		t.Fatalf("contracts: got %d, want 1000", contracts)
	}
}

func TestCalculatePositionSize_EdgeGate(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	contracts, reason := m.CalculatePositionSize(0.01, 0.6, 50, "")
	if contracts != 0 {
		t.Fatalf("contracts: got %d, want 0", contracts)
	}
	if !strings.HasPrefix(reason, "edge too small") {
		t.Fatalf("unexpected reason: %s", reason)
	}
}

func TestCalculatePositionSize_InvalidPrice(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	for _, price := range []int{0, -5, 100, 150} {
		contracts, reason := m.CalculatePositionSize(0.10, 0.6, price, "")
		if contracts != 0 || reason != "invalid price" {
			t.Fatalf("price %d: got (%d, %s)", price, contracts, reason)
		}
	}
}

func TestCalculatePositionSize_MinBetFloor(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	// p=0.51 → f=0.02 → ×0.25=0.005 → $50 < 最低下注 $100 → 抬到 $100 → 200 张
	contracts, reason := m.CalculatePositionSize(0.05, 0.51, 50, "")
	if reason != "OK" {
		t.Fatalf("unexpected reason: %s", reason)
	}
	if contracts != 200 {
		t.Fatalf("contracts: got %d, want 200", contracts)
	}
}

func TestCalculatePositionSize_SinglePositionCapWins(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	// p=0.9 → f=0.8 → ×0.25=0.2 → $2000 → Kelly 上限压到 $1000 → 单仓上限再压到 $500
	contracts, reason := m.CalculatePositionSize(0.20, 0.9, 50, "")
	if reason != "OK" {
		t.Fatalf("unexpected reason: %s", reason)
	}
	if contracts != 1000 {
		t.Fatalf("contracts: got %d, want 1000 ($500 @50¢)", contracts)
	}
}

func TestCalculatePositionSize_GroupLimit(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	// 分组敞口已满：3000 张 @50¢ = $1500 = 上限 0.15×$10000
	m.AddPosition("weather-lax-high-85", domain.SideYes, 3000, 50, "weather_california")

	contracts, reason := m.CalculatePositionSize(0.10, 0.6, 50, "weather_california")
	if contracts != 0 {
		t.Fatalf("contracts: got %d, want 0", contracts)
	}
	if !strings.HasPrefix(reason, "correlation group limit reached") {
		t.Fatalf("unexpected reason: %s", reason)
	}

	// 无分组标签的同样提案不受影响
	contracts, reason = m.CalculatePositionSize(0.10, 0.6, 50, "")
	if reason != "OK" || contracts == 0 {
		t.Fatalf("ungrouped proposal blocked: (%d, %s)", contracts, reason)
	}
}

func TestCalculatePositionSize_GroupHeadroomShrinksSize(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	// 分组剩余额度 $300：$1500 上限 − 2400 张 @50¢ = $1200
	m.AddPosition("weather-lax-high-85", domain.SideYes, 2400, 50, "weather_california")

	// Kelly 提议 $500，被压到剩余 $300 → 600 张
	contracts, reason := m.CalculatePositionSize(0.10, 0.6, 50, "weather_california")
	if reason != "OK" {
		t.Fatalf("unexpected reason: %s", reason)
	}
	if contracts != 600 {
		t.Fatalf("contracts: got %d, want 600", contracts)
	}
}

func TestCalculatePositionSize_TotalExposureLimit(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	// 总敞口已满：4000 张 @50¢ = $2000 = 上限 0.20×$10000
	m.AddPosition("weather-lax-high-85", domain.SideYes, 4000, 50, "")

	contracts, reason := m.CalculatePositionSize(0.10, 0.6, 50, "")
	if contracts != 0 {
		t.Fatalf("contracts: got %d, want 0", contracts)
	}
	if reason != "total exposure limit reached" {
		t.Fatalf("unexpected reason: %s", reason)
	}
}

func TestCalculatePositionSize_TooSmallForOneContract(t *testing.T) {
	limits := DefaultLimits()
	m, _ := newTestManager(t, 50, limits)

	// 资金 $50，最低下注 $0.50，价格 99¢ → 0 张
	contracts, reason := m.CalculatePositionSize(0.05, 0.51, 99, "")
	if contracts != 0 {
		t.Fatalf("contracts: got %d, want 0", contracts)
	}
	if reason != "position size too small for 1 contract" {
		t.Fatalf("unexpected reason: %s", reason)
	}
}

// **Property: 任意输入下，仓位成本绝不超过单仓上限**
func TestProperty_PositionCostNeverExceedsCaps(t *testing.T) {
	m, _ := newTestManager(t, 10000, DefaultLimits())

	property := func(pRaw, edgeRaw float64, priceRaw int) bool {
		// 输入域约束
		p := 0.01 + mod1(pRaw)*0.98
		edge := 0.03 + mod1(edgeRaw)*0.5
		price := 1 + abs(priceRaw)%98

		contracts, _ := m.CalculatePositionSize(edge, p, price, "")
		if contracts < 0 {
			return false
		}
		// 成本 = 张数 × 价格（美元）≤ 单仓上限 5% × $10000
		cost := float64(contracts) * float64(price) / 100.0
		return cost <= 500.0000001
	}
	if err := quick.Check(property, &quick.Config{MaxCount: 500}); err != nil {
		t.Fatalf("property violated: %v", err)
	}
}

func mod1(f float64) float64 {
	if f < 0 {
		f = -f
	}
	for f >= 1 {
		f /= 10
	}
	return f
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
