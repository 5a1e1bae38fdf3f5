package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CalculatePositionSize 分数 Kelly 仓位计算。
//
// 检查按固定顺序执行，第一个不通过的检查立即返回 0 张和对应原因，
// 保证拒绝原因确定可复现：
//  1. CanTrade 闸门
//  2. 最小优势
//  3. 价格区间 (0,100)
//  4. Kelly 公式 f = (p·b - q) / b，b = (100-price)/price
//  5. 乘 Kelly 系数并换算美元，截断到 [minKellyBet, maxKellyBet]×资金
//  6. 单仓上限
//  7. 相关性分组剩余额度
//  8. 总敞口剩余额度
//  9. 换算张数（向下取整），不足 1 张拒绝
//
// 步骤 6-8 的每次截断只会降低金额，绝不抬高。
func (m *Manager) CalculatePositionSize(edge, winProbability float64, priceCents int, marketGroup string) (int, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 防御性闸门：调用方应已检查过，这里必须再检查一次
	if ok, reason := m.canTradeLocked(); !ok {
		return 0, reason
	}

	if edge < m.limits.MinEdgeToTrade {
		return 0, fmt.Sprintf("edge too small: %.2f%% < %.2f%%", edge*100, m.limits.MinEdgeToTrade*100)
	}

	if priceCents <= 0 || priceCents >= 100 {
		return 0, "invalid price"
	}

	// Kelly: f = (p*b - q) / b，其中 q = 1-p，b 为赔率
	odds := float64(100-priceCents) / float64(priceCents)
	kelly := (winProbability*odds - (1 - winProbability)) / odds

	fractional := kelly * m.limits.KellyFraction

	// 换算美元并截断到下注区间
	size := m.currentCapital.Mul(decimal.NewFromFloat(fractional))
	minSize := m.currentCapital.Mul(decimal.NewFromFloat(m.limits.MinKellyBet))
	maxSize := m.currentCapital.Mul(decimal.NewFromFloat(m.limits.MaxKellyBet))
	if size.LessThan(minSize) {
		size = minSize
	}
	if size.GreaterThan(maxSize) {
		size = maxSize
	}

	// 单仓上限
	maxSingle := m.currentCapital.Mul(decimal.NewFromFloat(m.limits.MaxSinglePositionPct))
	if size.GreaterThan(maxSingle) {
		size = maxSingle
	}

	// 相关性分组剩余额度
	if marketGroup != "" {
		if _, ok := m.marketGroups[marketGroup]; ok {
			groupExposure := m.groupExposureLocked(marketGroup)
			maxGroup := m.currentCapital.Mul(decimal.NewFromFloat(m.limits.MaxCorrelatedGroupPct))

			if groupExposure.Add(size).GreaterThan(maxGroup) {
				size = decimal.Max(decimal.Zero, maxGroup.Sub(groupExposure))
				if size.IsZero() {
					return 0, fmt.Sprintf("correlation group limit reached: %s", marketGroup)
				}
			}
		}
	}

	// 总敞口剩余额度
	totalExposure := m.totalExposureLocked()
	maxTotal := m.currentCapital.Mul(decimal.NewFromFloat(m.limits.MaxTotalExposurePct))
	if totalExposure.Add(size).GreaterThan(maxTotal) {
		size = decimal.Max(decimal.Zero, maxTotal.Sub(totalExposure))
		if size.IsZero() {
			return 0, "total exposure limit reached"
		}
	}

	// 换算张数（向下取整）
	priceDollars := decimal.NewFromInt(int64(priceCents)).Div(decimal.NewFromInt(100))
	contracts := int(size.Div(priceDollars).IntPart())

	if contracts < 1 {
		return 0, "position size too small for 1 contract"
	}

	return contracts, "OK"
}
