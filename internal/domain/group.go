package domain

// MarketGroup 相关性市场分组。
//
// 标签在入场时由调用方指定（例如按主题/地区），运行时不做在线发现；
// 分组本身只维护成员集合，敞口统计由 risk.Manager 基于成员仓位汇总。
type MarketGroup struct {
	GroupID string              // 分组 ID
	Tickers map[string]struct{} // 成员市场集合
}

// NewMarketGroup 创建空分组
func NewMarketGroup(groupID string) *MarketGroup {
	return &MarketGroup{
		GroupID: groupID,
		Tickers: make(map[string]struct{}),
	}
}

// Add 添加成员市场
func (g *MarketGroup) Add(ticker string) {
	g.Tickers[ticker] = struct{}{}
}

// Remove 移除成员市场（结算时调用）
func (g *MarketGroup) Remove(ticker string) {
	delete(g.Tickers, ticker)
}

// Contains 判断市场是否属于该分组
func (g *MarketGroup) Contains(ticker string) bool {
	_, ok := g.Tickers[ticker]
	return ok
}

// Size 分组成员数量
func (g *MarketGroup) Size() int {
	return len(g.Tickers)
}
