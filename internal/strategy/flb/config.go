package flb

import (
	"fmt"
)

const ID = "flb"

// Config FLB（热门-冷门偏差）策略配置。
type Config struct {
	// ===== 价格阈值（小数，0.90 = 90分） =====
	FavoriteThreshold float64 `yaml:"favoriteThreshold" json:"favoriteThreshold"` // 热门阈值：YES 卖一价达到即买入 YES
	LongshotThreshold float64 `yaml:"longshotThreshold" json:"longshotThreshold"` // 冷门阈值：YES 卖一价低于即反向买入 NO

	// ===== 优势假设 =====
	EdgeAssumption float64 `yaml:"edgeAssumption" json:"edgeAssumption"` // 保守优势假设（文献口径约 3%）
	MinEdgeToTrade float64 `yaml:"minEdgeToTrade" json:"minEdgeToTrade"` // 最小入场优势

	// ===== 市场过滤 =====
	MinLiquidity  int      `yaml:"minLiquidity" json:"minLiquidity"`   // 盘口最小挂单量（张）
	ExcludeSeries []string `yaml:"excludeSeries" json:"excludeSeries"` // 排除的系列前缀
}

// ApplyDefaults 填充默认配置
func (c *Config) ApplyDefaults() {
	if c.FavoriteThreshold == 0 {
		c.FavoriteThreshold = 0.90
	}
	if c.LongshotThreshold == 0 {
		c.LongshotThreshold = 0.10
	}
	if c.EdgeAssumption == 0 {
		c.EdgeAssumption = 0.03
	}
	if c.MinEdgeToTrade == 0 {
		c.MinEdgeToTrade = 0.02
	}
	if c.MinLiquidity == 0 {
		c.MinLiquidity = 50
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.FavoriteThreshold <= 0.5 || c.FavoriteThreshold >= 1 {
		return fmt.Errorf("favoriteThreshold must be in (0.5,1): %f", c.FavoriteThreshold)
	}
	if c.LongshotThreshold <= 0 || c.LongshotThreshold >= 0.5 {
		return fmt.Errorf("longshotThreshold must be in (0,0.5): %f", c.LongshotThreshold)
	}
	if c.EdgeAssumption < 0 || c.EdgeAssumption > 0.5 {
		return fmt.Errorf("edgeAssumption out of range: %f", c.EdgeAssumption)
	}
	if c.MinEdgeToTrade < 0 {
		return fmt.Errorf("minEdgeToTrade must be non-negative: %f", c.MinEdgeToTrade)
	}
	return nil
}
