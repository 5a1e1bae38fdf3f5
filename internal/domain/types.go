package domain

// Side 合约方向（二元市场的 YES/NO）
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// IsValid 验证方向是否有效
func (s Side) IsValid() bool {
	return s == SideYes || s == SideNo
}

// Opposite 返回对侧方向
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// Action 订单动作
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// IsValid 验证动作是否有效
func (a Action) IsValid() bool {
	return a == ActionBuy || a == ActionSell
}

// Resolution 市场结算结果（以哪一侧获胜结算）
type Resolution string

const (
	ResolutionYes Resolution = "yes"
	ResolutionNo  Resolution = "no"
)

// IsValid 验证结算结果是否有效
func (r Resolution) IsValid() bool {
	return r == ResolutionYes || r == ResolutionNo
}

// Wins 判断某一侧持仓在该结算结果下是否获胜
func (r Resolution) Wins(side Side) bool {
	return string(r) == string(side)
}
