package domain

import "time"

// OrderState 订单生命周期状态
type OrderState string

const (
	OrderStateNew      OrderState = "new"      // 已创建未提交
	OrderStateWorking  OrderState = "working"  // 已提交未成交
	OrderStatePartial  OrderState = "partial"  // 部分成交
	OrderStateFilled   OrderState = "filled"   // 全部成交
	OrderStateCanceled OrderState = "canceled" // 已撤单
	OrderStateRejected OrderState = "rejected" // 已拒绝
)

// Order 订单（含执行与延迟建模字段，回测与实盘共用）。
type Order struct {
	ID        string    // 订单 ID
	Timestamp time.Time // 提交时间（已含模拟提交延迟）
	Ticker    string    // 市场代码
	Side      Side      // yes/no
	Action    Action    // buy/sell
	Contracts int       // 委托张数
	PriceCents int      // 委托价格（分）

	// 执行跟踪
	State             OrderState // 当前状态
	FilledContracts   int        // 已成交张数
	AvgFillPriceCents float64    // 平均成交价（分，含滑点）

	// 延迟建模
	SubmitLatency time.Duration // 提交延迟
	FillLatency   time.Duration // 成交回报延迟
}

// IsFilled 订单是否全部成交
func (o *Order) IsFilled() bool {
	return o.State == OrderStateFilled
}
