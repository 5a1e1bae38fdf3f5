package clock

import (
	"sync"
	"time"
)

// Clock 可注入的时间源。
//
// 所有依赖墙钟的逻辑（每日计数重置、连败冷却、错误窗口、持仓时长）
// 必须通过同一个 Clock 读取时间，保证回测确定性、实盘跨进程重启一致。
type Clock interface {
	Now() time.Time
}

// Real 真实时间源
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Mock 可设置的模拟时间源（测试用）
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMock 创建模拟时间源，起始时间为 t
func NewMock(t time.Time) *Mock {
	return &Mock{now: t}
}

// Now 返回当前模拟时间
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set 设置模拟时间
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance 将模拟时间前进 d
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
