package clock

import "time"

// Clock 时钟接口
// 活性窗口、退款回看等都依赖墙钟比较，注入时钟后测试可以模拟时间流逝
type Clock interface {
	Now() time.Time
}

// Real 系统时钟
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed 固定时钟，测试用
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time { return f.T }

// Advance 向前拨动时钟
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }
