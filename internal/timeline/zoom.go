// Package timeline 管理 24 小时时间轴的缩放和平移。
package timeline

import (
	"math"
	"time"

	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

const (
	MinZoom = 0.15
	MaxZoom = 4.0

	// Smoothing 每帧向目标缩放靠近的比例
	Smoothing = 0.15
	// Epsilon 当前缩放和目标相差小于该值时直接对齐并停止动画
	Epsilon = 0.001

	WheelInFactor  = 1.08
	WheelOutFactor = 0.92
	// PinchDamping 双指缩放的灵敏度折半
	PinchDamping = 0.5

	// FrameInterval 是动画的帧间隔
	FrameInterval = time.Second / 60
)

// Zoom 维护时间轴的缩放倍数和水平滚动位置
//
// 缩放请求只更新目标值，由调用方按帧调用 Step 向目标插值。
// 同一时刻最多只有一个动画循环：只有开始动画的请求返回 true。
// Zoom 不是并发安全的，由界面循环独占使用。
type Zoom struct {
	baseRate float64
	viewport float64

	zoom   float64
	target float64
	scroll float64

	// 锚点：缩放开始时手势中心在内容坐标系中的位置
	anchorRel  float64
	anchorZoom float64
	anchorX    float64

	animating     bool
	pinchDistance float64
}

// NewZoom 创建缩放控制器
// baseRate 是缩放为 1 时每分钟占的宽度，viewport 是可见区域宽度
func NewZoom(baseRate, viewport float64) *Zoom {
	z := &Zoom{
		baseRate: baseRate,
		zoom:     1,
		target:   1,
	}
	z.SetViewport(viewport)
	return z
}

func clampZoom(v float64) float64 {
	return math.Min(MaxZoom, math.Max(MinZoom, v))
}

// ZoomBy 以视口坐标 viewportX 为中心把目标缩放乘以 factor
// 返回 true 表示需要开始驱动帧
func (z *Zoom) ZoomBy(factor, viewportX float64) bool {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}
	next := clampZoom(z.target * factor)
	if next == z.target {
		return false
	}

	z.target = next
	z.anchorRel = z.scroll + viewportX
	z.anchorZoom = z.zoom
	z.anchorX = viewportX

	if z.animating {
		return false
	}
	z.animating = true
	return true
}

// Wheel 处理带修饰键的滚轮：向上放大，向下缩小
func (z *Zoom) Wheel(deltaY, viewportX float64) bool {
	switch {
	case deltaY < 0:
		return z.ZoomBy(WheelInFactor, viewportX)
	case deltaY > 0:
		return z.ZoomBy(WheelOutFactor, viewportX)
	}
	return false
}

// PinchStart 记录双指的初始距离
func (z *Zoom) PinchStart(distance float64) {
	z.pinchDistance = distance
}

// PinchMove 按双指距离变化缩放，变化量先减半
func (z *Zoom) PinchMove(distance, centerX float64) bool {
	if z.pinchDistance <= 0 || distance <= 0 {
		z.pinchDistance = distance
		return false
	}
	ratio := distance / z.pinchDistance
	z.pinchDistance = distance
	return z.ZoomBy(1+(ratio-1)*PinchDamping, centerX)
}

// Step 执行一帧动画，返回 false 表示动画结束
func (z *Zoom) Step() bool {
	if !z.animating {
		return false
	}

	diff := z.target - z.zoom
	if math.Abs(diff) < Epsilon {
		z.zoom = z.target
		z.followAnchor()
		z.animating = false
		return false
	}

	z.zoom += diff * Smoothing
	z.followAnchor()
	return true
}

// followAnchor 调整滚动位置，让锚点保持在手势中心下方
func (z *Zoom) followAnchor() {
	if z.anchorZoom <= 0 {
		return
	}
	z.setScroll(z.anchorRel*(z.zoom/z.anchorZoom) - z.anchorX)
}

// CenterOn 把给定分钟放到视口中间
func (z *Zoom) CenterOn(minute float64) {
	z.setScroll(math.Max(0, minute*z.PixelsPerMinute()-z.viewport/2))
}

// Pan 水平滚动 dx
func (z *Zoom) Pan(dx float64) {
	z.setScroll(z.scroll + dx)
}

// SetViewport 更新可见区域宽度，窗口大小变化时调用
func (z *Zoom) SetViewport(width float64) {
	z.viewport = math.Max(0, width)
	z.setScroll(z.scroll)
}

func (z *Zoom) setScroll(v float64) {
	limit := math.Max(0, z.ContentWidth()-z.viewport)
	z.scroll = math.Min(limit, math.Max(0, v))
}

func (z *Zoom) Zoom() float64 { return z.zoom }

func (z *Zoom) Target() float64 { return z.target }

func (z *Zoom) Scroll() float64 { return z.scroll }

func (z *Zoom) Animating() bool { return z.animating }

func (z *Zoom) Viewport() float64 { return z.viewport }

// PixelsPerMinute 是当前每分钟的宽度
func (z *Zoom) PixelsPerMinute() float64 {
	return z.baseRate * z.zoom
}

// ContentWidth 是整条 24 小时时间轴的宽度
func (z *Zoom) ContentWidth() float64 {
	return schedule.MinutesPerDay * z.PixelsPerMinute()
}

// XForMinute 返回分钟在视口中的横坐标，可能落在视口外
func (z *Zoom) XForMinute(minute float64) float64 {
	return minute*z.PixelsPerMinute() - z.scroll
}

// MinuteAt 返回视口横坐标 x 对应的分钟
func (z *Zoom) MinuteAt(x float64) float64 {
	ppm := z.PixelsPerMinute()
	if ppm == 0 {
		return 0
	}
	return (x + z.scroll) / ppm
}
