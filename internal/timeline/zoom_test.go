package timeline_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zacy-Sokach/DayFlow/internal/timeline"
)

// settle 一直驱动帧直到动画结束，返回帧数
func settle(t *testing.T, z *timeline.Zoom) int {
	t.Helper()
	frames := 0
	for z.Step() {
		frames++
		require.Less(t, frames, 10000, "animation never settles")
	}
	return frames
}

func TestZoomClamped(t *testing.T) {
	tests := map[string]struct {
		factors []float64
		exp     float64
	}{
		"huge factor":      {factors: []float64{1e9}, exp: timeline.MaxZoom},
		"tiny factor":      {factors: []float64{1e-9}, exp: timeline.MinZoom},
		"many wheel steps": {factors: repeat(timeline.WheelInFactor, 200), exp: timeline.MaxZoom},
		"back and forth":   {factors: []float64{1e9, 1e-9, 2}, exp: timeline.MinZoom * 2},
		"invalid factors":  {factors: []float64{0, -3, math.NaN(), math.Inf(1)}, exp: 1},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			z := timeline.NewZoom(1, 400)
			for _, f := range test.factors {
				z.ZoomBy(f, 200)
				assert.GreaterOrEqual(t, z.Target(), timeline.MinZoom)
				assert.LessOrEqual(t, z.Target(), timeline.MaxZoom)
				z.Step()
				assert.GreaterOrEqual(t, z.Zoom(), timeline.MinZoom)
				assert.LessOrEqual(t, z.Zoom(), timeline.MaxZoom)
			}
			settle(t, z)
			assert.InDelta(t, test.exp, z.Zoom(), 1e-9)
			assert.Equal(t, z.Target(), z.Zoom())
		})
	}
}

func repeat(f float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f
	}
	return out
}

func TestZoomDeltasAccumulate(t *testing.T) {
	small := timeline.NewZoom(1, 400)
	for i := 0; i < 5; i++ {
		small.ZoomBy(1.1, 100)
		small.Step()
	}

	combined := timeline.NewZoom(1, 400)
	combined.ZoomBy(math.Pow(1.1, 5), 100)

	assert.InDelta(t, combined.Target(), small.Target(), 1e-9)

	settle(t, small)
	settle(t, combined)
	assert.InDelta(t, combined.Zoom(), small.Zoom(), 1e-9)
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	z := timeline.NewZoom(1, 400)
	z.CenterOn(720)
	require.Equal(t, 520.0, z.Scroll())

	const x = 100.0
	anchor := z.MinuteAt(x)
	require.InDelta(t, 620.0, anchor, 1e-9)

	require.True(t, z.ZoomBy(2, x))
	for z.Step() {
		assert.InDelta(t, anchor, z.MinuteAt(x), 1e-6)
	}
	assert.Equal(t, 2.0, z.Zoom())
	assert.InDelta(t, anchor, z.MinuteAt(x), 1e-6)
	assert.InDelta(t, 1140.0, z.Scroll(), 1e-6)
}

func TestZoomRetargetKeepsNewAnchor(t *testing.T) {
	z := timeline.NewZoom(1, 400)
	z.CenterOn(720)

	require.True(t, z.ZoomBy(2, 100))
	z.Step()
	z.Step()

	// 动画中途换一个中心继续放大
	anchor := z.MinuteAt(300)
	assert.False(t, z.ZoomBy(1.2, 300))
	settle(t, z)
	assert.InDelta(t, 2.4, z.Zoom(), 1e-9)
	assert.InDelta(t, anchor, z.MinuteAt(300), 1e-6)
}

func TestZoomSingleFlight(t *testing.T) {
	z := timeline.NewZoom(1, 400)

	assert.True(t, z.ZoomBy(1.5, 0))
	assert.True(t, z.Animating())
	assert.False(t, z.ZoomBy(1.5, 0))
	assert.False(t, z.Wheel(-1, 0))

	frames := settle(t, z)
	assert.Greater(t, frames, 0)
	assert.False(t, z.Animating())
	assert.False(t, z.Step())

	assert.True(t, z.ZoomBy(0.5, 0))
}

func TestZoomIgnoresNoChange(t *testing.T) {
	z := timeline.NewZoom(1, 400)
	z.ZoomBy(1e9, 0)
	settle(t, z)

	assert.False(t, z.ZoomBy(2, 0))
	assert.False(t, z.Animating())
	assert.False(t, z.ZoomBy(1, 0))
}

func TestWheel(t *testing.T) {
	up := timeline.NewZoom(1, 400)
	assert.True(t, up.Wheel(-3, 0))
	assert.InDelta(t, timeline.WheelInFactor, up.Target(), 1e-12)

	down := timeline.NewZoom(1, 400)
	assert.True(t, down.Wheel(3, 0))
	assert.InDelta(t, timeline.WheelOutFactor, down.Target(), 1e-12)

	none := timeline.NewZoom(1, 400)
	assert.False(t, none.Wheel(0, 0))
	assert.Equal(t, 1.0, none.Target())
}

func TestPinchDamped(t *testing.T) {
	z := timeline.NewZoom(1, 400)

	assert.False(t, z.PinchMove(120, 0), "no pinch started")
	z.PinchStart(100)
	assert.True(t, z.PinchMove(150, 200))
	assert.InDelta(t, 1.25, z.Target(), 1e-12)

	// 距离变化按上一次距离计算
	z.PinchMove(75, 200)
	assert.InDelta(t, 1.25*0.75, z.Target(), 1e-12)
}

func TestCenterOn(t *testing.T) {
	tests := map[string]struct {
		minute    float64
		expScroll float64
	}{
		"middle of the day": {minute: 720, expScroll: 520},
		"early morning":     {minute: 10, expScroll: 0},
		"end of the day":    {minute: 1439, expScroll: 1040},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			z := timeline.NewZoom(1, 400)
			z.CenterOn(test.minute)
			assert.InDelta(t, test.expScroll, z.Scroll(), 1e-9)
		})
	}
}

func TestPanClamped(t *testing.T) {
	z := timeline.NewZoom(1, 400)
	z.Pan(-50)
	assert.Equal(t, 0.0, z.Scroll())
	z.Pan(300)
	assert.Equal(t, 300.0, z.Scroll())
	z.Pan(5000)
	assert.Equal(t, 1040.0, z.Scroll())

	z.SetViewport(2000)
	assert.Equal(t, 0.0, z.Scroll())
}

func TestGeometry(t *testing.T) {
	z := timeline.NewZoom(0.2, 100)
	z.ZoomBy(2, 0)
	settle(t, z)

	assert.InDelta(t, 0.4, z.PixelsPerMinute(), 1e-12)
	assert.InDelta(t, 576, z.ContentWidth(), 1e-9)

	z.Pan(40)
	x := z.XForMinute(300)
	assert.InDelta(t, 80, x, 1e-9)
	assert.InDelta(t, 300, z.MinuteAt(x), 1e-9)
}
