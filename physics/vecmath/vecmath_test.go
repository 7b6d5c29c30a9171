package vecmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestPerpDot(t *testing.T) {
	x, y := mgl64.Vec2{1, 0}, mgl64.Vec2{0, 1}
	assert.Equal(t, 1.0, PerpDot(x, y))
	assert.Equal(t, -1.0, PerpDot(y, x))
	assert.Equal(t, 0.0, PerpDot(mgl64.Vec2{2, 4}, mgl64.Vec2{1, 2}))
}

func TestFromAngle(t *testing.T) {
	v := FromAngle(math.Pi / 2)
	assert.InDelta(t, 0, v.X(), 1e-12)
	assert.InDelta(t, 1, v.Y(), 1e-12)
	assert.InDelta(t, 1, FromAngle(1.234).Len(), 1e-12)
}

func TestTryNormalize(t *testing.T) {
	n, ok := TryNormalize(mgl64.Vec2{3, 4})
	assert.True(t, ok)
	assert.InDelta(t, 0.6, n.X(), 1e-12)
	assert.InDelta(t, 0.8, n.Y(), 1e-12)

	_, ok = TryNormalize(mgl64.Vec2{1e-9, 0})
	assert.False(t, ok, "near-zero vector has no direction")

	_, ok = TryNormalize(mgl64.Vec2{math.NaN(), 1})
	assert.False(t, ok)
}

func TestPerp(t *testing.T) {
	v := mgl64.Vec2{3, 1}
	p := Perp(v)
	assert.Equal(t, mgl64.Vec2{-1, 3}, p)
	assert.Equal(t, 0.0, p.Dot(v))
	assert.Greater(t, PerpDot(v, p), 0.0, "counter-clockwise")
}

func TestInvMassMatrix(t *testing.T) {
	m := InvMassMatrix(2, 3)
	out := m.Mul3x1(mgl64.Vec3{1, 1, 1})
	assert.Equal(t, mgl64.Vec3{2, 2, 3}, out)
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 0, WrapAngle(2*math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi/2, WrapAngle(3*math.Pi/2), 1e-12)
	assert.InDelta(t, 0.5, WrapAngle(0.5), 1e-12)
}
