// Package vecmath holds the small amount of 2D math the engine needs on top of mgl64.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a vector has no usable direction.
const Epsilon = 1e-6

// PerpDot returns a.x*b.y - a.y*b.x, the z component of the 3D cross product.
func PerpDot(a, b mgl64.Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// Perp rotates v by +90 degrees.
func Perp(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v.Y(), v.X()}
}

// FromAngle returns the unit vector at angle radians counter-clockwise from +X.
func FromAngle(angle float64) mgl64.Vec2 {
	s, c := math.Sincos(angle)
	return mgl64.Vec2{c, s}
}

// TryNormalize returns v/|v|. It fails for near-zero or non-finite vectors
// instead of producing Inf like mgl64's Normalize.
func TryNormalize(v mgl64.Vec2) (mgl64.Vec2, bool) {
	l := v.Len()
	if l < Epsilon || math.IsInf(l, 0) || math.IsNaN(l) {
		return mgl64.Vec2{}, false
	}
	return v.Mul(1 / l), true
}

// InvMassMatrix is diag(invMass, invMass, invInertia), acting on (x, y, theta) triples.
func InvMassMatrix(invMass, invInertia float64) mgl64.Mat3 {
	return mgl64.Diag3(mgl64.Vec3{invMass, invMass, invInertia})
}

// Twist packs a linear and angular quantity into one (x, y, theta) triple.
func Twist(linear mgl64.Vec2, angular float64) mgl64.Vec3 {
	return mgl64.Vec3{linear.X(), linear.Y(), angular}
}

// WrapAngle maps angle into [-pi, pi].
func WrapAngle(angle float64) float64 {
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}
