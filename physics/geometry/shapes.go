// Package geometry provides world-placed shapes and the narrow phase that tests them for overlap.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/impulse/physics/vecmath"
)

// Shape is one of Circle, HalfPlane or Capsule, already placed in world coordinates.
type Shape interface {
	isShape()
}

type Circle struct {
	Pos    mgl64.Vec2
	Radius float64
}

// HalfPlane is the solid region behind a line through Pos. The normal points out of the solid side.
type HalfPlane struct {
	Pos mgl64.Vec2
	// NormalAngle is the normal's angle from +X, counter-clockwise, in radians.
	NormalAngle float64
}

func (h HalfPlane) Normal() mgl64.Vec2 {
	return vecmath.FromAngle(h.NormalAngle)
}

// Capsule is a segment of Length centred on Pos along Angle, swept by Radius.
type Capsule struct {
	Pos    mgl64.Vec2
	Angle  float64
	Length float64
	Radius float64
}

func (c Capsule) Segment() Segment {
	half := vecmath.FromAngle(c.Angle).Mul(c.Length / 2)
	return Segment{A: c.Pos.Sub(half), B: c.Pos.Add(half)}
}

func (Circle) isShape()    {}
func (HalfPlane) isShape() {}
func (Capsule) isShape()   {}

type Segment struct {
	A, B mgl64.Vec2
}

// ClosestPoint returns the point of s nearest to p.
func (s Segment) ClosestPoint(p mgl64.Vec2) mgl64.Vec2 {
	ab := s.B.Sub(s.A)
	lenSqr := ab.LenSqr()
	if lenSqr == 0 {
		return s.A
	}
	t := p.Sub(s.A).Dot(ab) / lenSqr
	switch {
	case t <= 0:
		return s.A
	case t >= 1:
		return s.B
	}
	return s.A.Add(ab.Mul(t))
}

// ClosestPoints returns the nearest pair of points between two segments, first on s and then on o.
// It only looks at endpoint candidates, so callers must check Intersection first.
func (s Segment) ClosestPoints(o Segment) (mgl64.Vec2, mgl64.Vec2) {
	type pair struct{ p, q mgl64.Vec2 }
	candidates := [4]pair{
		{s.A, o.ClosestPoint(s.A)},
		{s.B, o.ClosestPoint(s.B)},
		{s.ClosestPoint(o.A), o.A},
		{s.ClosestPoint(o.B), o.B},
	}
	best := candidates[0]
	bestDist := best.q.Sub(best.p).LenSqr()
	for _, c := range candidates[1:] {
		if d := c.q.Sub(c.p).LenSqr(); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best.p, best.q
}

// Intersection returns the point where s and o cross. Parallel segments never cross.
func (s Segment) Intersection(o Segment) (mgl64.Vec2, bool) {
	r := s.B.Sub(s.A)
	q := o.B.Sub(o.A)
	denom := vecmath.PerpDot(r, q)
	if math.Abs(denom) <= vecmath.Epsilon*r.Len()*q.Len() {
		return mgl64.Vec2{}, false
	}
	d := o.A.Sub(s.A)
	t := vecmath.PerpDot(d, q) / denom
	u := vecmath.PerpDot(d, r) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return mgl64.Vec2{}, false
	}
	return s.A.Add(r.Mul(t)), true
}
