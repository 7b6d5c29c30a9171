package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/impulse/physics/geometry"
)

type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeHalfPlane
	ShapeCapsule
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeHalfPlane:
		return "half-plane"
	case ShapeCapsule:
		return "capsule"
	}
	return "unknown"
}

// ParseShapeKind is the inverse of ShapeKind.String.
func ParseShapeKind(s string) (ShapeKind, bool) {
	for _, k := range []ShapeKind{ShapeCircle, ShapeHalfPlane, ShapeCapsule} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Shape is the body-frame geometry of a Body. Only the fields of its Kind are meaningful.
type Shape struct {
	Kind        ShapeKind
	Radius      float64 // circle, capsule
	Length      float64 // capsule
	NormalAngle float64 // half-plane, relative to +X
}

func CircleShape(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

func HalfPlaneShape(normalAngle float64) Shape {
	return Shape{Kind: ShapeHalfPlane, NormalAngle: normalAngle}
}

func CapsuleShape(length, radius float64) Shape {
	return Shape{Kind: ShapeCapsule, Length: length, Radius: radius}
}

// Place puts the shape at a body pose. Half-planes keep their own normal angle;
// the body angle does not rotate them.
func (s Shape) Place(pos mgl64.Vec2, angle float64) geometry.Shape {
	switch s.Kind {
	case ShapeHalfPlane:
		return geometry.HalfPlane{Pos: pos, NormalAngle: s.NormalAngle}
	case ShapeCapsule:
		return geometry.Capsule{Pos: pos, Angle: angle, Length: s.Length, Radius: s.Radius}
	default:
		return geometry.Circle{Pos: pos, Radius: s.Radius}
	}
}

// CircleInertia is the moment of inertia of a uniform disc.
func CircleInertia(mass, radius float64) float64 {
	return 0.5 * mass * radius * radius
}

// CapsuleInertia approximates a uniform capsule as a rectangle of the segment length
// plus a disc of the cap radius, both carrying mass in proportion to their area.
func CapsuleInertia(mass, length, radius float64) float64 {
	rectArea := length * 2 * radius
	discArea := math.Pi * radius * radius
	total := rectArea + discArea
	if total == 0 {
		return 0
	}
	rectMass := mass * rectArea / total
	discMass := mass * discArea / total

	rect := rectMass * (length*length + 4*radius*radius) / 12
	// cap halves are taken to sit at the segment ends
	disc := discMass * (0.5*radius*radius + length*length/4)
	return rect + disc
}

// InverseOf returns 1/v, or 0 for non-positive v, which the engine reads as infinite.
func InverseOf(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return 1 / v
}
