package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/impulse/physics/geometry"
	"github.com/gekko3d/impulse/physics/vecmath"
)

// Body is a rigid body with pose, velocity, accumulated wrench and inverse mass properties.
//
// InvMass and InvInertia are non-negative. Zero means infinite mass or inertia, and a body
// with zero InvMass is expected to have zero InvInertia too. Constraints refer to bodies by
// their index in Engine.Bodies.
type Body struct {
	InvMass    float64
	InvInertia float64

	Pos   mgl64.Vec2
	Vel   mgl64.Vec2
	Angle float64
	Omega float64

	// Force and Torque accumulate over one frame and are cleared at the end of Step.
	Force  mgl64.Vec2
	Torque float64

	Shape Shape
}

// DefaultBody is a unit-mass, unit-inertia circle of radius 1 at the origin.
func DefaultBody() Body {
	return Body{
		InvMass:    1,
		InvInertia: 1,
		Shape:      CircleShape(1),
	}
}

// StaticBody is an immovable body.
func StaticBody(pos mgl64.Vec2, shape Shape) Body {
	return Body{Pos: pos, Shape: shape}
}

func (b *Body) IsStatic() bool {
	return b.InvMass == 0 && b.InvInertia == 0
}

// IntegrateForces applies gravity, Force and Torque to the velocities over dt.
// Gravity only acts on bodies with finite mass.
func (b *Body) IntegrateForces(gravity mgl64.Vec2, dt float64) {
	if b.InvMass > 0 {
		acc := gravity.Add(b.Force.Mul(b.InvMass))
		b.Vel = b.Vel.Add(acc.Mul(dt))
	}
	b.Omega += dt * b.Torque * b.InvInertia
}

// IntegratePosition advects the pose by the current velocities and clears the wrench.
func (b *Body) IntegratePosition(dt float64) {
	b.Pos = b.Pos.Add(b.Vel.Mul(dt))
	b.Angle += dt * b.Omega
	b.Force = mgl64.Vec2{}
	b.Torque = 0
}

// ApplyImpulse changes the velocities as if impulse acted at the world point at.
func (b *Body) ApplyImpulse(impulse, at mgl64.Vec2) {
	b.Vel = b.Vel.Add(impulse.Mul(b.InvMass))
	b.Omega += vecmath.PerpDot(at.Sub(b.Pos), impulse) * b.InvInertia
}

// ApplyTwist adds (dvx, dvy, domega) to the velocities.
func (b *Body) ApplyTwist(delta mgl64.Vec3) {
	b.Vel = b.Vel.Add(delta.Vec2())
	b.Omega += delta.Z()
}

func (b *Body) Twist() mgl64.Vec3 {
	return vecmath.Twist(b.Vel, b.Omega)
}

func (b *Body) InvMassMatrix() mgl64.Mat3 {
	return vecmath.InvMassMatrix(b.InvMass, b.InvInertia)
}

func (b *Body) KineticEnergy() float64 {
	var e float64
	if b.InvMass > 0 {
		e += 0.5 * b.Vel.LenSqr() / b.InvMass
	}
	if b.InvInertia > 0 {
		e += 0.5 * b.Omega * b.Omega / b.InvInertia
	}
	return e
}

// WorldShape is the body's shape placed at its current pose.
func (b *Body) WorldShape() geometry.Shape {
	return b.Shape.Place(b.Pos, b.Angle)
}
