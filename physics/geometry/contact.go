package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/impulse/physics/vecmath"
)

// Contact describes an overlap between two shapes at one instant.
type Contact struct {
	// Pos is a world-space point on the surface of one of the shapes.
	Pos mgl64.Vec2
	// Normal is a unit vector pointing from the first shape towards the second.
	Normal mgl64.Vec2
	// Separation is negative when the shapes overlap.
	Separation float64
}

// Flipped returns the same contact seen from the other shape.
func (c Contact) Flipped() Contact {
	c.Normal = c.Normal.Mul(-1)
	return c
}

// CircleCircle reports the contact between two circles. Concentric circles have no usable
// normal and are not reported.
func CircleCircle(a, b Circle) (Contact, bool) {
	diff := b.Pos.Sub(a.Pos)
	normal, ok := vecmath.TryNormalize(diff)
	if !ok {
		return Contact{}, false
	}
	separation := diff.Len() - a.Radius - b.Radius
	if separation > 0 {
		return Contact{}, false
	}
	return Contact{
		Pos:        a.Pos.Add(normal.Mul(a.Radius)),
		Normal:     normal,
		Separation: separation,
	}, true
}

// HalfPlaneCircle reports the contact between a half-plane and a circle. The normal is the
// plane's outward normal and the contact lies on the circle's surface.
func HalfPlaneCircle(p HalfPlane, c Circle) (Contact, bool) {
	n := p.Normal()
	separation := c.Pos.Sub(p.Pos).Dot(n) - c.Radius
	if separation > 0 {
		return Contact{}, false
	}
	return Contact{
		Pos:        c.Pos.Sub(n.Mul(c.Radius)),
		Normal:     n,
		Separation: separation,
	}, true
}

// CircleCapsule treats the capsule as a circle centred on the nearest point of its segment.
func CircleCapsule(c Circle, k Capsule) (Contact, bool) {
	nearest := k.Segment().ClosestPoint(c.Pos)
	return CircleCircle(c, Circle{Pos: nearest, Radius: k.Radius})
}

// HalfPlaneCapsule yields one contact per segment end that is within Radius of the plane.
func HalfPlaneCapsule(p HalfPlane, k Capsule) []Contact {
	seg := k.Segment()
	var contacts []Contact
	for _, end := range [2]mgl64.Vec2{seg.A, seg.B} {
		if contact, ok := HalfPlaneCircle(p, Circle{Pos: end, Radius: k.Radius}); ok {
			contacts = append(contacts, contact)
		}
	}
	return contacts
}

// CapsuleCapsule reports one contact between the closest points of the two segments,
// or at their crossing point when the segments intersect.
func CapsuleCapsule(a, b Capsule) (Contact, bool) {
	sa, sb := a.Segment(), b.Segment()
	if p, ok := sa.Intersection(sb); ok {
		return crossingContact(a, b, sa, sb, p), true
	}
	pa, pb := sa.ClosestPoints(sb)
	return CircleCircle(Circle{Pos: pa, Radius: a.Radius}, Circle{Pos: pb, Radius: b.Radius})
}

// crossingContact resolves capsules whose segments cross at p. The normal is a's segment
// normal on the side of b's centre; the depth is the shorter of b's two arms past a's line.
func crossingContact(a, b Capsule, sa, sb Segment, p mgl64.Vec2) Contact {
	dir, _ := vecmath.TryNormalize(sa.B.Sub(sa.A))
	n := vecmath.Perp(dir)
	if n.Dot(b.Pos.Sub(a.Pos)) < 0 {
		n = n.Mul(-1)
	}
	depth := math.Min(math.Abs(sb.A.Sub(p).Dot(n)), math.Abs(sb.B.Sub(p).Dot(n)))
	return Contact{
		Pos:        p,
		Normal:     n,
		Separation: -(depth + a.Radius + b.Radius),
	}
}

// Overlap returns the contacts between a and b with normals pointing from a to b.
// Pairs of half-planes never collide.
func Overlap(a, b Shape) []Contact {
	switch a := a.(type) {
	case Circle:
		switch b := b.(type) {
		case Circle:
			return single(CircleCircle(a, b))
		case HalfPlane:
			return flipped(single(HalfPlaneCircle(b, a)))
		case Capsule:
			return single(CircleCapsule(a, b))
		}
	case HalfPlane:
		switch b := b.(type) {
		case Circle:
			return single(HalfPlaneCircle(a, b))
		case Capsule:
			return HalfPlaneCapsule(a, b)
		}
	case Capsule:
		switch b := b.(type) {
		case Circle:
			return flipped(single(CircleCapsule(b, a)))
		case HalfPlane:
			return flipped(HalfPlaneCapsule(b, a))
		case Capsule:
			return single(CapsuleCapsule(a, b))
		}
	}
	return nil
}

func single(c Contact, ok bool) []Contact {
	if !ok {
		return nil
	}
	return []Contact{c}
}

func flipped(contacts []Contact) []Contact {
	for i := range contacts {
		contacts[i] = contacts[i].Flipped()
	}
	return contacts
}
