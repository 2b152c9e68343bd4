package ecc

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidPoint indicates coordinates that do not satisfy the curve
// equation y^2 = x^3 + ax + b.
var ErrInvalidPoint = errors.New("point not on curve")

// Curve represents the coefficients of an elliptic curve
// y^2 = x^3 + ax + b over the field the coefficients live in.
type Curve struct {
	a FieldElement
	b FieldElement
}

// NewCurve constructs a curve from its two coefficients.
func NewCurve(a FieldElement, b FieldElement) Curve {
	return Curve{a: a, b: b}
}

// Equal reports whether two curves have the same coefficients.
func (c Curve) Equal(other Curve) bool {
	return c.a.Equal(other.a) && c.b.Equal(other.b)
}

// =============================================================================

// Point represents either a finite point on a curve or the point at
// infinity, the additive identity of the group.
type Point struct {
	curve Curve
	x     FieldElement
	y     FieldElement
	inf   bool
}

// NewPoint constructs a finite point, validating the coordinates satisfy
// the curve equation.
func NewPoint(curve Curve, x FieldElement, y FieldElement) (Point, error) {

	// y^2 - x^3 - ax - b must be zero in the field.
	lhs := y.Mul(y)
	rhs := x.Mul(x).Mul(x).Add(curve.a.Mul(x)).Add(curve.b)
	if !lhs.Equal(rhs) {
		return Point{}, fmt.Errorf("(%v, %v): %w", x.Num(), y.Num(), ErrInvalidPoint)
	}

	return Point{curve: curve, x: x, y: y}, nil
}

// NewInfinity constructs the point at infinity for the specified curve.
func NewInfinity(curve Curve) Point {
	return Point{curve: curve, inf: true}
}

// IsInfinity reports whether the point is the group identity.
func (p Point) IsInfinity() bool {
	return p.inf
}

// X returns the x coordinate. Only valid for finite points.
func (p Point) X() FieldElement {
	return p.x
}

// Y returns the y coordinate. Only valid for finite points.
func (p Point) Y() FieldElement {
	return p.y
}

// Equal reports whether two points are the same point on the same curve.
func (p Point) Equal(other Point) bool {
	if !p.curve.Equal(other.curve) {
		return false
	}
	if p.inf || other.inf {
		return p.inf == other.inf
	}
	return p.x.Equal(other.x) && p.y.Equal(other.y)
}

// Add performs the elliptic curve group operation. The cases follow the
// chord-and-tangent construction: the identity, the vertical line
// (additive inverses), the tangent line (doubling), and the secant line
// through two distinct points.
func (p Point) Add(other Point) Point {
	if !p.curve.Equal(other.curve) {
		panic("ecc: points on different curves")
	}

	// Identity cases.
	if p.inf {
		return other
	}
	if other.inf {
		return p
	}

	if p.x.Equal(other.x) {

		// Vertical line: opposite y values sum to infinity. Doubling a
		// point whose y is zero is also a vertical tangent.
		if !p.y.Equal(other.y) || p.y.IsZero() {
			return NewInfinity(p.curve)
		}

		// Tangent slope: (3x^2 + a) / 2y.
		m := p.x.Mul(p.x).MulInt(3).Add(p.curve.a).Div(p.y.MulInt(2))
		return p.throughSlope(other, m)
	}

	// Secant slope: (y2 - y1) / (x2 - x1).
	m := other.y.Sub(p.y).Div(other.x.Sub(p.x))
	return p.throughSlope(other, m)
}

// throughSlope completes the addition once the line's slope is known:
// x3 = m^2 - x1 - x2, y3 = m(x1 - x3) - y1.
func (p Point) throughSlope(other Point, m FieldElement) Point {
	x3 := m.Mul(m).Sub(p.x).Sub(other.x)
	y3 := m.Mul(p.x.Sub(x3)).Sub(p.y)

	return Point{curve: p.curve, x: x3, y: y3}
}

// ScalarMult returns coef * p using binary double-and-add. The
// coefficient must be non-negative; reduction modulo the group order is
// the caller's concern since a generic curve does not know its order.
func (p Point) ScalarMult(coef *big.Int) Point {
	if coef.Sign() < 0 {
		panic("ecc: negative scalar")
	}

	result := NewInfinity(p.curve)
	current := p

	for i := 0; i < coef.BitLen(); i++ {
		if coef.Bit(i) == 1 {
			result = result.Add(current)
		}
		current = current.Add(current)
	}

	return result
}
