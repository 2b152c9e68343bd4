package ecc

import (
	"math/big"
)

// Secp256k1 carries the domain parameters of Bitcoin's curve as
// published in SEC 2: the field prime P, the coefficients a=0 b=7, the
// generator G, and the group order N. A single immutable value is
// constructed at process start and shared by reference; nothing mutates
// it afterwards.
type Secp256k1 struct {
	P     *big.Int
	N     *big.Int
	Curve Curve
	G     Point
}

var s256 = mustS256()

// S256 returns the process-wide secp256k1 parameters.
func S256() *Secp256k1 {
	return s256
}

// FieldElement constructs an element of the secp256k1 base field.
func (c *Secp256k1) FieldElement(num *big.Int) (FieldElement, error) {
	return NewFieldElement(num, c.P)
}

// Point constructs a point on secp256k1 from affine coordinates,
// validating the curve equation.
func (c *Secp256k1) Point(x *big.Int, y *big.Int) (Point, error) {
	fx, err := NewFieldElement(x, c.P)
	if err != nil {
		return Point{}, err
	}
	fy, err := NewFieldElement(y, c.P)
	if err != nil {
		return Point{}, err
	}

	return NewPoint(c.Curve, fx, fy)
}

// ScalarBaseMult returns k*G with k reduced modulo the group order.
// Multiplying by zero or any multiple of N yields infinity.
func (c *Secp256k1) ScalarBaseMult(k *big.Int) Point {
	return c.ScalarMult(c.G, k)
}

// ScalarMult returns k*p with k reduced modulo the group order.
func (c *Secp256k1) ScalarMult(p Point, k *big.Int) Point {
	return p.ScalarMult(new(big.Int).Mod(k, c.N))
}

// mustS256 builds the curve constants. The hex values come straight from
// the SEC 2 parameter listing; any failure here is an initialization bug.
func mustS256() *Secp256k1 {
	p := mustInt("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f")
	n := mustInt("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	gx := mustInt("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	gy := mustInt("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8")

	a, err := NewFieldElement(big.NewInt(0), p)
	if err != nil {
		panic(err)
	}
	b, err := NewFieldElement(big.NewInt(7), p)
	if err != nil {
		panic(err)
	}
	curve := NewCurve(a, b)

	fx, err := NewFieldElement(gx, p)
	if err != nil {
		panic(err)
	}
	fy, err := NewFieldElement(gy, p)
	if err != nil {
		panic(err)
	}
	g, err := NewPoint(curve, fx, fy)
	if err != nil {
		panic(err)
	}

	return &Secp256k1{
		P:     p,
		N:     n,
		Curve: curve,
		G:     g,
	}
}

func mustInt(hexStr string) *big.Int {
	v, ok := new(big.Int).SetString(hexStr, 16)
	if !ok {
		panic("ecc: invalid curve constant " + hexStr)
	}
	return v
}
