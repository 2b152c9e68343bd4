// Package ecc implements the finite field and elliptic curve arithmetic
// that everything above it (keys, signatures, scripts) is built on. The
// math is written out from first principles on purpose; the only curve
// instantiated is secp256k1.
package ecc

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrOutOfRange indicates a field element value outside [0, prime).
var ErrOutOfRange = errors.New("value not in field range")

// FieldElement represents a value in the finite field of integers modulo
// a prime. Every operation reduces its result back into [0, prime). The
// zero value is not usable; construct elements with NewFieldElement.
type FieldElement struct {
	num   *big.Int
	prime *big.Int
}

// NewFieldElement constructs a field element, validating the value lies
// inside [0, prime).
func NewFieldElement(num *big.Int, prime *big.Int) (FieldElement, error) {
	if num.Sign() < 0 || num.Cmp(prime) >= 0 {
		return FieldElement{}, fmt.Errorf("num %v: %w", num, ErrOutOfRange)
	}

	return FieldElement{
		num:   new(big.Int).Set(num),
		prime: prime,
	}, nil
}

// reduce constructs an element from an unreduced intermediate result.
func reduce(num *big.Int, prime *big.Int) FieldElement {
	n := new(big.Int).Mod(num, prime)
	return FieldElement{num: n, prime: prime}
}

// Num returns a copy of the element's value.
func (f FieldElement) Num() *big.Int {
	return new(big.Int).Set(f.num)
}

// Prime returns the field prime. The returned value is shared and must
// not be mutated.
func (f FieldElement) Prime() *big.Int {
	return f.prime
}

// Equal reports whether two elements have the same value in the same field.
func (f FieldElement) Equal(other FieldElement) bool {
	return f.num.Cmp(other.num) == 0 && f.prime.Cmp(other.prime) == 0
}

// IsZero reports whether the element is the additive identity.
func (f FieldElement) IsZero() bool {
	return f.num.Sign() == 0
}

// Add returns f + other mod prime.
func (f FieldElement) Add(other FieldElement) FieldElement {
	f.samePrime(other)
	return reduce(new(big.Int).Add(f.num, other.num), f.prime)
}

// Sub returns f - other mod prime.
func (f FieldElement) Sub(other FieldElement) FieldElement {
	f.samePrime(other)
	return reduce(new(big.Int).Sub(f.num, other.num), f.prime)
}

// Mul returns f * other mod prime.
func (f FieldElement) Mul(other FieldElement) FieldElement {
	f.samePrime(other)
	return reduce(new(big.Int).Mul(f.num, other.num), f.prime)
}

// MulInt returns f scaled by a small integer coefficient.
func (f FieldElement) MulInt(coef int64) FieldElement {
	return reduce(new(big.Int).Mul(f.num, big.NewInt(coef)), f.prime)
}

// Pow returns f raised to an arbitrary integer exponent. Negative
// exponents are folded into [0, prime-1) using Fermat's little theorem,
// a^(p-1) = 1.
func (f FieldElement) Pow(exp *big.Int) FieldElement {
	pm1 := new(big.Int).Sub(f.prime, big.NewInt(1))
	e := new(big.Int).Mod(exp, pm1)
	return reduce(new(big.Int).Exp(f.num, e, f.prime), f.prime)
}

// Inverse returns the multiplicative inverse f^(p-2) mod p.
func (f FieldElement) Inverse() FieldElement {
	pm2 := new(big.Int).Sub(f.prime, big.NewInt(2))
	return reduce(new(big.Int).Exp(f.num, pm2, f.prime), f.prime)
}

// Div returns f * other^-1 mod prime.
func (f FieldElement) Div(other FieldElement) FieldElement {
	f.samePrime(other)
	return f.Mul(other.Inverse())
}

// Sqrt returns a square root of f for fields where prime = 3 mod 4,
// which holds for secp256k1. The root is f^((p+1)/4); the caller picks
// the root with the parity it needs via Negate.
func (f FieldElement) Sqrt() FieldElement {
	e := new(big.Int).Add(f.prime, big.NewInt(1))
	e.Rsh(e, 2)
	return reduce(new(big.Int).Exp(f.num, e, f.prime), f.prime)
}

// Negate returns the additive inverse prime - f.
func (f FieldElement) Negate() FieldElement {
	return reduce(new(big.Int).Neg(f.num), f.prime)
}

// IsOdd reports whether the element's value is odd. SEC compressed
// encoding keys off this.
func (f FieldElement) IsOdd() bool {
	return f.num.Bit(0) == 1
}

// samePrime guards against mixing elements from different fields, which
// is a programming error rather than a data error.
func (f FieldElement) samePrime(other FieldElement) {
	if f.prime.Cmp(other.prime) != 0 {
		panic("ecc: field elements from different fields")
	}
}
