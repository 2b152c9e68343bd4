// Package keys provides private/public key pairs on secp256k1, the SEC
// point encodings, and P2PKH address derivation.
package keys

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/base58"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/ecc"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/hashing"
)

// Set of key and encoding failures.
var (
	ErrInvalidKey = errors.New("secret not in [1, N-1]")
	ErrInvalidSEC = errors.New("invalid SEC encoding")
)

// Network carries the per-network constants the core needs. Address
// version bytes differ between the main and test networks; everything
// else about the formats is shared.
type Network struct {
	Name         string
	P2PKHVersion byte
}

// The two public networks.
var (
	Mainnet = Network{Name: "mainnet", P2PKHVersion: 0x00}
	Testnet = Network{Name: "testnet", P2PKHVersion: 0x6f}
)

// =============================================================================

// PrivateKey represents a secret scalar in [1, N-1] along with the
// public point it determines.
type PrivateKey struct {
	secret *big.Int
	pub    PublicKey
}

// GeneratePrivateKey draws a secret uniformly from [1, N-1]. The reader
// must be a cryptographically secure source such as crypto/rand.Reader;
// it is a parameter so tests can control it.
func GeneratePrivateKey(r io.Reader) (*PrivateKey, error) {
	max := new(big.Int).Sub(ecc.S256().N, big.NewInt(1))

	k, err := rand.Int(r, max)
	if err != nil {
		return nil, fmt.Errorf("drawing secret: %w", err)
	}

	return NewPrivateKey(k.Add(k, big.NewInt(1)))
}

// NewPrivateKey constructs a private key from an existing secret,
// validating the scalar range.
func NewPrivateKey(secret *big.Int) (*PrivateKey, error) {
	if secret.Sign() < 1 || secret.Cmp(ecc.S256().N) >= 0 {
		return nil, ErrInvalidKey
	}

	point := ecc.S256().ScalarBaseMult(secret)
	return &PrivateKey{
		secret: new(big.Int).Set(secret),
		pub:    PublicKey{point: point},
	}, nil
}

// PrivateKeyFromBytes constructs a private key from a big-endian secret.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	return NewPrivateKey(new(big.Int).SetBytes(b))
}

// PublicKey returns the derived public key.
func (k *PrivateKey) PublicKey() PublicKey {
	return k.pub
}

// Secret returns a copy of the secret scalar.
func (k *PrivateKey) Secret() *big.Int {
	return new(big.Int).Set(k.secret)
}

// Bytes returns the secret as 32 big-endian bytes.
func (k *PrivateKey) Bytes() []byte {
	b := make([]byte, 32)
	k.secret.FillBytes(b)
	return b
}

// =============================================================================

// PublicKey represents a point on secp256k1 derived from a secret.
type PublicKey struct {
	point ecc.Point
}

// NewPublicKey wraps a curve point as a public key. The point at
// infinity is not a valid key.
func NewPublicKey(point ecc.Point) (PublicKey, error) {
	if point.IsInfinity() {
		return PublicKey{}, fmt.Errorf("point at infinity: %w", ErrInvalidKey)
	}
	return PublicKey{point: point}, nil
}

// Point returns the underlying curve point.
func (p PublicKey) Point() ecc.Point {
	return p.point
}

// Equal reports whether two public keys are the same point.
func (p PublicKey) Equal(other PublicKey) bool {
	return p.point.Equal(other.point)
}

// Bytes returns the SEC encoding of the point: 33 bytes with an 02/03
// parity prefix when compressed, 65 bytes with an 04 prefix otherwise.
func (p PublicKey) Bytes(compressed bool) []byte {
	x := make([]byte, 32)
	p.point.X().Num().FillBytes(x)

	if compressed {
		prefix := byte(0x02)
		if p.point.Y().IsOdd() {
			prefix = 0x03
		}
		return append([]byte{prefix}, x...)
	}

	y := make([]byte, 32)
	p.point.Y().Num().FillBytes(y)

	out := append([]byte{0x04}, x...)
	return append(out, y...)
}

// ParsePublicKey decodes a SEC encoded point. The compressed form
// recovers y by solving y^2 = x^3 + 7 and picking the root whose parity
// matches the prefix.
func ParsePublicKey(b []byte) (PublicKey, error) {
	curve := ecc.S256()

	if len(b) == 0 {
		return PublicKey{}, fmt.Errorf("empty input: %w", ErrInvalidSEC)
	}

	switch b[0] {
	case 0x04:
		if len(b) != 65 {
			return PublicKey{}, fmt.Errorf("uncompressed length %d: %w", len(b), ErrInvalidSEC)
		}
		point, err := curve.Point(new(big.Int).SetBytes(b[1:33]), new(big.Int).SetBytes(b[33:65]))
		if err != nil {
			return PublicKey{}, err
		}
		return NewPublicKey(point)

	case 0x02, 0x03:
		if len(b) != 33 {
			return PublicKey{}, fmt.Errorf("compressed length %d: %w", len(b), ErrInvalidSEC)
		}

		x, err := curve.FieldElement(new(big.Int).SetBytes(b[1:33]))
		if err != nil {
			return PublicKey{}, fmt.Errorf("x coordinate: %w", ErrInvalidSEC)
		}

		// y^2 = x^3 + 7 in the base field.
		seven, err := curve.FieldElement(big.NewInt(7))
		if err != nil {
			return PublicKey{}, err
		}
		y2 := x.Mul(x).Mul(x).Add(seven)

		y := y2.Sqrt()
		if !y.Mul(y).Equal(y2) {
			return PublicKey{}, fmt.Errorf("x has no curve point: %w", ErrInvalidSEC)
		}

		wantOdd := b[0] == 0x03
		if y.IsOdd() != wantOdd {
			y = y.Negate()
		}

		point, err := ecc.NewPoint(curve.Curve, x, y)
		if err != nil {
			return PublicKey{}, err
		}
		return NewPublicKey(point)
	}

	return PublicKey{}, fmt.Errorf("prefix %#02x: %w", b[0], ErrInvalidSEC)
}

// Hash160 returns the 20 byte digest of the SEC encoding, the value a
// P2PKH output locks to.
func (p PublicKey) Hash160(compressed bool) []byte {
	return hashing.Hash160(p.Bytes(compressed))
}

// Address returns the Base58Check address for the key on the specified
// network.
func (p PublicKey) Address(compressed bool, net Network) string {
	return base58.CheckEncode(net.P2PKHVersion, p.Hash160(compressed))
}
