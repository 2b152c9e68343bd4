// Package signature implements ECDSA over secp256k1 along with the DER
// encoding signatures travel in. Nonce generation is a capability the
// caller supplies so production code can use deterministic RFC 6979
// nonces while tests inject fixed ones.
package signature

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/ecc"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/keys"
)

// ErrNonceSource indicates the nonce source failed to produce a value.
var ErrNonceSource = errors.New("nonce source failed")

// Signature represents the (r, s) pair produced by signing. Both values
// lie in [1, N-1].
type Signature struct {
	R *big.Int
	S *big.Int
}

// Equal reports whether two signatures carry the same values.
func (sig Signature) Equal(other Signature) bool {
	return sig.R.Cmp(other.R) == 0 && sig.S.Cmp(other.S) == 0
}

// =============================================================================

// Sign produces a signature over the message digest z using the
// specified private key. Nonces come from the source; the degenerate
// cases r=0 and s=0 are retried internally with the source's next
// nonce and never surface to the caller. The s value is normalized to
// the low half of the group order so nodes relay the transaction.
func Sign(key *keys.PrivateKey, z *big.Int, src Source) (Signature, error) {
	curve := ecc.S256()
	secret := key.Secret()

	nonces := src.Nonces(secret, z)

	for {
		k, err := nonces.Next()
		if err != nil {
			return Signature{}, fmt.Errorf("%w: %v", ErrNonceSource, err)
		}

		// R = kG, r = R.x mod N.
		rPoint := curve.ScalarBaseMult(k)
		if rPoint.IsInfinity() {
			continue
		}
		r := new(big.Int).Mod(rPoint.X().Num(), curve.N)
		if r.Sign() == 0 {
			continue
		}

		// s = k^-1 (z + r*secret) mod N.
		kInv := new(big.Int).ModInverse(k, curve.N)
		s := new(big.Int).Mul(r, secret)
		s.Add(s, z)
		s.Mul(s, kInv)
		s.Mod(s, curve.N)
		if s.Sign() == 0 {
			continue
		}

		// Low-s normalization.
		halfN := new(big.Int).Rsh(curve.N, 1)
		if s.Cmp(halfN) > 0 {
			s.Sub(curve.N, s)
		}

		return Signature{R: r, S: s}, nil
	}
}

// Verify reports whether the signature is valid for the message digest z
// under the public key. Out of range r or s values simply fail
// verification; they are not a structural error.
func Verify(pub keys.PublicKey, z *big.Int, sig Signature) bool {
	curve := ecc.S256()

	if sig.R == nil || sig.S == nil {
		return false
	}
	if sig.R.Sign() < 1 || sig.R.Cmp(curve.N) >= 0 {
		return false
	}
	if sig.S.Sign() < 1 || sig.S.Cmp(curve.N) >= 0 {
		return false
	}

	// u = z/s, v = r/s, point = uG + vP; valid when point.x mod N == r.
	sInv := new(big.Int).ModInverse(sig.S, curve.N)

	u := new(big.Int).Mul(z, sInv)
	u.Mod(u, curve.N)
	v := new(big.Int).Mul(sig.R, sInv)
	v.Mod(v, curve.N)

	point := curve.ScalarBaseMult(u).Add(curve.ScalarMult(pub.Point(), v))
	if point.IsInfinity() {
		return false
	}

	x := new(big.Int).Mod(point.X().Num(), curve.N)
	return x.Cmp(sig.R) == 0
}
