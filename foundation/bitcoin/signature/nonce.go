package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/ecc"
)

// Source produces nonce iterators for signing operations. A fresh
// iterator is obtained per signature; signing draws from it until a
// usable nonce is found.
type Source interface {
	Nonces(secret *big.Int, z *big.Int) Iterator
}

// Iterator yields candidate nonces in [1, N-1]. Signing calls Next
// again when a candidate produces a degenerate r or s.
type Iterator interface {
	Next() (*big.Int, error)
}

// =============================================================================

// Deterministic derives nonces per RFC 6979 using HMAC-SHA256. The same
// secret and digest always yield the same nonce sequence, so signing
// needs no entropy source and signatures are reproducible.
type Deterministic struct{}

// Nonces starts the HMAC chain for the specified secret and digest.
func (Deterministic) Nonces(secret *big.Int, z *big.Int) Iterator {
	n := ecc.S256().N

	zr := new(big.Int).Set(z)
	if zr.Cmp(n) > 0 {
		zr.Sub(zr, n)
	}

	k := make([]byte, 32)
	v := make([]byte, 32)
	for i := range v {
		v[i] = 0x01
	}

	var seed [64]byte
	secret.FillBytes(seed[:32])
	zr.FillBytes(seed[32:])

	k = mac(k, v, []byte{0x00}, seed[:])
	v = mac(k, v)
	k = mac(k, v, []byte{0x01}, seed[:])
	v = mac(k, v)

	return &rfc6979{n: n, k: k, v: v}
}

type rfc6979 struct {
	n *big.Int
	k []byte
	v []byte
}

// Next walks the HMAC chain until a candidate lands in [1, N-1]. On a
// retry the chain continues where it left off rather than restarting.
func (it *rfc6979) Next() (*big.Int, error) {
	for {
		it.v = mac(it.k, it.v)

		candidate := new(big.Int).SetBytes(it.v)
		if candidate.Sign() == 1 && candidate.Cmp(it.n) < 0 {
			it.k = mac(it.k, it.v, []byte{0x00})
			it.v = mac(it.k, it.v)
			return candidate, nil
		}

		it.k = mac(it.k, it.v, []byte{0x00})
		it.v = mac(it.k, it.v)
	}
}

// mac computes HMAC-SHA256 keyed with k over the concatenated parts.
func mac(k []byte, parts ...[]byte) []byte {
	h := hmac.New(sha256.New, k)
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// =============================================================================

// Random draws nonces from a cryptographic entropy source. The zero
// value reads from crypto/rand.
type Random struct {
	Rand io.Reader
}

// Nonces returns an iterator over fresh random values.
func (r Random) Nonces(secret *big.Int, z *big.Int) Iterator {
	src := r.Rand
	if src == nil {
		src = rand.Reader
	}
	return randomIter{src: src}
}

type randomIter struct {
	src io.Reader
}

func (it randomIter) Next() (*big.Int, error) {
	n := ecc.S256().N
	max := new(big.Int).Sub(n, big.NewInt(1))

	k, err := rand.Int(it.src, max)
	if err != nil {
		return nil, fmt.Errorf("reading entropy: %w", err)
	}

	return k.Add(k, big.NewInt(1)), nil
}
