// Package hashing provides the two digest primitives every Bitcoin wire
// format is built on.
package hashing

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // P2PKH is defined over ripemd160.
)

// Hash256 returns sha256(sha256(data)). Transaction ids, block ids,
// Base58Check checksums, and merkle nodes all use this digest.
func Hash256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])

	return second[:]
}

// Hash160 returns ripemd160(sha256(data)), the 20 byte digest a P2PKH
// script locks an output to.
func Hash160(data []byte) []byte {
	first := sha256.Sum256(data)

	h := ripemd160.New()
	h.Write(first[:])

	return h.Sum(nil)
}
