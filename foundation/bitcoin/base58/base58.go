// Package base58 implements Bitcoin's Base58Check text encoding: base 58
// over an alphabet that drops the visually ambiguous 0, O, I and l, with
// a four byte double-sha256 checksum protecting the payload.
package base58

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/hashing"
)

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// Set of possible decode failures.
var (
	ErrInvalidCharacter = errors.New("character outside the base58 alphabet")
	ErrChecksum         = errors.New("checksum mismatch")
	ErrTooShort         = errors.New("input too short to carry a checksum")
)

var radix = big.NewInt(58)

// decodeMap maps an alphabet byte back to its digit value, 0xff for
// bytes outside the alphabet.
var decodeMap [256]byte

func init() {
	for i := range decodeMap {
		decodeMap[i] = 0xff
	}
	for i := 0; i < len(alphabet); i++ {
		decodeMap[alphabet[i]] = byte(i)
	}
}

// Encode converts raw bytes to base58 text. Each leading zero byte maps
// to one leading '1' so round trips preserve length.
func Encode(input []byte) string {
	zeros := 0
	for zeros < len(input) && input[zeros] == 0 {
		zeros++
	}

	n := new(big.Int).SetBytes(input)
	mod := new(big.Int)

	var out []byte
	for n.Sign() > 0 {
		n.DivMod(n, radix, mod)
		out = append(out, alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		out = append(out, alphabet[0])
	}

	// Digits were produced least significant first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return string(out)
}

// Decode converts base58 text back to raw bytes, failing on any
// character outside the alphabet.
func Decode(s string) ([]byte, error) {
	zeros := 0
	for zeros < len(s) && s[zeros] == alphabet[0] {
		zeros++
	}

	n := new(big.Int)
	for i := 0; i < len(s); i++ {
		d := decodeMap[s[i]]
		if d == 0xff {
			return nil, fmt.Errorf("%q at position %d: %w", s[i], i, ErrInvalidCharacter)
		}
		n.Mul(n, radix)
		n.Add(n, big.NewInt(int64(d)))
	}

	return append(make([]byte, zeros), n.Bytes()...), nil
}

// Checksum returns the first four bytes of the double sha256 of the input.
func Checksum(input []byte) []byte {
	return hashing.Hash256(input)[:4]
}

// CheckEncode prepends the version byte, appends the checksum over
// version plus payload, and base58 encodes the whole thing. Addresses
// and other check-encoded strings are produced this way.
func CheckEncode(version byte, payload []byte) string {
	full := make([]byte, 0, 1+len(payload)+4)
	full = append(full, version)
	full = append(full, payload...)
	full = append(full, Checksum(full)...)

	return Encode(full)
}

// CheckDecode reverses CheckEncode, returning the version byte and
// payload after validating the checksum.
func CheckDecode(s string) (byte, []byte, error) {
	full, err := Decode(s)
	if err != nil {
		return 0, nil, err
	}
	if len(full) < 5 {
		return 0, nil, ErrTooShort
	}

	body, sum := full[:len(full)-4], full[len(full)-4:]
	if !bytes.Equal(Checksum(body), sum) {
		return 0, nil, ErrChecksum
	}

	return body[0], body[1:], nil
}
