package signature

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidDER indicates bytes that do not form a well formed DER
// encoded signature.
var ErrInvalidDER = errors.New("invalid DER signature")

const (
	derSequence = 0x30
	derInteger  = 0x02
)

// MarshalDER encodes the signature as a DER SEQUENCE of two INTEGERs.
// Each value is minimally encoded with a leading zero byte when the
// high bit of the first content byte is set.
func (sig Signature) MarshalDER() []byte {
	r := derInt(sig.R)
	s := derInt(sig.S)

	out := make([]byte, 0, 2+len(r)+len(s))
	out = append(out, derSequence, byte(len(r)+len(s)))
	out = append(out, r...)
	out = append(out, s...)
	return out
}

// ParseDER decodes a DER encoded signature. The encoding must be exact:
// trailing bytes after the sequence are an error. Callers dealing with
// script signatures strip the sighash byte first.
func ParseDER(der []byte) (Signature, error) {
	if len(der) < 2 || der[0] != derSequence {
		return Signature{}, fmt.Errorf("%w: missing sequence marker", ErrInvalidDER)
	}
	if int(der[1]) != len(der)-2 {
		return Signature{}, fmt.Errorf("%w: bad length", ErrInvalidDER)
	}

	r, rest, err := parseDERInt(der[2:])
	if err != nil {
		return Signature{}, err
	}
	s, rest, err := parseDERInt(rest)
	if err != nil {
		return Signature{}, err
	}
	if len(rest) != 0 {
		return Signature{}, fmt.Errorf("%w: trailing bytes", ErrInvalidDER)
	}

	return Signature{R: r, S: s}, nil
}

// derInt encodes a single INTEGER element, tag and length included.
func derInt(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) == 0 {
		b = []byte{0x00}
	}
	if b[0]&0x80 != 0 {
		b = append([]byte{0x00}, b...)
	}

	out := make([]byte, 0, 2+len(b))
	out = append(out, derInteger, byte(len(b)))
	return append(out, b...)
}

// parseDERInt decodes one INTEGER element and returns the remainder.
func parseDERInt(b []byte) (*big.Int, []byte, error) {
	if len(b) < 2 || b[0] != derInteger {
		return nil, nil, fmt.Errorf("%w: missing integer marker", ErrInvalidDER)
	}

	n := int(b[1])
	if n == 0 || len(b) < 2+n {
		return nil, nil, fmt.Errorf("%w: truncated integer", ErrInvalidDER)
	}

	return new(big.Int).SetBytes(b[2 : 2+n]), b[2+n:], nil
}
