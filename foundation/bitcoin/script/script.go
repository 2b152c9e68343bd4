// Package script models the Bitcoin locking and unlocking programs
// attached to transaction outputs and inputs. The model covers the
// pay-to-pubkey-hash template: arbitrary data pushes plus the handful of
// opcodes that template executes.
package script

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Opcodes used by the pay-to-pubkey-hash template.
const (
	OpDup         byte = 118
	OpEqualVerify byte = 136
	OpHash160     byte = 169
	OpCheckSig    byte = 172
)

// Pushdata markers. A push of up to 75 bytes is encoded as its own
// length; longer pushes use an explicit marker.
const (
	opPushData1 byte = 76
	opPushData2 byte = 77

	maxDirectPush = 75
	maxPush       = 520
)

var (
	// ErrPushTooLong indicates a data push above the 520 byte consensus
	// limit.
	ErrPushTooLong = errors.New("push exceeds 520 bytes")

	// ErrMalformed indicates bytes that do not decode to a script.
	ErrMalformed = errors.New("malformed script")
)

// =============================================================================

// Command is one element of a script: either an opcode or a data push.
type Command interface {
	isCommand()
}

// Opcode is a single-byte operation.
type Opcode byte

func (Opcode) isCommand() {}

// Push places the wrapped bytes on the stack.
type Push []byte

func (Push) isCommand() {}

// =============================================================================

// Script is an ordered list of commands.
type Script []Command

// PayToPubKeyHash constructs the standard locking script for a 20 byte
// public key hash: OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG.
func PayToPubKeyHash(pubKeyHash []byte) (Script, error) {
	if len(pubKeyHash) != 20 {
		return nil, fmt.Errorf("pubkey hash must be 20 bytes, got %d", len(pubKeyHash))
	}

	return Script{
		Opcode(OpDup),
		Opcode(OpHash160),
		Push(pubKeyHash),
		Opcode(OpEqualVerify),
		Opcode(OpCheckSig),
	}, nil
}

// Unlocking constructs the script_sig that satisfies a P2PKH lock: the
// DER signature with its sighash byte followed by the SEC public key.
func Unlocking(sigWithHashType []byte, secPubKey []byte) Script {
	return Script{Push(sigWithHashType), Push(secPubKey)}
}

// Combine prepends the unlocking script to the locking script, producing
// the program that execution runs.
func (s Script) Combine(locking Script) Script {
	out := make(Script, 0, len(s)+len(locking))
	out = append(out, s...)
	return append(out, locking...)
}

// =============================================================================

// Serialize encodes the script with its varint byte-length prefix, the
// form scripts take inside a transaction.
func (s Script) Serialize() ([]byte, error) {
	body, err := s.encodeBody()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	WriteCompactSize(&buf, uint64(len(body)))
	buf.Write(body)
	return buf.Bytes(), nil
}

func (s Script) encodeBody() ([]byte, error) {
	var buf bytes.Buffer

	for _, cmd := range s {
		switch c := cmd.(type) {
		case Opcode:
			buf.WriteByte(byte(c))

		case Push:
			switch n := len(c); {
			case n <= maxDirectPush:
				buf.WriteByte(byte(n))

			case n <= 0xff:
				buf.WriteByte(opPushData1)
				buf.WriteByte(byte(n))

			case n <= maxPush:
				buf.WriteByte(opPushData2)
				buf.WriteByte(byte(n))
				buf.WriteByte(byte(n >> 8))

			default:
				return nil, fmt.Errorf("%w: %d", ErrPushTooLong, n)
			}
			buf.Write(c)

		default:
			return nil, fmt.Errorf("unknown command type %T", cmd)
		}
	}

	return buf.Bytes(), nil
}

// Parse decodes a script from a reader carrying a varint length prefix
// followed by that many bytes of commands.
func Parse(r *bytes.Reader) (Script, error) {
	length, err := ReadCompactSize(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading length: %v", ErrMalformed, err)
	}

	var s Script
	var read uint64

	for read < length {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated at byte %d", ErrMalformed, read)
		}
		read++

		var n uint64
		switch {
		case b >= 1 && b <= maxDirectPush:
			n = uint64(b)

		case b == opPushData1:
			l, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: truncated pushdata1 length", ErrMalformed)
			}
			read++
			n = uint64(l)

		case b == opPushData2:
			var l [2]byte
			if _, err := io.ReadFull(r, l[:]); err != nil {
				return nil, fmt.Errorf("%w: truncated pushdata2 length", ErrMalformed)
			}
			read += 2
			n = uint64(l[0]) | uint64(l[1])<<8

		default:
			s = append(s, Opcode(b))
			continue
		}

		data := make([]byte, n)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("%w: truncated push of %d bytes", ErrMalformed, n)
		}
		read += n
		s = append(s, Push(data))
	}

	if read != length {
		return nil, fmt.Errorf("%w: commands overrun declared length", ErrMalformed)
	}

	return s, nil
}

// Bytes encodes the script commands without the length prefix, the
// form block explorers display.
func (s Script) Bytes() ([]byte, error) {
	return s.encodeBody()
}

// String renders the script in a readable assembly form.
func (s Script) String() string {
	parts := make([]string, len(s))
	for i, cmd := range s {
		switch c := cmd.(type) {
		case Opcode:
			parts[i] = opcodeName(byte(c))
		case Push:
			parts[i] = hex.EncodeToString(c)
		}
	}
	return strings.Join(parts, " ")
}

func opcodeName(b byte) string {
	switch b {
	case OpDup:
		return "OP_DUP"
	case OpEqualVerify:
		return "OP_EQUALVERIFY"
	case OpHash160:
		return "OP_HASH160"
	case OpCheckSig:
		return "OP_CHECKSIG"
	}
	return fmt.Sprintf("OP_%d", b)
}

// Equal reports whether two scripts hold the same commands.
func (s Script) Equal(other Script) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		a, aOK := s[i].(Push)
		b, bOK := other[i].(Push)
		if aOK != bOK {
			return false
		}
		if aOK {
			if !bytes.Equal(a, b) {
				return false
			}
			continue
		}
		if s[i].(Opcode) != other[i].(Opcode) {
			return false
		}
	}
	return true
}
