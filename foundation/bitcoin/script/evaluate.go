package script

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/hashing"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/keys"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/signature"
)

var (
	// ErrScriptFailed indicates the program ran to completion but did
	// not leave a truthy value on the stack.
	ErrScriptFailed = errors.New("script evaluated to false")

	// ErrStackUnderflow indicates an opcode needed more stack items
	// than were present.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrUnsupportedOpcode indicates an opcode outside the supported
	// P2PKH set.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
)

// Evaluate runs the script against the signature hash z and reports
// whether it succeeds: no opcode fails and execution ends with exactly
// one truthy value on the stack. Only the opcodes of the P2PKH
// template are implemented; anything else is an error.
func (s Script) Evaluate(z *big.Int) error {
	var stack [][]byte

	pop := func() ([]byte, bool) {
		if len(stack) == 0 {
			return nil, false
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top, true
	}

	for _, cmd := range s {
		push, ok := cmd.(Push)
		if ok {
			stack = append(stack, push)
			continue
		}

		op := cmd.(Opcode)
		switch byte(op) {
		case OpDup:
			if len(stack) == 0 {
				return fmt.Errorf("%w: OP_DUP", ErrStackUnderflow)
			}
			stack = append(stack, stack[len(stack)-1])

		case OpHash160:
			top, ok := pop()
			if !ok {
				return fmt.Errorf("%w: OP_HASH160", ErrStackUnderflow)
			}
			stack = append(stack, hashing.Hash160(top))

		case OpEqualVerify:
			a, okA := pop()
			b, okB := pop()
			if !okA || !okB {
				return fmt.Errorf("%w: OP_EQUALVERIFY", ErrStackUnderflow)
			}
			if !bytes.Equal(a, b) {
				return fmt.Errorf("%w: OP_EQUALVERIFY mismatch", ErrScriptFailed)
			}

		case OpCheckSig:
			sec, okSec := pop()
			sigBytes, okSig := pop()
			if !okSec || !okSig {
				return fmt.Errorf("%w: OP_CHECKSIG", ErrStackUnderflow)
			}
			if err := checkSig(sec, sigBytes, z); err != nil {
				return err
			}
			stack = append(stack, []byte{0x01})

		default:
			return fmt.Errorf("%w: %d", ErrUnsupportedOpcode, op)
		}
	}

	// Exactly one truthy value must remain. Leftover items mean the
	// program did not consume its inputs.
	if len(stack) != 1 || !truthy(stack[0]) {
		return ErrScriptFailed
	}

	return nil
}

// checkSig verifies a script signature: the last byte is the sighash
// type, the rest is DER.
func checkSig(sec []byte, sigBytes []byte, z *big.Int) error {
	if len(sigBytes) < 1 {
		return fmt.Errorf("%w: empty signature", ErrScriptFailed)
	}

	pub, err := keys.ParsePublicKey(sec)
	if err != nil {
		return fmt.Errorf("%w: parsing pubkey: %v", ErrScriptFailed, err)
	}

	sig, err := signature.ParseDER(sigBytes[:len(sigBytes)-1])
	if err != nil {
		return fmt.Errorf("%w: parsing signature: %v", ErrScriptFailed, err)
	}

	if !signature.Verify(pub, z, sig) {
		return fmt.Errorf("%w: signature mismatch", ErrScriptFailed)
	}

	return nil
}

// truthy follows script truth: empty and all zero (with 0x80 negative
// zero allowed in the top byte) are false.
func truthy(b []byte) bool {
	for i, v := range b {
		if v != 0 {
			if i == len(b)-1 && v == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}
