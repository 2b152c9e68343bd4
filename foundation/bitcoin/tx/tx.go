// Package tx implements the legacy Bitcoin transaction binary format:
// construction, serialization, decoding and the SIGHASH_ALL commitment
// digest inputs are signed over.
package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/base58"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/hashing"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/script"
)

// SighashAll is the only signature hash type supported: the signature
// commits to every input and output.
const SighashAll uint32 = 1

// SequenceFinal disables relative locktime semantics for an input.
const SequenceFinal uint32 = 0xffffffff

var (
	// ErrTruncated indicates transaction bytes that end mid field.
	ErrTruncated = errors.New("truncated transaction")

	// ErrNoMatchingOutput indicates no output pays the given address.
	ErrNoMatchingOutput = errors.New("no output pays the address")

	// ErrBadInputIndex indicates a signature hash request for an input
	// the transaction does not have.
	ErrBadInputIndex = errors.New("input index out of range")
)

// =============================================================================

// TxID is a transaction identifier held in wire order. The conventional
// display form reverses the bytes.
type TxID [32]byte

// TxIDFromHex parses a display order (reversed) hex identifier.
func TxIDFromHex(s string) (TxID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return TxID{}, fmt.Errorf("decoding txid hex: %w", err)
	}
	if len(b) != 32 {
		return TxID{}, fmt.Errorf("txid must be 32 bytes, got %d", len(b))
	}

	var id TxID
	for i := range b {
		id[i] = b[31-i]
	}
	return id, nil
}

// String renders the identifier in display order.
func (id TxID) String() string {
	var rev [32]byte
	for i := range id {
		rev[i] = id[31-i]
	}
	return hex.EncodeToString(rev[:])
}

// =============================================================================

// TxIn spends one output of a previous transaction.
type TxIn struct {
	PrevTxID  TxID
	PrevIndex uint32
	ScriptSig script.Script
	Sequence  uint32
}

// TxOut locks an amount of satoshi behind a script.
type TxOut struct {
	Amount       uint64
	ScriptPubKey script.Script
}

// Tx is a complete transaction.
type Tx struct {
	Version  uint32
	Inputs   []TxIn
	Outputs  []TxOut
	Locktime uint32
}

// =============================================================================

// Serialize encodes the transaction in the legacy wire format.
func (t *Tx) Serialize() ([]byte, error) {
	return t.encode(-1, nil)
}

// encode writes the transaction. When sigIdx is non-negative the script
// of input sigIdx is replaced with sigScript and every other input
// script is emptied, producing the SIGHASH_ALL preimage body.
func (t *Tx) encode(sigIdx int, sigScript script.Script) ([]byte, error) {
	var buf bytes.Buffer

	writeUint32(&buf, t.Version)

	script.WriteCompactSize(&buf, uint64(len(t.Inputs)))
	for i, in := range t.Inputs {
		buf.Write(in.PrevTxID[:])
		writeUint32(&buf, in.PrevIndex)

		ss := in.ScriptSig
		switch {
		case sigIdx < 0:
		case sigIdx == i:
			ss = sigScript
		default:
			ss = script.Script{}
		}

		raw, err := ss.Serialize()
		if err != nil {
			return nil, fmt.Errorf("serializing input %d script: %w", i, err)
		}
		buf.Write(raw)

		writeUint32(&buf, in.Sequence)
	}

	script.WriteCompactSize(&buf, uint64(len(t.Outputs)))
	for i, out := range t.Outputs {
		writeUint64(&buf, out.Amount)

		raw, err := out.ScriptPubKey.Serialize()
		if err != nil {
			return nil, fmt.Errorf("serializing output %d script: %w", i, err)
		}
		buf.Write(raw)
	}

	writeUint32(&buf, t.Locktime)

	if sigIdx >= 0 {
		writeUint32(&buf, SighashAll)
	}

	return buf.Bytes(), nil
}

// Hash returns the double SHA-256 of the serialization in wire order.
func (t *Tx) Hash() (TxID, error) {
	raw, err := t.Serialize()
	if err != nil {
		return TxID{}, err
	}

	var id TxID
	copy(id[:], hashing.Hash256(raw))
	return id, nil
}

// ID returns the display order hex identifier.
func (t *Tx) ID() (string, error) {
	h, err := t.Hash()
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

// SigHash computes the SIGHASH_ALL digest an input signs: the
// transaction with input i's script replaced by the previous output's
// locking script and all other input scripts emptied, the hash type
// appended, double hashed and read as a big endian integer.
func (t *Tx) SigHash(i int, prevScriptPubKey script.Script) (*big.Int, error) {
	if i < 0 || i >= len(t.Inputs) {
		return nil, fmt.Errorf("%w: %d of %d", ErrBadInputIndex, i, len(t.Inputs))
	}

	preimage, err := t.encode(i, prevScriptPubKey)
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetBytes(hashing.Hash256(preimage)), nil
}

// OutputIndexForAddress returns the index of the first output whose
// locking script pushes the pubkey hash of the Base58Check address.
func (t *Tx) OutputIndexForAddress(addr string) (int, error) {
	_, pkhash, err := base58.CheckDecode(addr)
	if err != nil {
		return 0, fmt.Errorf("decoding address: %w", err)
	}

	for i, out := range t.Outputs {
		for _, cmd := range out.ScriptPubKey {
			push, ok := cmd.(script.Push)
			if ok && bytes.Equal(push, pkhash) {
				return i, nil
			}
		}
	}

	return 0, ErrNoMatchingOutput
}

// =============================================================================

// Decode parses a transaction from its wire bytes. A segwit marker is
// tolerated; witness data is read and discarded so the legacy fields
// come back intact.
func Decode(raw []byte) (*Tx, error) {
	r := bytes.NewReader(raw)

	var t Tx
	var err error

	if t.Version, err = readUint32(r); err != nil {
		return nil, fmt.Errorf("%w: version", ErrTruncated)
	}

	numInputs, err := script.ReadCompactSize(r)
	if err != nil {
		return nil, fmt.Errorf("%w: input count", ErrTruncated)
	}

	segwit := false
	if numInputs == 0 {
		flag, err := r.ReadByte()
		if err != nil || flag != 0x01 {
			return nil, fmt.Errorf("%w: segwit flag", ErrTruncated)
		}
		segwit = true

		if numInputs, err = script.ReadCompactSize(r); err != nil {
			return nil, fmt.Errorf("%w: input count", ErrTruncated)
		}
	}

	t.Inputs = make([]TxIn, 0, numInputs)
	for i := uint64(0); i < numInputs; i++ {
		var in TxIn

		if _, err := io.ReadFull(r, in.PrevTxID[:]); err != nil {
			return nil, fmt.Errorf("%w: input %d prev txid", ErrTruncated, i)
		}
		if in.PrevIndex, err = readUint32(r); err != nil {
			return nil, fmt.Errorf("%w: input %d prev index", ErrTruncated, i)
		}
		if in.ScriptSig, err = script.Parse(r); err != nil {
			return nil, fmt.Errorf("input %d script: %w", i, err)
		}
		if in.Sequence, err = readUint32(r); err != nil {
			return nil, fmt.Errorf("%w: input %d sequence", ErrTruncated, i)
		}

		t.Inputs = append(t.Inputs, in)
	}

	numOutputs, err := script.ReadCompactSize(r)
	if err != nil {
		return nil, fmt.Errorf("%w: output count", ErrTruncated)
	}

	t.Outputs = make([]TxOut, 0, numOutputs)
	for i := uint64(0); i < numOutputs; i++ {
		var out TxOut

		if out.Amount, err = readUint64(r); err != nil {
			return nil, fmt.Errorf("%w: output %d amount", ErrTruncated, i)
		}
		if out.ScriptPubKey, err = script.Parse(r); err != nil {
			return nil, fmt.Errorf("output %d script: %w", i, err)
		}

		t.Outputs = append(t.Outputs, out)
	}

	if segwit {
		if err := discardWitnesses(r, len(t.Inputs)); err != nil {
			return nil, err
		}
	}

	if t.Locktime, err = readUint32(r); err != nil {
		return nil, fmt.Errorf("%w: locktime", ErrTruncated)
	}

	return &t, nil
}

func discardWitnesses(r *bytes.Reader, inputs int) error {
	for i := 0; i < inputs; i++ {
		items, err := script.ReadCompactSize(r)
		if err != nil {
			return fmt.Errorf("%w: witness count", ErrTruncated)
		}
		for j := uint64(0); j < items; j++ {
			n, err := script.ReadCompactSize(r)
			if err != nil {
				return fmt.Errorf("%w: witness item length", ErrTruncated)
			}
			if _, err := r.Seek(int64(n), io.SeekCurrent); err != nil {
				return fmt.Errorf("%w: witness item", ErrTruncated)
			}
		}
	}
	return nil
}

// =============================================================================

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
