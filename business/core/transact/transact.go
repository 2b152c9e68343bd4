// Package transact provides the core business logic for constructing,
// signing and validating pay-to-pubkey-hash spends.
package transact

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/base58"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/keys"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/script"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/signature"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/tx"
)

// Set of errors for transaction construction and validation.
var (
	ErrNoInputs       = errors.New("transaction has no inputs")
	ErrNoOutputs      = errors.New("transaction has no outputs")
	ErrNotSigned      = errors.New("transaction is not signed")
	ErrOverspend      = errors.New("outputs exceed the funding amount")
	ErrWrongOwner     = errors.New("funding output is locked to a different key")
	ErrBadUnlocking   = errors.New("unlocking script failed to verify")
	ErrUnknownVersion = errors.New("unsupported address version")
)

// TxSource knows how to retrieve transactions by id. The explorer
// client satisfies this interface for live chain data.
type TxSource interface {
	Transaction(ctx context.Context, txid string) (*tx.Tx, error)
}

// =============================================================================

// funding captures the previous output an input is spending.
type funding struct {
	amount       uint64
	scriptPubKey script.Script
}

// Builder accumulates inputs and outputs for a new spend and signs
// the result. A Builder is good for one transaction.
type Builder struct {
	source   TxSource
	txn      tx.Tx
	fundings []funding
	signed   bool
}

// NewBuilder constructs a Builder that resolves funding outputs
// through the specified source.
func NewBuilder(source TxSource) *Builder {
	return &Builder{
		source: source,
		txn: tx.Tx{
			Version: 1,
		},
	}
}

// AddInput resolves the previous transaction, locates the output that
// pays the specified address, and records it as an input to spend.
func (b *Builder) AddInput(ctx context.Context, prevTxID string, address string) error {
	prev, err := b.source.Transaction(ctx, prevTxID)
	if err != nil {
		return fmt.Errorf("resolving previous tx: %w", err)
	}

	idx, err := prev.OutputIndexForAddress(address)
	if err != nil {
		return fmt.Errorf("locating funding output: %w", err)
	}

	id, err := tx.TxIDFromHex(prevTxID)
	if err != nil {
		return fmt.Errorf("parsing previous txid: %w", err)
	}

	b.txn.Inputs = append(b.txn.Inputs, tx.TxIn{
		PrevTxID:  id,
		PrevIndex: uint32(idx),
		Sequence:  tx.SequenceFinal,
	})
	b.fundings = append(b.fundings, funding{
		amount:       prev.Outputs[idx].Amount,
		scriptPubKey: prev.Outputs[idx].ScriptPubKey,
	})

	return nil
}

// AddOutput appends an output paying the specified amount of satoshi
// to the specified address.
func (b *Builder) AddOutput(address string, amount uint64) error {
	locking, err := LockingScript(address)
	if err != nil {
		return err
	}

	b.txn.Outputs = append(b.txn.Outputs, tx.TxOut{
		Amount:       amount,
		ScriptPubKey: locking,
	})

	return nil
}

// Sign produces an unlocking script for every input using the
// specified private key. All inputs must be spendable by that key.
func (b *Builder) Sign(key *keys.PrivateKey, src signature.Source) error {
	if len(b.txn.Inputs) == 0 {
		return ErrNoInputs
	}
	if len(b.txn.Outputs) == 0 {
		return ErrNoOutputs
	}

	sec := key.PublicKey().Bytes(true)

	for i := range b.txn.Inputs {
		z, err := b.txn.SigHash(i, b.fundings[i].scriptPubKey)
		if err != nil {
			return fmt.Errorf("computing signature hash for input %d: %w", i, err)
		}

		sig, err := signature.Sign(key, z, src)
		if err != nil {
			return fmt.Errorf("signing input %d: %w", i, err)
		}

		der := append(sig.MarshalDER(), byte(tx.SighashAll))
		b.txn.Inputs[i].ScriptSig = script.Unlocking(der, sec)
	}

	b.signed = true
	return nil
}

// Tx returns the signed transaction. It fails if Sign has not been
// called.
func (b *Builder) Tx() (*tx.Tx, error) {
	if !b.signed {
		return nil, ErrNotSigned
	}

	txn := b.txn
	return &txn, nil
}

// Funding returns the total satoshi value of the inputs gathered so
// far. The difference between this and the output total is the fee.
func (b *Builder) Funding() uint64 {
	var total uint64
	for _, f := range b.fundings {
		total += f.amount
	}
	return total
}

// =============================================================================

// LockingScript builds the pay-to-pubkey-hash locking script for a
// Base58Check address.
func LockingScript(address string) (script.Script, error) {
	_, pkhash, err := base58.CheckDecode(address)
	if err != nil {
		return nil, fmt.Errorf("decoding address: %w", err)
	}

	locking, err := script.PayToPubKeyHash(pkhash)
	if err != nil {
		return nil, fmt.Errorf("building locking script: %w", err)
	}

	return locking, nil
}

// Validate checks a signed pay-to-pubkey-hash spend against the chain:
// every input must exist, the outputs must not exceed the funding
// amount, the funding outputs must be locked to the signing key, and
// every unlocking script must verify against its locking script.
func Validate(ctx context.Context, source TxSource, txn *tx.Tx, pub keys.PublicKey) error {
	if len(txn.Inputs) == 0 {
		return ErrNoInputs
	}
	if len(txn.Outputs) == 0 {
		return ErrNoOutputs
	}

	var outputAmt uint64
	for _, out := range txn.Outputs {
		outputAmt += out.Amount
	}

	pkhash := pub.Hash160(true)

	var inputAmt uint64
	for i, in := range txn.Inputs {
		prev, err := source.Transaction(ctx, in.PrevTxID.String())
		if err != nil {
			return fmt.Errorf("resolving input %d: %w", i, err)
		}
		if int(in.PrevIndex) >= len(prev.Outputs) {
			return fmt.Errorf("input %d: %w", i, tx.ErrBadInputIndex)
		}

		utxo := prev.Outputs[in.PrevIndex]
		inputAmt += utxo.Amount

		if err := checkOwner(utxo.ScriptPubKey, pkhash); err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}

		z, err := txn.SigHash(i, utxo.ScriptPubKey)
		if err != nil {
			return fmt.Errorf("computing signature hash for input %d: %w", i, err)
		}

		if err := checkUnlocking(in.ScriptSig, utxo.ScriptPubKey, z); err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
	}

	if outputAmt > inputAmt {
		return ErrOverspend
	}

	return nil
}

// checkOwner verifies the locking script commits to the specified
// public key hash.
func checkOwner(locking script.Script, pkhash []byte) error {
	for _, cmd := range locking {
		if push, ok := cmd.(script.Push); ok && len(push) == 20 {
			if string(push) == string(pkhash) {
				return nil
			}
		}
	}
	return ErrWrongOwner
}

// checkUnlocking runs the combined unlocking and locking scripts
// against the signature hash.
func checkUnlocking(unlocking script.Script, locking script.Script, z *big.Int) error {
	if err := unlocking.Combine(locking).Evaluate(z); err != nil {
		return fmt.Errorf("%w: %s", ErrBadUnlocking, err)
	}
	return nil
}
