// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ardanlabs/bitcoin/business/sys/validate"
	"github.com/ardanlabs/bitcoin/business/web/errs"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/merkle"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/tx"
	"github.com/ardanlabs/bitcoin/foundation/events"
	"github.com/ardanlabs/bitcoin/foundation/explorer"
	"github.com/ardanlabs/bitcoin/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of explorer endpoints.
type Handlers struct {
	Log      *zap.SugaredLogger
	Explorer *explorer.Client
	WS       websocket.Upgrader
	Evts     *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Address returns the balance and activity totals for an address.
func (h Handlers) Address(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	stats, err := h.Explorer.AddressStats(ctx, address)
	if err != nil {
		return upstream(err)
	}

	info := addressInfo{
		Address: stats.Address,
		Balance: stats.Balance(),
		Funded:  stats.ChainStats.FundedSum,
		Spent:   stats.ChainStats.SpentSum,
		TxCount: stats.ChainStats.TxCount,
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// AddressTxs returns the recent transaction history for an address.
func (h Handlers) AddressTxs(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	history, err := h.Explorer.AddressTxs(ctx, address)
	if err != nil {
		return upstream(err)
	}

	txs := make([]addressTx, len(history))
	for i, entry := range history {
		txs[i] = addressTx{
			TxID:        entry.TxID,
			Fee:         entry.Fee,
			Confirmed:   entry.Status.Confirmed,
			BlockHeight: entry.Status.BlockHeight,
		}
	}

	return web.Respond(ctx, w, txs, http.StatusOK)
}

// Transaction returns a decoded transaction.
func (h Handlers) Transaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txid := web.Param(r, "txid")

	if _, err := tx.TxIDFromHex(txid); err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid txid: %w", err), http.StatusBadRequest)
	}

	txn, err := h.Explorer.Transaction(ctx, txid)
	if err != nil {
		return upstream(err)
	}

	model, err := toTxModel(txn)
	if err != nil {
		return fmt.Errorf("rendering tx %s: %w", txid, err)
	}

	return web.Respond(ctx, w, model, http.StatusOK)
}

// Block returns a decoded block header with its transaction ids. The
// merkle root is recomputed from the ids and checked against the header.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blockID := web.Param(r, "blockid")

	header, txids, err := h.Explorer.Block(ctx, blockID)
	if err != nil {
		return upstream(err)
	}

	tree, err := merkle.FromDisplayOrder(txids)
	if err != nil {
		return fmt.Errorf("building merkle tree for block %s: %w", blockID, err)
	}

	diff := header.Difficulty()
	floor := new(big.Int).Quo(diff.Num(), diff.Denom())

	info := blockInfo{
		ID:           header.ID(),
		Version:      header.Version,
		PrevBlock:    header.PrevBlock.String(),
		MerkleRoot:   header.MerkleRoot.String(),
		MerkleValid:  tree.RootHex() == header.MerkleRoot.String(),
		Timestamp:    header.Timestamp,
		Bits:         header.Bits,
		Difficulty:   floor.String(),
		ValidPoW:     header.CheckProofOfWork(),
		Transactions: txids,
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// SubmitTransaction broadcasts a signed raw transaction to the network.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req submitTx
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}
	if err := validate.Check(req); err != nil {
		return err
	}

	raw, err := hex.DecodeString(req.Tx)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid tx hex: %w", err), http.StatusBadRequest)
	}

	// Reject bytes that do not even decode before spending a network call.
	txn, err := tx.Decode(raw)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid transaction: %w", err), http.StatusBadRequest)
	}
	id, err := txn.ID()
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid transaction: %w", err), http.StatusBadRequest)
	}

	h.Log.Infow("broadcast tx", "traceid", v.TraceID, "txid", id)

	txid, err := h.Explorer.Broadcast(ctx, raw)
	if err != nil {
		return upstream(err)
	}

	resp := submitResult{
		TxID:   txid,
		Status: "transaction broadcast",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// toTxModel converts a wire transaction into its API representation.
func toTxModel(txn *tx.Tx) (transaction, error) {
	id, err := txn.ID()
	if err != nil {
		return transaction{}, err
	}

	inputs := make([]txIn, len(txn.Inputs))
	for i, in := range txn.Inputs {
		sigHex, err := in.ScriptSig.Bytes()
		if err != nil {
			return transaction{}, err
		}
		inputs[i] = txIn{
			PrevTxID:  in.PrevTxID.String(),
			PrevIndex: in.PrevIndex,
			ScriptSig: hex.EncodeToString(sigHex),
			Sequence:  in.Sequence,
		}
	}

	outputs := make([]txOut, len(txn.Outputs))
	for i, out := range txn.Outputs {
		pkHex, err := out.ScriptPubKey.Bytes()
		if err != nil {
			return transaction{}, err
		}
		outputs[i] = txOut{
			Amount:       out.Amount,
			ScriptPubKey: hex.EncodeToString(pkHex),
			Script:       out.ScriptPubKey.String(),
		}
	}

	return transaction{
		TxID:     id,
		Version:  txn.Version,
		Inputs:   inputs,
		Outputs:  outputs,
		Locktime: txn.Locktime,
	}, nil
}

// upstream maps explorer client failures to trusted API errors where
// the cause is the caller's request.
func upstream(err error) error {
	var se *explorer.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusNotFound:
			return errs.NewTrusted(errors.New("not found"), http.StatusNotFound)
		case http.StatusBadRequest:
			return errs.NewTrusted(errors.New(se.Body), http.StatusBadRequest)
		}
	}
	return err
}
