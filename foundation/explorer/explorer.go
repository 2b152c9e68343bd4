// Package explorer is a client for the Blockstream esplora HTTP API.
// It is how the services fetch previous transactions, address activity
// and block data, and how signed transactions reach the network.
package explorer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/block"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/tx"
)

// Public esplora base URLs.
const (
	MainnetURL = "https://blockstream.info/api"
	TestnetURL = "https://blockstream.info/testnet/api"
)

// EvHandler defines a function that will be called to produce events
// for higher levels of the application during API activity.
type EvHandler func(v string, args ...any)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (se *StatusError) Error() string {
	return fmt.Sprintf("api status %d: %s", se.StatusCode, se.Body)
}

// =============================================================================

// Config holds the dependencies for constructing a Client.
type Config struct {
	URL       string
	Cache     *Cache
	EvHandler EvHandler
	Client    *http.Client
}

// Client provides access to the esplora API with an optional local
// cache for raw transactions.
type Client struct {
	url    string
	cache  *Cache
	ev     EvHandler
	client *http.Client
}

// New constructs a Client. The cache may be nil, in which case every
// lookup goes to the network.
func New(cfg Config) *Client {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		url:    strings.TrimRight(cfg.URL, "/"),
		cache:  cfg.Cache,
		ev:     ev,
		client: client,
	}
}

// =============================================================================

// RawTransaction returns the wire bytes of a transaction, from the
// cache when possible.
func (c *Client) RawTransaction(ctx context.Context, txid string) ([]byte, error) {
	if c.cache != nil {
		raw, found, err := c.cache.Transaction(txid)
		if err != nil {
			return nil, err
		}
		if found {
			c.ev("explorer: tx %s: cache hit", txid)
			return raw, nil
		}
	}

	c.ev("explorer: tx %s: fetching", txid)

	body, err := c.get(ctx, fmt.Sprintf("/tx/%s/hex", txid))
	if err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("decoding tx hex: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.StoreTransaction(txid, raw); err != nil {
			return nil, err
		}
	}

	return raw, nil
}

// Transaction returns the decoded transaction for a txid.
func (c *Client) Transaction(ctx context.Context, txid string) (*tx.Tx, error) {
	raw, err := c.RawTransaction(ctx, txid)
	if err != nil {
		return nil, err
	}

	txn, err := tx.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding tx %s: %w", txid, err)
	}

	return txn, nil
}

// =============================================================================

// AddressTx is one entry of an address's transaction history.
type AddressTx struct {
	TxID   string `json:"txid"`
	Fee    uint64 `json:"fee"`
	Status struct {
		Confirmed   bool   `json:"confirmed"`
		BlockHeight int    `json:"block_height"`
		BlockHash   string `json:"block_hash"`
	} `json:"status"`
	Vout []struct {
		ScriptPubKey string `json:"scriptpubkey"`
		Address      string `json:"scriptpubkey_address"`
		Value        uint64 `json:"value"`
	} `json:"vout"`
}

// AddressTxs returns the recent transaction history for an address.
func (c *Client) AddressTxs(ctx context.Context, address string) ([]AddressTx, error) {
	c.ev("explorer: address %s: fetching txs", address)

	body, err := c.get(ctx, fmt.Sprintf("/address/%s/txs", address))
	if err != nil {
		return nil, err
	}

	var txs []AddressTx
	if err := json.Unmarshal(body, &txs); err != nil {
		return nil, fmt.Errorf("decoding address txs: %w", err)
	}

	return txs, nil
}

// AddressStats carries the chain totals for an address.
type AddressStats struct {
	Address    string `json:"address"`
	ChainStats struct {
		FundedSum uint64 `json:"funded_txo_sum"`
		SpentSum  uint64 `json:"spent_txo_sum"`
		TxCount   int    `json:"tx_count"`
	} `json:"chain_stats"`
}

// Balance returns the confirmed balance in satoshi.
func (s AddressStats) Balance() uint64 {
	return s.ChainStats.FundedSum - s.ChainStats.SpentSum
}

// AddressStats returns the chain totals for an address.
func (c *Client) AddressStats(ctx context.Context, address string) (AddressStats, error) {
	c.ev("explorer: address %s: fetching stats", address)

	body, err := c.get(ctx, fmt.Sprintf("/address/%s", address))
	if err != nil {
		return AddressStats{}, err
	}

	var stats AddressStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return AddressStats{}, fmt.Errorf("decoding address stats: %w", err)
	}

	return stats, nil
}

// =============================================================================

// BlockHeader returns the decoded 80 byte header for a block id.
func (c *Client) BlockHeader(ctx context.Context, blockID string) (*block.Header, error) {
	c.ev("explorer: block %s: fetching header", blockID)

	body, err := c.get(ctx, fmt.Sprintf("/block/%s/header", blockID))
	if err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("decoding header hex: %w", err)
	}

	return block.Decode(raw)
}

// BlockTxIDs returns the ordered txids of a block in display order.
func (c *Client) BlockTxIDs(ctx context.Context, blockID string) ([]string, error) {
	c.ev("explorer: block %s: fetching txids", blockID)

	body, err := c.get(ctx, fmt.Sprintf("/block/%s/txids", blockID))
	if err != nil {
		return nil, err
	}

	var txids []string
	if err := json.Unmarshal(body, &txids); err != nil {
		return nil, fmt.Errorf("decoding block txids: %w", err)
	}

	return txids, nil
}

// Block returns the header and the ordered txids for a block id.
func (c *Client) Block(ctx context.Context, blockID string) (*block.Header, []string, error) {
	header, err := c.BlockHeader(ctx, blockID)
	if err != nil {
		return nil, nil, err
	}

	txids, err := c.BlockTxIDs(ctx, blockID)
	if err != nil {
		return nil, nil, err
	}

	return header, txids, nil
}

// =============================================================================

// Broadcast submits a signed transaction to the network and returns
// the txid the network assigned.
func (c *Client) Broadcast(ctx context.Context, raw []byte) (string, error) {
	c.ev("explorer: broadcasting %d byte tx", len(raw))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/tx", strings.NewReader(hex.EncodeToString(raw)))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting tx: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return strings.TrimSpace(string(body)), nil
}

// =============================================================================

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
