package explorer_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ardanlabs/bitcoin/foundation/explorer"
)

const (
	success = "✓"
	failed  = "✗"
)

const (
	testTxID  = "b31da0b874c3b95b29f4df5c90e8620f70790d2f5982e6706dfdd9ed04556ec7"
	testTxHex = "0100000001d428388e59e701cbed6825a37c66786d403eb9e7aca043f5fcdb0b39faa4f1aa010000005d47304402201af22482425c6ca93c1a88dc4adf4cb5933522bb498ace0b52e8176800f121cd02204fc75b2f6af2251ea4678de7b19361d8b64f93e5535687972509e650b3755dc2011432cf8a0b81f63473be3f88efe281f4b1f13c857effffffff0290d00300000000001976a914c3ed7acbba3080a947ce28eab9789cb0273cf8cf88acc0b60600000000001976a91432cf8a0b81f63473be3f88efe281f4b1f13c857e88ac00000000"

	genesisID        = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	genesisHeaderHex = "0100000000000000000000000000000000000000000000000000000000000000000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a29ab5f49ffff001d1dac2b7c"
)

func Test_TransactionCaching(t *testing.T) {
	var hits int

	mux := http.NewServeMux()
	mux.HandleFunc("/tx/"+testTxID+"/hex", func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, testTxHex)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	cache, err := explorer.NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open the cache: %v", failed, err)
	}
	defer cache.Close()

	client := explorer.New(explorer.Config{URL: srv.URL, Cache: cache})

	t.Log("Given the need to cache raw transactions.")
	{
		t.Logf("\tTest 0:\tWhen fetching the same transaction twice.")
		{
			txn, err := client.Transaction(context.Background(), testTxID)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to fetch the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to fetch the transaction.", success)

			id, err := txn.ID()
			if err != nil || id != testTxID {
				t.Errorf("\t%s\tTest 0:\tShould decode to the expected txid: %s %v", failed, id, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould decode to the expected txid.", success)
			}

			if _, err := client.RawTransaction(context.Background(), testTxID); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to fetch again: %v", failed, err)
			}

			if hits != 1 {
				t.Errorf("\t%s\tTest 0:\tShould hit the API once, got %d.", failed, hits)
			} else {
				t.Logf("\t%s\tTest 0:\tShould hit the API once.", success)
			}
		}
	}
}

func Test_AddressLookups(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/address/myaddr", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"address":"myaddr","chain_stats":{"funded_txo_sum":150000,"spent_txo_sum":50000,"tx_count":3}}`)
	})
	mux.HandleFunc("/address/myaddr/txs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"txid":"`+testTxID+`","fee":500,"status":{"confirmed":true,"block_height":12},"vout":[{"scriptpubkey_address":"myaddr","value":100000}]}]`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := explorer.New(explorer.Config{URL: srv.URL})

	t.Log("Given the need to inspect address activity.")
	{
		t.Logf("\tTest 0:\tWhen fetching address stats.")
		{
			stats, err := client.AddressStats(context.Background(), "myaddr")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to fetch the stats: %v", failed, err)
			}

			if stats.Balance() != 100000 {
				t.Errorf("\t%s\tTest 0:\tShould get balance 100000, got %d.", failed, stats.Balance())
			} else {
				t.Logf("\t%s\tTest 0:\tShould get balance 100000.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen fetching the transaction history.")
		{
			txs, err := client.AddressTxs(context.Background(), "myaddr")
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to fetch the history: %v", failed, err)
			}

			if len(txs) != 1 || txs[0].TxID != testTxID || !txs[0].Status.Confirmed {
				t.Errorf("\t%s\tTest 1:\tShould get the expected entry.", failed)
			} else {
				t.Logf("\t%s\tTest 1:\tShould get the expected entry.", success)
			}
		}
	}
}

func Test_BlockLookups(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/block/"+genesisID+"/header", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, genesisHeaderHex)
	})
	mux.HandleFunc("/block/"+genesisID+"/txids", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `["4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"]`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := explorer.New(explorer.Config{URL: srv.URL})

	t.Log("Given the need to fetch block data.")
	{
		t.Logf("\tTest 0:\tWhen fetching the genesis block.")
		{
			header, txids, err := client.Block(context.Background(), genesisID)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to fetch the block: %v", failed, err)
			}

			if header.ID() != genesisID {
				t.Errorf("\t%s\tTest 0:\tShould decode to the genesis id, got %s.", failed, header.ID())
			} else {
				t.Logf("\t%s\tTest 0:\tShould decode to the genesis id.", success)
			}

			if len(txids) != 1 {
				t.Errorf("\t%s\tTest 0:\tShould get one txid, got %d.", failed, len(txids))
			} else {
				t.Logf("\t%s\tTest 0:\tShould get one txid.", success)
			}
		}
	}
}

func Test_Broadcast(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tx", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		fmt.Fprint(w, testTxID)
	})
	mux.HandleFunc("/fail/tx", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sendrawtransaction RPC error", http.StatusBadRequest)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Log("Given the need to broadcast signed transactions.")
	{
		t.Logf("\tTest 0:\tWhen the network accepts the transaction.")
		{
			client := explorer.New(explorer.Config{URL: srv.URL})

			id, err := client.Broadcast(context.Background(), []byte{0x01, 0x02})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to broadcast: %v", failed, err)
			}

			if id != testTxID {
				t.Errorf("\t%s\tTest 0:\tShould get the returned txid, got %s.", failed, id)
			} else {
				t.Logf("\t%s\tTest 0:\tShould get the returned txid.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen the network rejects the transaction.")
		{
			client := explorer.New(explorer.Config{URL: srv.URL + "/fail"})

			_, err := client.Broadcast(context.Background(), []byte{0x01})

			var se *explorer.StatusError
			if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest {
				t.Errorf("\t%s\tTest 1:\tShould get a StatusError with code 400: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 1:\tShould get a StatusError with code 400.", success)
			}
		}
	}
}
