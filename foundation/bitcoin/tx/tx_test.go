package tx_test

import (
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/keys"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/script"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/signature"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/tx"
)

const (
	success = "\u2713"
	failed  = "\u2717"
)

// A testnet transaction spending one input into two P2PKH outputs.
const knownTxHex = "0100000001d428388e59e701cbed6825a37c66786d403eb9e7aca043f5fcdb0b39faa4f1aa010000005d47304402201af22482425c6ca93c1a88dc4adf4cb5933522bb498ace0b52e8176800f121cd02204fc75b2f6af2251ea4678de7b19361d8b64f93e5535687972509e650b3755dc2011432cf8a0b81f63473be3f88efe281f4b1f13c857effffffff0290d00300000000001976a914c3ed7acbba3080a947ce28eab9789cb0273cf8cf88acc0b60600000000001976a91432cf8a0b81f63473be3f88efe281f4b1f13c857e88ac00000000"

func Test_DecodeRoundTrip(t *testing.T) {
	t.Log("Given the need to decode a raw transaction.")
	{
		t.Logf("\tTest 0:\tWhen decoding a known testnet transaction.")
		{
			raw, err := hex.DecodeString(knownTxHex)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to decode the hex: %v", failed, err)
			}

			txn, err := tx.Decode(raw)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to decode the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to decode the transaction.", success)

			if txn.Version != 1 {
				t.Errorf("\t%s\tTest 0:\tShould get version 1, got %d.", failed, txn.Version)
			} else {
				t.Logf("\t%s\tTest 0:\tShould get version 1.", success)
			}

			if len(txn.Inputs) != 1 || len(txn.Outputs) != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould get 1 input and 2 outputs, got %d and %d.", failed, len(txn.Inputs), len(txn.Outputs))
			}
			t.Logf("\t%s\tTest 0:\tShould get 1 input and 2 outputs.", success)

			in := txn.Inputs[0]
			if in.PrevTxID.String() != "aaf1a4fa390bdbfcf543a0ace7b93e406d78667ca32568edcb01e7598e3828d4" {
				t.Errorf("\t%s\tTest 0:\tShould get the expected previous txid, got %s.", failed, in.PrevTxID)
			} else {
				t.Logf("\t%s\tTest 0:\tShould get the expected previous txid.", success)
			}
			if in.PrevIndex != 1 || in.Sequence != tx.SequenceFinal {
				t.Errorf("\t%s\tTest 0:\tShould get prev index 1 and final sequence.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould get prev index 1 and final sequence.", success)
			}

			if txn.Outputs[0].Amount != 250000 || txn.Outputs[1].Amount != 440000 {
				t.Errorf("\t%s\tTest 0:\tShould get the expected amounts, got %d and %d.", failed, txn.Outputs[0].Amount, txn.Outputs[1].Amount)
			} else {
				t.Logf("\t%s\tTest 0:\tShould get the expected amounts.", success)
			}

			if txn.Locktime != 0 {
				t.Errorf("\t%s\tTest 0:\tShould get locktime 0, got %d.", failed, txn.Locktime)
			} else {
				t.Logf("\t%s\tTest 0:\tShould get locktime 0.", success)
			}

			enc, err := txn.Serialize()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to re-encode the transaction: %v", failed, err)
			}
			if hex.EncodeToString(enc) != knownTxHex {
				t.Errorf("\t%s\tTest 0:\tShould re-encode identically.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould re-encode identically.", success)
			}

			id, err := txn.ID()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to compute the id: %v", failed, err)
			}
			exp := "b31da0b874c3b95b29f4df5c90e8620f70790d2f5982e6706dfdd9ed04556ec7"
			if id != exp {
				t.Errorf("\t%s\tTest 0:\tShould compute the expected id.", failed)
				t.Logf("\t\tTest 0:\tGot: %s", id)
				t.Logf("\t\tTest 0:\tExp: %s", exp)
			} else {
				t.Logf("\t%s\tTest 0:\tShould compute the expected id.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen the transaction carries a segwit marker.")
		{
			raw, _ := hex.DecodeString(knownTxHex)

			// Splice in the marker and an empty witness stack.
			segwit := append([]byte{}, raw[:4]...)
			segwit = append(segwit, 0x00, 0x01)
			segwit = append(segwit, raw[4:len(raw)-4]...)
			segwit = append(segwit, 0x00)
			segwit = append(segwit, raw[len(raw)-4:]...)

			txn, err := tx.Decode(segwit)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to decode the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to decode the transaction.", success)

			enc, err := txn.Serialize()
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to re-encode the transaction: %v", failed, err)
			}
			if hex.EncodeToString(enc) != knownTxHex {
				t.Errorf("\t%s\tTest 1:\tShould recover the legacy fields intact.", failed)
			} else {
				t.Logf("\t%s\tTest 1:\tShould recover the legacy fields intact.", success)
			}
		}
	}
}

func Test_DecodeTruncated(t *testing.T) {
	raw, _ := hex.DecodeString(knownTxHex)

	cuts := []int{0, 3, 4, 5, 40, 45, len(raw) - 5, len(raw) - 1}

	t.Log("Given the need to reject truncated transaction bytes.")
	{
		for testID, cut := range cuts {
			t.Logf("\tTest %d:\tWhen the bytes end after %d of %d.", testID, cut, len(raw))
			{
				_, err := tx.Decode(raw[:cut])
				if err == nil {
					t.Errorf("\t%s\tTest %d:\tShould get a decode error.", failed, testID)
				} else {
					t.Logf("\t%s\tTest %d:\tShould get a decode error.", success, testID)
				}
			}
		}
	}
}

func Test_BuildSignSpend(t *testing.T) {
	key1, err := keys.NewPrivateKey(new(big.Int).SetBytes([]byte("A really not secure secret key")))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct key 1: %v", failed, err)
	}
	key2, err := keys.NewPrivateKey(new(big.Int).SetBytes([]byte("A second secret")))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct key 2: %v", failed, err)
	}

	addr1 := key1.PublicKey().Address(true, keys.Testnet)
	addr2 := key2.PublicKey().Address(true, keys.Testnet)

	lock1, err := script.PayToPubKeyHash(key1.PublicKey().Hash160(true))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to build lock 1: %v", failed, err)
	}
	lock2, err := script.PayToPubKeyHash(key2.PublicKey().Hash160(true))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to build lock 2: %v", failed, err)
	}

	funding := tx.Tx{
		Version: 1,
		Inputs: []tx.TxIn{
			{PrevTxID: tx.TxID{}, PrevIndex: 0xffffffff, ScriptSig: script.Script{script.Push{0x01, 0x02, 0x03, 0x04}}, Sequence: tx.SequenceFinal},
		},
		Outputs: []tx.TxOut{
			{Amount: 50000, ScriptPubKey: lock2},
			{Amount: 100000, ScriptPubKey: lock1},
		},
	}

	t.Log("Given the need to build, sign and spend a transaction.")
	{
		t.Logf("\tTest 0:\tWhen serializing the funding transaction.")
		{
			raw, err := funding.Serialize()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to serialize: %v", failed, err)
			}

			exp := "01000000010000000000000000000000000000000000000000000000000000000000000000ffffffff050401020304ffffffff0250c30000000000001976a914c3ed7acbba3080a947ce28eab9789cb0273cf8cf88aca0860100000000001976a91432cf8a0b81f63473be3f88efe281f4b1f13c857e88ac00000000"
			if hex.EncodeToString(raw) != exp {
				t.Errorf("\t%s\tTest 0:\tShould get the expected bytes.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould get the expected bytes.", success)
			}

			id, err := funding.ID()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to compute the id: %v", failed, err)
			}
			if id != "8a30a0d6d9fe5635d01bceaaa86ebbaf8b01e2e68e14d0f7b3a435d1fa7905d2" {
				t.Errorf("\t%s\tTest 0:\tShould compute the expected id, got %s.", failed, id)
			} else {
				t.Logf("\t%s\tTest 0:\tShould compute the expected id.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen locating the output paying each address.")
		{
			idx, err := funding.OutputIndexForAddress(addr1)
			if err != nil || idx != 1 {
				t.Errorf("\t%s\tTest 1:\tShould find address 1 at output 1: idx %d err %v.", failed, idx, err)
			} else {
				t.Logf("\t%s\tTest 1:\tShould find address 1 at output 1.", success)
			}

			idx, err = funding.OutputIndexForAddress(addr2)
			if err != nil || idx != 0 {
				t.Errorf("\t%s\tTest 1:\tShould find address 2 at output 0: idx %d err %v.", failed, idx, err)
			} else {
				t.Logf("\t%s\tTest 1:\tShould find address 2 at output 0.", success)
			}

			unrelated, err := keys.NewPrivateKey(big.NewInt(42))
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct the unrelated key: %v", failed, err)
			}
			if _, err := funding.OutputIndexForAddress(unrelated.PublicKey().Address(true, keys.Testnet)); !errors.Is(err, tx.ErrNoMatchingOutput) {
				t.Errorf("\t%s\tTest 1:\tShould get ErrNoMatchingOutput for an unrelated address: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 1:\tShould get ErrNoMatchingOutput for an unrelated address.", success)
			}
		}

		t.Logf("\tTest 2:\tWhen signing the spend of funding output 1.")
		{
			fundingID, err := funding.Hash()
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to hash the funding tx: %v", failed, err)
			}

			spend := tx.Tx{
				Version: 1,
				Inputs: []tx.TxIn{
					{PrevTxID: fundingID, PrevIndex: 1, Sequence: tx.SequenceFinal},
				},
				Outputs: []tx.TxOut{
					{Amount: 70000, ScriptPubKey: lock2},
					{Amount: 25000, ScriptPubKey: lock1},
				},
			}

			z, err := spend.SigHash(0, lock1)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to compute the sighash: %v", failed, err)
			}

			expZ, _ := new(big.Int).SetString("5b969bb657f3a6a2c56a4a757b91b491c6d253f539cd5d053bcd866d3dea5d77", 16)
			if z.Cmp(expZ) != 0 {
				t.Errorf("\t%s\tTest 2:\tShould compute the expected sighash.", failed)
				t.Logf("\t\tTest 2:\tGot: %x", z)
				t.Logf("\t\tTest 2:\tExp: %x", expZ)
			} else {
				t.Logf("\t%s\tTest 2:\tShould compute the expected sighash.", success)
			}

			sig, err := signature.Sign(key1, z, signature.Deterministic{})
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to sign the sighash: %v", failed, err)
			}

			expDER := "304402200ecb1f90aac83e2ae4c4da17d3dc27350bc25947dafdbd48f41d7610a49470e5022000adcf16f01b7731ca24dc266c6490592393a0cbb02208a4c84d4c3c905d704f"
			if hex.EncodeToString(sig.MarshalDER()) != expDER {
				t.Errorf("\t%s\tTest 2:\tShould produce the expected DER signature.", failed)
			} else {
				t.Logf("\t%s\tTest 2:\tShould produce the expected DER signature.", success)
			}

			spend.Inputs[0].ScriptSig = script.Unlocking(append(sig.MarshalDER(), 0x01), key1.PublicKey().Bytes(true))

			raw, err := spend.Serialize()
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to serialize the signed tx: %v", failed, err)
			}

			expHex := "0100000001d20579fad135a4b3f7d0148ee6e2018bafbb6ea8aace1bd03556fed9d6a0308a010000006a47304402200ecb1f90aac83e2ae4c4da17d3dc27350bc25947dafdbd48f41d7610a49470e5022000adcf16f01b7731ca24dc266c6490592393a0cbb02208a4c84d4c3c905d704f012103fd4d7c6c072c9ae5e96139fcf99c36aac902c18a0d99948bc2cb54fd08f8b073ffffffff0270110100000000001976a914c3ed7acbba3080a947ce28eab9789cb0273cf8cf88aca8610000000000001976a91432cf8a0b81f63473be3f88efe281f4b1f13c857e88ac00000000"
			if hex.EncodeToString(raw) != expHex {
				t.Errorf("\t%s\tTest 2:\tShould serialize to the expected bytes.", failed)
				t.Logf("\t\tTest 2:\tGot: %x", raw)
				t.Logf("\t\tTest 2:\tExp: %s", expHex)
			} else {
				t.Logf("\t%s\tTest 2:\tShould serialize to the expected bytes.", success)
			}

			id, err := spend.ID()
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to compute the id: %v", failed, err)
			}
			if id != "b2894c4cda5c8272e3b1684450bc6c8846cc18401af200cdf0754af4c8504969" {
				t.Errorf("\t%s\tTest 2:\tShould compute the expected id, got %s.", failed, id)
			} else {
				t.Logf("\t%s\tTest 2:\tShould compute the expected id.", success)
			}

			if err := spend.Inputs[0].ScriptSig.Combine(lock1).Evaluate(z); err != nil {
				t.Errorf("\t%s\tTest 2:\tShould satisfy the locking script: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 2:\tShould satisfy the locking script.", success)
			}
		}

		t.Logf("\tTest 3:\tWhen requesting a sighash for a missing input.")
		{
			if _, err := funding.SigHash(5, lock1); !errors.Is(err, tx.ErrBadInputIndex) {
				t.Errorf("\t%s\tTest 3:\tShould get ErrBadInputIndex: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 3:\tShould get ErrBadInputIndex.", success)
			}
		}
	}
}

func Test_TxIDHex(t *testing.T) {
	t.Log("Given the need to move txids between wire and display order.")
	{
		t.Logf("\tTest 0:\tWhen round tripping a display order id.")
		{
			display := "b31da0b874c3b95b29f4df5c90e8620f70790d2f5982e6706dfdd9ed04556ec7"

			id, err := tx.TxIDFromHex(display)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to parse the id: %v", failed, err)
			}
			if id.String() != display {
				t.Errorf("\t%s\tTest 0:\tShould render the same display form.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould render the same display form.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen the id is malformed.")
		{
			if _, err := tx.TxIDFromHex("zz"); err == nil {
				t.Errorf("\t%s\tTest 1:\tShould reject non hex input.", failed)
			} else {
				t.Logf("\t%s\tTest 1:\tShould reject non hex input.", success)
			}
			if _, err := tx.TxIDFromHex("abcd"); err == nil {
				t.Errorf("\t%s\tTest 1:\tShould reject a short id.", failed)
			} else {
				t.Logf("\t%s\tTest 1:\tShould reject a short id.", success)
			}
		}
	}
}
