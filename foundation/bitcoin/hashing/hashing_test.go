package hashing_test

import (
	"encoding/hex"
	"testing"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/hashing"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Digests(t *testing.T) {
	type table struct {
		name    string
		input   []byte
		hash256 string
		hash160 string
	}

	tt := []table{
		{
			name:    "empty",
			input:   nil,
			hash256: "5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456",
			hash160: "b472a266d0bd89c13706a4132ccfb16f7c3b9fcb",
		},
		{
			name:    "ascii",
			input:   []byte("hello world"),
			hash256: "bc62d4b80d9e36da29c16c5d4d9f11731f36052c72401a76c23c0fb5a9b74423",
			hash160: "d7d5ee7824ff93f94c3055af9382c86c68b5ca92",
		},
	}

	t.Log("Given the need to produce the Bitcoin digest primitives.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen hashing the %s input.", testID, tst.name)
			{
				if got := hex.EncodeToString(hashing.Hash256(tst.input)); got != tst.hash256 {
					t.Errorf("\t%s\tTest %d:\tShould get the expected Hash256: got %s, exp %s", failed, testID, got, tst.hash256)
				} else {
					t.Logf("\t%s\tTest %d:\tShould get the expected Hash256.", success, testID)
				}

				if got := hex.EncodeToString(hashing.Hash160(tst.input)); got != tst.hash160 {
					t.Errorf("\t%s\tTest %d:\tShould get the expected Hash160: got %s, exp %s", failed, testID, got, tst.hash160)
				} else {
					t.Logf("\t%s\tTest %d:\tShould get the expected Hash160.", success, testID)
				}
			}
		}
	}
}
