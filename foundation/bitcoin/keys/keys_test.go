package keys_test

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/ecc"
	"github.com/ardanlabs/bitcoin/foundation/bitcoin/keys"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_AddressDerivation(t *testing.T) {
	type table struct {
		name       string
		secret     []byte
		secComp    string
		addrTest   string
		addrMain   string
	}

	tt := []table{
		{
			name:     "first key",
			secret:   []byte("A really not secure secret key"),
			secComp:  "03fd4d7c6c072c9ae5e96139fcf99c36aac902c18a0d99948bc2cb54fd08f8b073",
			addrTest: "mk9chiypvYnYy6fs876jKLcCXfLSGoCj4k",
			addrMain: "15dfQftr7XMJBzCFQY8MVRPsffjjRizJhQ",
		},
		{
			name:     "second key",
			secret:   []byte("A second secret"),
			secComp:  "03f482d65a28d022d33d41c67cbc48c5b24b0e663f5904c0b0db4f0092230d2ebb",
			addrTest: "myNvYqYXSzcw3GnnGfFk7nwQ3xDvjC2oSM",
			addrMain: "",
		},
	}

	t.Log("Given the need to derive addresses from secrets.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen deriving the %s.", testID, tst.name)
			{
				key, err := keys.PrivateKeyFromBytes(tst.secret)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to construct the key: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to construct the key.", success, testID)

				pub := key.PublicKey()

				if got := hex.EncodeToString(pub.Bytes(true)); got != tst.secComp {
					t.Errorf("\t%s\tTest %d:\tShould get the compressed SEC form: got %s.", failed, testID, got)
				} else {
					t.Logf("\t%s\tTest %d:\tShould get the compressed SEC form.", success, testID)
				}

				if got := pub.Address(true, keys.Testnet); got != tst.addrTest {
					t.Errorf("\t%s\tTest %d:\tShould get the testnet address: got %s.", failed, testID, got)
				} else {
					t.Logf("\t%s\tTest %d:\tShould get the testnet address.", success, testID)
				}

				if tst.addrMain != "" {
					if got := pub.Address(true, keys.Mainnet); got != tst.addrMain {
						t.Errorf("\t%s\tTest %d:\tShould get the mainnet address: got %s.", failed, testID, got)
					} else {
						t.Logf("\t%s\tTest %d:\tShould get the mainnet address.", success, testID)
					}
				}
			}
		}
	}
}

func Test_SECRoundTrip(t *testing.T) {
	secrets := []int64{1, 2, 0xdeadbeef}

	t.Log("Given the need to round trip SEC encodings.")
	{
		for testID, secret := range secrets {
			t.Logf("\tTest %d:\tWhen encoding the key for secret %d.", testID, secret)
			{
				key, err := keys.NewPrivateKey(big.NewInt(secret))
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to construct the key: %v", failed, testID, err)
				}
				pub := key.PublicKey()

				for _, compressed := range []bool{true, false} {
					enc := pub.Bytes(compressed)

					got, err := keys.ParsePublicKey(enc)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to parse compressed=%v: %v", failed, testID, compressed, err)
					}

					if !got.Equal(pub) {
						t.Errorf("\t%s\tTest %d:\tShould recover the point for compressed=%v.", failed, testID, compressed)
					} else {
						t.Logf("\t%s\tTest %d:\tShould recover the point for compressed=%v.", success, testID, compressed)
					}
				}
			}
		}
	}
}

func Test_SECFailures(t *testing.T) {
	t.Log("Given the need to reject malformed SEC encodings.")
	{
		t.Logf("\tTest 0:\tWhen the x coordinate has no curve point.")
		{
			enc := make([]byte, 33)
			enc[0] = 0x02
			enc[32] = 0x05

			if _, err := keys.ParsePublicKey(enc); !errors.Is(err, keys.ErrInvalidSEC) {
				t.Errorf("\t%s\tTest 0:\tShould get ErrInvalidSEC: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould get ErrInvalidSEC.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen the prefix byte is unknown.")
		{
			if _, err := keys.ParsePublicKey(bytes.Repeat([]byte{0x07}, 33)); !errors.Is(err, keys.ErrInvalidSEC) {
				t.Errorf("\t%s\tTest 1:\tShould get ErrInvalidSEC: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 1:\tShould get ErrInvalidSEC.", success)
			}
		}

		t.Logf("\tTest 2:\tWhen uncompressed coordinates are off the curve.")
		{
			enc := make([]byte, 65)
			enc[0] = 0x04
			enc[32] = 0x01
			enc[64] = 0x01

			if _, err := keys.ParsePublicKey(enc); !errors.Is(err, ecc.ErrInvalidPoint) {
				t.Errorf("\t%s\tTest 2:\tShould get ErrInvalidPoint: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 2:\tShould get ErrInvalidPoint.", success)
			}
		}
	}
}

func Test_KeyGeneration(t *testing.T) {
	t.Log("Given the need to generate keys from a secure source.")
	{
		t.Logf("\tTest 0:\tWhen drawing a fresh key.")
		{
			key, err := keys.GeneratePrivateKey(rand.Reader)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a key: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to generate a key.", success)

			s := key.Secret()
			if s.Sign() < 1 || s.Cmp(ecc.S256().N) >= 0 {
				t.Errorf("\t%s\tTest 0:\tShould have a secret inside [1, N-1].", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould have a secret inside [1, N-1].", success)
			}
		}

		t.Logf("\tTest 1:\tWhen constructing out of range secrets.")
		{
			if _, err := keys.NewPrivateKey(big.NewInt(0)); !errors.Is(err, keys.ErrInvalidKey) {
				t.Errorf("\t%s\tTest 1:\tShould reject zero: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 1:\tShould reject zero.", success)
			}

			if _, err := keys.NewPrivateKey(ecc.S256().N); !errors.Is(err, keys.ErrInvalidKey) {
				t.Errorf("\t%s\tTest 1:\tShould reject the group order: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 1:\tShould reject the group order.", success)
			}
		}
	}
}
