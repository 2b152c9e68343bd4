// Package block implements the 80 byte block header: the proof-of-work
// commitment every block in the chain carries.
package block

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/hashing"
)

// HeaderSize is the wire size of a block header.
const HeaderSize = 80

// ErrTruncated indicates header bytes shorter than 80 bytes.
var ErrTruncated = errors.New("truncated block header")

// =============================================================================

// Hash is a block or merkle root hash in wire order. Display form
// reverses the bytes.
type Hash [32]byte

// HashFromHex parses a display order (reversed) hex hash.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("decoding hash hex: %w", err)
	}
	if len(b) != 32 {
		return Hash{}, fmt.Errorf("hash must be 32 bytes, got %d", len(b))
	}

	var h Hash
	for i := range b {
		h[i] = b[31-i]
	}
	return h, nil
}

// String renders the hash in display order.
func (h Hash) String() string {
	var rev [32]byte
	for i := range h {
		rev[i] = h[31-i]
	}
	return hex.EncodeToString(rev[:])
}

// =============================================================================

// Header is a decoded block header. PrevBlock and MerkleRoot are held
// in wire order. Bits holds the little endian decoded compact target;
// its top byte is the exponent and the low three bytes the coefficient.
type Header struct {
	Version    uint32
	PrevBlock  Hash
	MerkleRoot Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// Serialize encodes the header into its 80 byte wire form.
func (h *Header) Serialize() []byte {
	out := make([]byte, HeaderSize)

	binary.LittleEndian.PutUint32(out[0:4], h.Version)
	copy(out[4:36], h.PrevBlock[:])
	copy(out[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(out[68:72], h.Timestamp)
	binary.LittleEndian.PutUint32(out[72:76], h.Bits)
	binary.LittleEndian.PutUint32(out[76:80], h.Nonce)

	return out
}

// Decode parses an 80 byte header.
func Decode(raw []byte) (*Header, error) {
	r := bytes.NewReader(raw)

	var b [HeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, fmt.Errorf("%w: got %d bytes", ErrTruncated, len(raw))
	}

	var h Header
	h.Version = binary.LittleEndian.Uint32(b[0:4])
	copy(h.PrevBlock[:], b[4:36])
	copy(h.MerkleRoot[:], b[36:68])
	h.Timestamp = binary.LittleEndian.Uint32(b[68:72])
	h.Bits = binary.LittleEndian.Uint32(b[72:76])
	h.Nonce = binary.LittleEndian.Uint32(b[76:80])

	return &h, nil
}

// Hash returns the double SHA-256 of the serialized header.
func (h *Header) Hash() Hash {
	var id Hash
	copy(id[:], hashing.Hash256(h.Serialize()))
	return id
}

// ID returns the display order hex block identifier.
func (h *Header) ID() string {
	return h.Hash().String()
}

// Target expands the compact bits encoding into the full 256 bit
// threshold: coefficient * 256^(exponent-3).
func (h *Header) Target() *big.Int {
	exp := int64(h.Bits >> 24)
	coef := int64(h.Bits & 0x00ffffff)

	target := new(big.Int).Exp(big.NewInt(256), big.NewInt(exp-3), nil)
	return target.Mul(target, big.NewInt(coef))
}

// Difficulty expresses the target relative to the lowest difficulty
// target 0xffff * 256^(0x1d-3). Genesis has difficulty 1.
func (h *Header) Difficulty() *big.Rat {
	lowest := new(big.Int).Exp(big.NewInt(256), big.NewInt(0x1d-3), nil)
	lowest.Mul(lowest, big.NewInt(0xffff))

	return new(big.Rat).SetFrac(lowest, h.Target())
}

// CheckProofOfWork reports whether the header hash, read as a little
// endian integer, falls below the target.
func (h *Header) CheckProofOfWork() bool {
	id := h.Hash()

	var be [32]byte
	for i := range id {
		be[i] = id[31-i]
	}

	return new(big.Int).SetBytes(be[:]).Cmp(h.Target()) < 0
}

// =============================================================================

// Genesis headers for the two public networks.
const (
	genesisMainHex = "0100000000000000000000000000000000000000000000000000000000000000000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a29ab5f49ffff001d1dac2b7c"
	genesisTestHex = "0100000000000000000000000000000000000000000000000000000000000000000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4adae5494dffff001d1aa4ae18"
)

// GenesisMainnet returns the mainnet genesis header.
func GenesisMainnet() *Header {
	return mustDecodeHex(genesisMainHex)
}

// GenesisTestnet returns the testnet genesis header.
func GenesisTestnet() *Header {
	return mustDecodeHex(genesisTestHex)
}

func mustDecodeHex(s string) *Header {
	raw, err := hex.DecodeString(s)
	if err != nil {
		panic("block: invalid genesis constant: " + err.Error())
	}

	h, err := Decode(raw)
	if err != nil {
		panic("block: invalid genesis constant: " + err.Error())
	}

	return h
}
