package poh

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Output is the set of fixed-width digest values a chain can be built from.
// Outputs are arrays so ticks compare with == and copy by value.
type Output interface {
	comparable
	Bytes() []byte
	String() string
}

// Hash256 is a 32 byte tick (SHA2-256, SHA3-256, Keccak-256, BLAKE3, BLAKE2b-256).
type Hash256 [32]byte

// Hash512 is a 64 byte tick (SHA-512, SHA3-512, BLAKE2b-512).
type Hash512 [64]byte

func (h Hash256) Bytes() []byte  { return h[:] }
func (h Hash256) String() string { return hexutil.Encode(h[:]) }
func (h Hash256) IsZero() bool   { return h == Hash256{} }

func (h Hash512) Bytes() []byte  { return h[:] }
func (h Hash512) String() string { return hexutil.Encode(h[:]) }
func (h Hash512) IsZero() bool   { return h == Hash512{} }

// ParseHash256 decodes a 0x-prefixed hex string of exactly 32 bytes.
func ParseHash256(s string) (Hash256, error) {
	var h Hash256
	b, err := hexutil.Decode(s)
	if err != nil {
		return h, fmt.Errorf("parse hash256: %w", err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("parse hash256: got %d bytes, want %d", len(b), len(h))
	}
	copy(h[:], b)
	return h, nil
}

// ParseHash512 decodes a 0x-prefixed hex string of exactly 64 bytes.
func ParseHash512(s string) (Hash512, error) {
	var h Hash512
	b, err := hexutil.Decode(s)
	if err != nil {
		return h, fmt.Errorf("parse hash512: %w", err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("parse hash512: got %d bytes, want %d", len(b), len(h))
	}
	copy(h[:], b)
	return h, nil
}
