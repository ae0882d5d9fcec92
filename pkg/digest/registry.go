package digest

import (
	"crypto/sha512"
	"fmt"
	"hash"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	sha256 "github.com/minio/sha256-simd"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"

	"github.com/LICODX/proof-of-history/poh"
)

// Names of the registered 256-bit digests.
const (
	NameSHA256       = "sha256"
	NameSHA3_256     = "sha3-256"
	NameKeccak256    = "keccak256"
	NameKeccak256Eth = "keccak256-eth"
	NameBLAKE3       = "blake3"
	NameBLAKE2b256   = "blake2b-256"
)

// Names of the registered 512-bit digests.
const (
	NameSHA512     = "sha512"
	NameSHA3_512   = "sha3-512"
	NameBLAKE2b512 = "blake2b-512"
)

var (
	SHA256     = NewHasher256(NameSHA256, sha256.New)
	SHA3_256   = NewHasher256(NameSHA3_256, sha3.New256)
	Keccak256  = NewHasher256(NameKeccak256, sha3.NewLegacyKeccak256)
	BLAKE3     = NewHasher256(NameBLAKE3, func() hash.Hash { return blake3.New(32, nil) })
	BLAKE2b256 = NewHasher256(NameBLAKE2b256, func() hash.Hash { return mustBLAKE2b(blake2b.New256(nil)) })

	SHA512     = NewHasher512(NameSHA512, sha512.New)
	SHA3_512   = NewHasher512(NameSHA3_512, sha3.New512)
	BLAKE2b512 = NewHasher512(NameBLAKE2b512, func() hash.Hash { return mustBLAKE2b(blake2b.New512(nil)) })
)

// Keccak256Eth hashes through go-ethereum's Keccak-256, the same function the
// EVM uses. It produces the same ticks as Keccak256.
var Keccak256Eth Named = named256{
	name: NameKeccak256Eth,
	fn: func(parts ...[]byte) poh.Hash256 {
		return poh.Hash256(crypto.Keccak256Hash(parts...))
	},
}

type named256 struct {
	name string
	fn   poh.DigestFunc[poh.Hash256]
}

func (n named256) Name() string                    { return n.name }
func (n named256) Sum(parts ...[]byte) poh.Hash256 { return n.fn(parts...) }

// NamedDigest is a digest that knows its registry name.
type NamedDigest[O poh.Output] interface {
	poh.Digest[O]
	Name() string
}

type (
	Named    = NamedDigest[poh.Hash256]
	Named512 = NamedDigest[poh.Hash512]
)

var registry = map[string]Named{
	NameSHA256:       SHA256,
	NameSHA3_256:     SHA3_256,
	NameKeccak256:    Keccak256,
	NameKeccak256Eth: Keccak256Eth,
	NameBLAKE3:       BLAKE3,
	NameBLAKE2b256:   BLAKE2b256,
}

var registry512 = map[string]Named512{
	NameSHA512:     SHA512,
	NameSHA3_512:   SHA3_512,
	NameBLAKE2b512: BLAKE2b512,
}

// Lookup returns the 256-bit digest registered under name.
func Lookup(name string) (Named, error) {
	return lookup(registry, name)
}

// Lookup512 returns the 512-bit digest registered under name.
func Lookup512(name string) (Named512, error) {
	return lookup(registry512, name)
}

// Names lists the registered 256-bit digests in sorted order.
func Names() []string { return sortedNames(registry) }

// Names512 lists the registered 512-bit digests in sorted order.
func Names512() []string { return sortedNames(registry512) }

func lookup[D any](reg map[string]D, name string) (D, error) {
	d, ok := reg[name]
	if !ok {
		var zero D
		return zero, fmt.Errorf("unknown digest %q (available: %v)", name, sortedNames(reg))
	}
	return d, nil
}

func sortedNames[D any](reg map[string]D) []string {
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// blake2b constructors only fail for keys longer than 64 bytes.
func mustBLAKE2b(h hash.Hash, err error) hash.Hash {
	if err != nil {
		panic(err)
	}
	return h
}
