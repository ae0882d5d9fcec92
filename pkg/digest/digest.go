// Package digest provides the hash functions ticks can be chained with.
//
// Every digest keeps a pool of hash.Hash states and resets them between calls,
// so a Sum never observes input from a previous one.
package digest

import (
	"fmt"
	"hash"
	"sync"

	"github.com/LICODX/proof-of-history/poh"
)

type pooled struct {
	name string
	pool sync.Pool
}

func (p *pooled) setup(name string, size int, fn func() hash.Hash) {
	if got := fn().Size(); got != size {
		panic(fmt.Sprintf("digest %s: output size %d, want %d", name, got, size))
	}
	p.name = name
	p.pool.New = func() any { return fn() }
}

func (p *pooled) write(parts [][]byte) hash.Hash {
	h := p.pool.Get().(hash.Hash)
	for _, b := range parts {
		h.Write(b)
	}
	return h
}

func (p *pooled) release(h hash.Hash) {
	h.Reset()
	p.pool.Put(h)
}

// Hasher256 is a pooled digest producing 32 byte ticks.
type Hasher256 struct {
	pooled
}

// NewHasher256 wraps a hash.Hash constructor. It panics if the hash is not 32 bytes wide.
func NewHasher256(name string, fn func() hash.Hash) *Hasher256 {
	d := &Hasher256{}
	d.setup(name, 32, fn)
	return d
}

func (d *Hasher256) Name() string { return d.name }

func (d *Hasher256) Sum(parts ...[]byte) (out poh.Hash256) {
	h := d.write(parts)
	h.Sum(out[:0])
	d.release(h)
	return out
}

// Hasher512 is a pooled digest producing 64 byte ticks.
type Hasher512 struct {
	pooled
}

// NewHasher512 wraps a hash.Hash constructor. It panics if the hash is not 64 bytes wide.
func NewHasher512(name string, fn func() hash.Hash) *Hasher512 {
	d := &Hasher512{}
	d.setup(name, 64, fn)
	return d
}

func (d *Hasher512) Name() string { return d.name }

func (d *Hasher512) Sum(parts ...[]byte) (out poh.Hash512) {
	h := d.write(parts)
	h.Sum(out[:0])
	d.release(h)
	return out
}
