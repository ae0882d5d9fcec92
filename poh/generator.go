// Package poh implements a Proof of History tick chain: a sequential generator
// that hashes each tick from its predecessor, and a parallel verifier that checks
// every link of a captured sequence independently.
//
// Tick 0 is the hash of the seed; the seed itself is never part of the sequence.
package poh

import "iter"

// Generator produces the chain one tick at a time. It is owned by a single
// caller and is not safe for concurrent use.
type Generator[O Output] struct {
	digest  Digest[O]
	current O
	count   uint64
}

// NewGenerator creates a generator whose first tick is derived from seed.
func NewGenerator[O Output](d Digest[O], seed O) *Generator[O] {
	return &Generator[O]{
		digest:  d,
		current: seed,
	}
}

// Next advances the chain without auxiliary data.
func (g *Generator[O]) Next() O {
	return g.NextWithData(nil)
}

// NextWithData advances the chain, mixing data into the new tick.
func (g *Generator[O]) NextWithData(data []byte) O {
	g.current = Link(g.digest, g.current, data)
	g.count++
	return g.current
}

// Current returns the last tick produced, or the seed before the first call to Next.
func (g *Generator[O]) Current() O {
	return g.current
}

// Count returns the number of ticks produced so far.
func (g *Generator[O]) Count() uint64 {
	return g.count
}

// Ticks returns an unbounded sequence that advances g on every pull. Breaking
// out of the range loop stops production; the generator keeps its position.
func (g *Generator[O]) Ticks() iter.Seq[O] {
	return func(yield func(O) bool) {
		for {
			if !yield(g.Next()) {
				return
			}
		}
	}
}

// Take produces the next n ticks. data may be nil; otherwise it is called with
// the position of each tick relative to the generator's count.
func (g *Generator[O]) Take(n int, data func(pos int) []byte) []O {
	if n <= 0 {
		return nil
	}
	base := int(g.count)
	out := make([]O, n)
	for i := range out {
		if data == nil {
			out[i] = g.Next()
			continue
		}
		out[i] = g.NextWithData(data(base + i))
	}
	return out
}

// Generate materializes the first n ticks of the chain rooted at seed.
func Generate[O Output](d Digest[O], seed O, n int, data func(pos int) []byte) []O {
	return NewGenerator(d, seed).Take(n, data)
}
