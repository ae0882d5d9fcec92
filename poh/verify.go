package poh

import (
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// DefaultMinSpan is the smallest number of positions worth a goroutine of its own.
const DefaultMinSpan = 1024

// DataFunc returns the auxiliary data that was mixed into the tick at pos.
// It is called concurrently and must not mutate shared state.
type DataFunc[O Output] func(pos int, tick O) []byte

// Verifier checks captured tick sequences using all available cores.
type Verifier[O Output] struct {
	digest  Digest[O]
	workers int
	minSpan int
	logger  *zap.Logger
}

type verifyOptions struct {
	workers int
	minSpan int
	logger  *zap.Logger
}

// Option configures a Verifier.
type Option func(*verifyOptions)

// WithWorkers caps the number of concurrent spans. Values below 1 select
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *verifyOptions) { o.workers = n }
}

// WithMinSpan sets the smallest span handed to a single worker.
func WithMinSpan(n int) Option {
	return func(o *verifyOptions) { o.minSpan = n }
}

// WithLogger logs the span plan at debug level and the first invalid link at
// warn level to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *verifyOptions) { o.logger = l }
}

// NewVerifier creates a verifier for chains built with d.
func NewVerifier[O Output](d Digest[O], opts ...Option) *Verifier[O] {
	o := verifyOptions{
		workers: runtime.GOMAXPROCS(0),
		minSpan: DefaultMinSpan,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.minSpan < 1 {
		o.minSpan = 1
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &Verifier[O]{
		digest:  d,
		workers: o.workers,
		minSpan: o.minSpan,
		logger:  o.logger,
	}
}

// Workers returns the maximum number of spans verified concurrently.
func (v *Verifier[O]) Workers() int {
	return v.workers
}

// Verify checks that every tick follows from its predecessor, with seed as the
// predecessor of position 0. On failure the returned *VerificationError carries
// the lowest invalid position. An empty sequence is valid.
func (v *Verifier[O]) Verify(ticks []O, seed O, data DataFunc[O]) error {
	return v.VerifyAt(ticks, seed, 0, data)
}

// VerifyAt checks a block of a longer chain whose first tick sits at position
// start and whose predecessor is seed. data is called with chain positions and a
// failure reports a chain position.
func (v *Verifier[O]) VerifyAt(ticks []O, seed O, start int, data DataFunc[O]) error {
	spans := partition(len(ticks), v.workers, v.minSpan)
	if len(spans) == 0 {
		return nil
	}
	v.logger.Debug("verifying ticks",
		zap.Int("start", start),
		zap.Int("ticks", len(ticks)),
		zap.Int("spans", len(spans)))

	// One slot per span; -1 means the span is valid.
	failures := make([]int, len(spans))
	if len(spans) == 1 {
		failures[0] = v.checkSpan(ticks, seed, start, data, spans[0])
	} else {
		var wg sync.WaitGroup
		for i, s := range spans {
			wg.Add(1)
			go func(slot int, s span) {
				defer wg.Done()
				failures[slot] = v.checkSpan(ticks, seed, start, data, s)
			}(i, s)
		}
		wg.Wait()
	}

	first := -1
	for _, pos := range failures {
		if pos >= 0 && (first < 0 || pos < first) {
			first = pos
		}
	}
	if first < 0 {
		return nil
	}
	v.logger.Warn("invalid link", zap.Int("position", start+first))
	return &VerificationError{Position: start + first}
}

// checkSpan returns the first invalid position in s relative to ticks, or -1.
// The span's predecessor is read from ticks rather than recomputed, so spans
// never depend on one another.
func (v *Verifier[O]) checkSpan(ticks []O, seed O, start int, data DataFunc[O], s span) int {
	prev := seed
	if s.lo > 0 {
		prev = ticks[s.lo-1]
	}
	for i := s.lo; i < s.hi; i++ {
		var extra []byte
		if data != nil {
			extra = data(start+i, ticks[i])
		}
		if Link(v.digest, prev, extra) != ticks[i] {
			return i
		}
		prev = ticks[i]
	}
	return -1
}

// Verify checks ticks with a verifier using every available core.
func Verify[O Output](d Digest[O], ticks []O, seed O, data DataFunc[O]) error {
	return NewVerifier(d).Verify(ticks, seed, data)
}
