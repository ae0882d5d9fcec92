// Package stream runs a tick producer and a verifier side by side. The producer
// hands fixed-size blocks of ticks to the verifier, which checks each block
// against the last tick it has already accepted.
package stream

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LICODX/proof-of-history/pkg/metrics"
	"github.com/LICODX/proof-of-history/pkg/utils"
	"github.com/LICODX/proof-of-history/poh"
)

var (
	ErrHistoryMismatch = errors.New("stream: producer and verifier histories differ")
	// ErrAlreadyRun is returned by every call to Run after the first.
	ErrAlreadyRun = errors.New("stream: pipeline has already run")
)

// Config sizes the blocks handed from producer to verifier.
type Config struct {
	BlockSize int
	// Blocks is the number of blocks to produce; 0 runs until the context is cancelled.
	Blocks int
	// KeepHistory retains every tick on both sides and compares them at the end.
	KeepHistory bool
}

// Block is a contiguous run of ticks starting at chain position Start.
type Block[O poh.Output] struct {
	Start int
	Ticks []O
}

// Report summarizes one run of a pipeline.
type Report struct {
	BlocksProduced int
	BlocksVerified int
	TicksProduced  int
	TicksVerified  int
	Elapsed        time.Duration
	LastTick       string
}

// Pipeline owns a generator and a verifier for one chain.
type Pipeline[O poh.Output] struct {
	cfg      Config
	gen      *poh.Generator[O]
	verifier *poh.Verifier[O]
	seed     O
	data     func(pos int) []byte
	logger   *zap.Logger
	metrics  *metrics.Metrics

	started  atomic.Bool
	produced atomic.Int64
	verified atomic.Int64
}

// PipelineOption configures a Pipeline.
type PipelineOption[O poh.Output] func(*Pipeline[O])

// WithData mixes data(pos) into the tick at every chain position.
func WithData[O poh.Output](data func(pos int) []byte) PipelineOption[O] {
	return func(p *Pipeline[O]) { p.data = data }
}

// WithLogger logs every produced and verified block to l.
func WithLogger[O poh.Output](l *zap.Logger) PipelineOption[O] {
	return func(p *Pipeline[O]) { p.logger = l }
}

// WithMetrics records tick counts, block timings and verifier lag in m.
func WithMetrics[O poh.Output](m *metrics.Metrics) PipelineOption[O] {
	return func(p *Pipeline[O]) { p.metrics = m }
}

// NewPipeline builds a pipeline for the chain rooted at seed.
func NewPipeline[O poh.Output](d poh.Digest[O], seed O, verifier *poh.Verifier[O], cfg Config, opts ...PipelineOption[O]) (*Pipeline[O], error) {
	if cfg.BlockSize < 1 {
		return nil, fmt.Errorf("stream: block size must be positive, got %d", cfg.BlockSize)
	}
	if cfg.Blocks < 0 {
		return nil, fmt.Errorf("stream: blocks must not be negative, got %d", cfg.Blocks)
	}
	if cfg.KeepHistory && cfg.Blocks == 0 {
		return nil, errors.New("stream: keeping history needs a finite number of blocks")
	}
	if verifier == nil {
		verifier = poh.NewVerifier(d)
	}
	p := &Pipeline[O]{
		cfg:      cfg,
		gen:      poh.NewGenerator(d, seed),
		verifier: verifier,
		seed:     seed,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Progress returns how many blocks have been produced and verified so far.
func (p *Pipeline[O]) Progress() (produced, verified int) {
	return int(p.produced.Load()), int(p.verified.Load())
}

// Run produces and verifies blocks until cfg.Blocks have been verified, the
// context is cancelled or reaches its deadline, or verification fails. Stopping
// on the context is not an error: the report then covers the blocks completed
// so far. A pipeline runs once; later calls return ErrAlreadyRun.
func (p *Pipeline[O]) Run(ctx context.Context) (*Report, error) {
	if !p.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}
	start := time.Now()
	blocks := make(chan Block[O], 1)
	report := &Report{}

	var producedHistory, verifiedHistory []O
	var last O

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer utils.RecoverError("producer", p.logger, &err)
		defer close(blocks)
		producedHistory, err = p.produce(gctx, blocks)
		return err
	})
	g.Go(func() (err error) {
		defer utils.RecoverError("verifier", p.logger, &err)
		verifiedHistory, last, err = p.verify(gctx, blocks)
		return err
	})
	err := g.Wait()

	produced, verified := p.Progress()
	report.BlocksProduced = produced
	report.BlocksVerified = verified
	report.TicksProduced = produced * p.cfg.BlockSize
	report.TicksVerified = verified * p.cfg.BlockSize
	report.Elapsed = time.Since(start)
	if verified > 0 {
		report.LastTick = last.String()
	}

	if err != nil {
		if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return report, nil
		}
		return report, err
	}
	if p.cfg.KeepHistory {
		return report, compareHistory(producedHistory, verifiedHistory)
	}
	return report, nil
}

// compareHistory is a final sanity check that the verifier accepted exactly
// the ticks the producer emitted, in order.
func compareHistory[O poh.Output](produced, verified []O) error {
	if slices.Equal(produced, verified) {
		return nil
	}
	return ErrHistoryMismatch
}

func (p *Pipeline[O]) produce(ctx context.Context, out chan<- Block[O]) ([]O, error) {
	var history []O
	for n := 0; p.cfg.Blocks == 0 || n < p.cfg.Blocks; n++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}

		begin := time.Now()
		blockStart := int(p.gen.Count())
		ticks := p.gen.Take(p.cfg.BlockSize, p.data)
		took := time.Since(begin)

		if p.metrics != nil {
			p.metrics.TicksGenerated.Add(float64(len(ticks)))
			p.metrics.BlockProductionTime.Observe(took.Seconds())
		}
		p.logger.Info("produced block",
			zap.Int("from", blockStart),
			zap.Int("to", blockStart+len(ticks)),
			zap.Duration("took", took))

		if p.cfg.KeepHistory {
			history = append(history, ticks...)
		}
		select {
		case out <- Block[O]{Start: blockStart, Ticks: ticks}:
		case <-ctx.Done():
			return history, ctx.Err()
		}
		p.produced.Add(1)
		p.updateLag()
		if p.metrics != nil {
			p.metrics.BlocksProduced.Inc()
		}
	}
	return history, nil
}

func (p *Pipeline[O]) verify(ctx context.Context, in <-chan Block[O]) ([]O, O, error) {
	var history []O
	last := p.seed
	var dataFn poh.DataFunc[O]
	if p.data != nil {
		dataFn = func(pos int, _ O) []byte { return p.data(pos) }
	}

	for {
		var block Block[O]
		var ok bool
		select {
		case block, ok = <-in:
			if !ok {
				return history, last, nil
			}
		case <-ctx.Done():
			return history, last, ctx.Err()
		}

		begin := time.Now()
		// The predecessor of a block is the last tick of the previous one, so this
		// also checks the link across the block boundary.
		if err := p.verifier.VerifyAt(block.Ticks, last, block.Start, dataFn); err != nil {
			if p.metrics != nil {
				p.metrics.InvalidLinks.Inc()
			}
			p.logger.Error("block failed verification", zap.Int("from", block.Start), zap.Error(err))
			return history, last, fmt.Errorf("verify block at %d: %w", block.Start, err)
		}
		took := time.Since(begin)

		if len(block.Ticks) > 0 {
			last = block.Ticks[len(block.Ticks)-1]
		}
		if p.cfg.KeepHistory {
			history = append(history, block.Ticks...)
		}
		p.verified.Add(1)
		p.updateLag()
		if p.metrics != nil {
			p.metrics.TicksVerified.Add(float64(len(block.Ticks)))
			p.metrics.BlocksVerified.Inc()
			p.metrics.BlockVerifyTime.Observe(took.Seconds())
		}
		p.logger.Info("verified block",
			zap.Int("from", block.Start),
			zap.Int("to", block.Start+len(block.Ticks)),
			zap.Duration("took", took))
	}
}

func (p *Pipeline[O]) updateLag() {
	if p.metrics == nil {
		return
	}
	produced, verified := p.Progress()
	p.metrics.VerifierLag.Set(float64(max(produced-verified, 0)))
}
