// Package bench measures how fast each digest produces ticks and how much
// faster the parallel verifier checks them.
package bench

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LICODX/proof-of-history/pkg/digest"
	"github.com/LICODX/proof-of-history/poh"
)

// SpeedTestResult holds the measured rates for one digest, in ticks per second.
type SpeedTestResult struct {
	Digest       string
	Ticks        int
	Workers      int
	GenerateTime time.Duration
	VerifyTime   time.Duration
	GenerateRate float64
	VerifyRate   float64
	// Speedup is VerifyRate / GenerateRate.
	Speedup float64
}

func (r SpeedTestResult) String() string {
	return fmt.Sprintf("%-14s generate %12.0f ticks/s  verify %12.0f ticks/s  speedup %5.2fx",
		r.Digest, r.GenerateRate, r.VerifyRate, r.Speedup)
}

// Run measures every digest in order, generating ticks with it and verifying
// them with the given worker count (0 uses every core). It stops early when
// ctx is cancelled and returns the results gathered so far.
func Run[O poh.Output](ctx context.Context, digests []digest.NamedDigest[O], ticks, workers int, logger *zap.Logger) ([]SpeedTestResult, error) {
	if ticks < 1 {
		return nil, fmt.Errorf("bench: tick count must be positive, got %d", ticks)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]SpeedTestResult, 0, len(digests))
	for _, d := range digests {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := measure(d, ticks, workers)
		if err != nil {
			return results, err
		}
		logger.Info("speed test complete",
			zap.String("digest", res.Digest),
			zap.Float64("generate_rate", res.GenerateRate),
			zap.Float64("verify_rate", res.VerifyRate),
			zap.Float64("speedup", res.Speedup))
		results = append(results, res)
	}
	return results, nil
}

func measure[O poh.Output](d digest.NamedDigest[O], ticks, workers int) (SpeedTestResult, error) {
	var seed O
	verifier := poh.NewVerifier[O](d, poh.WithWorkers(workers))

	begin := time.Now()
	chain := poh.Generate[O](d, seed, ticks, nil)
	genTime := time.Since(begin)

	begin = time.Now()
	if err := verifier.Verify(chain, seed, nil); err != nil {
		return SpeedTestResult{}, fmt.Errorf("bench %s: %w", d.Name(), err)
	}
	verifyTime := time.Since(begin)

	res := SpeedTestResult{
		Digest:       d.Name(),
		Ticks:        ticks,
		Workers:      verifier.Workers(),
		GenerateTime: genTime,
		VerifyTime:   verifyTime,
		GenerateRate: rate(ticks, genTime),
		VerifyRate:   rate(ticks, verifyTime),
	}
	if res.GenerateRate > 0 {
		res.Speedup = res.VerifyRate / res.GenerateRate
	}
	return res, nil
}

func rate(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}
