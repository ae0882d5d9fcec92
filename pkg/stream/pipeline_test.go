package stream

import (
	"context"
	"encoding/binary"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/LICODX/proof-of-history/pkg/digest"
	"github.com/LICODX/proof-of-history/pkg/metrics"
	"github.com/LICODX/proof-of-history/poh"
)

func positionData(pos int) []byte {
	if pos%3 != 0 {
		return nil
	}
	return binary.BigEndian.AppendUint64(nil, uint64(pos))
}

func TestPipelineProducesAndVerifies(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	verifier := poh.NewVerifier[poh.Hash256](digest.SHA256, poh.WithWorkers(4), poh.WithMinSpan(16))

	p, err := NewPipeline(digest.SHA256, poh.Hash256{}, verifier,
		Config{BlockSize: 100, Blocks: 5, KeepHistory: true},
		WithData[poh.Hash256](positionData),
		WithLogger[poh.Hash256](zaptest.NewLogger(t)),
		WithMetrics[poh.Hash256](m))
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.BlocksProduced)
	assert.Equal(t, 5, report.BlocksVerified)
	assert.Equal(t, 500, report.TicksVerified)

	// The pipeline's chain must match a plain sequential generation.
	want := poh.Generate(digest.SHA256, poh.Hash256{}, 500, positionData)
	assert.Equal(t, want[499].String(), report.LastTick)

	assert.Equal(t, 500.0, testutil.ToFloat64(m.TicksGenerated))
	assert.Equal(t, 500.0, testutil.ToFloat64(m.TicksVerified))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.BlocksVerified))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InvalidLinks))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.VerifierLag))
}

func TestPipelineReportsInvalidLink(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	// A verifier using a different digest rejects the very first tick.
	verifier := poh.NewVerifier[poh.Hash256](digest.SHA3_256)

	p, err := NewPipeline(digest.SHA256, poh.Hash256{}, verifier,
		Config{BlockSize: 10, Blocks: 3},
		WithMetrics[poh.Hash256](m))
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.ErrorIs(t, err, poh.ErrInvalidLink)
	pos, ok := poh.InvalidPosition(err)
	require.True(t, ok)
	assert.Equal(t, 0, pos)
	assert.Equal(t, 0, report.BlocksVerified)
	assert.Empty(t, report.LastTick)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvalidLinks))
}

func TestPipelineStopsOnCancel(t *testing.T) {
	p, err := NewPipeline(digest.BLAKE3, poh.Hash256{}, nil, Config{BlockSize: 50})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for {
			if _, verified := p.Progress(); verified >= 3 {
				cancel()
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	report, err := p.Run(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.BlocksVerified, 3)
	assert.GreaterOrEqual(t, report.BlocksProduced, report.BlocksVerified)
}

func TestPipelineStopsOnDeadline(t *testing.T) {
	p, err := NewPipeline(digest.SHA256, poh.Hash256{}, nil, Config{BlockSize: 50})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	report, err := p.Run(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.BlocksProduced, report.BlocksVerified)
	assert.Equal(t, report.BlocksVerified*50, report.TicksVerified)
}

func TestPipelineRunsOnce(t *testing.T) {
	p, err := NewPipeline(digest.SHA256, poh.Hash256{}, nil, Config{BlockSize: 10, Blocks: 2})
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.BlocksVerified)

	again, err := p.Run(context.Background())
	require.ErrorIs(t, err, ErrAlreadyRun)
	assert.Nil(t, again)

	produced, verified := p.Progress()
	assert.Equal(t, 2, produced)
	assert.Equal(t, 2, verified)
}

func TestNewPipelineRejectsBadConfig(t *testing.T) {
	tests := []Config{
		{BlockSize: 0, Blocks: 1},
		{BlockSize: 10, Blocks: -1},
		{BlockSize: 10, Blocks: 0, KeepHistory: true},
	}
	for _, cfg := range tests {
		_, err := NewPipeline(digest.SHA256, poh.Hash256{}, nil, cfg)
		assert.Error(t, err, "%+v", cfg)
	}
}

func TestPipelineRecoversDataPanic(t *testing.T) {
	p, err := NewPipeline(digest.SHA256, poh.Hash256{}, nil,
		Config{BlockSize: 10, Blocks: 2},
		WithData[poh.Hash256](func(pos int) []byte {
			if pos == 15 {
				panic("bad data source")
			}
			return nil
		}))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad data source")
}

func TestCompareHistory(t *testing.T) {
	chain := poh.Generate(digest.SHA256, poh.Hash256{}, 4, nil)

	require.NoError(t, compareHistory(chain, slices.Clone(chain)))
	require.NoError(t, compareHistory[poh.Hash256](nil, nil))

	tampered := slices.Clone(chain)
	tampered[2][0] ^= 0xff
	assert.ErrorIs(t, compareHistory(chain, tampered), ErrHistoryMismatch)
	assert.ErrorIs(t, compareHistory(chain, chain[:3]), ErrHistoryMismatch)
}
