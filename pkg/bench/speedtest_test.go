package bench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/LICODX/proof-of-history/pkg/digest"
)

func TestRunMeasuresEachDigest(t *testing.T) {
	digests := []digest.Named{digest.SHA256, digest.BLAKE3, digest.Keccak256Eth}

	results, err := Run(context.Background(), digests, 4096, 2, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, digests[i].Name(), res.Digest)
		assert.Equal(t, 4096, res.Ticks)
		assert.Equal(t, 2, res.Workers)
		assert.Positive(t, res.GenerateRate)
		assert.Positive(t, res.VerifyRate)
		assert.Contains(t, res.String(), res.Digest)
	}
}

func TestRunMeasuresWideDigests(t *testing.T) {
	digests := []digest.Named512{digest.SHA512, digest.BLAKE2b512}

	results, err := Run(context.Background(), digests, 2048, 2, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "sha512", results[0].Digest)
	assert.Equal(t, "blake2b-512", results[1].Digest)
	assert.Positive(t, results[1].VerifyRate)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, []digest.Named{digest.SHA256}, 10, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestRunRejectsEmptyRun(t *testing.T) {
	_, err := Run(context.Background(), []digest.Named{digest.SHA256}, 0, 1, nil)
	assert.Error(t, err)
}
