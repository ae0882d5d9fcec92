package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LICODX/proof-of-history/pkg/digest"
	"github.com/LICODX/proof-of-history/poh"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTicksCommand(t *testing.T) {
	out, err := run(t, "ticks", "--digest", "sha256", "-n", "3")
	require.NoError(t, err)

	want := poh.Generate[poh.Hash256](digest.SHA256, poh.Hash256{}, 3, nil)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.Contains(t, line, want[i].String())
	}
}

func TestBenchCommand(t *testing.T) {
	out, err := run(t, "bench", "--digest", "blake3", "--ticks", "2048", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "blake3")
}

func TestBenchAllCommand(t *testing.T) {
	out, err := run(t, "bench", "--all", "--ticks", "256", "--workers", "2")
	require.NoError(t, err)
	for _, name := range append(digest.Names(), digest.Names512()...) {
		assert.Contains(t, out, name)
	}
}

func TestRejectsUnknownDigest(t *testing.T) {
	_, err := run(t, "ticks", "--digest", "md5")
	assert.ErrorContains(t, err, "md5")
}

func TestDemoCommand(t *testing.T) {
	_, err := run(t, "demo", "--digest", "keccak256", "--block-size", "500", "--blocks", "3", "--keep-history", "--workers", "2")
	require.NoError(t, err)
}
