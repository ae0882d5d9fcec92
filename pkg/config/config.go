package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/LICODX/proof-of-history/pkg/digest"
	"github.com/LICODX/proof-of-history/poh"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Digest      string
	Seed        string // 0x-prefixed hex; empty means the all-zero seed
	BlockSize   int
	Blocks      int // 0 runs until interrupted
	Workers     int // 0 uses every core
	MinSpan     int
	KeepHistory bool
	LogLevel    string
	JSONLogs    bool
	MetricsAddr string
	BenchTicks  int
}

func Default() Config {
	return Config{
		Digest:     DefaultDigest,
		BlockSize:  DefaultBlockSize,
		Blocks:     DefaultBlocks,
		MinSpan:    DefaultMinSpan,
		LogLevel:   DefaultLogLevel,
		BenchTicks: DefaultBenchTicks,
	}
}

// FromEnv starts from Default and applies every POH_* variable that is set.
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.Digest = envDefault(EnvDigest, cfg.Digest)
	cfg.Seed = envDefault(EnvSeed, cfg.Seed)
	cfg.LogLevel = envDefault(EnvLogLevel, cfg.LogLevel)
	cfg.MetricsAddr = envDefault(EnvMetricsAddr, cfg.MetricsAddr)

	ints := []struct {
		key string
		dst *int
	}{
		{EnvBlockSize, &cfg.BlockSize},
		{EnvBlocks, &cfg.Blocks},
		{EnvWorkers, &cfg.Workers},
		{EnvMinSpan, &cfg.MinSpan},
		{EnvBenchTicks, &cfg.BenchTicks},
	}
	for _, v := range ints {
		raw := os.Getenv(v.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, v.key, raw, err)
		}
		*v.dst = n
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{EnvKeepHistory, &cfg.KeepHistory},
		{EnvJSONLogs, &cfg.JSONLogs},
	}
	for _, v := range bools {
		raw := os.Getenv(v.key)
		if raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, v.key, raw, err)
		}
		*v.dst = b
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := digest.Lookup(c.Digest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.SeedHash(); err != nil {
		return fmt.Errorf("%w: seed: %v", ErrInvalidConfig, err)
	}
	switch {
	case c.BlockSize < 1:
		return fmt.Errorf("%w: block size must be positive, got %d", ErrInvalidConfig, c.BlockSize)
	case c.Blocks < 0:
		return fmt.Errorf("%w: blocks must not be negative, got %d", ErrInvalidConfig, c.Blocks)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	case c.MinSpan < 1:
		return fmt.Errorf("%w: min span must be positive, got %d", ErrInvalidConfig, c.MinSpan)
	case c.BenchTicks < 1:
		return fmt.Errorf("%w: bench ticks must be positive, got %d", ErrInvalidConfig, c.BenchTicks)
	case c.KeepHistory && c.Blocks == 0:
		return fmt.Errorf("%w: keep history needs a finite number of blocks", ErrInvalidConfig)
	}
	return nil
}

// SeedHash decodes Seed, returning the zero hash when it is empty.
func (c Config) SeedHash() (poh.Hash256, error) {
	if c.Seed == "" {
		return poh.Hash256{}, nil
	}
	return poh.ParseHash256(c.Seed)
}

func envDefault(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}
