package config

import "time"

const (
	DefaultDigest      = "keccak256"
	DefaultBlockSize   = 1_000_000
	DefaultBlocks      = 10
	DefaultMinSpan     = 1024
	DefaultBenchTicks  = 1 << 16
	DefaultLogLevel    = "info"
	DefaultGracePeriod = 10 * time.Second
	DefaultPrintTicks  = 10
)

// Environment variables read by FromEnv.
const (
	EnvDigest      = "POH_DIGEST"
	EnvSeed        = "POH_SEED"
	EnvBlockSize   = "POH_BLOCK_SIZE"
	EnvBlocks      = "POH_BLOCKS"
	EnvWorkers     = "POH_WORKERS"
	EnvMinSpan     = "POH_MIN_SPAN"
	EnvKeepHistory = "POH_KEEP_HISTORY"
	EnvLogLevel    = "POH_LOG_LEVEL"
	EnvJSONLogs    = "POH_JSON_LOGS"
	EnvMetricsAddr = "POH_METRICS_ADDR"
	EnvBenchTicks  = "POH_BENCH_TICKS"
)
