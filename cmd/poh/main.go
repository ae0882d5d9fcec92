package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LICODX/proof-of-history/pkg/bench"
	"github.com/LICODX/proof-of-history/pkg/config"
	"github.com/LICODX/proof-of-history/pkg/digest"
	"github.com/LICODX/proof-of-history/pkg/logging"
	"github.com/LICODX/proof-of-history/pkg/metrics"
	"github.com/LICODX/proof-of-history/pkg/stream"
	"github.com/LICODX/proof-of-history/pkg/utils"
	"github.com/LICODX/proof-of-history/poh"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, envErr := config.FromEnv()

	root := &cobra.Command{
		Use:           "poh",
		Short:         "Proof of History tick producer and parallel verifier",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.JSONLogs)
			if err != nil {
				return err
			}
			logging.SetDefault(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.L().Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Digest, "digest", cfg.Digest, fmt.Sprintf("hash function %v", digest.Names()))
	flags.StringVar(&cfg.Seed, "seed", cfg.Seed, "0x-prefixed 32 byte seed (default all zero)")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "verifier goroutines (0 = every core)")
	flags.IntVar(&cfg.MinSpan, "min-span", cfg.MinSpan, "smallest run of ticks checked by one goroutine")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flags.BoolVar(&cfg.JSONLogs, "json-logs", cfg.JSONLogs, "write logs as JSON")

	root.AddCommand(newDemoCmd(&cfg), newBenchCmd(&cfg), newTicksCmd(&cfg))
	return root
}

func newDemoCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Produce ticks on one goroutine and verify them in blocks on the others",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), *cfg)
		},
	}
	cmd.Flags().IntVar(&cfg.BlockSize, "block-size", cfg.BlockSize, "ticks per block handed to the verifier")
	cmd.Flags().IntVar(&cfg.Blocks, "blocks", cfg.Blocks, "blocks to produce (0 = until interrupted)")
	cmd.Flags().BoolVar(&cfg.KeepHistory, "keep-history", cfg.KeepHistory, "compare producer and verifier histories at the end")
	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve /metrics and /healthz on this address")
	return cmd
}

func runDemo(parent context.Context, cfg config.Config) error {
	logger := logging.Component("demo")
	shutdown := utils.NewShutdownManager(parent, config.DefaultGracePeriod, logger)
	defer shutdown.Shutdown()

	d, seed, err := chainParams(cfg)
	if err != nil {
		return err
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("⏱  Proof of History demo")
	fmt.Printf("   Digest: %s  Block: %d ticks  Blocks: %d\n", d.Name(), cfg.BlockSize, cfg.Blocks)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	reg := metrics.NewRegistry()
	m := metrics.New(reg)
	verifier := poh.NewVerifier[poh.Hash256](d,
		poh.WithWorkers(cfg.Workers),
		poh.WithMinSpan(cfg.MinSpan),
		poh.WithLogger(logging.Component("verifier")))

	pipeline, err := stream.NewPipeline[poh.Hash256](d, seed, verifier,
		stream.Config{BlockSize: cfg.BlockSize, Blocks: cfg.Blocks, KeepHistory: cfg.KeepHistory},
		stream.WithLogger[poh.Hash256](logging.Component("stream")),
		stream.WithMetrics[poh.Hash256](m))
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		health := utils.NewHealthMonitor(logging.Component("health"))
		health.RegisterComponent("verifier", func() (utils.HealthStatus, string) {
			produced, verified := pipeline.Progress()
			switch lag := produced - verified; {
			case lag > 2:
				return utils.StatusUnhealthy, fmt.Sprintf("verifier is %d blocks behind", lag)
			case lag > 1:
				return utils.StatusDegraded, fmt.Sprintf("verifier is %d blocks behind", lag)
			}
			return utils.StatusHealthy, ""
		})
		serveMetrics(shutdown, cfg.MetricsAddr, metrics.Handler(reg), health.Handler(), logger)
	}

	report, err := pipeline.Run(shutdown.Context())
	if report != nil {
		fmt.Printf("✅ Produced %d ticks, verified %d in %v\n", report.TicksProduced, report.TicksVerified, report.Elapsed.Round(time.Millisecond))
		if report.LastTick != "" {
			fmt.Printf("   Last tick: %s\n", report.LastTick)
		}
	}
	return err
}

func serveMetrics(shutdown *utils.ShutdownManager, addr string, metricsHandler, healthHandler http.Handler, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)
	mux.Handle("/healthz", healthHandler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	utils.SafeGoroutine("metrics-server", logger, func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	})
	shutdown.RegisterShutdownHook("metrics-server", srv.Shutdown)
}

func newBenchCmd(cfg *config.Config) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure tick generation and verification rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := []string{cfg.Digest}
			if all {
				names = digest.Names()
			}
			digests := make([]digest.Named, 0, len(names))
			for _, name := range names {
				d, err := digest.Lookup(name)
				if err != nil {
					return err
				}
				digests = append(digests, d)
			}

			logger := logging.Component("bench")
			results, err := bench.Run(cmd.Context(), digests, cfg.BenchTicks, cfg.Workers, logger)
			if err == nil && all {
				var wide []bench.SpeedTestResult
				wide, err = bench.Run(cmd.Context(), wideDigests(), cfg.BenchTicks, cfg.Workers, logger)
				results = append(results, wide...)
			}
			for _, res := range results {
				fmt.Fprintln(cmd.OutOrStdout(), res)
			}
			return err
		},
	}
	cmd.Flags().IntVar(&cfg.BenchTicks, "ticks", cfg.BenchTicks, "ticks generated and verified per digest")
	cmd.Flags().BoolVar(&all, "all", false, "benchmark every registered digest, 512-bit ones included")
	return cmd
}

// wideDigests returns every registered 512-bit digest. Names512 only lists
// registered names, so the lookups cannot fail.
func wideDigests() []digest.Named512 {
	var digests []digest.Named512
	for _, name := range digest.Names512() {
		d, _ := digest.Lookup512(name)
		digests = append(digests, d)
	}
	return digests
}

func newTicksCmd(cfg *config.Config) *cobra.Command {
	n := config.DefaultPrintTicks
	cmd := &cobra.Command{
		Use:   "ticks",
		Short: "Print the first ticks of the chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, seed, err := chainParams(*cfg)
			if err != nil {
				return err
			}
			if n <= 0 {
				return nil
			}
			gen := poh.NewGenerator[poh.Hash256](d, seed)
			i := 0
			for tick := range gen.Ticks() {
				fmt.Fprintf(cmd.OutOrStdout(), "Tick %d: %s\n", i, tick)
				i++
				if i == n {
					break
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", n, "number of ticks to print")
	return cmd
}

func chainParams(cfg config.Config) (digest.Named, poh.Hash256, error) {
	d, err := digest.Lookup(cfg.Digest)
	if err != nil {
		return nil, poh.Hash256{}, err
	}
	seed, err := cfg.SeedHash()
	if err != nil {
		return nil, poh.Hash256{}, err
	}
	return d, seed, nil
}
