// Package main provides the CLI entrypoint for dicekit.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"dicekit/internal/api"
	"dicekit/internal/dice"
	"dicekit/internal/fair"
	"dicekit/internal/rng"
	"dicekit/internal/scan"
	"dicekit/internal/store"
)

const (
	defaultAddr    = ":8080"
	defaultDBPath  = "dicekit.db"
	defaultNonce   = uint64(1)
	shutdownGrace  = 10 * time.Second
	serveReadLimit = 15 * time.Second
	// Write timeout must outlast the 60s request timeout on scan handlers.
	serveWriteLimit = 75 * time.Second
)

var (
	rollSeed int64

	verifyServerSeed string
	verifyClientSeed string
	verifyNonce      uint64

	scanServerSeed string
	scanClientSeed string
	scanStart      uint64
	scanEnd        uint64
	scanOp         string
	scanTarget     int64
	scanTarget2    int64
	scanLimit      int
	scanTimeoutMs  int
	scanJSON       bool

	serveAddr   string
	serveDBPath string
)

// serveConfig carries the server settings; flags override environment values.
type serveConfig struct {
	Addr   string `env:"DICEKIT_ADDR" envDefault:":8080"`
	DBPath string `env:"DICEKIT_DB" envDefault:"dicekit.db"`
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dicekit",
		Short:         "Dice notation interpreter and provably fair roll tools",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", api.EngineVersion, api.GitCommit, api.BuildTime),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newRollCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHashCmd())
	rootCmd.AddCommand(newVariantsCmd())

	return rootCmd
}

// interpreterConfig loads the interpreter bounds, letting DICE_* environment
// variables override the defaults.
func interpreterConfig() (dice.Config, error) {
	cfg := dice.DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return dice.Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return dice.Config{}, err
	}
	return cfg, nil
}

func newRollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roll NOTATION...",
		Short: "Roll one or more dice notations",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRollCmd,
	}
	cmd.Flags().Int64Var(&rollSeed, "seed", 0, "seed for a reproducible session (omit for random rolls)")
	return cmd
}

func runRollCmd(cmd *cobra.Command, args []string) error {
	cfg, err := interpreterConfig()
	if err != nil {
		return err
	}

	// Parse everything up front so a bad notation aborts before any draw.
	specs := make([]dice.Spec, len(args))
	for i, arg := range args {
		spec, err := dice.Parse(arg, cfg)
		if err != nil {
			return err
		}
		specs[i] = spec
	}

	// A seeded session shares one source, so the whole sequence replays.
	var src dice.Source = rng.Crypto()
	if cmd.Flags().Changed("seed") {
		src = rng.Seeded(rollSeed)
	}

	for _, spec := range specs {
		outcome := spec.Eval(src)
		fmt.Fprintln(cmd.OutOrStdout(), outcome.Detail)
	}
	return nil
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify NOTATION",
		Short: "Replay a single nonce against a seed pair",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerifyCmd,
	}
	cmd.Flags().StringVar(&verifyServerSeed, "server", "", "server seed (required)")
	cmd.Flags().StringVar(&verifyClientSeed, "client", "", "client seed (required)")
	cmd.Flags().Uint64Var(&verifyNonce, "nonce", defaultNonce, "nonce to replay")
	_ = cmd.MarkFlagRequired("server")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func runVerifyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := interpreterConfig()
	if err != nil {
		return err
	}
	spec, err := dice.Parse(args[0], cfg)
	if err != nil {
		return err
	}

	outcome := spec.Eval(fair.New(verifyServerSeed, verifyClientSeed, verifyNonce))
	fmt.Fprintf(cmd.OutOrStdout(), "nonce %d: %s\n", verifyNonce, outcome.Detail)
	return nil
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan NOTATION",
		Short: "Search a nonce range for outcomes matching a target",
		Args:  cobra.ExactArgs(1),
		RunE:  runScanCmd,
	}
	cmd.Flags().StringVar(&scanServerSeed, "server", "", "server seed (required)")
	cmd.Flags().StringVar(&scanClientSeed, "client", "", "client seed (required)")
	cmd.Flags().Uint64Var(&scanStart, "start", 1, "first nonce to evaluate")
	cmd.Flags().Uint64Var(&scanEnd, "end", 0, "last nonce to evaluate (required)")
	cmd.Flags().StringVar(&scanOp, "op", "", "target operation: eq, gt, ge, lt, le, between, outside (required)")
	cmd.Flags().Int64Var(&scanTarget, "target", 0, "target value")
	cmd.Flags().Int64Var(&scanTarget2, "target2", 0, "upper bound for between/outside")
	cmd.Flags().IntVar(&scanLimit, "limit", 0, "stop collecting hits after this many (0 = unlimited)")
	cmd.Flags().IntVar(&scanTimeoutMs, "timeout", 0, "abort the scan after this many milliseconds (0 = none)")
	cmd.Flags().BoolVar(&scanJSON, "json", false, "emit the full scan result as JSON")
	_ = cmd.MarkFlagRequired("server")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("op")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := interpreterConfig()
	if err != nil {
		return err
	}

	req := scan.Request{
		Notation:   args[0],
		ServerSeed: scanServerSeed,
		ClientSeed: scanClientSeed,
		NonceStart: scanStart,
		NonceEnd:   scanEnd,
		TargetOp:   scan.TargetOp(scanOp),
		TargetVal:  scanTarget,
		TargetVal2: scanTarget2,
		Limit:      scanLimit,
		TimeoutMs:  scanTimeoutMs,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	result, err := scan.NewScanner().Scan(ctx, req, cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	out := cmd.OutOrStdout()
	if scanJSON {
		raw, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Fprintln(out, string(raw))
		return nil
	}

	s := result.Summary
	fmt.Fprintf(out, "scanned %s nonces in %v\n", humanize.Comma(int64(s.TotalEvaluated)), elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "hits: %s (rate %s)\n", humanize.Comma(int64(s.HitsFound)), s.HitRate.String())
	if s.HitsFound > 0 {
		fmt.Fprintf(out, "results: min %d, max %d, mean %s\n", s.MinResult, s.MaxResult, s.MeanResult.String())
	}
	if s.TimedOut {
		fmt.Fprintln(out, "scan timed out before covering the full range")
	}
	for _, hit := range result.Hits {
		fmt.Fprintf(out, "  nonce %d: %s\n", hit.Nonce, hit.Detail)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveDBPath, "db", defaultDBPath, "sqlite database path")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	var cfg serveConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = serveDBPath
	}

	diceCfg, err := interpreterConfig()
	if err != nil {
		return err
	}

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx); err != nil {
		return multierr.Combine(fmt.Errorf("migrate: %w", err), db.Close())
	}

	server := api.NewServer(db, diceCfg)
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Routes(),
		ReadTimeout:  serveReadLimit,
		WriteTimeout: serveWriteLimit,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return multierr.Combine(fmt.Errorf("listen: %w", err), db.Close())
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	log.Printf("server_started addr=%s db=%s engine_version=%s", cfg.Addr, cfg.DBPath, api.EngineVersion)

	select {
	case err := <-serveErr:
		return multierr.Combine(err, db.Close())
	case <-ctx.Done():
	}

	log.Printf("server_stopping addr=%s", cfg.Addr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	return multierr.Combine(httpServer.Shutdown(shutdownCtx), db.Close())
}

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash SEED",
		Short: "Print the SHA-256 commitment of a server seed",
		Args:  cobra.ExactArgs(1),
		RunE:  runHashCmd,
	}
}

func runHashCmd(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), fair.HashSeed(args[0]))
	return nil
}

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the supported notation grammars",
		Args:  cobra.NoArgs,
		RunE:  runVariantsCmd,
	}
}

func runVariantsCmd(cmd *cobra.Command, _ []string) error {
	for _, v := range dice.Variants() {
		fmt.Fprintf(cmd.OutOrStdout(), "%-13s %-13s e.g. %s\n", v.Name, v.Kind, v.Example)
	}
	return nil
}
