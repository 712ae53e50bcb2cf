package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/arbor/cmd/arbor/tui"
	"github.com/jamesainslie/arbor/pkg/arbor/aggregate"
	"github.com/jamesainslie/arbor/pkg/arbor/config"
	"github.com/jamesainslie/arbor/pkg/arbor/ignore"
	"github.com/jamesainslie/arbor/pkg/arbor/logging"
	"github.com/jamesainslie/arbor/pkg/arbor/output"
	"github.com/jamesainslie/arbor/pkg/arbor/view"
	"github.com/jamesainslie/arbor/pkg/arbor/walker"
)

// runScan is the main scan command handler.
func runScan(_ *cobra.Command, args []string) error {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Determine walk path
	scanPath := cfg.DefaultPath
	if len(args) > 0 {
		scanPath = args[0]
	}

	expandedPath, err := config.ExpandPath(scanPath)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	absPath, err := filepath.Abs(expandedPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", absPath)
		}
		return fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", absPath)
	}

	if err := initLogging(&cfg); err != nil {
		return err
	}
	defer func() { _ = logging.Close() }()

	walkOpts := walker.Options{
		Root:           absPath,
		MaxDepth:       cfg.Walk.MaxDepth,
		FollowSymlinks: cfg.Walk.FollowSymlinks,
		Workers:        cfg.Walk.Workers,
		Ignore: ignore.Options{
			RespectGitignore: cfg.Ignore.Gitignore,
			IncludeHidden:    cfg.Ignore.Hidden,
			Patterns:         cfg.Ignore.Exclude,
		},
	}

	sortKey, _ := view.ParseSortKey(cfg.View.SortBy)
	sortOrder, _ := view.ParseOrder(cfg.View.SortOrder)

	filters, err := buildFilters(&cfg)
	if err != nil {
		return err
	}

	unit := output.UnitBinary
	if cfg.Output.Unit == "si" {
		unit = output.UnitSI
	}

	if viper.GetBool("interactive") {
		return tui.Run(tui.Options{
			Walk:         walkOpts,
			SortKey:      sortKey,
			SortOrder:    sortOrder,
			Filters:      filters,
			Unit:         unit,
			ShowPhysical: cfg.Output.Physical,
		})
	}

	return runNonInteractiveScan(&cfg, walkOpts, sortKey, sortOrder, filters, unit)
}

// buildFilters converts configured display filters into view.Filters.
func buildFilters(cfg *config.Config) (view.Filters, error) {
	filters := view.Filters{
		MaxDepth: cfg.View.Depth,
		KeepDirs: cfg.View.KeepDirs,
	}

	minSize, err := cfg.MinSizeBytes()
	if err != nil {
		return filters, fmt.Errorf("invalid minimum size %q: %w", cfg.View.MinSize, err)
	}
	filters.MinSize = minSize

	if cfg.View.Pattern != "" {
		re, err := regexp.Compile(cfg.View.Pattern)
		if err != nil {
			return filters, fmt.Errorf("invalid pattern %q: %w", cfg.View.Pattern, err)
		}
		filters.Pattern = re
	}
	return filters, nil
}

// initLogging configures the file log sink; verbose mode mirrors debug
// output to stderr.
func initLogging(cfg *config.Config) error {
	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Components: cfg.Logging.Components,
	}
	if getVerbose() {
		logCfg.Level = "debug"
		logCfg.ConsoleLevel = "debug"
	}

	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// runNonInteractiveScan walks, aggregates, finalizes, and prints.
func runNonInteractiveScan(cfg *config.Config, walkOpts walker.Options,
	sortKey view.SortKey, sortOrder view.Order, filters view.Filters, unit output.Unit) error {

	formatter, err := output.Get(cfg.Output.Format)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v",
			cfg.Output.Format, output.Available())
	}
	if tf, ok := formatter.(*output.TreeFormatter); ok {
		tf.NoColor = cfg.Output.NoColor
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, stopping walk...")
		cancel()
	}()

	res, err := walker.New(walkOpts).Walk(ctx)
	if err != nil {
		if errors.Is(err, walker.ErrScanCancelled) {
			printInfo("Walk cancelled")
			return nil
		}
		return fmt.Errorf("walk failed: %w", err)
	}

	if err := aggregate.Run(res); err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	view.Sort(res.Arena, res.Root, sortKey, sortOrder)
	view.Prune(res.Arena, res.Root, filters)

	result := buildResult(res, walkOpts.Root, cfg, unit)

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	if len(res.Errors) > 0 {
		printVerbose("%d entries degraded during the walk", len(res.Errors))
	}
	return nil
}

// buildResult collects rows and metadata for the formatter.
func buildResult(res *walker.Result, root string, cfg *config.Config, unit output.Unit) *output.Result {
	var rows []view.Row
	for row := range view.Rows(res.Arena, res.Root) {
		rows = append(rows, row)
	}

	return &output.Result{
		Rows:         rows,
		Root:         root,
		ScanID:       res.ScanID,
		Stats:        res.Stats,
		Errors:       res.Errors,
		ShowPhysical: cfg.Output.Physical,
		Unit:         unit,
	}
}
