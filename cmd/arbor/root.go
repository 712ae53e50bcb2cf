package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/arbor/pkg/arbor/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "arbor [path]",
		Short: "Show where disk space goes, as a tree",
		Long: `Arbor walks a directory tree in parallel and prints it with
per-directory totals, hard-link-aware so no byte is counted twice.

Examples:
  arbor                        # Walk the current directory
  arbor ~/projects             # Walk a specific directory
  arbor -s 10M .               # Hide entries smaller than 10MB
  arbor -d 2 --sort size .     # Two levels deep, largest first
  arbor -o json . | jq .       # Machine-readable output
  arbor -i .                   # Interactive tree browser
  arbor config init            # Write a default config file`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/arbor/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Walk flags
	rootCmd.Flags().Int("max-depth", 0, "limit directory expansion depth (0=unlimited)")
	rootCmd.Flags().BoolP("follow", "f", false, "resolve symlinks to their targets")
	rootCmd.Flags().IntP("workers", "w", 0, "override worker count (0=auto)")

	// Ignore flags
	rootCmd.Flags().BoolP("hidden", "H", false, "include hidden entries")
	rootCmd.Flags().BoolP("gitignore", "g", false, "honor .gitignore files")
	rootCmd.Flags().StringSliceP("exclude", "e", nil, "exclude glob patterns (can be specified multiple times)")

	// View flags
	rootCmd.Flags().String("sort", config.DefaultSortBy, "sort children by: name, size, mtime, type")
	rootCmd.Flags().String("order", config.DefaultSortOrder, "sort direction: asc, desc")
	rootCmd.Flags().StringP("min-size", "s", "", "hide entries below this aggregate size (e.g., 10M, 1G)")
	rootCmd.Flags().IntP("depth", "d", config.DefaultDepth, "limit displayed depth (0=unlimited)")
	rootCmd.Flags().StringP("pattern", "p", "", "show only files matching this regular expression")
	rootCmd.Flags().Bool("keep-dirs", false, "keep directories emptied by filtering")

	// Output flags
	rootCmd.Flags().StringP("output", "o", config.DefaultFormat, "output format: tree, plain, json, jsonl, yaml")
	rootCmd.Flags().String("unit", config.DefaultUnit, "size notation: bin (KiB) or si (kB)")
	rootCmd.Flags().BoolP("physical", "P", false, "report disk usage instead of apparent size")
	rootCmd.Flags().Bool("no-color", false, "disable colored output")
	rootCmd.Flags().BoolP("interactive", "i", false, "browse the tree interactively")

	// Bind flags to viper
	_ = viper.BindPFlag("walk.max_depth", rootCmd.Flags().Lookup("max-depth"))
	_ = viper.BindPFlag("walk.follow_symlinks", rootCmd.Flags().Lookup("follow"))
	_ = viper.BindPFlag("walk.workers", rootCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("ignore.hidden", rootCmd.Flags().Lookup("hidden"))
	_ = viper.BindPFlag("ignore.gitignore", rootCmd.Flags().Lookup("gitignore"))
	_ = viper.BindPFlag("ignore.exclude", rootCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("view.sort_by", rootCmd.Flags().Lookup("sort"))
	_ = viper.BindPFlag("view.sort_order", rootCmd.Flags().Lookup("order"))
	_ = viper.BindPFlag("view.min_size", rootCmd.Flags().Lookup("min-size"))
	_ = viper.BindPFlag("view.depth", rootCmd.Flags().Lookup("depth"))
	_ = viper.BindPFlag("view.pattern", rootCmd.Flags().Lookup("pattern"))
	_ = viper.BindPFlag("view.keep_dirs", rootCmd.Flags().Lookup("keep-dirs"))
	_ = viper.BindPFlag("output.format", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.unit", rootCmd.Flags().Lookup("unit"))
	_ = viper.BindPFlag("output.physical", rootCmd.Flags().Lookup("physical"))
	_ = viper.BindPFlag("output.no_color", rootCmd.Flags().Lookup("no-color"))
	_ = viper.BindPFlag("interactive", rootCmd.Flags().Lookup("interactive"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "arbor"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "arbor"))
		}
	}

	viper.SetEnvPrefix("ARBOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
