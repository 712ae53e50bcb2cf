package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/arbor/pkg/arbor/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage arbor configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/arbor/config.yaml (if set)
  2. ~/.config/arbor/config.yaml

Environment variables can override config file settings using the ARBOR_ prefix:
  ARBOR_VIEW_MIN_SIZE=10M
  ARBOR_WALK_WORKERS=8
  ARBOR_OUTPUT_FORMAT=json`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		printError("Failed to load configuration: %v", err)
		cfg = &config.Config{DefaultPath: config.DefaultPath}
		cfg.View.SortBy = config.DefaultSortBy
		cfg.View.SortOrder = config.DefaultSortOrder
		cfg.Output.Format = config.DefaultFormat
		cfg.Output.Unit = config.DefaultUnit
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("default_path:          %s\n", cfg.DefaultPath)
	fmt.Printf("walk.max_depth:        %d\n", cfg.Walk.MaxDepth)
	fmt.Printf("walk.follow_symlinks:  %t\n", cfg.Walk.FollowSymlinks)
	fmt.Printf("walk.workers:          %d\n", cfg.Walk.Workers)
	fmt.Printf("ignore.hidden:         %t\n", cfg.Ignore.Hidden)
	fmt.Printf("ignore.gitignore:      %t\n", cfg.Ignore.Gitignore)
	fmt.Printf("ignore.exclude:        %v\n", cfg.Ignore.Exclude)
	fmt.Printf("view.sort_by:          %s\n", cfg.View.SortBy)
	fmt.Printf("view.sort_order:       %s\n", cfg.View.SortOrder)
	fmt.Printf("view.min_size:         %s\n", cfg.View.MinSize)
	fmt.Printf("view.depth:            %d\n", cfg.View.Depth)
	fmt.Printf("view.pattern:          %s\n", cfg.View.Pattern)
	fmt.Printf("view.keep_dirs:        %t\n", cfg.View.KeepDirs)
	fmt.Printf("output.format:         %s\n", cfg.Output.Format)
	fmt.Printf("output.unit:           %s\n", cfg.Output.Unit)
	fmt.Printf("output.physical:       %t\n", cfg.Output.Physical)

	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"ARBOR_DEFAULT_PATH",
		"ARBOR_WALK_MAX_DEPTH",
		"ARBOR_WALK_FOLLOW_SYMLINKS",
		"ARBOR_WALK_WORKERS",
		"ARBOR_IGNORE_HIDDEN",
		"ARBOR_IGNORE_GITIGNORE",
		"ARBOR_IGNORE_EXCLUDE",
		"ARBOR_VIEW_SORT_BY",
		"ARBOR_VIEW_SORT_ORDER",
		"ARBOR_VIEW_MIN_SIZE",
		"ARBOR_VIEW_DEPTH",
		"ARBOR_OUTPUT_FORMAT",
		"ARBOR_OUTPUT_UNIT",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'arbor config edit' to modify it.")
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	fmt.Println(configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}
	return nil
}
