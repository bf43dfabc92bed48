package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ntreg/hive"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	debug   bool

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "ntregctl",
	Short: "Inspect Windows NT registry hive files",
	Long: `ntregctl reads Windows NT registry hive files and reports on their
header, key tree, values and cell layout. The set and delete commands edit
the hive in place; every other command opens it read-only.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log engine diagnostics to stderr")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the engine logger from the global flags.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// openHive opens path read-only.
func openHive(path string) (*hive.Hive, error) {
	printVerbose("Opening hive: %s\n", path)
	h, err := hive.Open(path, hive.Options{Mode: hive.ModeReadOnly, Logger: newLogger()})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// resolveKey looks up a key path, treating "" as the root.
func resolveKey(h *hive.Hive, path string) (hive.Ref, error) {
	if path == "" {
		return h.Root(), nil
	}
	return h.Lookup(path)
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
