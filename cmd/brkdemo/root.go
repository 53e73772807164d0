package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "brkdemo",
	Short: "Exercise the brk heap allocator",
	Long: `brkdemo drives a heap built on the brk allocator and reports what it did.
It is useful for checking the allocator on a new platform and for looking at
how the block list grows and fragments.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log heap growth and block reuse to stderr")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger returns the logger handed to heaps. Without --verbose heaps get nil and
// discard their output.
func newLogger() *slog.Logger {
	if !verbose {
		return nil
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
