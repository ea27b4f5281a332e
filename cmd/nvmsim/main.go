// Package main provides the nvmsim command-line interface.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var rootCmd = &cobra.Command{
	Use: "nvmsim",
	Short: "nvmsim is a cycle-accurate timing and energy simulator for " +
		"non-volatile main memory",
	Long: `nvmsim simulates main-memory devices such as PCM and STT-RAM ` +
		`with a detailed command timing model, per-component energy ` +
		`accounting, and bit-level endurance tracking. It replays memory ` +
		`access traces or runs as a backend for a host simulator.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}

	atexit.Exit(0)
}
