// Package main implements the medkb CLI for offline knowledge base
// builds. Building is a batch job run when source documents change;
// the daemon only ever reads the finished artifacts.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the optional YAML config file shared with medguardd
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "medkb",
	Short: "Build and inspect the medguard knowledge base",
	Long: `medkb builds the medication knowledge base from preprocessed source
documents and inspects the result. The build is a full re-index: it
chunks every document, embeds the chunks, and atomically replaces the
persisted store.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(validateCmd)
}
