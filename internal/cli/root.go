// Package cli implements the hamtstore command line tool: offline
// inspection of persisted trie stores.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile  string
	backendType string
	storePath   string
	compression string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "hamtstore",
	Short: "Inspect persisted hash array mapped trie stores",
	Long: `hamtstore opens a content-addressed trie store offline and inspects it:
per-store statistics, structural verification of a snapshot from its root
hash, and dumps of individual archived nodes.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&backendType, "backend", "", "backend type (memory, pebble, leveldb)")
	rootCmd.PersistentFlags().StringVar(&storePath, "path", "", "store directory")
	rootCmd.PersistentFlags().StringVar(&compression, "compression", "", "value compression (none, lz4)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
