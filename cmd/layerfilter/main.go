// Command layerfilter compiles filter trees to CQL and synchronizes
// reference-layer geometries against an Arrow Flight layer service.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:   "layerfilter",
		Short: "Compile map-viewer filters to CQL and sync reference layers",
		Long: `layerfilter works on filter group trees stored as JSON.

Settings are read from flags, LAYERFILTER_* environment variables and an
optional YAML config file, in that order of precedence.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
