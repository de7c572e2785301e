package cmd

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dimkit/dimkit/units"
	"github.com/dimkit/dimkit/units/catalog"
)

var (
	logLevel    string // Log verbosity level
	catalogPath string // Catalog YAML file; empty uses the embedded catalog
	configPath  string // Engine configuration YAML file

	// metricsRegistry collects catalog metrics for the current invocation when
	// the engine configuration enables them.
	metricsRegistry *prometheus.Registry
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "dimkit",
	Short: "Dimensional analysis and exact unit conversion over a unit catalog",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if metricsRegistry != nil {
			reportMetrics(metricsRegistry)
		}
	},
}

// openCatalog loads the engine configuration, applies CLI overrides and opens
// the catalog it names.
func openCatalog(cmd *cobra.Command) (*units.Catalog, *catalog.Config) {
	cfg, err := loadEngineConfig(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	// Only override the config file when the flag was given explicitly.
	if cmd.Flags().Changed("catalog") {
		cfg.CatalogPath = catalogPath
	}
	if cfg.Metrics.Enabled {
		metricsRegistry = prometheus.NewRegistry()
	}
	c, err := cfg.Open(metricsRegistry)
	if err != nil {
		logrus.Fatalf("Failed to open catalog: %v", err)
	}
	return c, cfg
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags shared by every subcommand
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Path to a catalog YAML file (default: embedded catalog)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the engine configuration YAML file")
}
