package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/funvibe/fulfill/internal/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
	catalogArg string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fulfill",
	Short: "Explain unproven trait goals from recorded solver runs",
	Long: `fulfill replays the proof trees a trait solver recorded for goals it could
not prove and reports each one as a fulfillment error, pointing at the most
specific nested requirement responsible and the impl that introduced it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if catalogArg != "" {
			cfg.Catalog = catalogArg
		}

		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logger.With(zap.String("run", uuid.NewString()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFile, "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every visited goal")
	rootCmd.PersistentFlags().StringVar(&catalogArg, "catalog", "", "impl catalog database (overrides config)")

	explainCmd.Flags().StringVar(&colorArg, "color", "", "color output: auto, always or never")
	explainCmd.Flags().BoolVar(&chainArg, "chain", false, "print the full cause chain")

	rootCmd.AddCommand(explainCmd, importCmd, dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
