package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mptyl/thoth-sqlgen/internal/config"
)

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
)

// rootCmd is the base command; every subcommand inherits cfg/logger from
// its PersistentPreRunE.
var rootCmd = &cobra.Command{
	Use:   "sqlgenctl",
	Short: "sqlgenctl runs and administers the Text-to-SQL generation service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		zapCfg := zap.NewProductionConfig()
		if cfg.LogFormat == "console" {
			zapCfg = zap.NewDevelopmentConfig()
		}
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = zapcore.InfoLevel
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)

		built, err := zapCfg.Build()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		logger = built
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (env vars prefixed THOTH_ always take precedence)")

	rootCmd.AddCommand(serveCmd, migrateCmd, importSchemaCmd, configInitCmd)
}
