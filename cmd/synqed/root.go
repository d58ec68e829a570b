package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/synqed/internal/app"
	"github.com/cesargomez89/synqed/internal/config"
	"github.com/cesargomez89/synqed/internal/httpclient"
	"github.com/cesargomez89/synqed/internal/logger"
	"github.com/cesargomez89/synqed/internal/store"
	"github.com/cesargomez89/synqed/internal/toolchain"
)

// commandContext loads configuration once and hands out the shared pieces
// every subcommand needs.
type commandContext struct {
	configFlag *string
	cfg        *config.Config
	log        *logger.Logger
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := &commandContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "synqed",
		Short:         "Queue audio downloads and keep them in a tagged library",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newLibraryCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))

	return rootCmd
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	path := *c.configFlag
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	c.cfg = cfg
	c.log = logger.New(logger.Config{
		Output: os.Stderr,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	return cfg, nil
}

func (c *commandContext) openDB() (*store.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (c *commandContext) settings(db *store.DB) *app.Settings {
	return app.NewSettings(store.NewSettingsRepo(db), c.cfg)
}

func (c *commandContext) toolchain() *toolchain.Manager {
	return toolchain.NewManager(c.cfg.BinDir, c.cfg.ToolVersions(), httpclient.NewClient(nil, 0), c.log)
}
