// Package main is used for the Tauri update-manifest host.
package main

import (
	"log/slog"
	"os"

	cli "github.com/lxc/incus/v6/shared/cmd"
	"github.com/spf13/cobra"

	"github.com/barokatu/tauri-updater-server/internal/auth"
	"github.com/barokatu/tauri-updater-server/internal/config"
	"github.com/barokatu/tauri-updater-server/internal/storage"
	"github.com/barokatu/tauri-updater-server/internal/updates"
)

var version = "dev"

type cmdGlobal struct {
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string

	config *config.Config
}

func main() {
	// Global flags.
	globalCmd := cmdGlobal{}

	app := &cobra.Command{
		Use:   "update-host",
		Short: "Tauri update manifest host",
		Long: cli.FormatSection("Description",
			`Tauri update manifest host

This tool serves the JSON manifest used by the Tauri updater and lets an
operator edit it through a web form or authenticated API calls.`),
		Version:           version,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: globalCmd.preRun,
	}

	app.PersistentFlags().StringVarP(&globalCmd.flagConfig, "config", "c", "", "Path to a YAML configuration file``")
	app.PersistentFlags().StringVar(&globalCmd.flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)``")
	app.PersistentFlags().StringVar(&globalCmd.flagLogFormat, "log-format", "", "Log format (text or json)``")

	// Help handling.
	app.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	// serve sub-command
	serveCmd := cmdServe{global: &globalCmd}
	app.AddCommand(serveCmd.command())

	// token sub-command
	tokenCmd := cmdToken{global: &globalCmd}
	app.AddCommand(tokenCmd.command())

	// show sub-command
	showCmd := cmdShow{global: &globalCmd}
	app.AddCommand(showCmd.command())

	// set sub-command
	setCmd := cmdSet{global: &globalCmd}
	app.AddCommand(setCmd.command())

	// Run the main command and handle errors.
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// preRun resolves the configuration and sets up the logger for all sub-commands.
func (c *cmdGlobal) preRun(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.flagConfig)
	if err != nil {
		return err
	}

	if c.flagLogLevel != "" {
		cfg.LogLevel = c.flagLogLevel
	}

	if c.flagLogFormat != "" {
		cfg.LogFormat = c.flagLogFormat
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}

	// Prepare a logger.
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))

	c.config = cfg

	return nil
}

// service returns the record service for the resolved configuration.
func (c *cmdGlobal) service() (*updates.Service, *storage.Chain, error) {
	chain, err := storage.Load(c.config)
	if err != nil {
		return nil, nil, err
	}

	return updates.NewService(chain), chain, nil
}

// checker returns the credential check for the resolved configuration.
func (c *cmdGlobal) checker() auth.Checker {
	return auth.NewStaticToken(c.config.Auth.Secret)
}
