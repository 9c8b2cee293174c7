package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/lxc/incus/v6/shared/cmd"
	"github.com/spf13/cobra"

	"github.com/barokatu/tauri-updater-server/internal/rest"
)

type cmdServe struct {
	global *cmdGlobal
}

func (c *cmdServe) command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = cli.Usage("serve")
	cmd.Short = "Serve the update manifest"
	cmd.Long = cli.FormatSection("Description",
		`Serve the update manifest

The manifest is read from the key-value store when KV_REST_API_URL and
KV_REST_API_TOKEN are set, falling back to the local data file otherwise.
`)
	cmd.RunE = c.run

	return cmd
}

func (c *cmdServe) run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := cli.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, warning := range c.global.config.Warnings() {
		slog.WarnContext(ctx, warning)
	}

	svc, chain, err := c.global.service()
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Using record store", "backend", chain.Writer().Type(), "read_auth", c.global.config.Auth.Read)

	server, err := rest.NewServer(c.global.config, svc, c.global.checker())
	if err != nil {
		return err
	}

	return server.Serve(ctx)
}
