package main

import (
	"encoding/json"

	cli "github.com/lxc/incus/v6/shared/cmd"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type cmdShow struct {
	global *cmdGlobal

	flagFormat string
}

func (c *cmdShow) command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = cli.Usage("show")
	cmd.Short = "Show the update record"
	cmd.Long = cli.FormatSection("Description", "Show the update record from the configured store")
	cmd.Flags().StringVarP(&c.flagFormat, "format", "f", "json", "Output format (json or yaml)``")
	cmd.RunE = c.run

	return cmd
}

func (c *cmdShow) run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := cli.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	svc, _, err := c.global.service()
	if err != nil {
		return err
	}

	record := svc.Fetch(cmd.Context())

	if c.flagFormat == "yaml" {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer func() { _ = enc.Close() }()

		return enc.Encode(record)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	return enc.Encode(record)
}
