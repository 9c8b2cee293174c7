package main

import (
	"fmt"

	cli "github.com/lxc/incus/v6/shared/cmd"
	"github.com/spf13/cobra"

	"github.com/barokatu/tauri-updater-server/internal/auth"
)

type cmdToken struct {
	global *cmdGlobal
}

func (c *cmdToken) command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = cli.Usage("token", "[<secret>]")
	cmd.Short = "Print the API token"
	cmd.Long = cli.FormatSection("Description",
		`Print the API token

Prints the token clients must send in the Authorization header, derived
from the given secret or from the configured one.
`)
	cmd.Example = cli.FormatSection("", `update-host token
    Print the token for the configured secret.

curl -X PUT -H "Authorization: Bearer $(update-host token)" -d @update.json http://localhost:8080/updates
    Publish a new update record.`)
	cmd.RunE = c.run

	return cmd
}

func (c *cmdToken) run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := cli.CheckArgs(cmd, args, 0, 1)
	if exit {
		return err
	}

	secret := c.global.config.Auth.Secret
	if len(args) == 1 {
		secret = args[0]
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), auth.GenerateToken(secret))

	return err
}
