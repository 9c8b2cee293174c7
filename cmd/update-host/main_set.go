package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	cli "github.com/lxc/incus/v6/shared/cmd"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type cmdSet struct {
	global *cmdGlobal
}

func (c *cmdSet) command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = cli.Usage("set", "<file>")
	cmd.Short = "Replace the update record"
	cmd.Long = cli.FormatSection("Description",
		`Replace the update record

Reads a JSON or YAML manifest, validates it and writes it to the configured
store. Use "-" to read from standard input. YAML values are read as text,
so "version: 1.0" publishes the version "1.0".
`)
	cmd.Example = cli.FormatSection("", `update-host set update.yaml
    Publish the release described in update.yaml.`)
	cmd.RunE = c.run

	return cmd
}

func (c *cmdSet) run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := cli.CheckArgs(cmd, args, 1, 1)
	if exit {
		return err
	}

	var content []byte

	if args[0] == "-" {
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(args[0])
	}

	if err != nil {
		return err
	}

	candidate, err := manifestToJSON(content)
	if err != nil {
		return err
	}

	svc, chain, err := c.global.service()
	if err != nil {
		return err
	}

	record, err := svc.Upsert(cmd.Context(), candidate)
	if err != nil {
		return err
	}

	slog.InfoContext(cmd.Context(), "Published update record", "version", record.Version, "backend", chain.Writer().Type())

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Published version %s\n", record.Version)

	return err
}

// manifestToJSON returns content as JSON, converting it from YAML if needed.
// YAML scalars other than null are kept as strings, so "version: 1.0" is the
// version "1.0".
func manifestToJSON(content []byte) ([]byte, error) {
	if json.Valid(content) {
		return content, nil
	}

	var doc yaml.Node

	err := yaml.Unmarshal(content, &doc)
	if err != nil {
		return nil, fmt.Errorf("manifest is neither JSON nor YAML: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errors.New("manifest is empty")
	}

	var buf bytes.Buffer

	err = writeNode(&buf, doc.Content[0])
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// writeNode writes node as JSON, keeping the key order of mappings.
func writeNode(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.AliasNode:
		return writeNode(buf, node.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')

		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}

			key, err := json.Marshal(node.Content[i].Value)
			if err != nil {
				return err
			}

			buf.Write(key)
			buf.WriteByte(':')

			err = writeNode(buf, node.Content[i+1])
			if err != nil {
				return err
			}
		}

		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')

		for i, child := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}

			err := writeNode(buf, child)
			if err != nil {
				return err
			}
		}

		buf.WriteByte(']')
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			buf.WriteString("null")

			return nil
		}

		value, err := json.Marshal(node.Value)
		if err != nil {
			return err
		}

		buf.Write(value)
	default:
		return fmt.Errorf("unsupported YAML node at line %d", node.Line)
	}

	return nil
}
