package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/vandyand/agentic-workflow-engine/pkg/log"
	"github.com/vandyand/agentic-workflow-engine/pkg/registry"
)

func actionsCommand() *cli.Command {
	return &cli.Command{
		Name:    "actions",
		Aliases: []string{"a"},
		Usage:   "List the registered actions and their contracts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "schemas",
				Usage: "Include input and output schemas in the listing",
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			log.Setup("warn")
			logger := log.WithModule("awe-actions")

			reg := registry.NewRegistry(logger)
			if err := registry.RegisterDefaults(reg); err != nil {
				return fmt.Errorf("failed to register actions: %w", err)
			}

			for _, spec := range reg.Actions() {
				fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", spec.ID, spec.Name, spec.Description)

				if !command.Bool("schemas") {
					continue
				}

				for _, contract := range []struct {
					label  string
					schema map[string]any
				}{
					{"input", spec.InputSchema},
					{"output", spec.OutputSchema},
				} {
					encoded, err := json.MarshalIndent(contract.schema, "  ", "  ")
					if err != nil {
						return fmt.Errorf("failed to encode %s schema for %s: %w", contract.label, spec.ID, err)
					}

					fmt.Fprintf(os.Stdout, "  %s: %s\n", contract.label, encoded)
				}
			}

			return nil
		},
	}
}
