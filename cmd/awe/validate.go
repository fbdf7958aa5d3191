package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/vandyand/agentic-workflow-engine/pkg/log"
	"github.com/vandyand/agentic-workflow-engine/pkg/registry"
	"github.com/vandyand/agentic-workflow-engine/pkg/workflow"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Check a workflow definition for structural problems without running it",
		ArgsUsage: "<workflow-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("awe-validate")

			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("missing workflow file argument")
			}

			def, err := workflow.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load workflow: %w", err)
			}

			if err := workflow.Validate(def); err != nil {
				return fmt.Errorf("workflow %q is invalid: %w", def.ID, err)
			}

			reg := registry.NewRegistry(logger)
			if err := registry.RegisterDefaults(reg); err != nil {
				return fmt.Errorf("failed to register actions: %w", err)
			}

			for _, step := range def.Steps {
				if _, err := reg.Lookup(step.Action); err != nil {
					return fmt.Errorf("step %q: %w", step.ID, err)
				}
			}

			fmt.Fprintf(os.Stdout, "workflow %q is valid (%d steps)\n", def.ID, len(def.Steps))

			return nil
		},
	}
}
