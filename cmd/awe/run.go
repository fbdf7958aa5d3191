package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/vandyand/agentic-workflow-engine/pkg/cache"
	"github.com/vandyand/agentic-workflow-engine/pkg/log"
	"github.com/vandyand/agentic-workflow-engine/pkg/models"
	"github.com/vandyand/agentic-workflow-engine/pkg/otelhelper"
	"github.com/vandyand/agentic-workflow-engine/pkg/registry"
	"github.com/vandyand/agentic-workflow-engine/pkg/workflow"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Execute a workflow definition file",
		ArgsUsage: "<workflow-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "cache-url",
				Usage:   "Cache backend URL (file://, redis://, postgres:// or memory://)",
				Value:   "file://./.awe-cache",
				Sources: cli.EnvVars("AWE_CACHE_URL"),
			},
			&cli.IntFlag{
				Name:    "max-concurrency",
				Usage:   "Maximum number of steps executing at once (0 = unbounded)",
				Value:   0,
				Sources: cli.EnvVars("AWE_MAX_CONCURRENCY"),
			},
			&cli.DurationFlag{
				Name:    "run-timeout",
				Usage:   "Whole-run timeout (0 = none)",
				Value:   0,
				Sources: cli.EnvVars("AWE_RUN_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OpenTelemetry traces via OTLP",
				Sources: cli.EnvVars("AWE_TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("awe-run")

			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("missing workflow file argument")
			}

			def, err := workflow.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load workflow: %w", err)
			}

			reg := registry.NewRegistry(logger)
			if err := registry.RegisterDefaults(reg); err != nil {
				return fmt.Errorf("failed to register actions: %w", err)
			}

			store := cache.NewFromURL(ctx, logger, command.String("cache-url"))
			defer func() {
				if err := store.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close cache", "error", err)
				}
			}()

			opts := []workflow.Option{
				workflow.WithCache(store),
				workflow.WithLogger(logger),
				workflow.WithMaxConcurrent(int(command.Int("max-concurrency"))),
				workflow.WithRunTimeout(command.Duration("run-timeout")),
			}

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "awe")
				if err != nil {
					return fmt.Errorf("failed to initialize tracing: %w", err)
				}

				opts = append(opts, workflow.WithTracer(tracer))
			}

			runner := workflow.NewRunner(reg, opts...)

			report, err := runner.Run(ctx, def)
			if err != nil {
				return fmt.Errorf("failed to run workflow: %w", err)
			}

			encoded, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode run report: %w", err)
			}

			fmt.Fprintln(os.Stdout, string(encoded))

			if report.Status != models.RunSucceeded {
				return fmt.Errorf("workflow run finished with status %s", report.Status)
			}

			return nil
		},
	}
}
