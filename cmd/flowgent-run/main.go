// Package main provides a one-shot runner that executes a workflow
// definition from a JSON file and prints the execution record.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/flowgent/flowgent/pkg/cmd"
	"github.com/flowgent/flowgent/pkg/log"
	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/scope"
	"github.com/flowgent/flowgent/pkg/workflow"
)

func main() {
	command := &cli.Command{
		Name:                  "flowgent-run",
		EnableShellCompletion: true,
		Usage:                 "Execute a workflow definition file once and print the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the workflow definition JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "input",
				Usage: "Trigger input data as a JSON object",
				Value: "{}",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Wall-clock budget for the run",
				Value: 5 * time.Minute,
			},
			&cli.StringFlag{
				Name:    "plugins-path",
				Usage:   "Path to the directory containing node plugins",
				Value:   "./plugins",
				Sources: cli.EnvVars("PLUGINS_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("run")

			raw, err := os.ReadFile(command.String("file"))
			if err != nil {
				return fmt.Errorf("failed to read workflow file: %w", err)
			}

			var wf models.Workflow
			if err := json.Unmarshal(raw, &wf); err != nil {
				return fmt.Errorf("failed to parse workflow file: %w", err)
			}

			var inputData map[string]any
			if err := json.Unmarshal([]byte(command.String("input")), &inputData); err != nil {
				return fmt.Errorf("failed to parse input data: %w", err)
			}

			registry := cmd.NewRegistry(logger, command.String("plugins-path"))
			scopes := scope.NewManager(logger)
			executor := workflow.NewExecutor(scopes, registry, logger)

			execution := executor.Execute(ctx, &wf, inputData, workflow.Options{
				Timeout: command.Duration("timeout"),
			})

			encoded, err := json.MarshalIndent(execution, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode execution record: %w", err)
			}

			fmt.Println(string(encoded))

			if execution.Status != models.ExecutionStatusCompleted {
				os.Exit(1)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
