package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/flowgent/flowgent/pkg/cmd"
	"github.com/flowgent/flowgent/pkg/config"
	"github.com/flowgent/flowgent/pkg/log"
	"github.com/flowgent/flowgent/pkg/scope"
)

func main() {
	command := &cli.Command{
		Name:                  "flowgent-worker",
		EnableShellCompletion: true,
		Usage:                 "Consume queued trigger messages and execute workflows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML file of queue-to-workflow bindings",
				Sources: cli.EnvVars("WORKER_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "workflow-id",
				Usage:   "Workflow to execute for each queued message (when no config file is given)",
				Sources: cli.EnvVars("WORKFLOW_ID"),
			},
			&cli.StringFlag{
				Name:    "queue",
				Usage:   "Redis list to consume trigger messages from (when no config file is given)",
				Sources: cli.EnvVars("TRIGGER_QUEUE"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the trigger queue",
				Value:   "localhost:6379",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, memory)",
				Value:   "memory",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka broker list",
				Value:   "localhost:9092",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
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
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("worker").With("worker_id", workerID)
			logger.InfoContext(ctx, "Initializing Flowgent Worker")

			registry := cmd.NewRegistry(logger, command.String("plugins-path"))

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			scopes := scope.NewManager(logger)

			sweeper := scope.NewSweeper(scopes, "", logger)
			if err := sweeper.Start(); err != nil {
				return err
			}
			defer sweeper.Stop()

			worker := NewWorkerManager(workerID, persistence, eventBus, registry, scopes, logger)

			if configPath := command.String("config"); configPath != "" {
				workerConfig, err := config.LoadWorkerConfig(configPath)
				if err != nil {
					return err
				}

				for _, binding := range workerConfig.Bindings {
					err := worker.AddQueueBinding(ctx, QueueBinding{
						WorkflowID: binding.WorkflowID,
						Queue:      binding.Queue,
						RedisAddr:  workerConfig.Redis.Addr,
					})
					if err != nil {
						return err
					}
				}
			} else {
				err := worker.AddQueueBinding(ctx, QueueBinding{
					WorkflowID: command.String("workflow-id"),
					Queue:      command.String("queue"),
					RedisAddr:  command.String("redis-addr"),
				})
				if err != nil {
					return err
				}
			}

			return worker.Start(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
