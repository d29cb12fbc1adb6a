package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowgent/flowgent/pkg/eventbus"
	"github.com/flowgent/flowgent/pkg/eventbus/kafka"
)

// NewEventBus creates an event bus for the named provider. "kafka" uses
// the KAFKA_BROKERS list; anything else gets the in-process bus.
func NewEventBus(provider, brokers string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "kafka":
		bus, err := kafka.NewEventBus(strings.Split(brokers, ","))
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka event bus: %w", err))
		}

		return bus
	default:
		logger.Debug("Using in-process event bus", "provider", provider)

		return eventbus.NewInProcessEventBus()
	}
}
