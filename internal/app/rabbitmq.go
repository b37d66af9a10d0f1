package app

import (
	"log/slog"

	"ridehail/internal/config"
	"ridehail/internal/events"
)

// NewEventPublisher connects the ride event publisher. It returns nil, nil
// when no broker URL is configured.
func NewEventPublisher(cfg config.RabbitMQConfig, log *slog.Logger) (*events.Publisher, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	return events.NewPublisher(cfg.URL, cfg.Exchange, log)
}
