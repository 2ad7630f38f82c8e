package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"ai-shopscout-be/internal/config"
	"ai-shopscout-be/pkg/events"
	pktNats "ai-shopscout-be/pkg/nats"

	"github.com/fatih/color"
)

// Tails session lifecycle events off the NATS EVENTS stream. Useful when
// checking that completed sessions actually emit SESSION_COMPLETED.
func main() {
	cfg := config.Load()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	err = sub.Subscribe("events.>", "advisor-events-watcher", func(ctx context.Context, event events.Event) error {
		color.Cyan("[%s] %s", event.Timestamp().Format(time.TimeOnly), event.EventType())
		for key, value := range event.Payload() {
			color.White("  %s: %v", key, value)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	color.Green("Watching session lifecycle events on %s (ctrl-c to exit)", cfg.App.NatsURL)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh
}
