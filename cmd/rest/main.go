package main

import (
	"context"
	"log"

	"ai-shopscout-be/internal/bootstrap"
	"ai-shopscout-be/internal/config"
	"ai-shopscout-be/internal/server"
	"ai-shopscout-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	go func() {
		log.Println("Background: Starting Report Service...")
		if err := container.ReportService.Consume(context.Background()); err != nil {
			log.Printf("Background Report Consumer Error: %v", err)
		}
	}()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
