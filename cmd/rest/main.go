package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compliance-agent-be/internal/bootstrap"
	"compliance-agent-be/internal/config"
	"compliance-agent-be/internal/server"
	"compliance-agent-be/internal/tracer"
	"compliance-agent-be/pkg/database"
	"compliance-agent-be/pkg/graph"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// 2. Connect to the Graph Store
	graphClient, err := graph.NewClient(graph.Config{
		URI:          cfg.Graph.URI,
		Username:     cfg.Graph.Username,
		Password:     cfg.Graph.Password,
		Database:     cfg.Graph.Database,
		MaxPoolSize:  cfg.Graph.MaxPoolSize,
		QueryTimeout: cfg.Graph.QueryTimeout,
	})
	if err != nil {
		log.Fatalf("Unable to configure graph client: %v", err)
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 60*time.Second)
	if err := graphClient.Connect(connectCtx); err != nil {
		cancelConnect()
		log.Panicf("Unable to connect to Neo4j: %v", err)
	}
	cancelConnect()
	defer graphClient.Close(context.Background())

	// 3. Transcript Database (optional)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(graphClient, gormDB, cfg)
	if container.NatsPub != nil {
		defer container.NatsPub.Close()
	}

	// 5. Start Background Services
	if container.ConsumerService != nil {
		go func() {
			log.Println("Background: Starting Transcript Consumer...")
			if err := container.ConsumerService.Consume(context.Background()); err != nil {
				log.Printf("Background Consumer Error: %v", err)
			}
		}()
	}

	// 6. Start the Agent (requests before this point would get NotReady)
	if err := container.Agent.Start(context.Background()); err != nil {
		log.Panicf("Unable to start agent: %v", err)
	}

	// 7. Initialize Server
	srv := server.New(cfg, container)

	// 8. Run Server, shut down cleanly on SIGINT/SIGTERM
	go func() {
		if err := srv.Run(); err != nil {
			log.Panicf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down agent and server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	container.Agent.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
