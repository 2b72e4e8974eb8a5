package main

import (
	"context"
	"log"

	"luni-triage-be/internal/bootstrap"
	"luni-triage-be/internal/config"
	"luni-triage-be/internal/server"
	"luni-triage-be/internal/tracer"
	"luni-triage-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	go func() {
		log.Println("Background: Starting Assessment Consumer...")
		if err := container.AssessmentConsumer.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
