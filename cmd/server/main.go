package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"weatheralert/internal/detector"
	"weatheralert/internal/models"
	"weatheralert/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	codesFile := flag.String("codes", "", "weather code table (defaults to the bundled one)")
	timezone := flag.String("timezone", "", "IANA zone for rendered times (defaults to local)")
	flag.Parse()

	var codes models.WeatherCodeTable
	var err error
	if *codesFile != "" {
		codes, err = detector.LoadCodeTable(*codesFile)
	} else {
		codes, err = detector.DefaultCodeTable()
	}
	if err != nil {
		log.Fatalf("Failed to load weather codes: %v", err)
	}

	loc := time.Local
	if *timezone != "" {
		if loc, err = time.LoadLocation(*timezone); err != nil {
			log.Fatalf("Invalid timezone: %v", err)
		}
	}

	srv := server.NewServer(codes, loc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting server on %s", *addr)
	if err := srv.Start(*addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
