package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"weatheralert/internal/config"
	"weatheralert/internal/database"
	"weatheralert/internal/events"

	"github.com/go-redis/redis/v8"
)

// Consumes run events from the Redis stream and archives their readings in MySQL.
func main() {
	redisCfg := config.GetRedisConfig()
	redisClient := redis.NewClient(redisCfg.Options())
	defer redisClient.Close()

	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	hostname, _ := os.Hostname()
	consumer := events.NewConsumer(redisClient, redisCfg.Stream, redisCfg.Group, "archiver-"+hostname)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.EnsureGroup(ctx); err != nil {
		log.Fatalf("Failed to prepare stream: %v", err)
	}

	log.Printf("Archiving run events from %s. Press Ctrl+C to stop...", redisCfg.Stream)

	err = consumer.Run(ctx, func(ctx context.Context, e events.RunEvent) error {
		return db.StoreReadings(ctx, e.Location, e.Readings)
	})
	if err != nil {
		log.Fatalf("Archive stopped: %v", err)
	}

	log.Println("Archive service stopped")
}
