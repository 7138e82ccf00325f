package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"qrpass/internal/attendance"
	"qrpass/internal/config"
	"qrpass/internal/queue"
	"qrpass/internal/store"
)

// Worker consumes accepted attendance records from the queue and archives
// them to Postgres when a database is configured.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	var repo *attendance.Repository
	if cfg.DatabaseURL != "" {
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect failed: %v", err)
		}
		defer db.Close()
		repo = attendance.NewRepository(db.Client)
	} else {
		log.Println("DATABASE_URL not set, records will be logged only")
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "redis" {
		q = queue.NewRedisQueue(redisClient.Client, "qrpass:records")
	} else {
		q = queue.NewInMemory(64)
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for records...")
	for msg := range messages {
		if msg.Type != queue.TypeRecord {
			continue
		}

		var rec attendance.Record
		if err := json.Unmarshal(msg.Body, &rec); err != nil {
			log.Printf("decode record failed: %v", err)
			continue
		}

		if repo == nil {
			log.Printf("record %s: %s %s on %s", rec.ID, rec.StudentID, rec.EventType, rec.DeviceID)
			continue
		}

		if err := repo.InsertRecord(ctx, rec); err != nil {
			log.Printf("archive record %s failed: %v", rec.ID, err)
			continue
		}
		log.Printf("record %s archived", rec.ID)
	}

	log.Println("worker stopped")
}
