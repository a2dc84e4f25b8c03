package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartattend/internal/config"
	"smartattend/internal/face"
	"smartattend/internal/identity"
	"smartattend/internal/queue"
	"smartattend/internal/store"
)

// Worker consumes enrollment jobs, pushes stored reference images to the
// face-model gallery, and marks users enrolled.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var jobs queue.Queue
	if cfg.QueueBackend == "memory" {
		jobs = queue.NewInMemory(64)
	} else {
		jobs = queue.NewRedisQueue(redisClient.Client, "smartattend:enroll")
	}

	refStore, err := face.NewDiskStore(cfg.FaceDataDir)
	if err != nil {
		log.Fatalf("face data dir: %v", err)
	}
	faceClient := face.NewClient(cfg.FaceServiceURL, cfg.FaceSkip)
	users := identity.NewRepository(db.Client)

	if !cfg.FaceSkip {
		if err := faceClient.Health(ctx); err != nil {
			log.Printf("WARNING: face service not available: %v", err)
			log.Println("worker will retry enrollment when jobs arrive")
		} else {
			log.Println("face service connected")
		}
	}

	messages, err := jobs.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for enrollment jobs...")
	for msg := range messages {
		if msg.Type != queue.TypeEnrollFace {
			continue
		}

		usn := string(msg.Body)
		log.Printf("enrolling face for %s", usn)

		img, err := refStore.Load(usn)
		if err != nil {
			log.Printf("load reference for %s failed: %v", usn, err)
			continue
		}

		if err := faceClient.Enroll(ctx, usn, img); err != nil {
			log.Printf("face enroll failed for %s: %v", usn, err)
			continue
		}

		if err := users.SetFaceEnrolled(ctx, usn, true); err != nil {
			log.Printf("mark enrolled failed for %s: %v", usn, err)
			continue
		}
		log.Printf("face enrolled for %s", usn)

		time.Sleep(10 * time.Millisecond) // small delay between jobs
	}

	log.Println("worker stopped")
}
