package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"swapcontrol/internal/services"
	"swapcontrol/pkg/config"
	"swapcontrol/pkg/oracle"
)

func main() {
	os.MkdirAll("logs", 0755)
	file, err := os.OpenFile("logs/pool_snapshot_worker.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if err == nil {
		log.SetOutput(file)
		defer file.Close()
	} else {
		log.Warn("cannot open log file, logging to stdout")
	}

	config.InitDB()
	config.InitRedis()

	var publisher services.EventPublisher
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		p, err := config.NewPublisher()
		if err != nil {
			log.Fatal("Failed to create publisher:", err)
		}
		defer p.Close()
		publisher = p
	}

	resolver := services.NewResolver(config.DB, oracle.NewRedisPrice(config.Redis))
	recorder := services.NewHistoryRecorder(config.DB, resolver, publisher)

	spec := os.Getenv("SNAPSHOT_CRON")
	if spec == "" {
		spec = "@every 10m"
	}

	c := cron.New()
	_, err = c.AddFunc(spec, func() {
		count, err := recorder.SnapshotPools()
		if err != nil {
			log.WithError(err).Error("pool snapshot run failed")
			return
		}
		log.WithField("pools", count).Info("pool snapshots taken")
		if publisher != nil {
			event := map[string]interface{}{"pools": count, "taken_at": time.Now().UTC()}
			if err := publisher.Publish(services.QueueSnapshotEvents, event); err != nil {
				log.WithError(err).Warn("failed to publish snapshot event")
			}
		}
	})
	if err != nil {
		log.Fatalf("invalid SNAPSHOT_CRON %q: %v", spec, err)
	}

	c.Start()
	log.WithField("schedule", spec).Info("snapshot worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-c.Stop().Done()
}
