package main

import (
	"NetSentry/internal/config"
	"NetSentry/internal/engine"
	"NetSentry/internal/model"
	"NetSentry/internal/notification"
	"NetSentry/internal/probe"
	"NetSentry/internal/storage"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	log.Println("Starting sentry-engine...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	eng, err := engine.New(&cfg.Engine)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	// Wire optional alert subscribers. Each is independent best-effort;
	// a missing backend degrades persistence or notification, never
	// detection.
	var writer *storage.AlertWriter
	if cfg.ClickHouse.Enabled {
		writer, err = storage.NewAlertWriter(cfg.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to create ClickHouse alert writer: %v", err)
		}
		eng.Subscribe(writer)
	}
	if cfg.SMTP.Enabled && cfg.SMTP.Host != "" {
		notifier := notification.NewEmailNotifier(cfg.SMTP)
		eng.Subscribe(notification.NewAlertMailer(notifier))
		log.Println("Email notification enabled.")
	}
	eng.Subscribe(model.SubscriberFunc(func(alert *model.Alert) {
		log.Printf("ALERT: %s from %s", alert.Kind, alert.SrcIP)
	}))

	eng.Start()

	sub, err := probe.NewSubscriber(cfg.Probe)
	if err != nil {
		log.Fatalf("Failed to create NATS subscriber: %v", err)
	}
	if err := sub.Start(eng.Submit); err != nil {
		log.Fatalf("Subscriber failed to start: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	log.Println("Shutdown signal received, stopping engine...")
	sub.Close()
	eng.Stop()
	if writer != nil {
		writer.Close()
	}
	log.Println("Shutdown complete.")
}
