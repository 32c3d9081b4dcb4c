package main

import (
	"flag"
	"log"
	"os"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/di"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s pairs=%v", cfg.Environment, cfg.Oanda.Pairs)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("clickhouse: journal schema ready - db: %s", cfg.ClickHouse.Database)
	log.Printf("kafka: brokers=%v decision_topic=%s", cfg.Kafka.Brokers, cfg.Kafka.DecisionTopic)

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
