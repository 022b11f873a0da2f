package main

import (
	"log"
	"watchtower-bot/bot"
	"watchtower-bot/config"
	"watchtower-bot/handlers"
	"watchtower-bot/utils/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	store, err := database.InitWatchtowerStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Error initializing watchtower database: %v", err)
	}
	defer store.Close()

	b, err := bot.New(cfg, store)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}
	defer b.Close()

	handlers.Register(b)

	b.Run()
}
