package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/oggyb/speedy-match/internal/config"
	"github.com/oggyb/speedy-match/internal/db"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := config.New()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	if err := db.SeedTestData(database, cfg.Match.Languages); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Println("Seeding completed.")
}
