package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Sharadgup/AGI-Innovation/internal/config"
	"github.com/Sharadgup/AGI-Innovation/internal/repository/mongo"
	"github.com/joho/godotenv"
)

func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	direction := flag.Arg(0)
	if direction == "" {
		direction = "up"
	}

	fmt.Printf("Migrating %s on database %s from %s...\n", direction, cfg.Mongo.Database, cfg.Mongo.MigrationsPath)

	switch direction {
	case "up":
		err = mongo.RunMigrations(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.MigrationsPath)
	case "down":
		err = mongo.RollbackMigrations(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.MigrationsPath, *steps)
	default:
		fmt.Fprintf(os.Stderr, "unknown direction %q, want up or down\n", direction)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Migrations applied successfully")
}
