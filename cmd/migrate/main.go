// Command migrate runs schema migrations against the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"

	"github.com/NathanielMuller/ScanShelf/internal/config"
	"github.com/NathanielMuller/ScanShelf/internal/db"
)

func main() {
	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./migrations", "directory with migration files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("goose: failed to load config: %v", err)
	}
	if cfg.DB.DatabaseURL == "" {
		log.Fatal("goose: SCANSHELF_DATABASE_URL is not set")
	}

	database, err := db.Connect(context.Background(), cfg.DB.DatabaseURL)
	if err != nil {
		log.Fatalf("goose: failed to connect to DB: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Fatalf("goose: failed to close DB: %v", err)
		}
	}()

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}

	command := arguments[0]
	var args []string
	if len(arguments) > 1 {
		args = arguments[1:]
	}

	if err := goose.Run(command, database, migrationsDir, args...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}

	fmt.Printf("goose %s success\n", command)
}
