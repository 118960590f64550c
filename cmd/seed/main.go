// Package main loads books from a JSON or CSV file into the catalog database.
//
// It goes through the same import path as POST /api/v1/books/import, so
// duplicate titles and invalid rows are skipped rather than failing the run.
//
// Usage:
//
//	go run ./cmd/seed -file books.csv
//	DATABASE_PATH=/tmp/catalog.db go run ./cmd/seed -file books.json
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/listenupapp/bookcatalog/internal/config"
	"github.com/listenupapp/bookcatalog/internal/logger"
	"github.com/listenupapp/bookcatalog/internal/service"
	"github.com/listenupapp/bookcatalog/internal/store/sqlite"
	"github.com/listenupapp/bookcatalog/internal/validation"
)

var (
	filePath = flag.String("file", "", "JSON or CSV file to import (required)")
	verbose  = flag.Bool("v", false, "Print every imported and skipped title")
)

func main() {
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -file books.{json,csv}")
		os.Exit(2)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
		Format:      cfg.Logger.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.OpenWithOptions(cfg.Database.Path, log.Logger, sqlite.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	f, err := os.Open(*filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	catalog := service.NewCatalogService(store, validation.New(), log.Component("seed"))

	result, err := catalog.ImportBooks(ctx, filepath.Base(*filePath), f)
	if err != nil {
		return err
	}

	fmt.Println(result.Message)
	if *verbose {
		for _, title := range result.Imported {
			fmt.Printf("  + %s\n", title)
		}
		for _, title := range result.Skipped {
			fmt.Printf("  - %s\n", title)
		}
	}
	return nil
}
