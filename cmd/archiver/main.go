package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"requesthub_backend/internal/events"
	"requesthub_backend/internal/requests/archival"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/config"
	"requesthub_backend/platform/db"
	"requesthub_backend/platform/logger"
)

func main() {
	olderThan := flag.Int("older-than", archival.DefaultOlderThanDays, "archive requests not updated for this many days")
	statuses := flag.String("statuses", "", "comma-separated statuses to archive (default: terminal statuses)")
	batchSize := flag.Int("batch-size", archival.DefaultBatchSize, "maximum requests to archive per run")
	dryRun := flag.Bool("dry-run", false, "report candidates without archiving")
	keepActiveQuotes := flag.Bool("keep-active-quotes", true, "skip requests that still have a draft or sent quote")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting request archiver", "olderThanDays", *olderThan, "dryRun", *dryRun)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	svc := archival.NewService(repository.New(pool), eventBus, log)

	result, err := svc.Archive(ctx, archival.Options{
		OlderThanDays:       *olderThan,
		Statuses:            splitStatuses(*statuses),
		ExcludeActiveQuotes: *keepActiveQuotes,
		BatchSize:           *batchSize,
		DryRun:              *dryRun,
	})
	if err != nil {
		log.Error("archival run failed", "error", err)
		panic("archival run failed: " + err.Error())
	}

	fmt.Printf("archived: %d, skipped: %d, dryRun: %v\n", result.Archived, result.Skipped, result.DryRun)
	for _, itemErr := range result.Errors {
		fmt.Printf("  error for %s: %s\n", itemErr.RequestID, itemErr.Error)
	}
	if len(result.Errors) > 0 {
		log.Warn("archival run completed with per-request errors", "count", len(result.Errors))
	}
}

func splitStatuses(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	statuses := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			statuses = append(statuses, trimmed)
		}
	}
	return statuses
}
