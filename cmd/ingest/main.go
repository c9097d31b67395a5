// Command ingest runs the offline ingestion pipeline over a directory
// of PDFs as a one-shot embedding job.
package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"legalresearch-engine/config"
	"legalresearch-engine/index"
	"legalresearch-engine/ingest"
	"legalresearch-engine/llmclient"
	"legalresearch-engine/models"
	"legalresearch-engine/pkg/logger"
	"legalresearch-engine/storage"
)

func main() {
	cfg := config.Load()

	if err := logger.Init("info", "json", cfg.AuditLogDir+"/ingest.log"); err != nil {
		log.Printf("Warning: structured logging disabled: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to Postgres:", err)
	}
	defer db.Close()

	if err := index.EnsureSchema(ctx, db); err != nil {
		log.Fatal("Failed to ensure vector index schema:", err)
	}

	llm, err := llmclient.New(ctx, cfg.GeminiAPIKey, llmclient.WithDimension(cfg.EmbeddingDimension))
	if err != nil {
		log.Fatal("Failed to initialize LLM client:", err)
	}
	defer llm.Close()

	var opts []ingest.Option
	opts = append(opts, ingest.WithMaxChunkSize(cfg.MaxChunkSize))
	if cfg.StorageType != "" {
		fileStorage, err := storage.NewStorage(storage.StorageConfig{
			Type:         storage.StorageType(cfg.StorageType),
			LocalPath:    cfg.LocalStoragePath,
			S3Bucket:     cfg.S3Bucket,
			S3Region:     cfg.S3Region,
			AWSAccessKey: cfg.AWSAccessKey,
			AWSSecretKey: cfg.AWSSecretKey,
		})
		if err != nil {
			log.Fatal("Failed to initialize storage:", err)
		}
		opts = append(opts, ingest.WithUpload(fileStorage))
	}

	pipeline := ingest.New(llm, opts...)

	job := &models.IngestionJob{SourceDirectory: cfg.PDFSourceDir, Status: models.IngestionInProgress}

	log.Printf("Starting ingestion from %s", cfg.PDFSourceDir)
	if err := pipeline.Run(ctx, db, cfg.PDFSourceDir, job); err != nil {
		log.Fatal("Ingestion failed:", err)
	}

	completed, failed := 0, 0
	for _, step := range job.Steps {
		if step.Status == "completed" {
			completed++
		} else {
			failed++
		}
	}
	log.Printf("Ingestion finished: %d completed, %d failed (of %d total)", completed, failed, len(job.Steps))
}
