// Package ingest drives PDF parsing, optional source upload, chunking,
// page-number assignment, batch embedding and index append over a
// directory of PDFs.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"legalresearch-engine/index"
	"legalresearch-engine/ingest/chunker"
	"legalresearch-engine/ingest/pdfparse"
	"legalresearch-engine/models"
	"legalresearch-engine/pkg/logger"
	"legalresearch-engine/storage"

	"go.uber.org/zap"
)

// Embedder is the embedding capability the pipeline needs.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) ([][]float64, error)
}

// Pipeline drives one ingestion run over a source directory.
type Pipeline struct {
	embedder  Embedder
	store     storage.Storage
	maxChunk  int
	uploadPDF bool
}

type Option func(*Pipeline)

// WithUpload enables re-uploading source PDFs through the object
// storage client so document_url is a canonical storage URL rather
// than the local ingestion path.
func WithUpload(store storage.Storage) Option {
	return func(p *Pipeline) { p.store = store; p.uploadPDF = true }
}

func WithMaxChunkSize(n int) Option {
	return func(p *Pipeline) { p.maxChunk = n }
}

func New(embedder Embedder, opts ...Option) *Pipeline {
	p := &Pipeline{embedder: embedder, maxChunk: chunker.DefaultMaxChunkSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run walks sourceDir for *.pdf files and ingests each into a fresh
// index generation via index.Rebuild, so the previous index stays live
// and queryable for the entire run. Each PDF runs inside its own
// savepoint: a Postgres error on one file (a constraint violation, a
// bad vector literal) rolls back only that file's statements, leaving
// the rest of the batch's transaction usable, and is recorded in
// job.Steps rather than aborting the run.
func (p *Pipeline) Run(ctx context.Context, pool *pgxpool.Pool, sourceDir string, job *models.IngestionJob) error {
	paths, err := discoverPDFs(sourceDir)
	if err != nil {
		return fmt.Errorf("ingest: discover pdfs: %w", err)
	}

	job.Steps = make(models.IngestionSteps, 0, len(paths))

	err = index.Rebuild(ctx, pool, func(ctx context.Context, scratch *index.Index) error {
		for i, path := range paths {
			step := models.IngestionStep{PDFPath: path, Status: "in_progress"}
			savepoint := fmt.Sprintf("pdf_%d", i)

			if err := scratch.Savepoint(ctx, savepoint); err != nil {
				return fmt.Errorf("ingest: savepoint for %s: %w", path, err)
			}

			if procErr := p.ingestOne(ctx, scratch, path); procErr != nil {
				step.Status = "failed"
				step.Error = procErr.Error()
				logger.Error("ingest: pdf failed", zap.String("path", path), zap.Error(procErr))
				if rbErr := scratch.RollbackToSavepoint(ctx, savepoint); rbErr != nil {
					return fmt.Errorf("ingest: rollback %s after failed pdf %s: %w", savepoint, path, rbErr)
				}
			} else {
				step.Status = "completed"
				if relErr := scratch.ReleaseSavepoint(ctx, savepoint); relErr != nil {
					return fmt.Errorf("ingest: release %s after pdf %s: %w", savepoint, path, relErr)
				}
			}
			job.Steps = append(job.Steps, step)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ingest: rebuild index: %w", err)
	}
	return nil
}

func discoverPDFs(sourceDir string) ([]string, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.ToLower(filepath.Ext(e.Name())) != ".pdf" {
			continue
		}
		paths = append(paths, filepath.Join(sourceDir, e.Name()))
	}
	return paths, nil
}

func (p *Pipeline) ingestOne(ctx context.Context, idx *index.Index, path string) error {
	fullText, meta, err := pdfparse.Parse(path)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	documentURL := path
	if p.uploadPDF && p.store != nil {
		documentURL, err = p.uploadSource(ctx, path)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
	}

	chunks := chunker.Split(fullText, p.maxChunk)
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks produced")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := p.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embed: got %d vectors for %d chunks", len(embeddings), len(chunks))
	}

	sourceCaseID := uuid.New()
	modelChunks := make([]models.Chunk, len(chunks))
	for i, c := range chunks {
		modelChunks[i] = models.Chunk{
			ID:           uuid.New(),
			SourceCaseID: sourceCaseID,
			CaseTitle:    meta.CaseTitle,
			Citation:     meta.Citation,
			CaseNumber:   meta.CaseNumber,
			Judges:       meta.Judges,
			Section:      c.Section,
			ChunkOrdinal: i,
			Text:         c.Text,
			PageNumber:   assignPageNumber(c.Text, meta.PerPageTexts),
			TotalPages:   len(meta.PerPageTexts),
			DocumentURL:  documentURL,
			SourceFile:   filepath.Base(path),
			Embedding:    embeddings[i],
		}
	}

	return idx.Append(ctx, modelChunks)
}

// uploadSource re-uploads a source PDF and returns the canonical storage
// URL Storage.Upload produced for it, ready to persist as a Chunk's
// DocumentURL.
func (p *Pipeline) uploadSource(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return p.store.Upload(ctx, uuid.New(), filepath.Base(path), f)
}

// assignPageNumber finds the page whose text contains the chunk's first
// 100 characters, defaulting to page 1 with a logged warning when no
// page matches.
func assignPageNumber(chunkText string, pages []string) int {
	prefix := chunkText
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}
	prefix = strings.TrimSpace(prefix)

	for i, page := range pages {
		if prefix != "" && strings.Contains(page, prefix) {
			return i + 1
		}
	}
	logger.Warn("ingest: could not locate chunk on any page, defaulting to page 1",
		zap.String("prefix", prefix))
	return 1
}
