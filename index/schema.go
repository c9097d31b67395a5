package index

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EmbeddingDimension is the global configured embedding width every
// Chunk's vector column must match.
const EmbeddingDimension = 768

// EnsureSchema creates the pgvector extension and the chunks table if
// they do not already exist.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			source_case_id UUID NOT NULL,
			case_title TEXT NOT NULL DEFAULT '',
			citation TEXT NOT NULL DEFAULT '',
			case_number TEXT NOT NULL DEFAULT '',
			judges TEXT[] NOT NULL DEFAULT '{}',
			section TEXT NOT NULL,
			chunk_ordinal INTEGER NOT NULL,
			chunk_text TEXT NOT NULL,
			page_number INTEGER NOT NULL,
			total_pages INTEGER NOT NULL,
			document_url TEXT NOT NULL,
			source_file TEXT NOT NULL DEFAULT '',
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (source_case_id, chunk_ordinal)
		)`, EmbeddingDimension),
		`CREATE INDEX IF NOT EXISTS chunks_embedding_idx ON chunks
			USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
		`CREATE INDEX IF NOT EXISTS chunks_citation_idx ON chunks (citation)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("index: ensure schema: %w", err)
		}
	}
	return nil
}
