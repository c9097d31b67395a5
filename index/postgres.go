// Package index persists {embedding, chunk text, metadata} in
// Postgres+pgvector and exposes a top-k ANN search contract to the
// Retriever.
package index

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"legalresearch-engine/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so Index can
// run against the live table or, during a rebuild, a scratch table
// inside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Scored pairs a Chunk with the distance at which it matched a query,
// satisfying the spec's "list of (chunk_record, distance), ascending"
// search contract.
type Scored struct {
	Chunk    models.Chunk
	Distance float64
}

// Index is a Postgres-backed vector index. The "index directory" of
// the abstract contract is realized as a DSN plus the chunks table;
// "loadable by path" becomes "connectable by DSN".
type Index struct {
	db    querier
	table string
}

func New(db *pgxpool.Pool) *Index {
	return &Index{db: db, table: "chunks"}
}

// formatVector renders an embedding the way pgx expects for a vector
// column literal: "[v1,v2,...]".
func formatVector(embedding []float64) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Append inserts a batch of chunks with their embeddings. Callers
// (ingest.Pipeline) are the single writer; Append does not itself
// serialize concurrent callers.
func (idx *Index) Append(ctx context.Context, chunks []models.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("index: chunk %s has no embedding", c.ID)
		}
		query := fmt.Sprintf(`
			INSERT INTO %s (
				id, source_case_id, case_title, citation, case_number, judges,
				section, chunk_ordinal, chunk_text, page_number, total_pages,
				document_url, source_file, embedding
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14::vector)`, idx.table)

		_, err := idx.db.Exec(ctx, query,
			c.ID, c.SourceCaseID, c.CaseTitle, c.Citation, c.CaseNumber, c.Judges,
			c.Section, c.ChunkOrdinal, c.Text, c.PageNumber, c.TotalPages,
			c.DocumentURL, c.SourceFile, formatVector(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("index: append chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

// Search returns the k chunks whose embedding is closest (cosine
// distance) to query, sorted ascending by distance.
func (idx *Index) Search(ctx context.Context, query []float64, k int) ([]Scored, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("index: empty query vector")
	}

	sql := fmt.Sprintf(`
		SELECT id, source_case_id, case_title, citation, case_number, judges,
			section, chunk_ordinal, chunk_text, page_number, total_pages,
			document_url, source_file, created_at,
			embedding <=> $1::vector AS distance
		FROM %s
		ORDER BY embedding <=> $1::vector
		LIMIT $2`, idx.table)

	rows, err := idx.db.Query(ctx, sql, formatVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []Scored
	for rows.Next() {
		var c models.Chunk
		var distance float64
		if err := rows.Scan(
			&c.ID, &c.SourceCaseID, &c.CaseTitle, &c.Citation, &c.CaseNumber, &c.Judges,
			&c.Section, &c.ChunkOrdinal, &c.Text, &c.PageNumber, &c.TotalPages,
			&c.DocumentURL, &c.SourceFile, &c.CreatedAt,
			&distance,
		); err != nil {
			return nil, fmt.Errorf("index: scan: %w", err)
		}
		out = append(out, Scored{Chunk: c, Distance: distance})
	}
	return out, rows.Err()
}

// Savepoint marks a named point within the current transaction that
// RollbackToSavepoint can later undo without aborting the rest of the
// transaction. name must be a safe SQL identifier (ingest.Pipeline uses
// a generated "pdf_<n>" form); it is not parameterizable since Postgres
// savepoint names can't be bound as query arguments.
func (idx *Index) Savepoint(ctx context.Context, name string) error {
	_, err := idx.db.Exec(ctx, fmt.Sprintf("SAVEPOINT %s", name))
	return err
}

// RollbackToSavepoint undoes everything since the named savepoint while
// leaving the enclosing transaction open and usable, so one failed unit
// of work doesn't poison the statements that follow it in the same
// transaction.
func (idx *Index) RollbackToSavepoint(ctx context.Context, name string) error {
	_, err := idx.db.Exec(ctx, fmt.Sprintf("ROLLBACK TO SAVEPOINT %s", name))
	return err
}

// ReleaseSavepoint discards a savepoint once its unit of work has
// succeeded and no rollback will be needed.
func (idx *Index) ReleaseSavepoint(ctx context.Context, name string) error {
	_, err := idx.db.Exec(ctx, fmt.Sprintf("RELEASE SAVEPOINT %s", name))
	return err
}

// Rebuild replaces the chunks table contents atomically: it builds into
// a scratch table within one transaction, then renames it into place,
// so a partial failure during populate leaves the previous index
// intact (the transaction simply rolls back).
func Rebuild(ctx context.Context, pool *pgxpool.Pool, populate func(ctx context.Context, scratch *Index) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("index: begin rebuild: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `CREATE TABLE chunks_scratch (LIKE chunks INCLUDING ALL)`); err != nil {
		return fmt.Errorf("index: create scratch table: %w", err)
	}

	scratch := &Index{db: tx, table: "chunks_scratch"}
	if err := populate(ctx, scratch); err != nil {
		return fmt.Errorf("index: populate scratch table: %w", err)
	}

	if _, err := tx.Exec(ctx, `ALTER TABLE chunks RENAME TO chunks_old`); err != nil {
		return fmt.Errorf("index: rename old table: %w", err)
	}
	if _, err := tx.Exec(ctx, `ALTER TABLE chunks_scratch RENAME TO chunks`); err != nil {
		return fmt.Errorf("index: rename scratch table: %w", err)
	}
	if _, err := tx.Exec(ctx, `DROP TABLE chunks_old`); err != nil {
		return fmt.Errorf("index: drop old table: %w", err)
	}

	return tx.Commit(ctx)
}
