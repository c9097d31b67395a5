package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the application tables backing the
// repositories in this package.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			firm_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS analysis_requests (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			case_text TEXT NOT NULL,
			case_title TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			generated_analysis TEXT,
			citations JSONB NOT NULL DEFAULT '[]',
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS analysis_requests_user_idx ON analysis_requests (user_id)`,
		`CREATE TABLE IF NOT EXISTS source_files (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			analysis_request_id UUID REFERENCES analysis_requests(id) ON DELETE SET NULL,
			filename TEXT NOT NULL,
			mime_type TEXT NOT NULL DEFAULT 'application/pdf',
			size BIGINT NOT NULL,
			storage_path TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS source_files_user_idx ON source_files (user_id)`,
		`CREATE TABLE IF NOT EXISTS ingestion_jobs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			source_directory TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			current_step TEXT,
			steps JSONB NOT NULL DEFAULT '[]',
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("repository: ensure schema: %w", err)
		}
	}
	return nil
}
