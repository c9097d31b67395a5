package repository

import (
	"context"

	"legalresearch-engine/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SourceFileRepository handles database operations for uploaded source files.
type SourceFileRepository struct {
	db *pgxpool.Pool
}

func NewSourceFileRepository(db *pgxpool.Pool) *SourceFileRepository {
	return &SourceFileRepository{db: db}
}

func (r *SourceFileRepository) Create(ctx context.Context, file *models.SourceFile) error {
	query := `
		INSERT INTO source_files (
			user_id, analysis_request_id, filename, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		file.UserID, file.AnalysisRequestID, file.Filename, file.MimeType, file.Size, file.StoragePath,
	).Scan(&file.ID, &file.CreatedAt)
}

func (r *SourceFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SourceFile, error) {
	file := &models.SourceFile{}
	query := `
		SELECT id, user_id, analysis_request_id, filename, mime_type, size, storage_path, created_at
		FROM source_files
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID, &file.UserID, &file.AnalysisRequestID, &file.Filename,
		&file.MimeType, &file.Size, &file.StoragePath, &file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (r *SourceFileRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.SourceFile, error) {
	query := `
		SELECT id, user_id, analysis_request_id, filename, mime_type, size, storage_path, created_at
		FROM source_files
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.SourceFile
	for rows.Next() {
		file := &models.SourceFile{}
		if err := rows.Scan(
			&file.ID, &file.UserID, &file.AnalysisRequestID, &file.Filename,
			&file.MimeType, &file.Size, &file.StoragePath, &file.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, file)
	}
	return out, rows.Err()
}

func (r *SourceFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM source_files WHERE id = $1`, id)
	return err
}
