package repository

import (
	"context"

	"legalresearch-engine/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IngestionJobRepository handles database operations for ingestion jobs.
type IngestionJobRepository struct {
	db *pgxpool.Pool
}

func NewIngestionJobRepository(db *pgxpool.Pool) *IngestionJobRepository {
	return &IngestionJobRepository{db: db}
}

func (r *IngestionJobRepository) Create(ctx context.Context, job *models.IngestionJob) error {
	query := `
		INSERT INTO ingestion_jobs (source_directory, status, steps)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query, job.SourceDirectory, job.Status, job.Steps).
		Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *IngestionJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.IngestionJob, error) {
	job := &models.IngestionJob{}
	query := `
		SELECT id, source_directory, status, current_step, steps,
			error_message, created_at, updated_at, completed_at
		FROM ingestion_jobs
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.SourceDirectory, &job.Status, &job.CurrentStep, &job.Steps,
		&job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateProgress records the current step and accumulated per-PDF steps
// without marking the job complete.
func (r *IngestionJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep *string, steps models.IngestionSteps) error {
	query := `
		UPDATE ingestion_jobs SET
			status = 'in_progress',
			current_step = $2,
			steps = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, currentStep, steps)
	return err
}

func (r *IngestionJobRepository) Complete(ctx context.Context, id uuid.UUID, status models.IngestionJobStatus, steps models.IngestionSteps, errMsg *string) error {
	query := `
		UPDATE ingestion_jobs SET
			status = $2,
			steps = $3,
			error_message = $4,
			current_step = NULL,
			updated_at = NOW(),
			completed_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status, steps, errMsg)
	return err
}

func (r *IngestionJobRepository) ListRecent(ctx context.Context, limit int) ([]*models.IngestionJob, error) {
	query := `
		SELECT id, source_directory, status, current_step, steps,
			error_message, created_at, updated_at, completed_at
		FROM ingestion_jobs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.IngestionJob
	for rows.Next() {
		job := &models.IngestionJob{}
		if err := rows.Scan(
			&job.ID, &job.SourceDirectory, &job.Status, &job.CurrentStep, &job.Steps,
			&job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}
