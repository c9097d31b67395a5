package repository

import (
	"context"

	"legalresearch-engine/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalysisRequestRepository handles database operations for analysis requests.
type AnalysisRequestRepository struct {
	db *pgxpool.Pool
}

func NewAnalysisRequestRepository(db *pgxpool.Pool) *AnalysisRequestRepository {
	return &AnalysisRequestRepository{db: db}
}

func (r *AnalysisRequestRepository) Create(ctx context.Context, req *models.AnalysisRequest) error {
	query := `
		INSERT INTO analysis_requests (
			user_id, case_text, case_title, status, citations
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		req.UserID, req.CaseText, req.CaseTitle, req.Status, req.Citations,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *AnalysisRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRequest, error) {
	req := &models.AnalysisRequest{}
	query := `
		SELECT id, user_id, case_text, case_title, status, generated_analysis,
			citations, error_message, created_at, updated_at, completed_at
		FROM analysis_requests
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.UserID, &req.CaseText, &req.CaseTitle, &req.Status,
		&req.GeneratedAnalysis, &req.Citations, &req.ErrorMessage,
		&req.CreatedAt, &req.UpdatedAt, &req.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateResult records the completed (or failed) outcome of an analysis.
func (r *AnalysisRequestRepository) UpdateResult(ctx context.Context, id uuid.UUID, status models.AnalysisStatus, analysis *string, citations models.StringList, errMsg *string) error {
	query := `
		UPDATE analysis_requests SET
			status = $2,
			generated_analysis = $3,
			citations = $4,
			error_message = $5,
			updated_at = NOW(),
			completed_at = CASE WHEN $2 IN ('completed', 'failed') THEN NOW() ELSE completed_at END
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status, analysis, citations, errMsg)
	return err
}

func (r *AnalysisRequestRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AnalysisRequest, error) {
	query := `
		SELECT id, user_id, case_text, case_title, status, generated_analysis,
			citations, error_message, created_at, updated_at, completed_at
		FROM analysis_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AnalysisRequest
	for rows.Next() {
		req := &models.AnalysisRequest{}
		if err := rows.Scan(
			&req.ID, &req.UserID, &req.CaseText, &req.CaseTitle, &req.Status,
			&req.GeneratedAnalysis, &req.Citations, &req.ErrorMessage,
			&req.CreatedAt, &req.UpdatedAt, &req.CompletedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *AnalysisRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM analysis_requests WHERE id = $1`, id)
	return err
}
