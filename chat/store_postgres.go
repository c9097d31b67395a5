package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"legalresearch-engine/models"
)

// PostgresStore is the CHAT_STORAGE=remote backend, grounded on the
// teacher's repository.FileRepository query style.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, session *models.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, user_id, case_text, case_title, state, turns, initial_context)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := s.db.QueryRow(
		ctx, query,
		session.ID, session.UserID, session.CaseText, session.CaseTitle, session.State,
		session.Turns, session.InitialContext,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("chat: create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	session := &models.ChatSession{}
	query := `
		SELECT id, user_id, case_text, case_title, state, turns, initial_context, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1`

	err := s.db.QueryRow(ctx, query, id).Scan(
		&session.ID, &session.UserID, &session.CaseText, &session.CaseTitle,
		&session.State, &session.Turns, &session.InitialContext, &session.CreatedAt, &session.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("chat: get session: %w", err)
	}
	return session, nil
}

func (s *PostgresStore) Update(ctx context.Context, session *models.ChatSession) error {
	query := `
		UPDATE chat_sessions
		SET state = $2, turns = $3, initial_context = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := s.db.QueryRow(ctx, query, session.ID, session.State, session.Turns, session.InitialContext).Scan(&session.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("chat: update session: %w", err)
	}
	return nil
}

// EnsureSchema creates the chat_sessions table if absent.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS chat_sessions (
			id              UUID PRIMARY KEY,
			user_id         UUID NOT NULL,
			case_text       TEXT NOT NULL,
			case_title      TEXT NOT NULL DEFAULT '',
			state           TEXT NOT NULL DEFAULT 'fresh',
			turns           JSONB NOT NULL DEFAULT '[]',
			initial_context JSONB NOT NULL DEFAULT '[]',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("chat: ensure schema: %w", err)
	}
	return nil
}
