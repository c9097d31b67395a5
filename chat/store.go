// Package chat drives a session through security enforcement,
// retrieval, excerpt lookup, prompt construction, completion and
// hallucination detection for each message, and persists the
// resulting turns.
package chat

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"legalresearch-engine/models"
)

var ErrSessionNotFound = errors.New("chat: session not found")

// Store persists ChatSessions, backed by either an in-memory map or
// Postgres depending on CHAT_STORAGE.
type Store interface {
	Create(ctx context.Context, session *models.ChatSession) error
	Get(ctx context.Context, id uuid.UUID) (*models.ChatSession, error)
	Update(ctx context.Context, session *models.ChatSession) error
}

// NewStoreFromEnv picks the chat store backend the same way
// storage.NewStorageFromEnv picks a file backend: by an env-driven
// type string, defaulting to the in-memory implementation.
func NewStoreFromEnv(backend string, pool *pgxpool.Pool) Store {
	if backend == "remote" && pool != nil {
		return NewPostgresStore(pool)
	}
	return NewMemoryStore()
}
