package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionState is the state of a Chat Session.
type SessionState string

const (
	SessionFresh       SessionState = "fresh"
	SessionActive       SessionState = "active"
	SessionTerminated  SessionState = "terminated"
)

// TurnRole identifies the speaker of a Turn.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is one exchange in a Chat Session. Assistant turns carry the
// retrieval-hit citations used to ground the response and, when
// present, a hallucination-warning block in Metadata.
type Turn struct {
	Role      TurnRole               `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Turns is the JSONB-backed ordered list of a session's turns.
type Turns []Turn

// Value implements driver.Valuer for JSONB.
func (t Turns) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB.
func (t *Turns) Scan(value interface{}) error {
	if value == nil {
		*t = make(Turns, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*t = make(Turns, 0)
		return nil
	}

	if len(bytes) == 0 {
		*t = make(Turns, 0)
		return nil
	}

	return json.Unmarshal(bytes, t)
}

// ChatSession is a persistent chat context bound to one user and one
// originating case.
type ChatSession struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	CaseText  string       `json:"case_text"`
	CaseTitle string       `json:"case_title"`
	State     SessionState `json:"state"`
	Turns     Turns        `json:"turns"`

	// InitialContext is the Mode A retrieval run against CaseText at
	// session start, stored once so the originating case's precedents
	// stay available even if a later message turns RAG off.
	InitialContext RetrievalHits `json:"initial_context"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Append adds a turn and bumps UpdatedAt. It does not enforce the
// state machine; callers (chat.Engine) are responsible for state
// transitions.
func (s *ChatSession) Append(t Turn) {
	s.Turns = append(s.Turns, t)
}
