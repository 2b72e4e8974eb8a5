package contract

import (
	"context"

	"github.com/google/uuid"

	"luni-triage-be/internal/entity"
)

// TriageSessionRepository is implemented by the guest stores (go-cache,
// redis) and the durable gorm store so the conversation engine never
// cares where a session lives. FindById returns (nil, nil) for sessions
// that are absent or past their validity window.
type TriageSessionRepository interface {
	Save(ctx context.Context, session *entity.TriageSession) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.TriageSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
