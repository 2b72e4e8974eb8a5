package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/repository/contract"
)

const sessionKeyPrefix = "triage:session:"

// TriageSessionRepository keeps guest sessions in redis so the anonymous
// scope survives process restarts and works across instances. The key TTL
// matches the 24h validity window.
type TriageSessionRepository struct {
	client *goredis.Client
}

func NewTriageSessionRepository(client *goredis.Client) *TriageSessionRepository {
	return &TriageSessionRepository{client: client}
}

var _ contract.TriageSessionRepository = (*TriageSessionRepository)(nil)

func (r *TriageSessionRepository) Save(ctx context.Context, session *entity.TriageSession) error {
	ttl := time.Until(session.CreatedAt.Add(entity.GuestSessionTTL))
	if ttl <= 0 {
		return r.client.Del(ctx, sessionKeyPrefix+session.Id.String()).Err()
	}

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKeyPrefix+session.Id.String(), data, ttl).Err()
}

func (r *TriageSessionRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.TriageSession, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session entity.TriageSession
	if err := json.Unmarshal(data, &session); err != nil {
		// Corrupt value: treat as absent rather than surfacing a parse error.
		return nil, nil
	}
	if session.Expired(time.Now()) {
		return nil, nil
	}
	return &session, nil
}

func (r *TriageSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, sessionKeyPrefix+id.String()).Err()
}
