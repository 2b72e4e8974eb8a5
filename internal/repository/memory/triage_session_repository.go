package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/repository/contract"
)

type TriageSessionRepository struct {
	cache *cache.Cache
}

func NewTriageSessionRepository() *TriageSessionRepository {
	// Entries expire with the 24h guest validity window; the janitor
	// sweep only reclaims memory, expiry itself is enforced on read.
	c := cache.New(entity.GuestSessionTTL, 10*time.Minute)
	return &TriageSessionRepository{
		cache: c,
	}
}

var _ contract.TriageSessionRepository = (*TriageSessionRepository)(nil)

func (r *TriageSessionRepository) Save(_ context.Context, session *entity.TriageSession) error {
	ttl := time.Until(session.CreatedAt.Add(entity.GuestSessionTTL))
	if ttl <= 0 {
		r.cache.Delete(session.Id.String())
		return nil
	}
	// Store a snapshot so later caller mutations don't leak into the cache.
	cp := *session
	r.cache.Set(session.Id.String(), &cp, ttl)
	return nil
}

func (r *TriageSessionRepository) FindById(_ context.Context, id uuid.UUID) (*entity.TriageSession, error) {
	x, found := r.cache.Get(id.String())
	if !found {
		return nil, nil
	}
	session := x.(*entity.TriageSession)
	if session.Expired(time.Now()) {
		r.cache.Delete(id.String())
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (r *TriageSessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.cache.Delete(id.String())
	return nil
}
