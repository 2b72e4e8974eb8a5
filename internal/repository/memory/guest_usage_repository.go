package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/repository/contract"
)

type GuestUsageRepository struct {
	cache *cache.Cache
}

func NewGuestUsageRepository() *GuestUsageRepository {
	// Usage records never expire; the daily counter resets lazily on read.
	c := cache.New(cache.NoExpiration, 0)
	return &GuestUsageRepository{
		cache: c,
	}
}

var _ contract.GuestUsageRepository = (*GuestUsageRepository)(nil)

func (r *GuestUsageRepository) Get(_ context.Context, guestId string) (*entity.GuestUsage, error) {
	x, found := r.cache.Get(guestId)
	if !found {
		return nil, nil
	}
	usage, ok := x.(*entity.GuestUsage)
	if !ok {
		return nil, nil
	}
	cp := *usage
	return &cp, nil
}

func (r *GuestUsageRepository) Put(_ context.Context, guestId string, usage *entity.GuestUsage) error {
	cp := *usage
	r.cache.Set(guestId, &cp, cache.NoExpiration)
	return nil
}
