package redis

import (
	"context"
	"encoding/json"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/repository/contract"
)

const usageKeyPrefix = "triage:usage:"

type GuestUsageRepository struct {
	client *goredis.Client
}

func NewGuestUsageRepository(client *goredis.Client) *GuestUsageRepository {
	return &GuestUsageRepository{client: client}
}

var _ contract.GuestUsageRepository = (*GuestUsageRepository)(nil)

func (r *GuestUsageRepository) Get(ctx context.Context, guestId string) (*entity.GuestUsage, error) {
	data, err := r.client.Get(ctx, usageKeyPrefix+guestId).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var usage entity.GuestUsage
	if err := json.Unmarshal(data, &usage); err != nil {
		// Unreadable record reinitializes instead of erroring.
		return nil, nil
	}
	return &usage, nil
}

func (r *GuestUsageRepository) Put(ctx context.Context, guestId string, usage *entity.GuestUsage) error {
	data, err := json.Marshal(usage)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, usageKeyPrefix+guestId, data, 0).Err()
}
