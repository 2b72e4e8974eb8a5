package contract

import (
	"context"

	"luni-triage-be/internal/entity"
)

// GuestUsageRepository stores the raw usage record per anonymous device.
// Get returns (nil, nil) when no record exists or the stored value is
// unreadable; normalization and reinitialization live in the usage
// service, not here.
type GuestUsageRepository interface {
	Get(ctx context.Context, guestId string) (*entity.GuestUsage, error)
	Put(ctx context.Context, guestId string, usage *entity.GuestUsage) error
}
