package contract

import (
	"context"

	"luni-triage-be/internal/entity"
)

// PendingOrderRepository stores checkout orders awaiting settlement.
// Get returns (nil, nil) for unknown or expired order ids.
type PendingOrderRepository interface {
	Save(ctx context.Context, order *entity.PendingOrder) error
	Get(ctx context.Context, orderId string) (*entity.PendingOrder, error)
	Delete(ctx context.Context, orderId string) error
}
