package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/repository/contract"
)

type PendingOrderRepository struct {
	cache *cache.Cache
}

func NewPendingOrderRepository() *PendingOrderRepository {
	c := cache.New(entity.PendingOrderTTL, time.Hour)
	return &PendingOrderRepository{
		cache: c,
	}
}

var _ contract.PendingOrderRepository = (*PendingOrderRepository)(nil)

func (r *PendingOrderRepository) Save(_ context.Context, order *entity.PendingOrder) error {
	r.cache.Set(order.OrderId, order, entity.PendingOrderTTL)
	return nil
}

func (r *PendingOrderRepository) Get(_ context.Context, orderId string) (*entity.PendingOrder, error) {
	x, found := r.cache.Get(orderId)
	if !found {
		return nil, nil
	}
	order, ok := x.(*entity.PendingOrder)
	if !ok {
		return nil, nil
	}
	return order, nil
}

func (r *PendingOrderRepository) Delete(_ context.Context, orderId string) error {
	r.cache.Delete(orderId)
	return nil
}
