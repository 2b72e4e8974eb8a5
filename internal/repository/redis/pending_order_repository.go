package redis

import (
	"context"
	"encoding/json"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/repository/contract"
)

const orderKeyPrefix = "triage:order:"

type PendingOrderRepository struct {
	client *goredis.Client
}

func NewPendingOrderRepository(client *goredis.Client) *PendingOrderRepository {
	return &PendingOrderRepository{client: client}
}

var _ contract.PendingOrderRepository = (*PendingOrderRepository)(nil)

func (r *PendingOrderRepository) Save(ctx context.Context, order *entity.PendingOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, orderKeyPrefix+order.OrderId, data, entity.PendingOrderTTL).Err()
}

func (r *PendingOrderRepository) Get(ctx context.Context, orderId string) (*entity.PendingOrder, error) {
	data, err := r.client.Get(ctx, orderKeyPrefix+orderId).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var order entity.PendingOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, nil
	}
	return &order, nil
}

func (r *PendingOrderRepository) Delete(ctx context.Context, orderId string) error {
	return r.client.Del(ctx, orderKeyPrefix+orderId).Err()
}
