package service

import (
	"context"
	"time"

	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/pkg/logger"
	"luni-triage-be/internal/repository/contract"
)

// IUsageService is the quota store and gate for anonymous devices.
// Authenticated users never pass through it.
type IUsageService interface {
	// Read returns the normalized usage record, creating a zeroed one when
	// absent and applying the lazy daily reset.
	Read(ctx context.Context, guestId string) (*entity.GuestUsage, error)

	// ConsumeCase increments the counter. Called exactly once per
	// successfully started session, never on resume.
	ConsumeCase(ctx context.Context, guestId string) error

	// AddPurchase credits a purchase. orderId is the one-time checkout
	// token: re-crediting an already-seen orderId is a no-op. Returns
	// whether anything was credited and the resulting record.
	AddPurchase(ctx context.Context, guestId, optionId, orderId string) (bool, *entity.GuestUsage, error)
}

type usageService struct {
	repo   contract.GuestUsageRepository
	logger logger.ILogger
}

func NewUsageService(repo contract.GuestUsageRepository, log logger.ILogger) IUsageService {
	return &usageService{
		repo:   repo,
		logger: log,
	}
}

func (s *usageService) Read(ctx context.Context, guestId string) (*entity.GuestUsage, error) {
	usage, err := s.repo.Get(ctx, guestId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if usage == nil {
		// Absent or unreadable: reinitialize, never surface a parse error.
		usage = entity.NewGuestUsage(now)
		if err := s.repo.Put(ctx, guestId, usage); err != nil {
			return nil, err
		}
		return usage, nil
	}

	if usage.Normalize(now) {
		s.logger.Info("UsageService", "Daily counter reset", map[string]interface{}{"guest_id": guestId})
		if err := s.repo.Put(ctx, guestId, usage); err != nil {
			return nil, err
		}
	}

	return usage, nil
}

func (s *usageService) ConsumeCase(ctx context.Context, guestId string) error {
	usage, err := s.Read(ctx, guestId)
	if err != nil {
		return err
	}
	usage.CasesUsed++
	return s.repo.Put(ctx, guestId, usage)
}

func (s *usageService) AddPurchase(ctx context.Context, guestId, optionId, orderId string) (bool, *entity.GuestUsage, error) {
	usage, err := s.Read(ctx, guestId)
	if err != nil {
		return false, nil, err
	}

	if orderId != "" && usage.Credited(orderId) {
		s.logger.Warn("UsageService", "Duplicate purchase confirmation ignored", map[string]interface{}{
			"guest_id": guestId,
			"order_id": orderId,
		})
		return false, usage, nil
	}

	usage.Purchases = append(usage.Purchases, optionId)
	if orderId != "" {
		usage.CreditedOrders = append(usage.CreditedOrders, orderId)
	}
	if err := s.repo.Put(ctx, guestId, usage); err != nil {
		return false, nil, err
	}

	s.logger.Info("UsageService", "Purchase credited", map[string]interface{}{
		"guest_id":  guestId,
		"option_id": optionId,
		"order_id":  orderId,
	})
	return true, usage, nil
}
