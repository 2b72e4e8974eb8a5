package service

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"luni-triage-be/internal/config"
	"luni-triage-be/internal/dto"
	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/pkg/logger"
	"luni-triage-be/internal/repository/contract"
	"luni-triage-be/pkg/events"
	pkgNats "luni-triage-be/pkg/nats"
)

var (
	ErrPaymentOptionNotFound = errors.New("payment option not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrInvalidSignature      = errors.New("invalid signature")
)

type IPaymentService interface {
	GetOptions(ctx context.Context) []*dto.PaymentOptionResponse
	Checkout(ctx context.Context, scope entity.Scope, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	ConfirmPurchase(ctx context.Context, scope entity.Scope, req *dto.ConfirmPurchaseRequest) (*dto.ConfirmPurchaseResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
}

type paymentService struct {
	orders         contract.PendingOrderRepository
	usageService   IUsageService
	eventPublisher *pkgNats.Publisher
	logger         logger.ILogger
	serverKey      string
	env            midtrans.EnvironmentType
}

func NewPaymentService(
	orders contract.PendingOrderRepository,
	usageService IUsageService,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
	cfg config.PaymentConfig,
) IPaymentService {
	env := midtrans.Sandbox
	if cfg.IsProduction {
		env = midtrans.Production
	}
	return &paymentService{
		orders:         orders,
		usageService:   usageService,
		eventPublisher: eventPublisher,
		logger:         log,
		serverKey:      cfg.MidtransServerKey,
		env:            env,
	}
}

func (s *paymentService) GetOptions(_ context.Context) []*dto.PaymentOptionResponse {
	res := make([]*dto.PaymentOptionResponse, 0, len(entity.PaymentOptions))
	for _, opt := range entity.PaymentOptions {
		price := fmt.Sprintf("$%d.%02d", opt.PriceCents/100, opt.PriceCents%100)
		if opt.Recurring {
			price += "/month"
		}
		res = append(res, &dto.PaymentOptionResponse{
			Id:          opt.Id,
			Name:        opt.Name,
			Description: opt.Description,
			Price:       price,
			Recurring:   opt.Recurring,
		})
	}
	return res
}

func (s *paymentService) Checkout(ctx context.Context, scope entity.Scope, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	option := entity.FindPaymentOption(req.OptionId)
	if option == nil {
		return nil, ErrPaymentOptionNotFound
	}

	orderId := uuid.NewString()
	order := &entity.PendingOrder{
		OrderId:   orderId,
		GuestId:   scope.GuestId,
		OptionId:  option.Id,
		CreatedAt: time.Now(),
	}
	if scope.UserId != nil {
		order.UserId = scope.UserId.String()
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	var sClient snap.Client
	sClient.New(s.serverKey, s.env)

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderId,
			GrossAmt: option.PriceCents,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: req.SuccessURL,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    option.Id,
				Price: option.PriceCents,
				Qty:   1,
				Name:  option.Name,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := sClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	s.logger.Info("PaymentService", "Checkout created", map[string]interface{}{
		"order_id":  orderId,
		"option_id": option.Id,
		"scope":     scope.Key(),
	})

	return &dto.CheckoutResponse{
		OrderId:         orderId,
		SnapToken:       snapResp.Token,
		SnapRedirectUrl: snapResp.RedirectURL,
	}, nil
}

// ConfirmPurchase is the client-return path: the browser lands back on the
// success URL and posts the order id. Crediting is idempotent on the
// order id, so this can race the gateway notification safely.
func (s *paymentService) ConfirmPurchase(ctx context.Context, scope entity.Scope, req *dto.ConfirmPurchaseRequest) (*dto.ConfirmPurchaseResponse, error) {
	order, err := s.orders.Get(ctx, req.OrderId)
	if err != nil {
		return nil, err
	}
	if order == nil || order.OptionId != req.OptionId {
		return nil, ErrOrderNotFound
	}

	credited, usage, err := s.usageService.AddPurchase(ctx, s.usageKey(order), order.OptionId, order.OrderId)
	if err != nil {
		return nil, err
	}

	if credited {
		s.publishPurchaseCompleted(ctx, order)
	}

	return &dto.ConfirmPurchaseResponse{
		Credited:  credited,
		Purchases: usage.Purchases,
	}, nil
}

func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	// signature = SHA512(order_id + status_code + gross_amount + server_key)
	signatureInput := req.OrderId + req.StatusCode + req.GrossAmount + s.serverKey
	expected := fmt.Sprintf("%x", sha512.Sum512([]byte(signatureInput)))
	if req.SignatureKey != expected {
		s.logger.Warn("PaymentService", "Webhook signature mismatch", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return ErrInvalidSignature
	}

	switch req.TransactionStatus {
	case "capture", "settlement":
	case "deny", "cancel", "expire":
		if err := s.orders.Delete(ctx, req.OrderId); err != nil {
			return err
		}
		s.logger.Info("PaymentService", "Order discarded by gateway", map[string]interface{}{
			"order_id": req.OrderId,
			"status":   req.TransactionStatus,
		})
		return nil
	default:
		// pending and anything unrecognized take no action
		return nil
	}

	order, err := s.orders.Get(ctx, req.OrderId)
	if err != nil {
		return err
	}
	if order == nil {
		// Unknown or already-expired order; nothing to credit but ack the
		// gateway so it stops retrying.
		s.logger.Warn("PaymentService", "Notification for unknown order", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return nil
	}

	credited, _, err := s.usageService.AddPurchase(ctx, s.usageKey(order), order.OptionId, order.OrderId)
	if err != nil {
		return err
	}

	if credited {
		s.logger.Info("PaymentService", "Purchase settled", map[string]interface{}{
			"order_id":  order.OrderId,
			"option_id": order.OptionId,
		})
		s.publishPurchaseCompleted(ctx, order)
	}
	return nil
}

// usageKey picks the usage record an order credits to. Guests are keyed
// by device id, users by their account id.
func (s *paymentService) usageKey(order *entity.PendingOrder) string {
	if order.GuestId != "" {
		return order.GuestId
	}
	return order.UserId
}

func (s *paymentService) publishPurchaseCompleted(ctx context.Context, order *entity.PendingOrder) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: events.TypePurchaseCompleted,
		Data: map[string]interface{}{
			"order_id":    order.OrderId,
			"option_id":   order.OptionId,
			"guest_id":    order.GuestId,
			"user_id":     order.UserId,
			"occurred_at": time.Now(),
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("PaymentService", "Failed to publish purchase event", map[string]interface{}{
			"order_id": order.OrderId,
			"error":    err.Error(),
		})
	}
}
