package service

import (
	"context"
	"crypto/sha512"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luni-triage-be/internal/config"
	"luni-triage-be/internal/dto"
	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/repository/memory"
)

const testServerKey = "SB-Mid-server-test"

func newPaymentFixture() (IPaymentService, IUsageService, *memory.PendingOrderRepository) {
	orders := memory.NewPendingOrderRepository()
	usage := NewUsageService(newFakeUsageRepo(), nopLogger{})
	svc := NewPaymentService(orders, usage, nil, nopLogger{}, config.PaymentConfig{
		MidtransServerKey: testServerKey,
	})
	return svc, usage, orders
}

func signFor(orderId, statusCode, grossAmount string) string {
	return fmt.Sprintf("%x", sha512.Sum512([]byte(orderId+statusCode+grossAmount+testServerKey)))
}

func seedOrder(t *testing.T, orders *memory.PendingOrderRepository, orderId, guestId, optionId string) {
	t.Helper()
	require.NoError(t, orders.Save(context.Background(), &entity.PendingOrder{
		OrderId:   orderId,
		GuestId:   guestId,
		OptionId:  optionId,
		CreatedAt: time.Now(),
	}))
}

func TestGetOptions_Catalogue(t *testing.T) {
	svc, _, _ := newPaymentFixture()

	options := svc.GetOptions(context.Background())
	require.Len(t, options, 4)

	byId := map[string]*dto.PaymentOptionResponse{}
	for _, o := range options {
		byId[o.Id] = o
	}

	require.Contains(t, byId, entity.PurchaseSingleCase)
	assert.Equal(t, "$1.99", byId[entity.PurchaseSingleCase].Price)
	assert.False(t, byId[entity.PurchaseSingleCase].Recurring)

	require.Contains(t, byId, entity.PurchaseUnlimited)
	assert.Equal(t, "$4.99/month", byId[entity.PurchaseUnlimited].Price)
	assert.True(t, byId[entity.PurchaseUnlimited].Recurring)

	require.Contains(t, byId, "video-consultation")
	assert.Equal(t, "$14.99", byId["video-consultation"].Price)
}

func TestCheckout_UnknownOption(t *testing.T) {
	svc, _, _ := newPaymentFixture()

	_, err := svc.Checkout(context.Background(), guest(), &dto.CheckoutRequest{
		OptionId:   "gold-plated-consult",
		SuccessURL: "https://app.example.com/success",
		CancelURL:  "https://app.example.com/cancel",
	})
	assert.ErrorIs(t, err, ErrPaymentOptionNotFound)
}

func TestConfirmPurchase_CreditsOnce(t *testing.T) {
	svc, usage, orders := newPaymentFixture()
	seedOrder(t, orders, "order-1", "device-1", entity.PurchaseSingleCase)

	res, err := svc.ConfirmPurchase(context.Background(), guest(), &dto.ConfirmPurchaseRequest{
		OrderId:  "order-1",
		OptionId: entity.PurchaseSingleCase,
	})
	require.NoError(t, err)
	assert.True(t, res.Credited)
	assert.Equal(t, []string{entity.PurchaseSingleCase}, res.Purchases)

	// Replayed confirm does not double-credit.
	res, err = svc.ConfirmPurchase(context.Background(), guest(), &dto.ConfirmPurchaseRequest{
		OrderId:  "order-1",
		OptionId: entity.PurchaseSingleCase,
	})
	require.NoError(t, err)
	assert.False(t, res.Credited)

	record, err := usage.Read(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, 2, record.AllowedCases())
}

func TestConfirmPurchase_UnknownOrder(t *testing.T) {
	svc, _, _ := newPaymentFixture()

	_, err := svc.ConfirmPurchase(context.Background(), guest(), &dto.ConfirmPurchaseRequest{
		OrderId:  "no-such-order",
		OptionId: entity.PurchaseSingleCase,
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestConfirmPurchase_OptionMismatch(t *testing.T) {
	svc, _, orders := newPaymentFixture()
	seedOrder(t, orders, "order-1", "device-1", entity.PurchaseSingleCase)

	_, err := svc.ConfirmPurchase(context.Background(), guest(), &dto.ConfirmPurchaseRequest{
		OrderId:  "order-1",
		OptionId: entity.PurchaseUnlimited,
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestHandleNotification_RejectsBadSignature(t *testing.T) {
	svc, _, orders := newPaymentFixture()
	seedOrder(t, orders, "order-1", "device-1", entity.PurchaseSingleCase)

	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           "order-1",
		StatusCode:        "200",
		GrossAmount:       "199",
		SignatureKey:      "forged",
		TransactionStatus: "settlement",
	})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleNotification_SettlementCredits(t *testing.T) {
	svc, usage, orders := newPaymentFixture()
	seedOrder(t, orders, "order-1", "device-1", entity.PurchaseUnlimited)

	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           "order-1",
		StatusCode:        "200",
		GrossAmount:       "499",
		SignatureKey:      signFor("order-1", "200", "499"),
		TransactionStatus: "settlement",
	})
	require.NoError(t, err)

	record, err := usage.Read(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, []string{entity.PurchaseUnlimited}, record.Purchases)
	assert.True(t, record.CanStartNewCase())
}

func TestHandleNotification_SettlementAfterConfirmIsIdempotent(t *testing.T) {
	svc, usage, orders := newPaymentFixture()
	seedOrder(t, orders, "order-1", "device-1", entity.PurchaseSingleCase)

	_, err := svc.ConfirmPurchase(context.Background(), guest(), &dto.ConfirmPurchaseRequest{
		OrderId:  "order-1",
		OptionId: entity.PurchaseSingleCase,
	})
	require.NoError(t, err)

	err = svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           "order-1",
		StatusCode:        "200",
		GrossAmount:       "199",
		SignatureKey:      signFor("order-1", "200", "199"),
		TransactionStatus: "settlement",
	})
	require.NoError(t, err)

	record, err := usage.Read(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Len(t, record.Purchases, 1)
}

func TestHandleNotification_ExpireDiscardsOrder(t *testing.T) {
	svc, _, orders := newPaymentFixture()
	seedOrder(t, orders, "order-1", "device-1", entity.PurchaseSingleCase)

	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           "order-1",
		StatusCode:        "407",
		GrossAmount:       "199",
		SignatureKey:      signFor("order-1", "407", "199"),
		TransactionStatus: "expire",
	})
	require.NoError(t, err)

	order, err := orders.Get(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestHandleNotification_UnknownOrderIsAcked(t *testing.T) {
	svc, _, _ := newPaymentFixture()

	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           "ghost",
		StatusCode:        "200",
		GrossAmount:       "199",
		SignatureKey:      signFor("ghost", "200", "199"),
		TransactionStatus: "settlement",
	})
	assert.NoError(t, err)
}

func TestHandleNotification_PendingTakesNoAction(t *testing.T) {
	svc, usage, orders := newPaymentFixture()
	seedOrder(t, orders, "order-1", "device-1", entity.PurchaseSingleCase)

	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           "order-1",
		StatusCode:        "201",
		GrossAmount:       "199",
		SignatureKey:      signFor("order-1", "201", "199"),
		TransactionStatus: "pending",
	})
	require.NoError(t, err)

	record, err := usage.Read(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Empty(t, record.Purchases)
}
