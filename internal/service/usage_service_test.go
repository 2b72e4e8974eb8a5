package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luni-triage-be/internal/entity"
)

func TestUsageRead_InitializesAbsentRecord(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo, nopLogger{})

	usage, err := svc.Read(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, 0, usage.CasesUsed)
	assert.Equal(t, 1, usage.AllowedCases())
	assert.True(t, usage.CanStartNewCase())

	// Initialization is persisted, not just returned.
	stored, err := repo.Get(context.Background(), "device-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestUsageRead_IsIdempotent(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo, nopLogger{})

	first, err := svc.Read(context.Background(), "device-1")
	require.NoError(t, err)
	second, err := svc.Read(context.Background(), "device-1")
	require.NoError(t, err)

	assert.Equal(t, first.CasesUsed, second.CasesUsed)
	assert.Equal(t, first.LastReset.Unix(), second.LastReset.Unix())
}

func TestUsageRead_ResetsAfterWindow(t *testing.T) {
	repo := newFakeUsageRepo()
	repo.records["device-1"] = &entity.GuestUsage{
		CasesUsed: 1,
		LastReset: time.Now().Add(-25 * time.Hour),
		Purchases: []string{},
	}
	svc := NewUsageService(repo, nopLogger{})

	usage, err := svc.Read(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, 0, usage.CasesUsed)
	assert.WithinDuration(t, time.Now(), usage.LastReset, time.Minute)
}

func TestUsageRead_NoResetInsideWindow(t *testing.T) {
	repo := newFakeUsageRepo()
	lastReset := time.Now().Add(-23 * time.Hour)
	repo.records["device-1"] = &entity.GuestUsage{
		CasesUsed: 1,
		LastReset: lastReset,
		Purchases: []string{},
	}
	svc := NewUsageService(repo, nopLogger{})

	usage, err := svc.Read(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, 1, usage.CasesUsed)
	assert.Equal(t, lastReset.Unix(), usage.LastReset.Unix())
	assert.False(t, usage.CanStartNewCase())
}

func TestConsumeCase_IncrementsCounter(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo, nopLogger{})

	require.NoError(t, svc.ConsumeCase(context.Background(), "device-1"))

	usage, err := svc.Read(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, 1, usage.CasesUsed)
	assert.False(t, usage.CanStartNewCase())
}

func TestAddPurchase_SingleCaseGrantsOneMore(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo, nopLogger{})

	require.NoError(t, svc.ConsumeCase(context.Background(), "device-1"))

	credited, usage, err := svc.AddPurchase(context.Background(), "device-1", entity.PurchaseSingleCase, "order-1")
	require.NoError(t, err)
	assert.True(t, credited)
	assert.Equal(t, 2, usage.AllowedCases())
	assert.True(t, usage.CanStartNewCase())
}

func TestAddPurchase_UnlimitedBypassesCounter(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo, nopLogger{})

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.ConsumeCase(context.Background(), "device-1"))
	}

	_, usage, err := svc.AddPurchase(context.Background(), "device-1", entity.PurchaseUnlimited, "order-1")
	require.NoError(t, err)
	assert.True(t, usage.CanStartNewCase())
}

func TestAddPurchase_DuplicateOrderIsNoOp(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo, nopLogger{})

	credited, _, err := svc.AddPurchase(context.Background(), "device-1", entity.PurchaseSingleCase, "order-1")
	require.NoError(t, err)
	assert.True(t, credited)

	credited, usage, err := svc.AddPurchase(context.Background(), "device-1", entity.PurchaseSingleCase, "order-1")
	require.NoError(t, err)
	assert.False(t, credited)
	assert.Len(t, usage.Purchases, 1)
}

func TestAddPurchase_SurvivesDailyReset(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo, nopLogger{})

	_, _, err := svc.AddPurchase(context.Background(), "device-1", entity.PurchaseSingleCase, "order-1")
	require.NoError(t, err)

	// Force the window to elapse.
	rec := repo.records["device-1"]
	rec.LastReset = time.Now().Add(-25 * time.Hour)
	rec.CasesUsed = 2

	usage, err := svc.Read(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, 0, usage.CasesUsed)
	assert.Equal(t, 2, usage.AllowedCases())
}
