package entity

import (
	"time"
)

// Purchase ids that affect the quota gate. Anything else a checkout hands
// back is recorded but grants no extra cases.
const (
	PurchaseSingleCase = "single-case"
	PurchaseUnlimited  = "unlimited"
)

// FreeCasesPerDay is the allotment every guest gets regardless of
// purchase history.
const FreeCasesPerDay = 1

// UsageResetWindow is the elapsed time after which the daily counter
// resets, evaluated lazily on the next read.
const UsageResetWindow = 24 * time.Hour

// GuestUsage tracks how many triage cases an anonymous device has consumed
// today and which entitlements it has bought. Purchases are never consumed
// or removed, so the daily allotment recomputes from them after each reset.
type GuestUsage struct {
	CasesUsed      int       `json:"cases_used"`
	LastReset      time.Time `json:"last_reset"`
	Purchases      []string  `json:"purchases"`
	CreditedOrders []string  `json:"credited_orders"`
}

func NewGuestUsage(now time.Time) *GuestUsage {
	return &GuestUsage{
		CasesUsed:      0,
		LastReset:      now,
		Purchases:      []string{},
		CreditedOrders: []string{},
	}
}

// Normalize zeroes the counter once per elapsed 24-hour window since the
// last reset. Returns true when a reset happened and the record needs to
// be written back.
func (u *GuestUsage) Normalize(now time.Time) bool {
	daysSinceReset := int(now.Sub(u.LastReset) / UsageResetWindow)
	if daysSinceReset >= 1 {
		u.CasesUsed = 0
		u.LastReset = now
		return true
	}
	return false
}

// AllowedCases is the number of cases this record permits for the current
// day: one free case plus one per single-case purchase.
func (u *GuestUsage) AllowedCases() int {
	additional := 0
	for _, p := range u.Purchases {
		if p == PurchaseSingleCase {
			additional++
		}
	}
	return FreeCasesPerDay + additional
}

// CanStartNewCase is a pure function of the record: no side effects, no I/O.
func (u *GuestUsage) CanStartNewCase() bool {
	for _, p := range u.Purchases {
		if p == PurchaseUnlimited {
			return true
		}
	}
	return u.CasesUsed < u.AllowedCases()
}

// Credited reports whether a checkout order id has already been applied.
func (u *GuestUsage) Credited(orderId string) bool {
	for _, id := range u.CreditedOrders {
		if id == orderId {
			return true
		}
	}
	return false
}
