package entity

import "time"

// PendingOrder links a checkout order id back to the scope and product it
// was created for, so the asynchronous payment notification can credit
// the right record. Orders are short-lived; an order the gateway never
// settles simply ages out.
type PendingOrder struct {
	OrderId   string    `json:"order_id"`
	GuestId   string    `json:"guest_id,omitempty"`
	UserId    string    `json:"user_id,omitempty"`
	OptionId  string    `json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingOrderTTL bounds how long an unsettled checkout stays resolvable.
const PendingOrderTTL = 24 * time.Hour
