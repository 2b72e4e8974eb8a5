package dto

type PaymentOptionResponse struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Recurring   bool   `json:"recurring"`
}

type CheckoutRequest struct {
	OptionId   string `json:"option_id" validate:"required"`
	SuccessURL string `json:"success_url" validate:"required,url"`
	CancelURL  string `json:"cancel_url" validate:"required,url"`
}

type CheckoutResponse struct {
	OrderId         string `json:"order_id"`
	SnapToken       string `json:"snap_token"`
	SnapRedirectUrl string `json:"snap_redirect_url"`
}

// ConfirmPurchaseRequest is sent when the client returns from the payment
// page with a success indicator. OrderId doubles as the one-time token
// that keeps repeated confirms from double-crediting.
type ConfirmPurchaseRequest struct {
	OrderId  string `json:"order_id" validate:"required"`
	OptionId string `json:"option_id" validate:"required"`
}

type ConfirmPurchaseResponse struct {
	Credited  bool     `json:"credited"`
	Purchases []string `json:"purchases"`
}

type MidtransWebhookRequest struct {
	OrderId           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}
