package entity

// PaymentOption is a one-shot checkout product. Prices are in cents to
// keep the midtrans gross amount integral.
type PaymentOption struct {
	Id          string
	Name        string
	Description string
	PriceCents  int64
	Recurring   bool
}

// PaymentOptions is the purchasable catalogue. single-case and unlimited
// feed the quota gate; the rest are recorded on the usage record only.
var PaymentOptions = []PaymentOption{
	{
		Id:          PurchaseSingleCase,
		Name:        "+1 Triage Case",
		Description: "Get one additional case for today.",
		PriceCents:  199,
	},
	{
		Id:          PurchaseUnlimited,
		Name:        "Unlimited Access",
		Description: "Unlimited triage cases every day.",
		PriceCents:  499,
		Recurring:   true,
	},
	{
		Id:          "nurse-review",
		Name:        "Vet Nurse Review",
		Description: "Get this summary verified by a licensed vet nurse.",
		PriceCents:  499,
	},
	{
		Id:          "video-consultation",
		Name:        "Video Consultation",
		Description: "Talk to a vet nurse in a 15-minute video call.",
		PriceCents:  1499,
	},
}

func FindPaymentOption(id string) *PaymentOption {
	for i := range PaymentOptions {
		if PaymentOptions[i].Id == id {
			return &PaymentOptions[i]
		}
	}
	return nil
}
