package dto

import "strings"

// VerifyRequest accepts both the short names and the names the provider
// checkout callback produces.
type VerifyRequest struct {
	PaymentID      string `json:"paymentId" validate:"required"`
	SubscriptionID string `json:"subscriptionId" validate:"required"`
	Signature      string `json:"signature" validate:"required"`

	RazorpayPaymentID      string `json:"razorpay_payment_id" validate:"-"`
	RazorpaySubscriptionID string `json:"razorpay_subscription_id" validate:"-"`
	RazorpaySignature      string `json:"razorpay_signature" validate:"-"`
}

func (r *VerifyRequest) Validate() error {
	r.PaymentID = firstNonEmpty(r.PaymentID, r.RazorpayPaymentID)
	r.SubscriptionID = firstNonEmpty(r.SubscriptionID, r.RazorpaySubscriptionID)
	r.Signature = firstNonEmpty(r.Signature, r.RazorpaySignature)
	return validateStruct(r)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
