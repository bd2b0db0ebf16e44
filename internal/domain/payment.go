package domain

import "context"

// PaymentResult is the outcome of a single payment attempt. Failures are reported here, not as errors.
// swagger:model PaymentResult
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	Message       string `json:"message,omitempty"`
}

// PaymentProcessor charges a registration fee.
type PaymentProcessor interface {
	Process(ctx context.Context, amount float64, meta map[string]string) PaymentResult
}
