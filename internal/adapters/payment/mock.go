package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"collegeevents/internal/domain"
)

// DefaultDelay simulates gateway latency.
const DefaultDelay = 900 * time.Millisecond

type mockProcessor struct {
	delay  time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewMockProcessor returns a PaymentProcessor that approves any non-negative
// amount after delay. It never retries and never returns an error: failures and
// cancellation are reported in the result.
func NewMockProcessor(delay time.Duration, logger *slog.Logger) domain.PaymentProcessor {
	return &mockProcessor{delay: delay, logger: logger, now: time.Now}
}

func (p *mockProcessor) Process(ctx context.Context, amount float64, meta map[string]string) domain.PaymentResult {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.PaymentResult{Success: false, Message: "payment cancelled: " + ctx.Err().Error()}
		case <-timer.C:
		}
	}
	if amount < 0 {
		p.logger.Warn("payment declined", "amount", amount, "event_id", meta["eventId"])
		return domain.PaymentResult{Success: false, Message: "Invalid amount"}
	}
	txID := fmt.Sprintf("tx_%d", p.now().UnixMilli())
	p.logger.Info("payment processed", "amount", amount, "transaction_id", txID, "event_id", meta["eventId"])
	return domain.PaymentResult{Success: true, TransactionID: txID}
}
