package domain

import (
	"context"
	"regexp"
	"time"
)

// Registration is a student's seat in an event.
// swagger:model Registration
type Registration struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"userId"`
	EventID              string    `json:"eventId"`
	RegisteredAt         time.Time `json:"registeredAt"`
	CertificateGenerated bool      `json:"certificateGenerated"`
}

// NewRegistration creates a registration whose certificate is not yet generated.
func NewRegistration(id, userID, eventID string, registeredAt time.Time) *Registration {
	return &Registration{
		ID:                   id,
		UserID:               userID,
		EventID:              eventID,
		RegisteredAt:         registeredAt,
		CertificateGenerated: false,
	}
}

// EligibleForCertificate reports whether the registration unlocks a certificate.
func EligibleForCertificate(reg *Registration, event *Event) bool {
	return reg != nil && event != nil && event.Completed && reg.CertificateGenerated
}

// RegistrationWithEvent bundles a registration with its event.
// swagger:model RegistrationWithEvent
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
	Eligible     bool          `json:"eligible"`
}

// Certificate canvas size in pixels.
const (
	CertificateWidth  = 1200
	CertificateHeight = 800
)

// CertificateDateLayout formats the event date on the certificate, e.g. "15 October 2026".
const CertificateDateLayout = "2 January 2006"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Certificate carries exactly the fields the certificate renderer draws.
// swagger:model Certificate
type Certificate struct {
	RecipientName string `json:"recipientName"`
	EventTitle    string `json:"eventTitle"`
	Organizer     string `json:"organizer"`
	Date          string `json:"date"`
	FileName      string `json:"fileName"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
}

// NewCertificate builds the renderer input for a participant of event.
func NewCertificate(recipient *Identity, event *Event) *Certificate {
	return &Certificate{
		RecipientName: recipient.Name,
		EventTitle:    event.Title,
		Organizer:     event.Organizer,
		Date:          event.Date.Format(CertificateDateLayout),
		FileName:      CertificateFileName(event.Title),
		Width:         CertificateWidth,
		Height:        CertificateHeight,
	}
}

// CertificateFileName returns "certificate-<title>.png" with whitespace runs replaced by dashes.
func CertificateFileName(title string) string {
	return "certificate-" + whitespaceRun.ReplaceAllString(title, "-") + ".png"
}

// AttendeeService defines student-facing operations such as event registration.
type AttendeeService interface {
	// Register takes one seat for the user. Fails with ErrSeatsExhausted when the event is full.
	Register(ctx context.Context, userID, eventID string) (*Registration, error)
	// RegisterPaid charges the event fee through the payment collaborator, then registers.
	RegisterPaid(ctx context.Context, userID, eventID string) (*Registration, *PaymentResult, error)
	ListMyRegistrations(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
	Certificate(ctx context.Context, user *Identity, registrationID string) (*Certificate, error)
}
