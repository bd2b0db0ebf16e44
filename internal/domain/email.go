package domain

import "context"

// OutgoingEmail is a rendered message addressed to one recipient.
type OutgoingEmail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers rendered messages.
type Mailer interface {
	Send(ctx context.Context, msg OutgoingEmail) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// CertificateReadyEmailData holds data for the email sent when an event is completed.
type CertificateReadyEmailData struct {
	Email      string
	Name       string
	EventTitle string
	Organizer  string
	EventDate  string
}

// WelcomeEmailData holds data for the email sent after signup.
type WelcomeEmailData struct {
	Email string
	Name  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendCertificateReady(ctx context.Context, data *CertificateReadyEmailData) error
}
