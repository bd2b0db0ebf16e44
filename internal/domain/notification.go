package domain

import "time"

// DefaultNoticeTTL is how long a notice stays listed unless a caller picks another ttl.
const DefaultNoticeTTL = 4 * time.Second

// NoticeKind selects how a notice is presented.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Valid reports whether k is one of the known kinds.
func (k NoticeKind) Valid() bool {
	return k == NoticeSuccess || k == NoticeError || k == NoticeInfo
}

// Notice is an ephemeral user-facing message.
// swagger:model Notice
type Notice struct {
	ID        string     `json:"id"`
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"createdAt"`
	// ExpiresAt is zero for notices that persist until dismissed.
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// NotificationService keeps the list of live notices, most recent first.
type NotificationService interface {
	// Notify adds a notice. ttl > 0 removes it after ttl; ttl <= 0 keeps it until dismissed.
	Notify(kind NoticeKind, message string, ttl time.Duration) *Notice
	// Post adds a notice with the service's default ttl.
	Post(kind NoticeKind, message string) *Notice
	List() []*Notice
	Dismiss(id string) bool
	Clear()
	Close()
}
