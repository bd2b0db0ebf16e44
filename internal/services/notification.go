package services

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"collegeevents/internal/domain"
)

type noticeEntry struct {
	notice *domain.Notice
	seq    uint64
}

type notificationService struct {
	cache      *gocache.Cache
	defaultTTL time.Duration
	now        func() time.Time
	seq        atomic.Uint64
}

// NewNotificationService returns a process-wide notice feed. Expired notices are
// hidden immediately and purged every cleanupInterval.
func NewNotificationService(defaultTTL, cleanupInterval time.Duration) domain.NotificationService {
	if defaultTTL <= 0 {
		defaultTTL = domain.DefaultNoticeTTL
	}
	return &notificationService{
		cache:      gocache.New(gocache.NoExpiration, cleanupInterval),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (s *notificationService) Notify(kind domain.NoticeKind, message string, ttl time.Duration) *domain.Notice {
	if !kind.Valid() {
		kind = domain.NoticeInfo
	}
	now := s.now()
	n := &domain.Notice{
		ID:        noticeID(now),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
	}
	expiration := gocache.NoExpiration
	if ttl > 0 {
		expiration = ttl
		n.ExpiresAt = now.Add(ttl)
	}
	s.cache.Set(n.ID, noticeEntry{notice: n, seq: s.seq.Add(1)}, expiration)
	c := *n
	return &c
}

func (s *notificationService) Post(kind domain.NoticeKind, message string) *domain.Notice {
	return s.Notify(kind, message, s.defaultTTL)
}

// List returns live notices, most recent first.
func (s *notificationService) List() []*domain.Notice {
	items := s.cache.Items()
	entries := make([]noticeEntry, 0, len(items))
	for _, item := range items {
		if e, ok := item.Object.(noticeEntry); ok {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })

	out := make([]*domain.Notice, 0, len(entries))
	for _, e := range entries {
		c := *e.notice
		out = append(out, &c)
	}
	return out
}

func (s *notificationService) Dismiss(id string) bool {
	_, found := s.cache.Get(id)
	s.cache.Delete(id)
	return found
}

func (s *notificationService) Clear() {
	s.cache.Flush()
}

func (s *notificationService) Close() {
	s.cache.Flush()
}

// noticeID returns "n_<unix millis>_<5 random chars>".
func noticeID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
	return fmt.Sprintf("n_%d_%s", now.UnixMilli(), suffix)
}
