package collections

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"collegeevents/internal/domain"
)

// Demo credentials created by seeding.
const (
	ClubPassword    = "clubpassword"
	StudentID       = "student1"
	StudentEmail    = "student1@college.edu"
	StudentPassword = "studentpass"
	StudentName     = "John Student"
	emailDomain     = "college.edu"
)

const day = 24 * time.Hour

// DefaultClubs returns the clubs of the college, educational first.
func DefaultClubs() []domain.Club {
	return []domain.Club{
		{Name: "MLSC", Category: domain.CategoryEducational},
		{Name: "IEEE", Category: domain.CategoryEducational},
		{Name: "ACM", Category: domain.CategoryEducational},
		{Name: "Geeks for Geeks", Category: domain.CategoryEducational},
		{Name: "IT Department", Category: domain.CategoryEducational},
		{Name: "ECE Department", Category: domain.CategoryEducational},
		{Name: "Vishaka", Category: domain.CategoryCultural},
		{Name: "Pyros", Category: domain.CategoryCultural},
		{Name: "Tamilmandram", Category: domain.CategoryCultural},
	}
}

// Slugify lowercases name and drops every character outside [a-z0-9].
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ClubAccountID returns the deterministic account id of a club.
func ClubAccountID(club string) string {
	return "club_" + Slugify(club)
}

// ClubEmail returns the deterministic login email of a club.
func ClubEmail(club string) string {
	return Slugify(club) + "@" + emailDomain
}

// InitializeDemoData seeds the store. It is idempotent: club accounts are
// merged by email, a student is added only if none exists, and events and
// registrations are written only when their keys are absent.
func (s *Store) InitializeDemoData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed(ctx)
}

// ResetDemoData deletes all three collections and seeds again.
func (s *Store) ResetDemoData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, domain.KeyAccounts, domain.KeyEvents, domain.KeyRegistrations); err != nil {
		return fmt.Errorf("delete collections: %w", err)
	}
	s.logger.Warn("demo data deleted")
	return s.seed(ctx)
}

func (s *Store) seed(ctx context.Context) error {
	addedAccounts, err := s.seedAccounts(ctx)
	if err != nil {
		return err
	}

	seededEvents := false
	present, err := s.exists(ctx, domain.KeyEvents)
	if err != nil {
		return err
	}
	if !present {
		if err := s.SetEvents(ctx, s.demoEvents()); err != nil {
			return err
		}
		seededEvents = true
	}

	present, err = s.exists(ctx, domain.KeyRegistrations)
	if err != nil {
		return err
	}
	if !present {
		if err := s.SetRegistrations(ctx, []*domain.Registration{}); err != nil {
			return err
		}
	}

	s.logger.Info("demo data initialized", "accounts_added", addedAccounts, "events_seeded", seededEvents)
	return nil
}

func (s *Store) seedAccounts(ctx context.Context) (int, error) {
	accounts, err := s.GetAccounts(ctx)
	if err != nil {
		return 0, err
	}
	emails := make(map[string]struct{}, len(accounts))
	hasStudent := false
	for _, a := range accounts {
		emails[a.Email] = struct{}{}
		if a.Role == domain.RoleStudent {
			hasStudent = true
		}
	}

	added := 0
	var clubHash string
	for _, club := range s.clubs {
		email := ClubEmail(club.Name)
		if _, ok := emails[email]; ok {
			continue
		}
		if clubHash == "" {
			if clubHash, err = s.hasher.Hash(ClubPassword); err != nil {
				return 0, fmt.Errorf("hash club password: %w", err)
			}
		}
		accounts = append(accounts, domain.NewAccount(
			ClubAccountID(club.Name), email, clubHash, club.Name+" Admin", domain.RoleClub, club.Name,
		))
		emails[email] = struct{}{}
		added++
	}

	if !hasStudent {
		hash, err := s.hasher.Hash(StudentPassword)
		if err != nil {
			return 0, fmt.Errorf("hash student password: %w", err)
		}
		accounts = append(accounts, domain.NewAccount(StudentID, StudentEmail, hash, StudentName, domain.RoleStudent, ""))
		added++
	}

	if err := s.SetAccounts(ctx, accounts); err != nil {
		return 0, err
	}
	return added, nil
}

func (s *Store) exists(ctx context.Context, key string) (bool, error) {
	var raw json.RawMessage
	found, err := s.kv.Get(ctx, key, &raw)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	return found, nil
}

func (s *Store) demoEvents() []*domain.Event {
	now := s.now().UTC()
	demo := []struct {
		id     string
		fields domain.EventFields
	}{
		{"evt1", domain.EventFields{
			Title: "Machine Learning Workshop", Category: domain.CategoryEducational, Organizer: "MLSC",
			Date: now.Add(2 * day), Description: "Learn the fundamentals of ML.", Seats: 50, Fee: 100,
		}},
		{"evt2", domain.EventFields{
			Title: "IEEE Tech Talk: IoT", Category: domain.CategoryEducational, Organizer: "IEEE",
			Date: now.Add(5 * day), Description: "Explore the latest trends in IoT.", Seats: 100, Fee: 0,
		}},
		{"evt3", domain.EventFields{
			Title: "ACM Coding Competition", Category: domain.CategoryEducational, Organizer: "ACM",
			Date: now.Add(7 * day), Description: "Test your coding skills!", Seats: 200, Fee: 50,
		}},
		{"evt4", domain.EventFields{
			Title: "Vishaka Cultural Night", Category: domain.CategoryCultural, Organizer: "Vishaka",
			Date: now.Add(10 * day), Description: "An evening of music and dance.", Seats: 300, Fee: 150,
		}},
	}
	events := make([]*domain.Event, 0, len(demo))
	for _, d := range demo {
		events = append(events, domain.NewEvent(d.id, d.fields))
	}
	return events
}
