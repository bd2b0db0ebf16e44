package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"collegeevents/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// signupRole is the role of every self-registered account. Club accounts only come from seeding.
const signupRole = domain.RoleStudent

type sessionService struct {
	store        domain.Collections
	hasher       domain.PasswordHasher
	emailService domain.EmailService
	logger       *slog.Logger

	mu      sync.RWMutex
	current *domain.Identity
}

// NewSessionService creates a SessionService over the accounts collection.
// emailService may be nil, in which case no welcome email is sent.
func NewSessionService(
	store domain.Collections,
	hasher domain.PasswordHasher,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.SessionService {
	return &sessionService{
		store:        store,
		hasher:       hasher,
		emailService: emailService,
		logger:       logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *sessionService) Login(ctx context.Context, email, password string) (_ *domain.Identity, err error) {
	ctx, span := startSpan(ctx, "SessionService.Login")
	defer func() { endSpan(span, err) }()

	accounts, err := s.store.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	email = normalizeEmail(email)
	for _, a := range accounts {
		if normalizeEmail(a.Email) != email {
			continue
		}
		if s.hasher.Compare(a.Password, password) != nil {
			break
		}
		identity := a.Identity()
		s.setCurrent(identity)
		s.logger.InfoContext(ctx, "login succeeded", "account_id", identity.ID, "role", identity.Role)
		return identity, nil
	}
	s.logger.InfoContext(ctx, "login rejected", "email", email)
	return nil, nil
}

func (s *sessionService) Signup(ctx context.Context, name, email, password string) (_ *domain.Identity, err error) {
	ctx, span := startSpan(ctx, "SessionService.Signup")
	defer func() { endSpan(span, err) }()

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	var problems []string
	if name == "" {
		problems = append(problems, "name is required")
	}
	if !emailRegexp.MatchString(email) {
		problems = append(problems, "email is invalid")
	}
	if password == "" {
		problems = append(problems, "password is required")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}

	var account *domain.Account
	err = s.store.Exclusive(func() error {
		accounts, err := s.store.GetAccounts(ctx)
		if err != nil {
			return fmt.Errorf("load accounts: %w", err)
		}
		for _, a := range accounts {
			if normalizeEmail(a.Email) == email {
				return domain.ErrDuplicateEmail
			}
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		account = domain.NewAccount("user_"+uuid.NewString(), email, hash, name, signupRole, "")
		if err := s.store.SetAccounts(ctx, append(accounts, account)); err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	identity := account.Identity()
	s.setCurrent(identity)
	s.logger.InfoContext(ctx, "account created", "account_id", identity.ID)

	if s.emailService != nil {
		if mailErr := s.emailService.SendWelcome(ctx, &domain.WelcomeEmailData{Email: identity.Email, Name: identity.Name}); mailErr != nil {
			s.logger.WarnContext(ctx, "welcome email failed", "account_id", identity.ID, "error", mailErr)
		}
	}
	return identity, nil
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	accounts, err := s.store.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	for _, a := range accounts {
		if a.ID == id {
			return a.Identity(), nil
		}
	}
	return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
}

func (s *sessionService) Current() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

func (s *sessionService) Logout() {
	s.setCurrent(nil)
}

func (s *sessionService) setCurrent(identity *domain.Identity) {
	s.mu.Lock()
	s.current = identity
	s.mu.Unlock()
}
