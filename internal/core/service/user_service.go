package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/recipe-app/healthcare-backend/internal/core/domain"
	"github.com/recipe-app/healthcare-backend/internal/core/ports"
)

// UserService creates the actors that own imported records.
type UserService struct {
	repo ports.UserRepository
	cost int
	log  zerolog.Logger
}

// NewUserService returns a UserService hashing passwords with the given
// bcrypt cost. A cost <= 0 selects bcrypt.DefaultCost.
func NewUserService(repo ports.UserRepository, cost int, log zerolog.Logger) *UserService {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{repo: repo, cost: cost, log: log}
}

// CreateUser stores a new active, unprivileged user.
func (s *UserService) CreateUser(ctx context.Context, email, password, name string) (*domain.User, error) {
	return s.create(ctx, email, password, name, false)
}

// CreateSuperuser stores a new user with staff and superuser flags set.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password, name string) (*domain.User, error) {
	return s.create(ctx, email, password, name, true)
}

func (s *UserService) create(ctx context.Context, email, password, name string, superuser bool) (*domain.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrEmailRequired
	}

	var hash string
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
		if err != nil {
			return nil, err
		}
		hash = string(b)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("failed to create user")
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Bool("superuser", superuser).Msg("user created")
	return created, nil
}

// NormalizeEmail trims the address and lowercases its domain part. The local
// part is left as given.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
