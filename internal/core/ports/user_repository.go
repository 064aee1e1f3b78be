package ports

import (
	"context"

	"github.com/recipe-app/healthcare-backend/internal/core/domain"
)

// ActorQuery controls the enumeration order of ListActors.
type ActorQuery struct {
	// PrivilegedFirst orders superusers ahead of everyone else. Within each
	// group users are ordered by creation time, then id.
	PrivilegedFirst bool
	Limit           int // 0 = no limit
}

// UserRepository defines the user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ListActors(ctx context.Context, q ActorQuery) ([]*domain.User, error)
}
