package ports

import (
	"context"

	"github.com/recipe-app/healthcare-backend/internal/core/domain"
)

type UserService interface {
	CreateUser(ctx context.Context, email, password, name string) (*domain.User, error)
	CreateSuperuser(ctx context.Context, email, password, name string) (*domain.User, error)
}
