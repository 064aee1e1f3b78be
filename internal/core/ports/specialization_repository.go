package ports

import (
	"context"

	"github.com/recipe-app/healthcare-backend/internal/core/domain"
)

// SpecializationRepository defines persistence operations for specializations.
type SpecializationRepository interface {
	// FindOrCreate returns the record named name, inserting it from defaults
	// when none exists. created reports whether an insert happened; an
	// existing record is never modified.
	FindOrCreate(ctx context.Context, name string, defaults domain.SpecializationDefaults) (spec *domain.Specialization, created bool, err error)
	FindByName(ctx context.Context, name string) (*domain.Specialization, error)
}
