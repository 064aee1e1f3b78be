package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/recipe-app/healthcare-backend/internal/core/domain"
)

const collectionSpecializations = "specializations"

// SpecializationRepository implements ports.SpecializationRepository using MongoDB.
type SpecializationRepository struct {
	col *mongo.Collection
}

func NewSpecializationRepository(db *mongo.Database) *SpecializationRepository {
	return &SpecializationRepository{col: db.Collection(collectionSpecializations)}
}

type specializationDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"user_id"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Specialty   string             `bson:"specialty"`
	Description string             `bson:"description"`
	IsActive    bool               `bson:"is_active"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

// FindOrCreate upserts on name with $setOnInsert, so an existing document is
// never touched. A blank slug is derived from name before the insert.
func (r *SpecializationRepository) FindOrCreate(ctx context.Context, name string, d domain.SpecializationDefaults) (*domain.Specialization, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	slug := d.Slug
	if slug == "" {
		slug = domain.Slugify(name)
	}
	var ownerID string
	if d.Owner != nil {
		ownerID = d.Owner.ID
	}

	onInsert := bson.M{
		"user_id":     ownerID,
		"slug":        slug,
		"specialty":   d.Specialty,
		"description": d.Description,
		"is_active":   d.IsActive,
		"created_at":  d.CreatedAt.UTC(),
		"updated_at":  d.UpdatedAt.UTC(),
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": onInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, false, fmt.Errorf("%w: %q", domain.ErrDuplicateSlug, slug)
		}
		return nil, false, fmt.Errorf("upsert specialization: %w", err)
	}

	spec, err := r.FindByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return spec, res.UpsertedCount > 0, nil
}

// FindByName returns the oldest specialization with the given name.
func (r *SpecializationRepository) FindByName(ctx context.Context, name string) (*domain.Specialization, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc specializationDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := r.col.FindOne(ctx, bson.M{"name": name}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSpecializationNotFound
		}
		return nil, fmt.Errorf("find specialization: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the specialization indexes. Only slug is unique;
// name uniqueness is kept by FindOrCreate.
func (r *SpecializationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (d specializationDoc) toDomain() *domain.Specialization {
	return &domain.Specialization{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		Slug:        d.Slug,
		Specialty:   d.Specialty,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}
