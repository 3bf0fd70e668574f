package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/mediastore/core/media"
)

// Compile-time check that KeySource implements media.KeySource.
var _ media.KeySource = (*KeySource)(nil)

// KeySource lists the media file keys referenced by one string field of a
// MongoDB collection.
type KeySource struct {
	coll  *mongo.Collection
	field string
}

// NewKeySource creates a key source over coll's field.
func NewKeySource(coll *mongo.Collection, field string) (*KeySource, error) {
	if coll == nil || field == "" {
		return nil, fmt.Errorf("%w: mongo key source needs a collection and a field", media.ErrInvalidConfig)
	}
	return &KeySource{coll: coll, field: field}, nil
}

// ListReferencedKeys returns the distinct non-empty string values of the
// configured field.
func (s *KeySource) ListReferencedKeys(ctx context.Context) ([]string, error) {
	filter := bson.D{{Key: s.field, Value: bson.D{
		{Key: "$type", Value: "string"},
		{Key: "$ne", Value: ""},
	}}}

	var keys []string
	if err := s.coll.Distinct(ctx, s.field, filter).Decode(&keys); err != nil {
		return nil, fmt.Errorf("list referenced keys from field %q: %w", s.field, err)
	}
	return keys, nil
}
