// internal/app/store/generic/generic.go
//
// Package generic holds the collection-agnostic CRUD core the domain stores
// build on. Each domain store embeds a Store[T] for its model and adds its
// own queries and aggregations on top.
package generic

import (
	"context"
	"errors"
	"regexp"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no document matches the given id. A
	// malformed id hex counts as not found rather than a parse error.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert or update violates a unique
	// index.
	ErrDuplicate = errors.New("duplicate document")
	// ErrNotConfigured is returned when the store has no collection. This
	// is a fatal wiring problem, not a transient condition.
	ErrNotConfigured = errors.New("store not configured")
)

// Store is a typed repository over one Mongo collection.
type Store[T any] struct {
	c *mongo.Collection
}

// New builds a Store over the named collection. A nil database leaves the
// store unconfigured; every operation then fails with ErrNotConfigured.
func New[T any](db *mongo.Database, collection string) *Store[T] {
	if db == nil {
		return &Store[T]{}
	}
	return &Store[T]{c: db.Collection(collection)}
}

// Collection exposes the underlying collection for domain-specific
// aggregations in embedding stores.
func (s *Store[T]) Collection() *mongo.Collection { return s.c }

// ListQuery describes one page of a filtered, searched, sorted listing.
type ListQuery struct {
	Skip         int64
	Limit        int64
	Filter       bson.M // exact-match constraints, may be nil
	Search       string // case-insensitive substring over SearchFields
	SearchFields []string
	SortBy       string
	SortOrder    int // 1 ascending, -1 descending; 0 means ascending
}

// Create inserts doc and re-reads it by the inserted id, so the returned
// record reflects exactly what persisted.
func (s *Store[T]) Create(ctx context.Context, doc T) (T, error) {
	var zero T
	if s.c == nil {
		return zero, ErrNotConfigured
	}
	res, err := s.c.InsertOne(ctx, doc)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return zero, ErrDuplicate
		}
		return zero, err
	}
	var out T
	if err := s.c.FindOne(ctx, bson.M{"_id": res.InsertedID}).Decode(&out); err != nil {
		return zero, err
	}
	return out, nil
}

// GetByID loads a document by its hex id. Malformed hex and missing
// documents both return ErrNotFound.
func (s *Store[T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	if s.c == nil {
		return zero, ErrNotConfigured
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return zero, ErrNotFound
	}
	var out T
	if err := s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return out, nil
}

// List returns one page of documents. Search terms are escaped and matched
// as case-insensitive substrings across the query's search fields.
func (s *Store[T]) List(ctx context.Context, q ListQuery) ([]T, error) {
	if s.c == nil {
		return nil, ErrNotConfigured
	}

	filter := BuildFilter(q)

	opts := options.Find().SetSkip(q.Skip)
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	if q.SortBy != "" {
		order := q.SortOrder
		if order == 0 {
			order = 1
		}
		opts.SetSort(bson.D{{Key: q.SortBy, Value: order}})
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a $set patch and returns the updated document. An empty
// set map is a no-op that returns the current document; for a real patch
// updated_at is refreshed. ErrNotFound strictly means the id does not
// exist.
func (s *Store[T]) Update(ctx context.Context, id string, set bson.M) (T, error) {
	var zero T
	if s.c == nil {
		return zero, ErrNotConfigured
	}
	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return zero, ErrNotFound
	}

	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out T
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return zero, ErrDuplicate
		}
		return zero, err
	}
	return out, nil
}

// Delete removes a document. It reports whether one was removed; a
// malformed id deletes nothing.
func (s *Store[T]) Delete(ctx context.Context, id string) (bool, error) {
	if s.c == nil {
		return false, ErrNotConfigured
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// Count returns the number of documents matching filter (nil counts all).
func (s *Store[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	if s.c == nil {
		return 0, ErrNotConfigured
	}
	if filter == nil {
		filter = bson.M{}
	}
	return s.c.CountDocuments(ctx, filter)
}

// BuildFilter merges a ListQuery's exact-match filter with its search
// disjunction into one Mongo filter document.
func BuildFilter(q ListQuery) bson.M {
	filter := bson.M{}
	for k, v := range q.Filter {
		filter[k] = v
	}
	if q.Search != "" && len(q.SearchFields) > 0 {
		or := make([]bson.M, 0, len(q.SearchFields))
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		for _, f := range q.SearchFields {
			or = append(or, bson.M{f: re})
		}
		filter["$or"] = or
	}
	return filter
}
