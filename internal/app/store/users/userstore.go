// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/flocklabs/flockhub/internal/app/store/generic"
	"github.com/flocklabs/flockhub/internal/app/system/normalize"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SearchFields are the columns the list search term matches against.
var SearchFields = []string{"username", "email"}

type Store struct {
	*generic.Store[models.User]
}

func New(db *mongo.Database) *Store {
	return &Store{Store: generic.New[models.User](db, "users")}
}

// Create inserts a user with normalized email/username, a fresh id, and
// UTC timestamps. The caller supplies the password hash.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.Username = normalize.Username(u.Username)

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	return s.Store.Create(ctx, u)
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// GetByUsername looks up a user by case-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findOne(ctx, bson.M{"username": normalize.Username(username)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	if s.Collection() == nil {
		return models.User{}, generic.ErrNotConfigured
	}
	var u models.User
	if err := s.Collection().FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, generic.ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// EmailTaken reports whether any user other than excludeID holds the email.
func (s *Store) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return s.fieldTaken(ctx, "email", normalize.Email(email), excludeID)
}

// UsernameTaken reports whether any user other than excludeID holds the
// username.
func (s *Store) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	return s.fieldTaken(ctx, "username", normalize.Username(username), excludeID)
}

func (s *Store) fieldTaken(ctx context.Context, field, value, excludeID string) (bool, error) {
	if value == "" {
		return false, nil
	}
	filter := bson.M{field: value}
	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}
	n, err := s.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountActive counts active user accounts.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.Count(ctx, bson.M{"is_active": true})
}
