// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/flocklabs/flockhub/internal/app/system/normalize"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMember inserts a member with the given names and phone.
func (f *Fixtures) CreateMember(ctx context.Context, first, last, phone string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:          primitive.NewObjectID(),
		FirstName:   first,
		FirstNameCI: text.Fold(first),
		LastName:    last,
		LastNameCI:  text.Fold(last),
		Phone:       normalize.Phone(phone),
		Status:      models.StatusMember,
		Role:        models.RoleMember,
		Notes:       []models.MemberNote{},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "members", m)
	return m
}

// CreateMemberWithStatus inserts a member with an explicit status.
func (f *Fixtures) CreateMemberWithStatus(ctx context.Context, first, last, phone, status string) models.Member {
	f.t.Helper()

	m := f.CreateMember(ctx, first, last, phone)
	m.Status = status
	if status == models.StatusRelocated {
		m.IsActive = false
	}
	_, err := f.db.Collection("members").ReplaceOne(ctx, primitive.M{"_id": m.ID}, m)
	if err != nil {
		f.t.Fatalf("failed to update test member: %v", err)
	}
	return m
}

// CreateUser inserts an active user account. The password hash is a
// fixed bcrypt digest of "password123".
func (f *Fixtures) CreateUser(ctx context.Context, email, username string, isAdmin bool) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:       primitive.NewObjectID(),
		Email:    normalize.Email(email),
		Username: normalize.Username(username),
		// bcrypt of "password123", cost 10
		HashedPassword: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		IsActive:       true,
		IsAdmin:        isAdmin,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateAttendance inserts one attendance record.
func (f *Fixtures) CreateAttendance(ctx context.Context, memberID primitive.ObjectID, date models.Date, attType, status string) models.Attendance {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Attendance{
		ID:             primitive.NewObjectID(),
		MemberID:       memberID,
		AttendanceDate: date,
		AttendanceType: attType,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "attendance", a)
	return a
}

// CreateEvent inserts a single-day event.
func (f *Fixtures) CreateEvent(ctx context.Context, title string, start models.Date, organizerID primitive.ObjectID) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Event{
		ID:          primitive.NewObjectID(),
		Title:       title,
		StartDate:   start,
		Color:       "#3788D8",
		IsPublic:    true,
		OrganizerID: organizerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "events", e)
	return e
}

func (f *Fixtures) insert(ctx context.Context, collection string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s document: %v", collection, err)
	}
}
