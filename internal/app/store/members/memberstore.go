// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/flocklabs/flockhub/internal/app/store/generic"
	"github.com/flocklabs/flockhub/internal/app/system/normalize"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SearchFields are the columns the list search term matches against.
var SearchFields = []string{"first_name", "last_name", "email", "phone"}

type Store struct {
	*generic.Store[models.Member]
}

func New(db *mongo.Database) *Store {
	return &Store{Store: generic.New[models.Member](db, "members")}
}

// Create inserts a member with a fresh id, folded name columns, and UTC
// timestamps.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = primitive.NewObjectID()
	m.FirstName = normalize.Name(m.FirstName)
	m.FirstNameCI = text.Fold(m.FirstName)
	m.LastName = normalize.Name(m.LastName)
	m.LastNameCI = text.Fold(m.LastName)
	m.Email = normalize.Email(m.Email)
	m.Phone = normalize.Phone(m.Phone)
	if m.Notes == nil {
		m.Notes = []models.MemberNote{}
	}

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	return s.Store.Create(ctx, m)
}

// GetByEmail looks up a member by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Member, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// GetByPhone looks up a member by phone as entered at creation.
func (s *Store) GetByPhone(ctx context.Context, phone string) (models.Member, error) {
	return s.findOne(ctx, bson.M{"phone": normalize.Phone(phone)})
}

// GetByName looks up a member by case-insensitive exact first and last name
// using the folded name columns.
func (s *Store) GetByName(ctx context.Context, first, last string) (models.Member, error) {
	return s.findOne(ctx, bson.M{
		"first_name_ci": text.Fold(normalize.Name(first)),
		"last_name_ci":  text.Fold(normalize.Name(last)),
	})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Member, error) {
	if s.Collection() == nil {
		return models.Member{}, generic.ErrNotConfigured
	}
	var m models.Member
	if err := s.Collection().FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Member{}, generic.ErrNotFound
		}
		return models.Member{}, err
	}
	return m, nil
}

// ByStatus lists members with the given status.
func (s *Store) ByStatus(ctx context.Context, status string, skip, limit int64) ([]models.Member, error) {
	return s.List(ctx, generic.ListQuery{
		Skip: skip, Limit: limit,
		Filter: bson.M{"status": status},
		SortBy: "last_name_ci",
	})
}

// ByRole lists members with the given role.
func (s *Store) ByRole(ctx context.Context, role string, skip, limit int64) ([]models.Member, error) {
	return s.List(ctx, generic.ListQuery{
		Skip: skip, Limit: limit,
		Filter: bson.M{"role": role},
		SortBy: "last_name_ci",
	})
}

// activeFilter is the admin-facing active view: active flag set and not
// relocated. The congregation view in the service layer additionally
// excludes outreach contacts; the two filters are intentionally different.
func activeFilter() bson.M {
	return bson.M{
		"is_active": true,
		"status":    bson.M{"$ne": models.StatusRelocated},
	}
}

// ActiveMembers lists active, non-relocated members.
func (s *Store) ActiveMembers(ctx context.Context, skip, limit int64) ([]models.Member, error) {
	return s.List(ctx, generic.ListQuery{
		Skip: skip, Limit: limit,
		Filter: activeFilter(),
		SortBy: "last_name_ci",
	})
}

// EmailTaken reports whether any member other than excludeID holds the
// email. Pass an empty excludeID for create-time checks.
func (s *Store) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	email = normalize.Email(email)
	if email == "" {
		return false, nil
	}
	return s.fieldTaken(ctx, "email", email, excludeID)
}

// PhoneTaken reports whether any member other than excludeID holds the
// phone number.
func (s *Store) PhoneTaken(ctx context.Context, phone, excludeID string) (bool, error) {
	phone = normalize.Phone(phone)
	if phone == "" {
		return false, nil
	}
	return s.fieldTaken(ctx, "phone", phone, excludeID)
}

func (s *Store) fieldTaken(ctx context.Context, field, value, excludeID string) (bool, error) {
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

// BirthdaysThisMonth lists members whose birthday falls in the current UTC
// month, regardless of birth year.
func (s *Store) BirthdaysThisMonth(ctx context.Context) ([]models.Member, error) {
	now := time.Now().UTC()
	return s.byBirthday(ctx, bson.M{
		"$eq": bson.A{bson.M{"$month": "$date_of_birth"}, int(now.Month())},
	})
}

// BirthdaysToday lists members whose birthday is the current UTC day.
func (s *Store) BirthdaysToday(ctx context.Context) ([]models.Member, error) {
	now := time.Now().UTC()
	return s.byBirthday(ctx, bson.M{
		"$and": bson.A{
			bson.M{"$eq": bson.A{bson.M{"$month": "$date_of_birth"}, int(now.Month())}},
			bson.M{"$eq": bson.A{bson.M{"$dayOfMonth": "$date_of_birth"}, now.Day()}},
		},
	})
}

func (s *Store) byBirthday(ctx context.Context, expr bson.M) ([]models.Member, error) {
	// $month on a missing/null field errors, so constrain to documents
	// that have a birth date before applying the calendar extraction.
	return s.List(ctx, generic.ListQuery{
		Filter: bson.M{
			"date_of_birth": bson.M{"$type": "date"},
			"$expr":         expr,
		},
		SortBy: "last_name_ci",
	})
}

// ByAgeRange lists members aged between min and max inclusive, computed
// from the birth-date window.
func (s *Store) ByAgeRange(ctx context.Context, min, max int) ([]models.Member, error) {
	today := models.Today()
	// Someone aged exactly max was born after this date...
	earliest := models.NewDate(today.Time.Year()-max-1, today.Time.Month(), today.Time.Day())
	// ...and someone aged exactly min was born on or before this one.
	latest := models.NewDate(today.Time.Year()-min, today.Time.Month(), today.Time.Day())

	return s.List(ctx, generic.ListQuery{
		Filter: bson.M{"date_of_birth": bson.M{
			"$gt":  earliest.Time,
			"$lte": latest.Time,
		}},
		SortBy: "date_of_birth",
	})
}

// CountByStatus returns the number of members per status value.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return s.countBy(ctx, "$status")
}

// CountByRole returns the number of members per role value.
func (s *Store) CountByRole(ctx context.Context) (map[string]int64, error) {
	return s.countBy(ctx, "$role")
}

func (s *Store) countBy(ctx context.Context, field string) (map[string]int64, error) {
	if s.Collection() == nil {
		return nil, generic.ErrNotConfigured
	}
	pipeline := []bson.M{
		{"$group": bson.M{"_id": field, "count": bson.M{"$sum": 1}}},
	}
	cur, err := s.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Count
	}
	return out, nil
}

// CountActive counts active, non-relocated members.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.Count(ctx, activeFilter())
}
