// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"time"

	"github.com/flocklabs/flockhub/internal/app/store/generic"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SearchFields are the columns the list search term matches against.
var SearchFields = []string{"title", "description", "location"}

type Store struct {
	*generic.Store[models.Event]
}

func New(db *mongo.Database) *Store {
	return &Store{Store: generic.New[models.Event](db, "events")}
}

// Create inserts an event with a fresh id and UTC timestamps.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	return s.Store.Create(ctx, e)
}

// ByOrganizer lists events organized by the given user.
func (s *Store) ByOrganizer(ctx context.Context, organizerID primitive.ObjectID, skip, limit int64) ([]models.Event, error) {
	return s.List(ctx, generic.ListQuery{
		Skip: skip, Limit: limit,
		Filter: bson.M{"organizer_id": organizerID},
		SortBy: "start_date",
	})
}

// ByCalendar lists events on the given calendar.
func (s *Store) ByCalendar(ctx context.Context, calendarID string, skip, limit int64) ([]models.Event, error) {
	return s.List(ctx, generic.ListQuery{
		Skip: skip, Limit: limit,
		Filter: bson.M{"calendar_id": calendarID},
		SortBy: "start_date",
	})
}

// ByDateRange lists events starting between start and end inclusive.
func (s *Store) ByDateRange(ctx context.Context, start, end models.Date) ([]models.Event, error) {
	return s.List(ctx, generic.ListQuery{
		Filter: bson.M{"start_date": bson.M{
			"$gte": start.Time,
			"$lte": end.Time,
		}},
		SortBy: "start_date",
	})
}

// Public lists publicly visible events.
func (s *Store) Public(ctx context.Context, skip, limit int64) ([]models.Event, error) {
	return s.List(ctx, generic.ListQuery{
		Skip: skip, Limit: limit,
		Filter: bson.M{"is_public": true},
		SortBy: "start_date",
	})
}

// Upcoming lists events starting today or later, soonest first.
func (s *Store) Upcoming(ctx context.Context, limit int64) ([]models.Event, error) {
	today := models.Today()
	return s.List(ctx, generic.ListQuery{
		Limit:  limit,
		Filter: bson.M{"start_date": bson.M{"$gte": today.Time}},
		SortBy: "start_date",
	})
}

// Today lists events starting on the current UTC day.
func (s *Store) Today(ctx context.Context) ([]models.Event, error) {
	today := models.Today()
	return s.ByDateRange(ctx, today, today)
}

// ThisWeek lists events in the current Monday-aligned week.
func (s *Store) ThisWeek(ctx context.Context) ([]models.Event, error) {
	start, end := weekWindow(models.Today())
	return s.ByDateRange(ctx, start, end)
}

// ThisMonth lists events in the current calendar month.
func (s *Store) ThisMonth(ctx context.Context) ([]models.Event, error) {
	start, end := monthWindow(models.Today())
	return s.ByDateRange(ctx, start, end)
}

// Past lists finished events, most recently ended first. Events without an
// end date are judged on their start date.
func (s *Store) Past(ctx context.Context, skip, limit int64) ([]models.Event, error) {
	today := models.Today()
	return s.List(ctx, generic.ListQuery{
		Skip: skip, Limit: limit,
		Filter: bson.M{"$or": []bson.M{
			{"end_date": bson.M{"$lt": today.Time}},
			{"end_date": nil, "start_date": bson.M{"$lt": today.Time}},
		}},
		SortBy:    "end_date",
		SortOrder: -1,
	})
}

// CountUpcoming counts events starting today or later.
func (s *Store) CountUpcoming(ctx context.Context) (int64, error) {
	today := models.Today()
	return s.Count(ctx, bson.M{"start_date": bson.M{"$gte": today.Time}})
}

// CountByCalendar counts events on the given calendar.
func (s *Store) CountByCalendar(ctx context.Context, calendarID string) (int64, error) {
	return s.Count(ctx, bson.M{"calendar_id": calendarID})
}

// Statistics summarizes the calendar for dashboards.
func (s *Store) Statistics(ctx context.Context) (models.EventStatistics, error) {
	total, err := s.Count(ctx, nil)
	if err != nil {
		return models.EventStatistics{}, err
	}
	upcoming, err := s.CountUpcoming(ctx)
	if err != nil {
		return models.EventStatistics{}, err
	}
	start, end := monthWindow(models.Today())
	thisMonth, err := s.Count(ctx, bson.M{"start_date": bson.M{
		"$gte": start.Time,
		"$lte": end.Time,
	}})
	if err != nil {
		return models.EventStatistics{}, err
	}
	return models.EventStatistics{
		TotalEvents:     total,
		UpcomingEvents:  upcoming,
		EventsThisMonth: thisMonth,
		ByStatus:        map[string]int64{},
		ByType:          map[string]int64{},
	}, nil
}

// weekWindow returns the Monday and Sunday of the week containing d.
func weekWindow(d models.Date) (models.Date, models.Date) {
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	offset := (int(d.Time.Weekday()) + 6) % 7
	start := d.AddDays(-offset)
	return start, start.AddDays(6)
}

// monthWindow returns the first and last day of the month containing d.
func monthWindow(d models.Date) (models.Date, models.Date) {
	start := models.NewDate(d.Time.Year(), d.Time.Month(), 1)
	end := start.Time.AddDate(0, 1, -1)
	return start, models.DateOf(end)
}
