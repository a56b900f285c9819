// internal/app/service/events/service.go
package eventsvc

import (
	"context"
	"errors"

	"github.com/flocklabs/flockhub/internal/app/service/patch"
	"github.com/flocklabs/flockhub/internal/app/service/validation"
	eventstore "github.com/flocklabs/flockhub/internal/app/store/events"
	"github.com/flocklabs/flockhub/internal/app/store/generic"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oapi-codegen/nullable"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no event exists for the given id.
var ErrNotFound = errors.New("event not found")

type Service struct {
	store    *eventstore.Store
	sanitize *bluemonday.Policy
	logger   *zap.Logger
}

func New(store *eventstore.Store, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		sanitize: bluemonday.UGCPolicy(),
		logger:   logger,
	}
}

// Create validates and inserts an event. Validation failures come back at
// construction time as field-level errors, never after persistence.
func (s *Service) Create(ctx context.Context, e models.Event) (models.Event, error) {
	if err := fieldError(e.Validate()); err != nil {
		return models.Event{}, err
	}
	e.Description = s.sanitize.Sanitize(e.Description)

	created, err := s.store.Create(ctx, e)
	if err != nil {
		return models.Event{}, err
	}
	s.logger.Info("event created",
		zap.String("event_id", created.ID.Hex()),
		zap.String("title", created.Title),
		zap.String("start_date", created.StartDate.String()))
	return created, nil
}

// Get loads an event by id.
func (s *Service) Get(ctx context.Context, id string) (models.Event, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	return e, nil
}

// UpdateInput is a partial event patch.
type UpdateInput struct {
	Title       nullable.Nullable[string]      `json:"title"`
	Description nullable.Nullable[string]      `json:"description"`
	StartDate   nullable.Nullable[models.Date] `json:"start_date"`
	EndDate     nullable.Nullable[models.Date] `json:"end_date"`
	StartTime   nullable.Nullable[string]      `json:"start_time"`
	EndTime     nullable.Nullable[string]      `json:"end_time"`
	IsAllDay    nullable.Nullable[bool]        `json:"is_all_day"`
	Location    nullable.Nullable[string]      `json:"location"`
	CalendarID  nullable.Nullable[string]      `json:"calendar_id"`
	Color       nullable.Nullable[string]      `json:"color"`
	IsPublic    nullable.Nullable[bool]        `json:"is_public"`
}

// Update applies a partial patch. The cross-field rules are re-validated
// against the merge of the stored event and the patch, so a patch cannot
// leave the event in an invalid state.
func (s *Service) Update(ctx context.Context, id string, upd UpdateInput) (models.Event, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return models.Event{}, err
	}
	merged := applyUpdate(current, upd)
	if err := fieldError(merged.Validate()); err != nil {
		return models.Event{}, err
	}

	set := bson.M{}
	patch.Set(set, "title", upd.Title)
	patch.SetMapped(set, "description", upd.Description, s.sanitize.Sanitize)
	patch.Set(set, "start_date", upd.StartDate)
	patch.Set(set, "end_date", upd.EndDate)
	patch.Set(set, "start_time", upd.StartTime)
	patch.Set(set, "end_time", upd.EndTime)
	patch.Set(set, "is_all_day", upd.IsAllDay)
	patch.Set(set, "location", upd.Location)
	patch.Set(set, "calendar_id", upd.CalendarID)
	patch.Set(set, "color", upd.Color)
	patch.Set(set, "is_public", upd.IsPublic)

	e, err := s.store.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	return e, nil
}

// Delete removes an event permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// ListParams narrows and pages an event listing.
type ListParams struct {
	Skip      int64
	Limit     int64
	Search    string
	Organizer string
}

// List returns one page of events by start date. An organizer-only
// listing goes through the store's dedicated query.
func (s *Service) List(ctx context.Context, p ListParams) ([]models.Event, error) {
	if p.Organizer != "" {
		oid, err := primitive.ObjectIDFromHex(p.Organizer)
		if err != nil {
			return []models.Event{}, nil
		}
		if p.Search == "" {
			return s.store.ByOrganizer(ctx, oid, p.Skip, p.Limit)
		}
		return s.store.List(ctx, generic.ListQuery{
			Skip: p.Skip, Limit: p.Limit,
			Filter:       bson.M{"organizer_id": oid},
			Search:       p.Search,
			SearchFields: eventstore.SearchFields,
			SortBy:       "start_date",
		})
	}
	return s.store.List(ctx, generic.ListQuery{
		Skip: p.Skip, Limit: p.Limit,
		Search:       p.Search,
		SearchFields: eventstore.SearchFields,
		SortBy:       "start_date",
	})
}

// Public lists publicly visible events for unauthenticated embeds.
func (s *Service) Public(ctx context.Context, skip, limit int64) ([]models.Event, error) {
	return s.store.Public(ctx, skip, limit)
}

// CalendarPage is one page of a calendar's events with its total count.
type CalendarPage struct {
	Events []models.Event `json:"events"`
	Total  int64          `json:"total"`
}

// ByCalendar pages through one calendar's events.
func (s *Service) ByCalendar(ctx context.Context, calendarID string, skip, limit int64) (CalendarPage, error) {
	events, err := s.store.ByCalendar(ctx, calendarID, skip, limit)
	if err != nil {
		return CalendarPage{}, err
	}
	total, err := s.store.CountByCalendar(ctx, calendarID)
	if err != nil {
		return CalendarPage{}, err
	}
	return CalendarPage{Events: events, Total: total}, nil
}

// Upcoming lists events starting today or later.
func (s *Service) Upcoming(ctx context.Context, limit int64) ([]models.Event, error) {
	return s.store.Upcoming(ctx, limit)
}

// Today lists events starting today.
func (s *Service) Today(ctx context.Context) ([]models.Event, error) {
	return s.store.Today(ctx)
}

// ThisWeek lists events in the current Monday-aligned week.
func (s *Service) ThisWeek(ctx context.Context) ([]models.Event, error) {
	return s.store.ThisWeek(ctx)
}

// ThisMonth lists events in the current calendar month.
func (s *Service) ThisMonth(ctx context.Context) ([]models.Event, error) {
	return s.store.ThisMonth(ctx)
}

// Past lists finished events, most recently ended first.
func (s *Service) Past(ctx context.Context, skip, limit int64) ([]models.Event, error) {
	return s.store.Past(ctx, skip, limit)
}

// Statistics summarizes the calendar for dashboards.
func (s *Service) Statistics(ctx context.Context) (models.EventStatistics, error) {
	return s.store.Statistics(ctx)
}

// applyUpdate merges a patch onto a stored event for re-validation.
func applyUpdate(e models.Event, upd UpdateInput) models.Event {
	if upd.Title.IsSpecified() && !upd.Title.IsNull() {
		e.Title = upd.Title.MustGet()
	}
	if upd.StartDate.IsSpecified() && !upd.StartDate.IsNull() {
		e.StartDate = upd.StartDate.MustGet()
	}
	if upd.EndDate.IsSpecified() {
		if upd.EndDate.IsNull() {
			e.EndDate = nil
		} else {
			d := upd.EndDate.MustGet()
			e.EndDate = &d
		}
	}
	if upd.StartTime.IsSpecified() {
		if upd.StartTime.IsNull() {
			e.StartTime = ""
		} else {
			e.StartTime = upd.StartTime.MustGet()
		}
	}
	if upd.EndTime.IsSpecified() {
		if upd.EndTime.IsNull() {
			e.EndTime = ""
		} else {
			e.EndTime = upd.EndTime.MustGet()
		}
	}
	if upd.Color.IsSpecified() {
		if upd.Color.IsNull() {
			e.Color = ""
		} else {
			e.Color = upd.Color.MustGet()
		}
	}
	return e
}

// fieldError converts the model's sentinel validation errors into the
// field-level shape the API boundary reports.
func fieldError(err error) error {
	if err == nil {
		return nil
	}
	c := &validation.Collector{}
	switch {
	case errors.Is(err, models.ErrTitleRequired):
		c.Add("title", "is required")
	case errors.Is(err, models.ErrEndBeforeStart):
		c.Add("end_date", "must be on or after start_date")
	case errors.Is(err, models.ErrBadClockTime):
		c.Add("start_time", `must be 24-hour "HH:MM"`)
	case errors.Is(err, models.ErrEndTimeNotAfter):
		c.Add("end_time", "must be after start_time")
	case errors.Is(err, models.ErrBadColor):
		c.Add("color", "must be a hex code like #FF0000")
	default:
		c.Add("event", err.Error())
	}
	return c.Err()
}
