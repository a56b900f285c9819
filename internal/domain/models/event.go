// internal/domain/models/event.go
package models

import (
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a calendar event. Dates are calendar days; times are "HH:MM"
// strings that compare correctly as plain strings.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	StartDate Date   `bson:"start_date" json:"start_date"`
	EndDate   *Date  `bson:"end_date,omitempty" json:"end_date,omitempty"`
	StartTime string `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime   string `bson:"end_time,omitempty" json:"end_time,omitempty"`
	IsAllDay  bool   `bson:"is_all_day" json:"is_all_day"`

	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	OrganizerID primitive.ObjectID `bson:"organizer_id" json:"organizer_id"`
	CalendarID  string             `bson:"calendar_id,omitempty" json:"calendar_id,omitempty"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"`
	IsPublic    bool               `bson:"is_public" json:"is_public"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

var (
	ErrEndBeforeStart  = errors.New("end date must be on or after start date")
	ErrEndTimeNotAfter = errors.New("end time must be after start time")
	ErrBadColor        = errors.New("color must be a hex code like #FF0000")
	ErrBadClockTime    = errors.New(`times must be 24-hour "HH:MM"`)
	ErrTitleRequired   = errors.New("title is required")
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidHexColor reports whether s is a "#RRGGBB" hex color. Shorthand
// forms like "#FFF" and named colors are rejected.
func ValidHexColor(s string) bool { return hexColorRe.MatchString(s) }

// Validate checks the cross-field event rules: end date on or after start
// date (equal is a one-day event), end time strictly after start time when
// both are present, and a well-formed color.
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrTitleRequired
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return ErrEndBeforeStart
	}
	if e.StartTime != "" && !ValidClockTime(e.StartTime) {
		return ErrBadClockTime
	}
	if e.EndTime != "" && !ValidClockTime(e.EndTime) {
		return ErrBadClockTime
	}
	if e.StartTime != "" && e.EndTime != "" && e.EndTime <= e.StartTime {
		return ErrEndTimeNotAfter
	}
	if e.Color != "" && !ValidHexColor(e.Color) {
		return ErrBadColor
	}
	return nil
}

// EventStatistics summarizes the calendar for dashboards. The status and
// type breakdowns are retained for API compatibility and are always empty.
type EventStatistics struct {
	TotalEvents     int64            `json:"total_events"`
	UpcomingEvents  int64            `json:"upcoming_events"`
	EventsThisMonth int64            `json:"events_this_month"`
	ByStatus        map[string]int64 `json:"by_status"`
	ByType          map[string]int64 `json:"by_type"`
}
