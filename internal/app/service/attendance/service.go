// internal/app/service/attendance/service.go
package attendancesvc

import (
	"context"
	"errors"
	"strings"

	"github.com/flocklabs/flockhub/internal/app/service/patch"
	"github.com/flocklabs/flockhub/internal/app/service/validation"
	attendancestore "github.com/flocklabs/flockhub/internal/app/store/attendance"
	"github.com/flocklabs/flockhub/internal/app/store/generic"
	memberstore "github.com/flocklabs/flockhub/internal/app/store/members"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oapi-codegen/nullable"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no attendance record exists for the id.
	ErrNotFound = errors.New("attendance record not found")
	// ErrMemberNotFound is returned when the referenced member does not
	// exist.
	ErrMemberNotFound = errors.New("member not found")
	// ErrFutureDate is returned for attendance dated after today.
	ErrFutureDate = errors.New("attendance date cannot be in the future")
	// ErrDuplicateRecord is returned when a record already exists for the
	// same member, date, and service type.
	ErrDuplicateRecord = errors.New("attendance already recorded for this member, date, and service")
)

type Service struct {
	store    *attendancestore.Store
	members  *memberstore.Store
	sanitize *bluemonday.Policy
	logger   *zap.Logger
}

func New(store *attendancestore.Store, members *memberstore.Store, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		members:  members,
		sanitize: bluemonday.UGCPolicy(),
		logger:   logger,
	}
}

// Create validates and records attendance. The (member, date, type) triple
// must be unique; the pre-check gives the friendly error and the store's
// compound unique index catches anything that races past it.
func (s *Service) Create(ctx context.Context, a models.Attendance) (models.Attendance, error) {
	if err := validateRecord(a); err != nil {
		return models.Attendance{}, err
	}
	if a.AttendanceDate.After(models.Today()) {
		return models.Attendance{}, ErrFutureDate
	}

	if _, err := s.members.GetByID(ctx, a.MemberID.Hex()); err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			return models.Attendance{}, ErrMemberNotFound
		}
		return models.Attendance{}, err
	}

	exists, err := s.store.Exists(ctx, a.MemberID, a.AttendanceDate, a.AttendanceType)
	if err != nil {
		return models.Attendance{}, err
	}
	if exists {
		return models.Attendance{}, ErrDuplicateRecord
	}

	a.Notes = s.sanitize.Sanitize(a.Notes)
	created, err := s.store.Create(ctx, a)
	if err != nil {
		if errors.Is(err, generic.ErrDuplicate) {
			return models.Attendance{}, ErrDuplicateRecord
		}
		return models.Attendance{}, err
	}
	s.logger.Info("attendance recorded",
		zap.String("member_id", created.MemberID.Hex()),
		zap.String("date", created.AttendanceDate.String()),
		zap.String("type", created.AttendanceType))
	return created, nil
}

// Get loads a record by id.
func (s *Service) Get(ctx context.Context, id string) (models.Attendance, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			return models.Attendance{}, ErrNotFound
		}
		return models.Attendance{}, err
	}
	return a, nil
}

// UpdateInput is a partial attendance patch.
type UpdateInput struct {
	AttendanceDate nullable.Nullable[models.Date] `json:"attendance_date"`
	AttendanceType nullable.Nullable[string]      `json:"attendance_type"`
	Status         nullable.Nullable[string]      `json:"status"`
	Notes          nullable.Nullable[string]      `json:"notes"`
}

// Update applies a partial patch to a record.
func (s *Service) Update(ctx context.Context, id string, upd UpdateInput) (models.Attendance, error) {
	c := &validation.Collector{}
	if upd.AttendanceDate.IsSpecified() {
		if upd.AttendanceDate.IsNull() {
			c.Add("attendance_date", "cannot be null")
		} else if upd.AttendanceDate.MustGet().After(models.Today()) {
			return models.Attendance{}, ErrFutureDate
		}
	}
	if upd.AttendanceType.IsSpecified() {
		if upd.AttendanceType.IsNull() || !models.IsValidAttendanceType(upd.AttendanceType.MustGet()) {
			c.Add("attendance_type", "is not a valid attendance type")
		}
	}
	if upd.Status.IsSpecified() {
		if upd.Status.IsNull() || !models.IsValidAttendanceStatus(upd.Status.MustGet()) {
			c.Add("status", "is not a valid attendance status")
		}
	}
	if err := c.Err(); err != nil {
		return models.Attendance{}, err
	}

	set := bson.M{}
	patch.Set(set, "attendance_date", upd.AttendanceDate)
	patch.Set(set, "attendance_type", upd.AttendanceType)
	patch.Set(set, "status", upd.Status)
	patch.SetMapped(set, "notes", upd.Notes, s.sanitize.Sanitize)

	a, err := s.store.Update(ctx, id, set)
	if err != nil {
		switch {
		case errors.Is(err, generic.ErrNotFound):
			return models.Attendance{}, ErrNotFound
		case errors.Is(err, generic.ErrDuplicate):
			return models.Attendance{}, ErrDuplicateRecord
		}
		return models.Attendance{}, err
	}
	return a, nil
}

// Delete removes a record permanently. Attendance has no soft delete.
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

// ListParams narrows and pages an attendance listing.
type ListParams struct {
	Skip   int64
	Limit  int64
	Search string
}

// List returns one page of records, newest date first.
func (s *Service) List(ctx context.Context, p ListParams) ([]models.Attendance, error) {
	return s.store.List(ctx, generic.ListQuery{
		Skip: p.Skip, Limit: p.Limit,
		Search:       p.Search,
		SearchFields: attendancestore.SearchFields,
		SortBy:       "attendance_date",
		SortOrder:    -1,
	})
}

// ByMember lists a member's records, newest date first.
func (s *Service) ByMember(ctx context.Context, memberID string, skip, limit int64) ([]models.Attendance, error) {
	oid, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return nil, ErrMemberNotFound
	}
	return s.store.ByMemberID(ctx, oid, skip, limit)
}

// Recent lists the most recently recorded entries, dashboard-style.
func (s *Service) Recent(ctx context.Context, limit int64) ([]models.Attendance, error) {
	return s.store.Recent(ctx, limit)
}

// ByDate lists records for one date, optionally by service type.
func (s *Service) ByDate(ctx context.Context, date models.Date, attType string) ([]models.Attendance, error) {
	return s.store.ByDate(ctx, date, attType)
}

// ByDateRange lists records between start and end inclusive.
func (s *Service) ByDateRange(ctx context.Context, start, end models.Date, memberID, attType string) ([]models.Attendance, error) {
	if end.Before(start) {
		c := &validation.Collector{}
		c.Add("end_date", "must be on or after start_date")
		return nil, c.Err()
	}
	opt := attendancestore.RangeFilter{Type: attType}
	if memberID != "" {
		oid, err := primitive.ObjectIDFromHex(memberID)
		if err != nil {
			return nil, ErrMemberNotFound
		}
		opt.MemberID = &oid
	}
	return s.store.ByDateRange(ctx, start, end, opt)
}

// MemberSummary aggregates one member's attendance over a period, labeled
// with the member's name.
func (s *Service) MemberSummary(ctx context.Context, memberID string, start, end models.Date) (models.AttendanceSummary, error) {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			return models.AttendanceSummary{}, ErrMemberNotFound
		}
		return models.AttendanceSummary{}, err
	}

	summary, err := s.store.MemberSummary(ctx, m.ID, start, end)
	if err != nil {
		return models.AttendanceSummary{}, err
	}
	summary.MemberName = strings.TrimSpace(m.FirstName + " " + m.LastName)
	return summary, nil
}

// ServiceSummary aggregates all members' attendance for one service.
func (s *Service) ServiceSummary(ctx context.Context, date models.Date, attType string) (models.ServiceAttendanceSummary, error) {
	if !models.IsValidAttendanceType(attType) {
		c := &validation.Collector{}
		c.Add("attendance_type", "is not a valid attendance type")
		return models.ServiceAttendanceSummary{}, c.Err()
	}
	return s.store.ServiceSummary(ctx, date, attType)
}

// Trends buckets attendance by date and type between start and end.
func (s *Service) Trends(ctx context.Context, start, end models.Date, attType string) ([]models.AttendanceTrend, error) {
	if end.Before(start) {
		c := &validation.Collector{}
		c.Add("end_date", "must be on or after start_date")
		return nil, c.Err()
	}
	return s.store.Trends(ctx, start, end, attType)
}

// Statistics holds the attendance dashboard numbers.
type Statistics struct {
	TotalRecords int            `json:"total_records"`
	ByStatus     map[string]int `json:"by_status"`
	OverallRate  float64        `json:"overall_rate"`
}

// Statistics assembles overall counts and rate across all records.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	counts, err := s.store.CountByStatus(ctx, nil)
	if err != nil {
		return Statistics{}, err
	}
	byStatus := counts.ByStatus
	if byStatus == nil {
		byStatus = map[string]int{}
	}
	return Statistics{
		TotalRecords: counts.Total,
		ByStatus:     byStatus,
		OverallRate:  models.Rate(counts.Present(), counts.Total),
	}, nil
}

func validateRecord(a models.Attendance) error {
	c := &validation.Collector{}
	if a.MemberID.IsZero() {
		c.Add("member_id", "is required")
	}
	if a.AttendanceDate.IsZero() {
		c.Add("attendance_date", "is required")
	}
	if !models.IsValidAttendanceType(a.AttendanceType) {
		c.Add("attendance_type", "is not a valid attendance type")
	}
	if !models.IsValidAttendanceStatus(a.Status) {
		c.Add("status", "is not a valid attendance status")
	}
	if a.RecordedBy.IsZero() {
		c.Add("recorded_by", "is required")
	}
	return c.Err()
}
