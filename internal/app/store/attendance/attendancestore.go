// internal/app/store/attendance/attendancestore.go
package attendancestore

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
var SearchFields = []string{"status", "notes", "attendance_type"}

type Store struct {
	*generic.Store[models.Attendance]
}

func New(db *mongo.Database) *Store {
	return &Store{Store: generic.New[models.Attendance](db, "attendance")}
}

// Create inserts an attendance record with a fresh id and UTC timestamps.
// A duplicate (member, date, type) triple violates the compound unique
// index and comes back as generic.ErrDuplicate.
func (s *Store) Create(ctx context.Context, a models.Attendance) (models.Attendance, error) {
	a.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	return s.Store.Create(ctx, a)
}

// Exists reports whether a record already exists for the member on the
// given date and service type.
func (s *Store) Exists(ctx context.Context, memberID primitive.ObjectID, date models.Date, attType string) (bool, error) {
	n, err := s.Count(ctx, bson.M{
		"member_id":       memberID,
		"attendance_date": date.Time,
		"attendance_type": attType,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ByMemberID lists a member's records, newest date first.
func (s *Store) ByMemberID(ctx context.Context, memberID primitive.ObjectID, skip, limit int64) ([]models.Attendance, error) {
	return s.List(ctx, generic.ListQuery{
		Skip: skip, Limit: limit,
		Filter:    bson.M{"member_id": memberID},
		SortBy:    "attendance_date",
		SortOrder: -1,
	})
}

// ByDate lists records for one date, optionally restricted to a service
// type.
func (s *Store) ByDate(ctx context.Context, date models.Date, attType string) ([]models.Attendance, error) {
	filter := bson.M{"attendance_date": date.Time}
	if attType != "" {
		filter["attendance_type"] = attType
	}
	return s.List(ctx, generic.ListQuery{Filter: filter, SortBy: "member_id"})
}

// RangeFilter narrows a date-range listing.
type RangeFilter struct {
	MemberID *primitive.ObjectID
	Type     string
}

// ByDateRange lists records between start and end inclusive.
func (s *Store) ByDateRange(ctx context.Context, start, end models.Date, opt RangeFilter) ([]models.Attendance, error) {
	filter := rangeQuery(start, end)
	if opt.MemberID != nil {
		filter["member_id"] = *opt.MemberID
	}
	if opt.Type != "" {
		filter["attendance_type"] = opt.Type
	}
	return s.List(ctx, generic.ListQuery{Filter: filter, SortBy: "attendance_date"})
}

// Recent lists the most recently recorded entries.
func (s *Store) Recent(ctx context.Context, limit int64) ([]models.Attendance, error) {
	return s.List(ctx, generic.ListQuery{
		Limit:     limit,
		SortBy:    "created_at",
		SortOrder: -1,
	})
}

func rangeQuery(start, end models.Date) bson.M {
	return bson.M{"attendance_date": bson.M{
		"$gte": start.Time,
		"$lte": end.Time,
	}}
}

// StatusCounts groups matching records by status. Every record counts
// toward Total; unrecognized status values appear in ByStatus under their
// own key but have no categorized counter elsewhere.
type StatusCounts struct {
	Total    int
	ByStatus map[string]int
}

func (c StatusCounts) status(name string) int { return c.ByStatus[name] }

// Present returns the present count.
func (c StatusCounts) Present() int { return c.status(models.AttendancePresent) }

// Absent returns the absent count.
func (c StatusCounts) Absent() int { return c.status(models.AttendanceAbsent) }

// Late returns the late count.
func (c StatusCounts) Late() int { return c.status(models.AttendanceLate) }

// Excused returns the excused count.
func (c StatusCounts) Excused() int { return c.status(models.AttendanceExcused) }

// CountByStatus groups records by status under the given filter (nil for
// all records).
func (s *Store) CountByStatus(ctx context.Context, filter bson.M) (StatusCounts, error) {
	if s.Collection() == nil {
		return StatusCounts{}, generic.ErrNotConfigured
	}
	pipeline := []bson.M{}
	if len(filter) > 0 {
		pipeline = append(pipeline, bson.M{"$match": filter})
	}
	pipeline = append(pipeline, bson.M{
		"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}},
	})

	cur, err := s.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return StatusCounts{}, err
	}
	var rows []struct {
		ID    string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return StatusCounts{}, err
	}

	out := StatusCounts{ByStatus: make(map[string]int, len(rows))}
	for _, r := range rows {
		out.ByStatus[r.ID] = r.Count
		out.Total += r.Count
	}
	return out, nil
}

// MemberSummary aggregates one member's records between start and end
// inclusive. The caller fills in the member's display name.
func (s *Store) MemberSummary(ctx context.Context, memberID primitive.ObjectID, start, end models.Date) (models.AttendanceSummary, error) {
	filter := rangeQuery(start, end)
	filter["member_id"] = memberID

	counts, err := s.CountByStatus(ctx, filter)
	if err != nil {
		return models.AttendanceSummary{}, err
	}
	return models.AttendanceSummary{
		MemberID:       memberID,
		TotalServices:  counts.Total,
		PresentCount:   counts.Present(),
		AbsentCount:    counts.Absent(),
		LateCount:      counts.Late(),
		ExcusedCount:   counts.Excused(),
		AttendanceRate: models.Rate(counts.Present(), counts.Total),
		PeriodStart:    start,
		PeriodEnd:      end,
	}, nil
}

// ServiceSummary aggregates all records for one service date and type.
func (s *Store) ServiceSummary(ctx context.Context, date models.Date, attType string) (models.ServiceAttendanceSummary, error) {
	counts, err := s.CountByStatus(ctx, bson.M{
		"attendance_date": date.Time,
		"attendance_type": attType,
	})
	if err != nil {
		return models.ServiceAttendanceSummary{}, err
	}
	return models.ServiceAttendanceSummary{
		ServiceDate:    date,
		ServiceType:    attType,
		TotalMembers:   counts.Total,
		PresentMembers: counts.Present(),
		AbsentMembers:  counts.Absent(),
		LateMembers:    counts.Late(),
		ExcusedMembers: counts.Excused(),
		AttendanceRate: models.Rate(counts.Present(), counts.Total),
	}, nil
}

// Trends buckets records by date and service type between start and end
// inclusive, sorted by date ascending.
func (s *Store) Trends(ctx context.Context, start, end models.Date, attType string) ([]models.AttendanceTrend, error) {
	if s.Collection() == nil {
		return nil, generic.ErrNotConfigured
	}
	match := rangeQuery(start, end)
	if attType != "" {
		match["attendance_type"] = attType
	}

	statusCount := func(status string) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$status", status}}, 1, 0,
		}}}
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id": bson.M{
				"date": "$attendance_date",
				"type": "$attendance_type",
			},
			"total":   bson.M{"$sum": 1},
			"present": statusCount(models.AttendancePresent),
			"absent":  statusCount(models.AttendanceAbsent),
			"late":    statusCount(models.AttendanceLate),
		}},
		{"$sort": bson.M{"_id.date": 1, "_id.type": 1}},
	}

	cur, err := s.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID struct {
			Date time.Time `bson:"date"`
			Type string    `bson:"type"`
		} `bson:"_id"`
		Total   int `bson:"total"`
		Present int `bson:"present"`
		Absent  int `bson:"absent"`
		Late    int `bson:"late"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]models.AttendanceTrend, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.AttendanceTrend{
			Date:           models.DateOf(r.ID.Date),
			AttendanceType: r.ID.Type,
			Total:          r.Total,
			Present:        r.Present,
			Absent:         r.Absent,
			Late:           r.Late,
			Rate:           models.Rate(r.Present, r.Total),
		})
	}
	return out, nil
}
