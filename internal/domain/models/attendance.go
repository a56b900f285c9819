// internal/domain/models/attendance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance records one member's presence at one service on one date.
// The (member_id, date, type) triple is unique: a unique compound index in
// the store is the authoritative enforcement; services pre-check only for a
// friendlier error message.
type Attendance struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID       primitive.ObjectID `bson:"member_id" json:"member_id"`
	AttendanceDate Date               `bson:"attendance_date" json:"attendance_date"`
	AttendanceType string             `bson:"attendance_type" json:"attendance_type"`
	Status         string             `bson:"status" json:"status"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	RecordedBy     primitive.ObjectID `bson:"recorded_by" json:"recorded_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Attendance type values.
const (
	AttendanceSundayService    = "sunday service"
	AttendanceBibleStudy       = "bible study"
	AttendanceWednesdayService = "wednesday service"
	AttendancePrayerMeeting    = "prayer meeting"
	AttendanceYouthMeeting     = "youth meeting"
	AttendanceChildrenChurch   = "children church"
	AttendanceChoirRehearsal   = "choir rehearsal"
	AttendanceSpecialEvent     = "special event"
	AttendanceOther            = "other"
)

// Attendance status values.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// AllAttendanceTypes contains the attendance type options.
var AllAttendanceTypes = []Option{
	{Value: AttendanceSundayService, Label: "Sunday Service"},
	{Value: AttendanceBibleStudy, Label: "Bible Study"},
	{Value: AttendanceWednesdayService, Label: "Wednesday Service"},
	{Value: AttendancePrayerMeeting, Label: "Prayer Meeting"},
	{Value: AttendanceYouthMeeting, Label: "Youth Meeting"},
	{Value: AttendanceChildrenChurch, Label: "Children Church"},
	{Value: AttendanceChoirRehearsal, Label: "Choir Rehearsal"},
	{Value: AttendanceSpecialEvent, Label: "Special Event"},
	{Value: AttendanceOther, Label: "Other"},
}

// AllAttendanceStatuses contains the attendance status options.
var AllAttendanceStatuses = []Option{
	{Value: AttendancePresent, Label: "Present"},
	{Value: AttendanceAbsent, Label: "Absent"},
	{Value: AttendanceLate, Label: "Late"},
	{Value: AttendanceExcused, Label: "Excused"},
}

// IsValidAttendanceType checks if a value is a valid attendance type.
func IsValidAttendanceType(value string) bool { return optionValueIn(AllAttendanceTypes, value) }

// IsValidAttendanceStatus checks if a value is a valid attendance status.
func IsValidAttendanceStatus(value string) bool { return optionValueIn(AllAttendanceStatuses, value) }

// AttendanceSummary aggregates one member's attendance over a period.
// TotalServices counts every record including unrecognized statuses, so the
// four categorized counters may sum to less than the total.
type AttendanceSummary struct {
	MemberID       primitive.ObjectID `json:"member_id"`
	MemberName     string             `json:"member_name"`
	TotalServices  int                `json:"total_services"`
	PresentCount   int                `json:"present_count"`
	AbsentCount    int                `json:"absent_count"`
	LateCount      int                `json:"late_count"`
	ExcusedCount   int                `json:"excused_count"`
	AttendanceRate float64            `json:"attendance_rate"`
	PeriodStart    Date               `json:"period_start"`
	PeriodEnd      Date               `json:"period_end"`
}

// ServiceAttendanceSummary aggregates attendance across members for one
// service date and type.
type ServiceAttendanceSummary struct {
	ServiceDate    Date    `json:"service_date"`
	ServiceType    string  `json:"service_type"`
	TotalMembers   int     `json:"total_members"`
	PresentMembers int     `json:"present_members"`
	AbsentMembers  int     `json:"absent_members"`
	LateMembers    int     `json:"late_members"`
	ExcusedMembers int     `json:"excused_members"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// AttendanceTrend is one date-and-type bucket of the trends report.
type AttendanceTrend struct {
	Date           Date    `json:"date"`
	AttendanceType string  `json:"attendance_type"`
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	Rate           float64 `json:"rate"`
}

// Rate returns present/total as a percentage, 0 when total is zero.
func Rate(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}
