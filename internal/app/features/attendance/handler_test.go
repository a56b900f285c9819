package attendance_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flocklabs/flockhub/internal/app/features/attendance"
	attendancesvc "github.com/flocklabs/flockhub/internal/app/service/attendance"
	attendancestore "github.com/flocklabs/flockhub/internal/app/store/attendance"
	memberstore "github.com/flocklabs/flockhub/internal/app/store/members"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/flocklabs/flockhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	svc := attendancesvc.New(attendancestore.New(db), memberstore.New(db), logger)
	return attendance.Routes(attendance.NewHandler(svc, logger)), testutil.NewFixtures(t, db)
}

func TestHandleCreate(t *testing.T) {
	router, fixtures := newTestRouter(t)
	user := testutil.TestMemberUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	member := fixtures.CreateMember(ctx, "Ana", "García", "5551230001")

	body := map[string]any{
		"member_id":       member.ID.Hex(),
		"attendance_date": "2026-08-23",
		"attendance_type": models.AttendanceSundayService,
		"status":          models.AttendancePresent,
	}
	req := testutil.NewJSONRequest(t, "POST", "/", body, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}

	var created models.Attendance
	testutil.DecodeJSON(t, rec, &created)
	if created.RecordedBy != user.ID {
		t.Errorf("recorded_by: got %v, want the signed-in user %v", created.RecordedBy, user.ID)
	}
}

func TestHandleCreate_UnknownMember(t *testing.T) {
	router, _ := newTestRouter(t)
	user := testutil.TestMemberUser()

	body := map[string]any{
		"member_id":       primitive.NewObjectID().Hex(),
		"attendance_date": "2026-08-23",
		"attendance_type": models.AttendanceSundayService,
		"status":          models.AttendancePresent,
	}
	req := testutil.NewJSONRequest(t, "POST", "/", body, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleCreate_Duplicate(t *testing.T) {
	router, fixtures := newTestRouter(t)
	user := testutil.TestMemberUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	member := fixtures.CreateMember(ctx, "Sam", "Okafor", "5551230002")
	date := models.NewDate(2026, 8, 23)
	fixtures.CreateAttendance(ctx, member.ID, date, models.AttendanceSundayService, models.AttendancePresent)

	body := map[string]any{
		"member_id":       member.ID.Hex(),
		"attendance_date": "2026-08-23",
		"attendance_type": models.AttendanceSundayService,
		"status":          models.AttendanceLate,
	}
	req := testutil.NewJSONRequest(t, "POST", "/", body, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestHandleCreate_FutureDate(t *testing.T) {
	router, fixtures := newTestRouter(t)
	user := testutil.TestMemberUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	member := fixtures.CreateMember(ctx, "Eli", "Mensah", "5551230003")

	future := models.Today().AddDays(7)
	body := map[string]any{
		"member_id":       member.ID.Hex(),
		"attendance_date": future,
		"attendance_type": models.AttendanceSundayService,
		"status":          models.AttendancePresent,
	}
	req := testutil.NewJSONRequest(t, "POST", "/", body, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleMemberSummary(t *testing.T) {
	router, fixtures := newTestRouter(t)
	user := testutil.TestMemberUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	member := fixtures.CreateMember(ctx, "Ruth", "Adeyemi", "5551230004")
	fixtures.CreateAttendance(ctx, member.ID, models.NewDate(2026, 8, 2), models.AttendanceSundayService, models.AttendancePresent)
	fixtures.CreateAttendance(ctx, member.ID, models.NewDate(2026, 8, 9), models.AttendanceSundayService, models.AttendanceAbsent)

	target := "/summary/member/" + member.ID.Hex() + "?start_date=2026-08-01&end_date=2026-08-31"
	req := testutil.NewRequest("GET", target, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var summary models.AttendanceSummary
	testutil.DecodeJSON(t, rec, &summary)
	if summary.TotalServices != 2 || summary.PresentCount != 1 {
		t.Errorf("summary counts wrong: %+v", summary)
	}
	if summary.MemberName != "Ruth Adeyemi" {
		t.Errorf("member_name: got %q, want %q", summary.MemberName, "Ruth Adeyemi")
	}
	if summary.AttendanceRate != 50 {
		t.Errorf("rate: got %v, want 50", summary.AttendanceRate)
	}
}

func TestHandleRecent(t *testing.T) {
	router, fixtures := newTestRouter(t)
	user := testutil.TestMemberUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	member := fixtures.CreateMember(ctx, "Noa", "Clark", "5551230005")
	older := fixtures.CreateAttendance(ctx, member.ID, models.NewDate(2026, 8, 2), models.AttendanceSundayService, models.AttendancePresent)
	newer := fixtures.CreateAttendance(ctx, member.ID, models.NewDate(2026, 8, 9), models.AttendanceSundayService, models.AttendancePresent)

	// Push the first recording's timestamp back so the order is fixed.
	_, err := fixtures.DB().Collection("attendance").UpdateByID(ctx, older.ID,
		bson.M{"$set": bson.M{"created_at": time.Now().UTC().Add(-time.Hour)}})
	if err != nil {
		t.Fatalf("failed to age record: %v", err)
	}

	req := testutil.NewRequest("GET", "/recent?limit=1", user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var list []models.Attendance
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 || list[0].ID != newer.ID {
		t.Errorf("expected the newest recording only, got %d records", len(list))
	}
}

func TestHandleByRange_BadDates(t *testing.T) {
	router, _ := newTestRouter(t)
	user := testutil.TestMemberUser()

	req := testutil.NewRequest("GET", "/range?start_date=2026-08-01", user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without user: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
