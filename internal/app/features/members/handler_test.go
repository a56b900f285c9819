package members_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flocklabs/flockhub/internal/app/features/members"
	insightsvc "github.com/flocklabs/flockhub/internal/app/service/insight"
	membersvc "github.com/flocklabs/flockhub/internal/app/service/members"
	memberstore "github.com/flocklabs/flockhub/internal/app/store/members"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/flocklabs/flockhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// failingGenerator always errors, so insight responses exercise the
// fallback path.
type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	return "", errors.New("backend down")
}

func newTestRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	store := memberstore.New(db)
	svc := membersvc.New(store, logger)
	insight := insightsvc.New(failingGenerator{}, logger)

	h := members.NewHandler(svc, insight, logger)
	return members.Routes(h), testutil.NewFixtures(t, db)
}

func TestHandleCreate(t *testing.T) {
	router, _ := newTestRouter(t)
	user := testutil.TestMemberUser()

	body := map[string]any{
		"first_name": "Ana",
		"last_name":  "García",
		"phone":      "5551234567",
	}
	req := testutil.NewJSONRequest(t, "POST", "/", body, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var created models.Member
	testutil.DecodeJSON(t, rec, &created)
	if created.ID == primitive.NilObjectID {
		t.Error("expected created member to carry an id")
	}
	if created.Status != models.StatusMember {
		t.Errorf("expected default status, got %q", created.Status)
	}
	if !created.IsActive {
		t.Error("expected new member to be active")
	}
}

func TestHandleCreate_ValidationErrors(t *testing.T) {
	router, _ := newTestRouter(t)
	user := testutil.TestMemberUser()

	body := map[string]any{
		"first_name": "",
		"phone":      "123",
	}
	req := testutil.NewJSONRequest(t, "POST", "/", body, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var resp struct {
		Detail map[string]string `json:"detail"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Detail["first_name"] == "" {
		t.Error("expected a first_name field error")
	}
	if resp.Detail["phone"] == "" {
		t.Error("expected a phone field error")
	}
}

func TestHandleCreate_DuplicatePhone(t *testing.T) {
	router, fixtures := newTestRouter(t)
	user := testutil.TestMemberUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures.CreateMember(ctx, "First", "Taken", "5551234567")

	body := map[string]any{
		"first_name": "Second",
		"phone":      "5551234567",
	}
	req := testutil.NewJSONRequest(t, "POST", "/", body, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestHandleGet_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	user := testutil.TestMemberUser()

	req := testutil.NewRequest("GET", "/"+primitive.NewObjectID().Hex(), user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleDelete_SoftDeletes(t *testing.T) {
	router, fixtures := newTestRouter(t)
	user := testutil.TestMemberUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	m := fixtures.CreateMember(ctx, "Leaving", "Soon", "5551234568")

	req := testutil.NewRequest("DELETE", "/"+m.ID.Hex(), user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNoContent)
	}

	// The record stays readable by id, flagged relocated.
	req = testutil.NewRequest("GET", "/"+m.ID.Hex(), user)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status after delete: got %d, want %d", rec.Code, http.StatusOK)
	}
	var got models.Member
	testutil.DecodeJSON(t, rec, &got)
	if got.IsActive {
		t.Error("expected member to be inactive after delete")
	}
	if got.Status != models.StatusRelocated {
		t.Errorf("expected status relocated, got %q", got.Status)
	}
}

func TestHandleInsight_FallsBack(t *testing.T) {
	router, fixtures := newTestRouter(t)
	user := testutil.TestMemberUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	m := fixtures.CreateMember(ctx, "Needs", "Care", "5551234569")

	req := testutil.NewRequest("POST", "/"+m.ID.Hex()+"/insight", user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	var resp map[string]string
	testutil.DecodeJSON(t, rec, &resp)
	if resp["insight"] != insightsvc.FallbackText {
		t.Errorf("expected fallback insight, got %q", resp["insight"])
	}
	if resp["member_id"] != m.ID.Hex() {
		t.Errorf("member_id: got %q, want %q", resp["member_id"], m.ID.Hex())
	}
}

func TestHandleList_StatusFilter(t *testing.T) {
	router, fixtures := newTestRouter(t)
	user := testutil.TestMemberUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures.CreateMember(ctx, "Mary", "Member", "5551240001")
	visitor := fixtures.CreateMemberWithStatus(ctx, "Vic", "Visitor", "5551240002", models.StatusVisitor)

	req := testutil.NewRequest("GET", "/?status=visitor", user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var list []models.Member
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 || list[0].ID != visitor.ID {
		t.Errorf("expected only the visitor, got %d members", len(list))
	}
}

func TestHandleGetByPhone(t *testing.T) {
	router, fixtures := newTestRouter(t)
	user := testutil.TestMemberUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	m := fixtures.CreateMember(ctx, "Pia", "Phoneowner", "5551240003")

	req := testutil.NewRequest("GET", "/phone/5551240003", user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var found models.Member
	testutil.DecodeJSON(t, rec, &found)
	if found.ID != m.ID {
		t.Errorf("expected member %s, got %s", m.ID.Hex(), found.ID.Hex())
	}

	req = testutil.NewRequest("GET", "/phone/5559999999", user)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown phone: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleSuggestTags_EmptyOnFailure(t *testing.T) {
	router, _ := newTestRouter(t)
	user := testutil.TestMemberUser()

	body := map[string]any{"text": "Prayed with the family after the service."}
	req := testutil.NewJSONRequest(t, "POST", "/suggest-tags", body, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Tags []string `json:"tags"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Tags == nil || len(resp.Tags) != 0 {
		t.Errorf("expected an empty tag list, got %v", resp.Tags)
	}

	req = testutil.NewJSONRequest(t, "POST", "/suggest-tags", map[string]any{"text": ""}, user)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty text: got %d, want %d", rec.Code, http.StatusBadRequest)
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
