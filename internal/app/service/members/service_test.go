package membersvc

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/flocklabs/flockhub/internal/app/service/validation"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
)

func fieldProblem(t *testing.T, err error, field string) string {
	t.Helper()
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	msg, ok := verr.Fields[field]
	if !ok {
		t.Fatalf("no problem recorded for %q: %v", field, verr.Fields)
	}
	return msg
}

func TestValidateMember(t *testing.T) {
	m := models.Member{
		FirstName: "Jane",
		Phone:     "(555) 123-4567",
		Status:    models.StatusMember,
		Role:      models.RoleMember,
	}
	if err := validateMember(&m); err != nil {
		t.Fatalf("valid member rejected: %v", err)
	}

	bad := m
	bad.FirstName = "   "
	fieldProblem(t, validateMember(&bad), "first_name")

	bad = m
	bad.Phone = "555-1234"
	fieldProblem(t, validateMember(&bad), "phone")

	bad = m
	bad.Status = "gone"
	fieldProblem(t, validateMember(&bad), "status")

	bad = m
	bad.Gender = "unknown"
	fieldProblem(t, validateMember(&bad), "gender")

	bad = m
	future := models.Today().AddDays(1)
	bad.DateOfBirth = &future
	fieldProblem(t, validateMember(&bad), "date_of_birth")

	// A birth date of today is fine.
	ok := m
	today := models.Today()
	ok.DateOfBirth = &today
	if err := validateMember(&ok); err != nil {
		t.Fatalf("today's date rejected: %v", err)
	}
}

func decodeUpdate(t *testing.T, raw string) UpdateInput {
	t.Helper()
	var upd UpdateInput
	if err := json.Unmarshal([]byte(raw), &upd); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return upd
}

func TestValidateUpdate(t *testing.T) {
	if err := validateUpdate(decodeUpdate(t, `{"first_name":"Jane"}`)); err != nil {
		t.Fatalf("valid update rejected: %v", err)
	}

	fieldProblem(t, validateUpdate(decodeUpdate(t, `{"first_name":null}`)), "first_name")
	fieldProblem(t, validateUpdate(decodeUpdate(t, `{"phone":null}`)), "phone")
	fieldProblem(t, validateUpdate(decodeUpdate(t, `{"phone":"123"}`)), "phone")
	fieldProblem(t, validateUpdate(decodeUpdate(t, `{"status":"gone"}`)), "status")

	future := models.Today().AddDays(30)
	fieldProblem(t, validateUpdate(decodeUpdate(t, `{"baptism_date":"`+future.String()+`"}`)), "baptism_date")
}

func TestBuildSetPatchSemantics(t *testing.T) {
	s := &Service{sanitize: bluemonday.UGCPolicy()}
	upd := decodeUpdate(t, `{"first_name":"Ana","email":null,"city":"Austin"}`)

	set := s.buildSet(upd)

	if set["first_name"] != "Ana" {
		t.Errorf("first_name = %v", set["first_name"])
	}
	// The folded column rides along with a name change.
	if set["first_name_ci"] != "ana" {
		t.Errorf("first_name_ci = %v", set["first_name_ci"])
	}
	// Explicit null overwrites.
	if v, ok := set["email"]; !ok || v != nil {
		t.Errorf("email = %v (present=%v), want stored nil", v, ok)
	}
	if set["city"] != "Austin" {
		t.Errorf("city = %v", set["city"])
	}
	// Absent fields never appear in the patch.
	if _, ok := set["phone"]; ok {
		t.Errorf("phone should be absent")
	}
	if _, ok := set["last_name"]; ok {
		t.Errorf("last_name should be absent")
	}
}

func TestBuildSetSanitizesNotes(t *testing.T) {
	s := &Service{sanitize: bluemonday.UGCPolicy()}
	upd := decodeUpdate(t, `{"notes":[{"note":"<script>alert(1)</script>prayed together"}]}`)

	set := s.buildSet(upd)
	notes, ok := set["notes"].([]models.MemberNote)
	if !ok || len(notes) != 1 {
		t.Fatalf("notes = %#v", set["notes"])
	}
	if notes[0].Note != "prayed together" {
		t.Errorf("note = %q, want script stripped", notes[0].Note)
	}
	if notes[0].CreatedAt.IsZero() {
		t.Errorf("note created_at not stamped")
	}
	if time.Since(notes[0].CreatedAt) > time.Minute {
		t.Errorf("note created_at too old: %v", notes[0].CreatedAt)
	}
}
