package eventsvc

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/flocklabs/flockhub/internal/app/service/validation"
	"github.com/flocklabs/flockhub/internal/domain/models"
)

func decodeUpdate(t *testing.T, raw string) UpdateInput {
	t.Helper()
	var upd UpdateInput
	if err := json.Unmarshal([]byte(raw), &upd); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return upd
}

func TestApplyUpdateMerge(t *testing.T) {
	end := models.NewDate(2025, time.June, 3)
	e := models.Event{
		Title:     "Retreat",
		StartDate: models.NewDate(2025, time.June, 1),
		EndDate:   &end,
		StartTime: "09:00",
		EndTime:   "17:00",
		Color:     "#1A2B3C",
	}

	upd := decodeUpdate(t, `{"title":"Summer Retreat","end_date":null,"end_time":null}`)
	merged := applyUpdate(e, upd)

	if merged.Title != "Summer Retreat" {
		t.Errorf("title = %q", merged.Title)
	}
	if merged.EndDate != nil {
		t.Errorf("end_date not cleared")
	}
	if merged.EndTime != "" {
		t.Errorf("end_time not cleared")
	}
	// Untouched fields survive.
	if merged.StartTime != "09:00" || merged.Color != "#1A2B3C" {
		t.Errorf("unrelated fields changed: %+v", merged)
	}
}

func TestUpdateCannotInvalidateEvent(t *testing.T) {
	e := models.Event{
		Title:     "Concert",
		StartDate: models.NewDate(2025, time.June, 10),
	}
	// Moving the end date before the unchanged start date must fail the
	// merged validation.
	upd := decodeUpdate(t, `{"end_date":"2025-06-01"}`)
	merged := applyUpdate(e, upd)

	err := fieldError(merged.Validate())
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["end_date"]; !ok {
		t.Fatalf("wrong field: %v", verr.Fields)
	}
}

func TestFieldErrorMapping(t *testing.T) {
	cases := []struct {
		err   error
		field string
	}{
		{models.ErrTitleRequired, "title"},
		{models.ErrEndBeforeStart, "end_date"},
		{models.ErrEndTimeNotAfter, "end_time"},
		{models.ErrBadColor, "color"},
		{models.ErrBadClockTime, "start_time"},
	}
	for _, tc := range cases {
		err := fieldError(tc.err)
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("%v: expected validation error, got %v", tc.err, err)
		}
		if _, ok := verr.Fields[tc.field]; !ok {
			t.Errorf("%v mapped to %v, want field %q", tc.err, verr.Fields, tc.field)
		}
	}
	if fieldError(nil) != nil {
		t.Fatal("nil should stay nil")
	}
}
