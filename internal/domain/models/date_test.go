package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1990-05-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Time.Year() != 1990 || d.Time.Month() != time.May || d.Time.Day() != 15 {
		t.Fatalf("got %v", d.Time)
	}

	for _, bad := range []string{"1990-5-15", "15/05/1990", "1990-13-01", "not a date", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q): expected error", bad)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.February, 29)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-02-29"` {
		t.Fatalf("got %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
}

func TestDateComparisons(t *testing.T) {
	a := NewDate(2025, time.January, 1)
	b := NewDate(2025, time.January, 2)
	if !a.Before(b) || b.Before(a) {
		t.Fatal("Before ordering wrong")
	}
	if !b.After(a) {
		t.Fatal("After ordering wrong")
	}
	if !a.AddDays(1).Equal(b) {
		t.Fatal("AddDays wrong")
	}
}

func TestValidClockTime(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	for _, s := range valid {
		if !ValidClockTime(s) {
			t.Errorf("ValidClockTime(%q) = false, want true", s)
		}
	}
	invalid := []string{"24:00", "12:60", "9:30", "1230", "12-30", "ab:cd", ""}
	for _, s := range invalid {
		if ValidClockTime(s) {
			t.Errorf("ValidClockTime(%q) = true, want false", s)
		}
	}
}

func TestClockTimeStringOrdering(t *testing.T) {
	// Lexical comparison must match chronological order for HH:MM.
	if !("09:30" < "10:00") || !("10:00" < "10:01") {
		t.Fatal("clock times do not order lexically")
	}
}
