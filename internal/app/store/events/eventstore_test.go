package eventstore

import (
	"testing"
	"time"

	"github.com/flocklabs/flockhub/internal/domain/models"
)

func TestWeekWindow(t *testing.T) {
	tests := []struct {
		name      string
		day       models.Date
		wantStart string
		wantEnd   string
	}{
		{"wednesday", models.NewDate(2025, time.June, 4), "2025-06-02", "2025-06-08"},
		{"monday", models.NewDate(2025, time.June, 2), "2025-06-02", "2025-06-08"},
		{"sunday", models.NewDate(2025, time.June, 8), "2025-06-02", "2025-06-08"},
		{"across month boundary", models.NewDate(2025, time.July, 1), "2025-06-30", "2025-07-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := weekWindow(tt.day)
			if start.String() != tt.wantStart || end.String() != tt.wantEnd {
				t.Errorf("weekWindow(%s) = %s..%s, want %s..%s",
					tt.day, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name      string
		day       models.Date
		wantStart string
		wantEnd   string
	}{
		{"mid month", models.NewDate(2025, time.June, 15), "2025-06-01", "2025-06-30"},
		{"december rollover", models.NewDate(2025, time.December, 31), "2025-12-01", "2025-12-31"},
		{"february leap", models.NewDate(2024, time.February, 10), "2024-02-01", "2024-02-29"},
		{"february non-leap", models.NewDate(2025, time.February, 10), "2025-02-01", "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := monthWindow(tt.day)
			if start.String() != tt.wantStart || end.String() != tt.wantEnd {
				t.Errorf("monthWindow(%s) = %s..%s, want %s..%s",
					tt.day, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
