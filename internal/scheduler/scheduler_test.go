package scheduler

import (
	"testing"
	"time"

	"github.com/gaston-app/budget-service/internal/config"
	"github.com/gaston-app/budget-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func testScheduler(reminderDays int) *Scheduler {
	return New(nil, nil, logrus.New(), &config.Config{ReminderDays: reminderDays})
}

func TestNextDueDate(t *testing.T) {
	now := time.Date(2026, time.August, 10, 9, 0, 0, 0, time.UTC)
	debt := func(dueDay, arrears int, paid string) models.Debt {
		return models.Debt{
			Name:            "Loan",
			TotalAmount:     decimal.RequireFromString("1000000"),
			PaidAmount:      decimal.RequireFromString(paid),
			DueDay:          dueDay,
			MonthsInArrears: arrears,
		}
	}

	s := testScheduler(3)

	tests := []struct {
		name    string
		debt    models.Debt
		remind  bool
		wantDue string
	}{
		{"arrears always reminds", debt(0, 2, "0"), true, "2026-08-10"},
		{"due inside window", debt(12, 0, "0"), true, "2026-08-12"},
		{"due outside window", debt(25, 0, "0"), false, ""},
		{"no due day", debt(0, 0, "0"), false, ""},
		{"paid off debt skipped", debt(12, 0, "1000000"), false, ""},
		{"due day already passed rolls to next month", debt(9, 0, "0"), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, remind := s.nextDueDate(tt.debt, now)
			if remind != tt.remind {
				t.Fatalf("remind = %v, want %v", remind, tt.remind)
			}
			if remind && due.Format("2006-01-02") != tt.wantDue {
				t.Errorf("due = %s, want %s", due.Format("2006-01-02"), tt.wantDue)
			}
		})
	}
}

func TestNextDueDateClampsShortMonths(t *testing.T) {
	now := time.Date(2026, time.February, 26, 0, 0, 0, 0, time.UTC)
	s := testScheduler(5)

	due, remind := s.nextDueDate(models.Debt{
		Name:        "Rent loan",
		TotalAmount: decimal.RequireFromString("100"),
		DueDay:      31,
	}, now)
	if !remind {
		t.Fatal("day 31 clamped to Feb 28 should fall inside the window")
	}
	if got := due.Format("2006-01-02"); got != "2026-02-28" {
		t.Errorf("due = %s, want 2026-02-28", got)
	}
}
