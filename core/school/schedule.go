package school

import (
	"strings"
	"time"
)

// ScheduleMonths is the school year's fixed payment sequence, anchored at the
// group's start date: entry i falls due i calendar months after it.
var ScheduleMonths = []string{"Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar", "Apr", "May", "Jun"}

type (
	ScheduleEntry struct {
		Month   string `json:"month"`
		DueDate Date   `json:"due_date"`
		Paid    bool   `json:"paid"`
	}

	// PaymentSchedule is a student's month-by-month payment view. HasUnpaid
	// drives the trailing warning row.
	PaymentSchedule struct {
		Generation uint64          `json:"generation"`
		Entries    []ScheduleEntry `json:"entries"`
		HasUnpaid  bool            `json:"has_unpaid"`
	}
)

// DefaultStartDate is September 1st of the current year, used when a group
// carries no start date.
func DefaultStartDate(today time.Time) time.Time {
	return time.Date(today.Year(), time.September, 1, 0, 0, 0, 0, today.Location())
}

// buildSchedule derives the visible schedule entries: one per month whose due
// date has been reached, classified Paid iff a payment record for (student,
// month) exists with a Paid status. Month labels compare case-insensitively.
func buildSchedule(start, today time.Time, payments []Payment, studentID string) ([]ScheduleEntry, bool) {
	entries := make([]ScheduleEntry, 0, len(ScheduleMonths))
	var hasUnpaid bool

	for i, month := range ScheduleMonths {
		dueDate := start.AddDate(0, i, 0)
		if dueDate.After(today) {
			continue
		}

		paid := false
		if p, ok := findPayment(payments, studentID, month); ok {
			paid = p.Status == PaymentPaid
		}
		if !paid {
			hasUnpaid = true
		}
		entries = append(entries, ScheduleEntry{Month: month, DueDate: Date{dueDate}, Paid: paid})
	}
	return entries, hasUnpaid
}

func findPayment(payments []Payment, studentID, month string) (Payment, bool) {
	for _, p := range payments {
		if len(p.StudentIDs) == 0 || p.StudentIDs[0] != studentID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(p.Month), month) {
			return p, true
		}
	}
	return Payment{}, false
}
