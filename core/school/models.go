package school

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/shakhna/portal/core"
)

// Display status labels.
const (
	StatusActive   = "Active"
	StatusOverdue  = "Overdue"
	StatusExpired  = "Expired"
	StatusUpcoming = "Upcoming"

	// TestResult records with this status count a student as done with a test.
	ResultCompleted = "Completed"

	// Payment records with this status mark a month as settled.
	PaymentPaid = "Paid"
)

type (
	// Attachment is one {url, filename} pair of a record's attachment list.
	Attachment struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	}

	// Group mirrors a record of the groups table. Students and homework hang
	// off it as linked record id lists, resolved by separate fetches.
	Group struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		StartDate   Date     `json:"start_date,omitempty"`
		StudentIDs  []string `json:"-"`
		HomeworkIDs []string `json:"-"`
	}

	Homework struct {
		ID          string       `json:"id"`
		Title       string       `json:"title"`
		Description null.String  `json:"description,omitempty"`
		DueDate     Date         `json:"due_date,omitempty"`
		Done        bool         `json:"done"`
		GroupIDs    []string     `json:"group_ids,omitempty"`
		Attachments []Attachment `json:"attachments"`
	}

	Payment struct {
		ID         string   `json:"id"`
		StudentIDs []string `json:"-"`
		Month      string   `json:"month"`
		Status     string   `json:"status"`
	}

	AssignedTest struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		GroupIDs []string `json:"group_ids,omitempty"`
		DueDate  Date     `json:"due_date,omitempty"`
		FileURL  string   `json:"file_url,omitempty"`
	}

	TestResult struct {
		ID         string   `json:"id"`
		TestIDs    []string `json:"-"`
		StudentIDs []string `json:"-"`
		Status     string   `json:"status"`
	}

	// StudentRef is the minimal student shape aggregated views need.
	StudentRef struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
)

// NewHomework contains information needed to create a homework record.
type NewHomework struct {
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description"`
	GroupID     string       `json:"group" validate:"required"`
	DueDate     string       `json:"due_date" validate:"required"`
	Attachments []Attachment `json:"attachments"`
}

func (nh *NewHomework) Validate(validate *validator.Validate) error {
	nh.Title = core.CleanString(nh.Title)
	nh.GroupID = core.CleanString(nh.GroupID)
	nh.DueDate = core.CleanString(nh.DueDate)
	return validate.Struct(nh)
}

// NewTest contains information needed to assign a test to a group.
type NewTest struct {
	Title   string `json:"title" validate:"required"`
	GroupID string `json:"group" validate:"required"`
	DueDate string `json:"due_date" validate:"required"`
	FileURL string `json:"file_url" validate:"required"`
}

func (nt *NewTest) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.GroupID = core.CleanString(nt.GroupID)
	nt.DueDate = core.CleanString(nt.DueDate)
	nt.FileURL = core.CleanString(nt.FileURL)
	return validate.Struct(nt)
}

// Date is a due/start date column value. The store emits either a plain date
// or a full timestamp; anything unparseable reads as absent (zero).
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func ParseDate(s string) Date {
	if s == "" {
		return Date{}
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date{t}
	}
	return Date{}
}

// Expired reports whether the date is present and strictly before now.
// An absent date never expires.
func (d Date) Expired(now time.Time) bool {
	return !d.IsZero() && d.Time.Before(now)
}

// Display renders the date for table cells; absent dates show as "-".
func (d Date) Display() string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || len(s) < 2 {
		*d = Date{}
		return nil
	}
	*d = ParseDate(s[1 : len(s)-1])
	return nil
}
