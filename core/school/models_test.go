package school

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{name: "plain date", in: "2025-01-15", want: date(2025, time.January, 15)},
		{name: "timestamp", in: "2025-01-15T10:30:00Z", want: time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)},
		{name: "empty reads as absent", in: ""},
		{name: "garbage reads as absent", in: "15/01/2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.in)
			if tt.want.IsZero() {
				if !got.IsZero() {
					t.Errorf("ParseDate(%q) = %v; want zero", tt.in, got.Time)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v; want %v", tt.in, got.Time, tt.want)
			}
		})
	}
}

func TestDate_Expired(t *testing.T) {
	now := date(2025, time.January, 15)

	if (Date{}).Expired(now) {
		t.Error("absent date must never expire")
	}
	if (Date{date(2025, time.January, 16)}).Expired(now) {
		t.Error("future date reported expired")
	}
	if (Date{now}).Expired(now) {
		t.Error("expiry must be strict")
	}

	// once expired, expired at every later instant
	d := Date{date(2025, time.January, 10)}
	for _, later := range []time.Time{now, now.AddDate(0, 1, 0), now.AddDate(1, 0, 0)} {
		if !d.Expired(later) {
			t.Errorf("expired date reported live at %v", later)
		}
	}
}

func TestDate_Display(t *testing.T) {
	if got := (Date{}).Display(); got != "-" {
		t.Errorf("Display() = %q; want \"-\"", got)
	}
	if got := (Date{date(2025, time.January, 15)}).Display(); got != "2025-01-15" {
		t.Errorf("Display() = %q; want \"2025-01-15\"", got)
	}
}

func TestDate_JSON(t *testing.T) {
	b, err := (Date{date(2025, time.January, 15)}).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() failed: %v", err)
	}
	if string(b) != `"2025-01-15"` {
		t.Errorf("MarshalJSON() = %s", b)
	}

	b, _ = (Date{}).MarshalJSON()
	if string(b) != "null" {
		t.Errorf("MarshalJSON() zero = %s; want null", b)
	}

	var d Date
	if err := d.UnmarshalJSON([]byte(`"2025-01-15"`)); err != nil {
		t.Fatalf("UnmarshalJSON() failed: %v", err)
	}
	if !d.Equal(date(2025, time.January, 15)) {
		t.Errorf("UnmarshalJSON() = %v", d.Time)
	}
	if err := d.UnmarshalJSON([]byte("null")); err != nil {
		t.Fatalf("UnmarshalJSON(null) failed: %v", err)
	}
	if !d.IsZero() {
		t.Error("UnmarshalJSON(null) must read as absent")
	}
}
