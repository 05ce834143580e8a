package domain

import (
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "plain", in: "2030-03-05", want: Date{2030, time.March, 5}},
		{name: "surrounding space", in: " 2030-03-05 ", want: Date{2030, time.March, 5}},
		{name: "leap day", in: "2028-02-29", want: Date{2028, time.February, 29}},
		{name: "no leap day", in: "2029-02-29", wantErr: true},
		{name: "day out of range", in: "2030-02-30", wantErr: true},
		{name: "wrong layout", in: "05/03/2030", wantErr: true},
		{name: "with time", in: "2030-03-05T10:00:00Z", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAddYearsClampsLeapDay(t *testing.T) {
	tests := []struct {
		from Date
		n    int
		want Date
	}{
		{Date{2028, time.February, 29}, 1, Date{2029, time.February, 28}},
		{Date{2028, time.February, 29}, 4, Date{2032, time.February, 29}},
		{Date{2030, time.March, 4}, 1, Date{2031, time.March, 4}},
		{Date{2030, time.December, 31}, 1, Date{2031, time.December, 31}},
	}
	for _, tt := range tests {
		if got := tt.from.AddYears(tt.n); got != tt.want {
			t.Fatalf("%v.AddYears(%d) = %v, want %v", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestWeekend(t *testing.T) {
	for day, want := range map[int]bool{4: false, 8: false, 9: true, 10: true} {
		d := Date{2030, time.March, day}
		if got := d.IsWeekend(); got != want {
			t.Fatalf("%v (%v).IsWeekend() = %v, want %v", d, d.Weekday(), got, want)
		}
	}
}

func TestDateOfUsesOwnLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	instant := time.Date(2030, 3, 4, 20, 0, 0, 0, time.UTC)

	if got := DateOf(instant); got != (Date{2030, time.March, 4}) {
		t.Fatalf("DateOf(utc) = %v", got)
	}
	if got := DateOf(instant.In(tokyo)); got != (Date{2030, time.March, 5}) {
		t.Fatalf("DateOf(jst) = %v", got)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2030, 3, 5, 0, 0, 0, 0, time.UTC)); err != nil || d != (Date{2030, time.March, 5}) {
		t.Fatalf("Scan(time.Time) = %v, %v", d, err)
	}
	if err := d.Scan([]byte("2030-03-06")); err != nil || d != (Date{2030, time.March, 6}) {
		t.Fatalf("Scan([]byte) = %v, %v", d, err)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Fatalf("Scan(nil) = %v, %v", d, err)
	}
	if err := d.Scan(42); err == nil || !strings.Contains(err.Error(), "unsupported type") {
		t.Fatalf("Scan(int) error = %v, want unsupported type", err)
	}
}

func TestSlotOrdering(t *testing.T) {
	a := Slot{Date: Date{2030, time.March, 5}, Hour: 16}
	b := Slot{Date: Date{2030, time.March, 6}, Hour: 9}
	c := Slot{Date: Date{2030, time.March, 6}, Hour: 10}

	if a.Compare(b) >= 0 || b.Compare(c) >= 0 || c.Compare(a) <= 0 || b.Compare(b) != 0 {
		t.Fatalf("slot order wrong: %v %v %v", a, b, c)
	}
	if got := b.String(); got != "2030-03-06 09:00" {
		t.Fatalf("Slot.String() = %q", got)
	}
	if got := (Appointment{Hour: 9}).FormattedTime(); got != "09:00" {
		t.Fatalf("FormattedTime() = %q, want 09:00", got)
	}
}
