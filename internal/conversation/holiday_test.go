package conversation

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestHolidayActiveWindow(t *testing.T) {
	t.Parallel()

	newYear := Holidays[0]
	womensDay := Holidays[2]

	cases := []struct {
		name    string
		holiday Holiday
		today   time.Time
		want    bool
	}{
		{"new year on the day", newYear, date(2025, time.January, 1), true},
		{"new year window start", newYear, date(2024, time.December, 27), true},
		{"new year window end", newYear, date(2025, time.January, 6), true},
		{"new year before window", newYear, date(2024, time.December, 26), false},
		{"new year after window", newYear, date(2025, time.January, 7), false},
		{"march 8 in window", womensDay, date(2025, time.March, 3), true},
		{"march 8 out of window", womensDay, date(2025, time.June, 1), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.holiday.ActiveAt(tc.today); got != tc.want {
				t.Fatalf("ActiveAt(%v) = %v, want %v", tc.today, got, tc.want)
			}
		})
	}
}

func TestHolidayOccurrence(t *testing.T) {
	t.Parallel()

	newYear := Holidays[0]

	// In late December the upcoming January 1 is the occurrence.
	got, ok := newYear.Occurrence(date(2024, time.December, 28))
	if !ok {
		t.Fatal("expected active window")
	}
	if want := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("occurrence = %v, want %v", got, want)
	}

	// In early January the just-passed January 1 is the occurrence.
	got, ok = newYear.Occurrence(date(2025, time.January, 3))
	if !ok {
		t.Fatal("expected active window")
	}
	if want := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("occurrence = %v, want %v", got, want)
	}
}
