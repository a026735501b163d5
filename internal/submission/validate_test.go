package submission

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"simple", "Мария", "Мария", nil},
		{"trimmed", "  Иван  ", "Иван", nil},
		{"double name with space", "Анна Мария", "Анна Мария", nil},
		{"hyphenated", "Анна-Мария", "Анна-Мария", nil},
		{"min length", "Ян", "Ян", nil},
		{"yo letter", "Пётр", "Пётр", nil},
		{"too short", "Я", "", ErrNameLength},
		{"too short after trim", "  Я  ", "", ErrNameLength},
		{"too long", strings.Repeat("а", 51), "", ErrNameLength},
		{"max length ok", strings.Repeat("а", 50), strings.Repeat("а", 50), nil},
		{"latin rejected", "Maria", "", ErrNameCharset},
		{"mixed rejected", "Мaria", "", ErrNameCharset},
		{"digits rejected", "Иван2", "", ErrNameCharset},
		{"punctuation rejected", "Иван!", "", ErrNameCharset},
		{"leading hyphen", "-Иван", "", ErrNameHyphen},
		{"trailing hyphen", "Иван-", "", ErrNameHyphen},
		{"double hyphen", "Анна--Мария", "", ErrNameHyphen},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ValidateName(tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidateName(%q) err = %v, want %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("ValidateName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidateText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		typ     Type
		in      string
		wantErr error
	}{
		{"congrat within limit", TypeCongrat, strings.Repeat("а", 500), nil},
		{"congrat over limit", TypeCongrat, strings.Repeat("а", 501), ErrTextTooLong},
		{"announcement within limit", TypeAnnouncement, strings.Repeat("а", 300), nil},
		{"announcement over limit", TypeAnnouncement, strings.Repeat("а", 301), ErrTextTooLong},
		{"news over limit", TypeNews, strings.Repeat("а", 301), ErrTextTooLong},
		{"empty", TypeNews, "   ", ErrTextEmpty},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ValidateText(tc.typ, tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidateText err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestParsePublishDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name    string
		in      string
		want    time.Time
		wantErr error
	}{
		{"today literal ru", "сегодня", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), nil},
		{"today literal en", "Today", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), nil},
		{"dotted", "15.03.2025", time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), nil},
		{"dashed", "15-03-2025", time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), nil},
		{"same day", "10.03.2025", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), nil},
		{"past", "09.03.2025", time.Time{}, ErrDatePast},
		{"garbage", "tomorrow", time.Time{}, ErrDateFormat},
		{"iso rejected", "2025-03-15", time.Time{}, ErrDateFormat},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePublishDate(tc.in, now)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ParsePublishDate(%q) err = %v, want %v", tc.in, err, tc.wantErr)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParsePublishDate(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestEligibleAt(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	today := time.Date(2025, time.June, 1, 12, 0, 0, 0, loc)

	cases := []struct {
		name string
		date time.Time
		want bool
	}{
		{"past date", time.Date(2025, time.May, 20, 0, 0, 0, 0, loc), true},
		{"same day", time.Date(2025, time.June, 1, 0, 0, 0, 0, loc), true},
		{"future date", time.Date(2025, time.June, 2, 0, 0, 0, 0, loc), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := &Submission{PublishDate: tc.date}
			if got := s.EligibleAt(today); got != tc.want {
				t.Fatalf("EligibleAt = %v, want %v", got, tc.want)
			}
		})
	}
}
