package submission

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	MinNameLen = 2
	MaxNameLen = 50

	// MaxCongratText applies to custom congratulation texts.
	MaxCongratText = 500
	// MaxPlainText applies to announcements and news.
	MaxPlainText = 300
	// MaxTextCeiling is the hard storage limit for any text.
	MaxTextCeiling = 4000
)

var (
	ErrNameLength  = errors.New("name must be 2-50 characters")
	ErrNameCharset = errors.New("name may contain only Cyrillic letters, spaces and hyphens")
	ErrNameHyphen  = errors.New("name may not start or end with a hyphen, or contain a double hyphen")

	ErrTextEmpty   = errors.New("text is empty")
	ErrTextTooLong = errors.New("text is too long")

	ErrDateFormat = errors.New("unrecognized date format")
	ErrDatePast   = errors.New("date is in the past")
)

// ValidateName checks a sender or recipient name after trimming:
// 2-50 runes of Cyrillic letters, spaces and hyphens, with no leading,
// trailing or doubled hyphen.
func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(name)
	if n < MinNameLen || n > MaxNameLen {
		return "", ErrNameLength
	}
	for _, r := range name {
		if r == ' ' || r == '-' {
			continue
		}
		if !unicode.Is(unicode.Cyrillic, r) || !unicode.IsLetter(r) {
			return "", ErrNameCharset
		}
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") || strings.Contains(name, "--") {
		return "", ErrNameHyphen
	}
	return name, nil
}

// MaxTextFor returns the per-type text limit.
func MaxTextFor(t Type) int {
	if t == TypeCongrat {
		return MaxCongratText
	}
	return MaxPlainText
}

// ValidateText trims the text and checks it against the per-type limit.
func ValidateText(t Type, raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrTextEmpty
	}
	if utf8.RuneCountInString(text) > MaxTextFor(t) {
		return "", ErrTextTooLong
	}
	return text, nil
}

var dateLayouts = []string{"02.01.2006", "02-01-2006"}

// ParsePublishDate parses a user-supplied publish date. Accepts
// DD.MM.YYYY, DD-MM-YYYY and the literals "сегодня"/"today".
// Dates before today are rejected.
func ParsePublishDate(raw string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	today := DateOnly(now)
	if s == "сегодня" || s == "today" {
		return today, nil
	}
	for _, layout := range dateLayouts {
		d, err := time.ParseInLocation(layout, s, now.Location())
		if err != nil {
			continue
		}
		if d.Before(today) {
			return time.Time{}, ErrDatePast
		}
		return d, nil
	}
	return time.Time{}, ErrDateFormat
}
