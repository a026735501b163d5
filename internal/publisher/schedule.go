// Package publisher posts approved submissions to the channel on a
// schedule and guards the exactly-once publication invariant.
package publisher

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// SpecKind describes the normalized kind of a schedule string.
type SpecKind int

const (
	SpecCron SpecKind = iota
	SpecInterval
)

// Spec is a parsed publish schedule.
//
// Supported forms:
//   - Cron (crontab.guru-style): "0 9 * * *", "@hourly", "@every 30m"
//   - Daily time HH:MM: "09:00" posts once a day at 09:00
//   - Interval duration: "30m", "2h30m"
//
// Optional prefixes:
//   - "cron:" forces cron parsing
//   - "every:" forces interval parsing
type Spec struct {
	Kind  SpecKind
	Cron  string
	Every time.Duration
}

var reDailyTime = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)

// ParseSchedule parses a publish schedule string.
func ParseSchedule(raw string) (Spec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Spec{}, fmt.Errorf("publish schedule required")
	}

	low := strings.ToLower(s)
	if strings.HasPrefix(low, "cron:") {
		expr := strings.TrimSpace(s[len("cron:"):])
		if expr == "" {
			return Spec{}, fmt.Errorf("cron expression required after 'cron:'")
		}
		return Spec{Kind: SpecCron, Cron: expr}, nil
	}
	if strings.HasPrefix(low, "every:") {
		d, err := time.ParseDuration(strings.TrimSpace(s[len("every:"):]))
		if err != nil || d <= 0 {
			return Spec{}, fmt.Errorf("invalid interval %q (use a Go duration like '30m')", raw)
		}
		return Spec{Kind: SpecInterval, Every: d}, nil
	}

	// Whitespace or a leading '@' can only be cron.
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		return Spec{Kind: SpecCron, Cron: s}, nil
	}

	// "09:00" means daily at that local time.
	if m := reDailyTime.FindStringSubmatch(s); m != nil {
		hh, mm := atoi2(m[1]), atoi2(m[2])
		if hh > 23 || mm > 59 {
			return Spec{}, fmt.Errorf("invalid daily time %q", raw)
		}
		return Spec{Kind: SpecCron, Cron: fmt.Sprintf("%d %d * * *", mm, hh)}, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return Spec{}, fmt.Errorf("interval must be > 0")
		}
		return Spec{Kind: SpecInterval, Every: d}, nil
	}

	return Spec{}, fmt.Errorf(
		"invalid schedule %q (use cron like '0 9 * * *', daily time like '09:00', or duration like '30m')",
		raw,
	)
}

func atoi2(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
