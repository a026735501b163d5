// Package submission defines the submission entity and its validation
// rules: what users send, what moderators decide on, and what gets
// published to the channel.
package submission

import "time"

type Type string

const (
	TypeCongrat      Type = "congrat"
	TypeAnnouncement Type = "announcement"
	TypeNews         Type = "news"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCongrat, TypeAnnouncement, TypeNews:
		return true
	}
	return false
}

// Subtype refines announcements; empty for other types.
type Subtype string

const (
	SubtypeNone  Subtype = ""
	SubtypeRide  Subtype = "ride"
	SubtypeOffer Subtype = "offer"
	SubtypeLost  Subtype = "lost"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPublished Status = "published"
)

// Submission is one user request travelling through the
// pending -> approved/rejected -> published lifecycle.
type Submission struct {
	ID       int64
	UserID   int64
	Username string

	Type    Type
	Subtype Subtype

	// FromName/ToName are set for congratulations only.
	FromName string
	ToName   string

	// CongratTag holds the holiday name for template congratulations.
	CongratTag string

	Text   string
	Status Status

	// PublishDate is the earliest calendar day the post may go out
	// (date component only, in the bot's timezone).
	PublishDate time.Time

	CreatedAt   time.Time
	PublishedAt *time.Time
}

// EligibleAt reports whether the submission's publish date has arrived.
func (s *Submission) EligibleAt(today time.Time) bool {
	return !DateOnly(s.PublishDate).After(DateOnly(today))
}

// DateOnly truncates t to its calendar day, preserving the location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TypeLabel returns the user-facing Russian label for a type.
func TypeLabel(t Type) string {
	switch t {
	case TypeCongrat:
		return "🎉 Поздравление"
	case TypeAnnouncement:
		return "📢 Объявление"
	case TypeNews:
		return "🗞️ Новость"
	}
	return string(t)
}

// SubtypeLabel returns the user-facing Russian label for a subtype.
func SubtypeLabel(st Subtype) string {
	switch st {
	case SubtypeRide:
		return "🚗 Попутка"
	case SubtypeOffer:
		return "💼 Предложение"
	case SubtypeLost:
		return "🔍 Потеряшки"
	}
	return string(st)
}
