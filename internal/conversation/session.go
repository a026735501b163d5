package conversation

import (
	"time"

	"vestnik/internal/submission"
)

// Stage identifies where in the dialogue a user currently is.
type Stage int

const (
	// StageTypeSelect waits for the submission type choice.
	StageTypeSelect Stage = iota
	// StageSenderName collects who congratulates.
	StageSenderName
	// StageRecipientName collects who is congratulated.
	StageRecipientName
	// StageHolidayChoice offers holiday templates or a custom text.
	StageHolidayChoice
	// StageCustomText collects a custom congratulation text.
	StageCustomText
	// StageDateInput collects the congratulation publish date.
	StageDateInput
	// StageSubtypeSelect waits for the announcement subtype choice.
	StageSubtypeSelect
	// StagePlainText collects announcement or news text.
	StagePlainText
	// StageCensorApproval waits for the user to accept or redo
	// filter-masked text.
	StageCensorApproval
)

func (s Stage) String() string {
	switch s {
	case StageTypeSelect:
		return "type_select"
	case StageSenderName:
		return "sender_name"
	case StageRecipientName:
		return "recipient_name"
	case StageHolidayChoice:
		return "holiday_choice"
	case StageCustomText:
		return "custom_text"
	case StageDateInput:
		return "date_input"
	case StageSubtypeSelect:
		return "subtype_select"
	case StagePlainText:
		return "plain_text"
	case StageCensorApproval:
		return "censor_approval"
	}
	return "unknown"
}

// Session is the in-memory dialogue state of one user. Sessions live
// until completion, cancellation or overwrite by a new /start.
type Session struct {
	UserID   int64
	ChatID   int64
	Username string

	Stage   Stage
	Type    submission.Type
	Subtype submission.Subtype

	FromName string
	ToName   string

	// CongratTag is the holiday name for template congratulations.
	CongratTag string

	// Text is the accepted content; CensoredText holds the masked
	// variant awaiting the user's decision in StageCensorApproval.
	Text         string
	CensoredText string

	PublishDate time.Time
}
