package dto

import "github.com/google/uuid"

// RefreshAssessmentMessage rides the in-process bus from the conversation
// engine to the assessment consumer. It carries the scope so the consumer
// loads the session from the right store.
type RefreshAssessmentMessage struct {
	SessionId       uuid.UUID  `json:"session_id"`
	UserId          *uuid.UUID `json:"user_id,omitempty"`
	GuestId         string     `json:"guest_id,omitempty"`
	RefreshSeverity bool       `json:"refresh_severity"`
	RefreshNote     bool       `json:"refresh_note"`
}
