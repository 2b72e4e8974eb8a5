package entity

import (
	"time"

	"github.com/google/uuid"
)

// Severity is the ordinal urgency classification attached to a conversation.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
	SeverityUrgent Severity = "urgent"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityUrgent:
		return true
	}
	return false
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Regions the triage assistant is allowed to operate in.
const (
	RegionNZ = "NZ"
	RegionAU = "AU"
	RegionUK = "UK"
)

func ValidRegion(region string) bool {
	return region == RegionNZ || region == RegionAU || region == RegionUK
}

// ChatMessage is immutable once appended to its session.
type ChatMessage struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	ImageURL  string    `json:"image_url,omitempty"`
	AudioURL  string    `json:"audio_url,omitempty"`
}

// SOAPNote is the four-section clinical summary plus a severity snapshot.
// It is regenerated wholesale on each refresh, never patched field by field.
type SOAPNote struct {
	Subjective string   `json:"subjective"`
	Objective  string   `json:"objective"`
	Assessment string   `json:"assessment"`
	Plan       string   `json:"plan"`
	Severity   Severity `json:"severity"`
}

type TriageSession struct {
	Id          uuid.UUID     `json:"id"`
	UserId      *uuid.UUID    `json:"user_id,omitempty"` // nil for guests
	SessionName string        `json:"session_name"`
	PetName     string        `json:"pet_name"`
	Region      string        `json:"region"`
	Messages    []ChatMessage `json:"messages"`
	Severity    Severity      `json:"severity,omitempty"`
	SoapNote    *SOAPNote     `json:"soap_note,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// GuestSessionTTL is the validity window for anonymous sessions, measured
// from creation.
const GuestSessionTTL = 24 * time.Hour

func (s *TriageSession) IsGuest() bool {
	return s.UserId == nil
}

// Expired reports whether a guest session has outlived its validity window.
// Authenticated sessions never expire.
func (s *TriageSession) Expired(now time.Time) bool {
	if !s.IsGuest() {
		return false
	}
	return now.Sub(s.CreatedAt) > GuestSessionTTL
}

func (s *TriageSession) AppendMessage(msg ChatMessage) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = msg.Timestamp
}
