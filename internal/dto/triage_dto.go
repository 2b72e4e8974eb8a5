package dto

import (
	"time"

	"github.com/google/uuid"

	"luni-triage-be/internal/entity"
)

type StartSessionRequest struct {
	PetName string `json:"pet_name" validate:"required"`
	Region  string `json:"region" validate:"required,oneof=NZ AU UK"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
	// Base64-encoded image payload; uploaded to media storage before the
	// AI call so the resulting URL rides on the user message.
	ImageData     string `json:"image_data,omitempty"`
	ImageFilename string `json:"image_filename,omitempty"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	ImageURL  string    `json:"image_url,omitempty"`
}

type SessionResponse struct {
	Id          uuid.UUID         `json:"id"`
	SessionName string            `json:"session_name"`
	PetName     string            `json:"pet_name"`
	Region      string            `json:"region"`
	Messages    []MessageResponse `json:"messages"`
	Severity    string            `json:"severity,omitempty"`
	SoapNote    *entity.SOAPNote  `json:"soap_note,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type SendMessageResponse struct {
	SessionId uuid.UUID        `json:"session_id"`
	Sent      *MessageResponse `json:"sent"`
	Reply     *MessageResponse `json:"reply,omitempty"`
}

type UsageResponse struct {
	CasesUsed    int       `json:"cases_used"`
	AllowedCases int       `json:"allowed_cases"`
	Unlimited    bool      `json:"unlimited"`
	CanStart     bool      `json:"can_start"`
	LastReset    time.Time `json:"last_reset"`
	Purchases    []string  `json:"purchases"`
}

// --- Quota Exceeded Error Types ---

// QuotaExceededError is a custom error that carries usage details so the
// client can render the purchase options.
type QuotaExceededError struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *QuotaExceededError) Error() string {
	return "daily triage case limit exceeded"
}

// QuotaExceededData is the data payload for 429 responses
type QuotaExceededData struct {
	Limit            int       `json:"limit"`
	Used             int       `json:"used"`
	ResetAfter       time.Time `json:"reset_after"`
	ShowModalPricing bool      `json:"show_modal_pricing"`
}

type QuotaExceededResponse struct {
	Success   bool              `json:"success"`
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	ErrorType string            `json:"error_type"`
	Data      QuotaExceededData `json:"data"`
}
