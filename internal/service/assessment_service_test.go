package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luni-triage-be/internal/entity"
)

func TestCoerceSeverity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want entity.Severity
	}{
		{name: "exact match", raw: "high", want: entity.SeverityHigh},
		{name: "uppercase", raw: "URGENT", want: entity.SeverityUrgent},
		{name: "surrounding whitespace", raw: "  low \n", want: entity.SeverityLow},
		{name: "mixed case with space", raw: " Medium ", want: entity.SeverityMedium},
		{name: "prose answer", raw: "The severity is high.", want: entity.SeverityMedium},
		{name: "empty", raw: "", want: entity.SeverityMedium},
		{name: "garbage", raw: "critical", want: entity.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceSeverity(tt.raw))
		})
	}
}

func TestParseSOAPNote(t *testing.T) {
	valid := `{"subjective":"Owner reports vomiting","objective":"Lethargic","assessment":"Possible gastritis","plan":"Vet visit within 24h","severity":"high"}`

	t.Run("clean JSON", func(t *testing.T) {
		note, err := ParseSOAPNote(valid)
		require.NoError(t, err)
		assert.Equal(t, "Owner reports vomiting", note.Subjective)
		assert.Equal(t, entity.SeverityHigh, note.Severity)
	})

	t.Run("JSON wrapped in prose", func(t *testing.T) {
		note, err := ParseSOAPNote("Here is the note:\n```json\n" + valid + "\n```\nLet me know!")
		require.NoError(t, err)
		assert.Equal(t, "Possible gastritis", note.Assessment)
	})

	t.Run("invalid severity coerced to medium", func(t *testing.T) {
		note, err := ParseSOAPNote(`{"subjective":"a","objective":"b","assessment":"c","plan":"d","severity":"catastrophic"}`)
		require.NoError(t, err)
		assert.Equal(t, entity.SeverityMedium, note.Severity)
	})

	t.Run("missing field rejected", func(t *testing.T) {
		_, err := ParseSOAPNote(`{"subjective":"a","objective":"b","assessment":"c"}`)
		assert.Error(t, err)
	})

	t.Run("no JSON at all", func(t *testing.T) {
		_, err := ParseSOAPNote("I could not produce a note")
		assert.Error(t, err)
	})
}

func sessionWithMessages(n int) *entity.TriageSession {
	s := &entity.TriageSession{
		Id:        uuid.New(),
		PetName:   "Milo",
		Region:    entity.RegionNZ,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for i := 0; i < n; i++ {
		role := entity.RoleUser
		if i%2 == 1 {
			role = entity.RoleAssistant
		}
		s.Messages = append(s.Messages, entity.ChatMessage{
			Id:        uuid.New(),
			Role:      role,
			Content:   "message",
			Timestamp: time.Now(),
		})
	}
	return s
}

func TestRefreshSeverity_SetsClassification(t *testing.T) {
	provider := &stubLLM{generateOut: "urgent"}
	svc := NewAssessmentService(provider, nopLogger{})

	session := sessionWithMessages(4)
	svc.RefreshSeverity(context.Background(), session)

	assert.Equal(t, entity.SeverityUrgent, session.Severity)
	assert.Equal(t, 1, provider.generateCalls)
}

func TestRefreshSeverity_KeepsPreviousOnError(t *testing.T) {
	provider := &stubLLM{generateErr: errBoom}
	svc := NewAssessmentService(provider, nopLogger{})

	session := sessionWithMessages(4)
	session.Severity = entity.SeverityHigh
	svc.RefreshSeverity(context.Background(), session)

	assert.Equal(t, entity.SeverityHigh, session.Severity)
}

func TestRefreshNote_FallbackOnProviderError(t *testing.T) {
	provider := &stubLLM{generateErr: errBoom}
	svc := NewAssessmentService(provider, nopLogger{})

	session := sessionWithMessages(6)
	svc.RefreshNote(context.Background(), session)

	require.NotNil(t, session.SoapNote)
	assert.Equal(t, FallbackSOAPNote, *session.SoapNote)
}

func TestRefreshNote_FallbackOnUnparseableOutput(t *testing.T) {
	provider := &stubLLM{generateOut: "this is not a note"}
	svc := NewAssessmentService(provider, nopLogger{})

	session := sessionWithMessages(6)
	svc.RefreshNote(context.Background(), session)

	require.NotNil(t, session.SoapNote)
	assert.Equal(t, FallbackSOAPNote, *session.SoapNote)
}

func TestRefreshNote_ReplacesWholeNote(t *testing.T) {
	provider := &stubLLM{generateOut: `{"subjective":"s","objective":"o","assessment":"a","plan":"p","severity":"low"}`}
	svc := NewAssessmentService(provider, nopLogger{})

	session := sessionWithMessages(6)
	old := FallbackSOAPNote
	session.SoapNote = &old
	svc.RefreshNote(context.Background(), session)

	require.NotNil(t, session.SoapNote)
	assert.Equal(t, "s", session.SoapNote.Subjective)
	assert.Equal(t, entity.SeverityLow, session.SoapNote.Severity)
}
