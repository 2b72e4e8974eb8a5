package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"luni-triage-be/internal/constant"
	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/pkg/logger"
	"luni-triage-be/pkg/llm"
)

// FallbackSOAPNote is substituted whenever note synthesis fails or returns
// something unparseable. The note field is always set whole, never partially.
var FallbackSOAPNote = entity.SOAPNote{
	Subjective: "Unable to generate subjective assessment",
	Objective:  "Unable to generate objective assessment",
	Assessment: "Unable to generate assessment",
	Plan:       "Recommend consulting with a veterinarian",
	Severity:   entity.SeverityMedium,
}

// IAssessmentService re-derives severity and the SOAP note from the full
// conversation. Both refreshes swallow collaborator failures: severity
// keeps its previous value, the note degrades to the fixed fallback.
type IAssessmentService interface {
	RefreshSeverity(ctx context.Context, session *entity.TriageSession)
	RefreshNote(ctx context.Context, session *entity.TriageSession)
}

type assessmentService struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewAssessmentService(llmProvider llm.LLMProvider, log logger.ILogger) IAssessmentService {
	return &assessmentService{
		llmProvider: llmProvider,
		logger:      log,
	}
}

func (s *assessmentService) RefreshSeverity(ctx context.Context, session *entity.TriageSession) {
	prompt := constant.SeverityPrompt(transcript(session.Messages))

	raw, err := s.llmProvider.Generate(ctx, prompt,
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(10),
	)
	if err != nil {
		// Keep the previous value untouched; this path never raises.
		s.logger.Warn("AssessmentService", "Severity classification failed", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return
	}

	session.Severity = CoerceSeverity(raw)
}

func (s *assessmentService) RefreshNote(ctx context.Context, session *entity.TriageSession) {
	prompt := constant.SOAPPrompt(session.PetName, transcript(session.Messages))

	raw, err := s.llmProvider.Generate(ctx, prompt,
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(600),
	)
	if err != nil {
		s.logger.Warn("AssessmentService", "Note synthesis failed, using fallback", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		note := FallbackSOAPNote
		session.SoapNote = &note
		return
	}

	note, err := ParseSOAPNote(raw)
	if err != nil {
		s.logger.Warn("AssessmentService", "Note output unparseable, using fallback", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		note = FallbackSOAPNote
	}
	session.SoapNote = &note
}

// CoerceSeverity trims and lowercases the collaborator token; anything
// outside the four defined values becomes medium.
func CoerceSeverity(raw string) entity.Severity {
	severity := entity.Severity(strings.ToLower(strings.TrimSpace(raw)))
	if !severity.Valid() {
		return entity.SeverityMedium
	}
	return severity
}

// ParseSOAPNote expects a four-field JSON object plus a severity snapshot.
// Models occasionally wrap the object in prose or code fences, so the
// parse retries on the outermost brace pair before giving up.
func ParseSOAPNote(raw string) (entity.SOAPNote, error) {
	var note entity.SOAPNote
	if err := json.Unmarshal([]byte(raw), &note); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return entity.SOAPNote{}, fmt.Errorf("no JSON object in output")
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &note); err != nil {
			return entity.SOAPNote{}, fmt.Errorf("malformed note payload: %w", err)
		}
	}

	if note.Subjective == "" || note.Objective == "" || note.Assessment == "" || note.Plan == "" {
		return entity.SOAPNote{}, fmt.Errorf("incomplete note payload")
	}
	note.Severity = CoerceSeverity(string(note.Severity))
	return note, nil
}

func transcript(messages []entity.ChatMessage) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}
