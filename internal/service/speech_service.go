package service

import (
	"context"
	"errors"

	"luni-triage-be/internal/pkg/logger"
)

var ErrSpeechNotConfigured = errors.New("speech synthesis is not configured")

// SpeechSynthesizer is the text-to-speech collaborator boundary.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type ISpeechService interface {
	// Synthesize converts assistant text to MP3 audio bytes.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type speechService struct {
	synthesizer SpeechSynthesizer
	logger      logger.ILogger
}

func NewSpeechService(synthesizer SpeechSynthesizer, log logger.ILogger) ISpeechService {
	return &speechService{
		synthesizer: synthesizer,
		logger:      log,
	}
}

func (s *speechService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.synthesizer == nil {
		return nil, ErrSpeechNotConfigured
	}

	audio, err := s.synthesizer.Synthesize(ctx, text)
	if err != nil {
		s.logger.Error("SpeechService", "Synthesis failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return audio, nil
}
