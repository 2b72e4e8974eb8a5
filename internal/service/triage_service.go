package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"luni-triage-be/internal/constant"
	"luni-triage-be/internal/dto"
	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/pkg/logger"
	"luni-triage-be/internal/repository/contract"
	"luni-triage-be/pkg/llm"
)

var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrEmptyMessage          = errors.New("message requires text or an image")
	ErrImageUploadFailed     = errors.New("image upload failed")
	ErrReplyGenerationFailed = errors.New("failed to generate reply")
	ErrImageTooLarge         = errors.New("image exceeds the upload size limit")
)

// Message-count thresholds at which the refresh policies fire. Both count
// the total sequence after the assistant reply lands.
const (
	SeverityRefreshThreshold = 4
	NoteRefreshThreshold     = 6
)

// MediaUploader is the external media collaborator boundary.
type MediaUploader interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}

// ITriageService is the conversation engine: it owns the session state
// machine (setup -> active -> awaiting reply) and decides when the
// assessment policies are triggered.
type ITriageService interface {
	StartSession(ctx context.Context, scope entity.Scope, req *dto.StartSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, scope entity.Scope, sessionId uuid.UUID) (*dto.SessionResponse, error)
	SendMessage(ctx context.Context, scope entity.Scope, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	ClearSession(ctx context.Context, scope entity.Scope, sessionId uuid.UUID) error
}

type triageService struct {
	guestSessions  contract.TriageSessionRepository
	userSessions   contract.TriageSessionRepository
	usageService   IUsageService
	llmProvider    llm.LLMProvider
	media          MediaUploader
	publisher      message.Publisher
	logger         logger.ILogger
	maxUploadBytes int
}

func NewTriageService(
	guestSessions contract.TriageSessionRepository,
	userSessions contract.TriageSessionRepository,
	usageService IUsageService,
	llmProvider llm.LLMProvider,
	media MediaUploader,
	publisher message.Publisher,
	log logger.ILogger,
	maxUploadBytes int,
) ITriageService {
	return &triageService{
		guestSessions:  guestSessions,
		userSessions:   userSessions,
		usageService:   usageService,
		llmProvider:    llmProvider,
		media:          media,
		publisher:      publisher,
		logger:         log,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *triageService) sessionRepo(scope entity.Scope) contract.TriageSessionRepository {
	if scope.IsGuest() {
		return s.guestSessions
	}
	return s.userSessions
}

func (s *triageService) StartSession(ctx context.Context, scope entity.Scope, req *dto.StartSessionRequest) (*dto.SessionResponse, error) {
	// Guests pass the quota gate before any state is touched. The gate is
	// a pure function of the normalized usage record.
	if scope.IsGuest() {
		usage, err := s.usageService.Read(ctx, scope.GuestId)
		if err != nil {
			return nil, err
		}
		if !usage.CanStartNewCase() {
			return nil, &dto.QuotaExceededError{
				Limit:      usage.AllowedCases(),
				Used:       usage.CasesUsed,
				ResetAfter: usage.LastReset.Add(entity.UsageResetWindow),
			}
		}
	}

	now := time.Now()
	session := &entity.TriageSession{
		Id:          uuid.New(),
		UserId:      scope.UserId,
		SessionName: fmt.Sprintf("%s - %s", req.PetName, now.Format("02/01/2006")),
		PetName:     req.PetName,
		Region:      req.Region,
		Messages:    []entity.ChatMessage{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.sessionRepo(scope).Save(ctx, session); err != nil {
		return nil, err
	}

	// Consumed once per successfully started session, never on resume.
	if scope.IsGuest() {
		if err := s.usageService.ConsumeCase(ctx, scope.GuestId); err != nil {
			return nil, err
		}
	}

	s.logger.Info("TriageService", "Session started", map[string]interface{}{
		"session_id": session.Id,
		"scope":      scope.Key(),
		"region":     session.Region,
	})

	return sessionToResponse(session), nil
}

func (s *triageService) GetSession(ctx context.Context, scope entity.Scope, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.loadOwnedSession(ctx, scope, sessionId)
	if err != nil {
		return nil, err
	}
	return sessionToResponse(session), nil
}

func (s *triageService) SendMessage(ctx context.Context, scope entity.Scope, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	if req.Content == "" && req.ImageData == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.loadOwnedSession(ctx, scope, sessionId)
	if err != nil {
		return nil, err
	}

	// The image goes to media storage before any AI call; a failed upload
	// aborts the whole send.
	imageURL := ""
	if req.ImageData != "" {
		imageURL, err = s.uploadImage(ctx, session.Id, req.ImageFilename, req.ImageData)
		if err != nil {
			return nil, err
		}
	}

	content := req.Content
	if content == "" {
		content = "[Image uploaded]"
	}

	userMsg := entity.ChatMessage{
		Id:        uuid.New(),
		Role:      entity.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
		ImageURL:  imageURL,
	}
	session.AppendMessage(userMsg)

	reply, replyErr := s.requestReply(ctx, session)

	var assistantMsg *entity.ChatMessage
	if replyErr == nil {
		msg := entity.ChatMessage{
			Id:        uuid.New(),
			Role:      entity.RoleAssistant,
			Content:   reply,
			Timestamp: time.Now(),
		}
		session.AppendMessage(msg)
		assistantMsg = &msg
	}

	// Persist regardless of the reply outcome so the user's own message
	// survives a collaborator failure.
	if err := s.sessionRepo(scope).Save(ctx, session); err != nil {
		return nil, err
	}

	if replyErr != nil {
		s.logger.Error("TriageService", "Reply generation failed", map[string]interface{}{
			"session_id": session.Id,
			"error":      replyErr.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrReplyGenerationFailed, replyErr)
	}

	s.scheduleRefreshes(scope, session)

	res := &dto.SendMessageResponse{
		SessionId: session.Id,
		Sent:      messageToResponse(&userMsg),
		Reply:     messageToResponse(assistantMsg),
	}
	return res, nil
}

func (s *triageService) ClearSession(ctx context.Context, scope entity.Scope, sessionId uuid.UUID) error {
	session, err := s.loadOwnedSession(ctx, scope, sessionId)
	if err != nil {
		return err
	}
	return s.sessionRepo(scope).Delete(ctx, session.Id)
}

// loadOwnedSession resolves a live session and enforces scope ownership:
// guests cannot read user sessions and vice versa.
func (s *triageService) loadOwnedSession(ctx context.Context, scope entity.Scope, sessionId uuid.UUID) (*entity.TriageSession, error) {
	session, err := s.sessionRepo(scope).FindById(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if !scope.IsGuest() {
		if session.UserId == nil || *session.UserId != *scope.UserId {
			return nil, ErrSessionNotFound
		}
	}
	return session, nil
}

func (s *triageService) uploadImage(ctx context.Context, sessionId uuid.UUID, filename, encoded string) (string, error) {
	if s.media == nil {
		return "", fmt.Errorf("%w: media storage not configured", ErrImageUploadFailed)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageUploadFailed, err)
	}
	if s.maxUploadBytes > 0 && len(data) > s.maxUploadBytes {
		return "", ErrImageTooLarge
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	objectName := fmt.Sprintf("%s_%d%s", sessionId, time.Now().UnixMilli(), ext)
	contentType := http.DetectContentType(data)

	url, err := s.media.Upload(ctx, objectName, contentType, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageUploadFailed, err)
	}
	return url, nil
}

func (s *triageService) requestReply(ctx context.Context, session *entity.TriageSession) (string, error) {
	history := make([]llm.Message, 0, len(session.Messages)+1)
	history = append(history, llm.Message{
		Role:    "system",
		Content: constant.TriageSystemPrompt(session.PetName, session.Region),
	})
	for _, m := range session.Messages {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	return s.llmProvider.Chat(ctx, history,
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(500),
	)
}

// scheduleRefreshes publishes the post-conditions of a successful send:
// severity from 4 total messages, the SOAP note from 6. Failures here
// never roll back the send.
func (s *triageService) scheduleRefreshes(scope entity.Scope, session *entity.TriageSession) {
	count := len(session.Messages)
	payload := dto.RefreshAssessmentMessage{
		SessionId:       session.Id,
		UserId:          scope.UserId,
		GuestId:         scope.GuestId,
		RefreshSeverity: count >= SeverityRefreshThreshold,
		RefreshNote:     count >= NoteRefreshThreshold,
	}
	if !payload.RefreshSeverity && !payload.RefreshNote {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := s.publisher.Publish(constant.TopicAssessmentRefresh, msg); err != nil {
		s.logger.Warn("TriageService", "Failed to schedule assessment refresh", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}
}

func sessionToResponse(session *entity.TriageSession) *dto.SessionResponse {
	messages := make([]dto.MessageResponse, 0, len(session.Messages))
	for i := range session.Messages {
		messages = append(messages, *messageToResponse(&session.Messages[i]))
	}
	return &dto.SessionResponse{
		Id:          session.Id,
		SessionName: session.SessionName,
		PetName:     session.PetName,
		Region:      session.Region,
		Messages:    messages,
		Severity:    string(session.Severity),
		SoapNote:    session.SoapNote,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
}

func messageToResponse(m *entity.ChatMessage) *dto.MessageResponse {
	if m == nil {
		return nil
	}
	return &dto.MessageResponse{
		Id:        m.Id,
		Role:      m.Role,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		ImageURL:  m.ImageURL,
	}
}
