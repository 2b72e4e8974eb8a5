package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"luni-triage-be/internal/constant"
	"luni-triage-be/internal/dto"
	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/pkg/logger"
	"luni-triage-be/internal/repository/contract"
	"luni-triage-be/internal/websocket"
	"luni-triage-be/pkg/events"
	pkgNats "luni-triage-be/pkg/nats"
)

type IAssessmentConsumer interface {
	Consume(ctx context.Context) error
}

// assessmentConsumer drains refresh triggers off the in-process bus,
// re-derives the assessment, persists it, and pushes the result to any
// live connection for the scope.
type assessmentConsumer struct {
	pubSub            *gochannel.GoChannel
	guestSessions     contract.TriageSessionRepository
	userSessions      contract.TriageSessionRepository
	assessmentService IAssessmentService
	hub               *websocket.Hub
	eventPublisher    *pkgNats.Publisher
	logger            logger.ILogger
}

func NewAssessmentConsumer(
	pubSub *gochannel.GoChannel,
	guestSessions contract.TriageSessionRepository,
	userSessions contract.TriageSessionRepository,
	assessmentService IAssessmentService,
	hub *websocket.Hub,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IAssessmentConsumer {
	return &assessmentConsumer{
		pubSub:            pubSub,
		guestSessions:     guestSessions,
		userSessions:      userSessions,
		assessmentService: assessmentService,
		hub:               hub,
		eventPublisher:    eventPublisher,
		logger:            log,
	}
}

func (c *assessmentConsumer) Consume(ctx context.Context) error {
	messages, err := c.pubSub.Subscribe(ctx, constant.TopicAssessmentRefresh)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (c *assessmentConsumer) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RefreshAssessmentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.logger.Error("AssessmentConsumer", "Failed to unmarshal trigger", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed messages never become retriable
		return
	}

	scope := entity.GuestScope(payload.GuestId)
	repo := c.guestSessions
	if payload.UserId != nil {
		scope = entity.UserScope(*payload.UserId)
		repo = c.userSessions
	}

	session, err := repo.FindById(ctx, payload.SessionId)
	if err != nil {
		c.logger.Error("AssessmentConsumer", "Failed to load session", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}
	if session == nil {
		// Cleared or expired between trigger and processing.
		msg.Ack()
		return
	}

	previousSeverity := session.Severity

	if payload.RefreshSeverity {
		c.assessmentService.RefreshSeverity(ctx, session)
	}
	if payload.RefreshNote {
		c.assessmentService.RefreshNote(ctx, session)
	}

	if err := repo.Save(ctx, session); err != nil {
		c.logger.Error("AssessmentConsumer", "Failed to persist assessment", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	c.notify(scope, session)

	if session.Severity == entity.SeverityUrgent && previousSeverity != entity.SeverityUrgent {
		c.publishUrgent(ctx, session)
	}

	msg.Ack()
}

func (c *assessmentConsumer) notify(scope entity.Scope, session *entity.TriageSession) {
	if c.hub == nil {
		return
	}
	c.hub.Send(scope.Key(), "assessment_updated", map[string]interface{}{
		"session_id": session.Id,
		"severity":   session.Severity,
		"soap_note":  session.SoapNote,
	})
}

func (c *assessmentConsumer) publishUrgent(ctx context.Context, session *entity.TriageSession) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: events.TypeUrgentSeverity,
		Data: map[string]interface{}{
			"session_id":  session.Id,
			"pet_name":    session.PetName,
			"region":      session.Region,
			"occurred_at": time.Now(),
		},
		OccurredAt: time.Now(),
	}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("AssessmentConsumer", "Failed to publish urgent event", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}
}
