package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luni-triage-be/internal/constant"
	"luni-triage-be/internal/dto"
	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/repository/memory"
)

func publishTrigger(t *testing.T, bus *gochannel.GoChannel, payload dto.RefreshAssessmentMessage) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(constant.TopicAssessmentRefresh, message.NewMessage(watermill.NewUUID(), data)))
}

func TestConsumer_RefreshesSeverityAndPersists(t *testing.T) {
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	guestSessions := memory.NewTriageSessionRepository()
	provider := &stubLLM{generateOut: "high"}

	consumer := NewAssessmentConsumer(
		bus,
		guestSessions,
		memory.NewTriageSessionRepository(),
		NewAssessmentService(provider, nopLogger{}),
		nil,
		nil,
		nopLogger{},
	)
	require.NoError(t, consumer.Consume(context.Background()))

	session := sessionWithMessages(4)
	require.NoError(t, guestSessions.Save(context.Background(), session))

	publishTrigger(t, bus, dto.RefreshAssessmentMessage{
		SessionId:       session.Id,
		GuestId:         "device-1",
		RefreshSeverity: true,
	})

	require.Eventually(t, func() bool {
		loaded, err := guestSessions.FindById(context.Background(), session.Id)
		return err == nil && loaded != nil && loaded.Severity == entity.SeverityHigh
	}, 2*time.Second, 10*time.Millisecond)

	loaded, err := guestSessions.FindById(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Nil(t, loaded.SoapNote)
}

func TestConsumer_RefreshesNote(t *testing.T) {
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	guestSessions := memory.NewTriageSessionRepository()
	provider := &stubLLM{
		generateOut: `{"subjective":"s","objective":"o","assessment":"a","plan":"p","severity":"low"}`,
	}

	consumer := NewAssessmentConsumer(
		bus,
		guestSessions,
		memory.NewTriageSessionRepository(),
		NewAssessmentService(provider, nopLogger{}),
		nil,
		nil,
		nopLogger{},
	)
	require.NoError(t, consumer.Consume(context.Background()))

	session := sessionWithMessages(6)
	require.NoError(t, guestSessions.Save(context.Background(), session))

	publishTrigger(t, bus, dto.RefreshAssessmentMessage{
		SessionId:       session.Id,
		GuestId:         "device-1",
		RefreshSeverity: true,
		RefreshNote:     true,
	})

	require.Eventually(t, func() bool {
		loaded, err := guestSessions.FindById(context.Background(), session.Id)
		return err == nil && loaded != nil && loaded.SoapNote != nil
	}, 2*time.Second, 10*time.Millisecond)

	loaded, err := guestSessions.FindById(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Equal(t, "s", loaded.SoapNote.Subjective)
}

func TestConsumer_MissingSessionIsIgnored(t *testing.T) {
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	guestSessions := memory.NewTriageSessionRepository()
	provider := &stubLLM{generateOut: "high"}

	consumer := NewAssessmentConsumer(
		bus,
		guestSessions,
		memory.NewTriageSessionRepository(),
		NewAssessmentService(provider, nopLogger{}),
		nil,
		nil,
		nopLogger{},
	)
	require.NoError(t, consumer.Consume(context.Background()))

	publishTrigger(t, bus, dto.RefreshAssessmentMessage{
		SessionId:       uuid.New(),
		GuestId:         "device-1",
		RefreshSeverity: true,
	})

	// No session to classify against; the provider is never invoked.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, provider.generateCalls)
}
