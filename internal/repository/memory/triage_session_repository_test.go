package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luni-triage-be/internal/entity"
)

func newSession(createdAt time.Time) *entity.TriageSession {
	return &entity.TriageSession{
		Id:        uuid.New(),
		PetName:   "Milo",
		Region:    entity.RegionNZ,
		Messages:  []entity.ChatMessage{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := NewTriageSessionRepository()
	session := newSession(time.Now())

	require.NoError(t, repo.Save(context.Background(), session))

	loaded, err := repo.FindById(context.Background(), session.Id)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, session.Id, loaded.Id)
	assert.Equal(t, "Milo", loaded.PetName)
}

func TestSessionAliveJustInsideWindow(t *testing.T) {
	repo := NewTriageSessionRepository()
	session := newSession(time.Now().Add(-23*time.Hour - 59*time.Minute))

	require.NoError(t, repo.Save(context.Background(), session))

	loaded, err := repo.FindById(context.Background(), session.Id)
	require.NoError(t, err)
	assert.NotNil(t, loaded)
}

func TestSessionGoneAfterWindow(t *testing.T) {
	repo := NewTriageSessionRepository()
	session := newSession(time.Now().Add(-24*time.Hour - time.Minute))

	require.NoError(t, repo.Save(context.Background(), session))

	loaded, err := repo.FindById(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionUnknownIdReturnsNil(t *testing.T) {
	repo := NewTriageSessionRepository()

	loaded, err := repo.FindById(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionDelete(t *testing.T) {
	repo := NewTriageSessionRepository()
	session := newSession(time.Now())

	require.NoError(t, repo.Save(context.Background(), session))
	require.NoError(t, repo.Delete(context.Background(), session.Id))

	loaded, err := repo.FindById(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
