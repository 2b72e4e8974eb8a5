package mapper

import (
	"encoding/json"
	"time"

	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/model"
)

type TriageMapper struct{}

func NewTriageMapper() *TriageMapper {
	return &TriageMapper{}
}

func (m *TriageMapper) SessionToModel(e *entity.TriageSession) (*model.TriageSession, error) {
	messages, err := json.Marshal(e.Messages)
	if err != nil {
		return nil, err
	}

	row := &model.TriageSession{
		Id:          e.Id,
		SessionName: e.SessionName,
		PetName:     e.PetName,
		Region:      e.Region,
		Messages:    messages,
		Severity:    string(e.Severity),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.UserId != nil {
		row.UserId = *e.UserId
	}
	if e.SoapNote != nil {
		note, err := json.Marshal(e.SoapNote)
		if err != nil {
			return nil, err
		}
		row.SoapNote = note
	}
	return row, nil
}

func (m *TriageMapper) SessionToEntity(row *model.TriageSession) (*entity.TriageSession, error) {
	messages := []entity.ChatMessage{}
	if len(row.Messages) > 0 {
		if err := json.Unmarshal(row.Messages, &messages); err != nil {
			return nil, err
		}
	}

	userId := row.UserId
	e := &entity.TriageSession{
		Id:          row.Id,
		UserId:      &userId,
		SessionName: row.SessionName,
		PetName:     row.PetName,
		Region:      row.Region,
		Messages:    messages,
		Severity:    entity.Severity(row.Severity),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.SoapNote) > 0 {
		var note entity.SOAPNote
		if err := json.Unmarshal(row.SoapNote, &note); err != nil {
			return nil, err
		}
		e.SoapNote = &note
	}
	return e, nil
}

func (m *TriageMapper) UserToModel(e *entity.User) *model.User {
	return &model.User{
		Id:           e.Id,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		FullName:     e.FullName,
		CreatedAt:    e.CreatedAt,
	}
}

func (m *TriageMapper) UserToEntity(row *model.User) *entity.User {
	updatedAt := row.UpdatedAt
	var updated *time.Time
	if !updatedAt.IsZero() {
		updated = &updatedAt
	}
	return &entity.User{
		Id:           row.Id,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		FullName:     row.FullName,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    updated,
	}
}
