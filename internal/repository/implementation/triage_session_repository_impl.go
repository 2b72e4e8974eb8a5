package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/mapper"
	"luni-triage-be/internal/model"
	"luni-triage-be/internal/repository/contract"
)

// TriageSessionRepositoryImpl is the durable session store for
// authenticated owners. It satisfies the same contract as the guest
// stores so the conversation engine is indifferent to the backing medium.
type TriageSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TriageMapper
}

func NewTriageSessionRepository(db *gorm.DB) contract.TriageSessionRepository {
	return &TriageSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewTriageMapper(),
	}
}

func (r *TriageSessionRepositoryImpl) Save(ctx context.Context, session *entity.TriageSession) error {
	row, err := r.mapper.SessionToModel(session)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *TriageSessionRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.TriageSession, error) {
	var row model.TriageSession
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&row)
}

func (r *TriageSessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TriageSession{}, "id = ?", id).Error
}
