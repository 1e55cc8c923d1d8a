package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/codementor-backend/internal/domain"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
)

type AICallLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logs []*domain.AICallLog) ([]*domain.AICallLog, error)
	ListByRequestID(ctx context.Context, tx *gorm.DB, requestID string) ([]*domain.AICallLog, error)
}

type aiCallLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAICallLogRepo(db *gorm.DB, baseLog *logger.Logger) AICallLogRepo {
	repoLog := baseLog.With("repo", "AICallLogRepo")
	return &aiCallLogRepo{db: db, log: repoLog}
}

func (r *aiCallLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*domain.AICallLog) ([]*domain.AICallLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(logs) == 0 {
		return []*domain.AICallLog{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *aiCallLogRepo) ListByRequestID(ctx context.Context, tx *gorm.DB, requestID string) ([]*domain.AICallLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.AICallLog
	if requestID == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
