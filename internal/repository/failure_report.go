package repository

import (
	"context"

	"github.com/hikari-bot/backend/internal/entity"
	"gorm.io/gorm"
)

type FailureReportRepository interface {
	Create(ctx context.Context, report *entity.FailureReport) error
	GetByInteractionID(ctx context.Context, interactionID string) ([]entity.FailureReport, error)
	CountByKind(ctx context.Context, kind string) (int64, error)
}

type failureReportRepository struct {
	db *gorm.DB
}

func NewFailureReportRepository(db *gorm.DB) FailureReportRepository {
	return &failureReportRepository{db: db}
}

func (r *failureReportRepository) Create(ctx context.Context, report *entity.FailureReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *failureReportRepository) GetByInteractionID(
	ctx context.Context, interactionID string,
) ([]entity.FailureReport, error) {
	var records []entity.FailureReport
	err := r.db.WithContext(ctx).Where("interaction_id=?", interactionID).Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *failureReportRepository) CountByKind(ctx context.Context, kind string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.FailureReport{}).Where("kind=?", kind).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
