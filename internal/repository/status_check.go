package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vijay-1103/transmittal-craft/internal/models"
)

// StatusCheckRepository stores client liveness pings
type StatusCheckRepository struct {
	db *gorm.DB
}

// NewStatusCheckRepository constructs a repository over an open gorm handle
func NewStatusCheckRepository(db *gorm.DB) *StatusCheckRepository {
	return &StatusCheckRepository{db: db}
}

// Create inserts a status check
func (r *StatusCheckRepository) Create(ctx context.Context, check *models.StatusCheck) error {
	if err := r.db.WithContext(ctx).Create(check).Error; err != nil {
		return fmt.Errorf("insert status check: %w", err)
	}
	return nil
}

// Recent returns up to limit status checks, newest first
func (r *StatusCheckRepository) Recent(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	checks := []models.StatusCheck{}
	if err := r.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&checks).Error; err != nil {
		return nil, fmt.Errorf("list status checks: %w", err)
	}
	return checks, nil
}
