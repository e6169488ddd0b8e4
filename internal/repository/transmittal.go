package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vijay-1103/transmittal-craft/internal/models"
	"github.com/vijay-1103/transmittal-craft/internal/storage"
)

// TransmittalRepository stores transmittals in PostgreSQL through gorm
type TransmittalRepository struct {
	db *gorm.DB
}

// NewTransmittalRepository constructs a repository over an open gorm handle
func NewTransmittalRepository(db *gorm.DB) *TransmittalRepository {
	return &TransmittalRepository{db: db}
}

// Create inserts a new transmittal
func (r *TransmittalRepository) Create(ctx context.Context, t *models.Transmittal) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("insert transmittal: %w", err)
	}
	return nil
}

// Get returns a transmittal by id
func (r *TransmittalRepository) Get(ctx context.Context, id string) (*models.Transmittal, error) {
	var t models.Transmittal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("select transmittal: %w", err)
	}
	return &t, nil
}

// List returns matching transmittals ordered by created_date, newest first
func (r *TransmittalRepository) List(ctx context.Context, f storage.ListFilter) ([]models.Transmittal, error) {
	out := []models.Transmittal{}
	q := r.db.WithContext(ctx).Model(&models.Transmittal{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Order("created_date DESC").Order("id").Offset(f.Skip)
	if f.Limit >= 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list transmittals: %w", err)
	}
	return out, nil
}

// Count returns the number of transmittals matching status ("" for all)
func (r *TransmittalRepository) Count(ctx context.Context, status string) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.Transmittal{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count transmittals: %w", err)
	}
	return n, nil
}

// Save overwrites every column of an existing transmittal
func (r *TransmittalRepository) Save(ctx context.Context, t *models.Transmittal) error {
	res := r.db.WithContext(ctx).Model(&models.Transmittal{}).
		Where("id = ?", t.ID).
		Select("*").
		Updates(t)
	if res.Error != nil {
		return fmt.Errorf("update transmittal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SaveIfStatus overwrites the transmittal only while its stored status equals expected
func (r *TransmittalRepository) SaveIfStatus(ctx context.Context, t *models.Transmittal, expected models.Status) error {
	res := r.db.WithContext(ctx).Model(&models.Transmittal{}).
		Where("id = ? AND status = ?", t.ID, expected).
		Select("*").
		Updates(t)
	if res.Error != nil {
		return fmt.Errorf("update transmittal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missingOrChanged(ctx, t.ID)
	}
	return nil
}

// DeleteIfStatus hard-deletes the transmittal only while its stored status equals expected
func (r *TransmittalRepository) DeleteIfStatus(ctx context.Context, id string, expected models.Status) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, expected).
		Delete(&models.Transmittal{})
	if res.Error != nil {
		return fmt.Errorf("delete transmittal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missingOrChanged(ctx, id)
	}
	return nil
}

func (r *TransmittalRepository) missingOrChanged(ctx context.Context, id string) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Transmittal{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("check transmittal: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return storage.ErrStateChanged
}

// NextSequence atomically increments the counter for year. The row is created on
// first use, starting after the numbers already issued for that year.
func (r *TransmittalRepository) NextSequence(ctx context.Context, year int) (int, error) {
	var seq models.TransmittalSequence
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("year = ?", year).First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var issued int64
			if err := tx.Model(&models.Transmittal{}).
				Where("transmittal_number LIKE ?", fmt.Sprintf("TRN-%d-%%", year)).
				Count(&issued).Error; err != nil {
				return err
			}
			seed := models.TransmittalSequence{Year: year, Value: int(issued), UpdatedAt: time.Now().UTC()}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
				return err
			}
			err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("year = ?", year).First(&seq).Error
		}
		if err != nil {
			return err
		}
		seq.Value++
		return tx.Model(&models.TransmittalSequence{}).
			Where("year = ?", year).
			Updates(map[string]interface{}{"value": seq.Value, "updated_at": time.Now().UTC()}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("next transmittal sequence: %w", err)
	}
	return seq.Value, nil
}
