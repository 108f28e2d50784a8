package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"diagnosis-app-server/internal/models"
)

// ErrNotFound is returned when no diagnosis row matches a lookup.
var ErrNotFound = errors.New("diagnosis not found")

// DiagnosisRepository is the record store for diagnosis rows.
type DiagnosisRepository interface {
	// FindEarliestByClient returns the row for clientID with the smallest
	// predicted date.
	FindEarliestByClient(ctx context.Context, clientID string) (*models.Diagnosis, error)
	FindByID(ctx context.Context, id string) (*models.Diagnosis, error)
	Create(ctx context.Context, diagnosis *models.Diagnosis) error
	// Update writes changes (column name to value) to the row with the given id.
	Update(ctx context.Context, id string, changes map[string]interface{}) error
	// Upsert inserts the row or overwrites every column of the row with the same id.
	Upsert(ctx context.Context, diagnosis *models.Diagnosis) error
	Count(ctx context.Context) (int64, error)
}

type diagnosisRepository struct {
	db *gorm.DB
}

// NewDiagnosisRepository creates a gorm backed DiagnosisRepository.
func NewDiagnosisRepository(db *gorm.DB) DiagnosisRepository {
	return &diagnosisRepository{db: db}
}

func (r *diagnosisRepository) FindEarliestByClient(ctx context.Context, clientID string) (*models.Diagnosis, error) {
	var diagnosis models.Diagnosis
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("predicted_date asc").
		Order("id asc").
		Take(&diagnosis).Error
	if err != nil {
		return nil, translate(err, "find diagnosis by client")
	}
	return &diagnosis, nil
}

func (r *diagnosisRepository) FindByID(ctx context.Context, id string) (*models.Diagnosis, error) {
	var diagnosis models.Diagnosis
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&diagnosis).Error; err != nil {
		return nil, translate(err, "find diagnosis by id")
	}
	return &diagnosis, nil
}

func (r *diagnosisRepository) Create(ctx context.Context, diagnosis *models.Diagnosis) error {
	if err := r.db.WithContext(ctx).Create(diagnosis).Error; err != nil {
		return fmt.Errorf("create diagnosis: %w", err)
	}
	return nil
}

func (r *diagnosisRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Diagnosis{}).
		Where("id = ?", id).
		Updates(changes)
	if result.Error != nil {
		return fmt.Errorf("update diagnosis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *diagnosisRepository) Upsert(ctx context.Context, diagnosis *models.Diagnosis) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(diagnosis).Error
	if err != nil {
		return fmt.Errorf("upsert diagnosis: %w", err)
	}
	return nil
}

func (r *diagnosisRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Diagnosis{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count diagnoses: %w", err)
	}
	return count, nil
}

func translate(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
