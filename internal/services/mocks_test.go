package services

import (
	"context"
	"errors"
	"sync/atomic"

	"diagnosis-app-server/internal/models"
	"diagnosis-app-server/internal/repositories"
)

// Compile-time check to ensure MockDiagnosisRepository implements DiagnosisRepository
var _ repositories.DiagnosisRepository = (*MockDiagnosisRepository)(nil)

// MockDiagnosisRepository is a mock implementation of DiagnosisRepository.
type MockDiagnosisRepository struct {
	FindEarliestByClientFunc func(ctx context.Context, clientID string) (*models.Diagnosis, error)
	FindByIDFunc             func(ctx context.Context, id string) (*models.Diagnosis, error)
	CreateFunc               func(ctx context.Context, diagnosis *models.Diagnosis) error
	UpdateFunc               func(ctx context.Context, id string, changes map[string]interface{}) error

	CreateCallCount int32
	UpdateCallCount int32
	UpsertCallCount int32
}

func (m *MockDiagnosisRepository) FindEarliestByClient(ctx context.Context, clientID string) (*models.Diagnosis, error) {
	if m.FindEarliestByClientFunc != nil {
		return m.FindEarliestByClientFunc(ctx, clientID)
	}
	return nil, repositories.ErrNotFound
}

func (m *MockDiagnosisRepository) FindByID(ctx context.Context, id string) (*models.Diagnosis, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, repositories.ErrNotFound
}

func (m *MockDiagnosisRepository) Create(ctx context.Context, diagnosis *models.Diagnosis) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, diagnosis)
	}
	return nil
}

func (m *MockDiagnosisRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, changes)
	}
	return nil
}

func (m *MockDiagnosisRepository) Upsert(ctx context.Context, diagnosis *models.Diagnosis) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	return errors.New("Upsert not implemented in mock")
}

func (m *MockDiagnosisRepository) Count(ctx context.Context) (int64, error) {
	return 0, errors.New("Count not implemented in mock")
}
