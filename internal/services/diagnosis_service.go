package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"diagnosis-app-server/internal/models"
	"diagnosis-app-server/internal/repositories"
)

// ErrNotFound is returned when no diagnosis matches the requested client or id.
var ErrNotFound = repositories.ErrNotFound

// timestampPrecision matches the resolution of the timestamp columns so the
// returned record equals what a later read sees.
const timestampPrecision = time.Microsecond

// DiagnosisService implements the diagnosis resource operations.
type DiagnosisService struct {
	repo repositories.DiagnosisRepository
	log  zerolog.Logger
	now  func() time.Time
}

// Option configures a DiagnosisService.
type Option func(*DiagnosisService)

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *DiagnosisService) {
		s.now = now
	}
}

// NewDiagnosisService creates a new DiagnosisService.
func NewDiagnosisService(repo repositories.DiagnosisRepository, log zerolog.Logger, opts ...Option) *DiagnosisService {
	s := &DiagnosisService{
		repo: repo,
		log:  log.With().Str("component", "diagnosis_service").Logger(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DiagnosisService) timestamp() time.Time {
	return s.now().UTC().Truncate(timestampPrecision)
}

// nextUpdatedAt returns a timestamp strictly after previous.
func (s *DiagnosisService) nextUpdatedAt(previous time.Time) time.Time {
	stamp := s.timestamp()
	if !stamp.After(previous) {
		stamp = previous.Add(timestampPrecision)
	}
	return stamp
}

// FetchLatestByClient returns the client's diagnosis with the earliest predicted date.
func (s *DiagnosisService) FetchLatestByClient(ctx context.Context, clientID uuid.UUID) (*models.Diagnosis, error) {
	diagnosis, err := s.repo.FindEarliestByClient(ctx, clientID.String())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch diagnosis for client %s: %w", clientID, err)
	}
	return diagnosis, nil
}

// CreateOrMergeByClient merges fields into the client's existing diagnosis, or
// creates a new diagnosis when the client has none. A nil clientID is replaced
// by a freshly generated lookup key.
//
// A newly created record always gets its own generated client id; the lookup
// key is not reused.
func (s *DiagnosisService) CreateOrMergeByClient(ctx context.Context, clientID uuid.UUID, fields models.DiagnosisFields) (*models.Diagnosis, error) {
	if clientID == uuid.Nil {
		clientID = uuid.New()
	}

	existing, err := s.repo.FindEarliestByClient(ctx, clientID.String())
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return s.create(ctx, fields)
	case err != nil:
		return nil, fmt.Errorf("look up diagnosis for client %s: %w", clientID, err)
	}

	if err := s.merge(ctx, existing, fields); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("client_id", existing.ClientID).
		Str("diagnosis_id", existing.ID).
		Msg("merged diagnosis for client")

	return existing, nil
}

// UpdateByID merges fields into the diagnosis with the given record id.
func (s *DiagnosisService) UpdateByID(ctx context.Context, id uuid.UUID, fields models.DiagnosisFields) (*models.Diagnosis, error) {
	diagnosis, err := s.repo.FindByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("look up diagnosis %s: %w", id, err)
	}

	if err := s.merge(ctx, diagnosis, fields); err != nil {
		return nil, err
	}

	s.log.Info().Str("diagnosis_id", diagnosis.ID).Msg("updated diagnosis")

	return diagnosis, nil
}

func (s *DiagnosisService) create(ctx context.Context, fields models.DiagnosisFields) (*models.Diagnosis, error) {
	now := s.timestamp()
	diagnosis := &models.Diagnosis{
		ID:                      uuid.NewString(),
		ClientID:                uuid.NewString(),
		DiagnosisName:           valueOrEmpty(fields.DiagnosisName),
		PredictedDate:           now,
		Justification:           valueOrEmpty(fields.Justification),
		ChallengedDiagnosis:     fields.ChallengedDiagnosis,
		ChallengedJustification: fields.ChallengedJustification,
		UpdatedAt:               now,
	}

	if err := s.repo.Create(ctx, diagnosis); err != nil {
		return nil, fmt.Errorf("create diagnosis: %w", err)
	}

	s.log.Info().
		Str("client_id", diagnosis.ClientID).
		Str("diagnosis_id", diagnosis.ID).
		Msg("created diagnosis")

	return diagnosis, nil
}

// merge applies fields to diagnosis in memory and persists the changed
// columns together with a refreshed updated_at.
func (s *DiagnosisService) merge(ctx context.Context, diagnosis *models.Diagnosis, fields models.DiagnosisFields) error {
	changes := diagnosis.Merge(fields)
	diagnosis.UpdatedAt = s.nextUpdatedAt(diagnosis.UpdatedAt)
	changes["updated_at"] = diagnosis.UpdatedAt

	s.log.Debug().
		Str("diagnosis_id", diagnosis.ID).
		Int("changed_fields", len(changes)-1).
		Msg("merging diagnosis fields")

	if err := s.repo.Update(ctx, diagnosis.ID, changes); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update diagnosis %s: %w", diagnosis.ID, err)
	}
	return nil
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
