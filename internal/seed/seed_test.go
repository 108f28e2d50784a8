package seed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diagnosis-app-server/internal/config"
	"diagnosis-app-server/internal/models"
	"diagnosis-app-server/internal/repositories"
)

func newTestRepository(t *testing.T) repositories.DiagnosisRepository {
	t.Helper()

	db, err := models.InitDB(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "seed.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = models.CloseDB(db) })

	return repositories.NewDiagnosisRepository(db)
}

func TestFixtures_AreWellFormed(t *testing.T) {
	for _, f := range Fixtures() {
		for _, id := range []string{f.ID, f.ClientID} {
			parsed, err := uuid.Parse(id)
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(4), parsed.Version())
		}
		assert.NotEmpty(t, f.DiagnosisName)
		assert.NotEmpty(t, f.Justification)
		assert.True(t, f.UpdatedAt.Equal(f.PredictedDate))
	}
}

func TestRun_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	n, err := Run(ctx, repo, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = Run(ctx, repo, zerolog.Nop())
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	mdd, err := repo.FindEarliestByClient(ctx, "6f3fccda-b155-406c-a274-f0411a554a8f")
	require.NoError(t, err)
	assert.Equal(t, "830eebdd-1c14-4e44-91c7-f2b8ffab255e", mdd.ID)
	require.NotNil(t, mdd.ChallengedDiagnosis)
	assert.Equal(t, "Persistent Depressive Disorder", *mdd.ChallengedDiagnosis)

	gad, err := repo.FindEarliestByClient(ctx, "f5cab8a3-0cd9-4795-96fb-c4efb5fefc34")
	require.NoError(t, err)
	assert.Nil(t, gad.ChallengedDiagnosis)
	assert.Nil(t, gad.ChallengedJustification)
}

func TestRun_RestoresEditedFixture(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := Run(ctx, repo, zerolog.Nop())
	require.NoError(t, err)

	id := "4ccce852-45b4-4dec-b5b6-7f59431ad249"
	require.NoError(t, repo.Update(ctx, id, map[string]interface{}{"diagnosis_name": "edited"}))

	_, err = Run(ctx, repo, zerolog.Nop())
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Generalized Anxiety Disorder", got.DiagnosisName)
}

type failingRepository struct {
	repositories.DiagnosisRepository
}

func (failingRepository) Upsert(context.Context, *models.Diagnosis) error {
	return errors.New("store unavailable")
}

func TestRun_StopsOnError(t *testing.T) {
	n, err := Run(context.Background(), failingRepository{}, zerolog.Nop())
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Contains(t, err.Error(), "4ccce852-45b4-4dec-b5b6-7f59431ad249")
}
