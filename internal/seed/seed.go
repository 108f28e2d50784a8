// Package seed loads the fixture diagnoses used for local development.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"diagnosis-app-server/internal/models"
	"diagnosis-app-server/internal/repositories"
)

// Fixtures returns the development fixture rows. Each call returns fresh
// values so callers may mutate them.
func Fixtures() []models.Diagnosis {
	gadDate := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	mddDate := time.Date(2025, time.February, 1, 9, 30, 0, 0, time.UTC)

	return []models.Diagnosis{
		{
			ID:            "4ccce852-45b4-4dec-b5b6-7f59431ad249",
			ClientID:      "f5cab8a3-0cd9-4795-96fb-c4efb5fefc34",
			DiagnosisName: "Generalized Anxiety Disorder",
			PredictedDate: gadDate,
			Justification: "Elevated GAD-7 scores and persistent worry across multiple domains for >6 months.",
			UpdatedAt:     gadDate,
		},
		{
			ID:                      "830eebdd-1c14-4e44-91c7-f2b8ffab255e",
			ClientID:                "6f3fccda-b155-406c-a274-f0411a554a8f",
			DiagnosisName:           "Major Depressive Disorder",
			PredictedDate:           mddDate,
			Justification:           "PHQ-9 indicates severe depression; anhedonia and sleep disturbance reported.",
			ChallengedDiagnosis:     stringPtr("Persistent Depressive Disorder"),
			ChallengedJustification: stringPtr("Symptoms persistent but subthreshold for major episodes over 2+ years."),
			UpdatedAt:               mddDate,
		},
	}
}

// Run upserts every fixture by id and returns how many rows were written.
// Running it twice leaves the store unchanged.
func Run(ctx context.Context, repo repositories.DiagnosisRepository, log zerolog.Logger) (int, error) {
	fixtures := Fixtures()
	for i := range fixtures {
		if err := repo.Upsert(ctx, &fixtures[i]); err != nil {
			return i, fmt.Errorf("seed diagnosis %s: %w", fixtures[i].ID, err)
		}
		log.Debug().
			Str("diagnosis_id", fixtures[i].ID).
			Str("client_id", fixtures[i].ClientID).
			Msg("seeded diagnosis")
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return len(fixtures), err
	}

	log.Info().
		Int("seeded", len(fixtures)).
		Int64("total_rows", total).
		Msg("seed complete")
	return len(fixtures), nil
}

func stringPtr(s string) *string {
	return &s
}
