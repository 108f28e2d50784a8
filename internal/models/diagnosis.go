package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Diagnosis represents a clinician's diagnosis for a client (patient).
// A client may accumulate several rows over time.
type Diagnosis struct {
	ID                      string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ClientID                string    `gorm:"type:varchar(36);not null;index" json:"clientId"`
	DiagnosisName           string    `gorm:"type:text;not null" json:"diagnosisName"`
	PredictedDate           time.Time `gorm:"not null" json:"predictedDate"`
	Justification           string    `gorm:"type:text;not null" json:"justification"`
	ChallengedDiagnosis     *string   `gorm:"type:text" json:"challengedDiagnosis"`
	ChallengedJustification *string   `gorm:"type:text" json:"challengedJustification"`
	UpdatedAt               time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// TableName overrides the table name used by gorm.
func (Diagnosis) TableName() string {
	return "diagnoses"
}

// BeforeCreate will set a UUID rather than numeric ID
func (d *Diagnosis) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// DiagnosisFields is the partial field set accepted by create-or-merge and
// update-by-id. A nil pointer means the field was not provided.
type DiagnosisFields struct {
	DiagnosisName           *string `json:"diagnosis_name" validate:"omitnil,min=1"`
	Justification           *string `json:"justification" validate:"omitnil,min=1"`
	ChallengedDiagnosis     *string `json:"challenged_diagnosis"`
	ChallengedJustification *string `json:"challenged_justification"`
}

// Merge overwrites each text field of d whose provided value is non-empty.
// Empty strings count as not provided. It reports which columns changed.
func (d *Diagnosis) Merge(fields DiagnosisFields) map[string]interface{} {
	changes := map[string]interface{}{}

	if v := fields.DiagnosisName; v != nil && *v != "" {
		d.DiagnosisName = *v
		changes["diagnosis_name"] = *v
	}
	if v := fields.Justification; v != nil && *v != "" {
		d.Justification = *v
		changes["justification"] = *v
	}
	if v := fields.ChallengedDiagnosis; v != nil && *v != "" {
		d.ChallengedDiagnosis = stringPtr(*v)
		changes["challenged_diagnosis"] = *v
	}
	if v := fields.ChallengedJustification; v != nil && *v != "" {
		d.ChallengedJustification = stringPtr(*v)
		changes["challenged_justification"] = *v
	}

	return changes
}

func stringPtr(s string) *string {
	return &s
}
