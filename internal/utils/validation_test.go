package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClientIdentifier_Valid(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "fixture client", id: "f5cab8a3-0cd9-4795-96fb-c4efb5fefc34"},
		{name: "rfc example", id: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "upper case", id: "6F3FCCDA-B155-406C-A274-F0411A554A8F"},
		{name: "freshly generated", id: uuid.NewString()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ValidateClientIdentifier(tt.id)
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(tt.id), id.String())
		})
	}
}

func TestValidateClientIdentifier_Generated(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := uuid.NewString()
		_, err := ValidateClientIdentifier(id)
		assert.NoError(t, err, id)
	}
}

func TestValidateClientIdentifier_Invalid(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "empty", id: ""},
		{name: "not a uuid", id: "not-a-uuid"},
		{name: "version 1", id: "c232ab00-9414-11ec-b3c8-9f6bdeced846"},
		{name: "version 7", id: "01890a5d-ac96-774b-bcce-b302099a8057"},
		{name: "nil uuid", id: "00000000-0000-0000-0000-000000000000"},
		{name: "bad variant", id: "550e8400-e29b-41d4-c716-446655440000"},
		{name: "no hyphens", id: "550e8400e29b41d4a716446655440000"},
		{name: "braces", id: "{550e8400-e29b-41d4-a716-446655440000}"},
		{name: "urn", id: "urn:uuid:550e8400-e29b-41d4-a716-446655440000"},
		{name: "too short", id: "550e8400-e29b-41d4-a716-44665544000"},
		{name: "non hex", id: "550e8400-e29b-41d4-a716-44665544000g"},
		{name: "surrounding space", id: " 550e8400-e29b-41d4-a716-446655440000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateClientIdentifier(tt.id)
			assert.ErrorIs(t, err, ErrInvalidIdentifier)
		})
	}
}

func TestValidateDiagnosisBody_Valid(t *testing.T) {
	fields, err := ValidateDiagnosisBody([]byte(`{
		"diagnosis_name": "Test Diagnosis",
		"justification": "Test justification",
		"challenged_diagnosis": "",
		"unknown_field": 42
	}`))
	require.NoError(t, err)

	require.NotNil(t, fields.DiagnosisName)
	assert.Equal(t, "Test Diagnosis", *fields.DiagnosisName)
	require.NotNil(t, fields.Justification)
	assert.Equal(t, "Test justification", *fields.Justification)
	require.NotNil(t, fields.ChallengedDiagnosis)
	assert.Equal(t, "", *fields.ChallengedDiagnosis)
	assert.Nil(t, fields.ChallengedJustification)
}

func TestValidateDiagnosisBody_EmptyBody(t *testing.T) {
	for _, body := range []string{"", "   ", "{}"} {
		fields, err := ValidateDiagnosisBody([]byte(body))
		require.NoError(t, err, body)
		assert.Nil(t, fields.DiagnosisName)
		assert.Nil(t, fields.Justification)
		assert.Nil(t, fields.ChallengedDiagnosis)
		assert.Nil(t, fields.ChallengedJustification)
	}
}

func TestValidateDiagnosisBody_EmptyRequiredFieldsAreNotProvided(t *testing.T) {
	fields, err := ValidateDiagnosisBody([]byte(`{"diagnosis_name":"","justification":""}`))
	require.NoError(t, err)
	assert.Nil(t, fields.DiagnosisName)
	assert.Nil(t, fields.Justification)
}

func TestValidateDiagnosisBody_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{name: "array", body: `["GAD"]`},
		{name: "string", body: `"GAD"`},
		{name: "null body", body: `null`},
		{name: "malformed", body: `{"diagnosis_name":`},
		{name: "number", body: `{"diagnosis_name": 7}`, wantFields: []string{"diagnosis_name"}},
		{name: "null field", body: `{"justification": null}`, wantFields: []string{"justification"}},
		{name: "object", body: `{"challenged_diagnosis": {"a": 1}}`, wantFields: []string{"challenged_diagnosis"}},
		{
			name:       "several",
			body:       `{"diagnosis_name": true, "challenged_justification": []}`,
			wantFields: []string{"diagnosis_name", "challenged_justification"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateDiagnosisBody([]byte(tt.body))
			require.Error(t, err)

			var bodyErr *BodyValidationError
			require.ErrorAs(t, err, &bodyErr)
			require.NotEmpty(t, bodyErr.Errors)

			if len(tt.wantFields) == 0 {
				assert.Equal(t, "", bodyErr.Errors[0].Field)
				return
			}
			var got []string
			for _, fe := range bodyErr.Errors {
				got = append(got, fe.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, got)
		})
	}
}

func TestFieldErrors_UsesJSONNames(t *testing.T) {
	empty := ""
	type body struct {
		DiagnosisName *string `json:"diagnosis_name" validate:"omitnil,min=1"`
	}

	err := Validate(body{DiagnosisName: &empty})
	require.Error(t, err)

	fieldErrs := FieldErrors(err)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "diagnosis_name", fieldErrs[0].Field)
	assert.Equal(t, "must not be empty", fieldErrs[0].Message)
}
