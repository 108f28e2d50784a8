package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"diagnosis-app-server/internal/models"
)

// ErrInvalidIdentifier is returned for path identifiers that are not UUID v4.
var ErrInvalidIdentifier = errors.New("invalid identifier: expected UUID v4")

// FieldError describes a single invalid body field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BodyValidationError is returned when a request body fails validation.
type BodyValidationError struct {
	Errors []FieldError
}

func (e *BodyValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid body: " + strings.Join(parts, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate performs validation on a struct.
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// ValidateClientIdentifier accepts only hyphenated UUID version 4 strings and
// returns the parsed identifier.
func ValidateClientIdentifier(value string) (uuid.UUID, error) {
	if err := validate.Var(value, "required,uuid4_rfc4122"); err != nil {
		return uuid.Nil, ErrInvalidIdentifier
	}
	id, err := uuid.Parse(value)
	if err != nil || id.Version() != 4 {
		return uuid.Nil, ErrInvalidIdentifier
	}
	return id, nil
}

var bodyFields = []string{
	"diagnosis_name",
	"justification",
	"challenged_diagnosis",
	"challenged_justification",
}

// ValidateDiagnosisBody parses a partial diagnosis body. Every field is
// optional and must be a string when present. Unknown fields are ignored.
// An empty diagnosis_name or justification counts as not provided.
func ValidateDiagnosisBody(body []byte) (models.DiagnosisFields, error) {
	var fields models.DiagnosisFields

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fields, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil || raw == nil {
		return fields, &BodyValidationError{Errors: []FieldError{{Message: "expected a JSON object"}}}
	}

	var fieldErrors []FieldError
	values := make(map[string]*string, len(bodyFields))
	for _, name := range bodyFields {
		msg, ok := raw[name]
		if !ok {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			fieldErrors = append(fieldErrors, FieldError{Field: name, Message: "expected string, received null"})
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			fieldErrors = append(fieldErrors, FieldError{Field: name, Message: "expected string"})
			continue
		}
		values[name] = &s
	}
	if len(fieldErrors) > 0 {
		return models.DiagnosisFields{}, &BodyValidationError{Errors: fieldErrors}
	}

	fields = models.DiagnosisFields{
		DiagnosisName:           nonEmpty(values["diagnosis_name"]),
		Justification:           nonEmpty(values["justification"]),
		ChallengedDiagnosis:     values["challenged_diagnosis"],
		ChallengedJustification: values["challenged_justification"],
	}

	if err := Validate(fields); err != nil {
		return models.DiagnosisFields{}, &BodyValidationError{Errors: FieldErrors(err)}
	}

	return fields, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// FieldErrors converts validator errors into per-field messages.
func FieldErrors(err error) []FieldError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, FieldError{Field: e.Field(), Message: describe(e)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Param() == "1" {
			return "must not be empty"
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	default:
		return fmt.Sprintf("failed %q validation", e.Tag())
	}
}
