package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"diagnosis-app-server/internal/middleware"
	"diagnosis-app-server/internal/models"
	"diagnosis-app-server/internal/services"
	"diagnosis-app-server/internal/utils"
)

const (
	msgInvalidClientID   = "Invalid clientId."
	msgInvalidBody       = "Invalid request body."
	msgNoClientDiagnosis = "No diagnosis found for this client."
	msgNotFound          = "Diagnosis not found."
	msgInternal          = "Internal server error."
)

// DiagnosisService is the set of resource operations the handler depends on.
type DiagnosisService interface {
	FetchLatestByClient(ctx context.Context, clientID uuid.UUID) (*models.Diagnosis, error)
	CreateOrMergeByClient(ctx context.Context, clientID uuid.UUID, fields models.DiagnosisFields) (*models.Diagnosis, error)
	UpdateByID(ctx context.Context, id uuid.UUID, fields models.DiagnosisFields) (*models.Diagnosis, error)
}

// DiagnosisHandler handles diagnosis related requests.
type DiagnosisHandler struct {
	service DiagnosisService
	log     zerolog.Logger
}

// NewDiagnosisHandler creates a new DiagnosisHandler.
func NewDiagnosisHandler(service DiagnosisService, log zerolog.Logger) *DiagnosisHandler {
	return &DiagnosisHandler{
		service: service,
		log:     log.With().Str("component", "diagnosis_handler").Logger(),
	}
}

// GetDiagnosis returns the client's diagnosis with the earliest predicted date.
func (h *DiagnosisHandler) GetDiagnosis(c *gin.Context) {
	clientID, err := utils.ValidateClientIdentifier(c.Param("clientId"))
	if err != nil {
		utils.BadRequest(c, msgInvalidClientID)
		return
	}

	diagnosis, err := h.service.FetchLatestByClient(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.NotFound(c, msgNoClientDiagnosis)
			return
		}
		h.internalError(c, "fetch diagnosis", err)
		return
	}

	utils.Success(c, diagnosis)
}

// CreateOrMergeDiagnosis creates a diagnosis for a client, or merges the body
// into the client's existing diagnosis.
func (h *DiagnosisHandler) CreateOrMergeDiagnosis(c *gin.Context) {
	clientID, err := utils.ValidateClientIdentifier(c.Param("clientId"))
	if err != nil {
		utils.BadRequest(c, msgInvalidClientID)
		return
	}

	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	diagnosis, err := h.service.CreateOrMergeByClient(c.Request.Context(), clientID, fields)
	if err != nil {
		h.internalError(c, "create or merge diagnosis", err)
		return
	}

	utils.Success(c, diagnosis)
}

// UpdateDiagnosis merges the body into the diagnosis with the given record id.
func (h *DiagnosisHandler) UpdateDiagnosis(c *gin.Context) {
	id, err := utils.ValidateClientIdentifier(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, msgInvalidClientID)
		return
	}

	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	diagnosis, err := h.service.UpdateByID(c.Request.Context(), id, fields)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.NotFound(c, msgNotFound)
			return
		}
		h.internalError(c, "update diagnosis", err)
		return
	}

	utils.Success(c, diagnosis)
}

// bindFields reads and validates the request body. On failure it writes the
// 400 response and returns false.
func (h *DiagnosisHandler) bindFields(c *gin.Context) (models.DiagnosisFields, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequest(c, msgInvalidBody)
		return models.DiagnosisFields{}, false
	}

	fields, err := utils.ValidateDiagnosisBody(body)
	if err != nil {
		var bodyErr *utils.BodyValidationError
		if errors.As(err, &bodyErr) {
			utils.ValidationFailed(c, msgInvalidBody, bodyErr.Errors)
		} else {
			utils.BadRequest(c, msgInvalidBody)
		}
		return models.DiagnosisFields{}, false
	}

	return fields, true
}

func (h *DiagnosisHandler) internalError(c *gin.Context, op string, err error) {
	h.log.Error().
		Err(err).
		Str("request_id", middleware.GetRequestID(c)).
		Str("op", op).
		Msg("diagnosis request failed")
	utils.InternalServerError(c, msgInternal)
}
