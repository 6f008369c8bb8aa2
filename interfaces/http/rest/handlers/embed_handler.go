package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appembed "embedgraph-backend/application/embed"
	"embedgraph-backend/pkg/common"
	apperrors "embedgraph-backend/pkg/errors"
)

const maxRequestBodyBytes = 64 * 1024

// EmbedHandler serves the administrative embed endpoints.
type EmbedHandler struct {
	service  *appembed.Service
	logger   *zap.Logger
	validate *validator.Validate
}

// NewEmbedHandler creates a new embed handler
func NewEmbedHandler(service *appembed.Service, logger *zap.Logger) *EmbedHandler {
	return &EmbedHandler{
		service:  service,
		logger:   logger,
		validate: validator.New(),
	}
}

// CreateEmbedRequest is the issuance request body. ExpiresInDays is a pointer
// so an omitted field is distinguishable from an explicit zero.
type CreateEmbedRequest struct {
	Query         string `json:"query" validate:"required"`
	ExpiresInDays *int   `json:"expiresInDays,omitempty"`
}

// CreateEmbed handles POST /api/embed
func (h *EmbedHandler) CreateEmbed(w http.ResponseWriter, r *http.Request) {
	var req CreateEmbedRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidationError("Invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		common.RespondAppError(w, apperrors.NewValidationError("Cypher query is required"))
		return
	}

	result, err := h.service.Issue(r.Context(), req.Query, req.ExpiresInDays)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// RevokeEmbed handles DELETE /api/embed/{token}
func (h *EmbedHandler) RevokeEmbed(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	removed, err := h.service.Revoke(r.Context(), token)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if !removed {
		common.RespondAppError(w, apperrors.NewNotFoundError("embed token"))
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}
