package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appembed "embedgraph-backend/application/embed"
	"embedgraph-backend/pkg/common"
	apperrors "embedgraph-backend/pkg/errors"
)

// ProxyHandler serves the token-bound query route used by embed pages.
type ProxyHandler struct {
	service  *appembed.Service
	logger   *zap.Logger
	validate *validator.Validate
}

// NewProxyHandler creates a new proxy handler
func NewProxyHandler(service *appembed.Service, logger *zap.Logger) *ProxyHandler {
	return &ProxyHandler{
		service:  service,
		logger:   logger,
		validate: validator.New(),
	}
}

// ProxyQueryRequest is the proxy request body. The token is the only input;
// the query and its parameters are fixed at issuance time.
type ProxyQueryRequest struct {
	Token string `json:"token" validate:"required"`
}

// Query handles POST /api/proxy/query
func (h *ProxyHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req ProxyQueryRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidationError("Invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		common.RespondAppError(w, apperrors.NewValidationError("Token is required"))
		return
	}

	data, err := h.service.Resolve(r.Context(), req.Token)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, data)
}
