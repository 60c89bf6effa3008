package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/nodeauth/internal/errors"
	"github.com/allisson/nodeauth/internal/httputil"
)

// WhoamiResponse describes the caller of an authenticated request.
type WhoamiResponse struct {
	UID  int64  `json:"uid"`
	Node string `json:"node"`
}

// WhoamiHandler reports the identity established by AuthenticationMiddleware.
type WhoamiHandler struct {
	logger *slog.Logger
}

// NewWhoamiHandler creates a WhoamiHandler.
func NewWhoamiHandler(logger *slog.Logger) *WhoamiHandler {
	return &WhoamiHandler{logger: logger}
}

// Handle serves GET /v1/whoami.
func (h *WhoamiHandler) Handle(c *gin.Context) {
	identity, ok := GetIdentity(c.Request.Context())
	if !ok || identity == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, WhoamiResponse{UID: identity.UID, Node: identity.Node})
}
