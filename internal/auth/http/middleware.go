package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/allisson/nodeauth/internal/auth/usecase"
	"github.com/allisson/nodeauth/internal/httputil"
)

// AuthenticationMiddleware authenticates Hawk or MAC signed requests.
//
// On success the identity is stored in the request context (see GetIdentity).
// On failure the request is aborted with 401 and a "WWW-Authenticate: Hawk"
// challenge; the cause is only logged.
func AuthenticationMiddleware(authenticator authUseCase.Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authenticator.Authenticate(c.Request.Context(), c.Request)
		if err != nil {
			c.Header("WWW-Authenticate", "Hawk")
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.Int64("uid", identity.UID),
			slog.String("node", identity.Node))

		c.Next()
	}
}
