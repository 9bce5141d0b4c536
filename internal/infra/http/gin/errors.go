package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/domain/shared/fault"
	"homestay/internal/infra/obs"
)

var (
	errAuthRequired = fault.New(fault.Unauthorized, "authentication required")
	errBadRequest   = fault.New(fault.InvalidInput, "invalid request body")
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func statusFor(kind fault.Kind) int {
	switch kind {
	case fault.NotFound:
		return http.StatusNotFound
	case fault.Forbidden:
		return http.StatusForbidden
	case fault.Conflict:
		return http.StatusConflict
	case fault.InvalidInput:
		return http.StatusBadRequest
	case fault.Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the classified error. Internal errors are logged with
// their cause and answered generically.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	kind := fault.KindOf(err)
	if kind == fault.Internal && logger != nil {
		logger.Error("request failed",
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", obs.RequestIDFromContext(c.Request.Context()),
		)
	}
	c.AbortWithStatusJSON(statusFor(kind), gin.H{"error": errorBody{Kind: kind.String(), Message: fault.MessageOf(err)}})
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, nil, fault.Wrap(fault.InvalidInput, errBadRequest.Message(), err))
}
