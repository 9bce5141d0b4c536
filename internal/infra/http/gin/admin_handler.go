package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	reviewapp "homestay/internal/app/handlers/reviews"
	userapp "homestay/internal/app/handlers/users"
	"homestay/internal/app/queries"
)

type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AdminHandler) Users(c *gin.Context) {
	admin, ok := requireAuth(c)
	if !ok {
		return
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		respondError(c, nil, err)
		return
	}
	offset, err := intParam(c, "offset")
	if err != nil {
		respondError(c, nil, err)
		return
	}
	query := userapp.ListUsersQuery{
		Role:   admin.Role,
		Search: strings.TrimSpace(c.Query("q")),
		ByRole: strings.ToLower(strings.TrimSpace(c.Query("role"))),
		Limit:  limit,
		Offset: offset,
	}
	result, err := queries.Ask[userapp.ListUsersQuery, dto.UserList](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) RecomputeRating(c *gin.Context) {
	admin, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := reviewapp.RecomputeRatingCommand{PropertyID: strings.TrimSpace(c.Param("id")), Role: admin.Role}
	result, err := commands.Dispatch[reviewapp.RecomputeRatingCommand, *dto.RatingSummary](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
