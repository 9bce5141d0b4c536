package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	reviewapp "homestay/internal/app/handlers/reviews"
	"homestay/internal/app/queries"
	"homestay/internal/domain/shared/fault"
)

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h ReviewHandler) List(c *gin.Context) {
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
	query := reviewapp.ListPropertyReviewsQuery{
		PropertyID: strings.TrimSpace(c.Param("id")),
		Limit:      limit,
		Offset:     offset,
	}
	result, err := queries.Ask[reviewapp.ListPropertyReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewHandler) Submit(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cmd := reviewapp.SubmitReviewCommand{
		ReviewID:   uuid.NewString(),
		PropertyID: strings.TrimSpace(c.Param("id")),
		UserID:     p.ID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	result, err := commands.Dispatch[reviewapp.SubmitReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func intParam(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fault.Wrap(fault.InvalidInput, name+" must be a non-negative integer", err)
	}
	return v, nil
}

var _ ReviewHTTP = ReviewHandler{}
