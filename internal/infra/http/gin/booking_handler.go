package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	bookingapp "homestay/internal/app/handlers/booking"
	"homestay/internal/app/queries"
	domainbooking "homestay/internal/domain/booking"
	"homestay/internal/domain/shared/fault"
)

const idempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	PropertyID string `json:"property_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		respondError(c, nil, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		respondError(c, nil, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		BookingID:       uuid.NewString(),
		PropertyID:      strings.TrimSpace(req.PropertyID),
		TravelerID:      p.ID,
		Role:            p.Role,
		StartDate:       start,
		EndDate:         end,
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader(idempotencyHeader)),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	query := bookingapp.GetBookingQuery{
		BookingID: strings.TrimSpace(c.Param("id")),
		ActorID:   p.ID,
		Role:      p.Role,
	}
	result, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Approve(c *gin.Context) {
	h.transition(c, domainbooking.TransitionApprove)
}

func (h BookingHandler) Complete(c *gin.Context) {
	h.transition(c, domainbooking.TransitionComplete)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, domainbooking.TransitionCancel)
}

func (h BookingHandler) transition(c *gin.Context, t domainbooking.Transition) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := bookingapp.TransitionBookingCommand{
		BookingID:  strings.TrimSpace(c.Param("id")),
		ActorID:    p.ID,
		Role:       p.Role,
		Transition: t,
	}
	result, err := commands.Dispatch[bookingapp.TransitionBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Mine lists the caller's own bookings as a traveler.
func (h BookingHandler) Mine(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	query := bookingapp.ListTravelerBookingsQuery{TravelerID: p.ID}
	result, err := queries.Ask[bookingapp.ListTravelerBookingsQuery, dto.TravelerBookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fault.New(fault.InvalidInput, field+" is required")
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fault.Wrap(fault.InvalidInput, field+" must be a date (YYYY-MM-DD)", err)
	}
	return t.UTC(), nil
}

var _ BookingHTTP = BookingHandler{}
