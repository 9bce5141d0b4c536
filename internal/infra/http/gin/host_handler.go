package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/dto"
	analyticsapp "homestay/internal/app/handlers/analytics"
	bookingapp "homestay/internal/app/handlers/booking"
	"homestay/internal/app/queries"
)

type HostHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h HostHandler) Bookings(c *gin.Context) {
	host, ok := requireAuth(c)
	if !ok {
		return
	}
	query := bookingapp.ListHostBookingsQuery{
		HostID: host.ID,
		Role:   host.Role,
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
	}
	result, err := queries.Ask[bookingapp.ListHostBookingsQuery, dto.HostBookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostHandler) Export(c *gin.Context) {
	host, ok := requireAuth(c)
	if !ok {
		return
	}
	query := analyticsapp.ExportHostBookingsQuery{
		HostID: host.ID,
		Role:   host.Role,
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
	}
	file, err := queries.Ask[analyticsapp.ExportHostBookingsQuery, dto.File](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h HostHandler) Dashboard(c *gin.Context) {
	host, ok := requireAuth(c)
	if !ok {
		return
	}
	query := analyticsapp.HostDashboardQuery{HostID: host.ID, Role: host.Role}
	result, err := queries.Ask[analyticsapp.HostDashboardQuery, dto.HostDashboard](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostHTTP = HostHandler{}
