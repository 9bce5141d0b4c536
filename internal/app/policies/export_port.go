package policies

import (
	"context"

	"homestay/internal/app/dto"
)

// BookingExporter renders a host's bookings into a downloadable document.
type BookingExporter interface {
	ExportBookings(ctx context.Context, bookings []dto.HostBookingSummary) (dto.File, error)
}
