package analytics

import (
	"context"
	"errors"

	"homestay/internal/app/dto"
	bookinghandlers "homestay/internal/app/handlers/booking"
	"homestay/internal/app/policies"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainuser "homestay/internal/domain/user"
)

const exportHostBookingsKey = "analytics.export_host_bookings"

var errNoExporter = errors.New("analytics: booking exporter not configured")

type ExportHostBookingsQuery struct {
	HostID string          `validate:"required"`
	Role   domainuser.Role `validate:"required"`
	Status string          `validate:"omitempty,oneof=pending confirmed completed cancelled"`
}

func (q ExportHostBookingsQuery) Key() string { return exportHostBookingsKey }

func (q ExportHostBookingsQuery) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleHost, domainuser.RoleAdmin}
}

func (q ExportHostBookingsQuery) ActorRole() domainuser.Role { return q.Role }

type ExportHostBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Exporter   policies.BookingExporter
}

func (h *ExportHostBookingsHandler) Handle(ctx context.Context, q ExportHostBookingsQuery) (dto.File, error) {
	if h.Exporter == nil {
		return dto.File{}, errNoExporter
	}
	list := &bookinghandlers.ListHostBookingsHandler{UoWFactory: h.UoWFactory}
	collection, err := list.Handle(ctx, bookinghandlers.ListHostBookingsQuery{HostID: q.HostID, Role: q.Role, Status: q.Status})
	if err != nil {
		return dto.File{}, err
	}
	return h.Exporter.ExportBookings(ctx, collection.Items)
}

var _ queries.Handler[ExportHostBookingsQuery, dto.File] = (*ExportHostBookingsHandler)(nil)
