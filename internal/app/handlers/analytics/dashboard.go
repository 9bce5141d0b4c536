package analytics

import (
	"context"
	"time"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainanalytics "homestay/internal/domain/analytics"
	domainuser "homestay/internal/domain/user"
)

const hostDashboardKey = "analytics.host_dashboard"

type HostDashboardQuery struct {
	HostID string          `validate:"required"`
	Role   domainuser.Role `validate:"required"`
}

func (q HostDashboardQuery) Key() string { return hostDashboardKey }

func (q HostDashboardQuery) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleHost, domainuser.RoleAdmin}
}

func (q HostDashboardQuery) ActorRole() domainuser.Role { return q.Role }

// HostDashboardHandler recomputes the figures from the host's rows on every call.
type HostDashboardHandler struct {
	UoWFactory uow.UoWFactory
	Currency   string
	Now        func() time.Time
}

func (h *HostDashboardHandler) Handle(ctx context.Context, q HostDashboardQuery) (dto.HostDashboard, error) {
	unit, ctx, managed, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostDashboard{}, err
	}
	defer managed.Close()

	host := domainuser.ID(q.HostID)
	props, err := unit.Properties().ListByHost(ctx, host)
	if err != nil {
		return dto.HostDashboard{}, err
	}
	bookings, err := unit.Bookings().ListByHost(ctx, host, "")
	if err != nil {
		return dto.HostDashboard{}, err
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	currency := h.Currency
	if currency == "" {
		currency = "USD"
	}
	return dto.MapDashboard(domainanalytics.Compute(domainanalytics.Input{
		Properties: props,
		Bookings:   bookings,
		Now:        now,
		Currency:   currency,
	})), nil
}

var _ queries.Handler[HostDashboardQuery, dto.HostDashboard] = (*HostDashboardHandler)(nil)
