package booking

import (
	"context"
	"log/slog"
	"time"

	"homestay/internal/app/middleware"
	"homestay/internal/app/policies"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainuser "homestay/internal/domain/user"
)

// notifyAfterCommit sends a best effort message once the command committed.
func notifyAfterCommit(ctx context.Context, n policies.Notifier, logger *slog.Logger, to, template string, data any) {
	if n == nil || to == "" {
		return
	}
	middleware.RunAfterCommit(ctx, func(ctx context.Context) {
		if err := n.Send(ctx, to, template, data); err != nil && logger != nil {
			logger.Warn("booking notification failed", "template", template, "to", to, "error", err)
		}
	})
}

// emailOf resolves a recipient; unknown users simply get no message.
func emailOf(ctx context.Context, unit uow.UnitOfWork, id domainuser.ID) string {
	u, err := unit.Users().ByID(ctx, id)
	if err != nil {
		return ""
	}
	return u.Email
}

func templateFor(status domainbooking.Status) string {
	switch status {
	case domainbooking.StatusConfirmed:
		return policies.TemplateBookingConfirmed
	case domainbooking.StatusCompleted:
		return policies.TemplateBookingCompleted
	case domainbooking.StatusCancelled:
		return policies.TemplateBookingCancelled
	default:
		return policies.TemplateBookingCreated
	}
}

func metricsOrNoop(m policies.BookingMetrics) policies.BookingMetrics {
	if m == nil {
		return policies.NoopMetrics{}
	}
	return m
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
