// Package handlers assembles the command and query buses from the use case
// packages below it.
package handlers

import (
	"log/slog"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/analytics"
	"homestay/internal/app/handlers/availability"
	"homestay/internal/app/handlers/booking"
	"homestay/internal/app/handlers/properties"
	"homestay/internal/app/handlers/reviews"
	"homestay/internal/app/handlers/users"
	"homestay/internal/app/middleware"
	"homestay/internal/app/outbox"
	"homestay/internal/app/policies"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
)

type Metrics interface {
	policies.BookingMetrics
	policies.ReviewMetrics
}

type Deps struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Idempotency middleware.IdempotencyStore
	Validator   middleware.Validator
	Notifier    policies.Notifier
	Photos      policies.PhotoStorage
	Exporter    policies.BookingExporter
	Metrics     Metrics
	Currency    string
	Logger      *slog.Logger
	Now         func() time.Time
}

// Buses are the middleware-wrapped entry points used by transports. Recompute
// is exposed for consumers that run outside the HTTP request path.
type Buses struct {
	Commands  commands.Bus
	Queries   queries.Bus
	Recompute *reviews.RecomputeRatingHandler
}

func Build(d Deps) Buses {
	if d.Encoder == nil {
		d.Encoder = outbox.JSONEventEncoder{}
	}
	if d.Metrics == nil {
		d.Metrics = policies.NoopMetrics{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	cmdBus := commands.NewInMemoryBus()
	catalog := &properties.CommandHandlers{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Now: d.Now}
	catalog.Register(cmdBus)
	commands.RegisterHandler[properties.UploadPhotoCommand, *dto.Property](cmdBus, properties.UploadPhotoCommand{}.Key(), &properties.UploadPhotoHandler{
		UoWFactory: d.UoWFactory, Storage: d.Photos, Outbox: d.Outbox, Encoder: d.Encoder, Now: d.Now,
	})
	commands.RegisterHandler[booking.CreateBookingCommand, *dto.Booking](cmdBus, booking.CreateBookingCommand{}.Key(), &booking.CreateBookingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Notifier: d.Notifier, Metrics: d.Metrics, Logger: d.Logger, Now: d.Now,
	})
	commands.RegisterHandler[booking.TransitionBookingCommand, *dto.Booking](cmdBus, booking.TransitionBookingCommand{}.Key(), &booking.TransitionBookingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Notifier: d.Notifier, Metrics: d.Metrics, Logger: d.Logger, Now: d.Now,
	})
	commands.RegisterHandler[reviews.SubmitReviewCommand, *dto.Review](cmdBus, reviews.SubmitReviewCommand{}.Key(), &reviews.SubmitReviewHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Metrics: d.Metrics, Now: d.Now,
	})
	recompute := &reviews.RecomputeRatingHandler{UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Logger: d.Logger, Now: d.Now}
	commands.RegisterHandler[reviews.RecomputeRatingCommand, *dto.RatingSummary](cmdBus, reviews.RecomputeRatingCommand{}.Key(), recompute)

	queryBus := queries.NewInMemoryBus()
	catalogQueries := &properties.QueryHandlers{UoWFactory: d.UoWFactory}
	catalogQueries.Register(queryBus)
	queries.RegisterHandler[availability.GetCalendarQuery, dto.Calendar](queryBus, availability.GetCalendarQuery{}.Key(), &availability.GetCalendarHandler{UoWFactory: d.UoWFactory, Now: d.Now})
	queries.RegisterHandler[booking.GetBookingQuery, dto.Booking](queryBus, booking.GetBookingQuery{}.Key(), &booking.GetBookingHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler[booking.ListTravelerBookingsQuery, dto.TravelerBookingCollection](queryBus, booking.ListTravelerBookingsQuery{}.Key(), &booking.ListTravelerBookingsHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler[booking.ListHostBookingsQuery, dto.HostBookingCollection](queryBus, booking.ListHostBookingsQuery{}.Key(), &booking.ListHostBookingsHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler[reviews.ListPropertyReviewsQuery, dto.ReviewCollection](queryBus, reviews.ListPropertyReviewsQuery{}.Key(), &reviews.ListPropertyReviewsHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler[analytics.HostDashboardQuery, dto.HostDashboard](queryBus, analytics.HostDashboardQuery{}.Key(), &analytics.HostDashboardHandler{
		UoWFactory: d.UoWFactory, Currency: d.Currency, Now: d.Now,
	})
	queries.RegisterHandler[analytics.ExportHostBookingsQuery, dto.File](queryBus, analytics.ExportHostBookingsQuery{}.Key(), &analytics.ExportHostBookingsHandler{
		UoWFactory: d.UoWFactory, Exporter: d.Exporter,
	})
	queries.RegisterHandler[users.ListUsersQuery, dto.UserList](queryBus, users.ListUsersQuery{}.Key(), &users.ListUsersHandler{UoWFactory: d.UoWFactory})

	commandMW := []middleware.CommandMiddleware{middleware.AfterCommit(d.Logger)}
	queryMW := []middleware.QueryMiddleware{}
	if d.Validator != nil {
		commandMW = append(commandMW, middleware.Validation(d.Validator))
		queryMW = append(queryMW, middleware.QueryValidation(d.Validator))
	}
	commandMW = append(commandMW, middleware.Authorization(middleware.RoleAuthorizer{}))
	if d.Idempotency != nil {
		commandMW = append(commandMW, middleware.Idempotency(d.Idempotency, nil))
	}
	commandMW = append(commandMW,
		middleware.Transaction(d.UoWFactory, nil),
		middleware.OutboxFlush(d.Outbox),
	)
	queryMW = append(queryMW, middleware.QueryAuthorization(middleware.RoleAuthorizer{}))

	return Buses{
		Commands:  middleware.ChainCommands(cmdBus, commandMW...),
		Queries:   middleware.ChainQueries(queryBus, queryMW...),
		Recompute: recompute,
	}
}
