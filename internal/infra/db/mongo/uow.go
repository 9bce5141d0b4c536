package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainproperties "homestay/internal/domain/properties"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Repositories are stateless; the session travels in the context.
type Factory struct {
	DB *mongo.Database

	PropertiesRepo *PropertyRepository
	BookingsRepo   *BookingRepository
	ReviewsRepo    *ReviewRepository
	UsersRepo      *UserRepository
}

// NewFactory builds the repositories and their indexes.
func NewFactory(ctx context.Context, db *mongo.Database) (*Factory, error) {
	props, err := NewPropertyRepository(ctx, db)
	if err != nil {
		return nil, err
	}
	bookings, err := NewBookingRepository(ctx, db)
	if err != nil {
		return nil, err
	}
	reviews, err := NewReviewRepository(ctx, db)
	if err != nil {
		return nil, err
	}
	users, err := NewUserRepository(ctx, db)
	if err != nil {
		return nil, err
	}
	return &Factory{DB: db, PropertiesRepo: props, BookingsRepo: bookings, ReviewsRepo: reviews, UsersRepo: users}, nil
}

// Begin starts a session with a snapshot transaction.
func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f == nil || f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if opts.ReadOnly {
		txnOpts = options.Transaction().SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{session: session, factory: f}, nil
}

type Unit struct {
	session mongo.Session
	factory *Factory
}

func (u *Unit) Properties() domainproperties.Repository { return u.factory.PropertiesRepo }
func (u *Unit) Bookings() domainbooking.Repository      { return u.factory.BookingsRepo }
func (u *Unit) Reviews() domainreviews.Repository       { return u.factory.ReviewsRepo }
func (u *Unit) Users() domainuser.Repository            { return u.factory.UsersRepo }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return conflictOr(u.session.CommitTransaction(ctx))
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the session visible to repositories and the outbox.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory      = (*Factory)(nil)
	_ uow.ContextInjector = (*Unit)(nil)
)
