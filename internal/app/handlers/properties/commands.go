package properties

import (
	"context"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/middleware"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainproperties "homestay/internal/domain/properties"
	domainuser "homestay/internal/domain/user"
)

const (
	createPropertyKey = "properties.create"
	updatePropertyKey = "properties.update"
	deletePropertyKey = "properties.delete"
)

type CreatePropertyCommand struct {
	PropertyID    string          `validate:"required"`
	HostID        string          `validate:"required"`
	Role          domainuser.Role `validate:"required"`
	Name          string          `validate:"required,max=200"`
	Description   string          `validate:"max=5000"`
	Address       string          `validate:"required"`
	Location      dto.GeoPoint
	Amenities     []string
	RoomTypes     []dto.RoomType
	BaseRate      dto.MoneyDTO
	SeasonalRates []dto.SeasonalRate
	Images        []string
	Status        string `validate:"omitempty,oneof=active inactive under_construction"`
}

func (c CreatePropertyCommand) Key() string                      { return createPropertyKey }
func (c CreatePropertyCommand) RequiredRoles() []domainuser.Role { return hostRoles }
func (c CreatePropertyCommand) ActorRole() domainuser.Role       { return c.Role }

type UpdatePropertyCommand struct {
	PropertyID string          `validate:"required"`
	ActorID    string          `validate:"required"`
	Role       domainuser.Role `validate:"required"`
	Patch      PropertyPatch
}

func (c UpdatePropertyCommand) Key() string                      { return updatePropertyKey }
func (c UpdatePropertyCommand) RequiredRoles() []domainuser.Role { return hostRoles }
func (c UpdatePropertyCommand) ActorRole() domainuser.Role       { return c.Role }

type DeletePropertyCommand struct {
	PropertyID string          `validate:"required"`
	ActorID    string          `validate:"required"`
	Role       domainuser.Role `validate:"required"`
}

func (c DeletePropertyCommand) Key() string                      { return deletePropertyKey }
func (c DeletePropertyCommand) RequiredRoles() []domainuser.Role { return hostRoles }
func (c DeletePropertyCommand) ActorRole() domainuser.Role       { return c.Role }

// CommandHandlers groups the catalog write handlers; they share dependencies.
type CommandHandlers struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CommandHandlers) Create(ctx context.Context, cmd CreatePropertyCommand) (*dto.Property, error) {
	rate, err := baseRate(cmd.BaseRate)
	if err != nil {
		return nil, err
	}
	seasons, err := seasonalRates(cmd.SeasonalRates)
	if err != nil {
		return nil, err
	}
	property, err := domainproperties.NewProperty(domainproperties.CreateParams{
		ID:            domainproperties.ID(cmd.PropertyID),
		HostID:        domainuser.ID(cmd.HostID),
		Name:          cmd.Name,
		Description:   cmd.Description,
		Address:       cmd.Address,
		Location:      geoPoint(cmd.Location),
		Amenities:     cmd.Amenities,
		RoomTypes:     roomTypes(cmd.RoomTypes),
		BaseRate:      rate,
		SeasonalRates: seasons,
		Images:        cmd.Images,
		Status:        domainproperties.Status(cmd.Status),
		Now:           clock(h.Now),
	})
	if err != nil {
		return nil, err
	}

	unit, ctx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer managed.Close()

	if err := unit.Properties().Save(ctx, property); err != nil {
		return nil, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, property); err != nil {
		return nil, err
	}
	if err := managed.Commit(); err != nil {
		return nil, err
	}
	result := dto.MapProperty(property)
	return &result, nil
}

func (h *CommandHandlers) Update(ctx context.Context, cmd UpdatePropertyCommand) (*dto.Property, error) {
	patch, err := cmd.Patch.domain()
	if err != nil {
		return nil, err
	}

	unit, ctx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer managed.Close()

	property, err := unit.Properties().ByID(ctx, domainproperties.ID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}
	if !canManage(property, domainuser.ID(cmd.ActorID), cmd.Role) {
		return nil, domainproperties.ErrNotOwner
	}
	if !patch.Empty() {
		if err := property.Apply(patch, clock(h.Now)); err != nil {
			return nil, err
		}
		if err := unit.Properties().Save(ctx, property); err != nil {
			return nil, err
		}
		if err := outbox.Record(ctx, h.Outbox, h.Encoder, property); err != nil {
			return nil, err
		}
	}
	if err := managed.Commit(); err != nil {
		return nil, err
	}
	result := dto.MapProperty(property)
	return &result, nil
}

func (h *CommandHandlers) Delete(ctx context.Context, cmd DeletePropertyCommand) (struct{}, error) {
	unit, ctx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return struct{}{}, err
	}
	defer managed.Close()

	property, err := unit.Properties().ByID(ctx, domainproperties.ID(cmd.PropertyID))
	if err != nil {
		return struct{}{}, err
	}
	if !canManage(property, domainuser.ID(cmd.ActorID), cmd.Role) {
		return struct{}{}, domainproperties.ErrNotOwner
	}
	property.MarkDeleted(clock(h.Now))
	if err := unit.Properties().Delete(ctx, property.ID); err != nil {
		return struct{}{}, err
	}
	if err := outbox.Record(ctx, h.Outbox, h.Encoder, property); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, managed.Commit()
}

// Register attaches the catalog write handlers to bus.
func (h *CommandHandlers) Register(bus *commands.InMemoryBus) {
	commands.RegisterHandler[CreatePropertyCommand, *dto.Property](bus, createPropertyKey, commands.HandlerFunc[CreatePropertyCommand, *dto.Property](h.Create))
	commands.RegisterHandler[UpdatePropertyCommand, *dto.Property](bus, updatePropertyKey, commands.HandlerFunc[UpdatePropertyCommand, *dto.Property](h.Update))
	commands.RegisterHandler[DeletePropertyCommand, struct{}](bus, deletePropertyKey, commands.HandlerFunc[DeletePropertyCommand, struct{}](h.Delete))
}

var _ middleware.RoleRestricted = CreatePropertyCommand{}
var _ middleware.RoleRestricted = UpdatePropertyCommand{}
var _ middleware.RoleRestricted = DeletePropertyCommand{}
