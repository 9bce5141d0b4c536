package properties

import (
	"context"
	"net/url"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainproperties "homestay/internal/domain/properties"
)

const (
	getPropertyKey      = "properties.get"
	searchPropertiesKey = "properties.search"
)

type GetPropertyQuery struct {
	PropertyID string `validate:"required"`
}

func (q GetPropertyQuery) Key() string { return getPropertyKey }

// SearchPropertiesQuery carries the raw URL parameters of a catalog search.
type SearchPropertiesQuery struct {
	Params url.Values
}

func (q SearchPropertiesQuery) Key() string { return searchPropertiesKey }

type QueryHandlers struct {
	UoWFactory uow.UoWFactory
}

func (h *QueryHandlers) Get(ctx context.Context, q GetPropertyQuery) (dto.Property, error) {
	unit, ctx, managed, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Property{}, err
	}
	defer managed.Close()

	property, err := unit.Properties().ByID(ctx, domainproperties.ID(q.PropertyID))
	if err != nil {
		return dto.Property{}, err
	}
	return dto.MapProperty(property), nil
}

func (h *QueryHandlers) Search(ctx context.Context, q SearchPropertiesQuery) (dto.PropertyPage, error) {
	parsed, err := domainproperties.ParseQuery(q.Params)
	if err != nil {
		return dto.PropertyPage{}, err
	}

	unit, ctx, managed, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PropertyPage{}, err
	}
	defer managed.Close()

	result, err := unit.Properties().Search(ctx, parsed)
	if err != nil {
		return dto.PropertyPage{}, err
	}
	return dto.MapPropertyPage(result, parsed), nil
}

// Register attaches the catalog read handlers to bus.
func (h *QueryHandlers) Register(bus *queries.InMemoryBus) {
	queries.RegisterHandler[GetPropertyQuery, dto.Property](bus, getPropertyKey, queries.HandlerFunc[GetPropertyQuery, dto.Property](h.Get))
	queries.RegisterHandler[SearchPropertiesQuery, dto.PropertyPage](bus, searchPropertiesKey, queries.HandlerFunc[SearchPropertiesQuery, dto.PropertyPage](h.Search))
}
