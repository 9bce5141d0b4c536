package properties

import (
	"time"

	"homestay/internal/app/dto"
	domainproperties "homestay/internal/domain/properties"
	"homestay/internal/domain/shared/fault"
	"homestay/internal/domain/shared/money"
	domainuser "homestay/internal/domain/user"
)

// PropertyPatch is the wire form of a partial update. Absent fields stay nil.
type PropertyPatch struct {
	Name          *string             `json:"name" validate:"omitempty,max=200"`
	Description   *string             `json:"description" validate:"omitempty,max=5000"`
	Address       *string             `json:"address"`
	Location      *dto.GeoPoint       `json:"location"`
	Amenities     *[]string           `json:"amenities"`
	RoomTypes     *[]dto.RoomType     `json:"room_types"`
	BaseRate      *dto.MoneyDTO       `json:"base_rate"`
	SeasonalRates *[]dto.SeasonalRate `json:"seasonal_rates"`
	Images        *[]string           `json:"images"`
	Status        *string             `json:"status" validate:"omitempty,oneof=active inactive under_construction"`
}

func (p PropertyPatch) domain() (domainproperties.Patch, error) {
	out := domainproperties.Patch{
		Name:        p.Name,
		Description: p.Description,
		Address:     p.Address,
		Amenities:   p.Amenities,
		Images:      p.Images,
	}
	if p.Location != nil {
		loc := geoPoint(*p.Location)
		out.Location = &loc
	}
	if p.RoomTypes != nil {
		rooms := roomTypes(*p.RoomTypes)
		out.RoomTypes = &rooms
	}
	if p.BaseRate != nil {
		rate, err := baseRate(*p.BaseRate)
		if err != nil {
			return domainproperties.Patch{}, err
		}
		out.BaseRate = &rate
	}
	if p.SeasonalRates != nil {
		seasons, err := seasonalRates(*p.SeasonalRates)
		if err != nil {
			return domainproperties.Patch{}, err
		}
		out.SeasonalRates = &seasons
	}
	if p.Status != nil {
		status := domainproperties.Status(*p.Status)
		out.Status = &status
	}
	return out, nil
}

func geoPoint(g dto.GeoPoint) domainproperties.GeoPoint {
	return domainproperties.GeoPoint{Lat: g.Lat, Lng: g.Lng}
}

func roomTypes(in []dto.RoomType) []domainproperties.RoomType {
	out := make([]domainproperties.RoomType, 0, len(in))
	for _, rt := range in {
		out = append(out, domainproperties.RoomType{Name: rt.Name, Beds: rt.Beds, MaxOccupancy: rt.MaxOccupancy})
	}
	return out
}

func baseRate(m dto.MoneyDTO) (money.Money, error) {
	rate, err := m.Domain()
	if err != nil {
		return money.Money{}, fault.Wrap(fault.InvalidInput, "properties: invalid base rate", err)
	}
	return rate, nil
}

func seasonalRates(in []dto.SeasonalRate) ([]domainproperties.SeasonalRate, error) {
	out := make([]domainproperties.SeasonalRate, 0, len(in))
	for _, s := range in {
		from, err := time.Parse(time.DateOnly, s.From)
		if err != nil {
			return nil, domainproperties.ErrInvalidSeason
		}
		to, err := time.Parse(time.DateOnly, s.To)
		if err != nil {
			return nil, domainproperties.ErrInvalidSeason
		}
		rate, err := s.Rate.Domain()
		if err != nil {
			return nil, domainproperties.ErrInvalidSeason
		}
		out = append(out, domainproperties.SeasonalRate{Name: s.Name, From: from, To: to, Rate: rate})
	}
	return out, nil
}

// canManage reports whether the actor may change the property.
func canManage(p *domainproperties.Property, actor domainuser.ID, role domainuser.Role) bool {
	return role == domainuser.RoleAdmin || p.OwnedBy(actor)
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

var hostRoles = []domainuser.Role{domainuser.RoleHost, domainuser.RoleAdmin}
