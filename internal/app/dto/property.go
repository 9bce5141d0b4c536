package dto

import (
	"time"

	domainproperties "homestay/internal/domain/properties"
)

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type RoomType struct {
	Name         string `json:"name"`
	Beds         int    `json:"beds"`
	MaxOccupancy int    `json:"max_occupancy"`
}

type SeasonalRate struct {
	Name string   `json:"name"`
	From string   `json:"from"`
	To   string   `json:"to"`
	Rate MoneyDTO `json:"rate"`
}

type Property struct {
	ID            string         `json:"id"`
	HostID        string         `json:"host_id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Address       string         `json:"address"`
	Location      GeoPoint       `json:"location"`
	Amenities     []string       `json:"amenities"`
	RoomTypes     []RoomType     `json:"room_types"`
	BaseRate      MoneyDTO       `json:"base_rate"`
	SeasonalRates []SeasonalRate `json:"seasonal_rates"`
	Images        []string       `json:"images"`
	Status        string         `json:"status"`
	AverageRating float64        `json:"average_rating"`
	NumReviews    int            `json:"num_reviews"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type PropertyPage struct {
	Items      []map[string]any            `json:"items"`
	Count      int                         `json:"count"`
	Total      int                         `json:"total"`
	Pagination domainproperties.Pagination `json:"pagination"`
}

func MapProperty(p *domainproperties.Property) Property {
	if p == nil {
		return Property{}
	}
	out := Property{
		ID:            string(p.ID),
		HostID:        string(p.HostID),
		Name:          p.Name,
		Description:   p.Description,
		Address:       p.Address,
		Location:      GeoPoint{Lat: p.Location.Lat, Lng: p.Location.Lng},
		Amenities:     append([]string{}, p.Amenities...),
		RoomTypes:     make([]RoomType, 0, len(p.RoomTypes)),
		BaseRate:      MapMoney(p.BaseRate),
		SeasonalRates: make([]SeasonalRate, 0, len(p.SeasonalRates)),
		Images:        append([]string{}, p.Images...),
		Status:        string(p.Status),
		AverageRating: p.AverageRating,
		NumReviews:    p.NumReviews,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for _, rt := range p.RoomTypes {
		out.RoomTypes = append(out.RoomTypes, RoomType{Name: rt.Name, Beds: rt.Beds, MaxOccupancy: rt.MaxOccupancy})
	}
	for _, s := range p.SeasonalRates {
		out.SeasonalRates = append(out.SeasonalRates, SeasonalRate{
			Name: s.Name,
			From: s.From.Format(time.DateOnly),
			To:   s.To.Format(time.DateOnly),
			Rate: MapMoney(s.Rate),
		})
	}
	return out
}

// ProjectProperty renders the selected fields of a property. The id is
// always present; an empty selection returns every field.
func ProjectProperty(p Property, fields []string) map[string]any {
	all := map[string]any{
		"id":             p.ID,
		"host_id":        p.HostID,
		"name":           p.Name,
		"description":    p.Description,
		"address":        p.Address,
		"location":       p.Location,
		"amenities":      p.Amenities,
		"room_types":     p.RoomTypes,
		"base_rate":      p.BaseRate,
		"seasonal_rates": p.SeasonalRates,
		"images":         p.Images,
		"status":         p.Status,
		"average_rating": p.AverageRating,
		"num_reviews":    p.NumReviews,
		"created_at":     p.CreatedAt,
		"updated_at":     p.UpdatedAt,
	}
	if len(fields) == 0 {
		return all
	}
	out := map[string]any{"id": p.ID}
	for _, f := range fields {
		if v, ok := all[f]; ok {
			out[f] = v
		}
	}
	return out
}

func MapPropertyPage(result domainproperties.SearchResult, q domainproperties.Query) PropertyPage {
	page := PropertyPage{
		Items:      make([]map[string]any, 0, len(result.Items)),
		Count:      len(result.Items),
		Total:      result.Total,
		Pagination: q.Paginate(result.Total),
	}
	for _, p := range result.Items {
		page.Items = append(page.Items, ProjectProperty(MapProperty(p), q.Select))
	}
	return page
}
