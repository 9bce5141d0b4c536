package dto

import (
	"time"

	domainbooking "homestay/internal/domain/booking"
	domainproperties "homestay/internal/domain/properties"
	domainuser "homestay/internal/domain/user"
)

type Booking struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	TravelerID string    `json:"traveler_id"`
	HostID     string    `json:"host_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Nights     int       `json:"nights"`
	TotalPrice MoneyDTO  `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type BookingPropertySnapshot struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address,omitempty"`
	Images  []string `json:"images,omitempty"`
}

type BookingTravelerSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type TravelerBookingSummary struct {
	Booking
	Property BookingPropertySnapshot `json:"property"`
}

type TravelerBookingCollection struct {
	Items []TravelerBookingSummary `json:"items"`
}

type HostBookingSummary struct {
	Booking
	Property BookingPropertySnapshot `json:"property"`
	Traveler BookingTravelerSnapshot `json:"traveler"`
}

type HostBookingCollection struct {
	Items []HostBookingSummary `json:"items"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	return Booking{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		TravelerID: string(b.TravelerID),
		HostID:     string(b.HostID),
		StartDate:  b.Range.Start.Format(time.DateOnly),
		EndDate:    b.Range.End.Format(time.DateOnly),
		Nights:     b.Nights,
		TotalPrice: MapMoney(b.TotalPrice),
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func MapBookingProperty(id domainproperties.ID, p *domainproperties.Property) BookingPropertySnapshot {
	snapshot := BookingPropertySnapshot{ID: string(id)}
	if p != nil {
		snapshot.Name = p.Name
		snapshot.Address = p.Address
		snapshot.Images = append([]string(nil), p.Images...)
	}
	return snapshot
}

func MapBookingTraveler(id domainuser.ID, u *domainuser.User) BookingTravelerSnapshot {
	snapshot := BookingTravelerSnapshot{ID: string(id)}
	if u != nil {
		snapshot.Name = u.Name
		snapshot.Email = u.Email
		snapshot.AvatarURL = u.AvatarURL
	}
	return snapshot
}
