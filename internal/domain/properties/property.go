package properties

import (
	"context"
	"strings"
	"time"

	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/fault"
	"homestay/internal/domain/shared/money"
	"homestay/internal/domain/user"
)

var (
	ErrNotFound         = fault.New(fault.NotFound, "properties: property not found")
	ErrIDRequired       = fault.New(fault.InvalidInput, "properties: id is required")
	ErrHostRequired     = fault.New(fault.InvalidInput, "properties: host is required")
	ErrNameRequired     = fault.New(fault.InvalidInput, "properties: name is required")
	ErrAddressRequired  = fault.New(fault.InvalidInput, "properties: address is required")
	ErrBaseRateRequired = fault.New(fault.InvalidInput, "properties: base rate must be positive")
	ErrInvalidLocation  = fault.New(fault.InvalidInput, "properties: location is out of range")
	ErrInvalidRoomType  = fault.New(fault.InvalidInput, "properties: room type needs a name and occupancy of at least 1")
	ErrInvalidSeason    = fault.New(fault.InvalidInput, "properties: seasonal rate needs a valid date range")
	ErrInvalidStatus    = fault.New(fault.InvalidInput, "properties: invalid status")
	ErrInvalidRating    = fault.New(fault.InvalidInput, "properties: rating aggregate out of range")
	ErrNotOwner         = fault.New(fault.Forbidden, "properties: only the owning host may modify this property")
	ErrConcurrentUpdate = fault.New(fault.Conflict, "properties: concurrent update detected")
)

type ID string

type Status string

const (
	StatusActive            Status = "active"
	StatusInactive          Status = "inactive"
	StatusUnderConstruction Status = "under_construction"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return StatusActive, nil
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	case StatusUnderConstruction:
		return StatusUnderConstruction, nil
	default:
		return "", ErrInvalidStatus
	}
}

type GeoPoint struct {
	Lat float64
	Lng float64
}

func (g GeoPoint) Valid() bool {
	return g.Lat >= -90 && g.Lat <= 90 && g.Lng >= -180 && g.Lng <= 180
}

type RoomType struct {
	Name         string
	Beds         int
	MaxOccupancy int
}

// SeasonalRate is kept with the property but never applied to booking prices.
type SeasonalRate struct {
	Name string
	From time.Time
	To   time.Time
	Rate money.Money
}

type Property struct {
	ID            ID
	HostID        user.ID
	Name          string
	Description   string
	Address       string
	Location      GeoPoint
	Amenities     []string
	RoomTypes     []RoomType
	BaseRate      money.Money
	SeasonalRates []SeasonalRate
	Images        []string
	Status        Status
	AverageRating float64
	NumReviews    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64

	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Property, error)
	// Lock serializes writers of the property (its bookings and its rating)
	// until the surrounding unit of work ends.
	Lock(ctx context.Context, id ID) error
	Save(ctx context.Context, property *Property) error
	Delete(ctx context.Context, id ID) error
	Search(ctx context.Context, query Query) (SearchResult, error)
	ListByHost(ctx context.Context, host user.ID) ([]*Property, error)
}

type CreateParams struct {
	ID            ID
	HostID        user.ID
	Name          string
	Description   string
	Address       string
	Location      GeoPoint
	Amenities     []string
	RoomTypes     []RoomType
	BaseRate      money.Money
	SeasonalRates []SeasonalRate
	Images        []string
	Status        Status
	Now           time.Time
}

func NewProperty(params CreateParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.HostID)) == "" {
		return nil, ErrHostRequired
	}
	status, err := ParseStatus(string(params.Status))
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	p := &Property{
		ID:            params.ID,
		HostID:        params.HostID,
		Name:          strings.TrimSpace(params.Name),
		Description:   strings.TrimSpace(params.Description),
		Address:       strings.TrimSpace(params.Address),
		Location:      params.Location,
		Amenities:     normalizeAmenities(params.Amenities),
		RoomTypes:     append([]RoomType(nil), params.RoomTypes...),
		BaseRate:      params.BaseRate,
		SeasonalRates: append([]SeasonalRate(nil), params.SeasonalRates...),
		Images:        append([]string(nil), params.Images...),
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.Record(Created{Base: events.Base{Name: EventCreated, Aggregate: string(p.ID), Time: now}, HostID: string(p.HostID)})
	return p, nil
}

// OwnedBy reports whether userID is the listing host.
func (p *Property) OwnedBy(userID user.ID) bool {
	return p.HostID == userID
}

// Patch carries an explicit partial update. Nil fields keep their current value.
type Patch struct {
	Name          *string
	Description   *string
	Address       *string
	Location      *GeoPoint
	Amenities     *[]string
	RoomTypes     *[]RoomType
	BaseRate      *money.Money
	SeasonalRates *[]SeasonalRate
	Images        *[]string
	Status        *Status
}

func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply merges patch into the property. On validation failure the property is left unchanged.
func (p *Property) Apply(patch Patch, now time.Time) error {
	next := *p
	next.EventRecorder = events.EventRecorder{}
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Address != nil {
		next.Address = strings.TrimSpace(*patch.Address)
	}
	if patch.Location != nil {
		next.Location = *patch.Location
	}
	if patch.Amenities != nil {
		next.Amenities = normalizeAmenities(*patch.Amenities)
	}
	if patch.RoomTypes != nil {
		next.RoomTypes = append([]RoomType(nil), (*patch.RoomTypes)...)
	}
	if patch.BaseRate != nil {
		next.BaseRate = *patch.BaseRate
	}
	if patch.SeasonalRates != nil {
		next.SeasonalRates = append([]SeasonalRate(nil), (*patch.SeasonalRates)...)
	}
	if patch.Images != nil {
		next.Images = append([]string(nil), (*patch.Images)...)
	}
	if patch.Status != nil {
		status, err := ParseStatus(string(*patch.Status))
		if err != nil {
			return err
		}
		next.Status = status
	}
	if err := next.validate(); err != nil {
		return err
	}

	p.Name = next.Name
	p.Description = next.Description
	p.Address = next.Address
	p.Location = next.Location
	p.Amenities = next.Amenities
	p.RoomTypes = next.RoomTypes
	p.BaseRate = next.BaseRate
	p.SeasonalRates = next.SeasonalRates
	p.Images = next.Images
	p.Status = next.Status
	p.touch(now)
	p.Record(Updated{Base: events.Base{Name: EventUpdated, Aggregate: string(p.ID), Time: p.UpdatedAt}})
	return nil
}

func (p *Property) AddImage(url string, now time.Time) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	p.Images = append(p.Images, url)
	p.touch(now)
}

// SetRating overwrites the aggregate with a value derived from the review set.
func (p *Property) SetRating(average float64, count int, now time.Time) error {
	if average < 0 || average > 5 || count < 0 || (count == 0 && average != 0) {
		return ErrInvalidRating
	}
	p.AverageRating = average
	p.NumReviews = count
	p.touch(now)
	p.Record(RatingChanged{
		Base:          events.Base{Name: EventRatingChanged, Aggregate: string(p.ID), Time: p.UpdatedAt},
		AverageRating: average,
		NumReviews:    count,
	})
	return nil
}

// MarkDeleted records the deletion event; the repository removes the document.
func (p *Property) MarkDeleted(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	p.Record(Deleted{Base: events.Base{Name: EventDeleted, Aggregate: string(p.ID), Time: now.UTC()}, HostID: string(p.HostID)})
}

func (p *Property) validate() error {
	switch {
	case p.Name == "":
		return ErrNameRequired
	case p.Address == "":
		return ErrAddressRequired
	case p.BaseRate.Amount <= 0 || p.BaseRate.Currency == "":
		return ErrBaseRateRequired
	case !p.Location.Valid():
		return ErrInvalidLocation
	}
	for _, rt := range p.RoomTypes {
		if strings.TrimSpace(rt.Name) == "" || rt.MaxOccupancy < 1 || rt.Beds < 0 {
			return ErrInvalidRoomType
		}
	}
	for _, season := range p.SeasonalRates {
		if season.From.IsZero() || !season.To.After(season.From) || season.Rate.Amount < 0 {
			return ErrInvalidSeason
		}
	}
	return nil
}

func (p *Property) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	p.UpdatedAt = now.UTC()
}

func normalizeAmenities(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
