package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	availabilityapp "homestay/internal/app/handlers/availability"
	propertyapp "homestay/internal/app/handlers/properties"
	"homestay/internal/app/queries"
	"homestay/internal/domain/shared/fault"
)

const maxPhotoBytes = 10 << 20

var errPhotoMissing = fault.New(fault.InvalidInput, "photo file is required")

type PropertyHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createPropertyRequest struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Address       string             `json:"address"`
	Location      dto.GeoPoint       `json:"location"`
	Amenities     []string           `json:"amenities"`
	RoomTypes     []dto.RoomType     `json:"room_types"`
	BaseRate      dto.MoneyDTO       `json:"base_rate"`
	SeasonalRates []dto.SeasonalRate `json:"seasonal_rates"`
	Images        []string           `json:"images"`
	Status        string             `json:"status"`
}

func (h PropertyHandler) Search(c *gin.Context) {
	query := propertyapp.SearchPropertiesQuery{Params: c.Request.URL.Query()}
	result, err := queries.Ask[propertyapp.SearchPropertiesQuery, dto.PropertyPage](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Get(c *gin.Context) {
	query := propertyapp.GetPropertyQuery{PropertyID: strings.TrimSpace(c.Param("id"))}
	result, err := queries.Ask[propertyapp.GetPropertyQuery, dto.Property](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cmd := propertyapp.CreatePropertyCommand{
		PropertyID:    uuid.NewString(),
		HostID:        p.ID,
		Role:          p.Role,
		Name:          req.Name,
		Description:   req.Description,
		Address:       req.Address,
		Location:      req.Location,
		Amenities:     req.Amenities,
		RoomTypes:     req.RoomTypes,
		BaseRate:      req.BaseRate,
		SeasonalRates: req.SeasonalRates,
		Images:        req.Images,
		Status:        req.Status,
	}
	result, err := commands.Dispatch[propertyapp.CreatePropertyCommand, *dto.Property](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h PropertyHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var patch propertyapp.PropertyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}
	cmd := propertyapp.UpdatePropertyCommand{
		PropertyID: strings.TrimSpace(c.Param("id")),
		ActorID:    p.ID,
		Role:       p.Role,
		Patch:      patch,
	}
	result, err := commands.Dispatch[propertyapp.UpdatePropertyCommand, *dto.Property](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := propertyapp.DeletePropertyCommand{
		PropertyID: strings.TrimSpace(c.Param("id")),
		ActorID:    p.ID,
		Role:       p.Role,
	}
	if _, err := commands.Dispatch[propertyapp.DeletePropertyCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhoto accepts a multipart form with the image in the "photo" field.
func (h PropertyHandler) UploadPhoto(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes)
	header, err := c.FormFile("photo")
	if err != nil {
		respondError(c, nil, fault.Wrap(fault.InvalidInput, errPhotoMissing.Message(), err))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer file.Close()

	cmd := propertyapp.UploadPhotoCommand{
		PropertyID:  strings.TrimSpace(c.Param("id")),
		ActorID:     p.ID,
		Role:        p.Role,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	result, err := commands.Dispatch[propertyapp.UploadPhotoCommand, *dto.Property](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Availability returns booked nights in [from, to); both bounds are optional.
func (h PropertyHandler) Availability(c *gin.Context) {
	query := availabilityapp.GetCalendarQuery{PropertyID: strings.TrimSpace(c.Param("id"))}
	if raw := c.Query("from"); raw != "" {
		from, err := parseDate("from", raw)
		if err != nil {
			respondError(c, nil, err)
			return
		}
		query.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDate("to", raw)
		if err != nil {
			respondError(c, nil, err)
			return
		}
		query.To = to
	}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PropertyHTTP = PropertyHandler{}
