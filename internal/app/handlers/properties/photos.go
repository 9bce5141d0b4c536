package properties

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/middleware"
	"homestay/internal/app/outbox"
	"homestay/internal/app/policies"
	"homestay/internal/app/uow"
	domainproperties "homestay/internal/domain/properties"
	"homestay/internal/domain/shared/fault"
	domainuser "homestay/internal/domain/user"
)

const uploadPhotoKey = "properties.upload_photo"

var (
	ErrUnsupportedPhoto = fault.New(fault.InvalidInput, "properties: photo must be an image")
	errNoPhotoStorage   = errors.New("properties: photo storage not configured")
)

type UploadPhotoCommand struct {
	PropertyID  string          `validate:"required"`
	ActorID     string          `validate:"required"`
	Role        domainuser.Role `validate:"required"`
	FileName    string          `validate:"required"`
	ContentType string          `validate:"required"`
	Body        io.Reader       `validate:"required"`
}

func (c UploadPhotoCommand) Key() string                      { return uploadPhotoKey }
func (c UploadPhotoCommand) RequiredRoles() []domainuser.Role { return hostRoles }
func (c UploadPhotoCommand) ActorRole() domainuser.Role       { return c.Role }

// UploadPhotoHandler stores the image and appends its URL to the property.
type UploadPhotoHandler struct {
	UoWFactory uow.UoWFactory
	Storage    policies.PhotoStorage
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UploadPhotoHandler) Handle(ctx context.Context, cmd UploadPhotoCommand) (*dto.Property, error) {
	if !strings.HasPrefix(strings.ToLower(cmd.ContentType), "image/") {
		return nil, ErrUnsupportedPhoto
	}
	if h.Storage == nil {
		return nil, errNoPhotoStorage
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

	key := "properties/" + string(property.ID) + "/" + uuid.NewString() + strings.ToLower(path.Ext(cmd.FileName))
	url, err := h.Storage.Upload(ctx, key, cmd.Body, cmd.ContentType)
	if err != nil {
		return nil, err
	}
	property.AddImage(url, clock(h.Now))
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

var _ commands.Handler[UploadPhotoCommand, *dto.Property] = (*UploadPhotoHandler)(nil)
var _ middleware.RoleRestricted = UploadPhotoCommand{}
