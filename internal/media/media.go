// Package media stores event images with an external provider and returns
// their public URLs.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/ayushbhandari/event-tickets/internal/apperr"
)

const DefaultFolder = "events"

var (
	ErrUnsupportedImage = apperr.New(apperr.ErrValidation, "Image must be jpg, jpeg, png or gif")
	ErrEmptyImage       = apperr.New(apperr.ErrValidation, "Image is empty")
	ErrDisabled         = fmt.Errorf("%w: image uploads are not configured", apperr.ErrUpstream)
)

// allowed maps accepted MIME types to the provider format name.
var allowed = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// Uploader stores an image and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Sniff reads the whole image, checks its content type and returns the
// bytes with the detected format.
func Sniff(r io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if format, ok := allowed[m.String()]; ok {
			return data, format, nil
		}
	}
	return nil, "", ErrUnsupportedImage
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	if folder == "" {
		folder = DefaultFolder
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, format, err := Sniff(r)
	if err != nil {
		return "", err
	}

	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:         c.folder,
		AllowedFormats: []string{"jpg", "jpeg", "png", "gif"},
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload image: %w", apperr.ErrUpstream, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("%w: upload image: %s", apperr.ErrUpstream, res.Error.Message)
	}

	zerolog.Ctx(ctx).Debug().
		Str("filename", filename).
		Str("format", format).
		Str("public_id", res.PublicID).
		Msg("image uploaded")
	return res.SecureURL, nil
}

// Disabled rejects every upload. It stands in when no provider credentials
// are configured so the rest of the API keeps working.
type Disabled struct{}

func (Disabled) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if _, _, err := Sniff(r); err != nil {
		return "", err
	}
	return "", ErrDisabled
}

// IsInvalidImage reports whether err means the submitted file itself is
// unusable, as opposed to a provider failure.
func IsInvalidImage(err error) bool {
	return errors.Is(err, ErrUnsupportedImage) || errors.Is(err, ErrEmptyImage)
}
