package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes bounds a decoded recipe image.
const MaxImageBytes = 10 << 20

var (
	ErrNotDataURI   = errors.New("image must be a base64 data URI")
	ErrNotImage     = errors.New("uploaded file is not an image")
	ErrImageTooBig  = fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	ErrEmptyPayload = errors.New("image is empty")
)

// ImageStore persists recipe images and returns the reference stored on the recipe.
type ImageStore interface {
	Save(ctx context.Context, data []byte, ext string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeDataURI parses "data:image/png;base64,...." and sniffs the payload.
// The declared media type is not trusted; the bytes decide.
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(uri), ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrNotDataURI
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return nil, ErrImageTooBig
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDataURI, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooBig
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, ErrNotImage
	}
	return &Image{Data: data, ContentType: mt.String(), Extension: mt.Extension()}, nil
}
