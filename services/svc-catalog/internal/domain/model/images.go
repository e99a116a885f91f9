package model

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const MaxImageSize int64 = 10 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type Image struct {
	ID          ImageID
	ProductID   ProductID
	ObjectKey   string
	ContentType string
	Size        int64
	CreatedAt   time.Time

	// URL is a presigned download link, filled on read.
	URL string
}

func NewImage(productID ProductID, contentType string, size int64) (*Image, error) {
	errs := NewValidationErrors()

	contentType = strings.ToLower(strings.TrimSpace(contentType))

	ext, ok := allowedImageTypes[contentType]
	if !ok {
		errs.Add("file", fmt.Sprintf("unsupported content type %q", contentType), "INVALID_TYPE")
	}

	if size <= 0 || size > MaxImageSize {
		errs.Add("file", "image must be between 1 byte and 10 MiB", "OUT_OF_RANGE")
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	id := NewImageID()

	return &Image{
		ID:          id,
		ProductID:   productID,
		ObjectKey:   path.Join("products", productID.String(), id.String()+ext),
		ContentType: contentType,
		Size:        size,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
