// Package storage guarda las imagenes subidas por los usuarios. El resto del
// servicio solo conoce la referencia opaca devuelta por Store.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
)

const ProfilePhotoPrefix = "profile-photos"

var (
	ErrUnsupportedType = errors.New("only images (JPEG, JPG, PNG, GIF) are allowed")
	ErrEmpty           = errors.New("empty upload")
	ErrInvalidRef      = errors.New("invalid blob reference")
)

// BlobStore es la capacidad que consume el servicio de usuarios.
type BlobStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

var allowedImages = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// DetectImage identifica el tipo real por los primeros bytes; el content type
// declarado por el cliente no se usa.
func DetectImage(data []byte) (contentType, ext string, err error) {
	if len(data) == 0 {
		return "", "", ErrEmpty
	}
	mt := mimetype.Detect(data)
	for ct, e := range allowedImages {
		if mt.Is(ct) {
			return ct, e, nil
		}
	}
	return "", "", ErrUnsupportedType
}

// checkType valida los bytes y devuelve el tipo detectado con su extension; el
// content type declarado solo tiene que ser de imagen.
func checkType(data []byte, contentType string) (detected, ext string, err error) {
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return "", "", ErrUnsupportedType
	}
	return DetectImage(data)
}

func newObjectName(ext string) string {
	return ulid.Make().String() + ext
}
