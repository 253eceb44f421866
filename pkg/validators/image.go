package validators

import (
	"bytes"
	"errors"
	"image"
	"slices"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/spf13/viper"
)

var (
	ErrImageEmpty       = errors.New("empty file provided")
	ErrImageInvalid     = errors.New("file is not a valid image")
	ErrImageWrongFormat = errors.New("image format is not allowed")
)

// ImageValidator checks that raw decodes as an image of an allowed
// type and returns its dimensions and sniffed MIME type. The MIME type
// is taken from the bytes, never from what the client claims.
func ImageValidator(raw []byte) (width, height int, mime string, err error) {
	if len(raw) == 0 {
		return 0, 0, "", ErrImageEmpty
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, "", ErrImageInvalid
	}

	mime = "image/" + format

	allowed := viper.GetStringSlice("upload.allowed_types")
	if len(allowed) > 0 && !slices.Contains(allowed, mime) {
		return 0, 0, "", ErrImageWrongFormat
	}

	return cfg.Width, cfg.Height, mime, nil
}
