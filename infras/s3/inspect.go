package s3

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

var ErrNotImage = errors.New("payload is not a decodable image")

// ImageInfo is what can be learned about an upload without decoding its pixels.
type ImageInfo struct {
	Width       int
	Height      int
	Format      string
	ContentType string
	Bytes       int64
}

// Inspect sniffs the content type and reads the image header of data.
func Inspect(data []byte) (ImageInfo, error) {
	info := ImageInfo{
		ContentType: mimetype.Detect(data).String(),
		Bytes:       int64(len(data)),
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return info, fmt.Errorf("%w (%s): %w", ErrNotImage, info.ContentType, err)
	}

	info.Width = cfg.Width
	info.Height = cfg.Height
	info.Format = format

	return info, nil
}
