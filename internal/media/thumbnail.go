package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
)

// Thumbnail bounds and quality
const (
	ThumbnailSize    = 400
	ThumbnailQuality = 85
)

// ErrUnsupportedImage is returned when the upload is not a decodable image
var ErrUnsupportedImage = errors.New("unsupported image format")

// Image is a decoded upload together with its JPEG thumbnail
type Image struct {
	Format    string
	Width     int
	Height    int
	Thumbnail []byte
}

// Process decodes r and renders a JPEG thumbnail that fits in
// ThumbnailSize x ThumbnailSize, keeping the aspect ratio.
func Process(r io.Reader) (*Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	bounds := img.Bounds()
	thumb := resize.Thumbnail(ThumbnailSize, ThumbnailSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: ThumbnailQuality}); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}

	return &Image{
		Format:    format,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Thumbnail: buf.Bytes(),
	}, nil
}

// ContentType maps a decoder format name to a MIME type
func ContentType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	}
	return "application/octet-stream"
}
