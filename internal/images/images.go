// Package images normalizes uploaded photos before they reach object
// storage: it enforces the size ceiling, downscales wide images, and
// re-encodes everything as JPEG.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// MaxUploadBytes is the ceiling for a raw upload
	MaxUploadBytes = 5 << 20

	// MaxWidth is the widest stored image; wider uploads are downscaled
	MaxWidth = 800

	jpegQuality = 70
)

var (
	ErrTooLarge    = errors.New("image exceeds the 5 MiB upload limit")
	ErrUnsupported = errors.New("unsupported image format")
	ErrEmptyUpload = errors.New("upload is empty")
)

// Result is a normalized image ready for storage
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Encode validates, downscales, and re-encodes an uploaded image.
// Input may be JPEG, PNG, or GIF; output is always JPEG.
func Encode(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > MaxWidth {
		scaledHeight := height * MaxWidth / width
		if scaledHeight < 1 {
			scaledHeight = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, MaxWidth, scaledHeight))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		width = MaxWidth
		height = scaledHeight
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       width,
		Height:      height,
	}, nil
}
