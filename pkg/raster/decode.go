// Package raster decodes still images and converts them to encoder input frames.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Formats recognized by content sniffing. The payloads carry no file
	// names, so registration is the only way a format can be detected.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrImageDecode image bytes could not be decoded.
var ErrImageDecode = errors.New("could not decode image")

// Decode sniffs the image format from buf and decodes it to a full-color
// raster.
func Decode(buf []byte) (*RGB24, error) {
	img, format, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: %v image has zero dimension", ErrImageDecode, format)
	}

	if rgb, ok := img.(*RGB24); ok {
		return rgb, nil
	}

	rgb := NewRGB24(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rgb.SetRGB24(x-bounds.Min.X, y-bounds.Min.Y, RGB{
				uint8(r >> 8),
				uint8(g >> 8),
				uint8(b >> 8),
			})
		}
	}
	return rgb, nil
}
