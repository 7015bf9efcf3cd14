package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, jpeg.Encode(buf, img, nil))
	return buf.Bytes()
}

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDecode(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		buf := encodePNG(t, solidImage(4, 2, color.RGBA{255, 0, 0, 255}))

		img, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, 4, img.Width())
		require.Equal(t, 2, img.Height())
		require.Equal(t, RGB{255, 0, 0}, img.RGB24At(3, 1))
	})
	t.Run("jpeg", func(t *testing.T) {
		buf := encodeJPEG(t, solidImage(64, 48, color.RGBA{0, 0, 0, 255}))

		img, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, 64, img.Width())
		require.Equal(t, 48, img.Height())
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := Decode([]byte("not an image"))
		require.ErrorIs(t, err, ErrImageDecode)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := Decode(nil)
		require.ErrorIs(t, err, ErrImageDecode)
	})
}

func TestToI420(t *testing.T) {
	t.Run("white", func(t *testing.T) {
		img := NewRGB24(image.Rect(0, 0, 4, 4))
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				img.SetRGB24(x, y, RGB{255, 255, 255})
			}
		}

		frame := img.ToI420()
		require.Equal(t, 4, frame.Width)
		require.Equal(t, 4, frame.Height)
		require.Len(t, frame.Y, 16)
		require.Len(t, frame.Cb, 4)
		require.Len(t, frame.Cr, 4)
		require.Len(t, frame.Data, 24)

		for _, v := range frame.Y {
			require.Equal(t, uint8(255), v)
		}
		for i := range frame.Cb {
			require.Equal(t, uint8(128), frame.Cb[i])
			require.Equal(t, uint8(128), frame.Cr[i])
		}
	})
	t.Run("oddDimensions", func(t *testing.T) {
		img := NewRGB24(image.Rect(0, 0, 3, 5))

		frame := img.ToI420()
		require.Len(t, frame.Y, 15)
		require.Len(t, frame.Cb, 2*3)
		require.Len(t, frame.Cr, 2*3)
	})
	t.Run("planesShareBuffer", func(t *testing.T) {
		img := NewRGB24(image.Rect(0, 0, 2, 2))
		img.SetRGB24(0, 0, RGB{255, 255, 255})

		frame := img.ToI420()
		require.Equal(t, frame.Data[0], frame.Y[0])
		require.Equal(t, frame.Data[4], frame.Cb[0])
		require.Equal(t, frame.Data[5], frame.Cr[0])
	})
}
