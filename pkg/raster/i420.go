package raster

import "image/color"

// FrameI420 is a planar 8-bit 4:2:0 frame. The planes share one contiguous
// backing buffer in Y, Cb, Cr order, which is the layout the encoder consumes.
type FrameI420 struct {
	Width  int
	Height int

	Data []byte // Y plane, then Cb, then Cr.

	Y  []byte
	Cb []byte
	Cr []byte
}

// NewFrameI420 allocates a zeroed frame.
func NewFrameI420(width, height int) *FrameI420 {
	cw := (width + 1) / 2
	ch := (height + 1) / 2

	ySize := width * height
	cSize := cw * ch

	data := make([]byte, ySize+2*cSize)
	return &FrameI420{
		Width:  width,
		Height: height,
		Data:   data,
		Y:      data[:ySize],
		Cb:     data[ySize : ySize+cSize],
		Cr:     data[ySize+cSize:],
	}
}

// ToI420 converts the image to a planar 4:2:0 frame. Luma is sampled per
// pixel, chroma is averaged over each 2x2 block.
func (p *RGB24) ToI420() *FrameI420 {
	width := p.Rect.Dx()
	height := p.Rect.Dy()
	frame := NewFrameI420(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := p.RGB24At(p.Rect.Min.X+x, p.Rect.Min.Y+y)
			yy, _, _ := color.RGBToYCbCr(c.R, c.G, c.B)
			frame.Y[y*width+x] = yy
		}
	}

	cw := (width + 1) / 2
	for cy := 0; cy < (height+1)/2; cy++ {
		for cx := 0; cx < cw; cx++ {
			var sumCb, sumCr, n uint32
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					x := cx*2 + dx
					y := cy*2 + dy
					if x >= width || y >= height {
						continue
					}
					c := p.RGB24At(p.Rect.Min.X+x, p.Rect.Min.Y+y)
					_, cb, cr := color.RGBToYCbCr(c.R, c.G, c.B)
					sumCb += uint32(cb)
					sumCr += uint32(cr)
					n++
				}
			}
			frame.Cb[cy*cw+cx] = uint8(sumCb / n)
			frame.Cr[cy*cw+cx] = uint8(sumCr / n)
		}
	}

	return frame
}
