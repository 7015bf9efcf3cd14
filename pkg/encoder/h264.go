package encoder

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/worldEngineDev/mcap-videoify/pkg/raster"
)

// h264Encoder encodes planar frames to an H.264 bitstream through FFmpeg.
type h264Encoder struct {
	codecCtx *astiav.CodecContext
	frame    *astiav.Frame
	pkt      *astiav.Packet

	pts int64
}

// NewH264 creates a H.264 encoder bound to the given dimensions.
func NewH264(width, height int, config Config) (Encoder, error) {
	codec := astiav.FindEncoderByName("libx264")
	if codec == nil {
		codec = astiav.FindEncoder(astiav.CodecIDH264)
	}
	if codec == nil {
		return nil, fmt.Errorf("%w: no h264 encoder available", ErrEncode)
	}

	codecCtx := astiav.AllocCodecContext(codec)
	if codecCtx == nil {
		return nil, fmt.Errorf("%w: alloc codec context", ErrEncode)
	}

	codecCtx.SetWidth(width)
	codecCtx.SetHeight(height)
	codecCtx.SetPixelFormat(astiav.PixelFormatYuv420P)
	codecCtx.SetTimeBase(astiav.NewRational(1, config.FrameRate))
	codecCtx.SetFramerate(astiav.NewRational(config.FrameRate, 1))
	codecCtx.SetBitRate(int64(config.BitrateBps))
	codecCtx.SetGopSize(config.GopSize)

	opts := astiav.NewDictionary()
	defer opts.Free()
	opts.Set("preset", config.Preset, astiav.NewDictionaryFlags())   //nolint:errcheck
	opts.Set("tune", config.Tune, astiav.NewDictionaryFlags())       //nolint:errcheck

	if err := codecCtx.Open(codec, opts); err != nil {
		codecCtx.Free()
		return nil, fmt.Errorf("%w: open codec: %v", ErrEncode, err)
	}

	frame := astiav.AllocFrame()
	frame.SetWidth(width)
	frame.SetHeight(height)
	frame.SetPixelFormat(astiav.PixelFormatYuv420P)
	if err := frame.AllocBuffer(1); err != nil {
		frame.Free()
		codecCtx.Free()
		return nil, fmt.Errorf("%w: alloc frame buffer: %v", ErrEncode, err)
	}

	return &h264Encoder{
		codecCtx: codecCtx,
		frame:    frame,
		pkt:      astiav.AllocPacket(),
	}, nil
}

// Encode submits one frame and drains the codec. The returned access unit is
// empty while the codec delays output.
func (e *h264Encoder) Encode(frame *raster.FrameI420) ([]byte, error) {
	if err := e.frame.MakeWritable(); err != nil {
		return nil, fmt.Errorf("%w: make frame writable: %v", ErrEncode, err)
	}
	if err := e.frame.Data().SetBytes(frame.Data, 1); err != nil {
		return nil, fmt.Errorf("%w: fill frame: %v", ErrEncode, err)
	}
	e.frame.SetPts(e.pts)
	e.pts++

	if err := e.codecCtx.SendFrame(e.frame); err != nil {
		return nil, fmt.Errorf("%w: send frame: %v", ErrEncode, err)
	}

	var bitstream []byte
	for {
		err := e.codecCtx.ReceivePacket(e.pkt)
		if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: receive packet: %v", ErrEncode, err)
		}
		bitstream = append(bitstream, e.pkt.Data()...)
		e.pkt.Unref()
	}
	return bitstream, nil
}

// Close frees codec state.
func (e *h264Encoder) Close() {
	e.pkt.Free()
	e.frame.Free()
	e.codecCtx.Free()
}
