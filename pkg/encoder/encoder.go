// Package encoder manages one stateful video encoder per output topic.
package encoder

import (
	"errors"
	"fmt"

	"github.com/worldEngineDev/mcap-videoify/pkg/raster"
)

// ErrEncode underlying codec failure.
var ErrEncode = errors.New("encoder failure")

// ErrDimensionMismatch a frame's dimensions do not match the dimensions the
// topic's encoder was created with.
var ErrDimensionMismatch = errors.New("frame dimensions do not match encoder")

// Encoder produces one compressed access unit per call. The access unit may
// be empty when the codec elects not to emit data for an input.
type Encoder interface {
	Encode(frame *raster.FrameI420) ([]byte, error)
	Close()
}

// NewEncoderFunc creates an encoder bound to the given dimensions.
type NewEncoderFunc func(width, height int, config Config) (Encoder, error)

type poolEntry struct {
	encoder Encoder
	width   int
	height  int
}

// Pool is a per-topic encoder memo. Encoders are created lazily on first use
// and bound to the first frame's dimensions.
type Pool struct {
	newEncoder NewEncoderFunc
	config     Config
	entries    map[string]poolEntry
}

// NewPool .
func NewPool(newEncoder NewEncoderFunc, config Config) *Pool {
	return &Pool{
		newEncoder: newEncoder,
		config:     config,
		entries:    map[string]poolEntry{},
	}
}

// GetOrCreate returns the encoder for topic, creating it on first call.
// The returned bool reports whether the encoder was created by this call.
// Frames on a topic must keep the dimensions the encoder was created with.
func (p *Pool) GetOrCreate(topic string, width, height int) (Encoder, bool, error) {
	if entry, exist := p.entries[topic]; exist {
		if entry.width != width || entry.height != height {
			return nil, false, fmt.Errorf("%w: %v: have %vx%v got %vx%v",
				ErrDimensionMismatch, topic, entry.width, entry.height, width, height)
		}
		return entry.encoder, false, nil
	}

	encoder, err := p.newEncoder(width, height, p.config)
	if err != nil {
		return nil, false, fmt.Errorf("create encoder for %v: %w", topic, err)
	}

	p.entries[topic] = poolEntry{encoder: encoder, width: width, height: height}
	return encoder, true, nil
}

// Count returns the number of live encoders.
func (p *Pool) Count() int {
	return len(p.entries)
}

// Close closes all encoders.
func (p *Pool) Close() {
	for topic, entry := range p.entries {
		entry.encoder.Close()
		delete(p.entries, topic)
	}
}
