// Package transcode replaces per-frame still images with a continuous video
// stream per channel, preserving every other record unchanged.
package transcode

import (
	"errors"
	"fmt"
	"io"

	"github.com/worldEngineDev/mcap-videoify/pkg/encoder"
	"github.com/worldEngineDev/mcap-videoify/pkg/log"
	"github.com/worldEngineDev/mcap-videoify/pkg/mcapio"
	"github.com/worldEngineDev/mcap-videoify/pkg/raster"
	"github.com/worldEngineDev/mcap-videoify/pkg/schema"
)

// Input signature of transcodable records. Anything else passes through.
const (
	ImageSchemaName     = "foxglove.CompressedImage"
	ImageSchemaEncoding = "protobuf"
)

// VideoFormat format tag on output records.
const VideoFormat = "h264"

// Source yields input records in file order until io.EOF.
type Source interface {
	Next() (*mcapio.Record, error)
}

// Sink is the append-only output container writer.
type Sink interface {
	Register(*mcapio.OutputChannel) (uint16, error)
	Write(channelID uint16, sequence uint32, logTime, publishTime uint64, payload []byte) error
	WritePassThrough(*mcapio.Record) error
	Finalize() error
}

// Driver runs a single conversion pass. It exclusively owns the encoder pool
// and the output channel registry for the duration of the run.
type Driver struct {
	source   Source
	sink     Sink
	logger   *log.Logger
	resolver *schema.Resolver
	video    *schema.Video
	pool     *encoder.Pool
	registry *Registry
}

// NewDriver .
func NewDriver(
	source Source,
	sink Sink,
	logger *log.Logger,
	newEncoder encoder.NewEncoderFunc,
	config encoder.Config,
) (*Driver, error) {
	video, err := schema.NewVideoSchema()
	if err != nil {
		return nil, fmt.Errorf("build video schema: %w", err)
	}

	return &Driver{
		source:   source,
		sink:     sink,
		logger:   logger,
		resolver: schema.NewResolver(),
		video:    video,
		pool:     encoder.NewPool(newEncoder, config),
		registry: NewRegistry(sink, video),
	}, nil
}

// Run processes the input stream to exhaustion and finalizes the output.
// The first error aborts the run and leaves the output unfinalized.
func (d *Driver) Run() error {
	defer d.pool.Close()

	for {
		rec, err := d.source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if rec.SchemaName != ImageSchemaName || rec.SchemaEncoding != ImageSchemaEncoding {
			d.logger.Info().Src("transcode").Msgf("leaving record as-is: %v", rec.Topic)
			if err := d.sink.WritePassThrough(rec); err != nil {
				return fmt.Errorf("%v: %w", rec.Topic, err)
			}
			continue
		}

		if err := d.transcodeRecord(rec); err != nil {
			return fmt.Errorf("%v: %w", rec.Topic, err)
		}
	}

	if err := d.sink.Finalize(); err != nil {
		return err
	}
	return nil
}

func (d *Driver) transcodeRecord(rec *mcapio.Record) error {
	md, err := d.resolver.Resolve(rec.SchemaData, ImageSchemaName)
	if err != nil {
		return err
	}

	frame, err := schema.ExtractFrame(md, rec.Data)
	if err != nil {
		return err
	}

	img, err := raster.Decode(frame.Image)
	if err != nil {
		return err
	}

	topic := DeriveTopic(rec.Topic)
	enc, created, err := d.pool.GetOrCreate(topic, img.Width(), img.Height())
	if err != nil {
		return err
	}
	if created {
		d.logger.Debug().Src("transcode").
			Msgf("new encoder for %v (%vx%v)", topic, img.Width(), img.Height())
	}

	bitstream, err := enc.Encode(img.ToI420())
	if err != nil {
		return err
	}

	// The channel is materialized even when this access unit is empty, so
	// the output container always announces the derived topic.
	channelID, _, err := d.registry.ResolveOrCreate(topic)
	if err != nil {
		return err
	}

	if len(bitstream) == 0 {
		d.logger.Debug().Src("transcode").Msgf("empty access unit on %v, skipping", topic)
		return nil
	}

	payload, err := d.video.EncodeMessage(frame, VideoFormat, bitstream)
	if err != nil {
		return err
	}

	d.logger.Info().Src("transcode").
		Msgf("%v: frame %q, %v bytes", topic, frame.FrameID, len(bitstream))

	return d.sink.Write(channelID, rec.Sequence, rec.LogTime, rec.PublishTime, payload)
}
