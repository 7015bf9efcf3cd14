package mcapio

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/foxglove/mcap/go/mcap"
)

// ErrChannelRegistration channel could not be registered with the writer.
var ErrChannelRegistration = errors.New("could not register channel")

// ErrOutputWrite record could not be appended.
var ErrOutputWrite = errors.New("could not write record")

// OutputChannel describes a channel to register with the writer.
type OutputChannel struct {
	Topic           string
	MessageEncoding string
	Metadata        map[string]string

	SchemaName     string
	SchemaEncoding string
	SchemaData     []byte
}

// Sink appends records to an output container. Schema and channel IDs are
// assigned by the sink since the writer requires explicit IDs.
type Sink struct {
	file   *os.File
	buf    *bufio.Writer
	writer *mcap.Writer

	nextSchemaID  uint16
	nextChannelID uint16

	// Output channel ID per input channel ID, so pass-through records
	// register their channel exactly once.
	passThrough map[uint16]uint16
}

// CreateSink creates the output container and writes its header.
func CreateSink(path string) (*Sink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	buf := bufio.NewWriter(file)
	writer, err := mcap.NewWriter(buf, &mcap.WriterOptions{
		Chunked:     true,
		ChunkSize:   4 * 1024 * 1024,
		Compression: mcap.CompressionZSTD,
	})
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("create writer: %w", err)
	}

	if err := writer.WriteHeader(&mcap.Header{Library: "mcap-videoify"}); err != nil {
		file.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	return &Sink{
		file:          file,
		buf:           buf,
		writer:        writer,
		nextSchemaID:  1,
		nextChannelID: 1,
		passThrough:   map[uint16]uint16{},
	}, nil
}

// Register writes the channel's schema and channel records and returns the
// assigned channel ID. Must be called before the first record on the channel.
func (s *Sink) Register(ch *OutputChannel) (uint16, error) {
	var schemaID uint16
	if ch.SchemaName != "" || len(ch.SchemaData) != 0 {
		schemaID = s.nextSchemaID
		err := s.writer.WriteSchema(&mcap.Schema{
			ID:       schemaID,
			Name:     ch.SchemaName,
			Encoding: ch.SchemaEncoding,
			Data:     ch.SchemaData,
		})
		if err != nil {
			return 0, fmt.Errorf("%w: schema %v: %v", ErrChannelRegistration, ch.SchemaName, err)
		}
		s.nextSchemaID++
	}

	metadata := ch.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	channelID := s.nextChannelID
	err := s.writer.WriteChannel(&mcap.Channel{
		ID:              channelID,
		SchemaID:        schemaID,
		Topic:           ch.Topic,
		MessageEncoding: ch.MessageEncoding,
		Metadata:        metadata,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v: %v", ErrChannelRegistration, ch.Topic, err)
	}
	s.nextChannelID++

	return channelID, nil
}

// Write appends one record to the given channel.
func (s *Sink) Write(channelID uint16, sequence uint32, logTime, publishTime uint64, payload []byte) error {
	err := s.writer.WriteMessage(&mcap.Message{
		ChannelID:   channelID,
		Sequence:    sequence,
		LogTime:     logTime,
		PublishTime: publishTime,
		Data:        payload,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	return nil
}

// WritePassThrough appends rec unchanged, registering its channel on first
// use.
func (s *Sink) WritePassThrough(rec *Record) error {
	channelID, exist := s.passThrough[rec.ChannelID]
	if !exist {
		id, err := s.Register(&OutputChannel{
			Topic:           rec.Topic,
			MessageEncoding: rec.MessageEncoding,
			Metadata:        rec.ChannelMetadata,
			SchemaName:      rec.SchemaName,
			SchemaEncoding:  rec.SchemaEncoding,
			SchemaData:      rec.SchemaData,
		})
		if err != nil {
			return err
		}
		s.passThrough[rec.ChannelID] = id
		channelID = id
	}
	return s.Write(channelID, rec.Sequence, rec.LogTime, rec.PublishTime, rec.Data)
}

// Finalize writes the container summary and footer and closes the file.
// No further writes are accepted afterward.
func (s *Sink) Finalize() error {
	if err := s.writer.Close(); err != nil {
		s.file.Close()
		return fmt.Errorf("finalize container: %w", err)
	}
	if err := s.buf.Flush(); err != nil {
		s.file.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	return s.file.Close()
}

// Abort closes the file without finalizing. The partial output is not
// guaranteed to be a valid container.
func (s *Sink) Abort() error {
	return s.file.Close()
}
