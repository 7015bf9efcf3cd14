// Package mcapio binds the MCAP container reader and writer.
package mcapio

import (
	"errors"
	"fmt"
	"io"

	"github.com/foxglove/mcap/go/mcap"
	"golang.org/x/exp/mmap"
)

// ErrInputOpen input container cannot be opened or mapped.
var ErrInputOpen = errors.New("could not open input")

// Record is one message together with its channel and schema attributes.
// Records are immutable once read.
type Record struct {
	ChannelID       uint16 // Input channel identity.
	Topic           string
	MessageEncoding string
	ChannelMetadata map[string]string

	SchemaName     string
	SchemaEncoding string
	SchemaData     []byte

	Sequence    uint32
	LogTime     uint64
	PublishTime uint64
	Data        []byte
}

// Source iterates records of a memory-mapped input container in file order.
// Single pass, not restartable.
type Source struct {
	mapped *mmap.ReaderAt
	it     mcap.MessageIterator
}

// OpenSource maps the container at path. Caller must call Close when done.
func OpenSource(path string) (*Source, error) {
	mapped, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputOpen, err)
	}

	reader, err := mcap.NewReader(io.NewSectionReader(mapped, 0, int64(mapped.Len())))
	if err != nil {
		mapped.Close()
		return nil, fmt.Errorf("%w: %v", ErrInputOpen, err)
	}

	it, err := reader.Messages(mcap.UsingIndex(false))
	if err != nil {
		mapped.Close()
		return nil, fmt.Errorf("%w: %v", ErrInputOpen, err)
	}

	return &Source{mapped: mapped, it: it}, nil
}

// Next returns the next record, or io.EOF when the container is exhausted.
func (s *Source) Next() (*Record, error) {
	schema, channel, message, err := s.it.Next(nil)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read record: %w", err)
	}

	rec := &Record{
		ChannelID:       channel.ID,
		Topic:           channel.Topic,
		MessageEncoding: channel.MessageEncoding,
		ChannelMetadata: channel.Metadata,
		Sequence:        message.Sequence,
		LogTime:         message.LogTime,
		PublishTime:     message.PublishTime,
		Data:            message.Data,
	}
	if schema != nil {
		rec.SchemaName = schema.Name
		rec.SchemaEncoding = schema.Encoding
		rec.SchemaData = schema.Data
	}
	return rec, nil
}

// Close unmaps the input.
func (s *Source) Close() error {
	return s.mapped.Close()
}
