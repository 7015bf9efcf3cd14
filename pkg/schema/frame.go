package schema

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ErrFieldMissing field definition is absent from the message descriptor.
// Distinct from an unset value, which yields the field's default.
var ErrFieldMissing = errors.New("field missing from schema")

// Frame is the still-image payload of one record.
type Frame struct {
	TimeSec  int64
	TimeNSec int32
	FrameID  string
	Image    []byte // Encoded still image.
}

// ExtractFrame decodes payload against md and extracts the capture timestamp,
// frame identifier and encoded image bytes.
func ExtractFrame(md protoreflect.MessageDescriptor, payload []byte) (*Frame, error) {
	msg := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(payload, msg); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	fdTimestamp, err := fieldByName(md, "timestamp")
	if err != nil {
		return nil, err
	}
	fdFrameID, err := fieldByName(md, "frame_id")
	if err != nil {
		return nil, err
	}
	fdData, err := fieldByName(md, "data")
	if err != nil {
		return nil, err
	}

	// Kind mismatches would otherwise panic inside protoreflect.
	if fdTimestamp.Kind() != protoreflect.MessageKind {
		return nil, fmt.Errorf("%w: timestamp is not a message", ErrFieldMissing)
	}
	if fdFrameID.Kind() != protoreflect.StringKind {
		return nil, fmt.Errorf("%w: frame_id is not a string", ErrFieldMissing)
	}
	if fdData.Kind() != protoreflect.BytesKind {
		return nil, fmt.Errorf("%w: data is not bytes", ErrFieldMissing)
	}

	frame := Frame{
		FrameID: msg.Get(fdFrameID).String(),
		Image:   msg.Get(fdData).Bytes(),
	}

	// An unset timestamp reads as an empty message and yields zero values.
	ts := msg.Get(fdTimestamp).Message()
	tsFields := ts.Descriptor().Fields()
	if fd := tsFields.ByName("seconds"); fd != nil {
		frame.TimeSec = ts.Get(fd).Int()
	}
	if fd := tsFields.ByName("nanos"); fd != nil {
		frame.TimeNSec = int32(ts.Get(fd).Int())
	}

	return &frame, nil
}

func fieldByName(
	md protoreflect.MessageDescriptor,
	name protoreflect.Name,
) (protoreflect.FieldDescriptor, error) {
	fd := md.Fields().ByName(name)
	if fd == nil {
		return nil, fmt.Errorf("%w: %v", ErrFieldMissing, name)
	}
	return fd, nil
}
