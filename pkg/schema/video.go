package schema

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// VideoSchemaName fully qualified name of the output message type.
const VideoSchemaName = "foxglove.CompressedVideo"

// Video is the process-wide output schema, built once per run. It carries the
// serialized descriptor set attached to every derived output channel and the
// runtime descriptor used to assemble output payloads.
type Video struct {
	Data []byte // Serialized FileDescriptorSet.

	desc        protoreflect.MessageDescriptor
	fdTimestamp protoreflect.FieldDescriptor
	fdFrameID   protoreflect.FieldDescriptor
	fdData      protoreflect.FieldDescriptor
	fdFormat    protoreflect.FieldDescriptor
}

// NewVideoSchema builds the foxglove.CompressedVideo schema.
func NewVideoSchema() (*Video, error) {
	set := &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{
			protodesc.ToFileDescriptorProto(timestamppb.File_google_protobuf_timestamp_proto),
			compressedVideoProto(),
		},
	}

	data, err := proto.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("marshal descriptor set: %w", err)
	}

	files, err := protodesc.NewFiles(set)
	if err != nil {
		return nil, fmt.Errorf("build descriptor files: %w", err)
	}

	desc, err := files.FindDescriptorByName(VideoSchemaName)
	if err != nil {
		return nil, fmt.Errorf("find %v: %w", VideoSchemaName, err)
	}
	md := desc.(protoreflect.MessageDescriptor)

	fields := md.Fields()
	return &Video{
		Data:        data,
		desc:        md,
		fdTimestamp: fields.ByName("timestamp"),
		fdFrameID:   fields.ByName("frame_id"),
		fdData:      fields.ByName("data"),
		fdFormat:    fields.ByName("format"),
	}, nil
}

// EncodeMessage assembles one output payload: the frame's canonical timestamp
// and identifier, the format tag and the compressed bitstream.
func (v *Video) EncodeMessage(frame *Frame, format string, bitstream []byte) ([]byte, error) {
	msg := dynamicpb.NewMessage(v.desc)

	ts := msg.Mutable(v.fdTimestamp).Message()
	tsFields := ts.Descriptor().Fields()
	ts.Set(tsFields.ByName("seconds"), protoreflect.ValueOfInt64(frame.TimeSec))
	ts.Set(tsFields.ByName("nanos"), protoreflect.ValueOfInt32(frame.TimeNSec))

	msg.Set(v.fdFrameID, protoreflect.ValueOfString(frame.FrameID))
	msg.Set(v.fdFormat, protoreflect.ValueOfString(format))
	msg.Set(v.fdData, protoreflect.ValueOfBytes(bitstream))

	buf, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return buf, nil
}

// Field numbers match the published foxglove.CompressedVideo message.
func compressedVideoProto() *descriptorpb.FileDescriptorProto {
	label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String("foxglove/CompressedVideo.proto"),
		Package:    proto.String("foxglove"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/timestamp.proto"},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("CompressedVideo"),
			Field: []*descriptorpb.FieldDescriptorProto{
				{
					Name:     proto.String("timestamp"),
					Number:   proto.Int32(1),
					Label:    &label,
					Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
					TypeName: proto.String(".google.protobuf.Timestamp"),
				},
				{
					Name:   proto.String("frame_id"),
					Number: proto.Int32(2),
					Label:  &label,
					Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
				},
				{
					Name:   proto.String("data"),
					Number: proto.Int32(3),
					Label:  &label,
					Type:   descriptorpb.FieldDescriptorProto_TYPE_BYTES.Enum(),
				},
				{
					Name:   proto.String("format"),
					Number: proto.Int32(4),
					Label:  &label,
					Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
				},
			},
		}},
	}
}
