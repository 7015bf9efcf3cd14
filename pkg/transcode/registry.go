package transcode

import (
	"github.com/worldEngineDev/mcap-videoify/pkg/mcapio"
	"github.com/worldEngineDev/mcap-videoify/pkg/schema"
)

// TopicSuffix is appended to an input topic to derive its output topic.
const TopicSuffix = "_video"

// DeriveTopic returns the output topic for an input topic.
func DeriveTopic(inputTopic string) string {
	return inputTopic + TopicSuffix
}

// Registry materializes at most one output channel per derived topic. Every
// channel carries the process-wide compressed video schema and is registered
// with the sink before its first record.
type Registry struct {
	sink     Sink
	video    *schema.Video
	channels map[string]uint16
}

// NewRegistry .
func NewRegistry(sink Sink, video *schema.Video) *Registry {
	return &Registry{
		sink:     sink,
		video:    video,
		channels: map[string]uint16{},
	}
}

// ResolveOrCreate returns the channel ID for topic, registering the channel
// with the sink on first resolution. The returned bool reports whether the
// channel was created by this call.
func (r *Registry) ResolveOrCreate(topic string) (uint16, bool, error) {
	if id, exist := r.channels[topic]; exist {
		return id, false, nil
	}

	id, err := r.sink.Register(&mcapio.OutputChannel{
		Topic:           topic,
		MessageEncoding: "protobuf",
		SchemaName:      schema.VideoSchemaName,
		SchemaEncoding:  "protobuf",
		SchemaData:      r.video.Data,
	})
	if err != nil {
		return 0, false, err
	}

	r.channels[topic] = id
	return id, true, nil
}
