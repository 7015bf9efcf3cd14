// Package schema resolves runtime-supplied protobuf descriptors and builds
// the compressed video output schema.
package schema

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ErrSchemaParse schema bytes are not a valid descriptor set.
var ErrSchemaParse = errors.New("could not parse schema")

// ErrTypeNotFound target type is absent from the descriptor set.
var ErrTypeNotFound = errors.New("type not found in schema")

type cacheKey struct {
	hash [sha256.Size]byte
	name protoreflect.FullName
}

// Resolver parses serialized descriptor sets into message descriptors.
// Resolved descriptors are cached by schema content, which does not change
// observable output since descriptor sets are immutable.
type Resolver struct {
	cache map[cacheKey]protoreflect.MessageDescriptor
}

// NewResolver .
func NewResolver() *Resolver {
	return &Resolver{cache: map[cacheKey]protoreflect.MessageDescriptor{}}
}

// Resolve parses schemaData as a serialized FileDescriptorSet and locates the
// message type with the given fully qualified name, searching every file in
// the set.
func (r *Resolver) Resolve(
	schemaData []byte,
	name protoreflect.FullName,
) (protoreflect.MessageDescriptor, error) {
	key := cacheKey{hash: sha256.Sum256(schemaData), name: name}
	if md, exist := r.cache[key]; exist {
		return md, nil
	}

	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(schemaData, &set); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaParse, err)
	}

	files, err := protodesc.NewFiles(&set)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaParse, err)
	}

	desc, err := files.FindDescriptorByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTypeNotFound, name)
	}

	md, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("%w: %v is not a message", ErrTypeNotFound, name)
	}

	r.cache[key] = md
	return md, nil
}
