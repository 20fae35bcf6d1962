package handler

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/canopyhost/canopy/internal/core"
)

// resourceToStruct serialises a domain resource into a protobuf
// Struct for the wire.
func resourceToStruct(resource *core.Resource) (*structpb.Struct, error) {
	data, err := json.Marshal(resource)
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	var out structpb.Struct
	if err := protojson.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("convert resource to struct: %w", err)
	}
	return &out, nil
}

// structToResource deserialises a protobuf Struct from the wire into
// a domain resource. Validation is left to the use-case.
func structToResource(msg *structpb.Struct) (*core.Resource, error) {
	if msg == nil {
		return nil, &core.ErrInvalidInput{Field: "resource", Message: "resource is required"}
	}
	data, err := protojson.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal struct: %w", err)
	}
	var resource core.Resource
	if err := json.Unmarshal(data, &resource); err != nil {
		return nil, &core.ErrInvalidInput{Field: "resource", Message: err.Error()}
	}
	return &resource, nil
}

// stringField reads an optional string field from a request message.
func stringField(msg *structpb.Struct, key string) string {
	if msg == nil {
		return ""
	}
	if v, ok := msg.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

// boolField reads an optional boolean field from a request message.
func boolField(msg *structpb.Struct, key string) bool {
	if msg == nil {
		return false
	}
	if v, ok := msg.GetFields()[key]; ok {
		return v.GetBoolValue()
	}
	return false
}

// structField reads an optional nested object field from a request
// message.
func structField(msg *structpb.Struct, key string) *structpb.Struct {
	if msg == nil {
		return nil
	}
	if v, ok := msg.GetFields()[key]; ok {
		return v.GetStructValue()
	}
	return nil
}
