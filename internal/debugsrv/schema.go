package debugsrv

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Faultbox/tristream/internal/stream"
)

var controlSchemaText = fmt.Sprintf(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "minProperties": 1,
  "properties": {
    "active":   {"type": "boolean"},
    "radius":   {"type": "number", "minimum": 0, "maximum": %d},
    "material": {"type": "string", "minLength": 1, "maxLength": 64},
    "origin_gizmo": {"type": "boolean"},
    "chunk_gizmo":  {"type": "boolean"}
  }
}`, stream.MaxRadius)

var controlSchema = jsonschema.MustCompileString("control.schema.json", controlSchemaText)

// decodeControl validates a client control message and converts it into a
// stream.ControlUpdate.
func decodeControl(msg []byte) (stream.ControlUpdate, error) {
	var doc any
	if err := json.Unmarshal(msg, &doc); err != nil {
		return stream.ControlUpdate{}, fmt.Errorf("decode control: %w", err)
	}
	if err := controlSchema.Validate(doc); err != nil {
		return stream.ControlUpdate{}, fmt.Errorf("invalid control: %w", err)
	}

	var u stream.ControlUpdate
	if err := json.Unmarshal(msg, &u); err != nil {
		return stream.ControlUpdate{}, fmt.Errorf("decode control: %w", err)
	}
	return u, nil
}
