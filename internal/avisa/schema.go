package avisa

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

const (
	SchemaReservations = "reservations"
	SchemaDevice       = "device"
	SchemaTests        = "tests"
	SchemaTestStatus   = "status"
)

const idSchema = `{"type": ["string", "integer"]}`

var schemaSources = map[string]string{
	SchemaReservations: `{
  "type": "object",
  "properties": {
    "reservations": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "device_id": ` + idSchema + `,
          "os": {"type": "string"}
        },
        "required": ["device_id"]
      }
    }
  },
  "required": ["reservations"]
}`,
	SchemaDevice: `{
  "type": "object",
  "properties": {
    "device": {
      "type": "object",
      "properties": {
        "os": {"type": "string", "minLength": 1}
      },
      "required": ["os"]
    }
  },
  "required": ["device"]
}`,
	SchemaTests: `{
  "type": "object",
  "properties": {
    "tests": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "test_id": ` + idSchema + `,
          "device_id": ` + idSchema + `,
          "deployment_id": {"type": "string"}
        },
        "required": ["test_id", "device_id"]
      }
    }
  },
  "required": ["tests"]
}`,
	SchemaTestStatus: `{
  "type": "object",
  "properties": {
    "status": {"type": "integer"}
  },
  "required": ["status"]
}`,
}

var schemas = compileSchemas(schemaSources)

func compileSchemas(sources map[string]string) map[string]*gojsonschema.Schema {
	compiled := make(map[string]*gojsonschema.Schema, len(sources))
	for name, src := range sources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			panic(errors.Wrapf(err, "compiling %s schema", name))
		}
		compiled[name] = schema
	}
	return compiled
}

// SchemaNames lists the response schemas in a stable order.
func SchemaNames() []string {
	names := make([]string, 0, len(schemaSources))
	for name := range schemaSources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResponseSchema returns the JSON schema source for a named response body.
func ResponseSchema(name string) (string, bool) {
	src, ok := schemaSources[name]
	return src, ok
}

// ValidateResponse checks a response body against the named schema.
func ValidateResponse(name string, body []byte) error {
	schema, ok := schemas[name]
	if !ok {
		return errors.Errorf("unknown response schema: %s", name)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.Wrapf(ErrMalformedResponse, "validating %s body: %v", name, err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for idx, err := range result.Errors() {
			errs[idx] = err.String()
		}

		return errors.Wrapf(ErrMalformedResponse, "%s body does not match schema. errors: %v", name, errs)
	}

	return nil
}

func decode(name string, body []byte, dst any) error {
	if err := ValidateResponse(name, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "decoding %s body: %v", name, err)
	}

	return nil
}
