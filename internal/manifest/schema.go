package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"k8s.io/kube-openapi/pkg/validation/spec"
	"k8s.io/kube-openapi/pkg/validation/strfmt"
	"k8s.io/kube-openapi/pkg/validation/validate"
)

// Manifest document type discriminators.
const (
	TypeParameter    = "parameter.v0"
	TypeMessageRelay = "messaging.relay/v0"
)

func stringSchema() spec.Schema {
	return spec.Schema{SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"string"}}}
}

func booleanSchema() spec.Schema {
	return spec.Schema{SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"boolean"}}}
}

func objectSchema() spec.Schema {
	return spec.Schema{SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{"object"}}}
}

// baseSchema is the contract every manifest document must satisfy.
var baseSchema = &spec.Schema{
	SchemaProps: spec.SchemaProps{
		Type:     spec.StringOrArray{"object"},
		Required: []string{"type"},
		Properties: map[string]spec.Schema{
			"type": stringSchema(),
		},
	},
}

// documentSchemas maps a document type to the schema its body must
// satisfy. Documents with an unregistered type are validated against
// baseSchema only.
var documentSchemas = map[string]*spec.Schema{
	TypeParameter: {
		SchemaProps: spec.SchemaProps{
			Type:     spec.StringOrArray{"object"},
			Required: []string{"type", "value", "inputs"},
			Properties: map[string]spec.Schema{
				"type":  stringSchema(),
				"value": stringSchema(),
				"inputs": {
					SchemaProps: spec.SchemaProps{
						Type: spec.StringOrArray{"object"},
						AdditionalProperties: &spec.SchemaOrBool{
							Allows: true,
							Schema: &spec.Schema{
								SchemaProps: spec.SchemaProps{
									Type:     spec.StringOrArray{"object"},
									Required: []string{"type"},
									Properties: map[string]spec.Schema{
										"type":    stringSchema(),
										"secret":  booleanSchema(),
										"default": stringSchema(),
									},
								},
							},
						},
					},
				},
			},
		},
	},
	TypeMessageRelay: {
		SchemaProps: spec.SchemaProps{
			Type:     spec.StringOrArray{"object"},
			Required: []string{"type", "connectionString", "principalId", "principalType"},
			Properties: map[string]spec.Schema{
				"type":             stringSchema(),
				"connectionString": stringSchema(),
				"principalId":      stringSchema(),
				"principalType":    stringSchema(),
				"annotations":      objectSchema(),
			},
		},
	},
}

// validateDocument checks a serialized manifest document against the
// schema registered for its type.
func validateDocument(name string, data []byte) error {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("manifest resource %q is not an object: %w", name, err)
	}

	schema := baseSchema
	if t, ok := body["type"].(string); ok {
		if s, registered := documentSchemas[t]; registered {
			schema = s
		}
	}

	result := validate.NewSchemaValidator(schema, nil, "", strfmt.Default).Validate(body)
	if result.HasErrors() {
		return fmt.Errorf("manifest resource %q is invalid: %w", name, errors.Join(result.Errors...))
	}
	return nil
}
