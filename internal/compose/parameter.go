package compose

import (
	"context"
	"fmt"

	"github.com/canopyhost/canopy/internal/manifest"
)

// ParameterOption configures a Parameter.
type ParameterOption func(*Parameter)

// WithSecret marks the parameter value as sensitive.
func WithSecret() ParameterOption {
	return func(p *Parameter) { p.secret = true }
}

// WithDefault supplies a default value for the parameter input.
func WithDefault(value string) ParameterOption {
	return func(p *Parameter) { p.defaultValue = &value }
}

// Parameter is a deployment-time input to the application model. Its
// value is resolved by the deployment tool, not by the model.
type Parameter struct {
	name         string
	secret       bool
	defaultValue *string
}

// AddParameter registers a named input parameter in the model.
func (b *Builder) AddParameter(name string, opts ...ParameterOption) (*Parameter, error) {
	p := &Parameter{name: name}
	for _, opt := range opts {
		opt(p)
	}
	if err := b.Add(p); err != nil {
		return nil, err
	}
	return p, nil
}

var _ manifest.Resource = (*Parameter)(nil)

// ResourceName returns the parameter's model name.
func (p *Parameter) ResourceName() string {
	return p.name
}

// ValueExpression returns the manifest expression other resources use
// to reference this parameter's resolved value.
func (p *Parameter) ValueExpression() string {
	return fmt.Sprintf("{%s.value}", p.name)
}

type parameterInput struct {
	Type    string  `json:"type"`
	Secret  bool    `json:"secret,omitempty"`
	Default *string `json:"default,omitempty"`
}

type parameterDocument struct {
	Type   string                    `json:"type"`
	Value  string                    `json:"value"`
	Inputs map[string]parameterInput `json:"inputs"`
}

// WriteManifest emits the parameter.v0 document.
func (p *Parameter) WriteManifest(_ context.Context, w *manifest.Writer) error {
	return w.WriteResource(p.name, parameterDocument{
		Type:  manifest.TypeParameter,
		Value: fmt.Sprintf("{%s.inputs.value}", p.name),
		Inputs: map[string]parameterInput{
			"value": {
				Type:    "string",
				Secret:  p.secret,
				Default: p.defaultValue,
			},
		},
	})
}
