package compose

import (
	"context"
	"fmt"

	"github.com/canopyhost/canopy/internal/manifest"
)

// MessageRelay is a managed real-time message-relay service in the
// application model. Registering one also declares the two input
// parameters a deployment tool needs to bind an access-control role
// assignment: the principal id and the principal type.
type MessageRelay struct {
	name          string
	annotations   map[string]string
	principalID   *Parameter
	principalType *Parameter
}

// AddMessageRelay registers a message-relay resource under the given
// name, together with its "<name>-principalId" and
// "<name>-principalType" parameters. The returned resource supports
// further chained configuration.
func (b *Builder) AddMessageRelay(name string) (*MessageRelay, error) {
	principalID, err := b.AddParameter(name + "-principalId")
	if err != nil {
		return nil, fmt.Errorf("add message relay %q: %w", name, err)
	}
	principalType, err := b.AddParameter(name + "-principalType")
	if err != nil {
		return nil, fmt.Errorf("add message relay %q: %w", name, err)
	}

	relay := &MessageRelay{
		name:          name,
		principalID:   principalID,
		principalType: principalType,
	}
	if err := b.Add(relay); err != nil {
		return nil, err
	}
	return relay, nil
}

var _ manifest.Resource = (*MessageRelay)(nil)

// ResourceName returns the relay's model name.
func (r *MessageRelay) ResourceName() string {
	return r.name
}

// WithAnnotation attaches an annotation carried into the manifest.
func (r *MessageRelay) WithAnnotation(key, value string) *MessageRelay {
	if r.annotations == nil {
		r.annotations = make(map[string]string)
	}
	r.annotations[key] = value
	return r
}

// ConnectionStringExpression returns the manifest expression that
// resolves to the provisioned relay's connection string.
func (r *MessageRelay) ConnectionStringExpression() string {
	return fmt.Sprintf("{%s.outputs.connectionString}", r.name)
}

type relayDocument struct {
	Type             string            `json:"type"`
	ConnectionString string            `json:"connectionString"`
	PrincipalID      string            `json:"principalId"`
	PrincipalType    string            `json:"principalType"`
	Annotations      map[string]string `json:"annotations,omitempty"`
}

// WriteManifest emits the messaging.relay/v0 document. The principal
// fields reference the parameters registered alongside the relay, so
// the role assignment is bound at deployment time.
func (r *MessageRelay) WriteManifest(_ context.Context, w *manifest.Writer) error {
	return w.WriteResource(r.name, relayDocument{
		Type:             manifest.TypeMessageRelay,
		ConnectionString: r.ConnectionStringExpression(),
		PrincipalID:      r.principalID.ValueExpression(),
		PrincipalType:    r.principalType.ValueExpression(),
		Annotations:      r.annotations,
	})
}
