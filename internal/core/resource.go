package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// ResourceKind discriminates the closed set of workload resource
// variants. Resources are a tagged union rather than an open subtype
// hierarchy: exactly one of the per-kind payload pointers on Resource
// is set, matching the Kind tag.
type ResourceKind string

const (
	KindService    ResourceKind = "Service"
	KindContainer  ResourceKind = "Container"
	KindExecutable ResourceKind = "Executable"
)

// Kinds returns the closed set of known resource kinds.
func Kinds() []ResourceKind {
	return []ResourceKind{KindService, KindContainer, KindExecutable}
}

// Valid reports whether k is one of the known kinds.
func (k ResourceKind) Valid() bool {
	switch k {
	case KindService, KindContainer, KindExecutable:
		return true
	}
	return false
}

// ObjectMeta is the metadata shared by every resource kind. A resource
// is identified by (kind, namespace, name); the empty namespace is the
// default namespace.
type ObjectMeta struct {
	Name              string            `json:"name"`
	Namespace         string            `json:"namespace,omitempty"`
	UID               string            `json:"uid,omitempty"`
	CreationTimestamp time.Time         `json:"creationTimestamp,omitzero"`
	Annotations       map[string]string `json:"annotations,omitempty"`
}

// ServiceSpec is a service's desired state. Address and Port are
// optional: unset values are filled in by the hosting backend on
// creation.
type ServiceSpec struct {
	Address *string `json:"address,omitempty"`
	Port    *int32  `json:"port,omitempty"`
}

// ServiceStatus is the computed state of a service. EffectiveAddress
// defaults to "localhost" when no address was requested;
// EffectivePort is the requested port, or a backend-allocated one.
type ServiceStatus struct {
	EffectiveAddress string `json:"effectiveAddress,omitempty"`
	EffectivePort    int32  `json:"effectivePort,omitempty"`
}

// ServicePayload groups a service's spec and status.
type ServicePayload struct {
	Spec   ServiceSpec   `json:"spec"`
	Status ServiceStatus `json:"status"`
}

// ContainerSpec is a hosted container's desired state.
type ContainerSpec struct {
	Image string   `json:"image"`
	Args  []string `json:"args,omitempty"`
}

// ContainerStatus is the observed state of a hosted container.
type ContainerStatus struct {
	State string `json:"state,omitempty"`
}

// ContainerPayload groups a container's spec and status.
type ContainerPayload struct {
	Spec   ContainerSpec   `json:"spec"`
	Status ContainerStatus `json:"status"`
}

// ExecutableSpec is a hosted executable's desired state.
type ExecutableSpec struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// ExecutableStatus is the observed state of a hosted executable.
type ExecutableStatus struct {
	State string `json:"state,omitempty"`
}

// ExecutablePayload groups an executable's spec and status.
type ExecutablePayload struct {
	Spec   ExecutableSpec   `json:"spec"`
	Status ExecutableStatus `json:"status"`
}

// Resource is a typed, named, namespaced workload record. The Kind tag
// selects which payload pointer is populated; the others are nil.
//
// Resources must round-trip losslessly through JSON: the wire format
// is also how backends clone them, so an unserializable resource is a
// contract violation.
type Resource struct {
	Kind       ResourceKind       `json:"kind"`
	Metadata   ObjectMeta         `json:"metadata"`
	Service    *ServicePayload    `json:"service,omitempty"`
	Container  *ContainerPayload  `json:"container,omitempty"`
	Executable *ExecutablePayload `json:"executable,omitempty"`
}

// NewService returns a Service resource with the given desired spec.
func NewService(namespace, name string, spec ServiceSpec) *Resource {
	return &Resource{
		Kind:     KindService,
		Metadata: ObjectMeta{Name: name, Namespace: namespace},
		Service:  &ServicePayload{Spec: spec},
	}
}

// NewContainer returns a Container resource with the given spec.
func NewContainer(namespace, name string, spec ContainerSpec) *Resource {
	return &Resource{
		Kind:      KindContainer,
		Metadata:  ObjectMeta{Name: name, Namespace: namespace},
		Container: &ContainerPayload{Spec: spec},
	}
}

// NewExecutable returns an Executable resource with the given spec.
func NewExecutable(namespace, name string, spec ExecutableSpec) *Resource {
	return &Resource{
		Kind:       KindExecutable,
		Metadata:   ObjectMeta{Name: name, Namespace: namespace},
		Executable: &ExecutablePayload{Spec: spec},
	}
}

// Validate checks that the resource is well-formed: known kind,
// non-empty name, and a payload pointer matching the Kind tag.
func (r *Resource) Validate() error {
	if !r.Kind.Valid() {
		return &ErrInvalidInput{Field: "kind", Message: fmt.Sprintf("unknown resource kind %q", r.Kind)}
	}
	if r.Metadata.Name == "" {
		return &ErrInvalidInput{Field: "metadata.name", Message: "name is required"}
	}

	var want, others bool
	switch r.Kind {
	case KindService:
		want = r.Service != nil
		others = r.Container != nil || r.Executable != nil
	case KindContainer:
		want = r.Container != nil
		others = r.Service != nil || r.Executable != nil
	case KindExecutable:
		want = r.Executable != nil
		others = r.Service != nil || r.Container != nil
	}

	if !want || others {
		return &ErrInvalidInput{
			Field:   "kind",
			Message: fmt.Sprintf("payload does not match resource kind %q", r.Kind),
		}
	}

	return nil
}

// DeepCopy clones the resource through a JSON round trip. The round
// trip doubles as a wire-format check: a resource that cannot be
// serialized and deserialized losslessly is malformed.
func (r *Resource) DeepCopy() (*Resource, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, &DomainError{
			Code:    ErrorCodeInternal,
			Message: fmt.Sprintf("resource %s/%s is not serializable", r.Metadata.Namespace, r.Metadata.Name),
			Cause:   err,
		}
	}

	out := &Resource{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, &DomainError{
			Code:    ErrorCodeInternal,
			Message: fmt.Sprintf("resource %s/%s does not round-trip", r.Metadata.Namespace, r.Metadata.Name),
			Cause:   err,
		}
	}

	return out, nil
}
