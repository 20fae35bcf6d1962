package core

import (
	"strings"
	"testing"
)

func TestResourceKindValid(t *testing.T) {
	for _, k := range Kinds() {
		if !k.Valid() {
			t.Errorf("expected kind %q to be valid", k)
		}
	}
	if ResourceKind("Endpoint").Valid() {
		t.Error("expected unknown kind to be invalid")
	}
	if ResourceKind("").Valid() {
		t.Error("expected empty kind to be invalid")
	}
}

func TestResourceValidate(t *testing.T) {
	addr := "10.0.0.1"

	tests := []struct {
		name     string
		resource *Resource
		wantErr  string
	}{
		{
			name:     "valid service",
			resource: NewService("", "frontend", ServiceSpec{Address: &addr}),
		},
		{
			name:     "valid container",
			resource: NewContainer("apps", "redis", ContainerSpec{Image: "redis:7"}),
		},
		{
			name:     "valid executable",
			resource: NewExecutable("", "worker", ExecutableSpec{Command: "worker"}),
		},
		{
			name:     "unknown kind",
			resource: &Resource{Kind: "Endpoint", Metadata: ObjectMeta{Name: "x"}},
			wantErr:  "unknown resource kind",
		},
		{
			name:     "missing name",
			resource: &Resource{Kind: KindService, Service: &ServicePayload{}},
			wantErr:  "name is required",
		},
		{
			name:     "missing payload",
			resource: &Resource{Kind: KindService, Metadata: ObjectMeta{Name: "x"}},
			wantErr:  "payload does not match",
		},
		{
			name: "payload for wrong kind",
			resource: &Resource{
				Kind:      KindService,
				Metadata:  ObjectMeta{Name: "x"},
				Service:   &ServicePayload{},
				Container: &ContainerPayload{},
			},
			wantErr: "payload does not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resource.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestResourceDeepCopy(t *testing.T) {
	port := int32(9090)
	original := NewService("prod", "api", ServiceSpec{Port: &port})
	original.Metadata.Annotations = map[string]string{"team": "platform"}

	clone, err := original.DeepCopy()
	if err != nil {
		t.Fatalf("DeepCopy: %v", err)
	}

	if clone == original {
		t.Fatal("expected a distinct resource value")
	}
	if clone.Service == original.Service {
		t.Fatal("expected a distinct service payload")
	}
	if clone.Metadata.Name != "api" || clone.Metadata.Namespace != "prod" {
		t.Errorf("metadata not preserved: %+v", clone.Metadata)
	}
	if clone.Service.Spec.Port == nil || *clone.Service.Spec.Port != 9090 {
		t.Errorf("spec port not preserved: %+v", clone.Service.Spec)
	}

	// Mutating the clone must not alias the original.
	clone.Metadata.Annotations["team"] = "infra"
	*clone.Service.Spec.Port = 1
	if original.Metadata.Annotations["team"] != "platform" {
		t.Error("annotation mutation leaked into the original")
	}
	if *original.Service.Spec.Port != 9090 {
		t.Error("port mutation leaked into the original")
	}
}

func TestIsNotFound(t *testing.T) {
	err := NewNotFound(KindService, "", "missing")
	if !IsNotFound(err) {
		t.Error("expected IsNotFound to be true")
	}
	if IsUnimplemented(err) {
		t.Error("expected IsUnimplemented to be false")
	}
	if !strings.Contains(err.Error(), "Service default/missing not found") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestIsUnimplemented(t *testing.T) {
	err := NewUnimplemented("delete")
	if !IsUnimplemented(err) {
		t.Error("expected IsUnimplemented to be true")
	}
	if IsNotFound(err) {
		t.Error("expected IsNotFound to be false")
	}
}
