package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestDefaults(t *testing.T) {
	conf, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := conf.ServeAddress(); got != ":8600" {
		t.Errorf("ServeAddress: got %q", got)
	}
	if got := conf.ServeBackend(); got != BackendFake {
		t.Errorf("ServeBackend: got %q", got)
	}
	if got := conf.FakePortStart(); got != 52000 {
		t.Errorf("FakePortStart: got %d", got)
	}
	if got := conf.PublishOutput(); got != "canopy.manifest.json" {
		t.Errorf("PublishOutput: got %q", got)
	}
	if got := conf.ServeAuthToken(); got != "" {
		t.Errorf("ServeAuthToken: expected empty default, got %q", got)
	}
}

func TestBindFlags(t *testing.T) {
	conf, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := conf.BindFlags(fs, ServeOptions); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	args := []string{
		"--address=:9999",
		"--backend=kubernetes",
		"--fake-port-start=60000",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := conf.ServeAddress(); got != ":9999" {
		t.Errorf("ServeAddress after flag: got %q", got)
	}
	if got := conf.ServeBackend(); got != BackendKubernetes {
		t.Errorf("ServeBackend after flag: got %q", got)
	}
	if got := conf.FakePortStart(); got != 60000 {
		t.Errorf("FakePortStart after flag: got %d", got)
	}
}

func TestToFlag(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{keyServeAddress, "address"},
		{keyServeFakePortStart, "fake-port-start"},
		{keyServeAllowedOrigins, "allowed-origins"},
		{keyPublishOutput, "output"},
		{keyPublishRelays, "relays"},
	}

	for _, tt := range tests {
		if got := toFlag(tt.key); got != tt.want {
			t.Errorf("toFlag(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
