package manifest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultMinimumRuntimeVersion is the oldest runtime a published
// manifest declares it can be deployed by.
const DefaultMinimumRuntimeVersion = "0.1.0"

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithMinimumRuntimeVersion overrides the minimum runtime version
// stamped into (and enforced for) published manifests.
func WithMinimumRuntimeVersion(version string) PublisherOption {
	return func(p *Publisher) { p.minimumRuntimeVersion = version }
}

// WithLogger configures a structured logger.
func WithLogger(log *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.log = log }
}

// Publisher walks a composed application model and emits its
// deployment manifest.
type Publisher struct {
	buildVersion          string
	minimumRuntimeVersion string
	log                   *slog.Logger
}

// NewPublisher returns a Publisher for the given build version
// (typically injected via ldflags; "devel" skips the version gate).
func NewPublisher(buildVersion string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		buildVersion:          buildVersion,
		minimumRuntimeVersion: DefaultMinimumRuntimeVersion,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = slog.Default().With("component", "manifest-publisher")
	}
	return p
}

// Publish serializes the model resources in registration order and
// writes the manifest document to out.
func (p *Publisher) Publish(ctx context.Context, resources []Resource, out io.Writer) error {
	if err := p.checkRuntimeVersion(); err != nil {
		return err
	}

	w := NewWriter()
	for _, r := range resources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.WriteManifest(ctx, w); err != nil {
			return fmt.Errorf("publish resource %q: %w", r.ResourceName(), err)
		}
	}

	data, err := w.finalize(p.minimumRuntimeVersion)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	p.log.Info("published manifest", "resources", w.Len())
	return nil
}

// PublishFile writes the manifest to the given path.
func (p *Publisher) PublishFile(ctx context.Context, resources []Resource, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest file: %w", err)
	}
	defer f.Close()

	if err := p.Publish(ctx, resources, f); err != nil {
		return err
	}
	return f.Close()
}

// checkRuntimeVersion refuses to publish a manifest whose declared
// minimum runtime is newer than the running build.
func (p *Publisher) checkRuntimeVersion() error {
	if p.buildVersion == "" || p.buildVersion == "devel" {
		return nil
	}

	build, err := semver.NewVersion(strings.TrimPrefix(p.buildVersion, "v"))
	if err != nil {
		return fmt.Errorf("parse build version %q: %w", p.buildVersion, err)
	}
	minimum, err := semver.NewVersion(p.minimumRuntimeVersion)
	if err != nil {
		return fmt.Errorf("parse minimum runtime version %q: %w", p.minimumRuntimeVersion, err)
	}

	if build.LessThan(minimum) {
		return fmt.Errorf("runtime %s is older than the manifest's minimum runtime version %s", build, minimum)
	}
	return nil
}
