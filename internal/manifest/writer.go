// Package manifest emits the deployment manifest of a composed
// application: a single JSON document describing every model resource,
// validated against embedded schemas and gated on a minimum runtime
// version.
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// SchemaVersion identifies the manifest document layout.
const SchemaVersion = "v0"

// Resource is a model resource that can serialize itself into a
// deployment manifest. Implementations register a document under
// their own name when the publisher walks the model.
type Resource interface {
	ResourceName() string
	WriteManifest(ctx context.Context, w *Writer) error
}

// Writer collects per-resource manifest documents, preserving
// registration order in the emitted JSON.
type Writer struct {
	names []string
	docs  map[string]json.RawMessage
}

// NewWriter returns an empty manifest writer.
func NewWriter() *Writer {
	return &Writer{docs: make(map[string]json.RawMessage)}
}

// WriteResource serializes doc under the given resource name. The
// document must carry a "type" discriminator and satisfy the schema
// registered for that type.
func (w *Writer) WriteResource(name string, doc any) error {
	if name == "" {
		return fmt.Errorf("manifest resource name is required")
	}
	if _, exists := w.docs[name]; exists {
		return fmt.Errorf("manifest resource %q already written", name)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialize manifest resource %q: %w", name, err)
	}

	if err := validateDocument(name, data); err != nil {
		return err
	}

	w.names = append(w.names, name)
	w.docs[name] = data
	return nil
}

// Len returns the number of documents written so far.
func (w *Writer) Len() int {
	return len(w.names)
}

// finalize renders the complete manifest document. Resources appear
// in registration order; encoding/json alone cannot promise that for
// a map, so the object is assembled by hand.
func (w *Writer) finalize(minimumRuntimeVersion string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	fmt.Fprintf(&buf, "  %q: %q,\n", "schema", SchemaVersion)
	fmt.Fprintf(&buf, "  %q: %q,\n", "minimumRuntimeVersion", minimumRuntimeVersion)
	buf.WriteString("  \"resources\": {")

	for i, name := range w.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n    ")
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(": ")

		var indented bytes.Buffer
		if err := json.Indent(&indented, w.docs[name], "    ", "  "); err != nil {
			return nil, fmt.Errorf("indent manifest resource %q: %w", name, err)
		}
		buf.Write(indented.Bytes())
	}

	if len(w.names) > 0 {
		buf.WriteString("\n  ")
	}
	buf.WriteString("}\n}\n")
	return buf.Bytes(), nil
}
