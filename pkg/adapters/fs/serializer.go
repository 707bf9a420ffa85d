package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/personakit/personakit/pkg/core"
	"gopkg.in/yaml.v3"
)

// Serializer reads and writes the whole profile document in one format.
type Serializer interface {
	Parse(r io.Reader) (*core.Document, error)
	Serialize(doc *core.Document) ([]byte, error)
}

// DefaultSerializers returns the serializers keyed by file extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

// SerializerFor picks the serializer for path by extension. Unknown
// extensions fall back to JSON.
func SerializerFor(path string) Serializer {
	ext := strings.ToLower(filepath.Ext(path))
	if s, ok := DefaultSerializers()[ext]; ok {
		return s
	}
	return NewJSONSerializer()
}

// --- JSON Serializer ---

// JSONSerializer handles the canonical JSON document.
type JSONSerializer struct {
	Indent string
}

// NewJSONSerializer creates a JSON serializer with two-space indentation.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{Indent: "  "}
}

func (s *JSONSerializer) Parse(r io.Reader) (*core.Document, error) {
	var doc core.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return &doc, nil
}

func (s *JSONSerializer) Serialize(doc *core.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Prompt text is full of quotes and angle brackets; keep it readable.
	enc.SetEscapeHTML(false)
	enc.SetIndent("", s.Indent)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- YAML Serializer ---

// YAMLSerializer stores the same document as YAML. Field names and value
// shapes match the JSON form exactly because both go through the JSON tags.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Parse(r io.Reader) (*core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("invalid yaml: empty document")
	}

	bridge, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	var doc core.Document
	if err := json.Unmarshal(bridge, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return &doc, nil
}

func (s *YAMLSerializer) Serialize(doc *core.Document) ([]byte, error) {
	bridge, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(bridge, &payload); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
