package mapping

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TemplateVersion is the current template document version.
const TemplateVersion = 1

// templateDoc is the on-disk shape of a mapping template: a version marker
// plus the Spec body.
type templateDoc struct {
	Version       int                   `yaml:"version"`
	Name          string                `yaml:"name,omitempty"`
	Entities      map[string]EntityRule `yaml:"entities"`
	Relationships []RelationshipRule    `yaml:"relationships,omitempty"`
}

// SaveTemplate writes the spec as a human-editable YAML template.
// LoadTemplate(SaveTemplate(m)) yields a spec structurally equal to m.
func SaveTemplate(spec *Spec, path string) error {
	doc := templateDoc{
		Version:       TemplateVersion,
		Name:          spec.Name,
		Entities:      spec.Entities,
		Relationships: spec.Relationships,
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create template directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write template %s: %w", path, err)
	}
	return nil
}

// LoadTemplate reads a saved mapping template back into a Spec.
func LoadTemplate(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}

	var doc templateDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	if doc.Version != TemplateVersion {
		return nil, fmt.Errorf("template %s: unsupported version %d (want %d)", path, doc.Version, TemplateVersion)
	}

	spec := &Spec{
		Name:          doc.Name,
		Entities:      doc.Entities,
		Relationships: doc.Relationships,
	}
	if spec.Entities == nil {
		spec.Entities = make(map[string]EntityRule)
	}
	return spec, nil
}
