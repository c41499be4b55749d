package fields

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk layout of a field placement file. JSON files are
// accepted as well since JSON is a subset of YAML.
type fileFormat struct {
	Fields []Field `yaml:"fields"`
}

// Parse decodes a placement file. Fields without an id receive one from
// factory and fields without a size receive the factory's default size.
func Parse(data []byte, factory *Factory) ([]Field, error) {
	if factory == nil {
		factory = NewFactory()
	}

	var file fileFormat
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fields: %w", err)
	}

	// generated ids must not take an id written later in the file
	explicit := make(map[string]bool, len(file.Fields))
	for _, f := range file.Fields {
		if f.ID != "" {
			explicit[f.ID] = true
		}
	}

	seen := make(map[string]bool, len(file.Fields))
	out := make([]Field, 0, len(file.Fields))
	for i, f := range file.Fields {
		if f.ID == "" {
			f.ID = factory.newID()
			for explicit[f.ID] || seen[f.ID] {
				f.ID = factory.newID()
			}
		}
		if f.Width == 0 && f.Height == 0 {
			f.Width, f.Height = factory.DefaultSize()
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("field %d: duplicate id %q", i, f.ID)
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	return out, nil
}

// LoadFile reads and parses a placement file.
func LoadFile(path string, factory *Factory) ([]Field, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fields file: %w", err)
	}
	return Parse(data, factory)
}

// Marshal encodes fields in the placement file layout.
func Marshal(fs []Field) ([]byte, error) {
	return yaml.Marshal(fileFormat{Fields: fs})
}
