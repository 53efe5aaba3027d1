package reading

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a history export handed to the CLI.
type File struct {
	Objects []Object `yaml:"objects"`
}

// Object is one tracked entity and its readings.
type Object struct {
	ID       string  `yaml:"id"`
	Readings History `yaml:"readings"`
}

// LoadFile reads a YAML history export and returns histories keyed by object ID.
func LoadFile(path string) (map[string]History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("history: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML history export. Duplicate IDs are merged.
func Parse(data []byte) (map[string]History, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("history: parse yaml: %w", err)
	}

	out := make(map[string]History, len(f.Objects))
	for i, obj := range f.Objects {
		if obj.ID == "" {
			return nil, fmt.Errorf("history: objects[%d]: id is required", i)
		}
		for j, r := range obj.Readings {
			if r.Time.IsZero() {
				return nil, fmt.Errorf("history: %q readings[%d]: time is required", obj.ID, j)
			}
		}
		out[obj.ID] = append(out[obj.ID], obj.Readings...)
	}
	return out, nil
}
