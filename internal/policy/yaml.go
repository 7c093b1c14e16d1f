package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays a YAML policy file onto the defaults. Fields absent from
// the file keep their default values.
func LoadFile(path string) (Policy, error) {
	p := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Default(), fmt.Errorf("parse policy file: %w", err)
	}
	return p, nil
}
