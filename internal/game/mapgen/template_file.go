package mapgen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

// TemplateFile is the on-disk form of a level template.
//
//	name: arena
//	rows:
//	  - "#####"
//	  - "#x.x#"
//	  - "#####"
type TemplateFile struct {
	Name string   `yaml:"name"`
	Rows []string `yaml:"rows"`
}

// LoadTemplateFile reads and validates a YAML template
func LoadTemplateFile(path string) (*core.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return ParseTemplateYAML(data)
}

// ParseTemplateYAML decodes a template document
func ParseTemplateYAML(data []byte) (*core.Template, error) {
	var tf TemplateFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	t, err := core.ParseTemplate(tf.Rows)
	if err != nil {
		if tf.Name != "" {
			return nil, fmt.Errorf("template %q: %w", tf.Name, err)
		}
		return nil, err
	}
	return t, nil
}
