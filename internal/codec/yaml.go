package codec

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"nodereg/internal/domain"
)

// YAMLCodec parses node lists written as YAML
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlSnapshot represents the YAML structure for node data
type yamlSnapshot struct {
	Nodes []yamlNode `yaml:"nodes"`
}

type yamlNode struct {
	ID        int64     `yaml:"id,omitempty"`
	Title     string    `yaml:"title"`
	Active    *bool     `yaml:"active,omitempty"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// Parse imports a snapshot from YAML. Nodes without an active field are active.
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Snapshot, error) {
	var ys yamlSnapshot
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&ys); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	nodes := make([]domain.Node, 0, len(ys.Nodes))
	for i, yn := range ys.Nodes {
		if yn.Title == "" {
			return nil, fmt.Errorf("nodes[%d]: title is required", i)
		}
		node := domain.Node{
			ID:        yn.ID,
			Title:     yn.Title,
			Active:    true,
			CreatedAt: yn.CreatedAt,
			UpdatedAt: yn.UpdatedAt,
		}
		if yn.Active != nil {
			node.Active = *yn.Active
		}
		nodes = append(nodes, node)
	}

	return domain.NewSnapshot(nodes), nil
}
