package codec

import (
	"encoding/base64"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"floorlink/internal/domain"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

type yamlProject struct {
	Version  int                `yaml:"version"`
	Content  *domain.ContentRef `yaml:"content,omitempty"`
	Document string             `yaml:"document,omitempty"` // base64
	Items    []yamlItem         `yaml:"items"`
}

type yamlItem struct {
	ID               string       `yaml:"id"`
	Label            string       `yaml:"label"`
	Type             string       `yaml:"type"`
	Position         domain.Point `yaml:"position"`
	DocumentPosition domain.Point `yaml:"document_position"`
	// A mapping node keeps property order, which a Go map would lose.
	Properties yaml.Node `yaml:"properties,omitempty"`
}

// Parse imports a project from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Project, error) {
	var yp yamlProject
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yp); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	p := &domain.Project{Version: yp.Version, Content: yp.Content}
	if yp.Document != "" {
		data, err := base64.StdEncoding.DecodeString(yp.Document)
		if err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		p.Document = data
	}
	for _, yi := range yp.Items {
		props, err := propertiesFromNode(&yi.Properties)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", yi.ID, err)
		}
		p.Items = append(p.Items, domain.Item{
			ID:               yi.ID,
			Label:            yi.Label,
			Type:             yi.Type,
			Position:         yi.Position,
			DocumentPosition: yi.DocumentPosition,
			Properties:       props,
		})
	}
	return finish(p)
}

// Export exports a project to YAML
func (c *YAMLCodec) Export(p *domain.Project, w io.Writer) error {
	yp := yamlProject{
		Version: p.Version,
		Content: p.Content,
		Items:   make([]yamlItem, 0, len(p.Items)),
	}
	if yp.Version == 0 {
		yp.Version = domain.ProjectVersion
	}
	if len(p.Document) > 0 {
		yp.Document = base64.StdEncoding.EncodeToString(p.Document)
	}
	for _, item := range p.Items {
		yp.Items = append(yp.Items, yamlItem{
			ID:               item.ID,
			Label:            item.Label,
			Type:             item.Type,
			Position:         item.Position,
			DocumentPosition: item.DocumentPosition,
			Properties:       propertiesToNode(item.Properties),
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yp); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

func propertiesToNode(props domain.Properties) yaml.Node {
	n := yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, p := range props {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Value},
		)
	}
	return n
}

func propertiesFromNode(n *yaml.Node) (domain.Properties, error) {
	if n.Kind == 0 || n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("properties must be a mapping (line %d)", n.Line)
	}
	var props domain.Properties
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("property %q must be a scalar (line %d)", k.Value, v.Line)
		}
		value := v.Value
		if v.Tag == "!!null" {
			value = ""
		}
		props = props.Set(k.Value, value)
	}
	return props, nil
}
