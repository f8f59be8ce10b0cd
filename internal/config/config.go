package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/grid"
)

const DefaultDirectory = "default_output"

// Config is a complete simulation description.
type Config struct {
	Grid           *grid.Config       `yaml:"Grid,omitempty"`
	Clock          dynamo.ClockConfig `yaml:"Clock"`
	Tools          Section            `yaml:"Tools,omitempty"`
	PhysicsModules Section            `yaml:"PhysicsModules"`
	Diagnostics    Diagnostics        `yaml:"Diagnostics,omitempty"`
}

// Entry is one configured component: a registered type name and the
// sub-mapping handed to its factory.
type Entry struct {
	Name   string
	Config dynamo.Config
}

// Section is an ordered list of component entries. In YAML each key is a type
// name whose value is a mapping, or a list of mappings for several instances.
type Section []Entry

func (s *Section) UnmarshalYAML(node *yaml.Node) error {
	if isNull(node) {
		*s = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: section must be a mapping of type names", node.Line)
	}

	out := make(Section, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		entries, err := decodeEntries(node.Content[i].Value, node.Content[i+1])
		if err != nil {
			return err
		}
		out = append(out, entries...)
	}
	*s = out
	return nil
}

func (s Section) MarshalYAML() (any, error) {
	return s.node()
}

func (s Section) Names() []string {
	names := make([]string, len(s))
	for i, e := range s {
		names[i] = e.Name
	}
	return names
}

func (s Section) Clone() Section {
	if s == nil {
		return nil
	}
	out := make(Section, len(s))
	for i, e := range s {
		out[i] = Entry{Name: e.Name, Config: e.Config.Clone()}
	}
	return out
}

// node groups entries by name in first-appearance order; repeated names become
// a list.
func (s Section) node() (*yaml.Node, error) {
	order := make([]string, 0, len(s))
	grouped := make(map[string][]dynamo.Config)
	for _, e := range s {
		if _, seen := grouped[e.Name]; !seen {
			order = append(order, e.Name)
		}
		grouped[e.Name] = append(grouped[e.Name], e.Config)
	}

	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range order {
		var value yaml.Node
		var err error
		if cfgs := grouped[name]; len(cfgs) == 1 {
			err = value.Encode(nonNil(cfgs[0]))
		} else {
			list := make([]dynamo.Config, len(cfgs))
			for i, c := range cfgs {
				list[i] = nonNil(c)
			}
			err = value.Encode(list)
		}
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", name, err)
		}
		out.Content = append(out.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, &value)
	}
	return out, nil
}

// Diagnostics is the Diagnostics section: an output directory plus one key per
// diagnostic type.
type Diagnostics struct {
	Directory string
	Entries   Section
}

func (d *Diagnostics) UnmarshalYAML(node *yaml.Node) error {
	*d = Diagnostics{}
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: Diagnostics must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if key == "directory" {
			if err := value.Decode(&d.Directory); err != nil {
				return fmt.Errorf("diagnostics directory: %w", err)
			}
			continue
		}
		entries, err := decodeEntries(key, value)
		if err != nil {
			return err
		}
		d.Entries = append(d.Entries, entries...)
	}
	return nil
}

func (d Diagnostics) MarshalYAML() (any, error) {
	body, err := d.Entries.node()
	if err != nil {
		return nil, err
	}
	if d.Directory == "" {
		return body, nil
	}
	dir := []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: "directory"},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: d.Directory},
	}
	body.Content = append(dir, body.Content...)
	return body, nil
}

func (d Diagnostics) IsZero() bool {
	return d.Directory == "" && len(d.Entries) == 0
}

// Resolved returns the diagnostic entries with the output directory injected
// into every config that does not set its own.
func (d Diagnostics) Resolved() Section {
	dir := d.Directory
	if dir == "" {
		dir = DefaultDirectory
	}
	out := d.Entries.Clone()
	for i := range out {
		if !out[i].Config.Has("directory") {
			out[i].Config["directory"] = dir
		}
	}
	return out
}

func decodeEntries(name string, node *yaml.Node) ([]Entry, error) {
	switch {
	case isNull(node):
		return []Entry{{Name: name, Config: dynamo.Config{}}}, nil
	case node.Kind == yaml.MappingNode:
		cfg, err := decodeConfig(name, node)
		if err != nil {
			return nil, err
		}
		return []Entry{{Name: name, Config: cfg}}, nil
	case node.Kind == yaml.SequenceNode:
		entries := make([]Entry, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: %s instances must be mappings", item.Line, name)
			}
			cfg, err := decodeConfig(name, item)
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Name: name, Config: cfg})
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("line %d: %s must be a mapping or a list of mappings", node.Line, name)
	}
}

func decodeConfig(name string, node *yaml.Node) (dynamo.Config, error) {
	cfg := dynamo.Config{}
	if err := node.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("line %d: decoding %s: %w", node.Line, name, err)
	}
	return cfg, nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

func nonNil(c dynamo.Config) dynamo.Config {
	if c == nil {
		return dynamo.Config{}
	}
	return c
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := checkRequired(data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// requiredClockKeys must appear in a file's Clock section. Decoded values
// cannot tell an absent key from an explicit zero.
var requiredClockKeys = []string{"start_time", "end_time"}

func checkRequired(data []byte) error {
	var top struct {
		Clock map[string]yaml.Node `yaml:"Clock"`
	}
	if err := yaml.Unmarshal(data, &top); err != nil {
		return err
	}
	if top.Clock == nil {
		return fmt.Errorf("%w: %q", dynamo.ErrMissingKey, "Clock")
	}
	for _, key := range requiredClockKeys {
		if _, ok := top.Clock[key]; !ok {
			return fmt.Errorf("%w: Clock %q", dynamo.ErrMissingKey, key)
		}
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the structure of the file. Value ranges are checked by the
// components that consume them.
func (c *Config) Validate() error {
	if c.Clock.EndTime <= c.Clock.StartTime {
		return fmt.Errorf("%w: Clock end_time must be after start_time", dynamo.ErrInvalidConfig)
	}
	if c.Clock.NumSteps <= 0 && c.Clock.Dt <= 0 {
		return fmt.Errorf("%w: Clock needs num_steps or dt", dynamo.ErrMissingKey)
	}
	for _, section := range []Section{c.Tools, c.PhysicsModules, c.Diagnostics.Entries} {
		for _, e := range section {
			if e.Name == "" {
				return fmt.Errorf("%w: component with empty type name", dynamo.ErrInvalidConfig)
			}
		}
	}
	return nil
}

func (c *Config) Clone() *Config {
	out := *c
	if c.Grid != nil {
		g := *c.Grid
		out.Grid = &g
	}
	out.Tools = c.Tools.Clone()
	out.PhysicsModules = c.PhysicsModules.Clone()
	out.Diagnostics.Entries = c.Diagnostics.Entries.Clone()
	return &out
}
