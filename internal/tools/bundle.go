package tools

// Spec describes one tool entry in a bundle.
type Spec struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Config      map[string]string `yaml:"config,omitempty"`
}

// Bundle is a named group of tool specs that a worker can be equipped
// with.
type Bundle struct {
	Name  string `yaml:"name"`
	Tools []Spec `yaml:"tools"`
}

// DefaultBundle returns the built-in tool set used when no bundle file is
// configured.
func DefaultBundle() Bundle {
	return Bundle{
		Name: "default",
		Tools: []Spec{
			{Name: "read_file"},
			{Name: "write_file"},
			{Name: "list_dir"},
			{Name: "web_search"},
			{Name: "update_progress"},
		},
	}
}
