package categories

// Properties describes how a category is rendered in notifications.
type Properties struct {
	Color    string `yaml:"color"`
	Name     string `yaml:"name"`
	Category string `yaml:"category,omitempty"` // base category for task-request entries
	ImageURL string `yaml:"image_url"`
}

// Spec is the process-wide category table. It is built once at startup
// and never mutated afterwards.
type Spec struct {
	// TopicTag is the sentinel tag that marks content as belonging to the
	// platform, e.g. "utopian-io".
	TopicTag string `yaml:"topic"`

	// Categories maps a contribution category tag to its display
	// properties. Aliases are folded in at load time.
	Categories map[string]Properties `yaml:"categories"`

	// Aliases maps alternate tag spellings to canonical category names.
	Aliases map[string]string `yaml:"aliases"`

	// tasks is derived from Categories: "task-<name>" entries for
	// task-request posts.
	tasks map[string]Properties
}

// rawSpec mirrors the YAML document shape before derivation.
type rawSpec struct {
	TopicTag   string                `yaml:"topic"`
	Categories map[string]Properties `yaml:"categories"`
	Aliases    map[string]string     `yaml:"aliases"`
}
