package categories

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{3}(?:[0-9a-fA-F]{3})?$`)

// Load builds the category table. When path is empty the compiled-in
// default table is used; otherwise the YAML file at path replaces it.
func Load(path string) (*Spec, error) {
	if path == "" {
		spec := Default()
		slog.Debug("Using compiled-in category table", "categories", len(spec.Categories))
		return spec, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}

	var raw rawSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse categories file: %w", err)
	}

	spec := &Spec{
		TopicTag:   raw.TopicTag,
		Categories: raw.Categories,
		Aliases:    raw.Aliases,
	}
	setDefaults(spec)

	if err := validate(spec); err != nil {
		return nil, fmt.Errorf("invalid categories file %s: %w", path, err)
	}

	spec.derive()
	slog.Debug("Category table loaded", "file", path, "categories", len(spec.Categories))

	return spec, nil
}

func setDefaults(spec *Spec) {
	if spec.TopicTag == "" {
		spec.TopicTag = "utopian-io"
	}
	for tag, props := range spec.Categories {
		if props.Name == "" {
			props.Name = tag
			spec.Categories[tag] = props
		}
	}
}

func validate(spec *Spec) error {
	if len(spec.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	for tag, props := range spec.Categories {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("category tag must not be blank")
		}
		if props.Color != "" && !colorRe.MatchString(props.Color) {
			return fmt.Errorf("category %q has invalid color %q", tag, props.Color)
		}
	}
	for alias, target := range spec.Aliases {
		if _, ok := spec.Categories[target]; !ok {
			return fmt.Errorf("alias %q points at unknown category %q", alias, target)
		}
	}
	return nil
}

// derive folds aliases into the category map and builds the task-request
// table ("task-<name>" entries carrying their base category).
func (s *Spec) derive() {
	for alias, target := range s.Aliases {
		if _, exists := s.Categories[alias]; !exists {
			s.Categories[alias] = s.Categories[target]
		}
	}

	s.tasks = make(map[string]Properties, len(s.Categories))
	for tag, props := range s.Categories {
		s.tasks["task-"+tag] = Properties{
			Color:    props.Color,
			Name:     "task-" + props.Name,
			Category: props.Name,
			ImageURL: props.ImageURL,
		}
	}
}

// Default returns the compiled-in category table.
func Default() *Spec {
	spec := &Spec{
		TopicTag: "utopian-io",
		Categories: map[string]Properties{
			"analysis":        {Color: "#164265", Name: "analysis", ImageURL: "https://i.imgsafe.org/6e/6e1ebd6655.png"},
			"ideas":           {Color: "#54d2a0", Name: "ideas", ImageURL: "https://i.imgsafe.org/6e/6e0c6738dc.png"},
			"development":     {Color: "#000", Name: "development", ImageURL: "https://i.imgsafe.org/89/8900cca3dd.png"},
			"bug-hunting":     {Color: "#d9534f", Name: "bug-hunting", ImageURL: "https://i.imgsafe.org/6e/6e0c5d5b89.png"},
			"translations":    {Color: "#ffce3d", Name: "translations", ImageURL: "https://i.imgsafe.org/6e/6e0c6a5717.png"},
			"graphics":        {Color: "#f6a623", Name: "graphics", ImageURL: "https://i.imgsafe.org/6e/6e0c637019.png"},
			"social":          {Color: "#7ec2f3", Name: "social", ImageURL: "https://i.imgsafe.org/6e/6e0c699e7f.png"},
			"documentation":   {Color: "#b1b1b1", Name: "documentation", ImageURL: "https://i.imgsafe.org/6e/6e0c6379e7.png"},
			"tutorials":       {Color: "#782c51", Name: "tutorials", ImageURL: "https://i.imgsafe.org/6e/6e0c6c2d63.png"},
			"video-tutorials": {Color: "#ec3324", Name: "video-tutorials", ImageURL: "https://i.imgsafe.org/6e/6e0c6cff9f.png"},
			"copywriting":     {Color: "#008080", Name: "copywriting", ImageURL: "https://i.imgsafe.org/6e/6e0c5f3cd9.png"},
			"blog":            {Color: "#0275d8", Name: "blog", ImageURL: "https://i.imgsafe.org/6e/6e0c5c9970.png"},
			"iamutopian":      {Color: "#B10DC9", Name: "iamutopian", ImageURL: "https://i.imgsafe.org/6e/6e0c66aa52.png"},
			"anti-abuse":      {Color: "#800000", Name: "anti-abuse", ImageURL: "https://i.imgsafe.org/6e/6e0c58ea30.png"},
		},
		Aliases: map[string]string{
			"suggestions":    "ideas",
			"bughunting":     "bug-hunting",
			"visibility":     "social",
			"tutorial":       "tutorials",
			"videotutorials": "video-tutorials",
			"videotutorial":  "video-tutorials",
			"video-tutorial": "video-tutorials",
			"antiabuse":      "anti-abuse",
		},
	}
	spec.derive()
	return spec
}
