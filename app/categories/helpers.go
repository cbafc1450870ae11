package categories

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolve returns the properties of the first tag that names a
// contribution category.
func (s *Spec) Resolve(tags []string) (Properties, bool) {
	for _, tag := range tags {
		if props, ok := s.Categories[tag]; ok {
			return props, true
		}
	}
	return Properties{}, false
}

// ResolveTask returns the properties of the first tag that names a
// task-request category ("task-<name>").
func (s *Spec) ResolveTask(tags []string) (Properties, bool) {
	for _, tag := range tags {
		if props, ok := s.tasks[tag]; ok {
			return props, true
		}
	}
	return Properties{}, false
}

// IsTaskRequest reports whether a content item is an open call for work:
// it must carry the sentinel topic tag and at least one task-category tag.
func (s *Spec) IsTaskRequest(tags []string) bool {
	hasTopic := false
	hasTask := false
	for _, tag := range tags {
		if tag == s.TopicTag {
			hasTopic = true
		}
		if _, ok := s.tasks[tag]; ok {
			hasTask = true
		}
	}
	return hasTopic && hasTask
}

// IsTaskCategory reports whether a category tag belongs to the
// task-request category set.
func (s *Spec) IsTaskCategory(tag string) bool {
	_, ok := s.tasks[tag]
	return ok
}

// Count returns the number of known contribution categories.
func (s *Spec) Count() int {
	return len(s.Categories)
}

// ColorInt converts a "#rrggbb" or "#rgb" display color into the integer
// form chat embeds expect. Unset or malformed colors map to 0.
func (p Properties) ColorInt() int {
	hex := strings.TrimPrefix(p.Color, "#")
	if len(hex) == 3 {
		hex = fmt.Sprintf("%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2])
	}
	if len(hex) != 6 {
		return 0
	}
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}
