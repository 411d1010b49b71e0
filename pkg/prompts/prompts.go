// Package prompts loads the on-disk LLM prompt templates. Templates are
// opaque strings with {name} placeholders substituted at call time.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Template file names consumed by the engine.
const (
	ProfileAnalysis = "profile_analysis.txt"
	ReplyGeneration = "reply_generation.txt"
)

// Loader reads templates from a directory, caching nothing so edits on
// disk take effect on the next request.
type Loader struct {
	dir string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load returns the raw template text.
func (l *Loader) Load(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to load prompt template %s: %w", name, err)
	}
	return string(data), nil
}

// Render substitutes {key} placeholders in the template. Unknown
// placeholders are left in place.
func Render(template string, values map[string]string) string {
	out := template
	for key, value := range values {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}
