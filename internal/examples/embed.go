// Package examples embeds a small library of ready-to-run command specs.
package examples

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

// Embed example specs into the binary for offline availability
//
//go:embed *.json
var embeddedFS embed.FS

const ext = ".json"

// Example represents metadata about an embedded example spec
type Example struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Mode        string   `json:"mode"`
	Tags        []string `json:"tags"`
	FilePath    string   `json:"file"`
}

// List returns all available embedded examples sorted by name.
func List() ([]Example, error) {
	entries, err := embeddedFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded examples: %w", err)
	}

	examples := make([]Example, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ext)
		cs, err := Load(name)
		if err != nil {
			return nil, err
		}
		examples = append(examples, Example{
			Name:        name,
			Title:       cs.Title,
			Description: cs.Description,
			Mode:        string(cs.Mode),
			Tags:        cs.Metadata.Tags,
			FilePath:    entry.Name(),
		})
	}

	sort.Slice(examples, func(i, j int) bool { return examples[i].Name < examples[j].Name })
	return examples, nil
}

// Get returns the raw JSON of a specific example by name
func Get(name string) ([]byte, error) {
	content, err := embeddedFS.ReadFile(name + ext)
	if err != nil {
		return nil, &cmderrors.NotFoundError{Resource: "example", ID: name}
	}
	return content, nil
}

// Load parses and validates an example.
func Load(name string) (*spec.CommandSpec, error) {
	content, err := Get(name)
	if err != nil {
		return nil, err
	}
	cs, err := spec.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("example %q: %w", name, err)
	}
	return cs, nil
}

// Exists checks if an example with the given name exists
func Exists(name string) bool {
	_, err := embeddedFS.ReadFile(name + ext)
	return err == nil
}

// CopyTo writes an example to the filesystem at the specified destination
func CopyTo(name string, destPath string) error {
	content, err := Get(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := os.WriteFile(destPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write example file: %w", err)
	}

	return nil
}
