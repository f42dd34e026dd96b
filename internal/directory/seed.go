// Package directory loads the module to assignee mapping used to seed storage.
package directory

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

//go:embed default_directory.yaml
var defaultDirectory []byte

type seedFile struct {
	Modules []domain.ModuleAssignment `yaml:"modules"`
}

// Load reads the seed at path, or the embedded default when path is empty.
func Load(path string) ([]domain.ModuleAssignment, error) {
	data := defaultDirectory
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read directory seed: %w", err)
		}
		data = raw
	}
	return Parse(data)
}

// Parse decodes and validates a YAML directory document.
func Parse(data []byte) ([]domain.ModuleAssignment, error) {
	var doc seedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode directory seed: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Modules))
	entries := make([]domain.ModuleAssignment, 0, len(doc.Modules))
	for i, entry := range doc.Modules {
		entry.Module = strings.TrimSpace(entry.Module)
		entry.SupportEngineer = strings.TrimSpace(entry.SupportEngineer)
		entry.Developer = strings.TrimSpace(entry.Developer)
		entry.DeveloperEmail = strings.TrimSpace(entry.DeveloperEmail)
		if entry.Module == "" || entry.SupportEngineer == "" || entry.Developer == "" {
			return nil, fmt.Errorf("directory entry %d: module, support_engineer and developer are required", i)
		}
		if _, dup := seen[entry.Module]; dup {
			return nil, fmt.Errorf("directory entry %d: duplicate module %q", i, entry.Module)
		}
		seen[entry.Module] = struct{}{}
		entries = append(entries, entry)
	}
	return entries, nil
}
