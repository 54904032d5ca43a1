// Package catalogfile loads an advisory catalog from YAML.
//
// The file is a mapping from stage name to an ordered list of advisories:
//
//	Vegetative stage:
//	  - Apply balanced fertilizers.
//	  - Monitor for pests and diseases.
//
// Stage order in the file is preserved.
package catalogfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
)

// Load reads and parses the catalog at path.
func Load(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load advisory catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load advisory catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*domain.Catalog, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("advisory catalog is empty")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("advisory catalog must be a mapping of stage to advisories")
	}

	root := doc.Content[0]
	entries := make([]domain.StageAdvisories, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		var advisories []string
		if err := val.Decode(&advisories); err != nil {
			return nil, fmt.Errorf("stage %q (line %d): %w", key.Value, key.Line, err)
		}
		entries = append(entries, domain.StageAdvisories{Stage: key.Value, Advisories: advisories})
	}
	return domain.NewCatalog(entries)
}
