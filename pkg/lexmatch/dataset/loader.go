package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a dataset file. Files ending in .json are
// decoded as JSON, everything else as YAML.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ds Dataset
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("parse dataset: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("parse dataset: %w", err)
		}
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}
