package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls parser behavior. It is persisted with the trained model
// so a reloaded parser matches exactly like the instance that was fitted.
type Config struct {
	// IgnoreStopWords enables stop-word filtering during key derivation.
	// When false the stop-word set is empty and keys keep every token.
	IgnoreStopWords bool `yaml:"ignore_stop_words" json:"ignore_stop_words"`
}

// Default returns the default parser configuration.
func Default() Config {
	return Config{IgnoreStopWords: false}
}

// Load reads a Config from a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Stoplist represents a stop-word list file.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stop words from a YAML file.
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}
