package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default analysis settings used when neither flags nor the config file set them.
const (
	DefaultEffortConfig    = "A"
	DefaultMaxEffortConfig = "B"
	DefaultRegion          = "default"
	DefaultWorkers         = 4
	DefaultFormat          = "text"
)

// DefaultConfigs lists the tool configurations a session is expected to cover.
var DefaultConfigs = []string{"A", "B", "C"}

// DefaultLabels maps configuration identifiers to display names.
var DefaultLabels = map[string]string{
	"A": "Default",
	"B": "Max Effort",
	"C": "Low Threshold",
}

// Config holds joulespectre configuration loaded from .joulespectre.yaml.
type Config struct {
	Configs         []string          `yaml:"configs"`
	Labels          map[string]string `yaml:"labels"`
	DefaultConfig   string            `yaml:"default_config"`
	MaxEffortConfig string            `yaml:"max_effort_config"`
	Region          string            `yaml:"region"`
	Workers         int               `yaml:"workers"`
	Format          string            `yaml:"format"`
	Timeout         string            `yaml:"timeout"`
	MLflow          MLflow            `yaml:"mlflow"`
	GCS             GCS               `yaml:"gcs"`
}

// MLflow configures publishing of session metrics to a tracking server.
type MLflow struct {
	TrackingURI  string `yaml:"tracking_uri"`
	ExperimentID string `yaml:"experiment_id"`
	RunName      string `yaml:"run_name"`
}

// GCS configures archiving of session artifacts to a Cloud Storage bucket.
type GCS struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// TimeoutDuration parses the timeout string as a duration.
func (c Config) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// ConfigList returns the expected configurations, falling back to DefaultConfigs.
func (c Config) ConfigList() []string {
	if len(c.Configs) == 0 {
		return DefaultConfigs
	}
	return c.Configs
}

// LabelMap returns display labels with file entries layered over DefaultLabels.
func (c Config) LabelMap() map[string]string {
	labels := make(map[string]string, len(DefaultLabels)+len(c.Labels))
	for k, v := range DefaultLabels {
		labels[k] = v
	}
	for k, v := range c.Labels {
		labels[k] = v
	}
	return labels
}

// Load searches for .joulespectre.yaml or .joulespectre.yml in the given directory
// and returns the parsed config. Returns an empty Config if no file is found.
func Load(dir string) (Config, error) {
	candidates := []string{
		filepath.Join(dir, ".joulespectre.yaml"),
		filepath.Join(dir, ".joulespectre.yml"),
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}

		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if cfg.Workers < 0 {
			return Config{}, fmt.Errorf("parse config %s: workers must not be negative", path)
		}
		return cfg, nil
	}

	return Config{}, nil
}
