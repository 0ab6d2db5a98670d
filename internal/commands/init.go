package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initFlags struct {
	force bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate sample config",
	Long:  `Creates a sample .joulespectre.yaml config file in the current directory.`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initFlags.force, "force", false, "Overwrite existing files")
}

func runInit(_ *cobra.Command, _ []string) error {
	configPath := ".joulespectre.yaml"

	wrote, err := writeIfNotExists(configPath, sampleConfig, initFlags.force)
	if err != nil {
		return err
	}

	if wrote {
		fmt.Printf("Created %s\n", configPath)
		fmt.Println("\nNext steps:")
		fmt.Println("  1. Edit .joulespectre.yaml to list the configurations your sessions contain")
		fmt.Println("  2. Optionally set mlflow.experiment_id and gcs.bucket to publish results")
		fmt.Println("  3. Run: joulespectre analyze results/SESSION_DIR")
	}
	return nil
}

func writeIfNotExists(path, content string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Skipping %s (already exists, use --force to overwrite)\n", path)
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

const sampleConfig = `# joulespectre configuration
# See: https://github.com/ppiankov/joulespectre

# Configurations every session is expected to contain, in report order
configs:
  - A
  - B
  - C

# Display names per configuration
labels:
  A: Default
  B: Max Effort
  C: Low Threshold

# Effort comparison: baseline and max-effort configuration
default_config: A
max_effort_config: B

# Electricity pricing region: us, eu, nl, de, uk, fr, or default
region: default

# Measurement files parsed concurrently
workers: 4

# Console output format: text or json
format: text

# Analysis timeout
timeout: 10m

# Publish per-session metrics to MLflow (or set MLFLOW_TRACKING_URI / MLFLOW_EXPERIMENT_ID)
# mlflow:
#   tracking_uri: http://localhost:5000
#   experiment_id: "1"
#   run_name: nightly

# Archive session artifacts to Cloud Storage (or set JOULESPECTRE_GCS_BUCKET)
# gcs:
#   bucket: my-energy-results
#   prefix: sessions
#   credentials_file: /path/to/service-account.json
`
