package commands

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ppiankov/joulespectre/internal/dataset"
)

// enhanceError wraps an error with context and suggestions for common failures.
func enhanceError(action string, err error) error {
	msg := err.Error()

	var (
		missing   *dataset.MissingInputError
		malformed *dataset.MalformedFilenameError
		schema    *dataset.SchemaError
		dup       *dataset.DuplicateKeyError
	)

	var hint string
	switch {
	case errors.As(err, &missing):
		hint = "Pass the session directory holding vulnerability_summary.csv and run_<N>_config_<C>.csv files"
	case errors.As(err, &malformed):
		hint = "Measurement files must be named run_<N>_config_<C>.csv; move other run_*.csv files out of the session directory"
	case errors.As(err, &schema):
		hint = "vulnerability_summary.csv needs Run, Config, Project, BuildTool, Status, BugCount; measurement files need timestamp, package_energy, dram_energy"
	case errors.As(err, &dup):
		hint = "Each Run/Config pair may appear only once in vulnerability_summary.csv"
	case errors.Is(err, context.DeadlineExceeded):
		hint = "Analysis timed out. Increase --timeout"
	case strings.Contains(msg, "GOOGLE_APPLICATION_CREDENTIALS"):
		hint = "Configure GCP credentials: set GOOGLE_APPLICATION_CREDENTIALS or run 'gcloud auth application-default login'"
	case strings.Contains(msg, "could not find default credentials"):
		hint = "Configure GCP credentials: run 'gcloud auth application-default login'"
	case strings.Contains(msg, "bucket doesn't exist"):
		hint = "Check the GCS bucket name in gcs.bucket or JOULESPECTRE_GCS_BUCKET"
	case strings.Contains(msg, "RESOURCE_DOES_NOT_EXIST"):
		hint = "MLflow experiment not found. Check --mlflow-experiment or MLFLOW_EXPERIMENT_ID"
	case strings.Contains(msg, "401") || strings.Contains(msg, "Unauthorized") || strings.Contains(msg, "invalid access token"):
		hint = "MLflow rejected the credentials. Set DATABRICKS_TOKEN or use a databricks://PROFILE tracking URI"
	case strings.Contains(msg, "connection refused"):
		hint = "MLflow tracking server unreachable. Check mlflow.tracking_uri or MLFLOW_TRACKING_URI"
	}

	if hint != "" {
		return fmt.Errorf("%s: %w\n  hint: %s", action, err, hint)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// computeSessionHash generates a SHA256 hash identifying a session and the
// configurations it was analyzed against.
func computeSessionHash(dir string, configs []string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	input := fmt.Sprintf("session:%s,configs:%s", dir, strings.Join(configs, ","))
	h := sha256.Sum256([]byte(input))
	return fmt.Sprintf("sha256:%x", h)
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
