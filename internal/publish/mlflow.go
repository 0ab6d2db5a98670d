// Package publish sends analysis results to external sinks: an MLflow
// tracking server and a Cloud Storage archive.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/databricks/databricks-sdk-go"
	"github.com/databricks/databricks-sdk-go/service/ml"

	"github.com/ppiankov/joulespectre/internal/report"
)

// plainServerToken is sent to non-Databricks MLflow servers, which ignore auth.
const plainServerToken = "dummy-token-for-regular-mlflow"

// ExperimentsAPI is the part of the MLflow experiments service used to record a session.
type ExperimentsAPI interface {
	CreateRun(ctx context.Context, request ml.CreateRun) (*ml.CreateRunResponse, error)
	UpdateRun(ctx context.Context, request ml.UpdateRun) (*ml.UpdateRunResponse, error)
	LogMetric(ctx context.Context, request ml.LogMetric) error
	LogParam(ctx context.Context, request ml.LogParam) error
}

// NewExperimentsAPI connects to an MLflow tracking server. "databricks" uses the
// default Databricks profile, "databricks://NAME" a named profile, and any other
// URI a plain MLflow server.
func NewExperimentsAPI(trackingURI, token string) (ExperimentsAPI, error) {
	if trackingURI == "" {
		return nil, errors.New("MLflow tracking URI is required")
	}

	var cfg *databricks.Config
	switch {
	case trackingURI == "databricks":
		cfg = &databricks.Config{Token: token}
	case strings.HasPrefix(trackingURI, "databricks://"):
		cfg = &databricks.Config{Profile: strings.TrimPrefix(trackingURI, "databricks://"), Token: token}
	default:
		if token == "" {
			token = plainServerToken
		}
		cfg = &databricks.Config{Host: trackingURI, Token: token}
	}

	client, err := databricks.NewWorkspaceClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create MLflow client: %w", err)
	}
	return client.Experiments, nil
}

// MLflowTracker records one analysis session as one MLflow run.
type MLflowTracker struct {
	api          ExperimentsAPI
	experimentID string
	runName      string
}

// NewMLflowTracker creates a tracker logging into the given experiment.
// An empty runName defaults to the session directory name.
func NewMLflowTracker(api ExperimentsAPI, experimentID, runName string) *MLflowTracker {
	return &MLflowTracker{api: api, experimentID: experimentID, runName: runName}
}

// Track creates a run, logs the analysis parameters and metrics, and marks the
// run finished. On a logging failure the run is marked failed.
func (t *MLflowTracker) Track(ctx context.Context, data report.Data) (string, error) {
	if t.experimentID == "" {
		return "", errors.New("MLflow experiment ID is required")
	}

	runName := t.runName
	if runName == "" {
		runName = sessionName(data.Session.Dir)
	}
	resp, err := t.api.CreateRun(ctx, ml.CreateRun{
		ExperimentId: t.experimentID,
		RunName:      runName,
		StartTime:    data.Timestamp.UnixMilli(),
		Tags: []ml.RunTag{
			{Key: "mlflow.runName", Value: runName},
			{Key: "joulespectre.version", Value: data.Version},
			{Key: "joulespectre.session_hash", Value: data.Session.Hash},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create MLflow run: %w", err)
	}
	runID := resp.Run.Info.RunId

	if err := t.logAll(ctx, runID, data); err != nil {
		t.finish(ctx, runID, ml.UpdateRunStatusFailed, data)
		return runID, err
	}
	t.finish(ctx, runID, ml.UpdateRunStatusFinished, data)

	slog.Info("Published metrics to MLflow", "experiment", t.experimentID, "run_id", runID)
	return runID, nil
}

func (t *MLflowTracker) logAll(ctx context.Context, runID string, data report.Data) error {
	for _, p := range Params(data) {
		if err := t.api.LogParam(ctx, ml.LogParam{RunId: runID, Key: p.Key, Value: p.Value}); err != nil {
			return fmt.Errorf("log param %s: %w", p.Key, err)
		}
	}

	ts := data.Timestamp.UnixMilli()
	for _, m := range Metrics(data) {
		err := t.api.LogMetric(ctx, ml.LogMetric{
			RunId:     runID,
			Key:       m.Key,
			Value:     m.Value,
			Timestamp: ts,
		})
		if err != nil {
			return fmt.Errorf("log metric %s: %w", m.Key, err)
		}
	}
	return nil
}

func (t *MLflowTracker) finish(ctx context.Context, runID string, status ml.UpdateRunStatus, data report.Data) {
	_, err := t.api.UpdateRun(ctx, ml.UpdateRun{
		RunId:   runID,
		Status:  status,
		EndTime: data.Timestamp.UnixMilli(),
	})
	if err != nil {
		slog.Warn("Failed to update MLflow run status", "run_id", runID, "status", status, "error", err)
	}
}

// Param is one MLflow run parameter.
type Param struct {
	Key   string
	Value string
}

// Metric is one MLflow run metric.
type Metric struct {
	Key   string
	Value float64
}

// Params returns the run parameters describing how the analysis was configured.
func Params(data report.Data) []Param {
	return []Param{
		{Key: "configs", Value: strings.Join(data.Config.Configs, ",")},
		{Key: "default_config", Value: data.Config.DefaultConfig},
		{Key: "max_effort_config", Value: data.Config.MaxEffortConfig},
		{Key: "region", Value: data.Config.Region},
	}
}

// Metrics flattens the analysis into MLflow metrics. Undefined ratios and
// insufficient comparisons are omitted rather than logged as zero.
func Metrics(data report.Data) []Metric {
	a := data.Analysis
	if a == nil {
		return nil
	}

	ov := a.Overview
	metrics := []Metric{
		{"total_runs", float64(ov.TotalRuns)},
		{"successful_runs", float64(ov.SuccessfulRuns)},
		{"failed_runs", float64(ov.FailedRuns)},
		{"total_bugs", float64(ov.TotalBugs)},
		{"total_energy_j", ov.TotalEnergyJ},
		{"estimated_cost_usd", ov.CostUSD},
		{"estimated_co2_grams", ov.CO2Grams},
		{"warnings", float64(len(a.Warnings))},
	}
	if ov.Efficiency.Defined {
		metrics = append(metrics, Metric{"bugs_per_kj", ov.Efficiency.BugsPerKJ()})
	}

	for _, c := range a.Configs {
		if c.InsufficientData {
			continue
		}
		prefix := "config." + metricKey(c.Config) + "."
		metrics = append(metrics,
			Metric{prefix + "runs", float64(c.Runs)},
			Metric{prefix + "avg_bugs", c.Bugs.Mean},
			Metric{prefix + "avg_energy_j", c.EnergyJ.Mean},
			Metric{prefix + "avg_duration_s", c.DurationS.Mean},
		)
		if c.Efficiency.Defined {
			metrics = append(metrics,
				Metric{prefix + "bugs_per_kj", c.Efficiency.BugsPerKJ()},
				Metric{prefix + "joules_per_bug", c.Efficiency.JoulesPerBug},
			)
		}
	}

	if e := a.Effort; e.Sufficient {
		metrics = append(metrics,
			Metric{"effort.additional_bugs", e.AdditionalBugs},
			Metric{"effort.additional_energy_j", e.AdditionalEnergyJ},
			Metric{"effort.energy_cost_per_additional_bug", e.EnergyCostPerAdditionalBug},
		)
	}
	return metrics
}

// metricKey replaces characters MLflow rejects in metric names.
func metricKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_', r == '-', r == '.', r == '/':
			return r
		default:
			return '_'
		}
	}, s)
}
