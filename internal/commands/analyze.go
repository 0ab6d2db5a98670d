package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/joulespectre/internal/analyzer"
	"github.com/ppiankov/joulespectre/internal/artifacts"
	"github.com/ppiankov/joulespectre/internal/config"
	"github.com/ppiankov/joulespectre/internal/dataset"
	"github.com/ppiankov/joulespectre/internal/energy"
	"github.com/ppiankov/joulespectre/internal/loader"
	"github.com/ppiankov/joulespectre/internal/merge"
	"github.com/ppiankov/joulespectre/internal/publish"
	"github.com/ppiankov/joulespectre/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultTrackingURI = "http://localhost:5000"
	defaultTimeout     = 10 * time.Minute
	sessionPrompt      = "Enter path to results session directory: "
)

var analyzeFlags struct {
	format           string
	defaultConfig    string
	maxEffortConfig  string
	region           string
	workers          int
	timeout          time.Duration
	noWrite          bool
	mlflowExperiment string
	gcsBucket        string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [SESSION_DIR]",
	Short: "Analyze energy against findings for one results session",
	Long: `Load vulnerability_summary.csv and every run_<N>_config_<C>.csv measurement file
from a results session directory, join them per run and configuration, and report
how many findings each configuration produced per joule.

Writes merged_analysis_data.csv, analysis_summary.txt and analysis_report.json into
the session directory. Without SESSION_DIR the path is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFlags.format, "format", config.DefaultFormat, "Console output format: text, json")
	analyzeCmd.Flags().StringVar(&analyzeFlags.defaultConfig, "default-config", config.DefaultEffortConfig, "Baseline configuration for the effort comparison")
	analyzeCmd.Flags().StringVar(&analyzeFlags.maxEffortConfig, "max-effort-config", config.DefaultMaxEffortConfig, "Max-effort configuration for the effort comparison")
	analyzeCmd.Flags().StringVar(&analyzeFlags.region, "region", "", "Electricity pricing region: us, eu, nl, de, uk, fr (default: default)")
	analyzeCmd.Flags().IntVar(&analyzeFlags.workers, "workers", config.DefaultWorkers, "Measurement files parsed concurrently")
	analyzeCmd.Flags().DurationVar(&analyzeFlags.timeout, "timeout", defaultTimeout, "Analysis timeout")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.noWrite, "no-write", false, "Print results without writing files into the session directory")
	analyzeCmd.Flags().StringVar(&analyzeFlags.mlflowExperiment, "mlflow-experiment", "", "Publish metrics to this MLflow experiment ID")
	analyzeCmd.Flags().StringVar(&analyzeFlags.gcsBucket, "gcs-bucket", "", "Archive artifacts to this GCS bucket")

	_ = viper.BindPFlag("region", analyzeCmd.Flags().Lookup("region"))
	_ = viper.BindPFlag("mlflow_experiment_id", analyzeCmd.Flags().Lookup("mlflow-experiment"))
	_ = viper.BindPFlag("gcs_bucket", analyzeCmd.Flags().Lookup("gcs-bucket"))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Load config and apply defaults
	cfg, err := config.Load(".")
	if err != nil {
		slog.Warn("Failed to load config file", "error", err)
	}
	applyAnalyzeConfigDefaults(cfg)

	ctx := cmd.Context()
	if analyzeFlags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, analyzeFlags.timeout)
		defer cancel()
	}

	reporter, err := selectReporter(analyzeFlags.format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	dir, err := resolveSessionDir(args, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	region := firstNonEmpty(viper.GetString("region"), cfg.Region, config.DefaultRegion)
	configs := cfg.ConfigList()
	analysis, err := analyzeSession(ctx, dir, analyzer.AnalyzerConfig{
		Configs:         configs,
		Labels:          cfg.LabelMap(),
		DefaultConfig:   analyzeFlags.defaultConfig,
		MaxEffortConfig: analyzeFlags.maxEffortConfig,
		Region:          region,
	}, analyzeFlags.workers)
	if err != nil {
		return enhanceError("analyze session", err)
	}

	// Build report data
	data := report.Data{
		Tool:      "joulespectre",
		Version:   version,
		Timestamp: time.Now().UTC(),
		Session: report.Session{
			Dir:  dir,
			Hash: computeSessionHash(dir, configs),
		},
		Config: report.ReportConfig{
			Configs:         configs,
			DefaultConfig:   analyzeFlags.defaultConfig,
			MaxEffortConfig: analyzeFlags.maxEffortConfig,
			Region:          region,
		},
		Analysis: analysis,
	}

	if err := reporter.Generate(data); err != nil {
		return err
	}

	var paths []string
	if !analyzeFlags.noWrite {
		paths, err = artifacts.WriteAll(dir, artifacts.ForReport(data))
		if err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		out := cmd.ErrOrStderr()
		fmt.Fprintf(out, "\nResults saved to: %s\n", dir)
		for _, p := range paths {
			fmt.Fprintf(out, "  - %s\n", p)
		}
	}

	return publishResults(ctx, cfg, data, paths)
}

// analyzeSession runs the load, aggregate, merge and analyze stages for one session.
func analyzeSession(ctx context.Context, dir string, acfg analyzer.AnalyzerConfig, workers int) (*analyzer.AnalysisResult, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, &dataset.MissingInputError{What: "session directory", Path: dir}
	}

	vulns, err := loader.LoadVulnerabilities(dir)
	if err != nil {
		return nil, err
	}
	samples, err := loader.LoadSamples(ctx, dir, workers)
	if err != nil {
		return nil, err
	}

	summaries := energy.Aggregate(samples)
	merged := merge.Merge(vulns, summaries)
	slog.Info("Merged dataset", "records", len(merged.Records), "energy_runs", len(summaries), "dropped", merged.Dropped())

	return analyzer.Analyze(merged, acfg), nil
}

// resolveSessionDir takes the directory from args, or prompts for it once.
func resolveSessionDir(args []string, in io.Reader, prompt io.Writer) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	fmt.Fprint(prompt, sessionPrompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read session directory: %w", err)
	}
	dir := strings.Trim(strings.TrimSpace(line), `"'`)
	if dir == "" {
		return "", errors.New("no session directory given")
	}
	return dir, nil
}

// publishResults sends the analysis to the sinks that are configured.
func publishResults(ctx context.Context, cfg config.Config, data report.Data, paths []string) error {
	if experiment := firstNonEmpty(viper.GetString("mlflow_experiment_id"), cfg.MLflow.ExperimentID); experiment != "" {
		uri := firstNonEmpty(viper.GetString("mlflow_tracking_uri"), cfg.MLflow.TrackingURI, defaultTrackingURI)
		api, err := publish.NewExperimentsAPI(uri, viper.GetString("databricks_token"))
		if err != nil {
			return enhanceError("connect to MLflow", err)
		}
		if _, err := publish.NewMLflowTracker(api, experiment, cfg.MLflow.RunName).Track(ctx, data); err != nil {
			return enhanceError("publish to MLflow", err)
		}
	}

	bucket := firstNonEmpty(viper.GetString("gcs_bucket"), cfg.GCS.Bucket)
	if bucket == "" {
		return nil
	}
	if len(paths) == 0 {
		slog.Warn("Skipping GCS archive: no files written", "bucket", bucket)
		return nil
	}
	archiver, err := publish.NewGCSArchiver(ctx, bucket, cfg.GCS.Prefix, cfg.GCS.CredentialsFile)
	if err != nil {
		return enhanceError("connect to GCS", err)
	}
	defer archiver.Close()
	if _, err := archiver.Archive(ctx, data.Session.Dir, paths); err != nil {
		return enhanceError("archive to GCS", err)
	}
	return nil
}

func applyAnalyzeConfigDefaults(cfg config.Config) {
	if analyzeFlags.format == config.DefaultFormat && cfg.Format != "" {
		analyzeFlags.format = cfg.Format
	}
	if analyzeFlags.defaultConfig == config.DefaultEffortConfig && cfg.DefaultConfig != "" {
		analyzeFlags.defaultConfig = cfg.DefaultConfig
	}
	if analyzeFlags.maxEffortConfig == config.DefaultMaxEffortConfig && cfg.MaxEffortConfig != "" {
		analyzeFlags.maxEffortConfig = cfg.MaxEffortConfig
	}
	if analyzeFlags.workers == config.DefaultWorkers && cfg.Workers > 0 {
		analyzeFlags.workers = cfg.Workers
	}
	if analyzeFlags.timeout == defaultTimeout && cfg.TimeoutDuration() > 0 {
		analyzeFlags.timeout = cfg.TimeoutDuration()
	}
}

func selectReporter(format string, w io.Writer) (report.Reporter, error) {
	switch format {
	case "json":
		return &report.JSONReporter{Writer: w}, nil
	case "text":
		return &report.TextReporter{Writer: w}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use text or json)", format)
	}
}
