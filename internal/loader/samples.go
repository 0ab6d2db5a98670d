package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/joulespectre/internal/dataset"
)

// SamplePattern selects energy measurement files in a session directory.
const SamplePattern = "run_*.csv"

var sampleColumns = []string{"timestamp", "package_energy", "dram_energy"}

// ParseRunFilename decodes the run number and configuration from a
// run_<N>_config_<C>.csv filename. Anything else is an error.
func ParseRunFilename(name string) (dataset.RunKey, error) {
	base := filepath.Base(name)
	stem, ok := strings.CutSuffix(base, ".csv")
	if !ok {
		return dataset.RunKey{}, &dataset.MalformedFilenameError{Name: base, Reason: "missing .csv extension"}
	}

	tokens := strings.Split(stem, "_")
	if len(tokens) != 4 {
		return dataset.RunKey{}, &dataset.MalformedFilenameError{
			Name:   base,
			Reason: fmt.Sprintf("want 4 underscore-separated tokens, got %d", len(tokens)),
		}
	}
	if tokens[0] != "run" || tokens[2] != "config" {
		return dataset.RunKey{}, &dataset.MalformedFilenameError{Name: base, Reason: "want run_<N>_config_<C>"}
	}

	run, err := strconv.Atoi(tokens[1])
	if err != nil || strings.HasPrefix(tokens[1], "+") || strings.HasPrefix(tokens[1], "-") {
		return dataset.RunKey{}, &dataset.MalformedFilenameError{Name: base, Reason: fmt.Sprintf("run number %q is not an integer", tokens[1])}
	}
	if run <= 0 {
		return dataset.RunKey{}, &dataset.MalformedFilenameError{Name: base, Reason: fmt.Sprintf("run number %d must be positive", run)}
	}
	if tokens[3] == "" {
		return dataset.RunKey{}, &dataset.MalformedFilenameError{Name: base, Reason: "empty configuration"}
	}

	return dataset.RunKey{Run: run, Config: tokens[3]}, nil
}

// SampleFiles lists the measurement files of a session directory in name order.
func SampleFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, SamplePattern))
	if err != nil {
		return nil, fmt.Errorf("list measurement files: %w", err)
	}
	if len(files) == 0 {
		return nil, &dataset.MissingInputError{What: "energy measurement files", Path: filepath.Join(dir, SamplePattern)}
	}
	sort.Strings(files)
	return files, nil
}

// LoadSamples parses every measurement file of a session directory, at most
// workers at a time. The first failure aborts the load.
func LoadSamples(ctx context.Context, dir string, workers int) ([]dataset.EnergySample, error) {
	files, err := SampleFiles(dir)
	if err != nil {
		return nil, err
	}

	// Names are validated up front so a bad filename fails before any file is read.
	keys := make([]dataset.RunKey, len(files))
	for i, path := range files {
		if keys[i], err = ParseRunFilename(path); err != nil {
			return nil, err
		}
	}

	perFile := make([][]dataset.EnergySample, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			samples, err := loadSampleFile(path, keys[i])
			if err != nil {
				return err
			}
			perFile[i] = samples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, s := range perFile {
		total += len(s)
	}
	samples := make([]dataset.EnergySample, 0, total)
	for _, s := range perFile {
		samples = append(samples, s...)
	}

	slog.Info("Loaded energy measurement files", "files", len(files), "samples", len(samples))
	return samples, nil
}

func loadSampleFile(path string, key dataset.RunKey) ([]dataset.EnergySample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	samples, err := ReadSamples(filepath.Base(path), key, f)
	if err != nil {
		return nil, err
	}
	slog.Debug("Parsed measurement file", "file", filepath.Base(path), "run", key.Run, "config", key.Config, "samples", len(samples))
	return samples, nil
}

// ReadSamples parses one measurement file body, stamping every sample with key.
func ReadSamples(name string, key dataset.RunKey, r io.Reader) ([]dataset.EnergySample, error) {
	t, err := readTable(name, r, sampleColumns...)
	if err != nil {
		return nil, err
	}

	samples := make([]dataset.EnergySample, 0, len(t.rows))
	for i := range t.rows {
		ts, err := t.floatAt(i, "timestamp")
		if err != nil {
			return nil, err
		}
		pkg, err := t.floatAt(i, "package_energy")
		if err != nil {
			return nil, err
		}
		dram, err := t.floatAt(i, "dram_energy")
		if err != nil {
			return nil, err
		}
		samples = append(samples, dataset.EnergySample{
			Run:           key.Run,
			Config:        key.Config,
			TimestampMs:   ts,
			PackageEnergy: pkg,
			DRAMEnergy:    dram,
		})
	}
	return samples, nil
}
