package loader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ppiankov/joulespectre/internal/dataset"
)

// VulnerabilityFile is the fixed name of the findings table in a session directory.
const VulnerabilityFile = "vulnerability_summary.csv"

var vulnerabilityColumns = []string{"Run", "Config", "Project", "BuildTool", "Status", "BugCount"}

// LoadVulnerabilities reads the findings table of a session directory.
func LoadVulnerabilities(dir string) ([]dataset.VulnerabilityRecord, error) {
	path := filepath.Join(dir, VulnerabilityFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &dataset.MissingInputError{What: "vulnerability summary", Path: path}
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	records, err := ReadVulnerabilities(VulnerabilityFile, f)
	if err != nil {
		return nil, err
	}
	slog.Info("Loaded vulnerability records", "records", len(records))
	return records, nil
}

// ReadVulnerabilities parses a findings table. Any malformed row fails the whole
// table, and a run key that appears twice is rejected with a DuplicateKeyError.
func ReadVulnerabilities(name string, r io.Reader) ([]dataset.VulnerabilityRecord, error) {
	t, err := readTable(name, r, vulnerabilityColumns...)
	if err != nil {
		return nil, err
	}

	records := make([]dataset.VulnerabilityRecord, 0, len(t.rows))
	seen := make(map[dataset.RunKey]int, len(t.rows))
	for i, row := range t.rows {
		run, err := t.intAt(i, "Run")
		if err != nil {
			return nil, err
		}
		if run <= 0 {
			return nil, fmt.Errorf("%s line %d: Run %d must be positive", name, t.line(i), run)
		}

		config := t.str(row, "Config")
		if config == "" {
			return nil, fmt.Errorf("%s line %d: empty Config", name, t.line(i))
		}

		status, err := dataset.ParseStatus(t.str(row, "Status"))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, t.line(i), err)
		}

		bugs := 0
		if raw := t.str(row, "BugCount"); raw != "" || status == dataset.StatusSuccess {
			bugs, err = t.intAt(i, "BugCount")
			if err != nil {
				return nil, err
			}
			if bugs < 0 {
				return nil, fmt.Errorf("%s line %d: BugCount %d is negative", name, t.line(i), bugs)
			}
		}

		rec := dataset.VulnerabilityRecord{
			Run:       run,
			Config:    config,
			Project:   t.str(row, "Project"),
			BuildTool: t.str(row, "BuildTool"),
			Status:    status,
			BugCount:  bugs,
		}
		if first, dup := seen[rec.Key()]; dup {
			return nil, &dataset.DuplicateKeyError{File: name, Key: rec.Key(), Lines: []int{first, t.line(i)}}
		}
		seen[rec.Key()] = t.line(i)
		records = append(records, rec)
	}
	return records, nil
}
