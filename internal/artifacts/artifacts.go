// Package artifacts writes the output files of an analysis as one unit:
// either every file is in place or none of them changed.
package artifacts

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ppiankov/joulespectre/internal/report"
)

// Output file names inside the session directory.
const (
	MergedCSV   = "merged_analysis_data.csv"
	SummaryText = "analysis_summary.txt"
	ReportJSON  = "analysis_report.json"
)

// File is one artifact and the function that renders it.
type File struct {
	Name   string
	Render func(w io.Writer) error
}

// ForReport returns the standard artifact set for an analysis.
func ForReport(data report.Data) []File {
	return []File{
		{Name: MergedCSV, Render: func(w io.Writer) error {
			return (&report.CSVReporter{Writer: w}).Generate(data)
		}},
		{Name: SummaryText, Render: func(w io.Writer) error {
			return (&report.TextReporter{Writer: w}).Generate(data)
		}},
		{Name: ReportJSON, Render: func(w io.Writer) error {
			return (&report.JSONReporter{Writer: w}).Generate(data)
		}},
	}
}

// rename moves a file into place. Tests replace it to fail a single move.
var rename = os.Rename

// committed is one file moved into place, with the backup of the file it
// replaced if there was one.
type committed struct {
	final  string
	backup string
}

// WriteAll renders every file into a temporary sibling and renames them into
// place only after all renders succeeded. Replaced files are kept as backups
// until the last rename and restored if any rename fails. It returns the final
// paths.
func WriteAll(dir string, files []File) ([]string, error) {
	for _, f := range files {
		if err := checkTarget(filepath.Join(dir, f.Name)); err != nil {
			return nil, err
		}
	}

	temps := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range temps {
			_ = os.Remove(tmp)
		}
	}

	for _, f := range files {
		tmp, err := render(dir, f)
		if err != nil {
			cleanup()
			return nil, err
		}
		temps = append(temps, tmp)
	}

	done := make([]committed, 0, len(files))
	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			c := done[i]
			if c.backup == "" {
				_ = os.Remove(c.final)
				continue
			}
			if err := rename(c.backup, c.final); err != nil {
				slog.Error("Failed to restore previous artifact", "path", c.final, "backup", c.backup, "error", err)
			}
		}
	}

	for i, f := range files {
		c := committed{final: filepath.Join(dir, f.Name)}
		if _, err := os.Lstat(c.final); err == nil {
			c.backup = filepath.Join(dir, "."+f.Name+".bak")
			if err := rename(c.final, c.backup); err != nil {
				temps = temps[i:]
				cleanup()
				rollback()
				return nil, fmt.Errorf("back up %s: %w", f.Name, err)
			}
		}
		if err := rename(temps[i], c.final); err != nil {
			if c.backup != "" {
				done = append(done, c)
			}
			temps = temps[i:]
			cleanup()
			rollback()
			return nil, fmt.Errorf("move %s into place: %w", f.Name, err)
		}
		done = append(done, c)
		slog.Debug("Wrote artifact", "path", c.final)
	}

	paths := make([]string, 0, len(done))
	for _, c := range done {
		if c.backup != "" {
			_ = os.Remove(c.backup)
		}
		paths = append(paths, c.final)
	}
	return paths, nil
}

// checkTarget accepts a destination that is missing or a regular file.
func checkTarget(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s exists and is not a regular file", path)
	}
	return nil
}

func render(dir string, f File) (string, error) {
	out, err := os.CreateTemp(dir, "."+f.Name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", f.Name, err)
	}
	tmp := out.Name()

	if err := f.Render(out); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("render %s: %w", f.Name, err)
	}
	if err := errors.Join(out.Sync(), out.Close()); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write %s: %w", f.Name, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write %s: %w", f.Name, err)
	}
	return tmp, nil
}
