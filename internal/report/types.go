package report

import (
	"io"
	"time"

	"github.com/ppiankov/joulespectre/internal/analyzer"
)

// Reporter is the interface for output formatters.
type Reporter interface {
	Generate(data Data) error
}

// Data holds all information needed to generate a report.
type Data struct {
	Tool      string                   `json:"tool"`
	Version   string                   `json:"version"`
	Timestamp time.Time                `json:"timestamp"`
	Session   Session                  `json:"session"`
	Config    ReportConfig             `json:"config"`
	Analysis  *analyzer.AnalysisResult `json:"analysis"`
}

// Session identifies the results session being analyzed.
type Session struct {
	Dir  string `json:"dir"`
	Hash string `json:"hash"`
}

// ReportConfig captures the analysis configuration used.
type ReportConfig struct {
	Configs         []string `json:"configs"`
	DefaultConfig   string   `json:"default_config"`
	MaxEffortConfig string   `json:"max_effort_config"`
	Region          string   `json:"region"`
}

// TextReporter generates the human-readable analysis summary.
type TextReporter struct {
	Writer io.Writer
}

// JSONReporter generates joulespectre/v1 envelope JSON output.
type JSONReporter struct {
	Writer io.Writer
}

// CSVReporter writes the merged per-run table.
type CSVReporter struct {
	Writer io.Writer
}
