package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/joulespectre/internal/analyzer"
)

// Schema identifies the JSON report layout.
const Schema = "joulespectre/v1"

type jsonEnvelope struct {
	Schema    string                   `json:"$schema"`
	Tool      string                   `json:"tool"`
	Version   string                   `json:"version"`
	Timestamp string                   `json:"timestamp"`
	Session   Session                  `json:"session"`
	Config    ReportConfig             `json:"config"`
	Analysis  *analyzer.AnalysisResult `json:"analysis"`
}

// Generate writes the analysis as an indented JSON envelope.
func (r *JSONReporter) Generate(data Data) error {
	env := jsonEnvelope{
		Schema:    Schema,
		Tool:      data.Tool,
		Version:   data.Version,
		Timestamp: data.Timestamp.Format(time.RFC3339),
		Session:   data.Session,
		Config:    data.Config,
		Analysis:  data.Analysis,
	}

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON report: %w", err)
	}
	out = append(out, '\n')
	_, err = r.Writer.Write(out)
	return err
}
