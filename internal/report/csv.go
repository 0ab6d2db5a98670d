package report

import (
	"encoding/csv"
	"math"
	"strconv"

	"github.com/ppiankov/joulespectre/internal/dataset"
)

// MergedColumns is the header of merged_analysis_data.csv.
var MergedColumns = []string{
	"Run", "Config", "Project", "BuildTool", "Status", "BugCount",
	"TotalPackageEnergy_J", "TotalDRAMEnergy_J", "Duration_s", "TotalEnergy_J",
}

// Generate writes one row per merged record in merge order.
func (r *CSVReporter) Generate(data Data) error {
	cw := csv.NewWriter(r.Writer)
	if err := cw.Write(MergedColumns); err != nil {
		return err
	}

	var records []dataset.MergedRecord
	if data.Analysis != nil {
		records = data.Analysis.Records
	}
	for _, m := range records {
		row := []string{
			strconv.Itoa(m.Run),
			m.Config,
			m.Project,
			m.BuildTool,
			string(m.Status),
			strconv.Itoa(m.BugCount),
			formatFloat(m.TotalPackageEnergyJ),
			formatFloat(m.TotalDRAMEnergyJ),
			formatFloat(m.DurationS),
			formatFloat(m.TotalEnergyJ),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatFloat leaves the cell empty for a value that overflowed.
func formatFloat(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
