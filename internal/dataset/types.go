package dataset

import "fmt"

// Status is the outcome of one analysis run.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// ParseStatus accepts the two status spellings used in vulnerability summaries.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusSuccess, StatusFailed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status %q (want SUCCESS or FAILED)", s)
	}
}

// RunKey identifies one run of one tool configuration.
type RunKey struct {
	Run    int
	Config string
}

func (k RunKey) String() string {
	return fmt.Sprintf("run %d/config %s", k.Run, k.Config)
}

// Less orders keys by run number, then configuration.
func (k RunKey) Less(o RunKey) bool {
	if k.Run != o.Run {
		return k.Run < o.Run
	}
	return k.Config < o.Config
}

// VulnerabilityRecord is one row of vulnerability_summary.csv.
type VulnerabilityRecord struct {
	Run       int
	Config    string
	Project   string
	BuildTool string
	Status    Status
	BugCount  int // meaningful only when Status is SUCCESS
}

// Key returns the join key of the record.
func (r VulnerabilityRecord) Key() RunKey {
	return RunKey{Run: r.Run, Config: r.Config}
}

// EnergySample is one measurement tick. Run and Config come from the
// measurement filename, never from the sample row.
type EnergySample struct {
	Run           int
	Config        string
	TimestampMs   float64
	PackageEnergy float64 // joules
	DRAMEnergy    float64 // joules
}

// Key returns the join key of the sample.
func (s EnergySample) Key() RunKey {
	return RunKey{Run: s.Run, Config: s.Config}
}

// EnergySummary reduces all samples of one run to totals.
type EnergySummary struct {
	Run                 int
	Config              string
	TotalPackageEnergyJ float64
	TotalDRAMEnergyJ    float64
	DurationS           float64
	TotalEnergyJ        float64
}

// Key returns the join key of the summary.
func (s EnergySummary) Key() RunKey {
	return RunKey{Run: s.Run, Config: s.Config}
}

// MergedRecord joins a vulnerability record with the energy summary of the same run.
type MergedRecord struct {
	VulnerabilityRecord
	TotalPackageEnergyJ float64
	TotalDRAMEnergyJ    float64
	DurationS           float64
	TotalEnergyJ        float64
}

// Succeeded reports whether the run finished and its bug count is usable.
func (m MergedRecord) Succeeded() bool {
	return m.Status == StatusSuccess
}
