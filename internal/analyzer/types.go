package analyzer

import (
	"github.com/ppiankov/joulespectre/internal/dataset"
)

// EfficiencyStat relates findings yield to energy spent for one group of runs.
// When the group's energy sum is not positive or overflows the ratios are zero and Defined is false.
type EfficiencyStat struct {
	AvgBugs      float64 `json:"avg_bugs"`
	AvgEnergyJ   float64 `json:"avg_energy_j"`
	BugsPerJoule float64 `json:"bugs_per_joule"`
	JoulesPerBug float64 `json:"joules_per_bug"`
	Defined      bool    `json:"defined"`
}

// BugsPerKJ returns BugsPerJoule scaled to kilojoules.
func (e EfficiencyStat) BugsPerKJ() float64 {
	return e.BugsPerJoule * 1000
}

// Spread is the mean and sample standard deviation of a measure.
type Spread struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Distribution extends Spread with the observed range.
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ConfigStats summarizes the successful runs of one tool configuration.
type ConfigStats struct {
	Config           string         `json:"config"`
	Label            string         `json:"label,omitempty"`
	Runs             int            `json:"runs"`
	InsufficientData bool           `json:"insufficient_data,omitempty"`
	Bugs             Distribution   `json:"bugs"`
	EnergyJ          Spread         `json:"energy_j"`
	DurationS        Spread         `json:"duration_s"`
	Efficiency       EfficiencyStat `json:"efficiency"`
	CostUSD          float64        `json:"estimated_cost_usd"`
	CO2Grams         float64        `json:"estimated_co2_grams"`
}

// ProjectStats summarizes the successful runs against one target project.
type ProjectStats struct {
	Project      string         `json:"project"`
	Runs         int            `json:"runs"`
	TotalBugs    int            `json:"total_bugs"`
	AvgBugs      float64        `json:"avg_bugs"`
	MaxBugs      int            `json:"max_bugs"`
	TotalEnergyJ float64        `json:"total_energy_j"`
	AvgEnergyJ   float64        `json:"avg_energy_j"`
	AvgDurationS float64        `json:"avg_duration_s"`
	Efficiency   EfficiencyStat `json:"efficiency"`
}

// EffortComparison contrasts a default-effort configuration with a max-effort one.
// When either side has no successful runs Sufficient is false and the deltas are zero.
type EffortComparison struct {
	Baseline      string `json:"baseline"`
	Candidate     string `json:"candidate"`
	Sufficient    bool   `json:"sufficient"`
	BaselineRuns  int    `json:"baseline_runs"`
	CandidateRuns int    `json:"candidate_runs"`

	BaselineAvgBugs     float64 `json:"baseline_avg_bugs"`
	CandidateAvgBugs    float64 `json:"candidate_avg_bugs"`
	BaselineAvgEnergyJ  float64 `json:"baseline_avg_energy_j"`
	CandidateAvgEnergyJ float64 `json:"candidate_avg_energy_j"`

	AdditionalBugs    float64 `json:"additional_bugs"`
	AdditionalEnergyJ float64 `json:"additional_energy_j"`

	// Relative deltas are percentages; undefined when the baseline mean is zero.
	RelativeBugsPct       float64 `json:"relative_bugs_pct"`
	RelativeBugsDefined   bool    `json:"relative_bugs_defined"`
	RelativeEnergyPct     float64 `json:"relative_energy_pct"`
	RelativeEnergyDefined bool    `json:"relative_energy_defined"`

	EnergyCostPerAdditionalBug float64 `json:"energy_cost_per_additional_bug_j"`
}

// ConfigRate is the share of runs of a configuration that succeeded.
type ConfigRate struct {
	Config      string  `json:"config"`
	Runs        int     `json:"runs"`
	Successful  int     `json:"successful"`
	SuccessRate float64 `json:"success_rate_pct"`
}

// Overview holds session-wide totals.
type Overview struct {
	TotalRuns       int            `json:"total_runs"`
	SuccessfulRuns  int            `json:"successful_runs"`
	FailedRuns      int            `json:"failed_runs"`
	Projects        int            `json:"projects"`
	BuildTools      []string       `json:"build_tools"`
	SuccessByConfig []ConfigRate   `json:"success_by_config"`
	TotalBugs       int            `json:"total_bugs"`
	TotalEnergyJ    float64        `json:"total_energy_j"`
	Efficiency      EfficiencyStat `json:"efficiency"`
	CostUSD         float64        `json:"estimated_cost_usd"`
	CO2Grams        float64        `json:"estimated_co2_grams"`
}

// RunPoint is the per-run efficiency of one successful run.
type RunPoint struct {
	Run          int     `json:"run"`
	Config       string  `json:"config"`
	Project      string  `json:"project"`
	BugCount     int     `json:"bug_count"`
	TotalEnergyJ float64 `json:"total_energy_j"`
	BugsPerKJ    float64 `json:"bugs_per_kj"`
	Defined      bool    `json:"defined"`
}

// AnalysisResult holds the merged table and every statistic derived from it.
type AnalysisResult struct {
	Records  []dataset.MergedRecord `json:"-"`
	Overview Overview               `json:"overview"`
	Configs  []ConfigStats          `json:"configs"`
	Projects []ProjectStats         `json:"projects"`
	Effort   EffortComparison       `json:"effort"`
	Points   []RunPoint             `json:"points"`
	Warnings []string               `json:"warnings,omitempty"`
}

// AnalyzerConfig controls analysis behavior.
type AnalyzerConfig struct {
	Configs         []string          // expected configurations, in report order
	Labels          map[string]string // display names per configuration
	DefaultConfig   string
	MaxEffortConfig string
	Region          string // electricity pricing region
}
