package analyzer

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/ppiankov/joulespectre/internal/dataset"
	"github.com/ppiankov/joulespectre/internal/merge"
	"github.com/ppiankov/joulespectre/internal/pricing"
)

// Analyze derives every statistic of a merged session and records join
// discrepancies as warnings.
func Analyze(merged *merge.Result, cfg AnalyzerConfig) *AnalysisResult {
	records := merged.Records

	var warnings []string
	for _, k := range merged.UnmatchedVulnerabilities {
		slog.Warn("Dropped run without energy measurements", "run", k.Run, "config", k.Config)
		warnings = append(warnings, fmt.Sprintf("%s has findings but no energy measurements; dropped", k))
	}
	for _, k := range merged.UnmatchedEnergy {
		slog.Warn("Dropped run without findings row", "run", k.Run, "config", k.Config)
		warnings = append(warnings, fmt.Sprintf("%s has energy measurements but no findings row; dropped", k))
	}
	for _, k := range merged.FannedOut {
		slog.Warn("Run matched more than one row", "run", k.Run, "config", k.Config)
		warnings = append(warnings, fmt.Sprintf("%s matched more than one row; merged rows duplicated", k))
	}

	if _, energyJ := sums(successful(records)); !isFinite(energyJ) {
		slog.Warn("Energy totals overflow float64")
		warnings = append(warnings, "energy totals exceed the float64 range; affected statistics reported as undefined")
	}

	configs := CompareConfigs(records, cfg.Configs)
	for i := range configs {
		configs[i].Label = cfg.Labels[configs[i].Config]
		energyJ := configs[i].EnergyJ.Mean * float64(configs[i].Runs)
		configs[i].CostUSD = finite(pricing.EnergyCost(cfg.Region, energyJ))
		configs[i].CO2Grams = finite(pricing.Emissions(cfg.Region, energyJ))
	}

	overview := Summarize(records, cfg.Configs)
	overview.CostUSD = finite(pricing.EnergyCost(cfg.Region, overview.TotalEnergyJ))
	overview.CO2Grams = finite(pricing.Emissions(cfg.Region, overview.TotalEnergyJ))

	return &AnalysisResult{
		Records:  records,
		Overview: overview,
		Configs:  configs,
		Projects: CompareProjects(records),
		Effort:   CompareEffort(records, cfg.DefaultConfig, cfg.MaxEffortConfig),
		Points:   RunEfficiency(records),
		Warnings: warnings,
	}
}

// successful keeps the rows whose bug count is usable.
func successful(records []dataset.MergedRecord) []dataset.MergedRecord {
	out := make([]dataset.MergedRecord, 0, len(records))
	for _, r := range records {
		if r.Succeeded() {
			out = append(out, r)
		}
	}
	return out
}

// groupBy buckets records by key, preserving record order within a bucket.
func groupBy(records []dataset.MergedRecord, key func(dataset.MergedRecord) string) map[string][]dataset.MergedRecord {
	groups := make(map[string][]dataset.MergedRecord)
	for _, r := range records {
		groups[key(r)] = append(groups[key(r)], r)
	}
	return groups
}

// configOrder lists the expected configurations first, then any other
// observed configuration in name order.
func configOrder(expected []string, observed map[string][]dataset.MergedRecord) []string {
	order := make([]string, 0, len(expected)+len(observed))
	for _, c := range expected {
		if !slices.Contains(order, c) {
			order = append(order, c)
		}
	}
	var extra []string
	for c := range observed {
		if !slices.Contains(order, c) {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

func sums(records []dataset.MergedRecord) (bugs int, energyJ float64) {
	for _, r := range records {
		bugs += r.BugCount
		energyJ += r.TotalEnergyJ
	}
	return bugs, energyJ
}

func column(records []dataset.MergedRecord, f func(dataset.MergedRecord) float64) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = f(r)
	}
	return out
}

// CompareConfigs summarizes successful runs per configuration. Expected
// configurations without successful runs are reported as insufficient data.
func CompareConfigs(records []dataset.MergedRecord, expected []string) []ConfigStats {
	groups := groupBy(successful(records), func(r dataset.MergedRecord) string { return r.Config })

	stats := make([]ConfigStats, 0, len(groups))
	for _, c := range configOrder(expected, groups) {
		rows := groups[c]
		if len(rows) == 0 {
			stats = append(stats, ConfigStats{Config: c, InsufficientData: true})
			continue
		}
		bugs, energyJ := sums(rows)
		stats = append(stats, ConfigStats{
			Config:     c,
			Runs:       len(rows),
			Bugs:       distribution(column(rows, func(r dataset.MergedRecord) float64 { return float64(r.BugCount) })),
			EnergyJ:    spread(column(rows, func(r dataset.MergedRecord) float64 { return r.TotalEnergyJ })),
			DurationS:  spread(column(rows, func(r dataset.MergedRecord) float64 { return r.DurationS })),
			Efficiency: efficiency(bugs, energyJ, len(rows)),
		})
	}
	return stats
}

// CompareProjects summarizes successful runs per target project, in project name order.
func CompareProjects(records []dataset.MergedRecord) []ProjectStats {
	groups := groupBy(successful(records), func(r dataset.MergedRecord) string { return r.Project })

	names := make([]string, 0, len(groups))
	for p := range groups {
		names = append(names, p)
	}
	sort.Strings(names)

	stats := make([]ProjectStats, 0, len(names))
	for _, p := range names {
		rows := groups[p]
		bugs, energyJ := sums(rows)
		maxBugs := 0
		for _, r := range rows {
			maxBugs = max(maxBugs, r.BugCount)
		}
		stats = append(stats, ProjectStats{
			Project:      p,
			Runs:         len(rows),
			TotalBugs:    bugs,
			AvgBugs:      float64(bugs) / float64(len(rows)),
			MaxBugs:      maxBugs,
			TotalEnergyJ: finite(energyJ),
			AvgEnergyJ:   finite(energyJ / float64(len(rows))),
			AvgDurationS: mean(column(rows, func(r dataset.MergedRecord) float64 { return r.DurationS })),
			Efficiency:   efficiency(bugs, energyJ, len(rows)),
		})
	}
	return stats
}

// CompareEffort measures what the candidate configuration buys over the
// baseline: extra bugs, extra energy, and the energy price of each extra bug.
func CompareEffort(records []dataset.MergedRecord, baseline, candidate string) EffortComparison {
	groups := groupBy(successful(records), func(r dataset.MergedRecord) string { return r.Config })
	base, cand := groups[baseline], groups[candidate]

	cmp := EffortComparison{
		Baseline:      baseline,
		Candidate:     candidate,
		BaselineRuns:  len(base),
		CandidateRuns: len(cand),
	}
	if len(base) == 0 || len(cand) == 0 {
		return cmp
	}
	cmp.Sufficient = true

	baseBugs, baseEnergy := sums(base)
	candBugs, candEnergy := sums(cand)
	cmp.BaselineAvgBugs = float64(baseBugs) / float64(len(base))
	cmp.CandidateAvgBugs = float64(candBugs) / float64(len(cand))
	cmp.BaselineAvgEnergyJ = finite(baseEnergy / float64(len(base)))
	cmp.CandidateAvgEnergyJ = finite(candEnergy / float64(len(cand)))

	cmp.AdditionalBugs = cmp.CandidateAvgBugs - cmp.BaselineAvgBugs
	cmp.AdditionalEnergyJ = finite(cmp.CandidateAvgEnergyJ - cmp.BaselineAvgEnergyJ)
	if cmp.BaselineAvgBugs != 0 {
		cmp.RelativeBugsPct = finite((cmp.CandidateAvgBugs/cmp.BaselineAvgBugs - 1) * 100)
		cmp.RelativeBugsDefined = true
	}
	if cmp.BaselineAvgEnergyJ != 0 {
		cmp.RelativeEnergyPct = finite((cmp.CandidateAvgEnergyJ/cmp.BaselineAvgEnergyJ - 1) * 100)
		cmp.RelativeEnergyDefined = true
	}
	cmp.EnergyCostPerAdditionalBug = finite(cmp.AdditionalEnergyJ / max(cmp.AdditionalBugs, 1))
	return cmp
}

// Summarize computes session-wide totals. Run counts and success rates cover
// every merged row; bug and energy totals cover successful rows only.
func Summarize(records []dataset.MergedRecord, expected []string) Overview {
	ov := Overview{TotalRuns: len(records), BuildTools: []string{}}

	projects := make(map[string]bool)
	for _, r := range records {
		projects[r.Project] = true
		if !slices.Contains(ov.BuildTools, r.BuildTool) {
			ov.BuildTools = append(ov.BuildTools, r.BuildTool)
		}
		switch r.Status {
		case dataset.StatusSuccess:
			ov.SuccessfulRuns++
		case dataset.StatusFailed:
			ov.FailedRuns++
		}
	}
	ov.Projects = len(projects)

	all := groupBy(records, func(r dataset.MergedRecord) string { return r.Config })
	for _, c := range configOrder(expected, all) {
		rows := all[c]
		if len(rows) == 0 {
			continue
		}
		rate := ConfigRate{Config: c, Runs: len(rows)}
		for _, r := range rows {
			if r.Succeeded() {
				rate.Successful++
			}
		}
		rate.SuccessRate = float64(rate.Successful) / float64(rate.Runs) * 100
		ov.SuccessByConfig = append(ov.SuccessByConfig, rate)
	}

	ok := successful(records)
	bugs, energyJ := sums(ok)
	ov.TotalBugs, ov.TotalEnergyJ = bugs, finite(energyJ)
	ov.Efficiency = efficiency(bugs, energyJ, len(ok))
	return ov
}

// RunEfficiency returns bugs per kilojoule for every successful run.
func RunEfficiency(records []dataset.MergedRecord) []RunPoint {
	points := make([]RunPoint, 0, len(records))
	for _, r := range successful(records) {
		p := RunPoint{
			Run:          r.Run,
			Config:       r.Config,
			Project:      r.Project,
			BugCount:     r.BugCount,
			TotalEnergyJ: finite(r.TotalEnergyJ),
		}
		if r.TotalEnergyJ > 0 && isFinite(r.TotalEnergyJ) {
			p.BugsPerKJ = float64(r.BugCount) / r.TotalEnergyJ * 1000
			p.Defined = true
		}
		points = append(points, p)
	}
	return points
}
