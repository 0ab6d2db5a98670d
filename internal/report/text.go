package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ppiankov/joulespectre/internal/analyzer"
)

const ruleWidth = 70

// Generate writes the fixed-format analysis summary.
func (r *TextReporter) Generate(data Data) error {
	w := &errWriter{w: r.Writer}
	a := data.Analysis
	if a == nil {
		a = &analyzer.AnalysisResult{}
	}

	w.println(strings.Repeat("=", ruleWidth))
	w.println("joulespectre: Static Analysis Energy & Findings Report")
	w.println(strings.Repeat("=", ruleWidth))
	w.println("")

	writeOverview(w, a.Overview)
	writeKeyFindings(w, a.Overview)
	if err := writeConfigs(w, r.Writer, a.Configs); err != nil {
		return err
	}
	if err := writeProjects(w, r.Writer, a.Projects); err != nil {
		return err
	}
	writeEffort(w, a.Effort, a.Configs)
	writeCost(w, a.Overview, data.Config.Region)

	if len(a.Warnings) > 0 {
		w.printf("\nWarnings (%d):\n", len(a.Warnings))
		for _, msg := range a.Warnings {
			w.printf("  - %s\n", msg)
		}
	}
	return w.err
}

func section(w *errWriter, title string) {
	w.println(title)
	w.println(strings.Repeat("-", ruleWidth))
}

func writeOverview(w *errWriter, ov analyzer.Overview) {
	section(w, "OVERALL STATISTICS")
	w.printf("Total runs: %d\n", ov.TotalRuns)
	w.printf("Successful runs: %d\n", ov.SuccessfulRuns)
	w.printf("Failed runs: %d\n", ov.FailedRuns)
	w.printf("Projects analyzed: %d\n", ov.Projects)
	w.printf("Build tools: %s\n\n", strings.Join(ov.BuildTools, ", "))

	w.println("Success rate by configuration:")
	for _, r := range ov.SuccessByConfig {
		w.printf("  Config %s: %.1f%%\n", r.Config, r.SuccessRate)
	}
	w.println("")
}

func writeKeyFindings(w *errWriter, ov analyzer.Overview) {
	section(w, "KEY FINDINGS")
	w.printf("Total bugs found: %d\n", ov.TotalBugs)
	w.printf("Average bugs per run: %.2f\n", ov.Efficiency.AvgBugs)
	w.printf("Total energy consumed: %.2f J\n", ov.TotalEnergyJ)
	w.printf("Average energy per run: %.2f J\n", ov.Efficiency.AvgEnergyJ)
	w.printf("Overall efficiency: %s bugs/kJ\n\n", formatBugsPerKJ(ov.Efficiency))
}

func writeConfigs(w *errWriter, out io.Writer, configs []analyzer.ConfigStats) error {
	section(w, "CONFIGURATION COMPARISON")
	if w.err != nil {
		return w.err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	tw2 := &errWriter{w: tw}
	tw2.printf("CONFIG\tLABEL\tRUNS\tAVG BUGS\tSTD BUGS\tMIN\tMAX\tAVG ENERGY (J)\tSTD ENERGY\tAVG DURATION (s)\tBUGS/kJ\tJ/BUG\n")
	for _, c := range configs {
		label := c.Label
		if label == "" {
			label = "-"
		}
		if c.InsufficientData {
			tw2.printf("%s\t%s\t0\tinsufficient data\t\t\t\t\t\t\t\t\n", c.Config, label)
			continue
		}
		tw2.printf("%s\t%s\t%d\t%.2f\t%.2f\t%.0f\t%.0f\t%.2f\t%.2f\t%.2f\t%s\t%s\n",
			c.Config, label, c.Runs,
			c.Bugs.Mean, c.Bugs.StdDev, c.Bugs.Min, c.Bugs.Max,
			c.EnergyJ.Mean, c.EnergyJ.StdDev, c.DurationS.Mean,
			formatBugsPerKJ(c.Efficiency), formatJoulesPerBug(c.Efficiency))
	}
	if tw2.err != nil {
		return tw2.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	w.println("")
	return w.err
}

func writeProjects(w *errWriter, out io.Writer, projects []analyzer.ProjectStats) error {
	section(w, "PROJECT COMPARISON")
	if w.err != nil {
		return w.err
	}
	if len(projects) == 0 {
		w.println("No successful runs.")
		w.println("")
		return w.err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	tw2 := &errWriter{w: tw}
	tw2.printf("PROJECT\tRUNS\tTOTAL BUGS\tAVG BUGS\tMAX BUGS\tTOTAL ENERGY (J)\tAVG ENERGY (J)\tAVG DURATION (s)\tBUGS/kJ\n")
	for _, p := range projects {
		tw2.printf("%s\t%d\t%d\t%.2f\t%d\t%.2f\t%.2f\t%.2f\t%s\n",
			p.Project, p.Runs, p.TotalBugs, p.AvgBugs, p.MaxBugs,
			p.TotalEnergyJ, p.AvgEnergyJ, p.AvgDurationS, formatBugsPerKJ(p.Efficiency))
	}
	if tw2.err != nil {
		return tw2.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	w.println("")
	return w.err
}

func writeEffort(w *errWriter, e analyzer.EffortComparison, configs []analyzer.ConfigStats) {
	section(w, "EFFORT VS FINDINGS")
	if !e.Sufficient {
		w.printf("Insufficient data: config %s has %d successful runs, config %s has %d.\n\n",
			e.Baseline, e.BaselineRuns, e.Candidate, e.CandidateRuns)
		return
	}

	w.printf("Config %s%s:\n", e.Baseline, labelSuffix(configs, e.Baseline))
	w.printf("  Average bugs found: %.2f\n", e.BaselineAvgBugs)
	w.printf("  Average energy: %.2f J\n", e.BaselineAvgEnergyJ)
	w.printf("Config %s%s:\n", e.Candidate, labelSuffix(configs, e.Candidate))
	w.printf("  Average bugs found: %.2f\n", e.CandidateAvgBugs)
	w.printf("  Average energy: %.2f J\n", e.CandidateAvgEnergyJ)
	w.println("Difference:")
	w.printf("  Additional bugs found: %.2f (%s)\n", e.AdditionalBugs, formatPct(e.RelativeBugsPct, e.RelativeBugsDefined))
	w.printf("  Additional energy used: %.2f J (%s)\n", e.AdditionalEnergyJ, formatPct(e.RelativeEnergyPct, e.RelativeEnergyDefined))
	w.printf("  Energy cost per additional bug: %.2f J/bug\n\n", e.EnergyCostPerAdditionalBug)
}

func writeCost(w *errWriter, ov analyzer.Overview, region string) {
	section(w, "ESTIMATED COST")
	if region == "" {
		region = "default"
	}
	w.printf("Electricity cost (%s): $%.6f\n", region, ov.CostUSD)
	w.printf("Emissions (%s): %.4f gCO2eq\n", region, ov.CO2Grams)
}

func labelSuffix(configs []analyzer.ConfigStats, config string) string {
	for _, c := range configs {
		if c.Config == config && c.Label != "" {
			return " (" + c.Label + ")"
		}
	}
	return ""
}

func formatBugsPerKJ(e analyzer.EfficiencyStat) string {
	if !e.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", e.BugsPerKJ())
}

func formatJoulesPerBug(e analyzer.EfficiencyStat) string {
	if !e.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", e.JoulesPerBug)
}

func formatPct(v float64, defined bool) string {
	if !defined {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", v)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
