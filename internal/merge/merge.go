package merge

import (
	"github.com/ppiankov/joulespectre/internal/dataset"
)

// Result holds the joined rows and the keys that found no partner.
type Result struct {
	Records []dataset.MergedRecord

	// UnmatchedVulnerabilities lists runs with findings but no energy data.
	UnmatchedVulnerabilities []dataset.RunKey
	// UnmatchedEnergy lists runs with energy data but no findings row.
	UnmatchedEnergy []dataset.RunKey
	// FannedOut lists keys that matched more than one row on either side.
	FannedOut []dataset.RunKey
}

// Dropped reports how many input rows did not make it into the join.
func (r *Result) Dropped() int {
	return len(r.UnmatchedVulnerabilities) + len(r.UnmatchedEnergy)
}

// Merge inner-joins vulnerability records with energy summaries on (Run, Config).
// Output follows the vulnerability order. A key present several times on either
// side yields the cross product for that key, so callers that need one row per
// run must feed unique keys.
func Merge(vulns []dataset.VulnerabilityRecord, summaries []dataset.EnergySummary) *Result {
	byKey := make(map[dataset.RunKey][]dataset.EnergySummary, len(summaries))
	for _, s := range summaries {
		byKey[s.Key()] = append(byKey[s.Key()], s)
	}

	result := &Result{Records: make([]dataset.MergedRecord, 0, min(len(vulns), len(summaries)))}
	matched := make(map[dataset.RunKey]int, len(byKey))
	for _, v := range vulns {
		partners, ok := byKey[v.Key()]
		if !ok {
			result.UnmatchedVulnerabilities = append(result.UnmatchedVulnerabilities, v.Key())
			continue
		}
		matched[v.Key()]++
		for _, s := range partners {
			result.Records = append(result.Records, dataset.MergedRecord{
				VulnerabilityRecord: v,
				TotalPackageEnergyJ: s.TotalPackageEnergyJ,
				TotalDRAMEnergyJ:    s.TotalDRAMEnergyJ,
				DurationS:           s.DurationS,
				TotalEnergyJ:        s.TotalEnergyJ,
			})
		}
	}

	seen := make(map[dataset.RunKey]bool, len(byKey))
	for _, s := range summaries {
		k := s.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		if matched[k] == 0 {
			result.UnmatchedEnergy = append(result.UnmatchedEnergy, k)
		} else if matched[k] > 1 || len(byKey[k]) > 1 {
			result.FannedOut = append(result.FannedOut, k)
		}
	}
	return result
}
