package energy

import (
	"sort"

	"github.com/ppiankov/joulespectre/internal/dataset"
)

type accumulator struct {
	pkg, dram    float64
	minTs, maxTs float64
}

// Aggregate reduces raw samples to one summary per observed run key, ordered
// by run then configuration. Durations are reported in seconds.
func Aggregate(samples []dataset.EnergySample) []dataset.EnergySummary {
	groups := make(map[dataset.RunKey]*accumulator)
	for _, s := range samples {
		acc, ok := groups[s.Key()]
		if !ok {
			acc = &accumulator{minTs: s.TimestampMs, maxTs: s.TimestampMs}
			groups[s.Key()] = acc
		}
		acc.pkg += s.PackageEnergy
		acc.dram += s.DRAMEnergy
		acc.minTs = min(acc.minTs, s.TimestampMs)
		acc.maxTs = max(acc.maxTs, s.TimestampMs)
	}

	keys := make([]dataset.RunKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	summaries := make([]dataset.EnergySummary, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		summaries = append(summaries, dataset.EnergySummary{
			Run:                 k.Run,
			Config:              k.Config,
			TotalPackageEnergyJ: acc.pkg,
			TotalDRAMEnergyJ:    acc.dram,
			DurationS:           (acc.maxTs - acc.minTs) / 1000,
			TotalEnergyJ:        acc.pkg + acc.dram,
		})
	}
	return summaries
}
