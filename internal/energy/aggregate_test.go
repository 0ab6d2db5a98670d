package energy

import (
	"math"
	"testing"

	"github.com/ppiankov/joulespectre/internal/dataset"
)

func sample(run int, config string, ts, pkg, dram float64) dataset.EnergySample {
	return dataset.EnergySample{Run: run, Config: config, TimestampMs: ts, PackageEnergy: pkg, DRAMEnergy: dram}
}

func TestAggregateTwoSamples(t *testing.T) {
	summaries := Aggregate([]dataset.EnergySample{
		sample(1, "A", 0, 5, 1),
		sample(1, "A", 2000, 10, 2),
	})

	if len(summaries) != 1 {
		t.Fatalf("len = %d, want 1", len(summaries))
	}
	s := summaries[0]
	if s.TotalPackageEnergyJ != 15 {
		t.Errorf("TotalPackageEnergyJ = %f, want 15", s.TotalPackageEnergyJ)
	}
	if s.TotalDRAMEnergyJ != 3 {
		t.Errorf("TotalDRAMEnergyJ = %f, want 3", s.TotalDRAMEnergyJ)
	}
	if s.DurationS != 2 {
		t.Errorf("DurationS = %f, want 2", s.DurationS)
	}
	if s.TotalEnergyJ != 18 {
		t.Errorf("TotalEnergyJ = %f, want 18", s.TotalEnergyJ)
	}
}

func TestAggregateSingleSampleHasZeroDuration(t *testing.T) {
	summaries := Aggregate([]dataset.EnergySample{sample(4, "C", 123456, 7, 0.5)})
	if summaries[0].DurationS != 0 {
		t.Errorf("DurationS = %f, want 0", summaries[0].DurationS)
	}
}

func TestAggregateUnorderedTimestamps(t *testing.T) {
	summaries := Aggregate([]dataset.EnergySample{
		sample(1, "A", 5000, 1, 1),
		sample(1, "A", 1000, 1, 1),
		sample(1, "A", 3000, 1, 1),
	})
	if summaries[0].DurationS != 4 {
		t.Errorf("DurationS = %f, want 4", summaries[0].DurationS)
	}
}

func TestAggregateOneSummaryPerKey(t *testing.T) {
	samples := []dataset.EnergySample{
		sample(2, "B", 0, 1, 1),
		sample(1, "A", 0, 1, 1),
		sample(1, "B", 0, 1, 1),
		sample(2, "B", 10, 1, 1),
		sample(1, "A", 10, 1, 1),
	}
	summaries := Aggregate(samples)

	want := []dataset.RunKey{{Run: 1, Config: "A"}, {Run: 1, Config: "B"}, {Run: 2, Config: "B"}}
	if len(summaries) != len(want) {
		t.Fatalf("len = %d, want %d", len(summaries), len(want))
	}
	for i, k := range want {
		if summaries[i].Key() != k {
			t.Errorf("summaries[%d] key = %v, want %v", i, summaries[i].Key(), k)
		}
	}
}

func TestAggregateTotalIsExactSum(t *testing.T) {
	samples := []dataset.EnergySample{
		sample(1, "A", 0, 0.1, 0.2),
		sample(1, "A", 1, 0.3, 0.7),
		sample(2, "A", 0, 1e9, 1e-9),
		sample(3, "B", 0, 123.456, 789.012),
	}
	for _, s := range Aggregate(samples) {
		if s.TotalEnergyJ != s.TotalPackageEnergyJ+s.TotalDRAMEnergyJ {
			t.Errorf("%v: total %v != %v + %v", s.Key(), s.TotalEnergyJ, s.TotalPackageEnergyJ, s.TotalDRAMEnergyJ)
		}
		if s.DurationS < 0 {
			t.Errorf("%v: negative duration %f", s.Key(), s.DurationS)
		}
	}
}

func TestAggregateSumLinearOverDisjointKeys(t *testing.T) {
	left := []dataset.EnergySample{
		sample(1, "A", 0, 5, 1),
		sample(1, "A", 2000, 10, 2),
		sample(3, "C", 0, 2, 2),
	}
	right := []dataset.EnergySample{
		sample(2, "B", 0, 8, 3),
		sample(2, "B", 500, 4, 1),
	}

	combined := Aggregate(append(append([]dataset.EnergySample{}, left...), right...))
	separate := append(Aggregate(left), Aggregate(right)...)

	byKey := make(map[dataset.RunKey]dataset.EnergySummary)
	for _, s := range separate {
		byKey[s.Key()] = s
	}
	if len(combined) != len(byKey) {
		t.Fatalf("combined len = %d, separate len = %d", len(combined), len(byKey))
	}
	for _, s := range combined {
		if byKey[s.Key()] != s {
			t.Errorf("%v: combined %+v != separate %+v", s.Key(), s, byKey[s.Key()])
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestAggregateNegativeTimestamps(t *testing.T) {
	summaries := Aggregate([]dataset.EnergySample{
		sample(1, "A", -1500, 1, 0),
		sample(1, "A", 500, 1, 0),
	})
	if math.Abs(summaries[0].DurationS-2) > 1e-12 {
		t.Errorf("DurationS = %f, want 2", summaries[0].DurationS)
	}
}

func TestAggregateOverflowingSum(t *testing.T) {
	summaries := Aggregate([]dataset.EnergySample{
		sample(1, "A", 0, math.MaxFloat64, 0),
		sample(1, "A", 1000, math.MaxFloat64, 0),
	})
	if !math.IsInf(summaries[0].TotalEnergyJ, 1) {
		t.Errorf("TotalEnergyJ = %g, want +Inf for the analyzer to treat as undefined", summaries[0].TotalEnergyJ)
	}
}
