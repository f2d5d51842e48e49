// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package probsample

import (
	"errors"
	"math"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/probsample/demo/demo_configs"
	"github.com/zintix-labs/probsample/errs"
	"github.com/zintix-labs/probsample/sdk/core"
)

func newDemoLab(t *testing.T) *Lab {
	t.Helper()
	lab, err := New(core.Default(), Configs(demo_configs.FS))
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	return lab
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, Configs(demo_configs.FS)); err == nil {
		t.Fatalf("expected error for nil factory")
	}
	if _, err := New(core.Default(), nil); err == nil {
		t.Fatalf("expected error for empty configs")
	}
}

func TestLabNamesAndSampler(t *testing.T) {
	lab := newDemoLab(t)
	want := []string{"bernoulli_10_3", "pps_5_3", "srs_10_3"}
	got := lab.Names()
	if len(got) != len(want) {
		t.Fatalf("names mismatch: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names mismatch: %v", got)
		}
	}

	s, err := lab.NewSampler("PPS_5_3", 7)
	if err != nil {
		t.Fatalf("new sampler: %v", err)
	}
	if s.PopulationSize() != 5 || s.SampleSize() != 3 {
		t.Fatalf("sizes mismatch: N=%d n=%d", s.PopulationSize(), s.SampleSize())
	}
	set, err := s.NextIndexSet()
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if set.Len() != 3 || !set.Contains(4) {
		t.Fatalf("certainty unit missing: %v", set)
	}

	if _, err := lab.NewSampler("missing", 1); err == nil {
		t.Fatalf("expected error for unknown design")
	}
}

func TestLabBuildErrorKeepsKind(t *testing.T) {
	cfg := fstest.MapFS{
		"bad.yaml": {Data: []byte("design_name: bad\ndesign: equal\npopulation: 3\nsample_size: 3\n")},
	}
	lab, err := New(core.Default(), Configs(cfg))
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	_, err = lab.NewSampler("bad", 1)
	if !errors.Is(err, errs.ErrRange) {
		t.Fatalf("expected range error, got %v", err)
	}
	if !errs.IsFatal(err) {
		t.Fatalf("range error should stay fatal")
	}
}

func TestSimValidation(t *testing.T) {
	sim, err := newDemoLab(t).NewSimulatorWithSeed("srs_10_3", 1)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	if _, _, err := sim.Sim(0, false); err == nil {
		t.Fatalf("expected error for draws=0")
	}
	if _, _, err := sim.SimMP(10, 0, false); err == nil {
		t.Fatalf("expected error for mp=0")
	}
}

func TestSimEqualDesign(t *testing.T) {
	sim, err := newDemoLab(t).NewSimulatorWithSeed("srs_10_3", 2025)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	rep, _, err := sim.Sim(50_000, false)
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	if rep.Summary.Draws != 50_000 || rep.Summary.Population != 10 {
		t.Fatalf("summary mismatch: %+v", rep.Summary)
	}
	if rep.Summary.MaxAbsDev > 0.01 {
		t.Fatalf("equal design deviates: %v", rep.Summary.MaxAbsDev)
	}
	for _, u := range rep.Units {
		if math.Abs(u.Target-0.3) > 1e-12 {
			t.Fatalf("target mismatch unit %d: %v", u.Unit, u.Target)
		}
	}
}

func TestSimMPInclusionDesign(t *testing.T) {
	sim, err := newDemoLab(t).NewSimulatorWithSeed("pps_5_3", 99)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	rep, _, err := sim.SimMP(20_000, 4, false)
	if err != nil {
		t.Fatalf("simmp: %v", err)
	}
	if rep.Summary.Draws != 80_000 {
		t.Fatalf("draws mismatch: %d", rep.Summary.Draws)
	}
	if rep.Summary.MaxAbsDev > 0.01 {
		t.Fatalf("inclusion frequencies deviate: %v", rep.Summary.MaxAbsDev)
	}
	if rep.Units[4].Count != 80_000 {
		t.Fatalf("certainty unit drawn %d times", rep.Units[4].Count)
	}
}

func TestSimMPReproducible(t *testing.T) {
	lab := newDemoLab(t)
	counts := func() []int {
		sim, err := lab.NewSimulatorWithSeed("bernoulli_10_3", 314)
		if err != nil {
			t.Fatalf("simulator: %v", err)
		}
		rep, _, err := sim.SimMP(2_000, 3, false)
		if err != nil {
			t.Fatalf("simmp: %v", err)
		}
		out := make([]int, len(rep.Units))
		for i, u := range rep.Units {
			out[i] = u.Count
		}
		return out
	}
	a, b := counts(), counts()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs differ at unit %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestSeedMakerUnique(t *testing.T) {
	sm := newSeedMaker(42)
	seen := map[int64]bool{}
	for range 1000 {
		v := sm.next()
		if v < 0 {
			t.Fatalf("seed must be non-negative: %d", v)
		}
		if seen[v] {
			t.Fatalf("duplicate seed %d", v)
		}
		seen[v] = true
	}
}

func TestSimulatorSnapshotResume(t *testing.T) {
	lab := newDemoLab(t)
	sim, err := lab.NewSimulatorWithSeed("pps_5_3", 8)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	if _, _, err := sim.SimMP(500, 3, false); err != nil {
		t.Fatalf("warm up: %v", err)
	}
	states, err := sim.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("expected 3 worker states, got %d", len(states))
	}

	counts := func(s *Simulator) []int {
		rep, _, err := s.SimMP(1_000, 3, false)
		if err != nil {
			t.Fatalf("simmp: %v", err)
		}
		out := make([]int, len(rep.Units))
		for i, u := range rep.Units {
			out[i] = u.Count
		}
		return out
	}
	a := counts(sim)
	if err := sim.Restore(states); err != nil {
		t.Fatalf("restore: %v", err)
	}
	b := counts(sim)

	// 另一個 seed 的模擬器還原後也要接續同一條亂數流
	other, err := lab.NewSimulatorWithSeed("pps_5_3", 12345)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	if err := other.Restore(states); err != nil {
		t.Fatalf("restore other: %v", err)
	}
	c := counts(other)

	for i := range a {
		if a[i] != b[i] || a[i] != c[i] {
			t.Fatalf("resumed runs differ at unit %d: %d %d %d", i, a[i], b[i], c[i])
		}
	}
	if err := sim.Restore(nil); err == nil {
		t.Fatalf("expected error when restoring nothing")
	}
}
