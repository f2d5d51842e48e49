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

package recorder

import (
	"testing"

	"github.com/zintix-labs/probsample/sdk/vec"
)

func mustSet(t *testing.T, idx ...int) vec.IndexSet {
	t.Helper()
	s, err := vec.NewIndexSet(idx)
	if err != nil {
		t.Fatalf("index set: %v", err)
	}
	return s
}

func TestNewDrawRecorderValidation(t *testing.T) {
	if _, err := NewDrawRecorder("x", "equal", 1, nil); err == nil {
		t.Fatalf("expected error for empty target")
	}
	if _, err := NewDrawRecorder("x", "equal", 3, []float64{0.5, 0.5}); err == nil {
		t.Fatalf("expected error for sample size > N")
	}
}

func TestRecordAndDone(t *testing.T) {
	r, err := NewDrawRecorder("srs", "equal", 2, []float64{2.0 / 3, 2.0 / 3, 2.0 / 3})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r.Record(mustSet(t, 0, 1))
	r.Record(mustSet(t, 1, 2))
	r.Record(mustSet(t, 0, 2))
	r.Record(mustSet(t, 0))

	if r.Draws != 4 || r.BadSize != 1 {
		t.Fatalf("draws=%d bad=%d", r.Draws, r.BadSize)
	}
	want := []int{3, 2, 2}
	for i, c := range r.Counts {
		if c != want[i] {
			t.Fatalf("counts[%d]=%d want %d", i, c, want[i])
		}
	}
	rep := r.Done(0.95)
	if rep.Summary.Draws != 4 || rep.Units[0].Hat != 0.75 {
		t.Fatalf("report mismatch: %+v %+v", rep.Summary, rep.Units[0])
	}
	if rep.Summary.BadSize != 1 {
		t.Fatalf("bad size must reach the report, got %d", rep.Summary.BadSize)
	}
	if rep.Consistent() {
		t.Fatalf("report with a wrong-size sample must not be consistent")
	}
}

func TestDoneConsistentWithoutBadSize(t *testing.T) {
	r, _ := NewDrawRecorder("srs", "equal", 1, []float64{0.5, 0.5})
	for i := range 200 {
		r.Record(mustSet(t, i%2))
	}
	rep := r.Done(0.99)
	if rep.Summary.BadSize != 0 || !rep.Consistent() {
		t.Fatalf("balanced draws should be consistent: %+v", rep.Summary)
	}
}

func TestMergeDrawRecorder(t *testing.T) {
	target := []float64{0.5, 0.5}
	a, _ := NewDrawRecorder("d", "equal", 1, target)
	b, _ := NewDrawRecorder("d", "equal", 1, target)
	a.Record(mustSet(t, 0))
	b.Record(mustSet(t, 1))
	b.Record(mustSet(t, 1))

	m, err := MergeDrawRecorder([]*DrawRecorder{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if m.Draws != 3 || m.Counts[0] != 1 || m.Counts[1] != 2 {
		t.Fatalf("merge mismatch: %+v", m)
	}
	if a.Draws != 1 {
		t.Fatalf("merge must not mutate inputs")
	}

	c, _ := NewDrawRecorder("other", "equal", 1, target)
	if _, err := MergeDrawRecorder([]*DrawRecorder{a, c}); err == nil {
		t.Fatalf("expected name mismatch error")
	}
	if _, err := MergeDrawRecorder(nil); err == nil {
		t.Fatalf("expected error on empty merge")
	}
}
