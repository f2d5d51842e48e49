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

package core

import (
	"testing"
)

func factories() map[string]PRNGFactory {
	return map[string]PRNGFactory{
		"pcg64":   Default(),
		"mt19937": MT19937(),
	}
}

func TestCoreDeterminism(t *testing.T) {
	for name, f := range factories() {
		c1 := New(f.New(7))
		c2 := New(f.New(7))
		for i := 0; i < 5; i++ {
			if c1.Uint64() != c2.Uint64() {
				t.Fatalf("[%s] Uint64 mismatch at %d", name, i)
			}
		}
		if c1.IntN(10) != c2.IntN(10) {
			t.Fatalf("[%s] IntN mismatch", name)
		}
		if c1.Float64() != c2.Float64() {
			t.Fatalf("[%s] Float64 mismatch", name)
		}
	}
}

func TestFloat64Range(t *testing.T) {
	for name, f := range factories() {
		c := New(f.New(3))
		sum := 0.0
		const trials = 100_000
		for i := 0; i < trials; i++ {
			u := c.Float64()
			if u < 0 || u >= 1 {
				t.Fatalf("[%s] Float64 out of [0,1): %v", name, u)
			}
			sum += u
		}
		mean := sum / trials
		if mean < 0.49 || mean > 0.51 {
			t.Fatalf("[%s] mean drift: %v", name, mean)
		}
	}
}

func TestIntNBounds(t *testing.T) {
	c := New(Default().New(5))
	if got := c.IntN(0); got != -1 {
		t.Fatalf("expected -1 for IntN(0), got %d", got)
	}
	for i := 0; i < 1000; i++ {
		if v := c.IntN(7); v < 0 || v >= 7 {
			t.Fatalf("IntN out of range: %d", v)
		}
		if v := c.IntN(8); v < 0 || v >= 8 {
			t.Fatalf("IntN(pow2) out of range: %d", v)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	for name, f := range factories() {
		r := f.New(11)
		r.Uint64()
		snap, err := r.Snapshot()
		if err != nil {
			t.Fatalf("[%s] snapshot: %v", name, err)
		}
		want := r.Uint64()

		other := f.New(99)
		if err := other.Restore(snap); err != nil {
			t.Fatalf("[%s] restore: %v", name, err)
		}
		if got := other.Uint64(); got != want {
			t.Fatalf("[%s] restored stream mismatch", name)
		}
	}
}
