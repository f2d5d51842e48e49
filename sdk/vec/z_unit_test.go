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

package vec

import (
	"errors"
	"slices"
	"testing"

	"github.com/zintix-labs/probsample/errs"
)

func TestVectorBasic(t *testing.T) {
	src := []float64{0.2, 0.4, 0.6}
	v := FromSlice(src)
	src[0] = 9
	if v.At(0) != 0.2 {
		t.Fatalf("FromSlice must copy, got %v", v.At(0))
	}
	if v.Len() != 3 {
		t.Fatalf("len mismatch: %d", v.Len())
	}
	v.Set(2, 0.4)
	if got := v.Sum(); got < 0.9999999 || got > 1.0000001 {
		t.Fatalf("sum mismatch: %v", got)
	}
	if v.Dense().Len() != 3 {
		t.Fatalf("dense len mismatch")
	}
}

func TestVectorFind(t *testing.T) {
	v := FromSlice([]float64{0, 1, 0, 1, 1})
	ones := v.Find(func(_ int, x float64) bool { return x == 1 })
	if !slices.Equal(ones.Slice(), []int{1, 3, 4}) {
		t.Fatalf("unexpected find result: %v", ones)
	}
}

func TestVectorViewReadOnly(t *testing.T) {
	v := FromSlice([]float64{1, 2})
	view := v.View()
	if !view.ReadOnly() {
		t.Fatalf("view should be read-only")
	}
	v.Set(0, 5)
	if view.At(0) != 5 {
		t.Fatalf("view should share storage")
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on view Set")
		}
	}()
	view.Set(0, 1)
}

func TestIndexSet(t *testing.T) {
	s, err := NewIndexSet([]int{4, 1, 3})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Len() != 3 || s.At(0) != 1 || s.At(2) != 4 {
		t.Fatalf("unexpected order: %v", s)
	}
	if !s.Contains(3) || s.Contains(2) {
		t.Fatalf("contains mismatch")
	}
	ind := s.Indicator(5)
	if ind.Sum() != 3 || ind.At(4) != 1 || ind.At(0) != 0 {
		t.Fatalf("indicator mismatch: %v", ind.Slice())
	}

	if _, err := NewIndexSet([]int{1, 1}); !errors.Is(err, errs.ErrDomain) {
		t.Fatalf("expected domain error for duplicates, got %v", err)
	}
	if _, err := NewIndexSet([]int{-1}); !errors.Is(err, errs.ErrDomain) {
		t.Fatalf("expected domain error for negative, got %v", err)
	}
}
