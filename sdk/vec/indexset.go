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
	"fmt"
	"slices"

	"github.com/zintix-labs/probsample/errs"
)

// IndexSet 由相異非負整數組成的有限集合，內部保持遞增排序。
type IndexSet struct {
	idx []int
}

// NewIndexSet 以陣列建立索引集合；負值或重複值回傳 domain error。
func NewIndexSet(src []int) (IndexSet, error) {
	idx := slices.Clone(src)
	slices.Sort(idx)
	for i, v := range idx {
		if v < 0 {
			return IndexSet{}, errs.Domain("index", "negative index %d", v)
		}
		if i > 0 && idx[i-1] == v {
			return IndexSet{}, errs.Domain("index", "duplicate index %d", v)
		}
	}
	return IndexSet{idx: idx}, nil
}

func (s IndexSet) Len() int { return len(s.idx) }

// At 回傳排序後第 i 個索引。
func (s IndexSet) At(i int) int { return s.idx[i] }

func (s IndexSet) Contains(v int) bool {
	_, ok := slices.BinarySearch(s.idx, v)
	return ok
}

// Slice 回傳索引複本。
func (s IndexSet) Slice() []int { return slices.Clone(s.idx) }

// Indicator 轉為長度 n 的 0/1 向量。
func (s IndexSet) Indicator(n int) *Vector {
	out := New(n)
	for _, i := range s.idx {
		out.Set(i, 1)
	}
	return out
}

func (s IndexSet) String() string { return fmt.Sprint(s.idx) }
