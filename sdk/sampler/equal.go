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

package sampler

import (
	"github.com/zintix-labs/probsample/sdk/core"
	"github.com/zintix-labs/probsample/sdk/vec"
)

// Equal 等機率抽樣（Knuth Algorithm S，selection sampling）。
//
// 由左至右掃過 0..N−1，維護 inspected / selected 兩個計數：
// 對每個單位抽 u ~ U[0,1)，當 (N − inspected)·u < (n − selected) 時選入，
// 即以 (n−selected)/(N−inspected) 的機率選入；selected == n 立即停止。
//
// 時間 O(N)，除輸出外只用 O(1) 狀態。
type Equal struct {
	popSize    int
	sampleSize int
	pi         *vec.Vector
	src        core.Uniform
}

// NewEqual 建立等機率抽樣器。
func NewEqual(popSize, sampleSize int, src core.Uniform) (*Equal, error) {
	if err := validateSizes(popSize, sampleSize); err != nil {
		return nil, err
	}
	if err := validateSource(src); err != nil {
		return nil, err
	}
	pi := vec.New(popSize)
	p := float64(sampleSize) / float64(popSize)
	for i := 0; i < popSize; i++ {
		pi.Set(i, p)
	}
	return &Equal{popSize: popSize, sampleSize: sampleSize, pi: pi, src: src}, nil
}

func (s *Equal) PopulationSize() int { return s.popSize }

func (s *Equal) SampleSize() int { return s.sampleSize }

func (s *Equal) InclusionProbabilities() *vec.Vector { return s.pi.View() }

// NextIndexSet 單次掃描選出 n 個索引，結果天然遞增。
func (s *Equal) NextIndexSet() (vec.IndexSet, error) {
	out := make([]int, 0, s.sampleSize)
	inspected, selected := 0, 0
	for i := 0; i < s.popSize && selected < s.sampleSize; i++ {
		u := s.src.Float64()
		if float64(s.popSize-inspected)*u < float64(s.sampleSize-selected) {
			out = append(out, i)
			selected++
		}
		inspected++
	}
	return vec.NewIndexSet(out)
}

func (s *Equal) NextIndicatorVector() (*vec.Vector, error) {
	set, err := s.NextIndexSet()
	if err != nil {
		return nil, err
	}
	return set.Indicator(s.popSize), nil
}

// Fork src 為 nil 時沿用原本的亂數來源，此時兩者不可併發使用。
func (s *Equal) Fork(src core.Uniform) Sampler {
	cp := *s
	if src != nil {
		cp.src = src
	}
	return &cp
}
