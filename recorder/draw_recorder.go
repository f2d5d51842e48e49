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
	"fmt"
	"slices"

	"github.com/zintix-labs/probsample/errs"
	"github.com/zintix-labs/probsample/sdk/vec"
	"github.com/zintix-labs/probsample/stats"
)

// DrawRecorder 抽樣紀錄員
//
// DrawRecorder 累計每個單位被抽中的次數，並透過 Done 輸出包含頻率報表。
// 非併發安全：多工模擬時每個 worker 各持一份，最後以 MergeDrawRecorder 合併。
type DrawRecorder struct {
	DesignName string
	Design     string
	SampleSize int
	Target     []float64 // 各單位目標包含機率
	Counts     []int     // 各單位被抽中次數
	Draws      int
	BadSize    int // 樣本大小不等於 SampleSize 的抽樣次數，正常應為 0
}

func NewDrawRecorder(name, design string, sampleSize int, target []float64) (*DrawRecorder, error) {
	r := new(DrawRecorder)
	if len(target) == 0 {
		return r, errs.NewFatal("recorder err : empty target probabilities")
	}
	if sampleSize < 0 || sampleSize > len(target) {
		return r, errs.NewFatal(fmt.Sprintf("recorder err : sample size %d out of [0,%d]", sampleSize, len(target)))
	}
	r.DesignName = name
	r.Design = design
	r.SampleSize = sampleSize
	r.Target = slices.Clone(target)
	r.Counts = make([]int, len(target))
	return r, nil
}

// Record 紀錄一次抽樣結果
func (r *DrawRecorder) Record(s vec.IndexSet) {
	r.Draws++
	if s.Len() != r.SampleSize {
		r.BadSize++
	}
	for i := range s.Len() {
		if u := s.At(i); u < len(r.Counts) {
			r.Counts[u]++
		}
	}
}

func MergeDrawRecorder(r []*DrawRecorder) (*DrawRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge draw record err : nothing to merge")
	}
	r0 := r[0]
	s, err := NewDrawRecorder(r0.DesignName, r0.Design, r0.SampleSize, r0.Target)
	if err != nil {
		return s, err
	}
	for _, v := range r {
		if v.DesignName != r0.DesignName {
			return s, errs.NewFatal("merge draw record err : different design name")
		}
		if v.SampleSize != r0.SampleSize || len(v.Counts) != len(r0.Counts) {
			return s, errs.NewFatal("merge draw record err : different shape")
		}
		s.Draws += v.Draws
		s.BadSize += v.BadSize
		for i, c := range v.Counts {
			s.Counts[i] += c
		}
	}
	return s, nil
}

// Done 輸出包含頻率報表，confidence <= 0 使用預設信心水準。
func (r *DrawRecorder) Done(confidence float64) *stats.InclusionReport {
	rep := stats.NewInclusionReport(r.DesignName, r.Design, r.SampleSize, r.Target, r.Counts, r.Draws, confidence)
	rep.Summary.BadSize = r.BadSize
	return rep
}
