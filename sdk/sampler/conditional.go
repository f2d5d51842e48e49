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
	"log/slog"
	"math"

	"github.com/zintix-labs/probsample/errs"
	"github.com/zintix-labs/probsample/sdk/calib"
	"github.com/zintix-labs/probsample/sdk/core"
	"github.com/zintix-labs/probsample/sdk/esp"
	"github.com/zintix-labs/probsample/sdk/vec"
	"gonum.org/v1/gonum/floats"
)

const (
	// sumTolerance 目標包含機率總和與整數 n 的容許差
	sumTolerance = 1e-3
	// stepTolerance 每一步條件機率總和與 1 的容許差，超過視為抵銷誤差
	stepTolerance = 1e-6
)

// Conditional 不等機率序列抽樣器（條件 Poisson 型設計）。
//
// 樣本 s（|s| = n）的機率正比於 Π_{i∈s} w_i。抽樣一次抽一個單位：
//
//   - 第一步：P(j) = π_j / n
//   - 之後每步（剩餘 r 個要抽）：P(j | 歷史) = w_j · e_{r−1}(C∖{j}) / (r · e_r(C))
//
// C 為剩餘候選集合，兩個對稱多項式值來自同一次 esp.Compute(C, r)。
// 包含機率恰為 1 的單位（certainty unit）每次必選，不參與校準與序列抽樣。
//
// 成本：每抽一個單位呼叫一次 esp，一整組樣本 O(n²·N)。
type Conditional struct {
	popSize    int
	sampleSize int
	pi         *vec.Vector

	units   []int     // 參與序列抽樣的單位（遞增）
	weights []float64 // 與 units 對齊
	first   []float64 // 第一步機率 π_j / n'，與 units 對齊
	draws   int       // n' = n − len(sure)
	sure    []int     // certainty units

	limit float64
	calib calib.Result
	src   core.Uniform
}

// FromBernoulliProbabilities 以每單位機率 p_i ∈ (0,1) 建立抽樣器：w_i = p_i/(1−p_i)。
//
// 包含機率由設計推導（非宣告）：π_i = w_i · e_{n−1}(W∖{i}) / e_n(W)。
func FromBernoulliProbabilities(p []float64, sampleSize int, src core.Uniform, opts ...Option) (*Conditional, error) {
	o := buildOptions(opts)
	if err := validateSizes(len(p), sampleSize); err != nil {
		return nil, err
	}
	if err := validateSource(src); err != nil {
		return nil, err
	}
	w := make([]float64, len(p))
	for i, x := range p {
		if !(x > 0 && x < 1) {
			return nil, errs.Domain("probabilities", "probabilities[%d]=%v must be in (0,1)", i, x)
		}
		w[i] = x / (1 - x)
	}

	pi, err := calib.Induced(w, sampleSize, o.calib.ConditionLimit)
	if err != nil {
		return nil, errs.Wrap(err, "derive inclusion probabilities")
	}
	units := make([]int, len(p))
	first := make([]float64, len(p))
	for i := range units {
		units[i] = i
		first[i] = pi[i] / float64(sampleSize)
	}
	o.log.Debug("bernoulli design built",
		slog.Int("population", len(p)),
		slog.Int("sample_size", sampleSize),
		slog.Float64("pi_sum", floats.Sum(pi)),
	)
	return &Conditional{
		popSize:    len(p),
		sampleSize: sampleSize,
		pi:         vec.FromSlice(pi),
		units:      units,
		weights:    w,
		first:      first,
		draws:      sampleSize,
		limit:      o.calib.ConditionLimit,
		src:        src,
	}, nil
}

// FromInclusionProbabilities 以目標包含機率 π 建立抽樣器，權重由 calib.Solve 求得。
//
// Σπ 必須在 1e-3 內接近整數 n，且 n < N。π = 1 的單位視為 certainty unit；
// 其餘單位的 π 必須在 (0,1)，由 fitSum 修正到總和恰為 n' 後再校準。
func FromInclusionProbabilities(pi []float64, src core.Uniform, opts ...Option) (*Conditional, error) {
	o := buildOptions(opts)
	popSize := len(pi)
	if popSize < 2 {
		return nil, errs.Domain("population", "population size must > 1, got %d", popSize)
	}
	if err := validateSource(src); err != nil {
		return nil, err
	}
	var (
		sure   []int
		units  []int
		target []float64
	)
	for i, x := range pi {
		switch {
		case x == 1:
			sure = append(sure, i)
		case x > 0 && x < 1:
			units = append(units, i)
			target = append(target, x)
		default:
			return nil, errs.Domain("probabilities", "probabilities[%d]=%v must be in (0,1]", i, x)
		}
	}
	sum := floats.Sum(pi)
	n := int(math.Round(sum))
	if math.Abs(sum-float64(n)) > sumTolerance {
		return nil, errs.Domain("probabilities", "sum of inclusion probabilities %v is not an integer (tol %g)", sum, sumTolerance)
	}
	if err := validateSizes(popSize, n); err != nil {
		return nil, err
	}
	draws := n - len(sure)
	if draws > 0 && draws >= len(units) {
		return nil, errs.Range("probabilities", "%d uncertain units cannot fill %d remaining draws", len(units), draws)
	}

	s := &Conditional{
		popSize:    popSize,
		sampleSize: n,
		units:      units,
		draws:      draws,
		sure:       sure,
		limit:      o.calib.ConditionLimit,
		src:        src,
	}
	full := make([]float64, popSize)
	for _, i := range sure {
		full[i] = 1
	}
	if draws > 0 {
		fitSum(target, float64(draws))
		res, err := calib.Solve(target, draws, o.calib)
		if err != nil {
			o.log.Warn("calibration failed",
				slog.Int("iterations", res.Iterations),
				slog.Float64("max_delta", res.MaxDelta),
				slog.Any("err", err),
			)
			return nil, errs.Wrap(err, "calibrate weights")
		}
		o.log.Debug("calibration converged",
			slog.Int("iterations", res.Iterations),
			slog.Float64("max_delta", res.MaxDelta),
		)
		s.calib = res
		s.weights = res.Weights
		s.first = make([]float64, len(units))
		for k, i := range units {
			full[i] = target[k]
			s.first[k] = target[k] / float64(draws)
		}
	}
	s.pi = vec.FromSlice(full)
	return s, nil
}

// fitSum 把 target 修正到總和恰為 n，且每個值仍留在 (0,1)。
//
// 總和偏大時等比例縮小；偏小時把差額依 1−π 的比例補上，避免接近 1 的值被推過 1。
func fitSum(target []float64, n float64) {
	sum := floats.Sum(target)
	switch {
	case sum > n:
		floats.Scale(n/sum, target)
	case sum < n:
		room := 0.0
		for _, x := range target {
			room += 1 - x
		}
		d := n - sum
		for i, x := range target {
			target[i] = x + d*(1-x)/room
		}
	}
}

func (s *Conditional) PopulationSize() int { return s.popSize }

func (s *Conditional) SampleSize() int { return s.sampleSize }

func (s *Conditional) InclusionProbabilities() *vec.Vector { return s.pi.View() }

// Weights 回傳參與序列抽樣單位的權重複本（長度 N，certainty unit 為 +Inf）。
func (s *Conditional) Weights() []float64 {
	out := make([]float64, s.popSize)
	for _, i := range s.sure {
		out[i] = math.Inf(1)
	}
	for k, i := range s.units {
		out[i] = s.weights[k]
	}
	return out
}

// Calibration 回傳建構時的校準資訊；Bernoulli 路徑為零值。
func (s *Conditional) Calibration() calib.Result { return s.calib }

// NextIndexSet 依序列條件機率抽出 n 個相異單位。
func (s *Conditional) NextIndexSet() (vec.IndexSet, error) {
	out := make([]int, 0, s.sampleSize)
	out = append(out, s.sure...)
	if s.draws > 0 {
		cs := newTombstoneSet(len(s.units))
		for k, p := range s.first {
			cs.Set(k, p)
		}
		for r := s.draws; r >= 1; r-- {
			if r < s.draws {
				if err := s.reweigh(cs, r); err != nil {
					return vec.IndexSet{}, err
				}
			}
			k := cs.Search(s.src.Float64())
			if k < 0 {
				return vec.IndexSet{}, errs.Cancellation("no selectable candidate with %d draws remaining", r)
			}
			cs.Remove(k)
			out = append(out, s.units[k])
		}
	}
	return vec.NewIndexSet(out)
}

// reweigh 以剩餘候選重算條件機率，r 為剩餘抽取數。
func (s *Conditional) reweigh(cs CandidateSet, r int) error {
	keys := make([]int, 0, cs.Len())
	w := make([]float64, 0, cs.Len())
	cs.Each(func(k int, _ float64) {
		keys = append(keys, k)
		w = append(w, s.weights[k])
	})
	tb, err := esp.Compute(w, r, s.limit)
	if err != nil {
		return errs.Wrap(err, "recompute conditional probabilities")
	}
	denom := float64(r) * tb.Full(r)
	total := 0.0
	for j, k := range keys {
		p := w[j] * tb.Without(j, r-1) / denom
		if p < 0 {
			return errs.Cancellation("negative conditional probability %g for unit %d", p, s.units[k])
		}
		cs.Set(k, p)
		total += p
	}
	if math.Abs(total-1) > stepTolerance {
		return errs.Cancellation("conditional probabilities sum to %v with %d draws remaining", total, r)
	}
	return nil
}

func (s *Conditional) NextIndicatorVector() (*vec.Vector, error) {
	set, err := s.NextIndexSet()
	if err != nil {
		return nil, err
	}
	return set.Indicator(s.popSize), nil
}

// Fork src 為 nil 時沿用原本的亂數來源，此時兩者不可併發使用。
func (s *Conditional) Fork(src core.Uniform) Sampler {
	cp := *s
	if src != nil {
		cp.src = src
	}
	return &cp
}
