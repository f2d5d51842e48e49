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

// Package calib 由目標包含機率反推條件 Poisson 型設計的潛在權重。
//
// 給定 π（每個值在 (0,1)，總和為整數 n），求正權重 w，使設計
// P(s) ∝ Π_{i∈s} w_i（|s| = n）的邊際包含機率等於 π。一般情況沒有封閉解，
// 這裡用不動點迭代：
//
//	w_j ← π_j · e_{n−1}(S∖{a}) / e_{n−1}(S∖{j})
//
// 其中 a 為 π 最大的單位（錨點，權重固定）。迭代直到非錨點權重的最大變化量 < δ。
//
// 迭代沒有理論上的收斂保證，因此以 MaxIterations 明確封頂；
// 未收斂時回傳最後的迭代值與 Warn 等級的 errs.ErrNotConverged，不會無限迴圈。
package calib

import (
	"math"
	"slices"

	"github.com/zintix-labs/probsample/errs"
	"github.com/zintix-labs/probsample/sdk/esp"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultDelta         = 1e-6
	DefaultMaxIterations = 10_000
)

// Config 校準參數，零值欄位使用預設值。
type Config struct {
	Delta          float64 // 收斂門檻 δ
	MaxIterations  int     // 迭代上限
	ConditionLimit float64 // 傳給 esp.Compute 的條件比上限
}

func (c Config) withDefaults() Config {
	if c.Delta <= 0 {
		c.Delta = DefaultDelta
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	return c
}

// Result 校準結果。Weights 依原始單位順序排列，只有比值有意義。
type Result struct {
	Weights    []float64
	Iterations int
	MaxDelta   float64
	Converged  bool
}

// Solve 求解與 pi 相容的權重，n 為樣本數（= Σπ）。
func Solve(pi []float64, n int, cfg Config) (Result, error) {
	cfg = cfg.withDefaults()
	m := len(pi)
	if m < 2 {
		return Result{}, errs.Domain("probabilities", "population size must > 1, got %d", m)
	}
	if n <= 0 {
		return Result{}, errs.Domain("sample_size", "sample size must > 0, got %d", n)
	}
	if n >= m {
		return Result{}, errs.Range("sample_size", "sample size %d must < population size %d", n, m)
	}
	for i, p := range pi {
		if !(p > 0 && p < 1) {
			return Result{}, errs.Domain("probabilities", "probabilities[%d]=%v must be in (0,1)", i, p)
		}
	}

	// 依 π 遞增排序，最後一個為錨點
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case pi[a] < pi[b]:
			return -1
		case pi[a] > pi[b]:
			return 1
		}
		return 0
	})
	sp := make([]float64, m)
	for i, o := range order {
		sp[i] = pi[o]
	}
	anchor := m - 1

	w := slices.Clone(sp)
	next := make([]float64, m)
	res := Result{MaxDelta: math.Inf(1)}
	for it := 1; it <= cfg.MaxIterations; it++ {
		tb, err := esp.Compute(w, n-1, cfg.ConditionLimit)
		if err != nil {
			res.Weights = unsort(w, order)
			res.Iterations = it - 1
			return res, errs.Wrap(err, "calibration aborted")
		}
		ea := tb.Without(anchor, n-1)
		for j := 0; j < anchor; j++ {
			next[j] = sp[j] * ea / tb.Without(j, n-1)
		}
		next[anchor] = w[anchor]

		res.MaxDelta = floats.Distance(next, w, math.Inf(1))
		res.Iterations = it
		w, next = next, w
		if res.MaxDelta < cfg.Delta {
			res.Converged = true
			res.Weights = unsort(w, order)
			return res, nil
		}
	}
	res.Weights = unsort(w, order)
	return res, errs.NotConverged("max |dw|=%.3g after %d iterations (delta=%.3g)", res.MaxDelta, res.Iterations, cfg.Delta)
}

// unsort 把排序後的權重放回原始單位順序。
func unsort(sorted []float64, order []int) []float64 {
	out := make([]float64, len(sorted))
	for i, o := range order {
		out[o] = sorted[i]
	}
	return out
}

// Induced 回傳權重 w 在樣本數 n 下誘導出的包含機率 π_i = w_i·e_{n−1}(W∖{i}) / e_n(W)。
func Induced(w []float64, n int, limit float64) ([]float64, error) {
	tb, err := esp.Compute(w, n, limit)
	if err != nil {
		return nil, err
	}
	en := tb.Full(n)
	out := make([]float64, len(w))
	for i, x := range w {
		out[i] = x * tb.Without(i, n-1) / en
	}
	return out, nil
}
