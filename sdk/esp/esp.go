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

// Package esp 計算基本對稱多項式（elementary symmetric polynomials）。
//
// 對正權重集合 C 與目標次數 k，一次呼叫同時求出：
//
//   - e_d(C)，d = 0..k
//   - 對每個 c ∈ C 的 leave-one-out 值 e_d(C∖{c})，d = 0..k
//
// 演算法：
//  1. 冪和 p_i(C) = Σ w^i，i = 1..k
//  2. leave-one-out 冪和 p_i(C∖{c}) = p_i(C) − c^i，每個元素 O(k)
//  3. Newton 恆等式 d·e_d = Σ_{i=1}^{d} (−1)^{i−1} p_i·e_{d−i}，e_0 = 1，
//     對整體集合與每個 leave-one-out 集合各自獨立展開
//
// 成本：每次呼叫 O(k·|C|) 時間與空間。序列抽樣每抽一個單位就重算一次（C 縮小、k 遞減），
// 一整組樣本累計 O(n²·N)，這是整個抽樣流程的熱點，不適合大型 N、n。
//
// 數值風險：Newton 恆等式是交錯和，權重很大或分布很散時會發生嚴重的抵銷誤差。
// 引擎對每個 e_d 追蹤條件比 Σ|項| / |d·e_d|，比值過大或 e_d <= 0 時標記為 degraded，
// 由 Table.Err 回報 errs.ErrCancellation，而不是默默回傳劣化的結果。
package esp

import (
	"math"

	"github.com/zintix-labs/probsample/errs"
)

// DefaultConditionLimit 條件比上限，約等於容許損失 10 位有效數字。
const DefaultConditionLimit = 1e10

// Table 稠密二維表：列為次數 0..k，欄 0 為整體集合，欄 1+j 為去掉第 j 個元素後的集合。
//
// 所有欄共用一塊 arena（e），欄 c 位於 e[c*(k+1) : (c+1)*(k+1)]。
type Table struct {
	k     int
	m     int
	e     []float64
	cond  float64
	limit float64
	err   error
}

// Compute 對權重 w 計算至次數 k 的對稱多項式表。
//
// limit <= 0 時使用 DefaultConditionLimit。權重必須為有限正數，否則回傳 domain error。
// 偵測到抵銷誤差時仍回傳完整的表，同時回傳 Warn 等級的 errs.ErrCancellation。
func Compute(w []float64, k int, limit float64) (*Table, error) {
	if k < 0 {
		return nil, errs.Domain("k", "degree must >= 0, got %d", k)
	}
	for i, x := range w {
		if !(x > 0) || math.IsInf(x, 0) {
			return nil, errs.Domain("weights", "weight[%d]=%v must be finite and > 0", i, x)
		}
	}
	if limit <= 0 {
		limit = DefaultConditionLimit
	}
	m := len(w)
	t := &Table{
		k:     k,
		m:     m,
		e:     make([]float64, (m+1)*(k+1)),
		limit: limit,
	}

	// 冪和
	p := make([]float64, k+1)
	for _, x := range w {
		pw := x
		for i := 1; i <= k; i++ {
			p[i] += pw
			pw *= x
		}
	}
	t.newton(0, p, m)

	lp := make([]float64, k+1)
	for j, c := range w {
		pw := c
		for i := 1; i <= k; i++ {
			lp[i] = p[i] - pw
			pw *= c
			if m > 1 && !(lp[i] > 0) && t.err == nil {
				t.err = errs.Cancellation("leave-one-out power sum p_%d(C without %d)=%g is not positive", i, j, lp[i])
			}
		}
		t.newton(1+j, lp, m-1)
	}
	return t, t.err
}

// newton 以冪和 p 展開欄 col，集合大小為 size；次數超過 size 的項固定為 0。
func (t *Table) newton(col int, p []float64, size int) {
	e := t.column(col)
	e[0] = 1
	for d := 1; d <= t.k; d++ {
		if d > size {
			e[d] = 0
			continue
		}
		sum := 0.0
		abs := 0.0
		sign := 1.0
		for i := 1; i <= d; i++ {
			term := p[i] * e[d-i]
			sum += sign * term
			abs += math.Abs(term)
			sign = -sign
		}
		e[d] = sum / float64(d)
		t.check(col, d, sum, abs)
	}
}

func (t *Table) check(col, d int, sum, abs float64) {
	if !(sum > 0) {
		if t.err == nil {
			t.err = errs.Cancellation("e_%d of column %d is %g, expected > 0", d, col, sum/float64(d))
		}
		t.cond = math.Inf(1)
		return
	}
	r := abs / sum
	if r > t.cond {
		t.cond = r
	}
	if r > t.limit && t.err == nil {
		t.err = errs.Cancellation("condition ratio %.3g of e_%d (column %d) exceeds limit %.3g", r, d, col, t.limit)
	}
}

func (t *Table) column(col int) []float64 {
	return t.e[col*(t.k+1) : (col+1)*(t.k+1)]
}

// Degree 最高次數 k。
func (t *Table) Degree() int { return t.k }

// Size 權重集合大小 |C|。
func (t *Table) Size() int { return t.m }

// Full 回傳 e_d(C)；d 超出 [0,k] 時，d < 0 回傳 0，d > k 會 panic。
func (t *Table) Full(d int) float64 {
	if d < 0 {
		return 0
	}
	return t.column(0)[d]
}

// Without 回傳 e_d(C∖{c_j})。
func (t *Table) Without(j, d int) float64 {
	if d < 0 {
		return 0
	}
	return t.column(1 + j)[d]
}

// Condition 回傳所有欄中最大的條件比（越接近 1 越穩定）。
func (t *Table) Condition() float64 { return t.cond }

// Err 回傳計算期間偵測到的第一個數值問題，沒有則為 nil。
func (t *Table) Err() error { return t.err }
