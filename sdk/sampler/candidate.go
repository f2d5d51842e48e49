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

// CandidateSet 單次序列抽樣的工作集合：剩餘候選 key → 當前被抽中的條件機率。
//
// key 遍歷順序固定為遞增，Search 依此順序做前綴和（inverse-CDF）。
// 每次抽樣重新建立，不跨呼叫共用。
type CandidateSet interface {
	// Len 剩餘候選數。
	Len() int
	// Set 設定 key 的機率。
	Set(key int, p float64)
	// Prob 回傳 key 的機率。
	Prob(key int) float64
	// Remove 移除 key。
	Remove(key int)
	// Each 依 key 遞增順序遍歷剩餘候選。
	Each(fn func(key int, p float64))
	// Search 回傳第一個累積機率 >= u 的 key；累積值截在 1.0 以吸收浮點漂移。
	Search(u float64) int
}

// tombstoneSet 以「索引 + 墓碑」陣列實作 CandidateSet，key 範圍為 [0,size)。
type tombstoneSet struct {
	prob  []float64
	alive []bool
	n     int
}

func newTombstoneSet(size int) *tombstoneSet {
	ts := &tombstoneSet{
		prob:  make([]float64, size),
		alive: make([]bool, size),
		n:     size,
	}
	for i := range ts.alive {
		ts.alive[i] = true
	}
	return ts
}

func (ts *tombstoneSet) Len() int { return ts.n }

func (ts *tombstoneSet) Set(key int, p float64) { ts.prob[key] = p }

func (ts *tombstoneSet) Prob(key int) float64 { return ts.prob[key] }

func (ts *tombstoneSet) Remove(key int) {
	if ts.alive[key] {
		ts.alive[key] = false
		ts.prob[key] = 0
		ts.n--
	}
}

func (ts *tombstoneSet) Each(fn func(key int, p float64)) {
	for k, ok := range ts.alive {
		if ok {
			fn(k, ts.prob[k])
		}
	}
}

// Search 略過機率 <= 0 的候選；找不到時（累積和因誤差略小於 u）回傳最後一個可選的 key，
// 沒有可選 key 回傳 -1。
func (ts *tombstoneSet) Search(u float64) int {
	cum := 0.0
	last := -1
	for k, ok := range ts.alive {
		if !ok || !(ts.prob[k] > 0) {
			continue
		}
		cum += ts.prob[k]
		if cum > 1 {
			cum = 1
		}
		if cum >= u {
			return k
		}
		last = k
	}
	return last
}
