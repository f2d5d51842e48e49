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

// Package vec 提供抽樣引擎使用的數值容器：定長稠密向量與有限索引集合。
//
// Vector 以 gonum 的 mat.VecDense 為底層儲存，抽樣器對外只暴露唯讀 view。
package vec

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Vector 定長、從 0 起算的稠密 float64 向量。
type Vector struct {
	v        *mat.VecDense
	readonly bool
}

// New 建立長度 n 的零向量，n 必須 > 0。
func New(n int) *Vector {
	return &Vector{v: mat.NewVecDense(n, nil)}
}

// FromSlice 複製 data 建立向量，呼叫端後續修改 data 不影響向量。
func FromSlice(data []float64) *Vector {
	cp := make([]float64, len(data))
	copy(cp, data)
	return &Vector{v: mat.NewVecDense(len(cp), cp)}
}

func (x *Vector) Len() int { return x.v.Len() }

func (x *Vector) At(i int) float64 { return x.v.AtVec(i) }

// Set 寫入第 i 個元素；對唯讀 view 呼叫會 panic。
func (x *Vector) Set(i int, val float64) {
	if x.readonly {
		panic("vec: Set on read-only view")
	}
	x.v.SetVec(i, val)
}

// View 回傳共用儲存的唯讀 view。
func (x *Vector) View() *Vector {
	return &Vector{v: x.v, readonly: true}
}

// ReadOnly 回報是否為唯讀 view。
func (x *Vector) ReadOnly() bool { return x.readonly }

// Find 線性掃描，回傳所有滿足 pred 的索引（遞增）。
func (x *Vector) Find(pred func(i int, v float64) bool) IndexSet {
	raw := x.v.RawVector().Data
	out := make([]int, 0)
	for i, v := range raw {
		if pred(i, v) {
			out = append(out, i)
		}
	}
	return IndexSet{idx: out}
}

// Sum 回傳所有元素總和。
func (x *Vector) Sum() float64 {
	return floats.Sum(x.v.RawVector().Data)
}

// Slice 回傳元素的複本。
func (x *Vector) Slice() []float64 {
	raw := x.v.RawVector().Data
	cp := make([]float64, len(raw))
	copy(cp, raw)
	return cp
}

// Dense 以 gonum mat.Vector 介面暴露內容（唯讀用途）。
func (x *Vector) Dense() mat.Vector { return x.v }
