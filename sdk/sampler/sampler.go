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

// Package sampler 提供固定樣本數、不放回的抽樣設計。
//
// 兩種設計都實作同一個 Sampler 介面：
//
//   - Equal：等機率抽樣（Knuth Algorithm S），每個 n 子集合機率皆為 1/C(N,n)。
//   - Conditional：不等機率序列抽樣（條件 Poisson 型設計），
//     每一步依剩餘候選集合精確重算條件機率，長期包含頻率等於目標 π。
//
// 抽樣器建構後參數不可變；每次抽樣的候選集合與對稱多項式表都是暫時物件。
// 抽樣器本身不加鎖，併發使用時每個 goroutine 以 Fork 取得自己的副本與亂數來源。
package sampler

import (
	"log/slog"

	"github.com/zintix-labs/probsample/errs"
	"github.com/zintix-labs/probsample/sdk/calib"
	"github.com/zintix-labs/probsample/sdk/core"
	"github.com/zintix-labs/probsample/sdk/vec"
)

// Sampler 抽樣合約。
type Sampler interface {
	// PopulationSize 母體大小 N。
	PopulationSize() int
	// SampleSize 樣本數 n。
	SampleSize() int
	// InclusionProbabilities 長度 N 的唯讀包含機率向量。
	InclusionProbabilities() *vec.Vector
	// NextIndicatorVector 回傳長度 N、恰有 n 個 1 的 0/1 向量。
	NextIndicatorVector() (*vec.Vector, error)
	// NextIndexSet 回傳 n 個位於 [0,N) 的相異索引。
	NextIndexSet() (vec.IndexSet, error)
	// Fork 以新的亂數來源複製抽樣器，不可變參數共用；src 為 nil 時沿用原來源。
	Fork(src core.Uniform) Sampler
}

var (
	_ Sampler = (*Equal)(nil)
	_ Sampler = (*Conditional)(nil)
)

// validateSizes 檢查 N、n：N < 2 或 n <= 0 為 domain error，n >= N 為 range error。
func validateSizes(popSize, sampleSize int) error {
	if popSize < 2 {
		return errs.Domain("population", "population size must > 1, got %d", popSize)
	}
	if sampleSize <= 0 {
		return errs.Domain("sample_size", "sample size must > 0, got %d", sampleSize)
	}
	if sampleSize >= popSize {
		return errs.Range("sample_size", "sample size %d must < population size %d", sampleSize, popSize)
	}
	return nil
}

func validateSource(src core.Uniform) error {
	if src == nil {
		return errs.Domain("source", "random source is required")
	}
	return nil
}

// options 不等機率抽樣器的建構參數。
type options struct {
	calib calib.Config
	log   *slog.Logger
}

// Option 以 functional option 調整建構參數。
type Option func(*options)

// WithDelta 設定校準收斂門檻 δ（預設 1e-6）。
func WithDelta(delta float64) Option {
	return func(o *options) { o.calib.Delta = delta }
}

// WithMaxIterations 設定校準迭代上限（預設 10000）。
func WithMaxIterations(n int) Option {
	return func(o *options) { o.calib.MaxIterations = n }
}

// WithConditionLimit 設定對稱多項式條件比上限（預設 1e10）。
func WithConditionLimit(limit float64) Option {
	return func(o *options) { o.calib.ConditionLimit = limit }
}

// WithLogger 注入 slog.Logger，記錄校準結果。
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

func buildOptions(opts []Option) options {
	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}
	return o
}
