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

// Package core 提供抽樣引擎所需的亂數來源。
//
// 抽樣器只依賴 Uniform（[0,1) 均勻亂數）；PRNG 則額外要求整數取樣與狀態快照，
// 供模擬器派生多條可重現的亂數流使用。
package core

// Uniform 是抽樣器唯一需要的亂數能力：按需產生 [0,1) 的獨立均勻亂數。
//
// 注意：Uniform 實作不需要併發安全。多個 goroutine 同時抽樣時，
// 每個 goroutine 應持有自己的 sampler 與 Uniform（見 Sampler.Fork）。
type Uniform interface {
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
}

// RAND 定義核心亂數取樣能力。
type RAND interface {
	Uniform
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// PRNGFactory 以 seed 建立 PRNG。
//
// 合約：在同一個實作與同一個版本下，New(seed) 必須是決定性的，
// 相同的 seed 產生相同的輸出序列。模擬器依賴此性質做可重現的多 worker 派生。
type PRNGFactory interface {
	New(int64) PRNG
}

// DefaultPRNG 以 PCG64 實作 PRNGFactory。
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// MT19937PRNG 以 gonum 的 Mersenne Twister 實作 PRNGFactory。
type MT19937PRNG struct{}

func (m *MT19937PRNG) New(seed int64) PRNG {
	return newMT19937WithSeed(seed)
}

func MT19937() *MT19937PRNG {
	return &MT19937PRNG{}
}

// Core 封裝 PRNG，作為抽樣器的 Uniform 來源並保留快照能力。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}
