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

package core

import "gonum.org/v1/gonum/mathext/prng"

// MT 包裝 gonum 的 64-bit Mersenne Twister，作為 PCG64 以外的替代來源。
type MT struct {
	rng *prng.MT19937_64
}

func newMT19937WithSeed(seed int64) *MT {
	src := prng.NewMT19937_64()
	src.Seed(splitmix64(uint64(seed)))
	return &MT{rng: src}
}

func (m *MT) Uint64() uint64 {
	return m.rng.Uint64()
}

func (m *MT) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return int(uint64n(m, uint64(max)))
}

func (m *MT) Float64() float64 {
	return unitFloat(m.Uint64())
}

func (m *MT) Restore(data []byte) error {
	return m.rng.UnmarshalBinary(data)
}

func (m *MT) Snapshot() ([]byte, error) {
	return m.rng.MarshalBinary()
}
