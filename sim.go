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

package probsample

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/probsample/errs"
	"github.com/zintix-labs/probsample/recorder"
	"github.com/zintix-labs/probsample/sdk/core"
	"github.com/zintix-labs/probsample/sdk/sampler"
	"github.com/zintix-labs/probsample/spec"
	"github.com/zintix-labs/probsample/stats"
)

const capPrepare int = 64

// Simulator 以重複抽樣驗證抽樣器的經驗包含頻率是否符合目標包含機率。
//
// 單一 Simulator 不可併發呼叫；SimMP 內部會為每個 worker Fork 一份抽樣器與亂數。
type Simulator struct {
	DesignName string
	Confidence float64 // 報表 CI 信心水準，<= 0 使用 stats.DefaultConfidence
	ds         *spec.DesignSetting
	base       sampler.Sampler
	pf         core.PRNGFactory
	log        *slog.Logger
	initSeed   int64
	seedmaker  *seedMaker
	sBuf       []sampler.Sampler        // 併發 worker 的抽樣器
	cBuf       []*core.Core             // 與 sBuf 對齊的亂數來源，供快照與還原
	rBuf       []*recorder.DrawRecorder // 併發紀錄員
}

func newSimulator(ds *spec.DesignSetting, base sampler.Sampler, src *core.Core, pf core.PRNGFactory, seed int64, log *slog.Logger) *Simulator {
	s := &Simulator{
		DesignName: ds.DesignName,
		ds:         ds,
		base:       base,
		pf:         pf,
		log:        log,
		initSeed:   seed,
		seedmaker:  newSeedMaker(seed),
		sBuf:       make([]sampler.Sampler, 1, capPrepare),
		cBuf:       make([]*core.Core, 1, capPrepare),
		rBuf:       make([]*recorder.DrawRecorder, 0, capPrepare),
	}
	s.sBuf[0] = base
	s.cBuf[0] = src
	return s
}

// Seed 建立時的初始種子
func (s *Simulator) Seed() int64 { return s.initSeed }

// Sim 單線模擬：連續抽 draws 次樣本並回傳包含頻率報表與用時。
func (s *Simulator) Sim(draws int, showpb bool) (*stats.InclusionReport, time.Duration, error) {
	defer s.reset()
	if draws < 1 {
		return nil, 0, errs.NewWarn("draws must > 0")
	}
	r, err := s.newRecorder()
	if err != nil {
		return nil, 0, err
	}
	s.rBuf = append(s.rBuf, r)

	bar := pb.StartNew(draws)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	err = run(s.sBuf[0], r, draws, bar)
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, used, err
	}

	rep := r.Done(s.Confidence)
	s.logDone(rep, 1, used)
	return rep, used, nil
}

// SimMP 平行執行 mp 個 worker，各抽 draws 次（共 draws*mp 次），合併後回傳報表與用時。
//
// 第 i 個 worker 的亂數由 seedMaker 依序派生，相同初始 seed 與 mp 下結果可重現。
func (s *Simulator) SimMP(draws int, mp int, showpb bool) (*stats.InclusionReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if draws < 1 {
		return nil, 0, errs.NewWarn("draws must > 0")
	}
	s.grow(mp)
	for len(s.rBuf) < mp {
		r, err := s.newRecorder()
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	var (
		wg    sync.WaitGroup
		once  sync.Once
		first error
	)
	wg.Add(mp)
	bar := pb.StartNew(draws * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			if err := run(s.sBuf[i], s.rBuf[i], draws, bar); err != nil {
				once.Do(func() { first = err })
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	if first != nil {
		return nil, used, first
	}

	st, err := recorder.MergeDrawRecorder(s.rBuf[:mp])
	if err != nil {
		return nil, used, err
	}
	rep := st.Done(s.Confidence)
	s.logDone(rep, mp, used)
	return rep, used, nil
}

// grow 補足 n 個 worker；第 i 個 worker 的 seed 由 seedMaker 依序派生。
func (s *Simulator) grow(n int) {
	for len(s.sBuf) < n {
		c := core.New(s.pf.New(s.seedmaker.next()))
		s.sBuf = append(s.sBuf, s.base.Fork(c))
		s.cBuf = append(s.cBuf, c)
	}
}

// Snapshot 回傳每個 worker 亂數來源的當前狀態（依 worker 順序）。
//
// 之後以 Restore 還原，再以相同的 draws/mp 呼叫 Sim/SimMP 會得到完全相同的結果。
func (s *Simulator) Snapshot() ([][]byte, error) {
	out := make([][]byte, len(s.cBuf))
	for i, c := range s.cBuf {
		b, err := c.Snapshot()
		if err != nil {
			return nil, errs.WrapWithExtra(err, "snapshot worker prng", fmt.Sprintf("worker=%d", i))
		}
		out[i] = b
	}
	return out, nil
}

// Restore 依 Snapshot 的結果還原各 worker 的亂數狀態；worker 不足時先補足。
func (s *Simulator) Restore(states [][]byte) error {
	if len(states) == 0 {
		return errs.NewWarn("no prng states to restore")
	}
	s.grow(len(states))
	for i, b := range states {
		if err := s.cBuf[i].Restore(b); err != nil {
			return errs.WrapWithExtra(err, "restore worker prng", fmt.Sprintf("worker=%d", i))
		}
	}
	s.log.Debug("simulator restored", slog.String("design", s.DesignName), slog.Int("workers", len(states)))
	return nil
}

func run(smp sampler.Sampler, r *recorder.DrawRecorder, draws int, bar *pb.ProgressBar) error {
	for range draws {
		set, err := smp.NextIndexSet()
		if err != nil {
			return errs.WrapWithExtra(err, "draw failed", "design="+r.DesignName)
		}
		r.Record(set)
		bar.Increment()
	}
	return nil
}

func (s *Simulator) newRecorder() (*recorder.DrawRecorder, error) {
	pi := s.base.InclusionProbabilities()
	return recorder.NewDrawRecorder(s.DesignName, s.ds.Design.String(), s.base.SampleSize(), pi.Slice())
}

func (s *Simulator) logDone(rep *stats.InclusionReport, mp int, used time.Duration) {
	lv := slog.LevelInfo
	if !rep.Consistent() {
		lv = slog.LevelWarn
	}
	s.log.Log(context.Background(), lv, "simulation done",
		slog.String("design", s.DesignName),
		slog.Int("workers", mp),
		slog.Int("draws", rep.Summary.Draws),
		slog.Float64("max_abs_dev", rep.Summary.MaxAbsDev),
		slog.Float64("p_value", rep.Summary.PValue),
		slog.Duration("used", used),
	)
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next 以 full-period LCG（mod 2^63）推進 state，再以可逆 mix63 打散；
// CAS 迴圈保證併發呼叫時每次取得唯一的下一個 state。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63 只用可逆的 xorshift 與乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
