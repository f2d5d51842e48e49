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

// Package probsample 提供固定樣本數、不放回抽樣引擎的組裝入口。
//
// Lab 把兩個地基組裝在一起：
//  1. Catalog：設計目錄，以 design_name 索引 fs.FS 內的 YAML/JSON 設計設定檔。
//  2. PRNGFactory：亂數工廠，同一個 seed 必須產生同一條亂數流，確保可重現。
//
// 抽樣演算法本身在 sdk 之下（sdk/sampler、sdk/calib、sdk/esp），可單獨使用；
// Lab 只負責「依名稱建出抽樣器」與「以 Monte Carlo 驗證包含機率」。
//
//	lab, _ := probsample.New(core.Default(), probsample.Configs(demo_configs.FS))
//	s, _ := lab.NewSampler("pps_5_3", 42)
//	set, _ := s.NextIndexSet()
package probsample

import (
	"crypto/rand"
	"io/fs"
	"log/slog"
	"math"
	"math/big"

	"github.com/zintix-labs/probsample/catalog"
	"github.com/zintix-labs/probsample/errs"
	"github.com/zintix-labs/probsample/logger"
	"github.com/zintix-labs/probsample/sdk/core"
	"github.com/zintix-labs/probsample/sdk/sampler"
	"github.com/zintix-labs/probsample/spec"
)

// Configs 把一或多個設定檔來源打包成 New 需要的參數。
//
// 可以用 go:embed 把設定編進 binary，也可以用 os.DirFS 讀本機目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

type Lab struct {
	cat *catalog.Catalog
	pf  core.PRNGFactory
	log *slog.Logger
}

// Option 調整 Lab 行為
type Option func(*Lab)

// WithLogger 注入 logger；未注入時不輸出任何 log。
func WithLogger(l *slog.Logger) Option {
	return func(lab *Lab) {
		if l != nil {
			lab.log = l
		}
	}
}

// New 建立 Lab：pf 不可為 nil，cfgs 至少一個。設定檔在此一次解析完成，
// 格式錯誤或 design_name 重複會直接失敗。
func New(pf core.PRNGFactory, cfgs []fs.FS, opts ...Option) (*Lab, error) {
	if pf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cat, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	lab := &Lab{cat: cat, pf: pf, log: logger.Discard()}
	for _, o := range opts {
		o(lab)
	}
	lab.log.Debug("lab ready", slog.Int("designs", len(cat.Names())))
	return lab, nil
}

// Names 目錄中的設計名稱（已排序）
func (l *Lab) Names() []string {
	return l.cat.Names()
}

// Setting 讀取設計設定；回傳值由呼叫端獨佔。
func (l *Lab) Setting(name string) (*spec.DesignSetting, error) {
	return l.cat.DesignSettingByName(name)
}

// NewSampler 依設計名稱與 seed 建立抽樣器。
func (l *Lab) NewSampler(name string, seed int64) (sampler.Sampler, error) {
	ds, err := l.Setting(name)
	if err != nil {
		return nil, err
	}
	return l.build(ds, core.New(l.pf.New(seed)))
}

// NewSimulator 以隨機 seed 建立模擬器。
func (l *Lab) NewSimulator(name string) (*Simulator, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, errs.Wrap(err, "draw simulator seed")
	}
	return l.NewSimulatorWithSeed(name, seed.Int64())
}

// NewSimulatorWithSeed 以指定 seed 建立模擬器，相同 seed 與 worker 數的結果可重現。
func (l *Lab) NewSimulatorWithSeed(name string, seed int64) (*Simulator, error) {
	ds, err := l.Setting(name)
	if err != nil {
		return nil, err
	}
	src := core.New(l.pf.New(seed))
	s, err := l.build(ds, src)
	if err != nil {
		return nil, err
	}
	return newSimulator(ds, s, src, l.pf, seed, l.log), nil
}

func (l *Lab) build(ds *spec.DesignSetting, src *core.Core) (sampler.Sampler, error) {
	s, err := ds.Build(src, l.log.With(slog.String("design", ds.DesignName)))
	if err != nil {
		return nil, errs.WrapWithExtra(err, "build sampler", "design="+ds.DesignName)
	}
	return s, nil
}
