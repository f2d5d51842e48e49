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

package spec

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/zintix-labs/probsample/errs"
	"github.com/zintix-labs/probsample/sdk/core"
	"github.com/zintix-labs/probsample/sdk/sampler"
)

// DesignType 抽樣設計種類。
type DesignType int

const (
	DesignNone DesignType = iota
	DesignEqual
	DesignBernoulli
	DesignInclusion
)

var DesignTypeMap = map[string]DesignType{
	"equal":     DesignEqual,
	"bernoulli": DesignBernoulli,
	"inclusion": DesignInclusion,
}

func (d DesignType) String() string {
	for k, v := range DesignTypeMap {
		if v == d {
			return k
		}
	}
	return "none"
}

// DesignSetting 建立一個抽樣器所需的全部設定。
//
//   - equal：population + sample_size
//   - bernoulli：probabilities（每單位 p）+ sample_size
//   - inclusion：probabilities（目標 π，總和決定樣本數）
type DesignSetting struct {
	DesignName    string             `yaml:"design_name"    json:"design_name"`
	DesignStr     string             `yaml:"design"         json:"design"`
	Design        DesignType         `yaml:"-"              json:"-"`
	Population    int                `yaml:"population"     json:"population"`
	SampleSize    int                `yaml:"sample_size"    json:"sample_size"`
	Probabilities []float64          `yaml:"probabilities"  json:"probabilities"`
	Calibration   CalibrationSetting `yaml:"calibration"    json:"calibration"`
}

// CalibrationSetting 校準與數值檢查參數，零值代表使用預設。
type CalibrationSetting struct {
	Delta          float64 `yaml:"delta"            json:"delta"`
	MaxIterations  int     `yaml:"max_iterations"   json:"max_iterations"`
	ConditionLimit float64 `yaml:"condition_limit"  json:"condition_limit"`
}

// init 解析 design 字串並做基本檢查；抽樣參數本身的驗證交給 sampler 建構。
func (ds *DesignSetting) init() error {
	ds.DesignName = strings.TrimSpace(ds.DesignName)
	if ds.DesignName == "" {
		return errs.NewFatal("design_name required")
	}
	d, ok := DesignTypeMap[strings.ToLower(strings.TrimSpace(ds.DesignStr))]
	if !ok {
		return errs.NewFatal(fmt.Sprintf("design_name: %s err:unknown design %q", ds.DesignName, ds.DesignStr))
	}
	ds.Design = d
	return ds.valid()
}

func (ds *DesignSetting) valid() error {
	switch ds.Design {
	case DesignEqual:
		if len(ds.Probabilities) != 0 {
			return errs.NewFatal(fmt.Sprintf("design_name: %s err:equal design takes no probabilities", ds.DesignName))
		}
	case DesignBernoulli, DesignInclusion:
		if len(ds.Probabilities) == 0 {
			return errs.NewFatal(fmt.Sprintf("design_name: %s err:empty probabilities", ds.DesignName))
		}
		if ds.Population != 0 && ds.Population != len(ds.Probabilities) {
			return errs.NewFatal(fmt.Sprintf("design_name: %s err:population %d != len(probabilities) %d", ds.DesignName, ds.Population, len(ds.Probabilities)))
		}
	}
	if ds.Design == DesignInclusion && ds.SampleSize != 0 {
		return errs.NewFatal(fmt.Sprintf("design_name: %s err:inclusion design derives sample_size from probabilities", ds.DesignName))
	}
	if ds.Calibration.MaxIterations < 0 || ds.Calibration.Delta < 0 || ds.Calibration.ConditionLimit < 0 {
		return errs.NewFatal(fmt.Sprintf("design_name: %s err:negative calibration setting", ds.DesignName))
	}
	return nil
}

// Options 轉為 sampler 建構參數。
func (ds *DesignSetting) Options(log *slog.Logger) []sampler.Option {
	return []sampler.Option{
		sampler.WithDelta(ds.Calibration.Delta),
		sampler.WithMaxIterations(ds.Calibration.MaxIterations),
		sampler.WithConditionLimit(ds.Calibration.ConditionLimit),
		sampler.WithLogger(log),
	}
}

// Build 依設定建立抽樣器；驗證錯誤與數值風險錯誤皆原樣回傳（可用 errors.Is 判斷）。
func (ds *DesignSetting) Build(src core.Uniform, log *slog.Logger) (sampler.Sampler, error) {
	var (
		s   sampler.Sampler
		err error
	)
	switch ds.Design {
	case DesignEqual:
		var eq *sampler.Equal
		if eq, err = sampler.NewEqual(ds.Population, ds.SampleSize, src); err == nil {
			s = eq
		}
	case DesignBernoulli:
		var c *sampler.Conditional
		if c, err = sampler.FromBernoulliProbabilities(ds.Probabilities, ds.SampleSize, src, ds.Options(log)...); err == nil {
			s = c
		}
	case DesignInclusion:
		var c *sampler.Conditional
		if c, err = sampler.FromInclusionProbabilities(ds.Probabilities, src, ds.Options(log)...); err == nil {
			s = c
		}
	default:
		return nil, errs.NewFatal(fmt.Sprintf("design_name: %s err:design not initialized", ds.DesignName))
	}
	// 具體型別的 nil 指標不可直接轉成介面回傳
	if err != nil {
		return nil, err
	}
	return s, nil
}
