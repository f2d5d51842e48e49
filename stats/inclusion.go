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

// Package stats 將重複抽樣的包含次數整理成可檢驗的統計報表。
package stats

import (
	"fmt"
	"io"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// DefaultConfidence 每個單位 Clopper–Pearson 區間的信心水準
const DefaultConfidence = 0.99

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"lo"`
	Hi float64 `json:"Hi" yaml:"hi"`
}

// Contains 回報 x 是否落在區間內（含端點）。
func (c CI) Contains(x float64) bool {
	return x >= c.Lo && x <= c.Hi
}

// InclusionReport 經驗包含頻率報表
type InclusionReport struct {
	Summary *InclusionSummary `json:"Summary" yaml:"summary"`
	Units   []UnitStat        `json:"Units"   yaml:"units"`
}

type InclusionSummary struct {
	DesignName string  `json:"DesignName" yaml:"design_name"`
	Design     string  `json:"Design"     yaml:"design"`
	Population int     `json:"Population" yaml:"population"`
	SampleSize int     `json:"SampleSize" yaml:"sample_size"`
	Draws      int     `json:"Draws"      yaml:"draws"`
	Confidence float64 `json:"Confidence" yaml:"confidence"`
	MaxAbsDev  float64 `json:"MaxAbsDev"  yaml:"max_abs_dev"` // max |π̂ − π|
	MaxZ       float64 `json:"MaxZ"       yaml:"max_z"`       // max |π̂ − π| / se
	PValue     float64 `json:"PValue"     yaml:"p_value"`     // Bonferroni 校正後的雙尾 p 值
	Covered    int     `json:"Covered"    yaml:"covered"`     // CI 覆蓋目標值的單位數
	BadSize    int     `json:"BadSize"    yaml:"bad_size"`    // 樣本大小不等於 SampleSize 的抽樣次數
}

// UnitStat 單一單位的包含統計
type UnitStat struct {
	Unit    int     `json:"Unit"    yaml:"unit"`
	Target  float64 `json:"Target"  yaml:"target"`
	Count   int     `json:"Count"   yaml:"count"`
	Hat     float64 `json:"Hat"     yaml:"hat"`
	CI      CI      `json:"CI"      yaml:"ci"`
	Z       float64 `json:"Z"       yaml:"z"`
	Covered bool    `json:"Covered" yaml:"covered"`
}

// NewInclusionReport 由目標包含機率與各單位被抽中次數建立報表。
//
// 注意：固定樣本數設計下各單位的指示變數彼此相關，MaxZ / PValue 以 Bonferroni
// 聯集界處理多重比較，屬保守檢定。
func NewInclusionReport(name, design string, sampleSize int, target []float64, counts []int, draws int, confidence float64) *InclusionReport {
	if confidence <= 0 || confidence >= 1 {
		confidence = DefaultConfidence
	}
	r := &InclusionReport{
		Summary: &InclusionSummary{
			DesignName: name,
			Design:     design,
			Population: len(target),
			SampleSize: sampleSize,
			Draws:      draws,
			Confidence: confidence,
		},
		Units: make([]UnitStat, len(target)),
	}
	for i, p := range target {
		c := 0
		if i < len(counts) {
			c = counts[i]
		}
		hat, ci := proportionCICP(c, draws, confidence)
		u := UnitStat{
			Unit:    i,
			Target:  p,
			Count:   c,
			Hat:     hat,
			CI:      ci,
			Z:       zScore(hat, p, draws),
			Covered: ci.Contains(p),
		}
		r.Units[i] = u

		dev := math.Abs(hat - p)
		if dev > r.Summary.MaxAbsDev {
			r.Summary.MaxAbsDev = dev
		}
		if u.Z > r.Summary.MaxZ {
			r.Summary.MaxZ = u.Z
		}
		if u.Covered {
			r.Summary.Covered++
		}
	}
	r.Summary.PValue = bonferroniP(r.Summary.MaxZ, len(target))
	return r
}

// Consistent 回報所有單位的 CI 是否都覆蓋目標值，且沒有任何一次樣本大小錯誤。
func (r *InclusionReport) Consistent() bool {
	return r.Summary.BadSize == 0 && r.Summary.Covered == r.Summary.Population
}

func (r *InclusionReport) WriteWith(w io.Writer, rep InclusionReportRender) error {
	return rep.Write(w, r)
}

// StdOut 輸出用時與報表表格
func (r *InclusionReport) StdOut(ut time.Duration) {
	formatDuration(ut, r.Summary.Draws)
	fmt.Println(r.Table())
}

// Table 以文字表格呈現摘要與各單位統計
func (r *InclusionReport) Table() string {
	p := message.NewPrinter(lang)
	s := r.Summary
	keys := []string{"Design Name", "Design", "Population", "Sample Size", "Draws", "Bad Size", "Max |dev|", "Max z", "p-value", "CI Covered"}
	msg := map[string]string{
		"Design Name": s.DesignName,
		"Design":      s.Design,
		"Population":  p.Sprintf("%d", s.Population),
		"Sample Size": p.Sprintf("%d", s.SampleSize),
		"Draws":       p.Sprintf("%d", s.Draws),
		"Bad Size":    p.Sprintf("%d", s.BadSize),
		"Max |dev|":   p.Sprintf("%.5f", s.MaxAbsDev),
		"Max z":       p.Sprintf("%.3f", s.MaxZ),
		"p-value":     p.Sprintf("%.4f", s.PValue),
		"CI Covered":  p.Sprintf("%d / %d", s.Covered, s.Population),
	}
	out := fmtTable(s.DesignName, keys, msg)

	unitKeys := make([]string, len(r.Units))
	unitMsg := make(map[string]string, len(r.Units))
	for i, u := range r.Units {
		k := p.Sprintf("unit %d", u.Unit)
		unitKeys[i] = k
		unitMsg[k] = p.Sprintf("π=%.4f  π̂=%.4f  [%.4f, %.4f]  n=%d", u.Target, u.Hat, u.CI.Lo, u.CI.Hi, u.Count)
	}
	out += fmtTable(p.Sprintf("%.0f%% Clopper-Pearson", 100*s.Confidence), unitKeys, unitMsg)
	return out
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// zScore 以目標值下的二項標準誤標準化偏差；目標為 0 或 1 時只有完全相等才為 0。
func zScore(hat, p float64, n int) float64 {
	if n == 0 {
		return 0
	}
	dev := math.Abs(hat - p)
	v := p * (1 - p)
	if v <= 0 {
		if dev == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return dev / math.Sqrt(v/float64(n))
}

func bonferroniP(z float64, m int) float64 {
	if m == 0 {
		return 1
	}
	p := 2 * distuv.UnitNormal.Survival(z) * float64(m)
	return math.Min(1, p)
}

func formatDuration(d time.Duration, draws int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	dps := int(float64(draws) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\ndps : %d draws/sec\n", sec, dps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\ndps : %d draws/sec\n", m, s, dps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\ndps : %d draws/sec\n", h, m, s, dps)
}
