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

// Package catalog 從一個或多個 fs.FS 索引抽樣設計設定檔（.yaml/.yml/.json）。
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/probsample/errs"
	"github.com/zintix-labs/probsample/spec"
)

var ErrDupName = errs.NewFatal("duplicate design name")

// Entry 一個已索引的設計：設計名稱（小寫）與設定檔名。
type Entry struct {
	Name       string
	ConfigName string
	Design     spec.DesignType
}

type Catalog struct {
	byName map[string]Entry
	names  []string // 用來穩定排序
	config *multiFS
}

// New 掃描所有 FS、解析每個設定檔並以 design_name 建立索引；任何解析失敗或重名皆回傳錯誤。
func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	c := &Catalog{
		byName: map[string]Entry{},
		config: multFS,
	}
	files := make([]string, 0, len(multFS.index))
	for name := range multFS.index {
		files = append(files, name)
	}
	sort.Strings(files)
	for _, file := range files {
		ds, err := c.load(file)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "catalog parse config failed", "file="+file)
		}
		key := normalize(ds.DesignName)
		if prev, ok := c.byName[key]; ok {
			return nil, errs.WrapWithExtra(ErrDupName, fmt.Sprintf("design %q defined twice", key), prev.ConfigName+" / "+file)
		}
		c.byName[key] = Entry{Name: key, ConfigName: file, Design: ds.Design}
		c.names = append(c.names, key)
	}
	sort.Strings(c.names)
	return c, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	e, ok := c.byName[normalize(name)]
	return e, ok
}

// Names 回傳所有設計名稱（已排序）。
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// DesignSettingByName
//
// 每次呼叫都重新讀取並解析設定檔，回傳的 *spec.DesignSetting 由呼叫端獨佔。
func (c *Catalog) DesignSettingByName(name string) (*spec.DesignSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.NewWarn("design name does not exist in catalog")
	}
	return c.load(e.ConfigName)
}

func (c *Catalog) load(file string) (*spec.DesignSetting, error) {
	if err := validFileName(file); err != nil {
		return nil, err
	}
	src, ok := c.config.GetFS(file)
	if !ok {
		return nil, errs.NewWarn("file name does not exist in catalog")
	}
	raw, err := fs.ReadFile(src, file)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	return parseDesignSettingByExt(file, raw)
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	// 1) 不能包含路徑或類似字元
	if strings.ContainsAny(file, `/\:`) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename; no / \\\\ :) ", file))
	}
	// 2) 必須以 .yaml/.yml/.json 結尾（大小寫不敏感）
	if !isConfigFile(file) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file))
	}
	// 3) 不能以 . 開頭
	if strings.HasPrefix(file, ".") {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (cannot start with '.')", file))
	}
	return nil
}

func isConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func parseDesignSettingByExt(filename string, raw []byte) (*spec.DesignSetting, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return spec.GetDesignSettingByYAML(raw)
	case ".json":
		return spec.GetDesignSettingByJSON(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", filename))
	}
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
	}

	m := &multiFS{
		src:   src,
		index: make(map[string]int, 64),
	}

	for i := 0; i < len(src); i++ {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// 設定目錄必須是扁平的，只允許根目錄 "."
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", path))
			}
			// 只索引 yaml/json，其他檔案忽略
			if !isConfigFile(path) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i))
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}
