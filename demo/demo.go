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

// Package demo 組裝內建示範設計（demo_configs）的 Lab，供範例與測試使用。
package demo

import (
	"log/slog"

	"github.com/zintix-labs/probsample"
	"github.com/zintix-labs/probsample/catalog"
	"github.com/zintix-labs/probsample/demo/demo_configs"
	"github.com/zintix-labs/probsample/errs"
	"github.com/zintix-labs/probsample/logger"
	"github.com/zintix-labs/probsample/sdk/core"
)

func New() (*catalog.Catalog, error) {
	return catalog.New(demo_configs.FS)
}

// NewLab 以 PCG64 與 dev logger 建立示範 Lab。
func NewLab() (*probsample.Lab, error) {
	return NewLabWith(core.Default(), logger.NewDefault(logger.ModeDev))
}

func NewLabWith(pf core.PRNGFactory, log *slog.Logger) (*probsample.Lab, error) {
	lab, err := probsample.New(pf, probsample.Configs(demo_configs.FS), probsample.WithLogger(log))
	if err != nil {
		return nil, errs.Wrap(err, "new demo lab failed")
	}
	return lab, nil
}
