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

package catalog

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/probsample/demo/demo_configs"
	"github.com/zintix-labs/probsample/spec"
)

func TestDemoCatalog(t *testing.T) {
	c, err := New(demo_configs.FS)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	names := c.Names()
	want := []string{"bernoulli_10_3", "pps_5_3", "srs_10_3"}
	if len(names) != len(want) {
		t.Fatalf("unexpected names: %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected names: %v", names)
		}
	}
	e, ok := c.GetByName(" PPS_5_3 ")
	if !ok || e.Design != spec.DesignInclusion || e.ConfigName != "design_pps.yaml" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	ds, err := c.DesignSettingByName("srs_10_3")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ds.Population != 10 || ds.SampleSize != 3 {
		t.Fatalf("unexpected setting: %+v", ds)
	}
	if _, err := c.DesignSettingByName("missing"); err == nil {
		t.Fatalf("expected error for missing design")
	}
}

func TestCatalogJSONAndDuplicates(t *testing.T) {
	a := fstest.MapFS{
		"a.json":    {Data: []byte(`{"design_name":"x","design":"equal","population":4,"sample_size":2}`)},
		"notes.txt": {Data: []byte("ignored")},
	}
	c, err := New(a)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := c.GetByName("x"); !ok {
		t.Fatalf("json config not indexed")
	}

	b := fstest.MapFS{
		"b.yaml": {Data: []byte("design_name: X\ndesign: equal\npopulation: 4\nsample_size: 1\n")},
	}
	if _, err := New(a, b); !errors.Is(err, ErrDupName) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
	if _, err := New(a, a); err == nil {
		t.Fatalf("expected duplicate file error")
	}
}

func TestCatalogRejects(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatalf("expected error without fs")
	}
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil fs")
	}
	nested := fstest.MapFS{"sub/a.yaml": {Data: []byte("design_name: a\ndesign: equal\n")}}
	if _, err := New(nested); err == nil {
		t.Fatalf("expected flat-fs error")
	}
	broken := fstest.MapFS{"a.yaml": {Data: []byte("design_name: a\ndesign: nope\n")}}
	if _, err := New(broken); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := validFileName(".yaml"); err == nil {
		t.Fatalf("dotfile must be rejected")
	}
	if err := validFileName("a.txt"); err == nil {
		t.Fatalf("non-config extension must be rejected")
	}
}
