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

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/zintix-labs/probsample/errs"
)

// syncBuffer 讓背景 goroutine 寫入與測試讀取不會 race
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"dev": ModeDev, " PROD ": ModeProd, "silence": ModeSilence} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q)=%v,%v", in, got, err)
		}
	}
	if _, err := ParseMode("loud"); !errors.Is(err, errs.ErrDomain) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if ModeProd.String() != "prod" {
		t.Fatalf("String mismatch")
	}
}

func TestProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, ModeProd)
	l.Debug("hidden")
	l.Info("calibrated", "iterations", 12)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("debug should be filtered in prod, got %q", buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if m["msg"] != "calibrated" || m["iterations"].(float64) != 12 {
		t.Fatalf("unexpected record: %v", m)
	}
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	var buf syncBuffer
	l, ah := NewAsync(&buf, ModeDev, 64)
	for i := range 10 {
		l.Info("draw", "i", i)
	}
	ah.Close()
	if n := strings.Count(buf.String(), "msg=draw"); n+int(ah.Dropped()) != 10 {
		t.Fatalf("written %d + dropped %d != 10", n, ah.Dropped())
	}
	l.Info("after close")
	if strings.Contains(buf.String(), "after close") {
		t.Fatalf("records after Close must be dropped")
	}
	ah.Close()
}

func TestSilenceAndDiscard(t *testing.T) {
	if NewDefault(ModeSilence).Enabled(t.Context(), 12) {
		t.Fatalf("silence logger should be disabled")
	}
	Discard().Info("nothing")
	if FromHandler(nil) == nil {
		t.Fatalf("FromHandler(nil) should fall back to dev handler")
	}
}
