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

// Package logger 組裝抽樣引擎使用的 *slog.Logger。
//
// 兩種注入方式：
//   - 直接給 *slog.Logger：用 NewDefault / New 依 Mode 建立，或自行組裝。
//   - 給 slog.Handler：自行組合 JSON/Text handler、ReplaceAttr、LevelVar 等，再用 FromHandler 包裝。
//
// 大量 worker 同時寫 log 時可用 AsyncHandler 把任何 handler 轉成非阻塞。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/zintix-labs/probsample/errs"
)

// Mode 輸出模式
type Mode uint8

const (
	ModeDev     Mode = iota // text, debug, stderr
	ModeProd                // json, info, stdout
	ModeSilence             // 全部丟棄
)

var modeMap = map[string]Mode{
	"dev":     ModeDev,
	"prod":    ModeProd,
	"silence": ModeSilence,
}

// ParseMode 由設定字串取得 Mode（不分大小寫）。
func ParseMode(s string) (Mode, error) {
	if m, ok := modeMap[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return ModeDev, errs.Domain("log_mode", "unknown log mode %q", s)
}

func (m Mode) String() string {
	for k, v := range modeMap {
		if v == m {
			return k
		}
	}
	return "unknown"
}

// NewDefault 依 Mode 的預設輸出位置建立 logger。
func NewDefault(mode Mode) *slog.Logger {
	return slog.New(handlerFor(mode, nil))
}

// New 依 Mode 建立 logger，輸出導向 w（nil 則使用 Mode 預設位置）。
func New(w io.Writer, mode Mode) *slog.Logger {
	return slog.New(handlerFor(mode, w))
}

// FromHandler 包裝呼叫端自組的 handler；nil 視為 ModeDev。
func FromHandler(h slog.Handler) *slog.Logger {
	if h == nil {
		h = handlerFor(ModeDev, nil)
	}
	return slog.New(h)
}

// Discard 不輸出任何內容的 logger，作為未注入時的預設值。
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewAsync 依 Mode 建立非阻塞 logger，回傳的 *AsyncHandler 用於 Close 與觀測 drop 數。
func NewAsync(w io.Writer, mode Mode, buf int) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(handlerFor(mode, w), buf)
	return slog.New(ah), ah
}

func handlerFor(mode Mode, w io.Writer) slog.Handler {
	switch mode {
	case ModeProd:
		if w == nil {
			w = os.Stdout
		}
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case ModeSilence:
		return slog.DiscardHandler
	default:
		if w == nil {
			w = os.Stderr
		}
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}
