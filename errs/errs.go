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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// 錯誤種類（Kind）：以 errors.Is 判斷。
//
//   - ErrDomain / ErrRange：建構期參數驗證失敗，一律 Fatal，不會產生半成品 sampler。
//   - ErrNotConverged / ErrCancellation：數值風險，一律 Warn，呼叫端可調整參數重試。
var (
	ErrDomain       = errors.New("domain error")
	ErrRange        = errors.New("range error")
	ErrNotConverged = errors.New("calibration did not converge")
	ErrCancellation = errors.New("symmetric polynomial cancellation")
)

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端可追加的額外上下文（例如出錯的參數名稱）；
// Cause 可串接下層錯誤或 Kind 哨兵值；ErrLv 表示嚴重度。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 依嚴重度與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// Domain 建立參數定義域錯誤（Fatal），param 為出錯參數名稱，寫入 Extra。
func Domain(param string, format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), Extra: "param=" + param, Cause: ErrDomain, ErrLv: Fatal}
}

// Range 建立參數範圍錯誤（Fatal），param 為出錯參數名稱，寫入 Extra。
func Range(param string, format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), Extra: "param=" + param, Cause: ErrRange, ErrLv: Fatal}
}

// NotConverged 建立校準未收斂的數值風險錯誤（Warn）。
func NotConverged(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), Cause: ErrNotConverged, ErrLv: Warn}
}

// Cancellation 建立對稱多項式抵銷誤差的數值風險錯誤（Warn）。
func Cancellation(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), Cause: ErrCancellation, ErrLv: Warn}
}

// Wrap 使用給定訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv（保持原本嚴重度）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	if errors.As(cause, &e) {
		errLv = e.ErrLv
	}
	r := New(errLv, msg)
	r.Cause = cause
	return r
}

// WrapWithExtra 同 Wrap，但附加上下文字串。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// IsFatal 回報 err 鏈上第一個 *E 是否為 Fatal；非本包錯誤一律視為 Fatal。
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	e, ok := AsErr(err)
	if !ok {
		return true
	}
	return e.ErrLv == Fatal
}
