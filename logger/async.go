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
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// AsyncHandler 將 Handle 轉為 enqueue，由背景 goroutine 逐筆交給 next 寫出。
// 佇列滿或 Close 之後的紀錄直接丟棄並計數，不會把 I/O 延遲傳回抽樣迴圈。
//
// 注意：slog.Logger 會忽略 Handle 回傳的 error，I/O 錯誤需由 next 自行處理。
type AsyncHandler struct {
	next slog.Handler
	q    *queue
}

type queue struct {
	ch      chan pending
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type pending struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// NewAsyncHandler buf <= 0 時使用 1024。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = handlerFor(ModeDev, nil)
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &queue{
		ch:   make(chan pending, buf),
		stop: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return &AsyncHandler{next: next, q: q}
}

func (q *queue) run() {
	defer q.wg.Done()
	for {
		select {
		case p := <-q.ch:
			_ = p.h.Handle(p.ctx, p.rec)
		case <-q.stop:
			// drain
			for {
				select {
				case p := <-q.ch:
					_ = p.h.Handle(p.ctx, p.rec)
				default:
					return
				}
			}
		}
	}
}

// Dropped 因佇列滿或已關閉而丟棄的筆數
func (h *AsyncHandler) Dropped() uint64 {
	if h == nil || h.q == nil {
		return 0
	}
	return h.q.dropped.Load()
}

// Close 停止接收並等待佇列寫完；可重複呼叫。
func (h *AsyncHandler) Close() {
	if h == nil || h.q == nil {
		return
	}
	h.q.once.Do(func() { close(h.q.stop) })
	h.q.wg.Wait()
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if h == nil || h.q == nil {
		return nil
	}
	select {
	case <-h.q.stop:
		h.q.dropped.Add(1)
		return nil
	default:
	}
	// Record 內含可變引用，跨 goroutine 前需 Clone
	select {
	case h.q.ch <- pending{ctx: ctx, rec: r.Clone(), h: h.next}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}
