package filesystem

import (
	"sync"
	"time"

	"passwatch/internal/domain/model"
)

// DefaultDebounce は通知をまとめる既定の待ち時間です
const DefaultDebounce = 2 * time.Second

// Debouncer はパスごとに通知をまとめ、window の間静かになった時点で
// 一つのイベントとして送出します。エラーはまとめずにすぐ送出します
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	pending map[string]*pendingEvent
	seq     uint64
	stopped bool

	out  chan model.Event
	done chan struct{}
}

type pendingEvent struct {
	kind  model.EventKind
	gen   uint64
	timer *time.Timer
}

// NewDebouncer は新しい Debouncer を作成します
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{
		window:  window,
		pending: make(map[string]*pendingEvent),
		out:     make(chan model.Event),
		done:    make(chan struct{}),
	}
}

// Events はまとめられたイベントを受け取るチャネルを返します
func (d *Debouncer) Events() <-chan model.Event {
	return d.out
}

// Push は生の通知を受け付けます。ブロックしません
func (d *Debouncer) Push(ev model.Event) {
	if ev.Kind == model.EventError {
		go d.emit(ev)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	p, ok := d.pending[ev.Path]
	if !ok {
		p = &pendingEvent{kind: ev.Kind}
		d.pending[ev.Path] = p
	} else {
		p.timer.Stop()
		kind, keep := merge(p.kind, ev.Kind)
		if !keep {
			delete(d.pending, ev.Path)
			return
		}
		p.kind = kind
	}

	d.seq++
	p.gen = d.seq
	path, gen := ev.Path, p.gen
	p.timer = time.AfterFunc(d.window, func() { d.fire(path, gen) })
}

// Pending はまだ送出されていないパスの数を返します
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop は保留中のイベントを破棄し、以後の送出を止めます
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
	close(d.done)
}

func (d *Debouncer) fire(path string, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[path]
	if !ok || p.gen != gen || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	kind := p.kind
	d.mu.Unlock()

	d.emit(model.Event{Kind: kind, Path: path})
}

func (d *Debouncer) emit(ev model.Event) {
	select {
	case d.out <- ev:
	case <-d.done:
	}
}

// merge は同じパスに対する保留中の通知と新しい通知を合成します。
// keep が false の場合、そのパスの通知は打ち消されます
func merge(prev, next model.EventKind) (kind model.EventKind, keep bool) {
	switch {
	case prev == model.EventCreated && next == model.EventRemoved:
		return 0, false
	case prev == model.EventCreated:
		return model.EventCreated, true
	case prev == model.EventRemoved && next == model.EventCreated:
		return model.EventModified, true
	case next == model.EventOther:
		return prev, true
	default:
		return next, true
	}
}
