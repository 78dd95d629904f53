// Package sink は複数の生産者と単一の消費者をつなぐ無制限のエントリキューを提供します
package sink

import (
	"sync"

	"passwatch/internal/domain/model"
)

// Sender はエントリの送信側です。一括スキャナーとライブ監視の両方が保持します
type Sender interface {
	Send(entry model.Entry) error
}

// Sink は無制限のFIFOチャネルです。Send は決してブロックしません
type Sink struct {
	mu      sync.Mutex
	queue   []model.Entry
	sending bool // CloseSend が呼ばれていなければ true
	dropped bool

	wake     chan struct{}
	dropCh   chan struct{}
	out      chan model.Entry
	dropOnce sync.Once
}

// New は新しい Sink を作成し、配送用のゴルーチンを開始します
func New() *Sink {
	s := &Sink{
		sending: true,
		wake:    make(chan struct{}, 1),
		dropCh:  make(chan struct{}),
		out:     make(chan model.Entry),
	}
	go s.pump()
	return s
}

// Send はエントリをキューに追加します。
// 消費者が Drop した後は model.ErrSinkClosed を返します
func (s *Sink) Send(entry model.Entry) error {
	s.mu.Lock()
	if s.dropped || !s.sending {
		s.mu.Unlock()
		return model.ErrSinkClosed
	}
	s.queue = append(s.queue, entry)
	s.mu.Unlock()
	s.signal()
	return nil
}

// CloseSend は生産者がこれ以上送信しないことを通知します。
// キューが空になった時点で Entries のチャネルが閉じられます
func (s *Sink) CloseSend() {
	s.mu.Lock()
	s.sending = false
	s.mu.Unlock()
	s.signal()
}

// Drop は消費者が受信をやめたことを通知します。以降の Send は失敗します
func (s *Sink) Drop() {
	s.mu.Lock()
	s.dropped = true
	s.queue = nil
	s.mu.Unlock()
	s.dropOnce.Do(func() { close(s.dropCh) })
}

// Entries は受信用のチャネルを返します。受信者は一つだけを想定しています
func (s *Sink) Entries() <-chan model.Entry {
	return s.out
}

// Len はまだ配送されていないエントリ数を返します
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Sink) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Sink) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if s.dropped {
			s.mu.Unlock()
			return
		}
		if len(s.queue) == 0 {
			sending := s.sending
			s.mu.Unlock()
			if !sending {
				return
			}
			select {
			case <-s.wake:
			case <-s.dropCh:
				return
			}
			continue
		}
		next := s.queue[0]
		s.queue[0] = model.Entry{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- next:
		case <-s.dropCh:
			return
		}
	}
}
