package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"passwatch/internal/domain/model"
	"passwatch/internal/infrastructure/logging"
	"passwatch/internal/infrastructure/sink"
)

// WatchState はライブ監視の状態です
type WatchState int32

const (
	StateUninitialized WatchState = iota
	StateWatching
	StateTerminated
)

func (s WatchState) String() string {
	switch s {
	case StateWatching:
		return "watching"
	case StateTerminated:
		return "terminated"
	default:
		return "uninitialized"
	}
}

// errStreamClosed は通知元のチャネルが予期せず閉じられたことを示します
var errStreamClosed = errors.New("watch stream closed")

// EntryWatcher はルート配下に新しく作成されたエントリを送信し続けるインターフェースです
type EntryWatcher interface {
	Watch(ctx context.Context, root string, out sink.Sender) error
}

// WatcherOption は Watcher の設定を変更します
type WatcherOption func(*Watcher)

// WithDebounce はデバウンスの待ち時間を設定します
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithSuffixFilter が true の場合、拡張子が一致するファイルの作成のみを送信します
func WithSuffixFilter(enabled bool) WatcherOption {
	return func(w *Watcher) { w.suffixFilter = enabled }
}

// WithIgnoreDirs は監視しないディレクトリの基本名を設定します（例: .git）
func WithIgnoreDirs(names ...string) WatcherOption {
	return func(w *Watcher) {
		w.ignoreDirs = make(map[string]struct{}, len(names))
		for _, n := range names {
			if n != "" {
				w.ignoreDirs[n] = struct{}{}
			}
		}
	}
}

// Watcher はファイルシステムの作成通知を再帰的に監視します
type Watcher struct {
	logger       logging.Logger
	debounce     time.Duration
	suffixFilter bool
	ignoreDirs   map[string]struct{}

	state atomic.Int32
}

// NewWatcher は新しい Watcher を作成します
func NewWatcher(logger logging.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		logger:   logger,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State は現在の状態を返します
func (w *Watcher) State() WatchState {
	return WatchState(w.state.Load())
}

// Watch は root を再帰的に監視し、作成通知ごとに Entry を送信します。
// ctx が終了するか、致命的なエラーが起きるまで戻りません
func (w *Watcher) Watch(ctx context.Context, root string, out sink.Sender) error {
	defer w.state.Store(int32(StateTerminated))

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return model.NewError(model.CodeWatchSetup, "watch", root, err)
	}

	deb := NewDebouncer(w.debounce)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer deb.Stop()
	defer fw.Close()

	if err := w.addTree(fw, root, nil); err != nil {
		return model.NewError(model.CodeWatchSetup, "watch", root, err)
	}

	w.state.Store(int32(StateWatching))
	w.logger.Log(logging.LevelInfo, fmt.Sprintf("監視を開始しました: %s", root), nil)

	fatal := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.forward(ctx, fw, deb, fatal)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-fatal:
			return model.NewError(model.CodeWatchSetup, "watch stream", root, err)
		case ev := <-deb.Events():
			if err := w.handle(ev, out); err != nil {
				return err
			}
		}
	}
}

// forward は fsnotify の通知を変換して Debouncer に渡します
func (w *Watcher) forward(ctx context.Context, fw *fsnotify.Watcher, deb *Debouncer, fatal chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-fw.Events:
			if !ok {
				fatal <- errStreamClosed
				return
			}
			ev := translate(raw)
			if ev.Kind == model.EventCreated && w.isDir(ev.Path) {
				if w.ignored(ev.Path) {
					continue
				}
				// 監視の登録前に作られた中身を取りこぼさないよう合成する
				if err := w.addTree(fw, ev.Path, func(path string) { deb.Push(model.Created(path)) }); err != nil {
					w.logger.Log(logging.LevelWarn, fmt.Sprintf("ディレクトリ '%s' を監視に追加できません", ev.Path),
						model.NewError(model.CodeWatchEvent, "watch", ev.Path, err))
				}
			}
			deb.Push(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				fatal <- errStreamClosed
				return
			}
			deb.Push(model.Failed(err))
		}
	}
}

// handle は一つのイベントを処理します。作成とエラー以外は無視します
func (w *Watcher) handle(ev model.Event, out sink.Sender) error {
	switch ev.Kind {
	case model.EventCreated:
		if w.suffixFilter && (!model.HasSuffix(ev.Path) || w.isDir(ev.Path)) {
			w.logger.Log(logging.LevelDebug, fmt.Sprintf("対象外の作成通知を無視します: %s", ev.Path), nil)
			return nil
		}
		if err := out.Send(model.NewEntry(ev.Path)); err != nil {
			return model.NewError(model.CodeSinkClosed, "watch", ev.Path, err)
		}
	case model.EventError:
		w.logger.Log(logging.LevelWarn, "監視通知の受信に失敗しました",
			model.NewError(model.CodeWatchEvent, "watch", "", ev.Err))
	default:
		w.logger.Log(logging.LevelDebug, fmt.Sprintf("通知を無視します: %s", ev), nil)
	}
	return nil
}

// addTree は dir 配下のディレクトリをすべて監視対象に加えます。
// dir 自身を追加できない場合のみエラーを返し、配下の失敗は記録して続行します。
// onFound が nil でなければ dir 自身を除く、見つかったファイルと
// 無視対象でないサブディレクトリごとに呼び出します
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string, onFound func(path string)) error {
	fs := osfs.New(dir)
	return util.Walk(fs, ".", func(relPath string, info os.FileInfo, err error) error {
		path := joinRoot(dir, relPath)
		if err != nil {
			if relPath == "." {
				return err
			}
			w.logger.Log(logging.LevelWarn, fmt.Sprintf("パス '%s' を監視に追加できません", path),
				model.NewError(model.CodeWatchEvent, "watch", path, err))
			return nil
		}
		if !info.IsDir() {
			if relPath == "." {
				return fw.Add(path)
			}
			if onFound != nil {
				onFound(path)
			}
			return nil
		}
		if relPath != "." && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			if relPath == "." {
				return err
			}
			w.logger.Log(logging.LevelWarn, fmt.Sprintf("ディレクトリ '%s' を監視に追加できません", path),
				model.NewError(model.CodeWatchEvent, "watch", path, err))
		}
		if relPath != "." && onFound != nil {
			onFound(path)
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	_, ok := w.ignoreDirs[filepath.Base(path)]
	return ok
}

func (w *Watcher) isDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}

// translate は fsnotify の通知をイベントの種類に対応付けます
func translate(raw fsnotify.Event) model.Event {
	switch {
	case raw.Has(fsnotify.Create):
		return model.Created(raw.Name)
	case raw.Has(fsnotify.Remove), raw.Has(fsnotify.Rename):
		return model.Removed(raw.Name)
	case raw.Has(fsnotify.Write):
		return model.Modified(raw.Name)
	default:
		return model.Other(raw.Name)
	}
}
