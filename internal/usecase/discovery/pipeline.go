// Package discovery は一括スキャンとライブ監視をつなぐ同期パイプラインを提供します
package discovery

import (
	"context"
	"fmt"
	"sync/atomic"

	"passwatch/internal/domain/model"
	"passwatch/internal/infrastructure/filesystem"
	"passwatch/internal/infrastructure/logging"
	"passwatch/internal/infrastructure/sink"
)

// Output はパイプラインの出力先です。送信を終えると CloseSend が呼ばれます
type Output interface {
	sink.Sender
	CloseSend()
}

// Pipeline は一括スキャンを完了させてからライブ監視を開始します。
// スキャンと監視が同時に送信することはありません
type Pipeline struct {
	scanner filesystem.EntryScanner
	watcher filesystem.EntryWatcher
	logger  logging.Logger
}

// NewPipeline は新しい Pipeline を作成します
func NewPipeline(scanner filesystem.EntryScanner, watcher filesystem.EntryWatcher, logger logging.Logger) *Pipeline {
	return &Pipeline{scanner: scanner, watcher: watcher, logger: logger}
}

// Run はスナップショットを送信した後、ctx が終了するか致命的なエラーが
// 起きるまで新しいエントリを送信し続けます
func (p *Pipeline) Run(ctx context.Context, root string, out Output) error {
	defer out.CloseSend()

	if err := p.scan(ctx, root, out); err != nil {
		return err
	}

	counter := &countingSender{next: out}
	err := p.watcher.Watch(ctx, root, counter)
	p.logger.Log(logging.LevelInfo, fmt.Sprintf("ライブ監視を終了しました（%d 件）", counter.n.Load()), err)
	return err
}

// Snapshot は一括スキャンのみを行います
func (p *Pipeline) Snapshot(ctx context.Context, root string, out Output) error {
	defer out.CloseSend()
	return p.scan(ctx, root, out)
}

func (p *Pipeline) scan(ctx context.Context, root string, out sink.Sender) error {
	p.logger.Log(logging.LevelInfo, fmt.Sprintf("一括スキャンを開始します: %s", root), nil)

	counter := &countingSender{next: out}
	if err := p.scanner.Scan(ctx, root, counter); err != nil {
		p.logger.Log(logging.LevelError, "一括スキャンに失敗しました", err)
		return fmt.Errorf("一括スキャンに失敗しました: %w", err)
	}

	p.logger.Log(logging.LevelInfo, fmt.Sprintf("一括スキャンが完了しました（%d 件）", counter.n.Load()), nil)
	return nil
}

// countingSender は送信に成功した件数を数えます
type countingSender struct {
	next sink.Sender
	n    atomic.Int64
}

func (c *countingSender) Send(e model.Entry) error {
	if err := c.next.Send(e); err != nil {
		return err
	}
	c.n.Add(1)
	return nil
}
