// Package main はアプリケーションのエントリーポイントを提供します
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"passwatch/internal/infrastructure/config"
	"passwatch/internal/infrastructure/filesystem"
	"passwatch/internal/infrastructure/locator"
	"passwatch/internal/infrastructure/logging"
	"passwatch/internal/infrastructure/sink"
	"passwatch/internal/usecase/discovery"
	"passwatch/internal/usecase/report"
)

func main() {
	configPath := flag.String("config", "", "設定ファイルのパス（YAML/TOML/JSON）")
	once := flag.Bool("once", false, "一括スキャンのみ行い終了する")
	flag.Parse()

	os.Exit(run(*configPath, *once))
}

func run(configPath string, once bool) int {
	// 設定の読み込み
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		return 1
	}

	// ロガーの初期化（エントリは標準出力、ログは標準エラーへ）
	logger := logging.NewLogger(os.Stderr, &logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// ルートディレクトリの解決
	root, err := locator.Resolve(cfg.Store.Dir, locator.DefaultHome)
	if err != nil {
		logger.Log(logging.LevelError, "ストアの場所を特定できません", err)
		return 1
	}

	scanner := filesystem.NewScanner(logger)
	preflight(scanner, root, logger)
	watcher := filesystem.NewWatcher(logger,
		filesystem.WithDebounce(cfg.Watch.Debounce),
		filesystem.WithSuffixFilter(cfg.Watch.SuffixFilter),
		filesystem.WithIgnoreDirs(cfg.Watch.IgnoreDirs...),
	)
	pipeline := discovery.NewPipeline(scanner, watcher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := sink.New()
	errCh := make(chan error, 1)
	go func() {
		if once {
			errCh <- pipeline.Snapshot(ctx, root, out)
			return
		}
		errCh <- pipeline.Run(ctx, root, out)
	}()

	printer := report.NewPrinter(cfg.Output.Format)
	n, drainErr := printer.Drain(ctx, os.Stdout, out.Entries())
	out.Drop()
	if drainErr != nil && !errors.Is(drainErr, context.Canceled) {
		logger.Log(logging.LevelError, "エントリの出力に失敗しました", drainErr)
		stop()
	}

	err = <-errCh
	switch {
	case drainErr != nil && !errors.Is(drainErr, context.Canceled):
		return 1
	case err == nil, errors.Is(err, context.Canceled):
		logger.Log(logging.LevelInfo, fmt.Sprintf("処理が完了しました（%d 件出力）", n), nil)
		return 0
	default:
		logger.Log(logging.LevelError, "パイプラインが異常終了しました", err)
		return 1
	}
}

// preflight はストアの状態を診断します。見つからなくても監視は続行します
func preflight(v filesystem.DirectoryValidator, root string, logger logging.Logger) bool {
	if err := v.ValidateDirectoryPath(root); err != nil {
		logger.Log(logging.LevelWarn, fmt.Sprintf("ストアが見つかりません: %s", root), err)
		return false
	}
	return true
}
