// Package filesystem はファイルシステム操作を提供します
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"passwatch/internal/domain/model"
	"passwatch/internal/infrastructure/logging"
	"passwatch/internal/infrastructure/sink"
)

// DirectoryValidator はディレクトリの検証機能を提供するインターフェースです
type DirectoryValidator interface {
	ValidateDirectoryPath(path string) error
}

// EntryScanner はルート配下の資格情報エントリを一括で列挙するインターフェースです
type EntryScanner interface {
	Scan(ctx context.Context, root string, out sink.Sender) error
}

// FSFactory はルートディレクトリを起点とする billy.Filesystem を返します
type FSFactory func(root string) (billy.Filesystem, error)

// OSFS は OS のファイルシステムをルートで chroot した FSFactory です
func OSFS(root string) (billy.Filesystem, error) {
	return osfs.New(root), nil
}

// Scanner はファイルシステムをスキャンするための構造体です
type Scanner struct {
	logger  logging.Logger
	open    FSFactory
	pattern string
}

// NewScanner は OS のファイルシステムを対象とする Scanner を作成します
func NewScanner(logger logging.Logger) *Scanner {
	return NewScannerFS(logger, OSFS)
}

// NewScannerFS は任意のファイルシステムを対象とする Scanner を作成します
func NewScannerFS(logger logging.Logger, open FSFactory) *Scanner {
	return &Scanner{
		logger:  logger,
		open:    open,
		pattern: model.ScanPattern,
	}
}

// ValidateDirectoryPath はパスが存在するディレクトリであることを確認します
func (s *Scanner) ValidateDirectoryPath(path string) error {
	if path == "" {
		return fmt.Errorf("ディレクトリパスが指定されていません")
	}

	fs, err := s.open(path)
	if err != nil {
		return fmt.Errorf("ファイルシステムを開けません: %w", err)
	}

	fileInfo, err := fs.Stat(".")
	if err != nil {
		return fmt.Errorf("ディレクトリが存在しません: %w", err)
	}

	if !fileInfo.IsDir() {
		return fmt.Errorf("指定されたパスはディレクトリではありません: %s", path)
	}

	return nil
}

var (
	_ DirectoryValidator = (*Scanner)(nil)
	_ EntryScanner       = (*Scanner)(nil)
)

// joinRoot はルートからの相対パスを、ルートを正規化せずに連結します。
// Location は与えられたルートの表記をそのまま保ちます
func joinRoot(root, rel string) string {
	if rel == "." || rel == "" {
		return root
	}
	rel = filepath.FromSlash(rel)
	if root == "" {
		return rel
	}
	if os.IsPathSeparator(root[len(root)-1]) {
		return root + rel
	}
	return root + string(filepath.Separator) + rel
}

// errStop は走査の中断に使う内部エラーです
type errStop struct{ err error }

func (e *errStop) Error() string { return e.err.Error() }

// Scan はルート配下を再帰的に走査し、パターンに一致したファイルごとに
// Entry を送信します。個別のパスの失敗は記録してスキップし、
// 送信に失敗した場合のみ中断してエラーを返します
func (s *Scanner) Scan(ctx context.Context, root string, out sink.Sender) error {
	fs, err := s.open(root)
	if err != nil {
		s.skip(root, err)
		return nil
	}

	err = util.Walk(fs, ".", func(relPath string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &errStop{err: ctxErr}
		}

		path := joinRoot(root, relPath)
		if err != nil {
			s.skip(path, err)
			return nil
		}

		if info.IsDir() {
			return nil
		}

		matched, err := doublestar.Match(s.pattern, filepath.ToSlash(relPath))
		if err != nil {
			return &errStop{err: fmt.Errorf("パターン %q が不正です: %w", s.pattern, err)}
		}
		if !matched {
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := fs.Stat(relPath)
			if err != nil {
				s.skip(path, err)
				return nil
			}
			if target.IsDir() {
				return nil
			}
		}

		if err := out.Send(model.NewEntry(path)); err != nil {
			return &errStop{err: model.NewError(model.CodeSinkClosed, "scan", path, err)}
		}
		return nil
	})

	var stop *errStop
	if errors.As(err, &stop) {
		return stop.err
	}
	if err != nil {
		return fmt.Errorf("ファイルシステムの走査に失敗しました: %w", err)
	}
	return nil
}

func (s *Scanner) skip(path string, err error) {
	s.logger.Log(logging.LevelWarn, fmt.Sprintf("パス '%s' の走査中にエラー発生、スキップします", path),
		model.NewError(model.CodeEnumerationSkip, "scan", path, err))
}
