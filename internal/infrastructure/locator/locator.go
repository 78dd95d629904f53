// Package locator は資格情報ストアのルートディレクトリを解決します
package locator

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/adrg/xdg"

	"passwatch/internal/domain/model"
)

// StoreDirName はホームディレクトリ配下の既定のストア名です
const StoreDirName = ".password-store"

// HomeFunc はユーザーのホームディレクトリを返す関数です
type HomeFunc func() (string, error)

var (
	getenv      = os.Getenv
	currentUser = user.Current
)

// DefaultHome はユーザーのホームディレクトリを返します。
// HOME が設定されていれば XDG の解決結果を使い、未設定ならユーザーデータベースを引きます。
// どちらでも特定できない場合は model.ErrHomeNotFound を返します
func DefaultHome() (string, error) {
	if getenv("HOME") != "" {
		xdg.Reload()
		if xdg.Home != "" {
			return xdg.Home, nil
		}
	}

	u, err := currentUser()
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrHomeNotFound, err)
	}
	if u.HomeDir == "" {
		return "", model.ErrHomeNotFound
	}
	return u.HomeDir, nil
}

// Resolve はルートディレクトリを一度だけ解決します。
// override が存在するパスを指していればそのまま使い、
// そうでなければ <home>/.password-store にフォールバックします
func Resolve(override string, home HomeFunc) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err == nil {
			return override, nil
		}
	}

	if home == nil {
		home = DefaultHome
	}
	dir, err := home()
	if err == nil && dir == "" {
		err = model.ErrHomeNotFound
	}
	if err != nil {
		return "", model.NewError(model.CodeConfiguration, "resolve root", "", err)
	}
	return filepath.Join(dir, StoreDirName), nil
}
