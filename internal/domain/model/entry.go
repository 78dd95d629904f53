// package model はドメインモデルを定義します
package model

import (
	"path/filepath"
	"strings"
)

const (
	// Suffix は資格情報ファイルの拡張子です
	Suffix = ".gpg"
	// ScanPattern はルートからの相対パスに対する一括スキャンのパターンです
	ScanPattern = "**/*" + Suffix
)

// Entry は検出された資格情報エントリを表します
type Entry struct {
	// Name はファイルの基本名から拡張子を除いた論理名です。一意とは限りません
	Name string `json:"name"`
	// Metadata は予約フィールドです。この層では常に空です
	Metadata string `json:"metadata"`
	// Location はファイルへのフルパスです
	Location string `json:"location"`
}

// NewEntry はパスから Entry を生成します
func NewEntry(path string) Entry {
	location := strings.ToValidUTF8(path, "�")
	return Entry{
		Name:     NameFromPath(location),
		Location: location,
	}
}

// NameFromPath は基本名の末尾から拡張子を取り除いた名前を返します。
// 拡張子が繰り返されている場合はすべて取り除きます（a.gpg.gpg → a）
func NameFromPath(path string) string {
	name := filepath.Base(path)
	for strings.HasSuffix(name, Suffix) {
		name = strings.TrimSuffix(name, Suffix)
	}
	return name
}

// HasSuffix はパスが資格情報ファイルの拡張子を持つかどうかを返します
func HasSuffix(path string) bool {
	return strings.HasSuffix(path, Suffix)
}
