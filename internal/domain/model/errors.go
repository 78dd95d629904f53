package model

import (
	"errors"
	"fmt"
)

// ErrorCode はパイプラインの失敗分類です
type ErrorCode string

const (
	// CodeConfiguration はホームディレクトリが特定できないなど、起動できない設定エラーです
	CodeConfiguration ErrorCode = "CONFIGURATION_FAILURE"
	// CodeEnumerationSkip は一括スキャン中の個別パスの失敗です。記録してスキップします
	CodeEnumerationSkip ErrorCode = "ENUMERATION_SKIP"
	// CodeWatchSetup は監視の登録に失敗したことを示します
	CodeWatchSetup ErrorCode = "WATCH_SETUP_FAILURE"
	// CodeWatchEvent は個別の通知の受信エラーです。記録して継続します
	CodeWatchEvent ErrorCode = "WATCH_EVENT_ERROR"
	// CodeSinkClosed は受信側が閉じられたことを示します
	CodeSinkClosed ErrorCode = "SINK_CLOSED"
)

var (
	// ErrSinkClosed は受信側がいなくなった後の送信で返されます
	ErrSinkClosed = errors.New("sink closed")
	// ErrHomeNotFound はユーザーのホームディレクトリが特定できない場合に返されます
	ErrHomeNotFound = errors.New("home directory not found")
)

// Error は分類コード付きのエラーです
type Error struct {
	Code ErrorCode
	Op   string
	Path string
	Err  error
}

// NewError は Error を生成します
func NewError(code ErrorCode, op, path string, err error) *Error {
	return &Error{Code: code, Op: op, Path: path, Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is はコードが一致する *Error に対して true を返します
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Op == "" && t.Err == nil
}

// CodeOf はエラーチェーンから分類コードを取り出します
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// IsFatal はコードがパイプラインを終了させるかどうかを返します
func IsFatal(code ErrorCode) bool {
	switch code {
	case CodeEnumerationSkip, CodeWatchEvent:
		return false
	default:
		return true
	}
}
