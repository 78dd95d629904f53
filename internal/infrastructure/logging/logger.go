// Package logging はロギング機能を提供します
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"passwatch/internal/domain/model"
)

// ログレベル
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger は構造化ログを出力するためのインターフェースです
type Logger interface {
	Log(level, message string, err error)
}

// Config はロガーの設定です
type Config struct {
	Level  string
	Format string
}

// LogrusLogger は logrus を使って Logger を実装します
type LogrusLogger struct {
	base *logrus.Logger
}

// NewJSONLogger は新しいJSONフォーマットのロガーを作成します。
// フィールド名は timestamp, level, message, error, code です
func NewJSONLogger(writer io.Writer) *LogrusLogger {
	return newLogrusLogger(writer, jsonFormatter(), logrus.DebugLevel)
}

// NewTextLogger は人間向けのテキストフォーマットのロガーを作成します
func NewTextLogger(writer io.Writer) *LogrusLogger {
	return newLogrusLogger(writer, textFormatter(), logrus.DebugLevel)
}

// NewLogger は設定に従ってロガーを作成します。cfg が nil の場合はJSON・INFOです
func NewLogger(writer io.Writer, cfg *Config) *LogrusLogger {
	if cfg == nil {
		cfg = &Config{}
	}
	var l *LogrusLogger
	if strings.EqualFold(cfg.Format, "text") {
		l = NewTextLogger(writer)
	} else {
		l = NewJSONLogger(writer)
	}
	l.SetLevel(cfg.Level)
	return l
}

// SetLevel は出力する最低レベルを設定します
func (l *LogrusLogger) SetLevel(level string) {
	l.base.SetLevel(parseLevel(level))
}

func jsonFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	}
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	}
}

func newLogrusLogger(writer io.Writer, formatter logrus.Formatter, level logrus.Level) *LogrusLogger {
	if writer == nil {
		writer = os.Stdout
	}
	l := logrus.New()
	l.SetOutput(writer)
	l.SetFormatter(formatter)
	l.SetLevel(level)
	return &LogrusLogger{base: l}
}

// Log はメッセージをログ出力します
func (l *LogrusLogger) Log(level, message string, err error) {
	e := logrus.NewEntry(l.base)
	if err != nil {
		e = e.WithField("error", err.Error())
		if code, ok := model.CodeOf(err); ok {
			e = e.WithField("code", code)
		}
	}
	e.Log(parseLevel(level), message)
}

func parseLevel(level string) logrus.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn, "WARNING":
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
