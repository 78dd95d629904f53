package logging

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passwatch/internal/domain/model"
)

// logEntry はJSON出力1行分の構造です
type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
}

func TestJSONLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		message   string
		err       error
		wantLevel string
		wantCode  string
	}{
		{
			name:      "エラーなしのログ",
			level:     LevelInfo,
			message:   "テストメッセージ",
			wantLevel: "info",
		},
		{
			name:      "エラーありのログ",
			level:     LevelError,
			message:   "エラーメッセージ",
			err:       errors.New("テストエラー"),
			wantLevel: "error",
		},
		{
			name:      "分類コード付きのエラー",
			level:     LevelWarn,
			message:   "スキップ",
			err:       model.NewError(model.CodeEnumerationSkip, "scan", "/store/x", errors.New("permission denied")),
			wantLevel: "warning",
			wantCode:  string(model.CodeEnumerationSkip),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			logger := NewJSONLogger(&buf)

			logger.Log(tt.level, tt.message, tt.err)

			var got logEntry
			require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &got))

			assert.Equal(t, tt.message, got.Message)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, tt.wantCode, got.Code)
			if tt.err != nil {
				assert.Equal(t, tt.err.Error(), got.Error)
			} else {
				assert.Empty(t, got.Error)
			}

			// タイムスタンプが現在時刻に近いことを確認
			logTime, err := time.Parse(time.RFC3339, got.Timestamp)
			require.NoError(t, err)
			assert.Less(t, time.Since(logTime), time.Minute)
		})
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf strings.Builder
	logger := NewLogger(&buf, &Config{Level: "warn", Format: "json"})

	logger.Log(LevelDebug, "debug", nil)
	logger.Log(LevelInfo, "info", nil)
	logger.Log(LevelWarn, "warn", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"message":"warn"`)
}

func TestNewLogger_Text(t *testing.T) {
	var buf strings.Builder
	logger := NewLogger(&buf, &Config{Format: "text"})

	logger.Log(LevelInfo, "watching", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "msg=watching")
	assert.Contains(t, out, "error=boom")
}

func TestTextLogger(t *testing.T) {
	var buf strings.Builder
	logger := NewTextLogger(&buf)

	logger.Log(LevelDebug, "scanning", nil)
	logger.Log(LevelWarn, "skip", model.NewError(model.CodeEnumerationSkip, "scan", "/store/x", errors.New("denied")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "level=debug")
	assert.Contains(t, lines[0], "msg=scanning")
	assert.Contains(t, lines[1], "level=warning")
	assert.Contains(t, lines[1], "code=ENUMERATION_SKIP")
}

func TestSetLevel(t *testing.T) {
	var buf strings.Builder
	logger := NewTextLogger(&buf)
	logger.SetLevel("error")

	logger.Log(LevelWarn, "quiet", nil)
	assert.Empty(t, buf.String())

	logger.Log(LevelError, "loud", nil)
	assert.Contains(t, buf.String(), "msg=loud")
}
