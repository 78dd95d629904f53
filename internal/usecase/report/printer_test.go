package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passwatch/internal/domain/model"
)

func TestPrinter_WriteEntry(t *testing.T) {
	entry := model.NewEntry("/store/work/mail.gpg")

	tests := []struct {
		name   string
		format string
		want   string
	}{
		{
			name:   "テキスト形式",
			format: FormatText,
			want:   "mail\t/store/work/mail.gpg\n",
		},
		{
			name:   "JSON形式",
			format: FormatJSON,
			want:   `{"name":"mail","metadata":"","location":"/store/work/mail.gpg"}` + "\n",
		},
		{
			name:   "未知の形式はテキスト",
			format: "yaml",
			want:   "mail\t/store/work/mail.gpg\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			require.NoError(t, NewPrinter(tt.format).WriteEntry(&buf, entry))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinter_Drain(t *testing.T) {
	entries := make(chan model.Entry, 3)
	entries <- model.NewEntry("/s/a.gpg")
	entries <- model.NewEntry("/s/b.gpg")
	close(entries)

	var buf strings.Builder
	n, err := NewPrinter(FormatText).Drain(context.Background(), &buf, entries)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "a\t/s/a.gpg\nb\t/s/b.gpg\n", buf.String())
}

func TestPrinter_Drain_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := NewPrinter(FormatText).Drain(ctx, &strings.Builder{}, make(chan model.Entry))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestPrinter_Drain_WriteError(t *testing.T) {
	entries := make(chan model.Entry, 1)
	entries <- model.NewEntry("/s/a.gpg")

	_, err := NewPrinter(FormatJSON).Drain(context.Background(), failingWriter{}, entries)
	assert.EqualError(t, err, "broken pipe")
}
