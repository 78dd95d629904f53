// Package report は受信したエントリを消費者向けに出力します
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"passwatch/internal/domain/model"
)

// 出力形式
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Printer はエントリを1行ずつ書き出します
type Printer struct {
	format string
}

// NewPrinter は新しい Printer インスタンスを作成します。未知の形式は text として扱います
func NewPrinter(format string) *Printer {
	if strings.EqualFold(format, FormatJSON) {
		return &Printer{format: FormatJSON}
	}
	return &Printer{format: FormatText}
}

// WriteEntry は一つのエントリを書き出します。
// text 形式は「名前<TAB>パス」、json 形式は1行1オブジェクトです
func (p *Printer) WriteEntry(w io.Writer, entry model.Entry) error {
	if p.format == FormatJSON {
		b, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("エントリのエンコードに失敗しました: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	_, err := fmt.Fprintf(w, "%s\t%s\n", entry.Name, entry.Location)
	return err
}

// Drain は entries が閉じられるか ctx が終了するまでエントリを書き出し、件数を返します
func (p *Printer) Drain(ctx context.Context, w io.Writer, entries <-chan model.Entry) (int, error) {
	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case entry, ok := <-entries:
			if !ok {
				return n, nil
			}
			if err := p.WriteEntry(w, entry); err != nil {
				return n, err
			}
			n++
		}
	}
}
