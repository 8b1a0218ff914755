// Package format renders result sets as JSON, JSON-Lines or Markdown text.
package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"odbc-mcp/internal/odbc"
)

// Mode selects the text encoding of a result set
type Mode string

const (
	JSON     Mode = "json"
	JSONL    Mode = "jsonl"
	Markdown Mode = "md"
)

// Modes lists every supported mode
var Modes = []string{string(JSON), string(JSONL), string(Markdown)}

// NoResults is the Markdown rendering of an empty result set
const NoResults = "No results found."

var ErrUnknownMode = errors.New("unknown output format")

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case JSON, JSONL, Markdown:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (use json, jsonl or md)", ErrUnknownMode, s)
	}
}

// Formatter renders result sets. The zero value renders every falsy
// Markdown cell (nil, false, 0, "") as empty; KeepFalsyCells renders only
// nil as empty.
type Formatter struct {
	KeepFalsyCells bool
}

// Format renders rs in the given mode
func (f Formatter) Format(rs odbc.ResultSet, mode Mode) (string, error) {
	switch mode {
	case JSON:
		return f.json(rs)
	case JSONL:
		return f.jsonl(rs)
	case Markdown:
		return f.markdown(rs), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func (f Formatter) json(rs odbc.ResultSet) (string, error) {
	if len(rs) == 0 {
		return "[]", nil
	}

	var compact bytes.Buffer
	compact.WriteByte('[')
	for i, r := range rs {
		if i > 0 {
			compact.WriteByte(',')
		}
		if err := encodeRecord(&compact, r); err != nil {
			return "", err
		}
	}
	compact.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (f Formatter) jsonl(rs odbc.ResultSet) (string, error) {
	var out bytes.Buffer
	for i, r := range rs {
		if i > 0 {
			out.WriteByte('\n')
		}
		if err := encodeRecord(&out, r); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

// encodeRecord writes r as a compact JSON object in column order. HTML
// characters are written literally.
func encodeRecord(buf *bytes.Buffer, r *odbc.Record) error {
	buf.WriteByte('{')
	for pair := r.Oldest(); pair != nil; pair = pair.Next() {
		if pair != r.Oldest() {
			buf.WriteByte(',')
		}
		if err := encodeValue(buf, pair.Key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeValue(buf, pair.Value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

func (f Formatter) markdown(rs odbc.ResultSet) string {
	if len(rs) == 0 {
		return NoResults
	}

	keys := odbc.Keys(rs[0])
	separators := make([]string, len(keys))
	for i := range separators {
		separators[i] = "---"
	}

	lines := make([]string, 0, len(rs)+2)
	lines = append(lines, markdownRow(keys), markdownRow(separators))
	for _, r := range rs {
		cells := make([]string, len(keys))
		for i, key := range keys {
			v, _ := r.Get(key)
			cells[i] = f.cell(v)
		}
		lines = append(lines, markdownRow(cells))
	}
	return strings.Join(lines, "\n")
}

func markdownRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

func (f Formatter) cell(v any) string {
	if v == nil || (!f.KeepFalsyCells && isFalsy(v)) {
		return ""
	}
	return cast.ToString(v)
}

// isFalsy reports whether v is false, a numeric zero, NaN or an empty string
func isFalsy(v any) bool {
	switch t := v.(type) {
	case bool:
		return !t
	case string:
		return t == ""
	case float64:
		return t == 0 || math.IsNaN(t)
	case float32:
		return t == 0 || math.IsNaN(float64(t))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToInt64(t) == 0
	default:
		return false
	}
}
