package transcript

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Seconds is a time offset that always encodes with a decimal point (2 -> 2.0).
type Seconds float64

func (s Seconds) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &json.UnsupportedValueError{Str: strconv.FormatFloat(f, 'g', -1, 64)}
	}
	str := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(str, ".e") {
		str += ".0"
	}
	return []byte(str), nil
}

// Encode writes v as a single JSON line using ", " and ": " separators.
// HTML characters are not escaped; non-ASCII text is written as \uXXXX
// escapes (UTF-16 surrogate pairs above U+FFFF), so the line is pure ASCII.
func Encode(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(reformat(buf.Bytes()))
	return err
}

const hexDigits = "0123456789abcdef"

// reformat adds a space after every ',' and ':' outside of strings and
// escapes non-ASCII runes inside strings of compact, valid UTF-8 JSON.
func reformat(compact []byte) []byte {
	out := make([]byte, 0, len(compact)+len(compact)/4)
	inString := false
	escaped := false
	for i := 0; i < len(compact); i++ {
		c := compact[i]
		if inString && c >= utf8.RuneSelf {
			r, size := utf8.DecodeRune(compact[i:])
			if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
				out = appendEscape(out, r1)
				out = appendEscape(out, r2)
			} else {
				out = appendEscape(out, r)
			}
			i += size - 1
			continue
		}
		out = append(out, c)
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case ',', ':':
			out = append(out, ' ')
		}
	}
	return out
}

func appendEscape(out []byte, r rune) []byte {
	return append(out, '\\', 'u',
		hexDigits[r>>12&0xf], hexDigits[r>>8&0xf], hexDigits[r>>4&0xf], hexDigits[r&0xf])
}
