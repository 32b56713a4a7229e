package format

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// keywordFields hold identifiers (category ids, contact channels) and are
// written as keywords rather than strings.
var keywordFields = map[string]bool{
	"id":       true,
	"category": true,
	"channel":  true,
}

// instantFields hold RFC 3339 timestamps and are tagged #inst.
var instantFields = map[string]bool{
	"at": true,
}

// WriteEDN writes v as EDN. Values go through JSON first so json tags decide
// field names; camelCase keys become kebab-case keywords, "name" leads each
// map and numbers keep their JSON spelling.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}

	e := ednWriter{pretty: pretty}
	e.value(x, "", 0)
	e.buf.WriteByte('\n')
	_, err = w.Write(e.buf.Bytes())
	return err
}

type ednWriter struct {
	buf    bytes.Buffer
	pretty bool
}

func (e *ednWriter) value(v any, field string, depth int) {
	switch t := v.(type) {
	case nil:
		e.buf.WriteString("nil")
	case bool:
		e.buf.WriteString(strconv.FormatBool(t))
	case json.Number:
		e.buf.WriteString(t.String())
	case string:
		switch {
		case keywordFields[field] && isKeyword(t):
			e.buf.WriteString(":" + t)
		case instantFields[field] && t != "":
			e.buf.WriteString("#inst " + strconv.Quote(t))
		default:
			e.buf.WriteString(strconv.Quote(t))
		}
	case []any:
		e.seq('[', ']', len(t), depth, func(i int) {
			e.value(t[i], field, depth+1)
		})
	case map[string]any:
		keys := mapKeys(t)
		e.seq('{', '}', len(keys), depth, func(i int) {
			e.buf.WriteString(":" + ednKeyword(keys[i]) + " ")
			e.value(t[keys[i]], keys[i], depth+1)
		})
	}
}

func (e *ednWriter) seq(open, close byte, n, depth int, item func(int)) {
	e.buf.WriteByte(open)
	for i := 0; i < n; i++ {
		switch {
		case e.pretty:
			e.buf.WriteString("\n" + strings.Repeat("  ", depth+1))
		case i > 0:
			e.buf.WriteByte(' ')
		}
		item(i)
	}
	if e.pretty && n > 0 {
		e.buf.WriteString("\n" + strings.Repeat("  ", depth))
	}
	e.buf.WriteByte(close)
}

// mapKeys sorts keys with "name" first.
func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == "name") != (keys[j] == "name") {
			return keys[i] == "name"
		}
		return keys[i] < keys[j]
	})
	return keys
}

func isKeyword(s string) bool {
	if s == "" || unicode.IsDigit(rune(s[0])) {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("-_.*+!?$%&=<>", r) {
			return false
		}
	}
	return true
}

func ednKeyword(s string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r == ' ' || r == '_':
			b.WriteByte('-')
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
