package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Texter is implemented by payloads that have a human-readable rendering
// for --format text.
type Texter interface {
	Text() string
}

// Formats lists the accepted --format values.
var Formats = []string{"json", "edn", "text"}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - edn
// - text (payloads implementing Texter; anything else falls back to pretty JSON)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	case "text":
		return WriteText(w, v)
	default:
		return fmt.Errorf("unknown format: %s (want %s)", format, strings.Join(Formats, "|"))
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteText renders v (or the "data" member of an envelope) as text.
func WriteText(w io.Writer, v any) error {
	if env, ok := v.(map[string]any); ok {
		if d, ok := env["data"]; ok {
			v = d
		}
	}
	switch t := v.(type) {
	case Texter:
		s := t.Text()
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		_, err := io.WriteString(w, s)
		return err
	case string:
		_, err := fmt.Fprintln(w, t)
		return err
	default:
		return WriteJSON(w, v, true)
	}
}
