// Package format renders CLI command output.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
)

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - jsonl (one value per line for slices)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "jsonl":
		return WriteJSONLines(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
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

// WriteJSONLines writes one compact JSON value per line. The single-key
// {"data": ...} envelope the commands emit is unwrapped first; a slice then
// yields one line per element, anything else degrades to a single line.
func WriteJSONLines(w io.Writer, v any) error {
	if env, ok := v.(map[string]any); ok && len(env) == 1 {
		if inner, ok := env["data"]; ok {
			v = inner
		}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return WriteJSON(w, v, false)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := WriteJSON(w, rv.Index(i).Interface(), false); err != nil {
			return err
		}
	}
	return nil
}

// Hours renders an hours value the way the grid shows it: no trailing zeros,
// blank for zero.
func Hours(h float64) string {
	if h == 0 {
		return ""
	}
	return strconv.FormatFloat(h, 'f', -1, 64)
}
