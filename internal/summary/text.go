package summary

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// sentinels are the strings the summarization service uses to mark a field it
// deliberately left empty. Matched case-insensitively after trimming.
var sentinels = map[string]struct{}{
	"null":      {},
	"na":        {},
	"n/a":       {},
	"none":      {},
	"nil":       {},
	"undefined": {},
	"-":         {},
}

// Text is a scalar payload value. Strings, numbers, booleans and null all decode
// into it; arrays of scalars are joined; objects decode to empty.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = Text(scalarString(v))
	return nil
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := scalarString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return ""
	default:
		return cast.ToString(x)
	}
}

// Present reports whether t carries a real value: non-blank and not a sentinel.
func (t Text) Present() bool {
	s := strings.TrimSpace(string(t))
	if s == "" {
		return false
	}
	_, sentinel := sentinels[strings.ToLower(s)]
	return !sentinel
}

func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// Flag is a boolean payload value that also accepts "true"/"false" strings and 0/1.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Flag(cast.ToBool(v))
	return nil
}

func isJSONString(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '"'
}

// presentString returns t trimmed, or "" when it is not present.
func presentString(t Text) string {
	if !t.Present() {
		return ""
	}
	return t.String()
}

// presentStrings keeps the present values of list, trimmed.
func presentStrings(list []Text) []string {
	var out []string
	for _, t := range list {
		if t.Present() {
			out = append(out, t.String())
		}
	}
	return out
}
