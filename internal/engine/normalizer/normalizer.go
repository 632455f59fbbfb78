// Package normalizer prepares raw description text for vectorization.
package normalizer

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lowercases v's string form, strips ASCII punctuation and
// collapses whitespace runs into single spaces with no leading or trailing
// space. It is pure and never panics; nil and blank input yield "".
func Normalize(v any) string {
	s := Text(v)
	if s == "" {
		return ""
	}

	// cases.Caser is stateful; a fresh one per call keeps Normalize safe for
	// concurrent use.
	s = cases.Lower(language.Und).String(s)

	s = strings.Map(func(r rune) rune {
		if isASCIIPunct(r) {
			return -1
		}
		return r
	}, s)

	// Punctuation goes first so that "a , b" cannot leave a double space.
	return strings.Join(strings.Fields(s), " ")
}

// Text coerces an arbitrary cell value into its string form. Spreadsheet
// and JSON inputs hand us numbers and booleans as often as strings.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// isASCIIPunct matches the 32 printable ASCII punctuation characters.
func isASCIIPunct(r rune) bool {
	switch {
	case r >= '!' && r <= '/':
		return true
	case r >= ':' && r <= '@':
		return true
	case r >= '[' && r <= '`':
		return true
	case r >= '{' && r <= '~':
		return true
	}
	return false
}
