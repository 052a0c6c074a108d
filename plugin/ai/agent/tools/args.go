package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hrygo/eidos/internal/errors"
)

// Args are the decoded arguments of one tool call. Models are loose with
// types, so numeric values may arrive as strings and the other way round.
type Args map[string]any

// ParseArgs decodes raw tool-call arguments. Malformed or non-object JSON
// yields empty Args.
func ParseArgs(raw string) Args {
	args := Args{}
	if strings.TrimSpace(raw) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return Args{}
	}
	return args
}

// Has reports whether key is present and not null.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns the value as text. Numbers and booleans are formatted.
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the value as a number. Missing keys yield zero.
func (a Args) Float(key string) (float64, error) {
	switch v := a[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			return 0, errors.Validation("%s must be a number", key)
		}
		return f, nil
	default:
		return 0, errors.Validation("%s must be a number", key)
	}
}

// Int32 returns the value as an integer. Fractions are rejected.
func (a Args) Int32(key string) (int32, error) {
	f, err := a.Float(key)
	if err != nil {
		return 0, errors.Validation("%s must be an integer", key)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errors.Validation("%s must be an integer", key)
	}
	return int32(f), nil
}

// OptionalInt32 returns nil when key is absent.
func (a Args) OptionalInt32(key string) (*int32, error) {
	if !a.Has(key) || a.String(key) == "" {
		return nil, nil
	}
	v, err := a.Int32(key)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Bool accepts JSON booleans and their common string spellings.
func (a Args) Bool(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case float64:
		return v != 0
	default:
		return false
	}
}
