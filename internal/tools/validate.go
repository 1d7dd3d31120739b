package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// argError is a validation failure. It matches mcp.ErrInvalidParams but
// its text is only the message callers see.
type argError struct {
	msg string
}

func (e *argError) Error() string { return e.msg }

func (e *argError) Is(target error) bool { return target == mcp.ErrInvalidParams }

func invalidArgs(format string, args ...any) error {
	return &argError{msg: fmt.Sprintf(format, args...)}
}

// compileArgs coerces known arguments to their declared kinds and checks
// ranges, identifier groups and required keys, in that order. Unknown
// arguments are dropped.
func (t *Tool) compileArgs(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for _, p := range t.Params {
		value, ok := raw[p.Name]
		if !ok || value == nil {
			continue
		}
		coerced, err := coerceParam(p, value)
		if err != nil {
			return nil, err
		}
		out[p.Name] = coerced
	}

	for _, p := range t.Params {
		if p.Range == nil {
			continue
		}
		if err := checkRange(p, out[p.Name]); err != nil {
			return nil, err
		}
	}

	for _, group := range t.AnyOf {
		if !anySet(out, group) {
			return nil, invalidArgs("Missing required argument: provide either %s", quoteJoin(group))
		}
	}

	for _, name := range t.Required {
		if !isSet(out[name]) {
			return nil, invalidArgs("Missing required argument: '%s'", name)
		}
	}
	return out, nil
}

func coerceParam(p Param, value any) (any, error) {
	switch p.Kind {
	case KindString:
		s, ok := value.(string)
		if !ok {
			return nil, invalidParamsType(p.Name, "string", value)
		}
		return s, nil
	case KindBool:
		return coerceBoolean(value, p.Name)
	case KindNumber:
		return coerceNumber(value, p.Name)
	case KindInteger:
		return coerceInteger(value, p.Name)
	case KindStringList:
		return coerceStringList(value, p)
	default:
		return value, nil
	}
}

func coerceInteger(value any, name string) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if math.Trunc(v) != v {
			return 0, invalidArgs("Invalid argument '%s': must be an integer", name)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, invalidArgs("Invalid argument '%s': value %s is out of range", name, formatNumber(v))
		}
		return int64(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, invalidArgs("Invalid argument '%s': must be an integer: %v", name, err)
		}
		return i, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, invalidArgs("Invalid argument '%s': must be an integer: %v", name, err)
		}
		return i, nil
	default:
		return 0, invalidParamsType(name, "integer", value)
	}
}

func coerceNumber(value any, name string) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, invalidArgs("Invalid argument '%s': must be a number: %v", name, err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, invalidArgs("Invalid argument '%s': must be a number: %v", name, err)
		}
		return f, nil
	default:
		return 0, invalidParamsType(name, "number", value)
	}
}

func coerceBoolean(value any, name string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, invalidArgs("Invalid argument '%s': must be a boolean: %v", name, err)
		}
		return b, nil
	default:
		return false, invalidParamsType(name, "boolean", value)
	}
}

// coerceStringList accepts a string or an array; non-string items are skipped.
func coerceStringList(value any, p Param) ([]string, error) {
	var items []string
	switch v := value.(type) {
	case string:
		items = []string{v}
	case []string:
		items = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	default:
		return nil, invalidParamsType(p.Name, "string or array of strings", value)
	}
	if !p.Split {
		return items, nil
	}
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out, nil
}

func checkRange(p Param, value any) error {
	var v float64
	switch n := value.(type) {
	case float64:
		v = n
	case int64:
		v = float64(n)
	default:
		return nil
	}
	if v < p.Range.Min || v > p.Range.Max {
		return invalidArgs("Invalid argument '%s': value %s must be between %s and %s",
			p.Name, formatNumber(v), formatNumber(p.Range.Min), formatNumber(p.Range.Max))
	}
	return nil
}

func isSet(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case []string:
		return len(v) > 0
	default:
		return true
	}
}

func anySet(args map[string]any, names []string) bool {
	for _, name := range names {
		if isSet(args[name]) {
			return true
		}
	}
	return false
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, " or ")
}

func invalidParamsType(name, want string, got any) error {
	return invalidArgs("Invalid argument '%s': must be %s, got %T", name, want, got)
}
