package tools

import "strconv"

// argv renders compiled arguments as pcli2 flags, in Param order.
func (t *Tool) argv(args map[string]any) []string {
	out := t.command(args)
	for _, p := range t.Params {
		if p.Flag == "" {
			continue
		}
		value, ok := args[p.Name]
		if !ok && p.Alias != "" {
			value, ok = args[p.Alias]
		}
		if !ok {
			continue
		}
		switch v := value.(type) {
		case bool:
			if v {
				out = append(out, p.Flag)
			}
		case string:
			out = append(out, p.Flag, v)
		case float64:
			out = append(out, p.Flag, formatNumber(v))
		case int64:
			out = append(out, p.Flag, strconv.FormatInt(v, 10))
		case []string:
			for _, item := range v {
				out = append(out, p.Flag, item)
			}
		}
	}
	return out
}

// formatNumber prints whole numbers without a fractional part.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
