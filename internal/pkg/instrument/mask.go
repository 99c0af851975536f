package instrument

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

const maskedValue = "***"

// MaskKeys is a case-insensitive set of field names whose values are hidden
// in logs. The router reuses it for request and response bodies.
type MaskKeys map[string]struct{}

// NewMaskKeys normalizes fields into a MaskKeys set, skipping blanks.
func NewMaskKeys(fields []string) MaskKeys {
	names := lo.Uniq(lo.Compact(lo.Map(fields, func(f string, _ int) string {
		return strings.ToLower(strings.TrimSpace(f))
	})))

	keys := make(MaskKeys, len(names))
	for _, n := range names {
		keys[n] = struct{}{}
	}
	return keys
}

func (k MaskKeys) has(name string) bool {
	_, ok := k[strings.ToLower(name)]
	return ok
}

// Data returns a copy of v with masked values replaced. Only maps and slices
// decoded from JSON are walked.
func (k MaskKeys) Data(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, inner := range val {
			if k.has(key) {
				out[key] = maskedValue
				continue
			}
			out[key] = k.Data(inner)
		}
		return out
	case []any:
		return lo.Map(val, func(inner any, _ int) any { return k.Data(inner) })
	default:
		return v
	}
}

// JSON masks a JSON document. ok is false when payload is not JSON.
func (k MaskKeys) JSON(payload []byte) (masked string, ok bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	out, err := json.Marshal(k.Data(body))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func (k MaskKeys) attr(attr slog.Attr) slog.Attr {
	if k.has(attr.Key) {
		return slog.String(attr.Key, maskedValue)
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		group := attr.Value.Group()
		attr.Value = slog.GroupValue(lo.Map(group, func(ga slog.Attr, _ int) slog.Attr { return k.attr(ga) })...)
	case slog.KindString:
		if masked, ok := k.JSON([]byte(attr.Value.String())); ok {
			attr.Value = slog.StringValue(masked)
		}
	case slog.KindAny:
		switch v := attr.Value.Any().(type) {
		case map[string]any, []any:
			attr.Value = slog.AnyValue(k.Data(v))
		case map[string]string:
			attr.Value = slog.AnyValue(k.Data(lo.MapValues(v, func(s string, _ string) any { return s })))
		case []byte:
			if masked, ok := k.JSON(v); ok {
				attr.Value = slog.StringValue(masked)
			}
		}
	}

	return attr
}
