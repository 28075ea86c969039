package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Param is a single key/value pair. Value should be a scalar.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered parameter list. Order is preserved in query strings,
// form bodies and JSON objects.
type Params []Param

// Add returns p with key=value appended.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// ParamsFromMap converts m into Params sorted by key.
func ParamsFromMap(m map[string]any) Params {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Params, 0, len(keys))
	for _, k := range keys {
		out = append(out, Param{Key: k, Value: m[k]})
	}
	return out
}

// Encode renders p as percent-encoded key=value pairs joined by '&'.
// An empty list encodes to "".
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EscapeComponent(kv.Key))
		b.WriteByte('=')
		b.WriteString(EscapeComponent(stringValue(kv.Value)))
	}
	return b.String()
}

// MarshalJSON encodes p as a JSON object with keys in list order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalJSON(kv.Key)
		if err != nil {
			return nil, err
		}
		val, err := marshalJSON(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", kv.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var componentUnescaper = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EscapeComponent percent-encodes s the way browsers encode a URI component:
// spaces become %20 and only A-Z a-z 0-9 - _ . ! ~ * ' ( ) stay literal.
func EscapeComponent(s string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	return componentUnescaper.Replace(escaped)
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(val, ",")
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// formParams flattens the accepted form body shapes into Params.
func formParams(data any) (Params, error) {
	switch d := data.(type) {
	case nil:
		return nil, nil
	case Params:
		return d, nil
	case map[string]any:
		return ParamsFromMap(d), nil
	case map[string]string:
		m := make(map[string]any, len(d))
		for k, v := range d {
			m[k] = v
		}
		return ParamsFromMap(m), nil
	case url.Values:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out Params
		for _, k := range keys {
			for _, v := range d[k] {
				out = out.Add(k, v)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: form encoding does not accept %T", ErrUnsupportedBody, data)
	}
}

// marshalJSON is json.Marshal without HTML escaping.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
