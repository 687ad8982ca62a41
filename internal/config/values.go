package config

// Values is a decoded configuration file: a map from top-level keys to the
// values yaml.v3 or encoding/json produced for them.
type Values struct {
	data map[string]any
}

// NewValues wraps data, which may be nil.
func NewValues(data map[string]any) Values {
	if data == nil {
		data = make(map[string]any)
	}
	return Values{data: data}
}

// Has reports whether key is present, whatever its type.
func (v Values) Has(key string) bool {
	_, ok := v.data[key]
	return ok
}

// String returns the string at key. ok is false if the key is missing or
// holds something else.
func (v Values) String(key string) (s string, ok bool) {
	s, ok = v.data[key].(string)
	return s, ok
}

// Bool returns the boolean at key.
func (v Values) Bool(key string) (b bool, ok bool) {
	b, ok = v.data[key].(bool)
	return b, ok
}

// Int returns the integer at key. YAML decodes integers as int and JSON as
// float64; a float64 with a fractional part is not an integer.
func (v Values) Int(key string) (int, bool) {
	switch x := v.data[key].(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x == float64(int(x)) {
			return int(x), true
		}
	}
	return 0, false
}
