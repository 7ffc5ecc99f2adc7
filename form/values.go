package form

import (
	"net/url"
	"strings"
)

// Values is an ordered name->value mapping. Overwriting a name keeps its
// original position, matching how forms are serialised by a browser.
type Values struct {
	names  []string
	values map[string]string
}

// NewValues returns an empty Values.
func NewValues() *Values {
	return &Values{values: make(map[string]string)}
}

// Set stores value under name.
func (v *Values) Set(name, value string) {
	if _, ok := v.values[name]; !ok {
		v.names = append(v.names, name)
	}
	v.values[name] = value
}

func (v *Values) Get(name string) (string, bool) {
	val, ok := v.values[name]
	return val, ok
}

func (v *Values) Has(name string) bool {
	_, ok := v.values[name]
	return ok
}

func (v *Values) Len() int { return len(v.names) }

// Keys returns the names in insertion order.
func (v *Values) Keys() []string {
	return append([]string(nil), v.names...)
}

// Clone returns an independent copy.
func (v *Values) Clone() *Values {
	out := &Values{
		names:  append([]string(nil), v.names...),
		values: make(map[string]string, len(v.values)),
	}
	for k, val := range v.values {
		out.values[k] = val
	}
	return out
}

// Merge applies every entry of other on top of v.
func (v *Values) Merge(other *Values) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		v.Set(name, other.values[name])
	}
}

// Encode serialises the values as application/x-www-form-urlencoded in
// insertion order.
func (v *Values) Encode() string {
	var b strings.Builder
	for i, name := range v.names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v.values[name]))
	}
	return b.String()
}

// Map returns a plain copy, useful for logging.
func (v *Values) Map() map[string]string {
	out := make(map[string]string, len(v.values))
	for k, val := range v.values {
		out[k] = val
	}
	return out
}
