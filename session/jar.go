package session

import "strings"

// Jar is a per-flow cookie store keyed by cookie name. Names keep the
// position of their first insertion so the Cookie header is stable across hops.
type Jar struct {
	names  []string
	values map[string]string
}

// NewJar returns an empty jar.
func NewJar() *Jar {
	return &Jar{values: make(map[string]string)}
}

// Set stores a cookie value, overwriting any previous value for name.
func (j *Jar) Set(name, value string) {
	if _, ok := j.values[name]; !ok {
		j.names = append(j.names, name)
	}
	j.values[name] = value
}

// Get returns the value stored for name.
func (j *Jar) Get(name string) (string, bool) {
	v, ok := j.values[name]
	return v, ok
}

// Len returns the number of cookies held.
func (j *Jar) Len() int { return len(j.names) }

// Merge parses raw Set-Cookie header values and stores each name=value pair.
// Attributes after the first ';' are ignored; later headers win on collision.
func (j *Jar) Merge(setCookie []string) {
	for _, header := range setCookie {
		name, value, ok := parseSetCookie(header)
		if !ok {
			continue
		}
		j.Set(name, value)
	}
}

// Header renders the jar as a Cookie request header value.
func (j *Jar) Header() string {
	pairs := make([]string, 0, len(j.names))
	for _, name := range j.names {
		pairs = append(pairs, name+"="+j.values[name])
	}
	return strings.Join(pairs, "; ")
}

func parseSetCookie(header string) (name, value string, ok bool) {
	nameValue, _, _ := strings.Cut(header, ";")
	idx := strings.Index(nameValue, "=")
	if idx <= 0 {
		return "", "", false
	}
	name = strings.TrimSpace(nameValue[:idx])
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(nameValue[idx+1:]), true
}
