// Package cookies reads named values out of a cookie header string or an
// http.CookieJar without ever failing: absence is a boolean, not an error.
package cookies

import (
	"net/http"
	"net/url"
	"strings"
)

// Get returns the value of the last well-formed "name=value" segment in a
// "; "-delimited cookie string. Segments without "=" are skipped. Values
// are percent-decoded; a value that fails to decode is returned raw.
func Get(raw, name string) (string, bool) {
	var value string
	found := false
	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		key, rest, ok := strings.Cut(segment, "=")
		if !ok || key != name {
			continue
		}
		// PathUnescape, not QueryUnescape: cookie values are not form
		// encoded, so a literal "+" must survive.
		if decoded, err := url.PathUnescape(rest); err == nil {
			rest = decoded
		}
		value = rest
		found = true
	}
	return value, found
}

// Store looks up a cookie by name. Implementations must not error; a
// missing cookie is reported through the boolean.
type Store interface {
	Get(name string) (string, bool)
}

// JarStore adapts an http.CookieJar scoped to a single base URL.
type JarStore struct {
	Jar http.CookieJar
	URL *url.URL
}

func (s JarStore) Get(name string) (string, bool) {
	if s.Jar == nil || s.URL == nil {
		return "", false
	}
	var value string
	found := false
	// Last match wins, mirroring Get on a raw cookie string.
	for _, c := range s.Jar.Cookies(s.URL) {
		if c.Name == name {
			value = c.Value
			found = true
		}
	}
	return value, found
}

// MapStore is a fixed in-memory Store for tests.
type MapStore map[string]string

func (s MapStore) Get(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}
