package codelearn

import (
	"fmt"
	"net/url"
	"strings"
)

// QueryKey addresses one cached server-state result, e.g. ["courses", "42"].
type QueryKey []string

// Key builds a QueryKey, formatting each part with fmt.
func Key(parts ...any) QueryKey {
	key := make(QueryKey, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case string:
			key[i] = v
		case fmt.Stringer:
			key[i] = v.String()
		default:
			key[i] = fmt.Sprint(v)
		}
	}
	return key
}

// String returns the canonical form: every segment escaped and terminated by
// '/'. Two keys share a cache entry exactly when their canonical forms are
// equal.
func (k QueryKey) String() string {
	var b strings.Builder
	for _, s := range k {
		b.WriteString(url.PathEscape(s))
		b.WriteByte('/')
	}
	return b.String()
}

// Equal reports segment-wise equality.
func (k QueryKey) Equal(other QueryKey) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix matches the leading segments of k.
func (k QueryKey) HasPrefix(prefix QueryKey) bool {
	if len(prefix) > len(k) {
		return false
	}
	return k[:len(prefix)].Equal(prefix)
}

// ParseQueryKey reverses String.
func ParseQueryKey(s string) (QueryKey, error) {
	if s == "" {
		return QueryKey{}, nil
	}
	if !strings.HasSuffix(s, "/") {
		return nil, fmt.Errorf("parse query key %q: missing terminator", s)
	}
	parts := strings.Split(s[:len(s)-1], "/")
	key := make(QueryKey, len(parts))
	for i, p := range parts {
		seg, err := url.PathUnescape(p)
		if err != nil {
			return nil, fmt.Errorf("parse query key segment %q: %w", p, err)
		}
		key[i] = seg
	}
	return key, nil
}
