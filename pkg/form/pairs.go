package form

import (
	"net/url"
	"slices"
	"strings"
)

// Pair is one encoded (key, value) form field.
type Pair struct {
	Key   string
	Value string
}

// Pairs is an ordered list of form fields.
type Pairs []Pair

// Encode renders the pairs as application/x-www-form-urlencoded text, keeping their order.
func (p Pairs) Encode() string {
	var builder strings.Builder

	for index, pair := range p {
		if index > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(url.QueryEscape(pair.Key))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(pair.Value))
	}

	return builder.String()
}

// Get returns the value of the first pair with the given key.
func (p Pairs) Get(key string) (string, bool) {
	for _, pair := range p {
		if pair.Key == key {
			return pair.Value, true
		}
	}

	return "", false
}

// Without returns a copy of p with every pair whose key is listed removed.
func (p Pairs) Without(keys ...string) Pairs {
	out := make(Pairs, 0, len(p))

	for _, pair := range p {
		if slices.Contains(keys, pair.Key) {
			continue
		}

		out = append(out, pair)
	}

	return out
}

// With returns a copy of p with the pair appended.
func (p Pairs) With(key, value string) Pairs {
	out := make(Pairs, len(p), len(p)+1)
	copy(out, p)

	return append(out, Pair{Key: key, Value: value})
}
