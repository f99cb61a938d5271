// Package keygen builds cache and lock keys.
//
// Every cache key belongs to a Family. A family is declared once with its
// domain and view, and both concrete keys and eviction patterns are derived
// from that declaration, so a pattern always covers every key of its family.
package keygen

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	separator = ":"
	wildcard  = "*"
)

type Family struct {
	domain string
	view   string
	ttl    time.Duration
}

func NewFamily(domain, view string, ttl time.Duration) Family {
	mustBePlain(domain)
	mustBePlain(view)
	return Family{domain: domain, view: view, ttl: ttl}
}

func (f Family) Name() string       { return f.domain + separator + f.view }
func (f Family) TTL() time.Duration { return f.ttl }

// Key joins parts under the family prefix. Parts must be non-empty and free of
// glob metacharacters; violating that is a programming error and panics.
func (f Family) Key(parts ...string) string {
	if len(parts) == 0 {
		panic(fmt.Sprintf("keygen: %s key needs at least one part", f.Name()))
	}
	for _, p := range parts {
		mustBePlain(p)
	}
	return f.Name() + separator + strings.Join(parts, separator)
}

// Pattern matches every key of the family.
func (f Family) Pattern() string {
	return f.Name() + separator + wildcard
}

// PatternFor narrows the family pattern to keys starting with the given parts.
func (f Family) PatternFor(prefix ...string) string {
	if len(prefix) == 0 {
		return f.Pattern()
	}
	for _, p := range prefix {
		mustBePlain(p)
	}
	return f.Name() + separator + strings.Join(prefix, separator) + separator + wildcard
}

// Matches reports whether key would be removed by an eviction of pattern.
// Glob semantics follow Redis MATCH for the subset of syntax produced here.
func Matches(pattern, key string) bool {
	ok, err := path.Match(pattern, key)
	return err == nil && ok
}

func mustBePlain(s string) {
	if s == "" {
		panic("keygen: empty key segment")
	}
	if strings.ContainsAny(s, `*?[]\/`+separator) {
		panic(fmt.Sprintf("keygen: key segment %q contains reserved characters", s))
	}
}
