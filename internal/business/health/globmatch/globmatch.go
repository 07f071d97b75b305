// Package globmatch implements the space-separated, `*`-wildcard,
// optionally `!`-negated glob lists used by silencer pattern fields
// (spec §6). A pattern list is evaluated term by term, left to right: the
// first term that matches decides the result (a `!`-prefixed term that
// matches means "does not match"); if no term matches, the list's default
// applies. A list made up entirely of negative terms defaults to a match,
// matching original_source's simple_pattern behavior for exclude-only
// lists; a list that contains at least one positive term defaults to no
// match.
package globmatch

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 512

// Cache compiles glob terms to anchored regular expressions and keeps the
// most recently used ones, the way the teacher's RegexCache
// (internal/core/silencing/matcher_cache.go) caches matcher regexes — but
// evicting the single least-recently-used entry instead of clearing the
// whole cache once it fills up.
type Cache struct {
	compiled *lru.Cache[string, *regexp.Regexp]
}

// NewCache returns a Cache bounded to size compiled terms. size<=0 uses a
// sane default.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		// Only returned by lru.New for size<=0, which we've already ruled out.
		panic(err)
	}
	return &Cache{compiled: c}
}

// term is one parsed glob term: its compiled matcher and whether it was
// `!`-negated.
type term struct {
	re       *regexp.Regexp
	negative bool
}

// Match reports whether s matches the space-separated glob list pattern,
// using c to cache compiled terms. An empty or all-whitespace pattern
// always matches (spec §6: an empty field matches everything).
func (c *Cache) Match(pattern, s string) bool {
	fields := strings.Fields(pattern)
	if len(fields) == 0 {
		return true
	}

	allNegative := true
	for _, f := range fields {
		t := c.term(f)
		if !t.negative {
			allNegative = false
		}
		if t.re.MatchString(s) {
			return !t.negative
		}
	}
	return allNegative
}

func (c *Cache) term(field string) term {
	negative := strings.HasPrefix(field, "!")
	glob := strings.TrimPrefix(field, "!")

	if re, ok := c.compiled.Get(glob); ok {
		return term{re: re, negative: negative}
	}

	re := compile(glob)
	c.compiled.Add(glob, re)
	return term{re: re, negative: negative}
}

// compile translates a `*`-wildcard glob into an anchored regular
// expression. Every other character is treated literally.
func compile(glob string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		if r == '*' {
			b.WriteString(".*")
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	b.WriteString("$")
	// The only way this can fail to compile is if QuoteMeta ever produced
	// an unbalanced escape, which it does not; a pattern this package
	// builds itself is always valid.
	return regexp.MustCompile(b.String())
}
