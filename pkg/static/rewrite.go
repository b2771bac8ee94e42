// Package static serves a directory of files over HTTP with URL rewrites,
// clean URLs, and an automatic sitemap computed by inverting the rewrite
// rules.
package static

import (
	"path"
	"strings"
)

// Rule rewrites a request path matching Source into Destination. A pattern
// is either an exact slash-rooted path or a prefix pattern ending in "/*",
// in which case the matched remainder is substituted into a Destination
// ending in "/*".
type Rule struct {
	Source      string `yaml:"source" json:"source"`
	Destination string `yaml:"destination" json:"destination"`
}

// Reverse returns the rule mapping Destination back to Source.
func (r Rule) Reverse() Rule {
	return Rule{Source: r.Destination, Destination: r.Source}
}

// Apply rewrites p through the rule, reporting whether the rule matched.
func (r Rule) Apply(p string) (string, bool) {
	if prefix, wildcard := strings.CutSuffix(r.Source, "/*"); wildcard {
		rest, ok := strings.CutPrefix(p, prefix+"/")
		if !ok {
			return "", false
		}
		if destPrefix, ok := strings.CutSuffix(r.Destination, "/*"); ok {
			return destPrefix + "/" + rest, true
		}
		return r.Destination, true
	}

	if p == r.Source {
		// An exact source cannot fill a wildcard destination, so a rule
		// like {/index.html -> /app/*} never matches. Such rules arise
		// from inverting a wildcard-to-fixed rule.
		if strings.HasSuffix(r.Destination, "/*") {
			return "", false
		}
		return r.Destination, true
	}
	return "", false
}

// Invert reverses every rule and the list order. Scanning the inverted list
// first-match preserves last-configured-wins precedence when a path matches
// several destination patterns. Inverting twice yields the original rules.
// A wildcard-to-fixed rule has no usable inverse; its reversal is kept to
// preserve the round trip but never matches (see Apply).
func Invert(rules []Rule) []Rule {
	inverted := make([]Rule, len(rules))
	for i, r := range rules {
		inverted[len(rules)-1-i] = r.Reverse()
	}
	return inverted
}

// applyFirst rewrites p through the first matching rule, or returns p
// unchanged when no rule matches.
func applyFirst(rules []Rule, p string) string {
	for _, r := range rules {
		if rewritten, ok := r.Apply(p); ok {
			return rewritten
		}
	}
	return p
}

// cleanURL strips a trailing /index.html or .html suffix, mapping files
// onto their canonical clean URLs.
func cleanURL(p string) string {
	if rest, ok := strings.CutSuffix(p, "/index.html"); ok {
		if rest == "" {
			return "/"
		}
		return rest
	}
	if rest, ok := strings.CutSuffix(p, ".html"); ok && rest != "" {
		return rest
	}
	return p
}

// joinBase joins a base path and a slash-rooted path into one URL path.
func joinBase(base, p string) string {
	if base == "" {
		return p
	}
	return path.Join("/", base, p)
}
