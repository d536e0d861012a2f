// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package routes decides which request paths require a live session.

The public set is a table of [Rule] values rather than branching code, so a
new public page is one more entry in [DefaultPublic].

Rule kinds:

  - Exact: the path must match byte for byte ("/").
  - Slashed: exact, with an optional trailing slash ("/login", "/login/").
  - Template: "{name}" segments match one [\w-]+ segment, "{name:a|b}"
    segments match one of the listed literals; trailing slash optional.
*/
package routes

import (
	"regexp"
	"strings"
)

// Rule matches request paths against one public-route pattern.
type Rule struct {
	Name    string
	pattern *regexp.Regexp
}

// Match reports whether path satisfies the rule.
func (rule Rule) Match(path string) bool {
	return rule.pattern.MatchString(path)
}

// Exact builds a rule matching path only.
func Exact(name, path string) Rule {
	return Rule{Name: name, pattern: regexp.MustCompile("^" + regexp.QuoteMeta(path) + "$")}
}

// Slashed builds a rule matching path with or without a trailing slash.
func Slashed(name, path string) Rule {
	trimmed := strings.TrimSuffix(path, "/")
	return Rule{Name: name, pattern: regexp.MustCompile("^" + regexp.QuoteMeta(trimmed) + "/?$")}
}

// Template builds a rule from a segment template such as
// "/pal_request/{requester}/{requestee}/{outcome:success|cancel}".
//
// It panics on a malformed template; rules are built at startup.
func Template(name, template string) Rule {
	segments := strings.Split(strings.Trim(template, "/"), "/")
	parts := make([]string, 0, len(segments))

	for _, segment := range segments {
		parts = append(parts, segmentPattern(segment))
	}

	expression := "^/" + strings.Join(parts, "/") + "/?$"
	return Rule{Name: name, pattern: regexp.MustCompile(expression)}
}

// segmentPattern translates one template segment into a regular expression.
func segmentPattern(segment string) string {
	if !strings.HasPrefix(segment, "{") || !strings.HasSuffix(segment, "}") {
		return regexp.QuoteMeta(segment)
	}

	inner := segment[1 : len(segment)-1]
	_, choices, hasChoices := strings.Cut(inner, ":")
	if !hasChoices {
		return `[\w-]+`
	}

	alternatives := strings.Split(choices, "|")
	for i, alternative := range alternatives {
		alternatives[i] = regexp.QuoteMeta(alternative)
	}
	return "(?:" + strings.Join(alternatives, "|") + ")"
}

// DefaultPublic is the ordered set of routes reachable without a session.
var DefaultPublic = []Rule{
	Exact("home", "/"),
	Slashed("login", "/login"),
	Slashed("signup", "/signup"),
	Template("pal_request_outcome", "/pal_request/{requester}/{requestee}/{outcome:success|cancel}"),
	Slashed("create_verification_session", "/create-verification-session"),
	Slashed("webhook", "/webhook"),
}

// Classifier evaluates paths against a fixed rule table.
type Classifier struct {
	public []Rule
}

// NewClassifier builds a classifier. With no rules it uses [DefaultPublic].
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultPublic
	}
	return &Classifier{public: rules}
}

// Match returns the first public rule matching path.
func (classifier *Classifier) Match(path string) (Rule, bool) {
	for _, rule := range classifier.public {
		if rule.Match(path) {
			return rule, true
		}
	}
	return Rule{}, false
}

// IsProtected reports whether path requires a live session.
func (classifier *Classifier) IsProtected(path string) bool {
	_, public := classifier.Match(path)
	return !public
}
