package router

import (
	"fmt"
	"regexp"
)

// varMatcher validates a single captured value. *regexp.Regexp
// satisfies it.
type varMatcher interface {
	MatchString(string) bool
	String() string
}

// boundedMatcher rejects values longer than max before running the regexp.
type boundedMatcher struct {
	re  *regexp.Regexp
	max int
}

func (m boundedMatcher) MatchString(s string) bool {
	return len(s) <= m.max && m.re.MatchString(s)
}

func (m boundedMatcher) String() string {
	return m.re.String()
}

type macro struct {
	name    string
	pattern string
	// max is the longest accepted value in bytes, 0 for no limit.
	max int
}

var macroTable = []macro{
	{name: "uuid", pattern: `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`},
	{name: "int", pattern: `[0-9]+`},
	{name: "float", pattern: `[0-9]*\.?[0-9]+`},
	{name: "slug", pattern: `[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*`},
	{name: "alpha", pattern: `[a-zA-Z]+`},
	{name: "alphanum", pattern: `[a-zA-Z0-9]+`},
	{name: "date", pattern: `[0-9]{4}-[0-9]{2}-[0-9]{2}`},
	{name: "hex", pattern: `[0-9a-fA-F]+`},
	// RFC 1123 host names: labels of 1-63 chars, 253 chars in total.
	{name: "domain", pattern: `(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?`, max: 253},
}

type compiledMacro struct {
	pattern string
	matcher varMatcher
}

var macros = func() map[string]compiledMacro {
	out := make(map[string]compiledMacro, len(macroTable))
	for _, m := range macroTable {
		re, err := anchoredRegexp(m.pattern)
		if err != nil {
			panic(fmt.Sprintf("router: macro %q: %v", m.name, err))
		}

		var matcher varMatcher = re
		if m.max > 0 {
			matcher = boundedMatcher{re: re, max: m.max}
		}

		out[m.name] = compiledMacro{pattern: m.pattern, matcher: matcher}
	}
	return out
}()

// expandMacro resolves a macro name to its pattern and validator. Anything
// else is returned unchanged with a nil validator.
func expandMacro(pattern string) (string, varMatcher) {
	if m, ok := macros[pattern]; ok {
		return m.pattern, m.matcher
	}
	return pattern, nil
}
