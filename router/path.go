package router

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

const (
	segmentPattern  = "[^/]+"
	wildcardPattern = ".+"
)

var varName = regexp.MustCompile(`^\w+$`)

// captureRegexps holds whole-value validators keyed by capture pattern.
// Routes with the same capture pattern share one compiled expression.
var captureRegexps sync.Map

// anchoredRegexp compiles patt so that it must match an entire value.
func anchoredRegexp(patt string) (*regexp.Regexp, error) {
	if v, ok := captureRegexps.Load(patt); ok {
		return v.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile("^(?:" + patt + ")$")
	if err != nil {
		return nil, err
	}

	actual, _ := captureRegexps.LoadOrStore(patt, re)

	return actual.(*regexp.Regexp), nil
}

// Standardize returns p with a single leading slash, repeated slashes
// collapsed and the trailing slash removed. The root path is "/".
// Dot segments are kept as is.
func Standardize(p string) string {
	var b strings.Builder
	b.Grow(len(p) + 1)

	for seg := range strings.SplitSeq(p, "/") {
		if seg == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(seg)
	}

	if b.Len() == 0 {
		return "/"
	}

	return b.String()
}

// Join joins parts with "/" and standardizes the result.
func Join(parts ...string) string {
	return Standardize(strings.Join(parts, "/"))
}

// Segment is one piece of a parsed template, either a Literal or a
// Capture.
type Segment interface {
	segment()
}

// Literal matches its text byte for byte.
type Literal struct {
	Text string
}

// Capture binds the matched substring to Name. Pattern is the regular
// expression the value must satisfy. A Wildcard capture may span slashes.
type Capture struct {
	Name     string
	Pattern  string
	Wildcard bool

	validator varMatcher
}

func (Literal) segment() {}
func (Capture) segment() {}

// Pattern is a parsed route template.
type Pattern struct {
	template string
	segments []Segment
	vars     []string

	// Only set for patterns with captures.
	regexp     *regexp.Regexp
	groups     []int
	validators []varMatcher
}

// ParsePattern parses a route template.
//
// Captures are written as a whole segment ":name", inline as "{name}" or
// "{name:pattern}", or as a wildcard "*{name}" that may span slashes.
// pattern is a regular expression or one of the macros uuid, int, float,
// slug, alpha, alphanum, date, hex and domain.
func ParsePattern(tpl string) (*Pattern, error) {
	template := Standardize(tpl)

	segments, err := parseSegments(template)
	if err != nil {
		return nil, err
	}

	p := &Pattern{template: template, segments: segments}

	var expr strings.Builder
	expr.WriteByte('^')

	for _, seg := range segments {
		switch s := seg.(type) {
		case Literal:
			expr.WriteString(regexp.QuoteMeta(s.Text))
		case Capture:
			for _, name := range p.vars {
				if name == s.Name {
					return nil, pathError(template, ErrDuplicateVariable, "%q", s.Name)
				}
			}
			fmt.Fprintf(&expr, "(?P<v%d>%s)", len(p.vars), s.Pattern)
			p.vars = append(p.vars, s.Name)
			p.validators = append(p.validators, s.validator)
		}
	}

	if len(p.vars) == 0 {
		return p, nil
	}

	expr.WriteByte('$')

	p.regexp, err = regexp.Compile(expr.String())
	if err != nil {
		return nil, pathError(template, ErrInvalidPattern, "%v", err)
	}

	p.groups = make([]int, len(p.vars))
	for i := range p.vars {
		p.groups[i] = p.regexp.SubexpIndex(fmt.Sprintf("v%d", i))
	}

	return p, nil
}

// parseSegments splits a standardized template into literals and
// captures.
func parseSegments(tpl string) ([]Segment, error) {
	var (
		segments []Segment
		literal  strings.Builder
	)

	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, Literal{Text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(tpl); {
		c := tpl[i]

		switch {
		case c == '{' || (c == '*' && i+1 < len(tpl) && tpl[i+1] == '{'):
			wildcard := c == '*'
			open := i
			if wildcard {
				open++
			}

			end, err := closingBrace(tpl, open)
			if err != nil {
				return nil, err
			}

			name, patt, hasPattern := strings.Cut(tpl[open+1:end], ":")
			capture, err := newCapture(tpl, name, patt, hasPattern, wildcard)
			if err != nil {
				return nil, err
			}

			flush()
			segments = append(segments, capture)
			i = end + 1

		case c == ':' && tpl[i-1] == '/':
			end := strings.IndexByte(tpl[i:], '/')
			if end < 0 {
				end = len(tpl)
			} else {
				end += i
			}

			capture, err := newCapture(tpl, tpl[i+1:end], "", false, false)
			if err != nil {
				return nil, err
			}

			flush()
			segments = append(segments, capture)
			i = end

		case c == '}':
			return nil, pathError(tpl, ErrUnbalancedBraces, "unexpected '}' at %d", i)

		default:
			literal.WriteByte(c)
			i++
		}
	}

	flush()

	return segments, nil
}

// closingBrace returns the index of the '}' matching the '{' at open.
func closingBrace(tpl string, open int) (int, error) {
	level := 0
	for i := open; i < len(tpl); i++ {
		switch tpl[i] {
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return i, nil
			}
		}
	}
	return 0, pathError(tpl, ErrUnbalancedBraces, "'{' at %d is never closed", open)
}

func newCapture(tpl, name, patt string, hasPattern, wildcard bool) (Capture, error) {
	if name == "" {
		return Capture{}, pathError(tpl, ErrEmptyVariable, "")
	}
	if !varName.MatchString(name) {
		return Capture{}, pathError(tpl, ErrInvalidVariable, "%q", name)
	}

	var validator varMatcher
	switch {
	case hasPattern && patt == "":
		return Capture{}, pathError(tpl, ErrInvalidPattern, "empty pattern for %q", name)
	case hasPattern:
		patt, validator = expandMacro(patt)
	case wildcard:
		patt = wildcardPattern
	default:
		patt = segmentPattern
	}

	if validator == nil {
		re, err := anchoredRegexp(patt)
		if err != nil {
			return Capture{}, pathError(tpl, ErrInvalidPattern, "variable %q: %v", name, err)
		}
		validator = re
	}

	return Capture{Name: name, Pattern: patt, Wildcard: wildcard, validator: validator}, nil
}

// Template returns the standardized template.
func (p *Pattern) Template() string {
	return p.template
}

// Segments returns the parsed segments in order.
func (p *Pattern) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Vars returns the capture names in order.
func (p *Pattern) Vars() []string {
	return append([]string(nil), p.vars...)
}

// Static reports whether the pattern has no captures.
func (p *Pattern) Static() bool {
	return len(p.vars) == 0
}

// Match reports whether path matches and returns the captured values by
// name. Literals match case-sensitively and every capture must be
// non-empty and satisfy its validator.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	values, ok := p.capture(path)
	if !ok {
		return nil, false
	}

	vars := make(map[string]string, len(values))
	for i, name := range p.vars {
		vars[name] = values[i]
	}

	return vars, true
}

func (p *Pattern) capture(path string) ([]string, bool) {
	if p.regexp == nil {
		return nil, path == p.template
	}

	m := p.regexp.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	values := make([]string, len(p.vars))
	for i, g := range p.groups {
		v := m[g]
		if v == "" || !p.validators[i].MatchString(v) {
			return nil, false
		}
		values[i] = v
	}

	return values, true
}

func (p *Pattern) String() string {
	return p.template
}
