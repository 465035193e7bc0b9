// Package pattern compiles path templates such as "/users/:id" into
// anchored matchers.
//
// A parameter is a ':' followed by word characters. It matches one or more
// word characters ([A-Za-z0-9_]) and nothing else, so parameters never span
// a '/' or punctuation. Every other character of the template is literal.
//
// Two kinds of template that a plain ':(\w*)' scan would accept are
// rejected: a bare ':' with no name (R002) and a name used twice (R003).
// Both leave a parameter that cannot be looked up by name.
//
//	p, _ := pattern.Compile("/users/:id/posts/:slug")
//	values, ok := p.Match("/users/42/posts/hello_world")
//	// ok == true, values == []string{"42", "hello_world"}
//	// p.Params() == []string{"id", "slug"}
package pattern

import (
	"regexp"
	"strings"

	"github.com/vango-dev/navroute/internal/errors"
)

// paramToken finds parameter declarations in a template.
var paramToken = regexp.MustCompile(`:(\w*)`)

// valueRE is the shape of a single parameter value.
var valueRE = regexp.MustCompile(`^\w+$`)

// Pattern is a compiled path template. It is immutable after Compile.
type Pattern struct {
	template string
	re       *regexp.Regexp
	params   []string

	// literals holds the raw text around parameters, used by Build.
	// len(literals) == len(params)+1.
	literals []string
}

// Compile converts a path template into a Pattern.
func Compile(template string) (*Pattern, error) {
	locs := paramToken.FindAllStringSubmatchIndex(template, -1)

	p := &Pattern{
		template: template,
		params:   make([]string, 0, len(locs)),
		literals: make([]string, 0, len(locs)+1),
	}
	seen := make(map[string]struct{}, len(locs))

	var expr strings.Builder
	expr.WriteString("^")

	last := 0
	for _, loc := range locs {
		name := template[loc[2]:loc[3]]
		if name == "" {
			return nil, errors.New("R002").
				WithDetailf("template %q, offset %d", template, loc[0])
		}
		if _, dup := seen[name]; dup {
			return nil, errors.New("R003").
				WithDetailf("template %q declares %q twice", template, name)
		}
		seen[name] = struct{}{}

		literal := template[last:loc[0]]
		p.literals = append(p.literals, literal)
		p.params = append(p.params, name)

		expr.WriteString(regexp.QuoteMeta(literal))
		expr.WriteString(`(\w+)`)
		last = loc[1]
	}

	tail := template[last:]
	p.literals = append(p.literals, tail)
	expr.WriteString(regexp.QuoteMeta(tail))
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, errors.New("R002").WithDetailf("template %q", template).Wrap(err)
	}
	p.re = re
	return p, nil
}

// MustCompile is like Compile but panics if the template is invalid.
func MustCompile(template string) *Pattern {
	p, err := Compile(template)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether path matches the whole pattern and returns the
// captured parameter values in declaration order.
func (p *Pattern) Match(path string) ([]string, bool) {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	return m[1:], true
}

// Build fills the template with values, the reverse of Match.
// Every parameter needs a value made of word characters.
func (p *Pattern) Build(values map[string]string) (string, error) {
	var b strings.Builder
	for i, name := range p.params {
		b.WriteString(p.literals[i])
		v, ok := values[name]
		if !ok || !valueRE.MatchString(v) {
			return "", errors.New("R006").
				WithDetailf("template %q, parameter %q, value %q", p.template, name, v)
		}
		b.WriteString(v)
	}
	b.WriteString(p.literals[len(p.literals)-1])
	return b.String(), nil
}

// Template returns the raw template string.
func (p *Pattern) Template() string { return p.template }

// Params returns the parameter names in declaration order.
func (p *Pattern) Params() []string {
	out := make([]string, len(p.params))
	copy(out, p.params)
	return out
}

// ParamCount returns the number of parameters.
func (p *Pattern) ParamCount() int { return len(p.params) }

// String returns the compiled expression.
func (p *Pattern) String() string { return p.re.String() }
