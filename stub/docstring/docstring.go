// Package docstring parses the signature docstrings Boost.Python attaches to
// native-bound callables.
//
// Every non-empty, non-indented line is one overload:
//
//	<name> '(' <arglist> ')' '->' <return-type> [':']
//	<arglist>   := { '[' | ']' | ',' | <typed-arg> }
//	<typed-arg> := '(' <native-type> ')' <identifier>
//
// Parameters following the first '[' are optional. Boost.Python nests one
// bracket group per optional parameter; a single group holding all of them is
// accepted too. The docstring never encodes real default values, so optional
// parameters are only flagged here.
package docstring

import (
	"fmt"
	"strings"
)

// Param is one typed parameter of an overload.
type Param struct {
	NativeType string
	Name       string
	Optional   bool
}

// Overload is one parsed signature line. Doc holds the indented prose that
// follows the line, when Boost.Python was built with user docstrings.
type Overload struct {
	Name   string
	Params []Param
	Return string
	Doc    string
}

// SyntaxError reports a signature line that does not match the grammar.
type SyntaxError struct {
	Line   string
	LineNo int
	Col    int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s: %q", e.LineNo, e.Col, e.Msg, e.Line)
}

// Parse returns every overload parseable from doc, in line order, plus one
// *SyntaxError for each line that had to be skipped.
func Parse(doc string) ([]Overload, []error) {
	var overloads []Overload
	var errs []error
	var prose []string
	inSignatureBlock := false
	lastOK := false

	flushProse := func() {
		if len(overloads) > 0 && len(prose) > 0 {
			overloads[len(overloads)-1].Doc = strings.TrimSpace(strings.Join(prose, "\n"))
		}
		prose = nil
	}

	for i, line := range strings.Split(doc, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if isContinuation(line) {
			trimmed := strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(trimmed, "C++ signature"):
				inSignatureBlock = true
			case inSignatureBlock || !lastOK:
			default:
				prose = append(prose, trimmed)
			}
			continue
		}

		flushProse()
		inSignatureBlock = false
		o, err := ParseLine(line)
		lastOK = err == nil
		if err != nil {
			if se, ok := err.(*SyntaxError); ok {
				se.LineNo = i + 1
			}
			errs = append(errs, err)
			continue
		}
		overloads = append(overloads, o)
	}
	flushProse()

	return overloads, errs
}

// isContinuation reports lines that belong to the previous overload:
// blank lines, indented prose and the "C++ signature :" block.
func isContinuation(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	if line[0] == ' ' || line[0] == '\t' {
		return true
	}
	return strings.HasPrefix(line, "C++ signature")
}

// ParseLine parses a single signature line.
func ParseLine(line string) (Overload, error) {
	p := &parser{src: line}
	return p.overload()
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Line: p.src, Col: p.pos + 1, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for !p.eof() && isIdentByte(p.src[p.pos], p.pos == start) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected identifier")
	}
	return p.src[start:p.pos], nil
}

func isIdentByte(c byte, first bool) bool {
	if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

// overload := name '(' arglist ')' '->' return
func (p *parser) overload() (Overload, error) {
	name, err := p.ident()
	if err != nil {
		return Overload{}, err
	}
	if err := p.expect('('); err != nil {
		return Overload{}, err
	}
	params, err := p.arglist()
	if err != nil {
		return Overload{}, err
	}
	ret, err := p.returnType()
	if err != nil {
		return Overload{}, err
	}
	return Overload{Name: name, Params: params, Return: ret}, nil
}

// arglist consumes items up to and including the closing ')'.
func (p *parser) arglist() ([]Param, error) {
	params := []Param{}
	optional := false
	open := 0

	for {
		p.skipSpace()
		switch p.peek() {
		case 0:
			return nil, p.errorf("unterminated parameter list")
		case ')':
			p.pos++
			if open != 0 {
				return nil, p.errorf("unbalanced optional group")
			}
			return params, nil
		case '[':
			p.pos++
			open++
			optional = true
		case ']':
			p.pos++
			open--
			if open < 0 {
				return nil, p.errorf("unexpected ']'")
			}
		case ',':
			p.pos++
		case '(':
			param, err := p.typedArg()
			if err != nil {
				return nil, err
			}
			param.Optional = optional
			params = append(params, param)
		default:
			return nil, p.errorf("unexpected %q in parameter list", p.peek())
		}
	}
}

// typedArg := '(' native-type ')' identifier
func (p *parser) typedArg() (Param, error) {
	p.pos++ // '('
	start := p.pos
	depth := 0
	for {
		if p.eof() {
			return Param{}, p.errorf("unterminated parameter type")
		}
		c := p.src[p.pos]
		if c == ')' && depth == 0 {
			break
		}
		switch c {
		case '(', '<':
			depth++
		case ')', '>':
			depth--
		}
		p.pos++
	}
	nativeType := strings.TrimSpace(p.src[start:p.pos])
	p.pos++ // ')'
	if nativeType == "" {
		return Param{}, p.errorf("empty parameter type")
	}

	name, err := p.ident()
	if err != nil {
		return Param{}, err
	}
	return Param{NativeType: nativeType, Name: name}, nil
}

// returnType := '->' text [':']
func (p *parser) returnType() (string, error) {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], "->") {
		return "", p.errorf("expected '->'")
	}
	p.pos += 2
	ret := strings.TrimSpace(p.src[p.pos:])
	ret = strings.TrimSpace(strings.TrimSuffix(ret, ":"))
	if ret == "" {
		return "", p.errorf("missing return type")
	}
	p.pos = len(p.src)
	return ret, nil
}

// Format renders o back into the signature grammar, with all optional
// parameters in one bracket group. Doc follows as indented lines, so
// Parse(Format(o)) yields o again.
func Format(o Overload) string {
	var sb strings.Builder
	sb.WriteString(o.Name)
	sb.WriteString("(")

	required := 0
	for _, param := range o.Params {
		if param.Optional {
			break
		}
		if required > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, " (%s)%s", param.NativeType, param.Name)
		required++
	}

	if required < len(o.Params) {
		sb.WriteString(" [")
		if required > 0 {
			sb.WriteString(",")
		}
		for i, param := range o.Params[required:] {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, " (%s)%s", param.NativeType, param.Name)
		}
		sb.WriteString("]")
	}

	sb.WriteString(") -> ")
	sb.WriteString(o.Return)

	if o.Doc != "" {
		sb.WriteString(" :")
		for _, line := range strings.Split(o.Doc, "\n") {
			sb.WriteString("\n")
			if line = strings.TrimSpace(line); line != "" {
				sb.WriteString("    ")
				sb.WriteString(line)
			}
		}
	}
	return sb.String()
}
