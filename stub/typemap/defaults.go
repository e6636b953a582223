package typemap

import (
	"regexp"
	"strings"
)

// Unrepresentable is rendered for default literals that have no safe Python form.
const Unrepresentable = "..."

// DefaultMapping maps native sentinel literals to Python.
var DefaultMapping = map[string]string{
	"NULL":      "None",
	"nullptr":   "None",
	"None":      "None",
	"true":      "True",
	"false":     "False",
	"True":      "True",
	"False":     "False",
	"FLT_MAX":   "None",
	"-FLT_MAX":  "None",
	"FLT_MIN":   "None",
	"DBL_MAX":   "None",
	"-DBL_MAX":  "None",
	"DBL_MIN":   "None",
	"INT_MAX":   "None",
	"INT_MIN":   "None",
	"UINT_MAX":  "None",
	"LONG_MAX":  "None",
	"LONG_MIN":  "None",
	"ULONG_MAX": "None",

	"FBTime::Infinity":      "None",
	"FBTime::MinusInfinity": "None",
	"FBString()":            `""`,
	"std::string()":         `""`,
}

var (
	numericLimitRe = regexp.MustCompile(`^-?\s*(::)?std::numeric_limits\s*<.+>\s*::\s*(max|min|lowest|infinity|epsilon)\s*\(\s*\)$`)
	numberRe       = regexp.MustCompile(`^([-+]?)(0[xX][0-9a-fA-F]+|\d+\.?\d*(?:[eE][-+]?\d+)?|\.\d+(?:[eE][-+]?\d+)?)[fFlLuU]*$`)
	dottedRe       = regexp.MustCompile(`^[A-Za-z_]\w*(\.[A-Za-z_]\w*)*$`)
	callRe         = regexp.MustCompile(`^([A-Za-z_][\w.:]*)\s*\((.*)\)$`)
	stringRe       = regexp.MustCompile(`^"(?:[^"\\]|\\.)*"$|^'(?:[^'\\]|\\.)*'$`)
)

// Default translates a raw documented default literal to a Python expression.
// The boolean is false when the literal could not be represented; the returned
// expression is then Unrepresentable, which is still valid in a stub.
func (t *Translator) Default(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if mapped, ok := DefaultMapping[s]; ok {
		return mapped, true
	}
	if numericLimitRe.MatchString(s) {
		return "None", true
	}
	if stringRe.MatchString(s) {
		return s, true
	}
	if m := numberRe.FindStringSubmatch(s); m != nil {
		return m[1] + pythonNumber(m[2]), true
	}

	if m := callRe.FindStringSubmatch(s); m != nil {
		return t.call(m[1], m[2])
	}

	name := t.qualify(s)
	if !dottedRe.MatchString(name) {
		return Unrepresentable, false
	}
	if !strings.Contains(name, ".") {
		enum, ok := t.enumMembers[name]
		if !ok {
			return Unrepresentable, false
		}
		return enum + "." + name, true
	}
	return name, true
}

// call translates a constructor-style default such as FBVector3d(0,0,0).
func (t *Translator) call(callee, args string) (string, bool) {
	name := t.qualify(strings.TrimSpace(callee))
	if !dottedRe.MatchString(name) {
		return Unrepresentable, false
	}
	var out []string
	for _, arg := range SplitTopLevel(args) {
		v, ok := t.Default(arg)
		if !ok {
			return Unrepresentable, false
		}
		out = append(out, v)
	}
	return name + "(" + strings.Join(out, ", ") + ")", true
}

// pythonNumber drops C suffixes and completes trailing-dot floats.
func pythonNumber(n string) string {
	if strings.HasSuffix(n, ".") {
		return n + "0"
	}
	if strings.HasPrefix(n, ".") {
		return "0" + n
	}
	return n
}
