package python

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// pythonKeywords are reserved words in Python that need special handling
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
	// Soft keywords (Python 3.10+)
	"match": true, "case": true, "type": true,
}

// toPythonIdent adds an underscore suffix to Python keywords
func toPythonIdent(s string) string {
	if pythonKeywords[s] {
		return s + "_"
	}
	return s
}

// ParamName converts a native parameter name to Python conventions:
// "pVector" -> "vector", "bGlobal" stays, "Name" -> "name", "class" -> "class_".
// Acronyms ("URL") keep their case.
func ParamName(name string) string {
	if len(name) >= 2 && name[0] == 'p' && isUpper(name[1]) {
		name = name[1:]
	}

	r, size := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		next, _ := utf8.DecodeRuneInString(name[size:])
		if !unicode.IsUpper(next) {
			name = string(unicode.ToLower(r)) + name[size:]
		}
	}
	return toPythonIdent(name)
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// paramNames mangles every name of one overload. Empty names become argN;
// repeated names get a numeric suffix.
type paramNames struct {
	seen map[string]bool
}

func newParamNames() *paramNames {
	return &paramNames{seen: map[string]bool{}}
}

func (n *paramNames) reserve(name string) string {
	n.seen[name] = true
	return name
}

func (n *paramNames) name(raw string, i int) string {
	name := ParamName(raw)
	if name == "" {
		name = "arg" + strconv.Itoa(i)
	}
	unique := name
	for k := 2; n.seen[unique]; k++ {
		unique = name + strconv.Itoa(k)
	}
	return n.reserve(unique)
}
