// Package typemap translates native (C++) type identifiers and default-value
// literals into Python equivalents.
//
// Translation never fails: unknown identifiers are returned unchanged so that
// class names of the target module flow through untouched. Type is
// idempotent, Type(Type(x)) == Type(x), which lets already-translated names
// (from Boost.Python docstrings) and native names (from the HTML reference)
// share one code path.
package typemap

import (
	"regexp"
	"strings"
)

// TypeMapping defines how native and prose type names map to Python types.
// Every value is also a key mapping to itself, which keeps Type idempotent.
var TypeMapping = map[string]string{
	// Python names as Boost.Python reports them
	"None":   "None",
	"object": "object",
	"bool":   "bool",
	"int":    "int",
	"float":  "float",
	"str":    "str",
	"list":   "list",
	"dict":   "dict",
	"tuple":  "tuple",
	"bytes":  "bytes",
	"Any":    "Any",

	// C++ primitives
	"void":               "None",
	"char":               "str",
	"char*":              "str",
	"wchar_t*":           "str",
	"std::string":        "str",
	"std::wstring":       "str",
	"FBString":           "str",
	"short":              "int",
	"unsigned short":     "int",
	"unsigned int":       "int",
	"unsigned":           "int",
	"long":               "int",
	"unsigned long":      "int",
	"long long":          "int",
	"unsigned long long": "int",
	"size_t":             "int",
	"int8_t":             "int",
	"int16_t":            "int",
	"int32_t":            "int",
	"int64_t":            "int",
	"uint8_t":            "int",
	"uint16_t":           "int",
	"uint32_t":           "int",
	"uint64_t":           "int",
	"kShort":             "int",
	"kUShort":            "int",
	"kInt":               "int",
	"kUInt":              "int",
	"kLong":              "int",
	"kULong":             "int",
	"kInt64":             "int",
	"kUInt64":            "int",
	"kReference":         "int",
	"double":             "float",
	"kDouble":            "float",
	"kFloat":             "float",
	"PyObject*":          "object",

	// Boost.Python wrappers
	"boost::python::object": "object",
	"boost::python::list":   "list",
	"boost::python::tuple":  "tuple",
	"boost::python::dict":   "dict",
	"boost::python::str":    "str",

	// Prose forms used by the vendor reference
	"boolean":                         "bool",
	"integer":                         "int",
	"signed 32-bit integer":           "int",
	"unsigned 32-bit integer":         "int",
	"signed 64-bit integer":           "int",
	"unsigned 64-bit integer":         "int",
	"floating point":                  "float",
	"double-precision floating point": "float",
	"string":                          "str",
	"nothing":                         "None",
}

// ContainerFormats formats templated containers, keyed by template name.
// The formatter receives the already-translated template arguments.
var ContainerFormats = map[string]func(args []string) string{
	"FBArrayTemplate":       listOf,
	"FBList":                listOf,
	"std::vector":           listOf,
	"std::list":             listOf,
	"std::set":              func(args []string) string { return "set[" + first(args) + "]" },
	"std::map":              dictOf,
	"std::unordered_map":    dictOf,
	"std::pair":             func(args []string) string { return "tuple[" + strings.Join(args, ", ") + "]" },
	"boost::shared_ptr":     func(args []string) string { return first(args) },
	"std::shared_ptr":       func(args []string) string { return first(args) },
	"HIObjectArrayTemplate": listOf,
}

func listOf(args []string) string {
	return "list[" + first(args) + "]"
}

func dictOf(args []string) string {
	if len(args) != 2 {
		return "dict"
	}
	return "dict[" + args[0] + ", " + args[1] + "]"
}

func first(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return "object"
	}
	return args[0]
}

// Translator converts native identifiers to Python for one target module.
type Translator struct {
	module      string
	enumMembers map[string]string
}

// New creates a Translator for the named module.
// Qualified names such as "pyfbsdk.FBModel" lose the module prefix.
func New(module string) *Translator {
	return &Translator{module: module, enumMembers: map[string]string{}}
}

// SetEnumMembers installs the member → enum class index used to resolve bare
// enum constants in default values.
func (t *Translator) SetEnumMembers(members map[string]string) {
	t.enumMembers = members
}

// Type translates a native type identifier.
func (t *Translator) Type(native string) string {
	s := normalize(native)
	if s == "" {
		return ""
	}

	if mapped, ok := lookup(s); ok {
		return mapped
	}

	stripped := stripDecorations(s)
	if stripped != s {
		// "char*" must win over "char" + pointer
		if mapped, ok := lookup(stripped + "*"); ok && strings.HasSuffix(s, "*") {
			return mapped
		}
		return t.Type(stripped)
	}

	if i := strings.IndexByte(s, '<'); i > 0 && strings.HasSuffix(s, ">") {
		name := s[:i]
		if format, ok := containerFormat(name); ok {
			parts := splitTopLevel(s[i+1:len(s)-1], ',')
			args := make([]string, 0, len(parts))
			for _, p := range parts {
				args = append(args, t.Type(p))
			}
			return format(args)
		}
	}

	return t.qualify(s)
}

// qualify rewrites scope separators and drops the module prefix.
func (t *Translator) qualify(s string) string {
	s = strings.ReplaceAll(s, "::", ".")
	if t.module != "" {
		s = strings.TrimPrefix(s, t.module+".")
	}
	return s
}

func lookup(s string) (string, bool) {
	if mapped, ok := TypeMapping[s]; ok {
		return mapped, true
	}
	// Prose forms ("Signed 32-bit integer") are matched case-insensitively;
	// single identifiers are not, so class names never collide with builtins.
	if !strings.Contains(s, " ") {
		return "", false
	}
	mapped, ok := TypeMapping[strings.ToLower(s)]
	return mapped, ok
}

// containerFormat recognizes templated containers by the name preceding '<',
// with or without a leading global-scope qualifier.
func containerFormat(name string) (func([]string) string, bool) {
	format, ok := ContainerFormats[strings.TrimPrefix(name, "::")]
	return format, ok
}

var spaceRe = regexp.MustCompile(`\s+`)

// normalize collapses whitespace and glues pointer/reference markers and
// template brackets to their operands.
func normalize(s string) string {
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	for _, pair := range [][2]string{{" *", "*"}, {" &", "&"}, {"< ", "<"}, {" >", ">"}, {" ,", ","}} {
		s = strings.ReplaceAll(s, pair[0], pair[1])
	}
	return s
}

// stripDecorations removes leading const and trailing &, * and const.
func stripDecorations(s string) string {
	for {
		before := s
		s = strings.TrimPrefix(s, "const ")
		s = strings.TrimSuffix(s, " const")
		s = strings.TrimSuffix(s, "&")
		s = strings.TrimSuffix(s, "*")
		s = strings.TrimSpace(s)
		if s == before {
			return s
		}
	}
}

// splitTopLevel splits s on sep, ignoring separators nested in (), <> or [].
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	quote := byte(0)
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '<' || c == '[':
			depth++
		case c == ')' || c == '>' || c == ']':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" || len(parts) > 0 {
		parts = append(parts, tail)
	}
	return parts
}

// SplitTopLevel splits s on commas that are not nested in brackets or quotes.
func SplitTopLevel(s string) []string {
	return splitTopLevel(s, ',')
}
