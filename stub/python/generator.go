// Package python emits a stub model as a Python type stub (.pyi).
package python

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/teranos/fbstubs/stub"
)

const indent = "    "

// DefaultPrelude defines the names every emitted stub relies on: the
// overload decorator and the enum base class.
//
//go:embed prelude.pyi
var DefaultPrelude string

// DeprecatedMarker starts the docstring of deprecated declarations.
const DeprecatedMarker = "[Deprecated]"

// Generator implements stub.Generator for Python
type Generator struct{}

// NewGenerator creates a new Python generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Language returns "python"
func (g *Generator) Language() string {
	return "python"
}

// FileExtension returns "pyi"
func (g *Generator) FileExtension() string {
	return "pyi"
}

// GenerateFile renders the prelude verbatim followed by enums, classes in
// model order and free functions. The output depends only on model and
// prelude.
func (g *Generator) GenerateFile(model *stub.Model, prelude string) string {
	var sb strings.Builder

	sb.WriteString(prelude)
	if prelude != "" && !strings.HasSuffix(prelude, "\n") {
		sb.WriteString("\n")
	}

	var decls []string
	for _, e := range model.Enums {
		decls = append(decls, GenerateClass(e))
	}
	for _, c := range model.Classes {
		decls = append(decls, GenerateClass(c))
	}
	for _, fn := range model.Functions {
		decls = append(decls, GenerateFunction(fn, ""))
	}

	for _, d := range decls {
		sb.WriteString("\n\n")
		sb.WriteString(d)
	}
	return sb.String()
}

// GenerateClass renders one class. Members follow the class docstring:
// properties first, then methods separated by blank lines.
func GenerateClass(c *stub.Class) string {
	var sb strings.Builder

	sb.WriteString("class ")
	sb.WriteString(c.Name)
	if len(c.Bases) > 0 {
		sb.WriteString("(" + strings.Join(c.Bases, ", ") + ")")
	}
	sb.WriteString(":\n")

	if c.IsEmpty() {
		sb.WriteString(indent + "...\n")
		return sb.String()
	}

	if c.Doc != "" {
		writeDocstring(&sb, indent, c.Doc)
	}
	for _, p := range c.Properties {
		writeProperty(&sb, p)
	}
	for i, fn := range c.Methods {
		if i > 0 || len(c.Properties) > 0 || c.Doc != "" {
			sb.WriteString("\n")
		}
		sb.WriteString(GenerateFunction(fn, indent))
	}
	return sb.String()
}

func writeProperty(sb *strings.Builder, p *stub.Property) {
	typ := p.Type
	if typ == "" {
		typ = "object"
	}
	fmt.Fprintf(sb, "%s%s: %s\n", indent, toPythonIdent(p.Name), typ)

	if doc := docText(p.Doc, p.Deprecated); doc != "" {
		writeDocstring(sb, indent, doc)
	}
}

// GenerateFunction renders every overload of fn at the given indentation.
func GenerateFunction(fn *stub.Function, prefix string) string {
	var sb strings.Builder
	for i := range fn.Overloads {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeOverload(&sb, fn, &fn.Overloads[i], prefix)
	}
	return sb.String()
}

func writeOverload(sb *strings.Builder, fn *stub.Function, ov *stub.Overload, prefix string) {
	if fn.IsOverloaded() {
		sb.WriteString(prefix + "@overload\n")
	}
	if fn.IsMethod && fn.IsStatic {
		sb.WriteString(prefix + "@staticmethod\n")
	}

	fmt.Fprintf(sb, "%sdef %s(%s)", prefix, fn.Name, Params(fn, ov))
	if ov.Return != "" {
		sb.WriteString(" -> " + ov.Return)
	}
	sb.WriteString(":\n")

	doc := ov.Doc
	if doc == "" && !fn.IsOverloaded() {
		doc = fn.Doc
	}
	if doc = docText(doc, ov.Deprecated || fn.Deprecated); doc != "" {
		writeDocstring(sb, prefix+indent, doc)
		return
	}
	sb.WriteString(prefix + indent + "...\n")
}

// Params renders the parameter list of one overload. The receiver of a
// non-static method is emitted as bare self.
func Params(fn *stub.Function, ov *stub.Overload) string {
	names := newParamNames()
	parts := make([]string, 0, len(ov.Params))

	for i, p := range ov.Params {
		if i == 0 && fn.HasReceiver() {
			parts = append(parts, names.reserve("self"))
			continue
		}

		switch p.Star {
		case 1:
			parts = append(parts, "*"+names.name(p.Name, i))
			continue
		case 2:
			parts = append(parts, "**"+names.name(p.Name, i))
			continue
		}

		s := names.name(p.Name, i)
		switch {
		case p.Type != "" && p.HasDefault:
			s += ": " + p.Type + " = " + p.Default
		case p.Type != "":
			s += ": " + p.Type
		case p.HasDefault:
			s += "=" + p.Default
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func docText(doc string, deprecated bool) string {
	doc = strings.TrimSpace(doc)
	if !deprecated {
		return doc
	}
	if doc == "" {
		return DeprecatedMarker
	}
	return DeprecatedMarker + " " + doc
}

// writeDocstring writes doc as a triple-quoted string, one level deeper
// than its owner.
func writeDocstring(sb *strings.Builder, prefix, doc string) {
	lines := strings.Split(EscapeDocstring(doc), "\n")
	if len(lines) == 1 {
		fmt.Fprintf(sb, "%s\"\"\"%s\"\"\"\n", prefix, lines[0])
		return
	}

	sb.WriteString(prefix + `"""` + lines[0] + "\n")
	for _, line := range lines[1:] {
		if line == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(prefix + line + "\n")
	}
	sb.WriteString(prefix + `"""` + "\n")
}

// EscapeDocstring makes doc safe inside a triple-quoted string literal.
func EscapeDocstring(doc string) string {
	doc = strings.ReplaceAll(doc, `\`, `\\`)
	doc = strings.ReplaceAll(doc, `"""`, `\"\"\"`)
	if strings.HasSuffix(doc, `"`) && trailingBackslashes(doc[:len(doc)-1])%2 == 0 {
		doc = doc[:len(doc)-1] + `\"`
	}
	return doc
}

// trailingBackslashes counts the backslashes s ends with. An odd count means
// the character that follows is escaped.
func trailingBackslashes(s string) int {
	n := 0
	for n < len(s) && s[len(s)-1-n] == '\\' {
		n++
	}
	return n
}
