// Package stub holds the in-memory model of a target scripting module's API
// surface: classes, functions, overloads, parameters and properties.
//
// # Architecture
//
// The model is language-agnostic. It is produced in stages:
//  1. introspect classifies the live module's entities
//  2. build turns them into Class / Function / Property nodes, parsing docstrings
//  3. reconcile enriches nodes in place from the vendor HTML reference
//  4. order sorts classes so every class follows its dependencies
//  5. a Generator (python/) serializes the model
//
// Type identifiers stored in the model are already target-language names;
// native C++ names are translated by typemap before they reach a node.
package stub

// Kind distinguishes ordinary classes from enum-like classes.
type Kind int

const (
	KindClass Kind = iota
	KindEnum
)

// EnumBase is the synthetic base class every enum-like class derives from.
// The prelude is expected to define it.
const EnumBase = "_Enum"

// Parameter is one parameter of an overload.
// HasDefault and Default are separate so that "optional, default unknown"
// (Default "None" from the docstring) can later be replaced by a documented literal.
type Parameter struct {
	Name       string
	Type       string
	HasDefault bool
	Default    string
	// Star is 1 for *args and 2 for **kwargs.
	Star int
}

// Overload is one accepted signature of a callable.
type Overload struct {
	Params     []Parameter
	Return     string
	Doc        string
	Deprecated bool
}

// Function is a free function or a method.
// For a non-static method the first parameter of every overload is the receiver.
type Function struct {
	Name       string
	Overloads  []Overload
	IsMethod   bool
	IsStatic   bool
	Doc        string
	Deprecated bool
}

// HasReceiver reports whether the first parameter of each overload is the receiver.
func (f *Function) HasReceiver() bool {
	return f.IsMethod && !f.IsStatic
}

// IsOverloaded reports whether the function must be emitted with overload markers.
func (f *Function) IsOverloaded() bool {
	return len(f.Overloads) > 1
}

// Property is a typed attribute. Properties never carry bodies.
type Property struct {
	Name       string
	Type       string
	Doc        string
	Deprecated bool
}

// Class is an ordinary or enum-like class.
type Class struct {
	Name       string
	Bases      []string
	Properties []*Property
	Methods    []*Function
	Kind       Kind
	Doc        string
}

// IsEnum reports whether c is enum-like.
func (c *Class) IsEnum() bool {
	return c.Kind == KindEnum
}

// IsEmpty reports whether c has no declarations and needs a placeholder body.
func (c *Class) IsEmpty() bool {
	return c.Doc == "" && len(c.Properties) == 0 && len(c.Methods) == 0
}

// Model is the full API surface of one module snapshot.
type Model struct {
	Module    string
	Version   string
	Enums     []*Class
	Classes   []*Class
	Functions []*Function
}

// ClassNames returns the set of every class (ordinary and enum-like) in the model.
func (m *Model) ClassNames() map[string]bool {
	names := make(map[string]bool, len(m.Enums)+len(m.Classes))
	for _, c := range m.Enums {
		names[c.Name] = true
	}
	for _, c := range m.Classes {
		names[c.Name] = true
	}
	return names
}

// Class returns the class (ordinary or enum-like) with the given name, or nil.
func (m *Model) Class(name string) *Class {
	for _, c := range m.Classes {
		if c.Name == name {
			return c
		}
	}
	for _, c := range m.Enums {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Stats summarises a model for progress output.
type Stats struct {
	Enums     int
	Classes   int
	Functions int
	Methods   int
	Overloads int
}

// Stats counts the declarations in m.
func (m *Model) Stats() Stats {
	s := Stats{Enums: len(m.Enums), Classes: len(m.Classes), Functions: len(m.Functions)}
	for _, f := range m.Functions {
		s.Overloads += len(f.Overloads)
	}
	for _, c := range m.Classes {
		s.Methods += len(c.Methods)
		for _, f := range c.Methods {
			s.Overloads += len(f.Overloads)
		}
	}
	return s
}
