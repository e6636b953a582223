// Package introspect discovers the public entities of the target module and
// classifies them for the model builder.
//
// The live module is reached through the Inspector interface. The shipped
// implementation, Snapshot, answers from a YAML or JSON dump written by a
// dumper running inside the host runtime.
package introspect

// Inspector answers reflective queries about the target module.
// Every list is in the module's source order.
type Inspector interface {
	Module() string
	Version() string
	Functions() ([]Callable, error)
	Classes() ([]string, error)
	Bases(class string) ([]string, error)
	Members(class string) ([]Member, error)
	IsStatic(class, member string) (bool, error)
}

// Callable is a free function of the module.
type Callable struct {
	Name string `yaml:"name"`
	Doc  string `yaml:"doc,omitempty"`
}

// Member is an attribute visible on a class, local or inherited.
type Member struct {
	Name string `yaml:"name"`
	// Owner is the class whose namespace defines the member.
	Owner    string `yaml:"owner"`
	Callable bool   `yaml:"callable"`
	// Descriptor is the raw type of the namespace entry, e.g. "staticmethod",
	// "function" or "property".
	Descriptor string `yaml:"descriptor,omitempty"`
	// Type is the runtime type name of a non-callable value.
	Type string `yaml:"type,omitempty"`
	Doc  string `yaml:"doc,omitempty"`

	Static bool `yaml:"-"`
}
