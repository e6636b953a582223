package introspect

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/logger"
	"github.com/teranos/fbstubs/stub"
)

// DefaultEnumBase is the runtime base class of Boost.Python enums.
const DefaultEnumBase = "enum"

// deniedMembers are runtime bookkeeping attributes, skipped on every class.
var deniedMembers = map[string]bool{
	"__instance_size__": true,
	"__sizeof__":        true,
	"__slots__":         true,
	"__dict__":          true,
	"__weakref__":       true,
	"__module__":        true,
	"__doc__":           true,
}

// droppedBases never appear in a stub's base list.
var droppedBases = map[string]bool{
	"instance": true,
	"object":   true,
}

var constantNameRe = regexp.MustCompile(`^(k[A-Z0-9_]\w*|[A-Z][A-Z0-9_]*)$`)

// Class is a classified class with its kept members.
type Class struct {
	Name    string
	Bases   []string
	Members []Member
	Enum    bool
}

// Result is the classified content of the module.
type Result struct {
	Module    string
	Version   string
	Functions []Callable
	Classes   []*Class
	Enums     []*Class
}

// Options tunes classification.
type Options struct {
	// EnumBase is the runtime base name marking enum classes.
	EnumBase string
}

// Introspect lists and classifies every public entity of the module.
// Missing symbols are fatal.
func Introspect(ins Inspector, opts Options, log *zap.SugaredLogger) (*Result, error) {
	log = logger.OrNop(log)
	if opts.EnumBase == "" {
		opts.EnumBase = DefaultEnumBase
	}

	functions, err := ins.Functions()
	if err != nil {
		return nil, errors.Wrap(err, "list functions")
	}
	res := &Result{Module: ins.Module(), Version: ins.Version()}
	for _, f := range functions {
		if strings.HasPrefix(f.Name, "_") {
			continue
		}
		res.Functions = append(res.Functions, f)
	}

	names, err := ins.Classes()
	if err != nil {
		return nil, errors.Wrap(err, "list classes")
	}

	for _, name := range names {
		if strings.HasPrefix(name, "_") {
			continue
		}
		cls, err := classify(ins, name, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "class %s", name)
		}
		if cls.Enum {
			res.Enums = append(res.Enums, cls)
		} else {
			res.Classes = append(res.Classes, cls)
		}
	}

	log.Debugw("Introspected module",
		logger.FieldModule, res.Module,
		logger.FieldVersion, res.Version,
		"functions", len(res.Functions),
		"classes", len(res.Classes),
		"enums", len(res.Enums),
	)
	return res, nil
}

func classify(ins Inspector, name string, opts Options) (*Class, error) {
	rawBases, err := ins.Bases(name)
	if err != nil {
		return nil, err
	}
	members, err := ins.Members(name)
	if err != nil {
		return nil, err
	}

	cls := &Class{Name: name}
	for _, m := range members {
		if !KeepMember(name, m) {
			continue
		}
		if m.Callable {
			static, err := ins.IsStatic(name, m.Name)
			if err != nil {
				return nil, err
			}
			m.Static = static
		}
		cls.Members = append(cls.Members, m)
	}

	enumBase := false
	for _, b := range rawBases {
		if b == opts.EnumBase || b == DefaultEnumBase {
			enumBase = true
		}
	}
	cls.Enum = enumBase || constantsOnly(name, cls.Members)

	if cls.Enum {
		cls.Bases = []string{stub.EnumBase}
		cls.Members = enumMembers(name, cls.Members)
		return cls, nil
	}

	for _, b := range rawBases {
		if droppedBases[b] {
			continue
		}
		cls.Bases = append(cls.Bases, b)
	}
	return cls, nil
}

// KeepMember decides whether member m of class is declared in the stub:
// bookkeeping attributes never, __init__ always, other underscore names
// never, everything else only when class itself defines it.
func KeepMember(class string, m Member) bool {
	switch {
	case deniedMembers[m.Name]:
		return false
	case m.Name == "__init__":
		return true
	case strings.HasPrefix(m.Name, "_"):
		return false
	default:
		return m.Owner == class
	}
}

// constantsOnly reports whether every public member is a constant typed as
// the class itself.
func constantsOnly(class string, members []Member) bool {
	public := 0
	for _, m := range members {
		if strings.HasPrefix(m.Name, "_") {
			continue
		}
		public++
		if m.Callable || m.Type != class || !constantNameRe.MatchString(m.Name) {
			return false
		}
	}
	return public > 0
}

// enumMembers keeps the values of an enum class, dropping the "names" and
// "values" tables Boost.Python adds.
func enumMembers(class string, members []Member) []Member {
	var out []Member
	for _, m := range members {
		if m.Callable || strings.HasPrefix(m.Name, "_") || m.Type != class {
			continue
		}
		out = append(out, m)
	}
	return out
}
