// Package build turns classified introspection output into a stub.Model,
// parsing the signature docstring of every callable.
package build

import (
	"go.uber.org/zap"

	"github.com/teranos/fbstubs/logger"
	"github.com/teranos/fbstubs/stub"
	"github.com/teranos/fbstubs/stub/docstring"
	"github.com/teranos/fbstubs/stub/introspect"
	"github.com/teranos/fbstubs/stub/typemap"
)

const (
	unknownType = "object"
	receiver    = "self"
)

// Builder converts introspection results into model nodes.
type Builder struct {
	tr     *typemap.Translator
	logger *zap.SugaredLogger

	fallbacks int
}

// New creates a Builder. The translator receives the enum-member index
// during Build.
func New(tr *typemap.Translator, log *zap.SugaredLogger) *Builder {
	return &Builder{tr: tr, logger: logger.OrNop(log)}
}

// Fallbacks returns how many callables got the generic signature because
// their docstring had no parseable overload.
func (b *Builder) Fallbacks() int {
	return b.fallbacks
}

// Build creates the model. Enum classes come first so that their members can
// resolve bare default constants in every later signature.
func (b *Builder) Build(res *introspect.Result) *stub.Model {
	model := &stub.Model{Module: res.Module, Version: res.Version}

	b.tr.SetEnumMembers(EnumMemberIndex(res.Enums, b.logger))

	for _, e := range res.Enums {
		model.Enums = append(model.Enums, b.enum(e))
	}
	for _, c := range res.Classes {
		model.Classes = append(model.Classes, b.class(c))
	}
	for _, f := range res.Functions {
		model.Functions = append(model.Functions, b.function(f.Name, f.Doc, false, false))
	}

	s := model.Stats()
	b.logger.Infow("Built model",
		logger.FieldModule, model.Module,
		"enums", s.Enums,
		"classes", s.Classes,
		"functions", s.Functions,
		"methods", s.Methods,
		logger.FieldOverloads, s.Overloads,
		"fallbacks", b.fallbacks,
	)
	return model
}

// EnumMemberIndex maps every enum value name to its enum class. When two
// enums share a value name the first one wins.
func EnumMemberIndex(enums []*introspect.Class, log *zap.SugaredLogger) map[string]string {
	log = logger.OrNop(log)
	index := make(map[string]string)
	for _, e := range enums {
		for _, m := range e.Members {
			if owner, dup := index[m.Name]; dup {
				log.Debugw("Enum value name is ambiguous",
					logger.FieldMember, m.Name,
					"first", owner,
					"second", e.Name,
				)
				continue
			}
			index[m.Name] = e.Name
		}
	}
	return index
}

func (b *Builder) enum(e *introspect.Class) *stub.Class {
	cls := &stub.Class{
		Name:  e.Name,
		Bases: []string{stub.EnumBase},
		Kind:  stub.KindEnum,
	}
	for _, m := range e.Members {
		cls.Properties = append(cls.Properties, &stub.Property{
			Name: m.Name,
			Type: e.Name,
			Doc:  m.Doc,
		})
	}
	return cls
}

func (b *Builder) class(c *introspect.Class) *stub.Class {
	cls := &stub.Class{Name: c.Name, Kind: stub.KindClass}
	for _, base := range c.Bases {
		if t := b.tr.Type(base); t != "" {
			cls.Bases = append(cls.Bases, t)
		}
	}

	for _, m := range c.Members {
		if m.Callable {
			cls.Methods = append(cls.Methods, b.function(m.Name, m.Doc, true, m.Static))
			continue
		}
		cls.Properties = append(cls.Properties, &stub.Property{
			Name: m.Name,
			Type: b.propertyType(m),
			Doc:  m.Doc,
		})
	}
	return cls
}

func (b *Builder) propertyType(m introspect.Member) string {
	// Boost.Python properties report the descriptor, not the value type
	if m.Type == "" || m.Type == "property" {
		return unknownType
	}
	if t := b.tr.Type(m.Type); t != "" {
		return t
	}
	return unknownType
}

func (b *Builder) function(name, doc string, isMethod, isStatic bool) *stub.Function {
	fn := &stub.Function{Name: name, IsMethod: isMethod, IsStatic: isStatic}

	parsed, errs := docstring.Parse(doc)
	for _, err := range errs {
		b.logger.Warnw("Skipping unparseable signature line",
			logger.FieldFunction, name,
			logger.FieldError, err.Error(),
		)
	}

	for _, o := range parsed {
		fn.Overloads = append(fn.Overloads, b.overload(fn, o))
	}

	if len(fn.Overloads) == 0 {
		b.fallbacks++
		b.logger.Warnw("No signature in docstring, using generic overload",
			logger.FieldFunction, name,
			"method", isMethod,
		)
		fn.Overloads = []stub.Overload{fallbackOverload(fn)}
	}
	return fn
}

func (b *Builder) overload(fn *stub.Function, o docstring.Overload) stub.Overload {
	ov := stub.Overload{Return: b.tr.Type(o.Return), Doc: o.Doc}
	if ov.Return == "" {
		ov.Return = unknownType
	}

	if fn.HasReceiver() && len(o.Params) == 0 {
		ov.Params = append(ov.Params, stub.Parameter{Name: receiver})
	}
	for _, p := range o.Params {
		param := stub.Parameter{Name: p.Name, Type: b.tr.Type(p.NativeType)}
		if p.Optional {
			param.HasDefault = true
			param.Default = "None"
		}
		ov.Params = append(ov.Params, param)
	}
	return ov
}

// fallbackOverload accepts anything: (self, *args, **kwargs) -> object.
func fallbackOverload(fn *stub.Function) stub.Overload {
	var ov stub.Overload
	if fn.HasReceiver() {
		ov.Params = append(ov.Params, stub.Parameter{Name: receiver})
	}
	ov.Params = append(ov.Params,
		stub.Parameter{Name: "args", Star: 1},
		stub.Parameter{Name: "kwargs", Star: 2},
	)
	ov.Return = unknownType
	return ov
}
