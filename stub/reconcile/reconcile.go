// Package reconcile enriches a docstring-derived model with the vendor's
// HTML reference: parameter names, default literals, more specific types,
// prose and deprecation.
//
// Runtime information always wins over documentation. When the two cannot be
// matched unambiguously (different overload counts, different arities) the
// documentation is dropped for that entity rather than guessed.
package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/fbstubs/logger"
	"github.com/teranos/fbstubs/stub"
	"github.com/teranos/fbstubs/stub/docs"
	"github.com/teranos/fbstubs/stub/typemap"
)

// Source answers documentation queries. *docs.Index implements it.
type Source interface {
	Page(ctx context.Context, name string) (*docs.Page, bool)
	Lookup(ctx context.Context, entity, member string) []docs.Record
	ModulePage(ctx context.Context) (*docs.Page, bool)
}

// Stats counts what happened to each function, method, property and enum value.
type Stats struct {
	Enriched     int
	Skipped      int
	Undocumented int
	Unsafe       int // default literals rendered as ...
}

// Reconciler mutates model nodes in place.
type Reconciler struct {
	src    Source
	tr     *typemap.Translator
	logger *zap.SugaredLogger
	stats  Stats
}

// New creates a Reconciler reading from src.
func New(src Source, tr *typemap.Translator, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{src: src, tr: tr, logger: logger.OrNop(log)}
}

// Reconcile enriches every entity of model and returns the counts.
func (r *Reconciler) Reconcile(ctx context.Context, model *stub.Model) Stats {
	r.stats = Stats{}

	for _, e := range model.Enums {
		page := r.classPage(ctx, e)
		for _, p := range e.Properties {
			recs := r.records(ctx, page, p.Name, false, isEnumValue)
			r.property(e.Name, p, recs)
		}
	}

	for _, c := range model.Classes {
		page := r.classPage(ctx, c)
		for _, fn := range c.Methods {
			r.function(c.Name, fn, r.records(ctx, page, fn.Name, false, docs.RecordKind.Callable))
		}
		for _, p := range c.Properties {
			r.property(c.Name, p, r.records(ctx, page, p.Name, false, isProperty))
		}
	}

	for _, fn := range model.Functions {
		r.function("", fn, r.records(ctx, nil, fn.Name, true, docs.RecordKind.Callable))
	}

	r.logger.Infow("Reconciled documentation",
		"enriched", r.stats.Enriched,
		"skipped", r.stats.Skipped,
		"undocumented", r.stats.Undocumented,
	)
	return r.stats
}

func isProperty(k docs.RecordKind) bool {
	return k == docs.KindProperty
}

func isEnumValue(k docs.RecordKind) bool {
	return k == docs.KindEnumMember || k == docs.KindProperty
}

// classPage returns the page documenting c and attaches its description.
func (r *Reconciler) classPage(ctx context.Context, c *stub.Class) *docs.Page {
	page, ok := r.src.Page(ctx, c.Name)
	if !ok {
		r.logger.Debugw("Class not documented", logger.FieldClass, c.Name)
		return nil
	}
	if c.Doc == "" {
		c.Doc = page.Description
	}
	return page
}

// records looks name up on the owner's page, then through its own ToC entry,
// then (for free functions) on the module page.
func (r *Reconciler) records(ctx context.Context, owner *docs.Page, name string, module bool, accept func(docs.RecordKind) bool) []docs.Record {
	filter := func(recs []docs.Record) []docs.Record {
		var out []docs.Record
		for _, rec := range recs {
			if accept(rec.Kind) {
				out = append(out, rec)
			}
		}
		return out
	}

	if owner != nil {
		if recs := filter(owner.Find(name)); len(recs) > 0 {
			return recs
		}
	}
	if recs := filter(r.src.Lookup(ctx, name, name)); len(recs) > 0 {
		return recs
	}
	if module {
		if page, ok := r.src.ModulePage(ctx); ok {
			return filter(page.Find(name))
		}
	}
	return nil
}

func (r *Reconciler) function(owner string, fn *stub.Function, recs []docs.Record) {
	log := r.logger.With(logger.FieldFunction, qualified(owner, fn.Name))
	if len(recs) == 0 {
		r.stats.Undocumented++
		log.Debugw("No documentation")
		return
	}

	n, m := len(fn.Overloads), len(recs)
	if n > 1 {
		if n != m {
			r.stats.Skipped++
			log.Warnw("Overload count mismatch, documentation skipped",
				logger.FieldOverloads, n,
				logger.FieldRecords, m,
			)
			return
		}
		for i := range fn.Overloads {
			r.overload(log, fn, &fn.Overloads[i], recs[i])
		}
		r.stats.Enriched++
		return
	}

	ov := &fn.Overloads[0]
	rec := recs[0]
	for _, candidate := range recs {
		if len(candidate.Params) == arity(fn, ov) {
			rec = candidate
			break
		}
	}
	r.overload(log, fn, ov, rec)
	fn.Deprecated = fn.Deprecated || ov.Deprecated
	r.stats.Enriched++
}

// arity counts the parameters of ov that documentation describes: the
// receiver is excluded.
func arity(fn *stub.Function, ov *stub.Overload) int {
	if fn.HasReceiver() && len(ov.Params) > 0 {
		return len(ov.Params) - 1
	}
	return len(ov.Params)
}

func isGeneric(ov *stub.Overload) bool {
	for _, p := range ov.Params {
		if p.Star != 0 {
			return true
		}
	}
	return false
}

func (r *Reconciler) overload(log *zap.SugaredLogger, fn *stub.Function, ov *stub.Overload, rec docs.Record) {
	offset := 0
	if fn.HasReceiver() && len(ov.Params) > 0 {
		offset = 1
	}

	switch {
	case isGeneric(ov):
		// no docstring signature: the documented one replaces the catch-all
		params := append([]stub.Parameter(nil), ov.Params[:offset]...)
		for _, dp := range rec.Params {
			p := stub.Parameter{Name: dp.Name, Type: r.tr.Type(dp.Type)}
			if dp.HasDefault || len(params) > offset && params[len(params)-1].HasDefault {
				p.HasDefault = true
				p.Default = r.defaultValue(log, dp)
			}
			params = append(params, p)
		}
		ov.Params = params
	case len(rec.Params) == arity(fn, ov):
		for i, dp := range rec.Params {
			r.parameter(log, &ov.Params[offset+i], dp)
		}
	default:
		log.Debugw("Arity differs, parameters not enriched",
			"documented", len(rec.Params),
			"runtime", arity(fn, ov),
		)
	}

	if t := r.tr.Type(rec.Return); replaceable(ov.Return) && specific(t) && t != ov.Return {
		ov.Return = t
	}
	if rec.Doc != "" {
		ov.Doc = rec.Doc
	}
	ov.Deprecated = ov.Deprecated || rec.Deprecated

	if rec.Static != fn.IsStatic && fn.IsMethod {
		log.Debugw("Documented static-ness differs from runtime", "documented_static", rec.Static)
	}
}

func (r *Reconciler) parameter(log *zap.SugaredLogger, p *stub.Parameter, dp docs.DocParam) {
	if dp.Name != "" {
		p.Name = dp.Name
	}
	// only parameters the runtime already marks optional take a default
	if p.HasDefault && dp.HasDefault {
		p.Default = r.defaultValue(log, dp)
	}
	if p.Type == "" || p.Type == "object" {
		if t := r.tr.Type(dp.Type); t != "" {
			p.Type = t
		}
	}
}

func (r *Reconciler) defaultValue(log *zap.SugaredLogger, dp docs.DocParam) string {
	if !dp.HasDefault {
		return "None"
	}
	v, ok := r.tr.Default(dp.Default)
	if !ok {
		r.stats.Unsafe++
		log.Debugw("Default literal has no Python form",
			logger.FieldMember, dp.Name,
			"literal", dp.Default,
		)
	}
	return v
}

func (r *Reconciler) property(owner string, p *stub.Property, recs []docs.Record) {
	if len(recs) == 0 {
		r.stats.Undocumented++
		r.logger.Debugw("No documentation", logger.FieldMember, qualified(owner, p.Name))
		return
	}
	rec := recs[0]
	if p.Type == "" || p.Type == "object" {
		if t := r.tr.Type(rec.Return); specific(t) {
			p.Type = t
		}
	}
	if rec.Doc != "" {
		p.Doc = rec.Doc
	}
	p.Deprecated = p.Deprecated || rec.Deprecated
	r.stats.Enriched++
}

// replaceable reports return types that carry no information.
func replaceable(t string) bool {
	return t == "" || t == "object" || t == "None"
}

// specific reports whether a documented type says more than "unknown".
func specific(t string) bool {
	return t != "" && t != "object"
}

func qualified(owner, name string) string {
	if owner == "" {
		return name
	}
	return owner + "." + name
}
