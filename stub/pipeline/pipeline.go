// Package pipeline runs one generation: snapshot, classification, model
// building, documentation reconciliation, dependency ordering, emission and
// the atomic write of <output>/<major version>/<module>.pyi.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/fbstubs/am"
	"github.com/teranos/fbstubs/cache"
	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/internal/httpclient"
	"github.com/teranos/fbstubs/logger"
	"github.com/teranos/fbstubs/stub"
	"github.com/teranos/fbstubs/stub/build"
	"github.com/teranos/fbstubs/stub/docs"
	"github.com/teranos/fbstubs/stub/introspect"
	"github.com/teranos/fbstubs/stub/order"
	"github.com/teranos/fbstubs/stub/python"
	"github.com/teranos/fbstubs/stub/reconcile"
	"github.com/teranos/fbstubs/stub/typemap"
)

// Options configures a run. Only Config is required; the other fields
// replace the collaborators Config would otherwise create.
type Options struct {
	Config    *am.Config
	Inspector introspect.Inspector // default: snapshot at Config.Module.Snapshot
	Fetcher   httpclient.Fetcher   // default: HTTP with Config.Docs limits
	Store     cache.BlobStore      // default: Config.Cache backend
	Generator stub.Generator       // default: python
}

// Result describes a finished generation.
type Result struct {
	RunID     string
	Module    string
	Version   string // runtime version as reported
	Major     string // output and docs key
	Path      string
	Content   string
	Model     stub.Stats
	Docs      reconcile.Stats
	Fallbacks int
	Duration  time.Duration
}

// Run generates the stub and writes it atomically. Nothing is written when
// any stage fails.
func Run(ctx context.Context, opts Options, log *zap.SugaredLogger) (*Result, error) {
	res, err := Generate(ctx, opts, log)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(res.Path), am.DefaultDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory for %s", res.Path)
	}
	if err := cache.WriteFileAtomic(res.Path, []byte(res.Content), am.DefaultFilePermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", res.Path)
	}

	logger.OrNop(log).Infow("Wrote stub",
		logger.FieldRunID, res.RunID,
		logger.FieldPath, res.Path,
		logger.FieldSize, len(res.Content),
	)
	return res, nil
}

// Generate runs every stage and returns the rendered stub without writing it.
func Generate(ctx context.Context, opts Options, log *zap.SugaredLogger) (*Result, error) {
	start := time.Now()
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("pipeline: no configuration")
	}

	runID := uuid.NewString()
	log = logger.OrNop(log).With(logger.FieldRunID, runID)

	ins := opts.Inspector
	if ins == nil {
		src, err := introspect.ResolveSnapshot(ctx, cfg.Module.Snapshot, log.Named("snapshot"))
		if err != nil {
			return nil, err
		}
		snap, err := introspect.LoadSnapshot(src.Path)
		src.Cleanup()
		if err != nil {
			return nil, err
		}
		ins = snap
	}

	classified, err := introspect.Introspect(ins, introspect.Options{EnumBase: cfg.Module.EnumBase}, log.Named("introspect"))
	if err != nil {
		return nil, errors.Wrap(err, "introspection failed")
	}
	if cfg.Module.Name != "" {
		classified.Module = cfg.Module.Name
	}

	major, err := MajorVersion(classified.Version)
	if err != nil {
		return nil, err
	}
	log = log.With(logger.FieldModule, classified.Module, logger.FieldVersion, classified.Version)

	tr := typemap.New(classified.Module)
	builder := build.New(tr, log.Named("build"))
	model := builder.Build(classified)

	res := &Result{
		RunID:     runID,
		Module:    classified.Module,
		Version:   classified.Version,
		Major:     major,
		Fallbacks: builder.Fallbacks(),
	}

	if cfg.Docs.Enabled {
		stats, err := reconcileDocs(ctx, opts, cfg.Docs.ForVersion(major), model, tr, log)
		if err != nil {
			return nil, err
		}
		res.Docs = stats
	} else {
		log.Infow("Documentation disabled, using docstrings only")
	}

	sorted, err := order.Sort(model.Classes)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "cannot order classes"),
			"a class hierarchy cycle usually means a broken snapshot; regenerate it",
		)
	}
	model.Classes = sorted

	prelude, err := LoadPrelude(cfg.Output.Additions, log)
	if err != nil {
		return nil, err
	}

	gen := opts.Generator
	if gen == nil {
		gen = python.NewGenerator()
	}
	res.Content = gen.GenerateFile(model, prelude)
	res.Path = OutputPath(cfg.Output.Dir, major, classified.Module, gen.FileExtension())
	res.Model = model.Stats()
	res.Duration = time.Since(start)

	log.Infow("Generated stub",
		logger.FieldPath, res.Path,
		"enriched", res.Docs.Enriched,
		"fallbacks", res.Fallbacks,
		logger.FieldDurationMS, res.Duration.Milliseconds(),
	)
	return res, nil
}

func reconcileDocs(ctx context.Context, opts Options, dc am.DocsConfig, model *stub.Model, tr *typemap.Translator, log *zap.SugaredLogger) (reconcile.Stats, error) {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = httpclient.NewHTTPFetcher(FetcherOptions(dc), log.Named("http"))
	}

	store := opts.Store
	if store == nil {
		s, closeStore, err := OpenStore(opts.Config.Cache, log)
		if err != nil {
			log.Warnw("Page cache unavailable, caching in memory for this run",
				logger.FieldError, err.Error(),
			)
			s, closeStore = cache.NewMemoryStore(), func() error { return nil }
		}
		defer closeStore()
		store = s
	}

	index := docs.NewIndex(cache.NewCachedFetcher(fetcher, store, log.Named("cache")), docs.Options{
		TocURL:        dc.TocURL,
		BaseURL:       dc.BaseURL,
		ProjectPrefix: dc.ProjectPrefix,
		ModulePage:    dc.ModulePage,
		Concurrency:   dc.Concurrency,
	}, log.Named("docs"))

	names := make([]string, 0, len(model.Enums)+len(model.Classes))
	for _, c := range model.Enums {
		names = append(names, c.Name)
	}
	for _, c := range model.Classes {
		names = append(names, c.Name)
	}
	if err := index.Prefetch(ctx, names); err != nil {
		return reconcile.Stats{}, errors.Wrap(err, "documentation prefetch interrupted")
	}

	return reconcile.New(index, tr, log.Named("reconcile")).Reconcile(ctx, model), nil
}

// FetcherOptions derives HTTP settings from the docs configuration.
func FetcherOptions(dc am.DocsConfig) httpclient.Options {
	opts := httpclient.DefaultOptions()
	if dc.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(dc.TimeoutSeconds) * time.Second
	}
	opts.RequestsPerSecond = dc.RequestsPerSecond
	return opts
}

// OpenStore opens the configured blob store. The returned func releases it.
func OpenStore(cc am.CacheConfig, log *zap.SugaredLogger) (cache.BlobStore, func() error, error) {
	dir := cc.Dir
	if dir == "" {
		dir = cache.DefaultDir()
	}

	switch cc.Backend {
	case am.CacheBackendSQLite:
		s, err := cache.OpenSQLiteStore(dir, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case am.CacheBackendFS, "":
		s, err := cache.NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	default:
		return nil, nil, errors.Newf("unknown cache backend %q", cc.Backend)
	}
}

// MajorVersion extracts the major component of a runtime version such as
// "2024.1" or "25.0.1".
func MajorVersion(raw string) (string, error) {
	if raw == "" {
		return "", errors.WithHint(
			errors.New("module snapshot has no version"),
			"the version keys the output directory and the documentation URLs; set `version` in the snapshot",
		)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return "", errors.Wrapf(err, "invalid runtime version %q", raw)
	}
	return strconv.FormatUint(v.Major(), 10), nil
}

// OutputPath returns <dir>/<major>/<module>.<ext>.
func OutputPath(dir, major, module, ext string) string {
	return filepath.Join(dir, major, module+"."+ext)
}

// LoadPrelude reads the additions file. A missing file falls back to the
// built-in prelude with a warning.
func LoadPrelude(path string, log *zap.SugaredLogger) (string, error) {
	log = logger.OrNop(log)
	if path == "" {
		return python.DefaultPrelude, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Warnw("Additions file not found, using built-in prelude", logger.FieldFile, path)
		return python.DefaultPrelude, nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read additions file %s", path)
	}
	return string(data), nil
}
