// Package docs reads the vendor's HTML API reference: a JSON table of
// contents mapping entity names to pages, and Doxygen-style pages holding
// per-member signatures and prose.
//
// Every failure here is recoverable. A missing ToC, an unreachable page or an
// unparseable page is logged and treated as "no documentation".
package docs

import (
	"bytes"
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/fbstubs/internal/httpclient"
	"github.com/teranos/fbstubs/logger"
)

// DefaultConcurrency bounds parallel page prefetches.
const DefaultConcurrency = 4

// Options locates the reference for one vendor version.
type Options struct {
	TocURL        string
	BaseURL       string // relative ToC links resolve against this, else TocURL
	ProjectPrefix string
	ModulePage    string // ToC name or URL of the page listing free functions
	Concurrency   int
}

// Index owns the ToC and every page parsed during one generation.
// It is safe for concurrent use.
type Index struct {
	fetcher httpclient.Fetcher
	opts    Options
	logger  *zap.SugaredLogger

	tocOnce sync.Once
	toc     *Toc

	mu    sync.Mutex
	pages map[string]*pageEntry
}

type pageEntry struct {
	once sync.Once
	page *Page
}

// NewIndex creates an index that fetches through fetcher.
func NewIndex(fetcher httpclient.Fetcher, opts Options, log *zap.SugaredLogger) *Index {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Index{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger.OrNop(log),
		pages:   make(map[string]*pageEntry),
	}
}

// Toc loads the table of contents on first use. A failed load yields an empty
// ToC; it is not retried.
func (ix *Index) Toc(ctx context.Context) *Toc {
	ix.tocOnce.Do(func() {
		ix.toc = ix.loadToc(ctx)
	})
	return ix.toc
}

func (ix *Index) loadToc(ctx context.Context) *Toc {
	empty := &Toc{links: map[string]string{}, folded: map[string]string{}}
	if ix.opts.TocURL == "" {
		return empty
	}

	data, err := ix.fetcher.Fetch(ctx, ix.opts.TocURL)
	if err != nil {
		ix.logger.Warnw("Documentation ToC unavailable",
			logger.FieldURL, ix.opts.TocURL,
			logger.FieldError, err.Error(),
		)
		return empty
	}

	base := ix.opts.BaseURL
	if base == "" {
		base = ix.opts.TocURL
	}
	toc, err := ParseToc(data, base, ix.opts.ProjectPrefix)
	if err != nil {
		ix.logger.Warnw("Documentation ToC unparseable",
			logger.FieldURL, ix.opts.TocURL,
			logger.FieldError, err.Error(),
		)
		return empty
	}

	ix.logger.Debugw("Loaded documentation ToC",
		logger.FieldURL, ix.opts.TocURL,
		logger.FieldCount, toc.Len(),
	)
	return toc
}

// Resolve returns the page URL documenting name.
func (ix *Index) Resolve(ctx context.Context, name string) (string, bool) {
	return ix.Toc(ctx).Lookup(name)
}

// Page returns the parsed page documenting name.
func (ix *Index) Page(ctx context.Context, name string) (*Page, bool) {
	link, ok := ix.Resolve(ctx, name)
	if !ok {
		return nil, false
	}
	return ix.PageAt(ctx, link)
}

// ModulePage returns the page listing the module's free functions.
func (ix *Index) ModulePage(ctx context.Context) (*Page, bool) {
	name := ix.opts.ModulePage
	if name == "" {
		return nil, false
	}
	if link, ok := ix.Resolve(ctx, name); ok {
		return ix.PageAt(ctx, link)
	}

	link := name
	base := ix.opts.BaseURL
	if base == "" {
		base = ix.opts.TocURL
	}
	if b, err := url.Parse(base); err == nil && base != "" {
		if ref, err := url.Parse(name); err == nil {
			link = b.ResolveReference(ref).String()
		}
	}
	return ix.PageAt(ctx, link)
}

// PageAt fetches and parses the page at rawURL once per URL, ignoring the
// fragment.
func (ix *Index) PageAt(ctx context.Context, rawURL string) (*Page, bool) {
	key := httpclient.StripFragment(rawURL)

	ix.mu.Lock()
	entry, ok := ix.pages[key]
	if !ok {
		entry = &pageEntry{}
		ix.pages[key] = entry
	}
	ix.mu.Unlock()

	entry.once.Do(func() {
		entry.page = ix.loadPage(ctx, key)
	})
	return entry.page, entry.page != nil
}

func (ix *Index) loadPage(ctx context.Context, pageURL string) *Page {
	data, err := ix.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		ix.logger.Warnw("Documentation page unavailable",
			logger.FieldURL, pageURL,
			logger.FieldError, err.Error(),
		)
		return nil
	}

	page, err := ParsePage(bytes.NewReader(data), ix.logger)
	if err != nil {
		ix.logger.Warnw("Documentation page unparseable",
			logger.FieldURL, pageURL,
			logger.FieldError, err.Error(),
		)
		return nil
	}
	page.URL = pageURL

	ix.logger.Debugw("Parsed documentation page",
		logger.FieldPage, pageURL,
		logger.FieldRecords, len(page.Records),
	)
	return page
}

// Lookup returns the records for member on the page documenting entity.
func (ix *Index) Lookup(ctx context.Context, entity, member string) []Record {
	page, ok := ix.Page(ctx, entity)
	if !ok {
		return nil
	}
	return page.Find(member)
}

// Prefetch loads the pages of names concurrently, bounded by
// Options.Concurrency. Pages are then served from memory by Page and Lookup.
// Only context cancellation is reported.
func (ix *Index) Prefetch(ctx context.Context, names []string) error {
	toc := ix.Toc(ctx)

	seen := make(map[string]bool)
	var links []string
	for _, name := range names {
		link, ok := toc.Lookup(name)
		if !ok {
			continue
		}
		link = httpclient.StripFragment(link)
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.Concurrency)
	for _, link := range links {
		link := link
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ix.PageAt(gctx, link)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ix.logger.Debugw("Prefetched documentation pages", logger.FieldCount, len(links))
	return ctx.Err()
}
