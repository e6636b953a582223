package docs

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"golang.org/x/text/cases"

	"github.com/teranos/fbstubs/errors"
)

// TocNode is one entry of the vendor table of contents.
type TocNode struct {
	Title    string     `json:"ttl"`
	Link     string     `json:"ln"`
	Children []*TocNode `json:"children"`
}

// titleSuffixes are dropped when turning a ToC title into an entity name.
var titleSuffixes = []string{
	" Class Reference",
	" Struct Reference",
	" Namespace Reference",
	" Module Reference",
}

// Toc maps entity names to documentation page URLs.
type Toc struct {
	prefix string
	links  map[string]string
	folded map[string]string
	names  []string
}

// ParseToc decodes a ToC document. Relative links are resolved against base.
// The root is either an array of nodes or an object with a "books" array.
func ParseToc(data []byte, base, prefix string) (*Toc, error) {
	var roots []*TocNode
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &roots); err != nil {
			return nil, errors.Wrap(err, "decode toc array")
		}
	} else {
		var doc struct {
			Books []*TocNode `json:"books"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, errors.Wrap(err, "decode toc object")
		}
		roots = doc.Books
	}

	var baseURL *url.URL
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid base URL %q", base)
		}
		baseURL = u
	}

	t := &Toc{
		prefix: prefix,
		links:  make(map[string]string),
		folded: make(map[string]string),
	}
	fold := cases.Fold()

	var walk func(nodes []*TocNode)
	walk = func(nodes []*TocNode) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			name := NormalizeTitle(n.Title)
			if name != "" && n.Link != "" {
				if _, seen := t.links[name]; !seen {
					link := resolveLink(baseURL, n.Link)
					t.links[name] = link
					t.names = append(t.names, name)
					if key := fold.String(name); t.folded[key] == "" {
						t.folded[key] = link
					}
				}
			}
			walk(n.Children)
		}
	}
	walk(roots)

	return t, nil
}

func resolveLink(base *url.URL, link string) string {
	if base == nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}

// NormalizeTitle turns "pyfbsdk.FBModel Class Reference" into "FBModel".
func NormalizeTitle(title string) string {
	name := strings.TrimSpace(title)
	for _, suffix := range titleSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSpace(strings.TrimSuffix(name, suffix))
			break
		}
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Lookup returns the page URL for name: exact match first, then with the
// project prefix prepended ("Model" → "FBModel"), then case-insensitively.
func (t *Toc) Lookup(name string) (string, bool) {
	if t == nil || name == "" {
		return "", false
	}
	if link, ok := t.links[name]; ok {
		return link, true
	}
	if t.prefix != "" && !strings.HasPrefix(name, t.prefix) {
		if link, ok := t.links[t.prefix+name]; ok {
			return link, true
		}
	}
	link, ok := t.folded[cases.Fold().String(name)]
	return link, ok
}

// Names returns the entity names in document order.
func (t *Toc) Names() []string {
	if t == nil {
		return nil
	}
	return t.names
}

// Len returns the number of distinct entries.
func (t *Toc) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}
