package docs

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/logger"
	"github.com/teranos/fbstubs/stub/typemap"
)

// RecordKind classifies a documented member.
type RecordKind int

const (
	KindFunction RecordKind = iota
	KindMethod
	KindProperty
	KindEnum
	KindEnumMember
)

func (k RecordKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindProperty:
		return "property"
	case KindEnum:
		return "enum"
	case KindEnumMember:
		return "enum-member"
	default:
		return "unknown"
	}
}

// Callable reports whether records of this kind carry a parameter list.
func (k RecordKind) Callable() bool {
	return k == KindFunction || k == KindMethod
}

// DocParam is one documented parameter. Type and Default are native text.
type DocParam struct {
	Type       string
	Name       string
	Default    string
	HasDefault bool
}

// Record is one documented member of a page.
type Record struct {
	Name       string
	Kind       RecordKind
	Params     []DocParam
	Return     string
	Doc        string
	Deprecated bool
	Static     bool
}

// Page is a parsed reference page.
type Page struct {
	URL         string
	Description string
	Records     []Record
}

// Find returns the records named name, in page order.
func (p *Page) Find(name string) []Record {
	if p == nil {
		return nil
	}
	var out []Record
	for _, r := range p.Records {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

type parseState int

const (
	stateIdle parseState = iota
	stateInItem
	stateInNameCell
	stateInParamTypesCell
	stateInParamNamesCell
	stateInDocBlock
	stateInFieldName
	stateInFieldDoc
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// item accumulates the cells of one memitem block.
type item struct {
	name       strings.Builder
	types      []string
	names      []string
	doc        strings.Builder
	label      strings.Builder
	paren      bool
	deprecated bool
	static     bool
}

type pageParser struct {
	logger *zap.SugaredLogger
	page   *Page

	state parseState
	depth int

	itemDepth  int
	docDepth   int
	cellDepth  int
	labelDepth int
	skipDepth  int
	descDepth  int

	cell      strings.Builder
	fieldName string
	cur       *item
	desc      strings.Builder
	haveDesc  bool
}

// ParsePage streams a Doxygen-style HTML page and returns its member records.
// Malformed member blocks are dropped with a warning; only read errors fail.
func ParsePage(r io.Reader, log *zap.SugaredLogger) (*Page, error) {
	p := &pageParser{logger: logger.OrNop(log), page: &Page{}}
	z := html.NewTokenizer(r)

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, errors.Wrap(err, "tokenize page")
			}
			p.flushItem()
			p.page.Description = cleanText(p.desc.String())
			return p.page, nil
		case html.StartTagToken:
			tok := z.Token()
			if voidElements[tok.Data] {
				p.text("\n", tok.Data == "br")
				continue
			}
			p.depth++
			p.start(tok)
		case html.SelfClosingTagToken:
			tok := z.Token()
			p.text("\n", tok.Data == "br")
		case html.EndTagToken:
			tok := z.Token()
			if voidElements[tok.Data] {
				continue
			}
			p.end(tok.Data)
			if p.depth > 0 {
				p.depth--
			}
		case html.TextToken:
			p.text(string(z.Text()), true)
		}
	}
}

func classes(tok html.Token) []string {
	for _, a := range tok.Attr {
		if a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}

func hasClass(tok html.Token, want string) bool {
	for _, c := range classes(tok) {
		if c == want {
			return true
		}
	}
	return false
}

func (p *pageParser) start(tok html.Token) {
	switch p.state {
	case stateIdle:
		switch {
		case tok.Data == "div" && hasClass(tok, "memitem"):
			p.beginItem()
		case tok.Data == "div" && hasClass(tok, "textblock") && !p.haveDesc && p.descDepth == 0:
			p.descDepth = p.depth
		}

	case stateInItem:
		switch {
		case tok.Data == "div" && hasClass(tok, "memitem"):
			// previous block never closed
			p.flushItem()
			p.beginItem()
		case tok.Data == "td" && hasClass(tok, "memname"):
			p.enterCell(stateInNameCell)
		case tok.Data == "td" && hasClass(tok, "paramtype"):
			p.enterCell(stateInParamTypesCell)
		case tok.Data == "td" && hasClass(tok, "paramname"):
			p.enterCell(stateInParamNamesCell)
		case hasClass(tok, "mlabel") && p.labelDepth == 0:
			p.labelDepth = p.depth
			p.cur.label.Reset()
		case tok.Data == "div" && hasClass(tok, "memdoc"):
			p.state = stateInDocBlock
			p.docDepth = p.depth
		}

	case stateInDocBlock:
		switch {
		case tok.Data == "td" && hasClass(tok, "fieldname"):
			p.enterCell(stateInFieldName)
		case tok.Data == "td" && hasClass(tok, "fielddoc"):
			p.enterCell(stateInFieldDoc)
		case hasClass(tok, "deprecated"):
			p.cur.deprecated = true
		case p.skipDepth == 0 && (tok.Data == "dl" && hasClass(tok, "params") || tok.Data == "table" && hasClass(tok, "fieldtable")):
			p.skipDepth = p.depth
		case tok.Data == "p" || tok.Data == "li" || tok.Data == "dt" || tok.Data == "dd":
			p.text("\n", true)
		}
	}
}

func (p *pageParser) end(tag string) {
	d := p.depth

	switch p.state {
	case stateIdle:
		if p.descDepth != 0 && d == p.descDepth {
			p.descDepth = 0
			p.haveDesc = true
		}
		return

	case stateInNameCell, stateInParamTypesCell, stateInParamNamesCell, stateInFieldName, stateInFieldDoc:
		if d == p.cellDepth {
			p.closeCell()
		}
		return

	case stateInDocBlock:
		if p.skipDepth != 0 && d == p.skipDepth {
			p.skipDepth = 0
		}
		if d == p.docDepth {
			p.state = stateInItem
		}
		if tag == "p" {
			p.text("\n", true)
		}

	case stateInItem:
		if p.labelDepth != 0 && d == p.labelDepth {
			p.labelDepth = 0
			switch strings.ToLower(strings.TrimSpace(p.cur.label.String())) {
			case "static":
				p.cur.static = true
			case "deprecated":
				p.cur.deprecated = true
			}
		}
		if d == p.itemDepth {
			p.flushItem()
			p.state = stateIdle
		}
	}
}

func (p *pageParser) text(s string, accept bool) {
	if !accept {
		return
	}
	s = strings.ReplaceAll(s, "\u00a0", " ")

	switch p.state {
	case stateIdle:
		if p.descDepth != 0 {
			p.desc.WriteString(s)
		}
	case stateInItem:
		if p.labelDepth != 0 {
			p.cur.label.WriteString(s)
		} else if strings.Contains(s, "(") {
			p.cur.paren = true
		}
	case stateInNameCell, stateInParamTypesCell, stateInParamNamesCell, stateInFieldName, stateInFieldDoc:
		p.cell.WriteString(s)
	case stateInDocBlock:
		if p.skipDepth == 0 {
			p.cur.doc.WriteString(s)
		}
	}
}

func (p *pageParser) beginItem() {
	p.state = stateInItem
	p.itemDepth = p.depth
	p.labelDepth = 0
	p.skipDepth = 0
	p.cur = &item{}
}

func (p *pageParser) enterCell(s parseState) {
	p.state = s
	p.cellDepth = p.depth
	p.cell.Reset()
}

func (p *pageParser) closeCell() {
	text := strings.TrimSpace(p.cell.String())
	p.cell.Reset()

	switch p.state {
	case stateInNameCell:
		p.cur.name.WriteString(text)
		p.state = stateInItem
	case stateInParamTypesCell:
		if text != "" {
			p.cur.types = append(p.cur.types, text)
		}
		p.state = stateInItem
	case stateInParamNamesCell:
		for _, name := range typemap.SplitTopLevel(text) {
			if name != "" {
				p.cur.names = append(p.cur.names, name)
			}
		}
		p.state = stateInItem
	case stateInFieldName:
		p.fieldName = text
		p.state = stateInDocBlock
	case stateInFieldDoc:
		if p.fieldName != "" {
			p.page.Records = append(p.page.Records, Record{
				Name: p.fieldName,
				Kind: KindEnumMember,
				Doc:  cleanText(text),
			})
		}
		p.fieldName = ""
		p.state = stateInDocBlock
	}
}

// flushItem turns the accumulated memitem into a Record.
func (p *pageParser) flushItem() {
	it := p.cur
	p.cur = nil
	if it == nil {
		return
	}

	rec, ok := parseNameCell(it.name.String())
	if !ok {
		return
	}
	rec.Static = rec.Static || it.static
	rec.Deprecated = it.deprecated

	doc := cleanText(it.doc.String())
	if lower := strings.ToLower(doc); strings.HasPrefix(lower, "[deprecated]") {
		rec.Deprecated = true
		doc = strings.TrimSpace(doc[len("[deprecated]"):])
	}
	rec.Doc = doc

	types := it.types
	if len(types) == 1 && types[0] == "void" && len(it.names) == 0 {
		types = nil
	}

	callable := it.paren || rec.paren || len(types) > 0 || len(it.names) > 0
	if rec.Kind != KindEnum {
		switch {
		case callable && rec.qualified:
			rec.Kind = KindMethod
		case callable:
			rec.Kind = KindFunction
		default:
			rec.Kind = KindProperty
		}
	}

	if callable {
		if len(types) != len(it.names) {
			p.logger.Warnw("Discarding documented member with unequal parameter cells",
				logger.FieldMember, rec.Name,
				"types", len(types),
				"names", len(it.names),
			)
			return
		}
		rec.Params = make([]DocParam, 0, len(types))
		for i, typ := range types {
			rec.Params = append(rec.Params, parseParamName(typ, it.names[i]))
		}
	}

	p.page.Records = append(p.page.Records, rec.Record)
}

type nameCell struct {
	Record
	paren     bool
	qualified bool
}

// parseNameCell splits "static const FBVector3d & pyfbsdk.FBModel.GetVector"
// into return type and bare name.
func parseNameCell(cell string) (nameCell, bool) {
	var nc nameCell
	cell = strings.TrimSpace(cell)
	if i := strings.IndexByte(cell, '('); i >= 0 {
		nc.paren = true
		cell = strings.TrimSpace(cell[:i])
	}

	var kept []string
	for _, tok := range strings.Fields(cell) {
		switch tok {
		case "static":
			nc.Static = true
		case "virtual", "inline", "def", "explicit":
		case "enum":
			nc.Kind = KindEnum
		default:
			kept = append(kept, tok)
		}
	}
	if len(kept) == 0 {
		return nc, false
	}

	name := kept[len(kept)-1]
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
		nc.qualified = true
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		// module.Class.member; a single dot is a module-level function
		nc.qualified = nc.qualified || strings.Count(name, ".") > 1
		name = name[i+1:]
	}
	if name == "" {
		return nc, false
	}

	nc.Name = name
	nc.Return = strings.Join(kept[:len(kept)-1], " ")
	return nc, true
}

func parseParamName(typ, raw string) DocParam {
	param := DocParam{Type: typ, Name: raw}
	if i := strings.IndexByte(raw, '='); i >= 0 {
		param.Name = strings.TrimSpace(raw[:i])
		param.Default = strings.TrimSpace(raw[i+1:])
		param.HasDefault = param.Default != ""
	}
	return param
}

// cleanText trims trailing blanks from every line, collapses runs of blank
// lines and trims the result.
func cleanText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if len(out) > 0 {
				blank = true
			}
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, strings.TrimLeft(line, " \t"))
	}
	return strings.Join(out, "\n")
}
