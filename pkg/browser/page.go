package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/kataras/markup-extractor/pkg/css"
	"github.com/kataras/markup-extractor/pkg/dom"
)

// Page is a loaded tab. It implements dom.Document.
type Page struct {
	page  *rod.Page
	url   string
	title string
}

var _ dom.Document = (*Page)(nil)

func (p *Page) URL() string   { return p.url }
func (p *Page) Title() string { return p.title }

func (p *Page) loadInfo() error {
	var info struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	}
	if err := evalJSON(p.page.Eval, &info, `() => JSON.stringify({url: location.href, title: document.title})`); err != nil {
		return fmt.Errorf("browser: page info: %w", err)
	}
	p.url, p.title = info.URL, info.Title
	return nil
}

// Query returns the first element matching selector.
func (p *Page) Query(selector string) (*Element, error) {
	found, el, err := p.page.Has(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: query %q: %w", selector, err)
	}
	if !found {
		return nil, fmt.Errorf("browser: no element matches %q", selector)
	}
	return p.wrap(el)
}

// Body returns the <body> element.
func (p *Page) Body() (*Element, error) { return p.Query("body") }

// HTML returns the serialized document.
func (p *Page) HTML() (string, error) {
	res, err := p.page.Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: document html: %w", err)
	}
	return res.Value.Str(), nil
}

func (p *Page) close() error { return p.page.Close() }

// sheetInfo is the JSON shape produced by styleSheetsJS.
type sheetInfo struct {
	Href  string `json:"href"`
	Error string `json:"error"`
	Media []struct {
		Query string `json:"query"`
		Rules []struct {
			Selector string `json:"selector"`
			Style    string `json:"style"`
		} `json:"rules"`
	} `json:"media"`
}

// Reading cssRules of a cross-origin sheet throws a SecurityError.
const styleSheetsJS = `() => JSON.stringify(Array.from(document.styleSheets).map(s => {
	const out = {href: s.href || "", error: "", media: []};
	try {
		for (const r of s.cssRules) {
			if (!(r instanceof CSSMediaRule)) continue;
			const block = {query: r.media.mediaText, rules: []};
			for (const c of r.cssRules) {
				if (c instanceof CSSStyleRule) block.rules.push({selector: c.selectorText, style: c.style.cssText});
			}
			out.media.push(block);
		}
	} catch (e) {
		out.error = String(e);
	}
	return out;
}))`

func (p *Page) StyleSheets() ([]dom.StyleSheet, error) {
	var infos []sheetInfo
	if err := evalJSON(p.page.Eval, &infos, styleSheetsJS); err != nil {
		return nil, fmt.Errorf("browser: stylesheets: %w", err)
	}
	sheets := make([]dom.StyleSheet, 0, len(infos))
	for _, info := range infos {
		sheets = append(sheets, newSheet(info))
	}
	return sheets, nil
}

type sheet struct {
	href   string
	blocks []css.MediaBlock
	err    error
}

func newSheet(info sheetInfo) *sheet {
	s := &sheet{href: info.Href}
	if info.Error != "" {
		s.err = fmt.Errorf("%s: %w", info.Error, dom.ErrInaccessible)
		return s
	}
	for _, m := range info.Media {
		block := css.MediaBlock{Query: m.Query}
		for _, r := range m.Rules {
			block.Rules = append(block.Rules, css.Rule{
				Selector:     r.Selector,
				Declarations: css.ParseInline(r.Style),
			})
		}
		s.blocks = append(s.blocks, block)
	}
	return s
}

func (s *sheet) Href() string { return s.href }

func (s *sheet) MediaBlocks() ([]css.MediaBlock, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.blocks, nil
}
