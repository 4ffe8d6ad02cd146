package engine

import (
	"regexp"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/mdrender/options"
)

// rawHTMLRenderer applies the raw HTML policy to inline raw HTML and HTML
// blocks. Unsafe output passes through (minus filtered tags), escape mode
// entity-escapes the markup, and otherwise a placeholder comment is emitted.
type rawHTMLRenderer struct {
	opts *options.Options
}

func newRawHTMLRenderer(opts *options.Options) renderer.NodeRenderer {
	return &rawHTMLRenderer{opts: opts}
}

func (r *rawHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(gast.KindRawHTML, r.renderInline)
	reg.Register(gast.KindHTMLBlock, r.renderBlock)
}

func (r *rawHTMLRenderer) renderInline(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkSkipChildren, nil
	}
	n := node.(*gast.RawHTML)
	var sb strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		sb.Write(seg.Value(source))
	}
	r.write(w, sb.String())
	return gast.WalkSkipChildren, nil
}

func (r *rawHTMLRenderer) renderBlock(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkContinue, nil
	}
	n := node.(*gast.HTMLBlock)
	var sb strings.Builder
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		sb.Write(seg.Value(source))
	}
	if n.HasClosure() {
		sb.Write(n.ClosureLine.Value(source))
	}
	switch {
	case r.opts.Render.Unsafe, r.opts.Render.Escape:
		r.write(w, sb.String())
	default:
		_, _ = w.WriteString("<!-- raw HTML omitted -->\n")
	}
	return gast.WalkContinue, nil
}

func (r *rawHTMLRenderer) write(w util.BufWriter, raw string) {
	switch {
	case r.opts.Render.Unsafe:
		if r.opts.Extension.Tagfilter {
			raw = filterTags(raw)
		}
		_, _ = w.WriteString(raw)
	case r.opts.Render.Escape:
		_, _ = w.WriteString(escapeHTML(raw))
	default:
		_, _ = w.WriteString("<!-- raw HTML omitted -->")
	}
}

// filteredTag matches opening and closing forms of the tags the GFM
// tagfilter extension disallows in raw HTML.
var filteredTag = regexp.MustCompile(`(?i)<(/?)(title|textarea|style|xmp|iframe|noembed|noframes|script|plaintext)([\t\n\f\r />])`)

func filterTags(raw string) string {
	return filteredTag.ReplaceAllString(raw, "&lt;$1$2$3")
}
