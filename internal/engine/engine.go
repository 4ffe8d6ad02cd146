// Package engine is the façade over the goldmark Markdown engine: it builds
// a per-call pipeline from a decoded options record and an attached hook set,
// and exposes the three output formats over both source text and AST input.
//
// An Engine is created per entry-point call and owns everything the call
// allocates: parser context, AST, renderers. Nothing escapes the call, which
// stands in for the per-call arena of the adapter contract.
package engine

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	meta "github.com/yuin/goldmark-meta"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/goldmark/wikilink"

	"git.home.luguber.info/inful/mdrender/hooks"
	"git.home.luguber.info/inful/mdrender/options"
	"git.home.luguber.info/inful/mdrender/wire"
)

// Engine drives one entry-point call.
type Engine struct {
	ctx   context.Context
	opts  *options.Options
	hooks hooks.Set
	md    goldmark.Markdown

	lines *wire.LineIndex
}

// New builds the per-call pipeline. Hooks supplied positionally at the entry
// point win over hooks carried inside the options record.
func New(ctx context.Context, opts *options.Options, hk *hooks.Set) *Engine {
	eff := hooks.Set{}
	if hk != nil {
		eff = *hk
	}
	if eff.BrokenLink == nil {
		eff.BrokenLink = opts.Parse.BrokenLinkCallback
	}
	if eff.LinkRewriter == nil {
		eff.LinkRewriter = opts.Extension.LinkURLRewriter
	}
	if eff.ImageRewriter == nil {
		eff.ImageRewriter = opts.Extension.ImageURLRewriter
	}

	e := &Engine{ctx: ctx, opts: opts, hooks: eff}
	e.md = goldmark.New(e.goldmarkOptions()...)
	return e
}

func (e *Engine) goldmarkOptions() []goldmark.Option {
	x := e.opts.Extension
	var exts []goldmark.Extender
	if x.Table {
		exts = append(exts, extension.Table)
	}
	if x.Strikethrough {
		exts = append(exts, extension.Strikethrough)
	}
	if x.Autolink {
		exts = append(exts, extension.Linkify)
	}
	if x.Tasklist {
		exts = append(exts, extension.TaskList)
	}
	if x.Footnotes {
		exts = append(exts, extension.Footnote)
	}
	if x.DescriptionLists {
		exts = append(exts, extension.DefinitionList)
	}
	if e.opts.Parse.Smart {
		exts = append(exts, extension.Typographer)
	}
	if x.FrontMatterDelimiter.UnwrapOr("") == "---" {
		exts = append(exts, meta.Meta)
	}
	if x.WikilinksTitleAfterPipe || x.WikilinksTitleBeforePipe {
		exts = append(exts, &wikilink.Extender{})
	}
	if theme, ok := e.hooks.Highlighter.Theme(); ok {
		exts = append(exts, highlighting.NewHighlighting(highlighting.WithStyle(theme)))
	}

	var parserOpts []parser.Option
	if x.HeaderIDs.IsSome() {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}

	var rendererOpts []renderer.Option
	if e.opts.Render.Hardbreaks {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	if e.opts.Render.Unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	// Custom node renderers carry the option semantics goldmark does not
	// model directly. Priority below the built-in HTML renderer so they win.
	nodeRenderers := []util.PrioritizedValue{
		util.Prioritized(newRawHTMLRenderer(e.opts), 200),
	}
	if _, themed := e.hooks.Highlighter.Theme(); !themed {
		nodeRenderers = append(nodeRenderers,
			util.Prioritized(newCodeBlockRenderer(e.ctx, e.opts, e.hooks.Highlighter), 210))
	}
	if e.hooks.Heading != nil {
		nodeRenderers = append(nodeRenderers,
			util.Prioritized(newHeadingRenderer(e.ctx, e.hooks.Heading, e.opts.Render.Sourcepos, e.lineIndex), 220))
	}
	rendererOpts = append(rendererOpts, renderer.WithNodeRenderers(nodeRenderers...))

	return []goldmark.Option{
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(rendererOpts...),
	}
}

// lineIndex returns the index over the current parse's source, or nil for
// AST-input calls where no original source exists.
func (e *Engine) lineIndex() *wire.LineIndex {
	return e.lines
}

// Parse parses source text into the engine AST. The returned source is the
// byte slice the AST segments reference (front matter already stripped) and
// must accompany the root through rendering.
func (e *Engine) Parse(src []byte) (gast.Node, []byte) {
	src = e.stripFrontMatter(src)

	pctx := parser.NewContext()
	if e.hooks.BrokenLink != nil {
		for _, ref := range e.resolveBrokenLinks(src) {
			pctx.AddReference(ref)
		}
	}
	root := e.md.Parser().Parse(text.NewReader(src), parser.WithContext(pctx))

	e.lines = wire.NewLineIndex(src)
	if e.opts.Render.Sourcepos {
		annotateSourcepos(root, e.lines)
	}
	if prefix := e.opts.Extension.HeaderIDs.UnwrapOr(""); prefix != "" {
		prefixHeaderIDs(root, prefix)
	}
	e.rewriteURLs(root)
	return root, src
}

// stripFrontMatter removes a leading front matter block fenced by the
// configured delimiter. The "---" delimiter is handled by the goldmark-meta
// extension instead; any other delimiter is stripped here.
func (e *Engine) stripFrontMatter(src []byte) []byte {
	delim := e.opts.Extension.FrontMatterDelimiter.UnwrapOr("")
	if delim == "" || delim == "---" {
		return src
	}
	open := []byte(delim + "\n")
	if !bytes.HasPrefix(src, open) {
		return src
	}
	rest := src[len(open):]
	closing := []byte("\n" + delim + "\n")
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		return src
	}
	return rest[idx+len(closing):]
}

// rewriteURLs applies the link and image URL rewriters to every destination
// in document source order.
func (e *Engine) rewriteURLs(root gast.Node) {
	linkRW := hooks.NewURLRewriter("link", e.hooks.LinkRewriter)
	imageRW := hooks.NewURLRewriter("image", e.hooks.ImageRewriter)
	if e.hooks.LinkRewriter == nil && e.hooks.ImageRewriter == nil {
		return
	}
	_ = gast.Walk(root, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gast.Link:
			if e.hooks.LinkRewriter != nil {
				node.Destination = []byte(linkRW.Rewrite(e.ctx, string(node.Destination)))
			}
		case *gast.Image:
			if e.hooks.ImageRewriter != nil {
				node.Destination = []byte(imageRW.Rewrite(e.ctx, string(node.Destination)))
			}
		}
		return gast.WalkContinue, nil
	})
}

// RenderHTML renders the AST to HTML.
func (e *Engine) RenderHTML(root gast.Node, source []byte) (string, error) {
	var buf bytes.Buffer
	if err := e.md.Renderer().Render(&buf, source, root); err != nil {
		return "", fmt.Errorf("html render failed: %w", err)
	}
	return buf.String(), nil
}

// RenderXML renders the AST as a CommonMark-style XML document.
func (e *Engine) RenderXML(root gast.Node, source []byte) (string, error) {
	return renderXML(root, source, e.opts)
}

// RenderXMLTree renders a host-visible tree as a CommonMark-style XML
// document without re-encoding, keeping the tree's stored source ranges.
func (e *Engine) RenderXMLTree(tree *wire.Node) string {
	return renderXMLTree(tree, e.opts)
}

// RenderCommonmark serializes the AST back to CommonMark text.
func (e *Engine) RenderCommonmark(root gast.Node, source []byte) (string, error) {
	return renderCommonmark(e.ctx, root, source, e.opts)
}

// annotateSourcepos stamps block nodes with a data-sourcepos attribute in
// cmark notation (startline:startcol-endline:endcol).
func annotateSourcepos(root gast.Node, lines *wire.LineIndex) {
	_ = gast.Walk(root, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering || n.Type() == gast.TypeInline {
			return gast.WalkContinue, nil
		}
		switch n.(type) {
		case *gast.Heading, *gast.Paragraph, *gast.Blockquote, *gast.List:
		default:
			return gast.WalkContinue, nil
		}
		pos := wire.BlockSourcepos(n, lines)
		if pos == nil {
			return gast.WalkContinue, nil
		}
		start, end := pos.Start, pos.End
		n.SetAttributeString("data-sourcepos",
			[]byte(fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Column, end.Line, end.Column)))
		return gast.WalkContinue, nil
	})
}

// prefixHeaderIDs prepends the configured prefix to auto-generated heading
// anchors.
func prefixHeaderIDs(root gast.Node, prefix string) {
	_ = gast.Walk(root, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		if _, ok := n.(*gast.Heading); !ok {
			return gast.WalkContinue, nil
		}
		if id, ok := n.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				n.SetAttributeString("id", append([]byte(prefix), b...))
			}
		}
		return gast.WalkContinue, nil
	})
}
