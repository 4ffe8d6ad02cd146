package engine

import (
	"context"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/mdrender/hooks"
	"git.home.luguber.info/inful/mdrender/options"
)

// codeBlockRenderer renders fenced code blocks with the adapter semantics:
// GitHub-style pre lang attributes, full info strings, the default info
// string fallback, and the host-mode syntax highlighter.
type codeBlockRenderer struct {
	ctx  context.Context
	opts *options.Options
	hl   *hooks.SyntaxHighlighterAdapter
}

func newCodeBlockRenderer(ctx context.Context, opts *options.Options, hl *hooks.SyntaxHighlighterAdapter) renderer.NodeRenderer {
	return &codeBlockRenderer{ctx: ctx, opts: opts, hl: hl}
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(gast.KindFencedCodeBlock, r.render)
}

func (r *codeBlockRenderer) render(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return gast.WalkContinue, nil
	}
	n := node.(*gast.FencedCodeBlock)

	info := ""
	if n.Info != nil {
		info = string(n.Info.Segment.Value(source))
	}
	lang, meta, _ := strings.Cut(info, " ")
	if lang == "" {
		lang = r.opts.Parse.DefaultInfoString.UnwrapOr("")
	}

	r.writePreTag(w, lang)
	r.writeCodeTag(w, lang, strings.TrimSpace(meta))

	code := collectLines(n, source)
	if r.hl.HasHighlight() {
		var langArg *string
		if lang != "" {
			langArg = &lang
		}
		if out, ok := r.hl.Highlight(r.ctx, code, langArg); ok {
			_, _ = w.WriteString(out)
		}
		// A failing highlighter contributes nothing; the block stays empty.
		return gast.WalkContinue, nil
	}
	_, _ = w.WriteString(escapeHTML(code))
	return gast.WalkContinue, nil
}

func (r *codeBlockRenderer) writePreTag(w util.BufWriter, lang string) {
	var attrs []hooks.Attribute
	if r.opts.Render.GithubPreLang && lang != "" {
		attrs = append(attrs, hooks.Attribute{Name: "lang", Value: lang})
	}
	if r.hl.HasPre() {
		if out, ok := r.hl.PreTag(r.ctx, attrs); ok {
			_, _ = w.WriteString(out)
		}
		return
	}
	_, _ = w.WriteString("<pre")
	writeAttrs(w, attrs)
	_ = w.WriteByte('>')
}

func (r *codeBlockRenderer) writeCodeTag(w util.BufWriter, lang, meta string) {
	var attrs []hooks.Attribute
	if !r.opts.Render.GithubPreLang && lang != "" {
		attrs = append(attrs, hooks.Attribute{Name: "class", Value: "language-" + lang})
	}
	if r.opts.Render.FullInfoString && meta != "" {
		attrs = append(attrs, hooks.Attribute{Name: "data-meta", Value: meta})
	}
	if r.hl.HasCode() {
		if out, ok := r.hl.CodeTag(r.ctx, attrs); ok {
			_, _ = w.WriteString(out)
		}
		return
	}
	_, _ = w.WriteString("<code")
	writeAttrs(w, attrs)
	_ = w.WriteByte('>')
}

func writeAttrs(w util.BufWriter, attrs []hooks.Attribute) {
	for _, a := range attrs {
		_ = w.WriteByte(' ')
		_, _ = w.WriteString(a.Name)
		_, _ = w.WriteString(`="`)
		_, _ = w.WriteString(escapeHTML(a.Value))
		_ = w.WriteByte('"')
	}
}

func collectLines(n gast.Node, source []byte) string {
	var sb strings.Builder
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
