package engine

import (
	"context"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/mdrender/hooks"
	"git.home.luguber.info/inful/mdrender/wire"
)

// headingRenderer hands heading tag emission over to a host adapter. The
// adapter's enter output replaces the opening tag, its exit output the
// closing tag; the heading body in between renders normally.
type headingRenderer struct {
	ctx       context.Context
	adapter   *hooks.HeadingAdapter
	sourcepos bool
	lines     func() *wire.LineIndex
}

func newHeadingRenderer(ctx context.Context, adapter *hooks.HeadingAdapter, sourcepos bool, lines func() *wire.LineIndex) renderer.NodeRenderer {
	return &headingRenderer{ctx: ctx, adapter: adapter, sourcepos: sourcepos, lines: lines}
}

func (r *headingRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(gast.KindHeading, r.render)
}

func (r *headingRenderer) render(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	n := node.(*gast.Heading)
	meta := hooks.HeadingMeta{
		Level:   n.Level,
		Content: textContent(n, source),
	}
	if entering {
		if out, ok := r.adapter.Enter(r.ctx, meta, r.headingPos(n)); ok {
			_, _ = w.WriteString(out)
		}
		return gast.WalkContinue, nil
	}
	if out, ok := r.adapter.Exit(r.ctx, meta); ok {
		_, _ = w.WriteString(out)
	}
	return gast.WalkContinue, nil
}

func (r *headingRenderer) headingPos(n *gast.Heading) *hooks.Sourcepos {
	if !r.sourcepos {
		return nil
	}
	idx := r.lines()
	if idx == nil {
		return nil
	}
	return wire.BlockSourcepos(n, idx)
}

// textContent flattens a node's inline text, the way heading anchors do.
func textContent(n gast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gast.Text:
			sb.Write(t.Segment.Value(source))
		case *gast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(textContent(c, source))
		}
	}
	return sb.String()
}
