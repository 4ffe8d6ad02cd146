package mdrender

import (
	"context"
	"time"

	gast "github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/mdrender/hooks"
	"git.home.luguber.info/inful/mdrender/internal/engine"
	"git.home.luguber.info/inful/mdrender/internal/metrics"
	"git.home.luguber.info/inful/mdrender/internal/observability"
	"git.home.luguber.info/inful/mdrender/options"
	"git.home.luguber.info/inful/mdrender/wire"
)

// Hooks bundles the host callables an entry point may attach. Every field is
// optional. Hooks passed here win over callables carried inside the options
// value.
type Hooks = hooks.Set

// Node is one node of the host-visible AST.
type Node = wire.Node

// Output format labels, also used for metrics and log attribution.
const (
	formatHTML       = "html"
	formatXML        = "xml"
	formatCommonmark = "commonmark"
)

// MarkdownToHTML renders Markdown source to HTML.
func MarkdownToHTML(src string, opts any, hk *Hooks) (string, error) {
	return renderText(src, opts, hk, formatHTML)
}

// MarkdownToXML renders Markdown source to a CommonMark-style XML document.
func MarkdownToXML(src string, opts any, hk *Hooks) (string, error) {
	return renderText(src, opts, hk, formatXML)
}

// MarkdownToCommonmark normalizes Markdown source back to CommonMark text.
func MarkdownToCommonmark(src string, opts any, hk *Hooks) (string, error) {
	return renderText(src, opts, hk, formatCommonmark)
}

// ParseDocument parses Markdown source and returns the host-visible AST.
// The tree round-trips: handing it to a Format entry point with the same
// options produces the same output as the matching MarkdownTo entry point.
func ParseDocument(src string, opts any, hk *Hooks) (*Node, error) {
	ctx := observability.NewRenderContext(context.Background(), "ast")
	o, eng, err := setup(ctx, opts, hk)
	if err != nil {
		return nil, err
	}
	root, source := eng.Parse([]byte(src))
	tree, err := wire.Encode(root, source, o.Render.Sourcepos)
	if err != nil {
		return nil, renderError("ast", err)
	}
	return tree, nil
}

// FormatHTML renders a host-visible AST to HTML.
func FormatHTML(ast *Node, opts any, hk *Hooks) (string, error) {
	return renderAST(ast, opts, hk, formatHTML)
}

// FormatXML renders a host-visible AST to a CommonMark-style XML document.
func FormatXML(ast *Node, opts any, hk *Hooks) (string, error) {
	return renderAST(ast, opts, hk, formatXML)
}

// FormatCommonmark serializes a host-visible AST to CommonMark text.
func FormatCommonmark(ast *Node, opts any, hk *Hooks) (string, error) {
	return renderAST(ast, opts, hk, formatCommonmark)
}

func renderText(src string, opts any, hk *Hooks, format string) (string, error) {
	ctx := observability.NewRenderContext(context.Background(), format)
	start := time.Now()
	_, eng, err := setup(ctx, opts, hk)
	if err != nil {
		metrics.Default().IncRenderOutcome(format, metrics.OutcomeError)
		return "", err
	}
	root, source := eng.Parse([]byte(src))
	return finish(ctx, eng, root, source, format, start)
}

func renderAST(ast *Node, opts any, hk *Hooks, format string) (string, error) {
	ctx := observability.NewRenderContext(context.Background(), format)
	start := time.Now()
	_, eng, err := setup(ctx, opts, hk)
	if err != nil {
		metrics.Default().IncRenderOutcome(format, metrics.OutcomeError)
		return "", err
	}
	root, source, err := wire.Decode(ast)
	if err != nil {
		metrics.Default().IncRenderOutcome(format, metrics.OutcomeError)
		return "", deserializeError(err)
	}
	if format == formatXML {
		// The decoded AST references a synthetic buffer with no line
		// structure; render from the tree so its stored source ranges
		// survive.
		return finishXMLTree(ctx, eng, ast, start)
	}
	return finish(ctx, eng, root, source, format, start)
}

func finishXMLTree(ctx context.Context, eng *engine.Engine, tree *Node, start time.Time) (string, error) {
	ctx = observability.WithStage(ctx, "render")
	out := eng.RenderXMLTree(tree)
	rec := metrics.Default()
	rec.ObserveRenderDuration(formatXML, time.Since(start))
	rec.IncRenderOutcome(formatXML, metrics.OutcomeSuccess)
	observability.DebugContext(ctx, "render complete")
	return out, nil
}

// setup decodes the options value and builds the per-call engine.
func setup(ctx context.Context, opts any, hk *Hooks) (*options.Options, *engine.Engine, error) {
	o, err := options.Decode(opts)
	if err != nil {
		return nil, nil, decodeError(err)
	}
	return o, engine.New(ctx, o, hk), nil
}

func finish(ctx context.Context, eng *engine.Engine, root gast.Node, source []byte, format string, start time.Time) (string, error) {
	ctx = observability.WithStage(ctx, "render")
	var out string
	var err error
	switch format {
	case formatXML:
		out, err = eng.RenderXML(root, source)
	case formatCommonmark:
		out, err = eng.RenderCommonmark(root, source)
	default:
		out, err = eng.RenderHTML(root, source)
	}
	rec := metrics.Default()
	rec.ObserveRenderDuration(format, time.Since(start))
	if err != nil {
		rec.IncRenderOutcome(format, metrics.OutcomeError)
		return "", renderError(format, err)
	}
	rec.IncRenderOutcome(format, metrics.OutcomeSuccess)
	observability.DebugContext(ctx, "render complete")
	return out, nil
}
