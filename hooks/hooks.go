// Package hooks wraps host-supplied callables as engine-compatible rendering
// hooks: the syntax highlighter, the heading adapter, the broken-link
// resolver, and the URL rewriter.
//
// All adapters share one failure policy: a callable that returns an error,
// panics, or produces a non-conforming value is swallowed, and the engine
// proceeds as if the hook produced empty output (renderers) or no result
// (resolvers). Partial rendering of a document is more useful than total
// failure. Swallowed failures are counted and, when debug logging is on,
// reported at debug level (see SetDebugLogging at the module root).
//
// Adapters are cheap to copy (they hold function references) and are shared
// with the engine for the duration of one entry-point call. The library is
// single-threaded cooperative by contract of its host: adapters are never
// invoked from more than one goroutine within a call, and two concurrent
// entry-point calls never share an adapter instance.
package hooks

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/mdrender/internal/metrics"
	"git.home.luguber.info/inful/mdrender/internal/observability"
	"git.home.luguber.info/inful/mdrender/options"
	"git.home.luguber.info/inful/mdrender/wire"
)

// Attribute is an ordered tag attribute handed to pre/code tag callables.
type Attribute = wire.Attribute

// Sourcepos is the 1-based source range handed to the heading enter hook.
type Sourcepos = wire.Sourcepos

// HeadingMeta is the heading metadata serialized to the host in the heading
// enter/exit hooks.
type HeadingMeta struct {
	Level   int    `json:"level"`
	Content string `json:"content"`
}

// HighlightFunc highlights a fenced code block. Code comes first so hosts can
// bind the common no-language case without a placeholder argument; lang is
// nil when the fence has no info string.
type HighlightFunc func(code string, lang *string) (string, error)

// TagFunc renders an opening <pre> or <code> tag from ordered attributes.
type TagFunc func(attrs []Attribute) (string, error)

// HeadingEnterFunc runs once immediately before heading-body rendering.
// pos is non-nil only when the sourcepos render flag is set.
type HeadingEnterFunc func(meta HeadingMeta, pos *Sourcepos) (string, error)

// HeadingExitFunc runs once immediately after heading-body rendering.
type HeadingExitFunc func(meta HeadingMeta) (string, error)

// Set groups the optional hooks for one entry-point call.
type Set struct {
	Highlighter   *SyntaxHighlighterAdapter
	Heading       *HeadingAdapter
	BrokenLink    options.BrokenLinkResolverFunc
	ImageRewriter options.URLRewriterFunc
	LinkRewriter  options.URLRewriterFunc
}

// SyntaxHighlighterAdapter customizes fenced code block rendering. It has two
// modes: built-in theme mode (a bundled chroma theme highlights server-side)
// and host mode (three host callables render the highlighted body and the
// opening pre/code tags).
type SyntaxHighlighterAdapter struct {
	theme     string
	highlight HighlightFunc
	pre       TagFunc
	code      TagFunc
}

// NewThemeHighlighter creates a highlighter that delegates to the bundled
// chroma highlighter using the named style (e.g. "github", "monokai").
func NewThemeHighlighter(theme string) *SyntaxHighlighterAdapter {
	return &SyntaxHighlighterAdapter{theme: theme}
}

// NewSyntaxHighlighter creates a host-mode highlighter from three callables.
// Any of them may be nil; a nil callable contributes nothing.
func NewSyntaxHighlighter(highlight HighlightFunc, pre, code TagFunc) *SyntaxHighlighterAdapter {
	return &SyntaxHighlighterAdapter{highlight: highlight, pre: pre, code: code}
}

// HasHighlight reports whether a host highlight callable is installed.
func (a *SyntaxHighlighterAdapter) HasHighlight() bool {
	return a != nil && a.highlight != nil
}

// HasPre reports whether a host pre-tag callable is installed.
func (a *SyntaxHighlighterAdapter) HasPre() bool {
	return a != nil && a.pre != nil
}

// HasCode reports whether a host code-tag callable is installed.
func (a *SyntaxHighlighterAdapter) HasCode() bool {
	return a != nil && a.code != nil
}

// Theme returns the theme name and true when the adapter is in theme mode.
func (a *SyntaxHighlighterAdapter) Theme() (string, bool) {
	if a == nil {
		return "", false
	}
	return a.theme, a.theme != ""
}

// Highlight invokes the host highlight callable. ok is false when the hook
// failed or was absent; the caller writes nothing in that case.
func (a *SyntaxHighlighterAdapter) Highlight(ctx context.Context, code string, lang *string) (string, bool) {
	if a == nil || a.highlight == nil {
		return "", false
	}
	return safeString(ctx, "highlight", func() (string, error) {
		return a.highlight(code, lang)
	})
}

// PreTag invokes the host pre-tag callable.
func (a *SyntaxHighlighterAdapter) PreTag(ctx context.Context, attrs []Attribute) (string, bool) {
	if a == nil || a.pre == nil {
		return "", false
	}
	return safeString(ctx, "pre", func() (string, error) {
		return a.pre(attrs)
	})
}

// CodeTag invokes the host code-tag callable.
func (a *SyntaxHighlighterAdapter) CodeTag(ctx context.Context, attrs []Attribute) (string, bool) {
	if a == nil || a.code == nil {
		return "", false
	}
	return safeString(ctx, "code", func() (string, error) {
		return a.code(attrs)
	})
}

// HeadingAdapter replaces the engine's default heading tag emission. Enter
// output is written before the heading body, Exit output after; the body
// between is rendered normally.
type HeadingAdapter struct {
	enter HeadingEnterFunc
	exit  HeadingExitFunc
}

// NewHeadingAdapter creates a heading adapter from enter/exit callables.
func NewHeadingAdapter(enter HeadingEnterFunc, exit HeadingExitFunc) *HeadingAdapter {
	return &HeadingAdapter{enter: enter, exit: exit}
}

// Enter invokes the enter callable once per heading.
func (a *HeadingAdapter) Enter(ctx context.Context, meta HeadingMeta, pos *Sourcepos) (string, bool) {
	if a == nil || a.enter == nil {
		return "", false
	}
	return safeString(ctx, "heading.enter", func() (string, error) {
		return a.enter(meta, pos)
	})
}

// Exit invokes the exit callable once per heading.
func (a *HeadingAdapter) Exit(ctx context.Context, meta HeadingMeta) (string, bool) {
	if a == nil || a.exit == nil {
		return "", false
	}
	return safeString(ctx, "heading.exit", func() (string, error) {
		return a.exit(meta)
	})
}

// BrokenLinkCallback wraps a broken-link resolver so it can be invoked
// directly; the engine façade uses Resolve, hosts may use Call.
type BrokenLinkCallback struct {
	resolve options.BrokenLinkResolverFunc
}

// NewBrokenLinkCallback creates a callback from a resolver function.
func NewBrokenLinkCallback(resolve options.BrokenLinkResolverFunc) *BrokenLinkCallback {
	return &BrokenLinkCallback{resolve: resolve}
}

// Call invokes the resolver directly, surfacing its error. Rarely used
// outside testing.
func (c *BrokenLinkCallback) Call(ref options.BrokenLinkReference) (*options.ResolvedReference, error) {
	if c == nil || c.resolve == nil {
		return nil, nil
	}
	return c.resolve(ref)
}

// Resolve invokes the resolver with the swallow policy: a failing resolver
// leaves the link unresolved. Missing string fields default to empty.
func (c *BrokenLinkCallback) Resolve(ctx context.Context, ref options.BrokenLinkReference) *options.ResolvedReference {
	if c == nil || c.resolve == nil {
		return nil
	}
	resolved, ok := safeResolve(ctx, func() (*options.ResolvedReference, error) {
		return c.resolve(ref)
	})
	if !ok {
		return nil
	}
	return resolved
}

// URLRewriter wraps a destination rewriter for links or images.
type URLRewriter struct {
	kind    string
	rewrite options.URLRewriterFunc
}

// NewURLRewriter creates a rewriter. kind is "link" or "image" and only
// affects diagnostics.
func NewURLRewriter(kind string, rewrite options.URLRewriterFunc) *URLRewriter {
	return &URLRewriter{kind: kind, rewrite: rewrite}
}

// Call invokes the rewriter directly, surfacing its error.
func (r *URLRewriter) Call(url string) (string, error) {
	if r == nil || r.rewrite == nil {
		return url, nil
	}
	return r.rewrite(url)
}

// Rewrite invokes the rewriter with the swallow policy: a failing rewriter
// preserves the original URL unchanged.
func (r *URLRewriter) Rewrite(ctx context.Context, url string) string {
	if r == nil || r.rewrite == nil {
		return url
	}
	out, ok := safeString(ctx, r.kind+".rewrite", func() (string, error) {
		return r.rewrite(url)
	})
	if !ok {
		return url
	}
	return out
}

// safeString runs fn, converting errors and panics into a swallowed failure.
func safeString(ctx context.Context, hook string, fn func() (string, error)) (out string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			swallow(ctx, hook, fmt.Errorf("panic: %v", r))
			out, ok = "", false
		}
	}()
	out, err := fn()
	if err != nil {
		swallow(ctx, hook, err)
		return "", false
	}
	return out, true
}

func safeResolve(ctx context.Context, fn func() (*options.ResolvedReference, error)) (out *options.ResolvedReference, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			swallow(ctx, "broken_link", fmt.Errorf("panic: %v", r))
			out, ok = nil, false
		}
	}()
	out, err := fn()
	if err != nil {
		swallow(ctx, "broken_link", err)
		return nil, false
	}
	return out, true
}

func swallow(ctx context.Context, hook string, err error) {
	metrics.Default().IncHookFailure(hook)
	observability.HookFailure(ctx, hook, err)
}
