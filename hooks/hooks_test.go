package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdrender/options"
)

func TestThemeHighlighter_ReportsThemeMode(t *testing.T) {
	hl := NewThemeHighlighter("monokai")
	theme, ok := hl.Theme()
	require.True(t, ok)
	require.Equal(t, "monokai", theme)
	require.False(t, hl.HasHighlight())
}

func TestSyntaxHighlighter_NilAdapter_IsInert(t *testing.T) {
	var hl *SyntaxHighlighterAdapter
	_, ok := hl.Theme()
	require.False(t, ok)
	require.False(t, hl.HasHighlight())
	require.False(t, hl.HasPre())
	require.False(t, hl.HasCode())

	_, ok = hl.Highlight(context.Background(), "code", nil)
	require.False(t, ok)
}

func TestSyntaxHighlighter_Highlight_CodeFirstArgument(t *testing.T) {
	var gotCode string
	var gotLang *string
	hl := NewSyntaxHighlighter(func(code string, lang *string) (string, error) {
		gotCode, gotLang = code, lang
		return "<em>" + code + "</em>", nil
	}, nil, nil)

	lang := "ts"
	out, ok := hl.Highlight(context.Background(), "1\n", &lang)
	require.True(t, ok)
	require.Equal(t, "<em>1\n</em>", out)
	require.Equal(t, "1\n", gotCode)
	require.Equal(t, "ts", *gotLang)
}

func TestSyntaxHighlighter_FailingCallable_Swallowed(t *testing.T) {
	hl := NewSyntaxHighlighter(func(string, *string) (string, error) {
		return "", errors.New("host exploded")
	}, nil, nil)

	out, ok := hl.Highlight(context.Background(), "x", nil)
	require.False(t, ok)
	require.Empty(t, out)
}

func TestSyntaxHighlighter_PanickingCallable_Swallowed(t *testing.T) {
	hl := NewSyntaxHighlighter(func(string, *string) (string, error) {
		panic("host exploded")
	}, nil, nil)

	out, ok := hl.Highlight(context.Background(), "x", nil)
	require.False(t, ok)
	require.Empty(t, out)
}

func TestSyntaxHighlighter_TagCallables(t *testing.T) {
	hl := NewSyntaxHighlighter(nil,
		func(attrs []Attribute) (string, error) { return "<pre class=\"hl\">", nil },
		func(attrs []Attribute) (string, error) { return "<code>", nil },
	)
	require.True(t, hl.HasPre())
	require.True(t, hl.HasCode())

	out, ok := hl.PreTag(context.Background(), nil)
	require.True(t, ok)
	require.Equal(t, `<pre class="hl">`, out)

	out, ok = hl.CodeTag(context.Background(), nil)
	require.True(t, ok)
	require.Equal(t, "<code>", out)
}

func TestHeadingAdapter_EnterAndExit(t *testing.T) {
	ad := NewHeadingAdapter(
		func(meta HeadingMeta, pos *Sourcepos) (string, error) {
			return "<H>", nil
		},
		func(meta HeadingMeta) (string, error) {
			return "</H>", nil
		},
	)

	out, ok := ad.Enter(context.Background(), HeadingMeta{Level: 1, Content: "t"}, nil)
	require.True(t, ok)
	require.Equal(t, "<H>", out)

	out, ok = ad.Exit(context.Background(), HeadingMeta{Level: 1, Content: "t"})
	require.True(t, ok)
	require.Equal(t, "</H>", out)
}

func TestHeadingAdapter_FailingEnter_Swallowed(t *testing.T) {
	ad := NewHeadingAdapter(
		func(HeadingMeta, *Sourcepos) (string, error) { return "", errors.New("nope") },
		nil,
	)
	out, ok := ad.Enter(context.Background(), HeadingMeta{}, nil)
	require.False(t, ok)
	require.Empty(t, out)

	// Absent exit callable contributes nothing.
	_, ok = ad.Exit(context.Background(), HeadingMeta{})
	require.False(t, ok)
}

func TestBrokenLinkCallback_Resolve(t *testing.T) {
	cb := NewBrokenLinkCallback(func(ref options.BrokenLinkReference) (*options.ResolvedReference, error) {
		require.Equal(t, "x", ref.Normalized)
		return &options.ResolvedReference{URL: "/u", Title: "t"}, nil
	})

	ref := cb.Resolve(context.Background(), options.BrokenLinkReference{Normalized: "x", Original: "x"})
	require.NotNil(t, ref)
	require.Equal(t, "/u", ref.URL)
	require.Equal(t, "t", ref.Title)
}

func TestBrokenLinkCallback_FailingCallable_ResolvesToNil(t *testing.T) {
	cb := NewBrokenLinkCallback(func(options.BrokenLinkReference) (*options.ResolvedReference, error) {
		return nil, errors.New("lookup failed")
	})
	require.Nil(t, cb.Resolve(context.Background(), options.BrokenLinkReference{Normalized: "x"}))

	cb = NewBrokenLinkCallback(func(options.BrokenLinkReference) (*options.ResolvedReference, error) {
		panic("lookup panicked")
	})
	require.Nil(t, cb.Resolve(context.Background(), options.BrokenLinkReference{Normalized: "x"}))
}

func TestURLRewriter_Rewrite(t *testing.T) {
	rw := NewURLRewriter("link", func(url string) (string, error) {
		return "/" + url, nil
	})
	require.Equal(t, "/a", rw.Rewrite(context.Background(), "a"))
}

func TestURLRewriter_FailingCallable_PreservesOriginal(t *testing.T) {
	rw := NewURLRewriter("image", func(url string) (string, error) {
		return "", errors.New("rewrite failed")
	})
	require.Equal(t, "a", rw.Rewrite(context.Background(), "a"))

	rw = NewURLRewriter("image", func(string) (string, error) { panic("boom") })
	require.Equal(t, "a", rw.Rewrite(context.Background(), "a"))
}
