package mdrender

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/mdrender/hooks"
	"git.home.luguber.info/inful/mdrender/options"
)

// anchorAttrs parses rendered HTML and returns the attributes of the first
// <a> element.
func anchorAttrs(t *testing.T, rendered string) map[string]string {
	t.Helper()
	root, err := html.Parse(strings.NewReader(rendered))
	require.NoError(t, err)

	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "a" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}
	a := find(root)
	require.NotNil(t, a, "no <a> element in %q", rendered)

	attrs := map[string]string{}
	for _, attr := range a.Attr {
		attrs[attr.Key] = attr.Val
	}
	return attrs
}

func TestMarkdownToHTML_Heading_CanonicalOutput(t *testing.T) {
	out, err := MarkdownToHTML("# hi", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "<h1>hi</h1>\n", out)
}

func TestMarkdownToHTML_BrokenLinkCallback_ResolvesReference(t *testing.T) {
	out, err := MarkdownToHTML("[x]", map[string]any{
		"parse": map[string]any{
			"broken_link_callback": func(ref options.BrokenLinkReference) *options.ResolvedReference {
				require.Equal(t, "x", ref.Normalized)
				return &options.ResolvedReference{URL: "/u", Title: "t"}
			},
		},
	}, nil)
	require.NoError(t, err)

	attrs := anchorAttrs(t, out)
	require.Equal(t, "/u", attrs["href"])
	require.Equal(t, "t", attrs["title"])
}

func TestMarkdownToHTML_BrokenLinkCallback_OncePerUnresolvedReference(t *testing.T) {
	var calls []string
	src := "[a] then [a] again, [b], [defined] and [c](/inline)\n\n[defined]: /d\n"
	_, err := MarkdownToHTML(src, map[string]any{
		"parse": map[string]any{
			"broken_link_callback": func(ref options.BrokenLinkReference) *options.ResolvedReference {
				calls = append(calls, ref.Normalized)
				return nil
			},
		},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, calls)
}

func TestMarkdownToHTML_BrokenLinkCallback_IgnoresBracketsInCode(t *testing.T) {
	var calls []string
	src := "use `[x]` literally\n\n```\n[todo]\n```\n"
	_, err := MarkdownToHTML(src, map[string]any{
		"parse": map[string]any{
			"broken_link_callback": func(ref options.BrokenLinkReference) *options.ResolvedReference {
				calls = append(calls, ref.Normalized)
				return nil
			},
		},
	}, nil)
	require.NoError(t, err)
	require.Empty(t, calls)
}

func TestMarkdownToHTML_LinkRewriter_AppliedToDestination(t *testing.T) {
	out, err := MarkdownToHTML("[x](a)", map[string]any{
		"extension": map[string]any{
			"link_url_rewriter": func(url string) string { return "/" + url },
		},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "/a", anchorAttrs(t, out)["href"])
}

func TestMarkdownToHTML_ImageRewriter_AppliedToDestination(t *testing.T) {
	out, err := MarkdownToHTML("![x](pic.png)", nil, &Hooks{
		ImageRewriter: func(url string) (string, error) { return "/cdn/" + url, nil },
	})
	require.NoError(t, err)
	require.Contains(t, out, `src="/cdn/pic.png"`)
}

func TestMarkdownToHTML_HostHighlighter_OutputWrittenRaw(t *testing.T) {
	hl := hooks.NewSyntaxHighlighter(func(code string, lang *string) (string, error) {
		require.NotNil(t, lang)
		require.Equal(t, "ts", *lang)
		return "<em>" + code + "</em>", nil
	}, nil, nil)

	out, err := MarkdownToHTML("```ts\n1\n```", nil, &Hooks{Highlighter: hl})
	require.NoError(t, err)
	require.Contains(t, out, "<em>1\n</em>")
	require.Contains(t, out, `<pre lang="ts">`)
}

func TestMarkdownToHTML_FailingHighlighter_BlockStaysEmpty(t *testing.T) {
	hl := hooks.NewSyntaxHighlighter(func(string, *string) (string, error) {
		panic("host exploded")
	}, nil, nil)

	out, err := MarkdownToHTML("```ts\n1\n```", nil, &Hooks{Highlighter: hl})
	require.NoError(t, err)
	require.NotContains(t, out, "1")
	require.Contains(t, out, "<pre")
}

func TestMarkdownToHTML_HeadingAdapter_ReplacesTagEmission(t *testing.T) {
	ad := hooks.NewHeadingAdapter(
		func(meta hooks.HeadingMeta, pos *hooks.Sourcepos) (string, error) {
			return "<H>" + meta.Content + ":", nil
		},
		func(meta hooks.HeadingMeta) (string, error) {
			return "</H>", nil
		},
	)

	out, err := MarkdownToHTML("# t", nil, &Hooks{Heading: ad})
	require.NoError(t, err)
	require.Equal(t, "<H>t:t</H>", out)
}

func TestMarkdownToCommonmark_ListStylePlus_ChangesMarkers(t *testing.T) {
	out, err := MarkdownToCommonmark("- a\n- b", map[string]any{
		"render": map[string]any{"list_style": "plus"},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "+ a\n+ b\n", out)
}

func TestFormatHTML_ASTRoundTrip_MatchesDirectRender(t *testing.T) {
	src := "# Title\n\nSome *emphasis* and a [link](/url).\n\n- one\n- two\n\n```go\nfmt.Println(1)\n```\n"
	for _, opts := range []any{
		nil,
		map[string]any{"render": map[string]any{"unsafe": true}},
	} {
		direct, err := MarkdownToHTML(src, opts, nil)
		require.NoError(t, err)

		tree, err := ParseDocument(src, opts, nil)
		require.NoError(t, err)

		fromAST, err := FormatHTML(tree, opts, nil)
		require.NoError(t, err)
		require.Equal(t, direct, fromAST)
	}
}

func TestFormatCommonmark_ASTRoundTrip_MatchesDirectRender(t *testing.T) {
	src := "# Title\n\n- one\n- two\n"
	direct, err := MarkdownToCommonmark(src, nil, nil)
	require.NoError(t, err)

	tree, err := ParseDocument(src, nil, nil)
	require.NoError(t, err)

	fromAST, err := FormatCommonmark(tree, nil, nil)
	require.NoError(t, err)
	require.Equal(t, direct, fromAST)
}

func TestFormatXML_SourceposRoundTrip_MatchesDirectRender(t *testing.T) {
	src := "# Title\n\nSome paragraph text\nacross two lines.\n\n- one\n- two\n"
	opts := map[string]any{"render": map[string]any{"sourcepos": true}}

	direct, err := MarkdownToXML(src, opts, nil)
	require.NoError(t, err)
	require.Contains(t, direct, `<heading sourcepos="`)

	tree, err := ParseDocument(src, opts, nil)
	require.NoError(t, err)

	fromAST, err := FormatXML(tree, opts, nil)
	require.NoError(t, err)
	require.Equal(t, direct, fromAST)
}

func TestMarkdownToXML_Autolink_EmitsDestination(t *testing.T) {
	out, err := MarkdownToXML("visit https://example.com now", nil, nil)
	require.NoError(t, err)
	require.Contains(t, out, `destination="https://example.com"`)
}

func TestMarkdownToXML_EmitsDocumentElement(t *testing.T) {
	out, err := MarkdownToXML("# hi", nil, nil)
	require.NoError(t, err)
	require.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	require.Contains(t, out, `<!DOCTYPE document SYSTEM "CommonMark.dtd">`)
	require.Contains(t, out, `<document xmlns="http://commonmark.org/xml/1.0">`)
	require.Contains(t, out, `<heading level="1">`)
	require.Contains(t, out, `xml:space="preserve">hi</text>`)
}

func TestMarkdownToHTML_MalformedOptions_DecodeErrorWithPath(t *testing.T) {
	_, err := MarkdownToHTML("x", map[string]any{
		"render": map[string]any{"widht": 1},
	}, nil)
	require.Error(t, err)
	require.True(t, IsCategory(err, CategoryDecode))
	require.Contains(t, err.Error(), `"render.widht"`)
}

func TestFormatHTML_BadTree_DeserializeError(t *testing.T) {
	_, err := FormatHTML(&Node{Kind: "paragraph"}, nil, nil)
	require.Error(t, err)
	require.True(t, IsCategory(err, CategoryDeserialize))
}

func TestVersion_NotEmpty(t *testing.T) {
	require.NotEmpty(t, Version())
}

func TestMarkdownToHTML_UnsafeOff_RawHTMLEscaped(t *testing.T) {
	out, err := MarkdownToHTML("a <b>bold</b> move", nil, nil)
	require.NoError(t, err)
	require.Contains(t, out, "&lt;b&gt;")
	require.NotContains(t, out, "<b>")
}

func TestMarkdownToHTML_Unsafe_RawHTMLPassedThrough(t *testing.T) {
	out, err := MarkdownToHTML("a <b>bold</b> move", map[string]any{
		"render": map[string]any{"unsafe": true},
	}, nil)
	require.NoError(t, err)
	require.Contains(t, out, "<b>bold</b>")
}

func TestMarkdownToHTML_Unsafe_TagfilterStillFiltersScripts(t *testing.T) {
	out, err := MarkdownToHTML("a <script>x()</script> b", map[string]any{
		"render": map[string]any{"unsafe": true},
	}, nil)
	require.NoError(t, err)
	require.Contains(t, out, "&lt;script>")
	require.NotContains(t, out, "<script>")
}
