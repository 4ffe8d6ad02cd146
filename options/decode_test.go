package options

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_NilValue_ReturnsDefaults(t *testing.T) {
	opts, err := Decode(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), opts)
}

func TestDecode_Defaults_MatchDocumentedValues(t *testing.T) {
	opts := Default()

	require.True(t, opts.Extension.Autolink)
	require.True(t, opts.Extension.Table)
	require.True(t, opts.Extension.Tagfilter)
	require.False(t, opts.Extension.Alerts)
	require.True(t, opts.Extension.FrontMatterDelimiter.IsNone())
	require.True(t, opts.Extension.HeaderIDs.IsNone())

	require.True(t, opts.Parse.Smart)
	require.True(t, opts.Parse.DefaultInfoString.IsNone())

	require.True(t, opts.Render.Escape)
	require.True(t, opts.Render.GithubPreLang)
	require.False(t, opts.Render.Unsafe)
	require.Equal(t, 80, opts.Render.Width)
	require.Equal(t, ListStyleDash, opts.Render.ListStyle)
	require.Equal(t, 0, opts.Render.OLWidth)
}

func TestDecode_NestedForm_SetsFields(t *testing.T) {
	opts, err := Decode(map[string]any{
		"extension": map[string]any{
			"autolink":   false,
			"header_ids": "doc-",
		},
		"parse": map[string]any{
			"smart": false,
		},
		"render": map[string]any{
			"width":      100,
			"list_style": "star",
			"unsafe":     true,
		},
	})
	require.NoError(t, err)
	require.False(t, opts.Extension.Autolink)
	require.Equal(t, "doc-", opts.Extension.HeaderIDs.UnwrapOr(""))
	require.False(t, opts.Parse.Smart)
	require.Equal(t, 100, opts.Render.Width)
	require.Equal(t, ListStyleStar, opts.Render.ListStyle)
	require.True(t, opts.Render.Unsafe)

	// Untouched fields keep their defaults.
	require.True(t, opts.Extension.Table)
	require.True(t, opts.Render.Escape)
}

func TestDecode_FlatForm_SetsFields(t *testing.T) {
	opts, err := Decode(map[string]any{
		"extension_autolink": false,
		"parse_smart":        false,
		"render_list_style":  "plus",
		"render_ol_width":    3,
	})
	require.NoError(t, err)
	require.False(t, opts.Extension.Autolink)
	require.False(t, opts.Parse.Smart)
	require.Equal(t, ListStylePlus, opts.Render.ListStyle)
	require.Equal(t, 3, opts.Render.OLWidth)
}

func TestDecode_UnknownSection_ReportsPath(t *testing.T) {
	_, err := Decode(map[string]any{
		"render":  map[string]any{},
		"rendrer": map[string]any{},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"rendrer"`)
}

func TestDecode_UnknownNestedField_ReportsPath(t *testing.T) {
	_, err := Decode(map[string]any{
		"render": map[string]any{"widht": 80},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"render.widht"`)
	require.Contains(t, err.Error(), "unknown option")
}

func TestDecode_UnknownFlatField_ReportsPath(t *testing.T) {
	_, err := Decode(map[string]any{"autolink": true})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"autolink"`)
}

func TestDecode_TypeMismatch_ReportsPath(t *testing.T) {
	_, err := Decode(map[string]any{
		"extension": map[string]any{"autolink": "yes"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"extension.autolink"`)
	require.Contains(t, err.Error(), "expected a boolean")
}

func TestDecode_NegativeWidth_Rejected(t *testing.T) {
	_, err := Decode(map[string]any{
		"render": map[string]any{"width": -1},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"render.width"`)
}

func TestDecode_UnsupportedValueType_Rejected(t *testing.T) {
	_, err := Decode(42)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported options value")
}

func TestDecode_ListStyle_CaseInsensitive(t *testing.T) {
	for in, want := range map[string]ListStyle{
		"dash": ListStyleDash,
		"Plus": ListStylePlus,
		"STAR": ListStyleStar,
	} {
		opts, err := Decode(map[string]any{
			"render": map[string]any{"list_style": in},
		})
		require.NoError(t, err, in)
		require.Equal(t, want, opts.Render.ListStyle, in)
	}
}

func TestListStyle_Codepoints(t *testing.T) {
	require.Equal(t, ListStyle(45), ListStyleDash)
	require.Equal(t, ListStyle(43), ListStylePlus)
	require.Equal(t, ListStyle(42), ListStyleStar)
}

func TestListStyle_NameRoundTrip(t *testing.T) {
	for _, s := range []ListStyle{ListStyleDash, ListStylePlus, ListStyleStar} {
		opts, err := Decode(map[string]any{
			"render": map[string]any{"list_style": s.Name()},
		})
		require.NoError(t, err)
		require.Equal(t, s, opts.Render.ListStyle)
	}
}

func TestDecode_WikilinksTitleSide_MapsToFlagPair(t *testing.T) {
	opts, err := Decode(map[string]any{
		"extension": map[string]any{"wikilinks_title_side": "before"},
	})
	require.NoError(t, err)
	require.True(t, opts.Extension.WikilinksTitleBeforePipe)
	require.False(t, opts.Extension.WikilinksTitleAfterPipe)

	opts, err = Decode(map[string]any{
		"extension": map[string]any{"wikilinks_title_side": "After"},
	})
	require.NoError(t, err)
	require.False(t, opts.Extension.WikilinksTitleBeforePipe)
	require.True(t, opts.Extension.WikilinksTitleAfterPipe)
}

func TestDecode_WikilinksBothPipes_Rejected(t *testing.T) {
	_, err := Decode(map[string]any{
		"extension": map[string]any{
			"wikilinks_title_after_pipe":  true,
			"wikilinks_title_before_pipe": true,
		},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "mutually exclusive")
}

func TestDecode_BrokenLinkCallback_AcceptedInOptions(t *testing.T) {
	opts, err := Decode(map[string]any{
		"parse": map[string]any{
			"broken_link_callback": func(ref BrokenLinkReference) *ResolvedReference {
				return &ResolvedReference{URL: "/" + ref.Normalized}
			},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, opts.Parse.BrokenLinkCallback)

	ref, err := opts.Parse.BrokenLinkCallback(BrokenLinkReference{Normalized: "x"})
	require.NoError(t, err)
	require.Equal(t, "/x", ref.URL)
}

func TestDecode_URLRewriter_AcceptedInOptions(t *testing.T) {
	opts, err := Decode(map[string]any{
		"extension": map[string]any{
			"link_url_rewriter": func(url string) string { return "/" + url },
		},
	})
	require.NoError(t, err)
	require.NotNil(t, opts.Extension.LinkURLRewriter)

	out, err := opts.Extension.LinkURLRewriter("a")
	require.NoError(t, err)
	require.Equal(t, "/a", out)
}

func TestDecode_YAMLDocument_Decoded(t *testing.T) {
	opts, err := Decode([]byte("render:\n  list_style: plus\n  width: 0\n"))
	require.NoError(t, err)
	require.Equal(t, ListStylePlus, opts.Render.ListStyle)
	require.Equal(t, 0, opts.Render.Width)
}

func TestDecode_JSONDocument_Decoded(t *testing.T) {
	opts, err := Decode([]byte(`{"extension": {"strikethrough": false}}`))
	require.NoError(t, err)
	require.False(t, opts.Extension.Strikethrough)
}
