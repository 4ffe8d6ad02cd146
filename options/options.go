// Package options holds the three-part configuration record for mdrender and
// the decoder that builds it from untyped host values.
//
// The record mirrors the engine's option surface: extension toggles, parse
// behavior, and render behavior. Every field has a well-defined default, and
// decoding always produces a fully populated record: absent fields take their
// default, unknown fields are rejected with the offending field path.
package options

import (
	"git.home.luguber.info/inful/mdrender/foundation"
	"git.home.luguber.info/inful/mdrender/foundation/normalization"
)

// ListStyle is the bullet character used when serializing unordered lists.
// The underlying value is the marker codepoint.
type ListStyle rune

const (
	ListStyleDash ListStyle = '-' // 45
	ListStylePlus ListStyle = '+' // 43
	ListStyleStar ListStyle = '*' // 42
)

var listStyleNormalizer = normalization.NewNormalizer(map[string]ListStyle{
	"dash": ListStyleDash,
	"plus": ListStylePlus,
	"star": ListStyleStar,
}, ListStyleDash)

// Name returns the wire name of the list style ("dash", "plus" or "star").
func (s ListStyle) Name() string {
	switch s {
	case ListStylePlus:
		return "plus"
	case ListStyleStar:
		return "star"
	default:
		return "dash"
	}
}

// WikilinksTitleSide places the wikilink title relative to the pipe.
type WikilinksTitleSide string

const (
	WikilinksTitleNone   WikilinksTitleSide = "none"
	WikilinksTitleBefore WikilinksTitleSide = "before"
	WikilinksTitleAfter  WikilinksTitleSide = "after"
)

var wikilinksSideNormalizer = normalization.NewNormalizer(map[string]WikilinksTitleSide{
	"before": WikilinksTitleBefore,
	"after":  WikilinksTitleAfter,
	"none":   WikilinksTitleNone,
}, WikilinksTitleNone)

// ExtensionOptions selects the Markdown syntax extensions the engine applies.
type ExtensionOptions struct {
	Autolink                 bool
	DescriptionLists         bool
	Footnotes                bool
	FrontMatterDelimiter     foundation.Option[string]
	HeaderIDs                foundation.Option[string]
	Strikethrough            bool
	Superscript              bool
	Table                    bool
	Tagfilter                bool
	Tasklist                 bool
	MultilineBlockQuotes     bool
	Alerts                   bool
	MathDollars              bool
	MathCode                 bool
	WikilinksTitleAfterPipe  bool
	WikilinksTitleBeforePipe bool
	Underline                bool
	Subscript                bool
	Spoiler                  bool
	Greentext                bool
	CJKFriendlyEmphasis      bool

	// URL rewriters may arrive inside the options value (the host object
	// carries callables) or via the hook set at the entry point.
	ImageURLRewriter URLRewriterFunc
	LinkURLRewriter  URLRewriterFunc
}

// ParseOptions controls parser behavior.
type ParseOptions struct {
	DefaultInfoString       foundation.Option[string]
	Smart                   bool
	RelaxedTasklistMatching bool
	RelaxedAutolinks        bool

	BrokenLinkCallback BrokenLinkResolverFunc
}

// RenderOptions controls formatter behavior across all output formats.
type RenderOptions struct {
	Escape                         bool
	GithubPreLang                  bool
	Hardbreaks                     bool
	Unsafe                         bool
	Width                          int
	FullInfoString                 bool
	ListStyle                      ListStyle
	Sourcepos                      bool
	EscapedCharSpans               bool
	IgnoreSetext                   bool
	IgnoreEmptyLinks               bool
	GFMQuirks                      bool
	PreferFenced                   bool
	FigureWithCaption              bool
	TasklistClasses                bool
	OLWidth                        int
	ExperimentalMinimizeCommonmark bool
}

// Options is the complete configuration record handed to the engine façade.
type Options struct {
	Extension ExtensionOptions
	Parse     ParseOptions
	Render    RenderOptions
}

// Default returns the fully populated default record.
func Default() *Options {
	return &Options{
		Extension: ExtensionOptions{
			Autolink:         true,
			DescriptionLists: true,
			Footnotes:        true,
			Strikethrough:    true,
			Superscript:      true,
			Table:            true,
			Tagfilter:        true,
			Tasklist:         true,
		},
		Parse: ParseOptions{
			Smart: true,
		},
		Render: RenderOptions{
			Escape:        true,
			GithubPreLang: true,
			Width:         80,
			ListStyle:     ListStyleDash,
		},
	}
}
