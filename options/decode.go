package options

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdrender/foundation"
)

// DecodeError reports a malformed or ill-typed options value. Path identifies
// the offending field (e.g. "extension.autolink" or "render_width").
type DecodeError struct {
	Path    string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return "options: " + e.Message
	}
	return fmt.Sprintf("options field %q: %s", e.Path, e.Message)
}

func decodeErrf(path, format string, args ...any) *DecodeError {
	return &DecodeError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// Decode converts a host-supplied configuration value into a fully populated
// Options record.
//
// Accepted shapes:
//   - nil: the defaults.
//   - *Options / Options: validated and used as-is.
//   - map[string]any: the canonical nested form ({extension, parse, render})
//     tried first, then the historical flat form (extension_autolink, ...).
//   - []byte / json.RawMessage: a YAML or JSON document decoded into the map
//     form first.
//
// Anything else is a decode error. Unknown fields and type mismatches are
// rejected with the offending field path.
func Decode(value any) (*Options, error) {
	switch v := value.(type) {
	case nil:
		return Default(), nil
	case *Options:
		if v == nil {
			return Default(), nil
		}
		cp := *v
		if err := cp.validate(); err != nil {
			return nil, err
		}
		return &cp, nil
	case Options:
		cp := v
		if err := cp.validate(); err != nil {
			return nil, err
		}
		return &cp, nil
	case map[string]any:
		return decodeMap(v)
	case json.RawMessage:
		return decodeBytes([]byte(v))
	case []byte:
		return decodeBytes(v)
	default:
		return nil, decodeErrf("", "unsupported options value of type %T", value)
	}
}

func decodeBytes(doc []byte) (*Options, error) {
	if len(doc) == 0 {
		return Default(), nil
	}
	var m map[string]any
	if err := yaml.Unmarshal(doc, &m); err != nil {
		return nil, decodeErrf("", "options document does not parse: %v", err)
	}
	if m == nil {
		return Default(), nil
	}
	return decodeMap(m)
}

func decodeMap(m map[string]any) (*Options, error) {
	opts := Default()
	if len(m) == 0 {
		return opts, nil
	}
	// Nested form first: the presence of any section key selects it.
	if hasAny(m, "extension", "parse", "render") {
		if err := decodeNested(opts, m); err != nil {
			return nil, err
		}
	} else if err := decodeFlat(opts, m); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func hasAny(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// validate enforces cross-field invariants after any decode path.
func (o *Options) validate() error {
	if o.Extension.WikilinksTitleAfterPipe && o.Extension.WikilinksTitleBeforePipe {
		return decodeErrf("extension.wikilinks_title_before_pipe",
			"mutually exclusive with extension.wikilinks_title_after_pipe")
	}
	if o.Render.Width < 0 {
		return decodeErrf("render.width", "must be non-negative, got %d", o.Render.Width)
	}
	if o.Render.OLWidth < 0 {
		return decodeErrf("render.ol_width", "must be non-negative, got %d", o.Render.OLWidth)
	}
	return nil
}

// fieldSetter applies one wire field to the record. path is the full field
// path for error reporting.
type fieldSetter func(o *Options, v any, path string) error

// The three section tables are the single source of truth for wire field
// names. The flat form is derived from them by prefixing the section name.
var (
	extensionFields = map[string]fieldSetter{
		"autolink":                    boolField(func(o *Options) *bool { return &o.Extension.Autolink }),
		"description_lists":           boolField(func(o *Options) *bool { return &o.Extension.DescriptionLists }),
		"footnotes":                   boolField(func(o *Options) *bool { return &o.Extension.Footnotes }),
		"front_matter_delimiter":      optStringField(func(o *Options) *foundation.Option[string] { return &o.Extension.FrontMatterDelimiter }),
		"header_ids":                  optStringField(func(o *Options) *foundation.Option[string] { return &o.Extension.HeaderIDs }),
		"strikethrough":               boolField(func(o *Options) *bool { return &o.Extension.Strikethrough }),
		"superscript":                 boolField(func(o *Options) *bool { return &o.Extension.Superscript }),
		"table":                       boolField(func(o *Options) *bool { return &o.Extension.Table }),
		"tagfilter":                   boolField(func(o *Options) *bool { return &o.Extension.Tagfilter }),
		"tasklist":                    boolField(func(o *Options) *bool { return &o.Extension.Tasklist }),
		"multiline_block_quotes":      boolField(func(o *Options) *bool { return &o.Extension.MultilineBlockQuotes }),
		"alerts":                      boolField(func(o *Options) *bool { return &o.Extension.Alerts }),
		"math_dollars":                boolField(func(o *Options) *bool { return &o.Extension.MathDollars }),
		"math_code":                   boolField(func(o *Options) *bool { return &o.Extension.MathCode }),
		"wikilinks_title_after_pipe":  boolField(func(o *Options) *bool { return &o.Extension.WikilinksTitleAfterPipe }),
		"wikilinks_title_before_pipe": boolField(func(o *Options) *bool { return &o.Extension.WikilinksTitleBeforePipe }),
		"underline":                   boolField(func(o *Options) *bool { return &o.Extension.Underline }),
		"subscript":                   boolField(func(o *Options) *bool { return &o.Extension.Subscript }),
		"spoiler":                     boolField(func(o *Options) *bool { return &o.Extension.Spoiler }),
		"greentext":                   boolField(func(o *Options) *bool { return &o.Extension.Greentext }),
		"cjk_friendly_emphasis":       boolField(func(o *Options) *bool { return &o.Extension.CJKFriendlyEmphasis }),
		"image_url_rewriter":          rewriterField(func(o *Options) *URLRewriterFunc { return &o.Extension.ImageURLRewriter }),
		"link_url_rewriter":           rewriterField(func(o *Options) *URLRewriterFunc { return &o.Extension.LinkURLRewriter }),
	}

	parseFields = map[string]fieldSetter{
		"default_info_string":       optStringField(func(o *Options) *foundation.Option[string] { return &o.Parse.DefaultInfoString }),
		"smart":                     boolField(func(o *Options) *bool { return &o.Parse.Smart }),
		"relaxed_tasklist_matching": boolField(func(o *Options) *bool { return &o.Parse.RelaxedTasklistMatching }),
		"relaxed_autolinks":         boolField(func(o *Options) *bool { return &o.Parse.RelaxedAutolinks }),
		"broken_link_callback":      brokenLinkField,
	}

	renderFields = map[string]fieldSetter{
		"escape":                           boolField(func(o *Options) *bool { return &o.Render.Escape }),
		"github_pre_lang":                  boolField(func(o *Options) *bool { return &o.Render.GithubPreLang }),
		"hardbreaks":                       boolField(func(o *Options) *bool { return &o.Render.Hardbreaks }),
		"unsafe":                           boolField(func(o *Options) *bool { return &o.Render.Unsafe }),
		"width":                            intField(func(o *Options) *int { return &o.Render.Width }),
		"full_info_string":                 boolField(func(o *Options) *bool { return &o.Render.FullInfoString }),
		"list_style":                       listStyleField,
		"sourcepos":                        boolField(func(o *Options) *bool { return &o.Render.Sourcepos }),
		"escaped_char_spans":               boolField(func(o *Options) *bool { return &o.Render.EscapedCharSpans }),
		"ignore_setext":                    boolField(func(o *Options) *bool { return &o.Render.IgnoreSetext }),
		"ignore_empty_links":               boolField(func(o *Options) *bool { return &o.Render.IgnoreEmptyLinks }),
		"gfm_quirks":                       boolField(func(o *Options) *bool { return &o.Render.GFMQuirks }),
		"prefer_fenced":                    boolField(func(o *Options) *bool { return &o.Render.PreferFenced }),
		"figure_with_caption":              boolField(func(o *Options) *bool { return &o.Render.FigureWithCaption }),
		"tasklist_classes":                 boolField(func(o *Options) *bool { return &o.Render.TasklistClasses }),
		"ol_width":                         intField(func(o *Options) *int { return &o.Render.OLWidth }),
		"experimental_minimize_commonmark": boolField(func(o *Options) *bool { return &o.Render.ExperimentalMinimizeCommonmark }),
	}

	sections = map[string]map[string]fieldSetter{
		"extension": extensionFields,
		"parse":     parseFields,
		"render":    renderFields,
	}
)

func decodeNested(opts *Options, m map[string]any) error {
	for _, key := range sortedKeys(m) {
		raw := m[key]
		fields, ok := sections[key]
		if !ok {
			return decodeErrf(key, "unknown options section")
		}
		if raw == nil {
			continue
		}
		sub, ok := raw.(map[string]any)
		if !ok {
			return decodeErrf(key, "expected an object, got %T", raw)
		}
		for _, field := range sortedKeys(sub) {
			path := key + "." + field
			if field == "wikilinks_title_side" && key == "extension" {
				if err := wikilinksSideField(opts, sub[field], path); err != nil {
					return err
				}
				continue
			}
			setter, ok := fields[field]
			if !ok {
				return decodeErrf(path, "unknown option")
			}
			if err := setter(opts, sub[field], path); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeFlat(opts *Options, m map[string]any) error {
	for _, key := range sortedKeys(m) {
		section, field, ok := splitFlatKey(key)
		if !ok {
			return decodeErrf(key, "unknown option")
		}
		setter, found := sections[section][field]
		if !found {
			return decodeErrf(key, "unknown option")
		}
		if err := setter(opts, m[key], key); err != nil {
			return err
		}
	}
	return nil
}

// splitFlatKey maps a historical flat key like "extension_autolink" to its
// section and nested field name.
func splitFlatKey(key string) (section, field string, ok bool) {
	for _, prefix := range []string{"extension_", "parse_", "render_"} {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			return prefix[:len(prefix)-1], key[len(prefix):], true
		}
	}
	return "", "", false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func boolField(get func(*Options) *bool) fieldSetter {
	return func(o *Options, v any, path string) error {
		b, ok := v.(bool)
		if !ok {
			return decodeErrf(path, "expected a boolean, got %T", v)
		}
		*get(o) = b
		return nil
	}
}

func intField(get func(*Options) *int) fieldSetter {
	return func(o *Options, v any, path string) error {
		n, err := asInt(v)
		if err != nil {
			return decodeErrf(path, "%v", err)
		}
		if n < 0 {
			return decodeErrf(path, "must be non-negative, got %d", n)
		}
		*get(o) = n
		return nil
	}
}

// asInt accepts the integral shapes JSON and YAML decoders produce.
func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func optStringField(get func(*Options) *foundation.Option[string]) fieldSetter {
	return func(o *Options, v any, path string) error {
		switch s := v.(type) {
		case nil:
			*get(o) = foundation.None[string]()
		case string:
			*get(o) = foundation.Some(s)
		default:
			return decodeErrf(path, "expected a string or null, got %T", v)
		}
		return nil
	}
}

func listStyleField(o *Options, v any, path string) error {
	s, ok := v.(string)
	if !ok {
		return decodeErrf(path, "expected a string, got %T", v)
	}
	style, err := listStyleNormalizer.NormalizeWithError(s)
	if err != nil {
		return decodeErrf(path, "%v", err)
	}
	o.Render.ListStyle = style
	return nil
}

func wikilinksSideField(o *Options, v any, path string) error {
	s, ok := v.(string)
	if !ok {
		return decodeErrf(path, "expected a string, got %T", v)
	}
	side, err := wikilinksSideNormalizer.NormalizeWithError(s)
	if err != nil {
		return decodeErrf(path, "%v", err)
	}
	o.Extension.WikilinksTitleBeforePipe = side == WikilinksTitleBefore
	o.Extension.WikilinksTitleAfterPipe = side == WikilinksTitleAfter
	return nil
}

func rewriterField(get func(*Options) *URLRewriterFunc) fieldSetter {
	return func(o *Options, v any, path string) error {
		switch fn := v.(type) {
		case nil:
			*get(o) = nil
		case URLRewriterFunc:
			*get(o) = fn
		case func(string) (string, error):
			*get(o) = fn
		case func(string) string:
			*get(o) = func(url string) (string, error) { return fn(url), nil }
		default:
			return decodeErrf(path, "expected a URL rewriter function, got %T", v)
		}
		return nil
	}
}

func brokenLinkField(o *Options, v any, path string) error {
	switch fn := v.(type) {
	case nil:
		o.Parse.BrokenLinkCallback = nil
	case BrokenLinkResolverFunc:
		o.Parse.BrokenLinkCallback = fn
	case func(BrokenLinkReference) (*ResolvedReference, error):
		o.Parse.BrokenLinkCallback = fn
	case func(BrokenLinkReference) *ResolvedReference:
		o.Parse.BrokenLinkCallback = func(ref BrokenLinkReference) (*ResolvedReference, error) {
			return fn(ref), nil
		}
	default:
		return decodeErrf(path, "expected a broken link resolver function, got %T", v)
	}
	return nil
}
