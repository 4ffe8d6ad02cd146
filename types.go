package mdrender

// TypesDecl is a static declaration snippet describing the host-visible wire
// types: the nested options object, hook payloads and the AST node schema.
// It is documentation only and mirrors the JSON shapes produced and accepted
// by this package.
const TypesDecl = `
// Options value accepted by every entry point. All fields optional; absent
// fields take their defaults. A flat form with section-prefixed keys
// (e.g. "extension_autolink") is also accepted.
Options = {
  extension?: {
    autolink?: bool, description_lists?: bool, footnotes?: bool,
    front_matter_delimiter?: string, header_ids?: string,
    strikethrough?: bool, superscript?: bool, table?: bool,
    tagfilter?: bool, tasklist?: bool, multiline_block_quotes?: bool,
    alerts?: bool, math_dollars?: bool, math_code?: bool,
    wikilinks_title_side?: "before" | "after" | "none",
    underline?: bool, subscript?: bool, spoiler?: bool, greentext?: bool,
    cjk_friendly_emphasis?: bool,
    image_url_rewriter?: (url: string) => string,
    link_url_rewriter?: (url: string) => string,
  },
  parse?: {
    default_info_string?: string, smart?: bool,
    relaxed_tasklist_matching?: bool, relaxed_autolinks?: bool,
    broken_link_callback?: (ref: BrokenLinkReference) => ResolvedReference | null,
  },
  render?: {
    escape?: bool, github_pre_lang?: bool, hardbreaks?: bool, unsafe?: bool,
    width?: int, full_info_string?: bool,
    list_style?: "dash" | "plus" | "star",
    sourcepos?: bool, escaped_char_spans?: bool, ignore_setext?: bool,
    ignore_empty_links?: bool, gfm_quirks?: bool, prefer_fenced?: bool,
    figure_with_caption?: bool, tasklist_classes?: bool, ol_width?: int,
    experimental_minimize_commonmark?: bool,
  },
}

BrokenLinkReference = { normalized: string, original: string }
ResolvedReference   = { url: string, title: string }
HeadingMeta         = { level: int, content: string }
Sourcepos           = { start: Position, end: Position }
Position            = { line: int, column: int }  // 1-based

// AST node. kind selects which optional fields are present.
Node = {
  kind: string,
  children?: Node[],
  literal?: string,
  soft_break?: bool, hard_break?: bool, raw?: bool, code?: bool,
  level?: int,
  ordered?: bool, tight?: bool, start?: int, marker?: string, offset?: int,
  destination?: string, title?: string,
  auto_link_type?: "url" | "email", protocol?: string,
  info?: string,
  html_block_type?: int, closure?: string,
  alignments?: string[], alignment?: string,
  checked?: bool,
  index?: int, ref_count?: int, ref_index?: int, count?: int, ref?: string,
  target?: string, fragment?: string, embed?: bool,
  attributes?: { name: string, value: string }[],
  sourcepos?: Sourcepos,
}
`
