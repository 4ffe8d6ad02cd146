package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"go.abhg.dev/goldmark/wikilink"

	"git.home.luguber.info/inful/mdrender/options"
)

// renderCommonmark serializes the AST back to CommonMark text. The formatter
// honors the serialization knobs in RenderOptions: bullet marker choice,
// ordered marker padding, fence preference and paragraph wrap width.
func renderCommonmark(ctx context.Context, root gast.Node, source []byte, opts *options.Options) (string, error) {
	f := &cmFormatter{ctx: ctx, source: source, opts: opts}
	out, err := f.blocks(root)
	if err != nil {
		return "", fmt.Errorf("commonmark render failed: %w", err)
	}
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

type cmFormatter struct {
	ctx    context.Context
	source []byte
	opts   *options.Options
}

// blocks renders a container's block children, separated by blank lines.
func (f *cmFormatter) blocks(parent gast.Node) (string, error) {
	var parts []string
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		s, err := f.block(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (f *cmFormatter) block(n gast.Node) (string, error) {
	switch v := n.(type) {
	case *gast.Heading:
		body, err := f.inlines(v)
		if err != nil {
			return "", err
		}
		return strings.Repeat("#", v.Level) + " " + body, nil
	case *gast.Paragraph, *gast.TextBlock:
		body, err := f.inlines(n)
		if err != nil {
			return "", err
		}
		return f.wrap(body), nil
	case *gast.Blockquote:
		inner, err := f.blocks(v)
		if err != nil {
			return "", err
		}
		return prefixLines(inner, "> ", ">"), nil
	case *gast.List:
		return f.list(v)
	case *gast.FencedCodeBlock:
		info := ""
		if v.Info != nil {
			info = string(v.Info.Segment.Value(f.source))
		}
		return fenceBlock(collectLines(v, f.source), info), nil
	case *gast.CodeBlock:
		code := collectLines(v, f.source)
		if f.opts.Render.PreferFenced {
			return fenceBlock(code, ""), nil
		}
		return prefixLines(strings.TrimSuffix(code, "\n"), "    ", ""), nil
	case *gast.ThematicBreak:
		return "---", nil
	case *gast.HTMLBlock:
		var sb strings.Builder
		for i := 0; i < v.Lines().Len(); i++ {
			seg := v.Lines().At(i)
			sb.Write(seg.Value(f.source))
		}
		if v.HasClosure() {
			sb.Write(v.ClosureLine.Value(f.source))
		}
		return strings.TrimSuffix(sb.String(), "\n"), nil
	case *east.Table:
		return f.table(v)
	case *east.FootnoteList:
		return f.footnotes(v)
	case *east.DefinitionList:
		return f.definitionList(v)
	default:
		// Unknown blocks fall back to their source lines.
		if n.Type() == gast.TypeBlock && n.Lines() != nil && n.Lines().Len() > 0 {
			return strings.TrimSuffix(collectLines(n, f.source), "\n"), nil
		}
		return "", fmt.Errorf("cannot serialize block kind %s", n.Kind())
	}
}

func (f *cmFormatter) list(v *gast.List) (string, error) {
	var items []string
	num := v.Start
	if num == 0 {
		num = 1
	}
	for it := v.FirstChild(); it != nil; it = it.NextSibling() {
		marker := f.listMarker(v, num)
		num++
		var blockParts []string
		for c := it.FirstChild(); c != nil; c = c.NextSibling() {
			s, err := f.block(c)
			if err != nil {
				return "", err
			}
			blockParts = append(blockParts, s)
		}
		body := strings.Join(blockParts, "\n\n")
		indent := strings.Repeat(" ", len(marker))
		lines := strings.Split(body, "\n")
		for i, ln := range lines {
			if i == 0 {
				lines[i] = marker + ln
			} else if ln != "" {
				lines[i] = indent + ln
			}
		}
		items = append(items, strings.Join(lines, "\n"))
	}
	sep := "\n"
	if !v.IsTight {
		sep = "\n\n"
	}
	return strings.Join(items, sep), nil
}

// listMarker builds the item marker, trailing space included. Ordered
// markers are padded with spaces up to the configured minimum width.
func (f *cmFormatter) listMarker(v *gast.List, num int) string {
	if !v.IsOrdered() {
		return string(rune(f.opts.Render.ListStyle)) + " "
	}
	delim := byte('.')
	if v.Marker == ')' {
		delim = ')'
	}
	marker := strconv.Itoa(num) + string(delim)
	for len(marker)+1 < f.opts.Render.OLWidth {
		marker += " "
	}
	return marker + " "
}

func (f *cmFormatter) table(v *east.Table) (string, error) {
	var rows []string
	row := func(tr gast.Node) (string, error) {
		var cells []string
		for c := tr.FirstChild(); c != nil; c = c.NextSibling() {
			body, err := f.inlines(c)
			if err != nil {
				return "", err
			}
			cells = append(cells, strings.ReplaceAll(body, "|", `\|`))
		}
		return "| " + strings.Join(cells, " | ") + " |", nil
	}
	for tr := v.FirstChild(); tr != nil; tr = tr.NextSibling() {
		s, err := row(tr)
		if err != nil {
			return "", err
		}
		rows = append(rows, s)
		if _, ok := tr.(*east.TableHeader); ok {
			var delims []string
			for _, a := range v.Alignments {
				switch a {
				case east.AlignLeft:
					delims = append(delims, ":---")
				case east.AlignRight:
					delims = append(delims, "---:")
				case east.AlignCenter:
					delims = append(delims, ":---:")
				default:
					delims = append(delims, "---")
				}
			}
			rows = append(rows, "| "+strings.Join(delims, " | ")+" |")
		}
	}
	return strings.Join(rows, "\n"), nil
}

func (f *cmFormatter) footnotes(v *east.FootnoteList) (string, error) {
	var defs []string
	for fn := v.FirstChild(); fn != nil; fn = fn.NextSibling() {
		note, ok := fn.(*east.Footnote)
		if !ok {
			continue
		}
		body, err := f.blocks(note)
		if err != nil {
			return "", err
		}
		head := "[^" + string(note.Ref) + "]: "
		defs = append(defs, prefixFirst(body, head, strings.Repeat(" ", 4)))
	}
	return strings.Join(defs, "\n\n"), nil
}

func (f *cmFormatter) definitionList(v *east.DefinitionList) (string, error) {
	var parts []string
	for c := v.FirstChild(); c != nil; c = c.NextSibling() {
		switch d := c.(type) {
		case *east.DefinitionTerm:
			body, err := f.inlines(d)
			if err != nil {
				return "", err
			}
			parts = append(parts, body)
		case *east.DefinitionDescription:
			body, err := f.blocks(d)
			if err != nil {
				return "", err
			}
			parts = append(parts, prefixFirst(body, ": ", "  "))
		}
	}
	return strings.Join(parts, "\n"), nil
}

// inlines renders a node's inline children. Soft breaks stay as newlines at
// this stage; paragraph wrapping rewrites them afterwards.
func (f *cmFormatter) inlines(parent gast.Node) (string, error) {
	var sb strings.Builder
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if err := f.inline(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (f *cmFormatter) inline(sb *strings.Builder, n gast.Node) error {
	switch v := n.(type) {
	case *gast.Text:
		sb.WriteString(escapeCommonmark(string(v.Segment.Value(f.source))))
		if v.HardLineBreak() {
			sb.WriteString("\\\n")
		} else if v.SoftLineBreak() {
			sb.WriteByte('\n')
		}
	case *gast.String:
		sb.WriteString(escapeCommonmark(string(v.Value)))
	case *gast.CodeSpan:
		var code strings.Builder
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*gast.Text); ok {
				code.Write(t.Segment.Value(f.source))
			}
		}
		sb.WriteString(codeSpan(code.String()))
	case *gast.Emphasis:
		delim := strings.Repeat("*", v.Level)
		sb.WriteString(delim)
		body, err := f.inlines(v)
		if err != nil {
			return err
		}
		sb.WriteString(body)
		sb.WriteString(delim)
	case *east.Strikethrough:
		sb.WriteString("~~")
		body, err := f.inlines(v)
		if err != nil {
			return err
		}
		sb.WriteString(body)
		sb.WriteString("~~")
	case *gast.Link:
		body, err := f.inlines(v)
		if err != nil {
			return err
		}
		sb.WriteString("[" + body + "](" + linkDestination(v.Destination, v.Title) + ")")
	case *gast.Image:
		body, err := f.inlines(v)
		if err != nil {
			return err
		}
		sb.WriteString("![" + body + "](" + linkDestination(v.Destination, v.Title) + ")")
	case *gast.AutoLink:
		sb.WriteString("<" + string(v.URL(f.source)) + ">")
	case *gast.RawHTML:
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			sb.Write(seg.Value(f.source))
		}
	case *east.TaskCheckBox:
		if v.IsChecked {
			sb.WriteString("[x] ")
		} else {
			sb.WriteString("[ ] ")
		}
	case *east.FootnoteLink:
		sb.WriteString("[^" + strconv.Itoa(v.Index) + "]")
	case *east.FootnoteBacklink:
		// Backlinks are a rendering artifact; they have no source form.
	case *wikilink.Node:
		target := string(v.Target)
		if len(v.Fragment) > 0 {
			target += "#" + string(v.Fragment)
		}
		open := "[["
		if v.Embed {
			open = "![["
		}
		sb.WriteString(open + target + "]]")
	default:
		body, err := f.inlines(n)
		if err != nil {
			return err
		}
		sb.WriteString(body)
	}
	return nil
}

// wrap re-flows a paragraph at the configured width. Hard break segments are
// wrapped independently so the trailing backslash stays put.
func (f *cmFormatter) wrap(body string) string {
	width := f.opts.Render.Width
	if width <= 0 {
		return body
	}
	segs := strings.Split(body, "\\\n")
	for i, seg := range segs {
		segs[i] = wrapWords(seg, width)
	}
	return strings.Join(segs, "\\\n")
}

func wrapWords(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	var sb strings.Builder
	col := 0
	for i, w := range words {
		if i == 0 {
			sb.WriteString(w)
			col = len(w)
			continue
		}
		if col+1+len(w) > width {
			sb.WriteByte('\n')
			col = len(w)
		} else {
			sb.WriteByte(' ')
			col += 1 + len(w)
		}
		sb.WriteString(w)
	}
	return sb.String()
}

// prefixLines prefixes every line of s; blank lines take the bare prefix.
func prefixLines(s, prefix, blankPrefix string) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		if ln == "" && blankPrefix != "" {
			lines[i] = blankPrefix
		} else if ln != "" || blankPrefix != "" {
			lines[i] = prefix + ln
		}
	}
	return strings.Join(lines, "\n")
}

// prefixFirst prefixes the first line with head and the rest with cont.
func prefixFirst(s, head, cont string) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		if i == 0 {
			lines[i] = head + ln
		} else if ln != "" {
			lines[i] = cont + ln
		}
	}
	return strings.Join(lines, "\n")
}

func fenceBlock(code, info string) string {
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	out := fence + info + "\n" + code
	if code != "" && !strings.HasSuffix(code, "\n") {
		out += "\n"
	}
	return out + fence
}

func codeSpan(code string) string {
	delim := "`"
	for strings.Contains(code, delim) {
		delim += "`"
	}
	if len(delim) > 1 || strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") {
		return delim + " " + code + " " + delim
	}
	return delim + code + delim
}

func linkDestination(dest []byte, title []byte) string {
	d := string(dest)
	if strings.ContainsAny(d, " ()") {
		d = "<" + d + ">"
	}
	if len(title) > 0 {
		return d + ` "` + strings.ReplaceAll(string(title), `"`, `\"`) + `"`
	}
	return d
}

var cmEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
)

func escapeCommonmark(s string) string {
	return cmEscaper.Replace(s)
}
