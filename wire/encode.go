package wire

import (
	"fmt"

	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/wikilink"
)

// Encode serializes an engine AST into the host-visible tagged tree. When
// withSourcepos is set, block nodes carry their 1-based source range.
func Encode(root gast.Node, source []byte, withSourcepos bool) (*Node, error) {
	enc := &encoder{source: source}
	if withSourcepos {
		enc.lines = NewLineIndex(source)
	}
	return enc.encode(root)
}

type encoder struct {
	source []byte
	lines  *LineIndex
}

func (e *encoder) encode(n gast.Node) (*Node, error) {
	out, err := e.encodeOne(n)
	if err != nil {
		return nil, err
	}
	for _, attr := range n.Attributes() {
		out.Attributes = append(out.Attributes, Attribute{
			Name:  string(attr.Name),
			Value: attrValue(attr.Value),
		})
	}
	if e.lines != nil && n.Type() != gast.TypeInline {
		out.Sourcepos = e.blockSourcepos(n)
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		child, err := e.encode(c)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

func (e *encoder) encodeOne(n gast.Node) (*Node, error) {
	switch v := n.(type) {
	case *gast.Document:
		return &Node{Kind: KindDocument}, nil
	case *gast.Heading:
		return &Node{Kind: KindHeading, Level: v.Level}, nil
	case *gast.Paragraph:
		return &Node{Kind: KindParagraph}, nil
	case *gast.TextBlock:
		return &Node{Kind: KindTextBlock}, nil
	case *gast.Blockquote:
		return &Node{Kind: KindBlockquote}, nil
	case *gast.List:
		return &Node{
			Kind:    KindList,
			Ordered: v.IsOrdered(),
			Tight:   v.IsTight,
			Start:   v.Start,
			Marker:  string(v.Marker),
		}, nil
	case *gast.ListItem:
		return &Node{Kind: KindListItem, Offset: v.Offset}, nil
	case *gast.FencedCodeBlock:
		out := &Node{Kind: KindFencedCodeBlock, Literal: e.linesText(v)}
		if v.Info != nil {
			out.Info = string(v.Info.Segment.Value(e.source))
		}
		return out, nil
	case *gast.CodeBlock:
		return &Node{Kind: KindCodeBlock, Literal: e.linesText(v)}, nil
	case *gast.HTMLBlock:
		out := &Node{
			Kind:          KindHTMLBlock,
			Literal:       e.linesText(v),
			HTMLBlockType: int(v.HTMLBlockType),
		}
		if v.HasClosure() {
			out.Closure = string(v.ClosureLine.Value(e.source))
		}
		return out, nil
	case *gast.ThematicBreak:
		return &Node{Kind: KindThematicBreak}, nil
	case *gast.Text:
		return &Node{
			Kind:      KindText,
			Literal:   string(v.Segment.Value(e.source)),
			SoftBreak: v.SoftLineBreak(),
			HardBreak: v.HardLineBreak(),
			Raw:       v.IsRaw(),
		}, nil
	case *gast.String:
		return &Node{
			Kind:    KindString,
			Literal: string(v.Value),
			Raw:     v.IsRaw(),
			Code:    v.IsCode(),
		}, nil
	case *gast.CodeSpan:
		return &Node{Kind: KindCodeSpan}, nil
	case *gast.Emphasis:
		return &Node{Kind: KindEmphasis, Level: v.Level}, nil
	case *gast.Image:
		return &Node{
			Kind:        KindImage,
			Destination: string(v.Destination),
			Title:       string(v.Title),
		}, nil
	case *gast.Link:
		return &Node{
			Kind:        KindLink,
			Destination: string(v.Destination),
			Title:       string(v.Title),
		}, nil
	case *gast.AutoLink:
		out := &Node{
			Kind:        KindAutoLink,
			Literal:     string(v.Label(e.source)),
			Destination: string(v.URL(e.source)),
			Protocol:    string(v.Protocol),
		}
		if v.AutoLinkType == gast.AutoLinkEmail {
			out.AutoLinkType = "email"
		} else {
			out.AutoLinkType = "url"
		}
		return out, nil
	case *gast.RawHTML:
		return &Node{Kind: KindRawHTML, Literal: e.segmentsText(v.Segments)}, nil
	case *east.Strikethrough:
		return &Node{Kind: KindStrikethrough}, nil
	case *east.TaskCheckBox:
		return &Node{Kind: KindTaskCheckBox, Checked: v.IsChecked}, nil
	case *east.Table:
		out := &Node{Kind: KindTable}
		for _, a := range v.Alignments {
			out.Alignments = append(out.Alignments, alignmentName(a))
		}
		return out, nil
	case *east.TableHeader:
		return &Node{Kind: KindTableHeader}, nil
	case *east.TableRow:
		return &Node{Kind: KindTableRow}, nil
	case *east.TableCell:
		return &Node{Kind: KindTableCell, Alignment: alignmentName(v.Alignment)}, nil
	case *east.Footnote:
		return &Node{Kind: KindFootnote, Ref: string(v.Ref), Index: v.Index}, nil
	case *east.FootnoteList:
		return &Node{Kind: KindFootnoteList, Count: v.Count}, nil
	case *east.FootnoteLink:
		return &Node{
			Kind:     KindFootnoteLink,
			Index:    v.Index,
			RefCount: v.RefCount,
			RefIndex: v.RefIndex,
		}, nil
	case *east.FootnoteBacklink:
		return &Node{
			Kind:     KindFootnoteBacklink,
			Index:    v.Index,
			RefCount: v.RefCount,
			RefIndex: v.RefIndex,
		}, nil
	case *east.DefinitionList:
		return &Node{Kind: KindDefinitionList, Offset: v.Offset}, nil
	case *east.DefinitionTerm:
		return &Node{Kind: KindDefinitionTerm}, nil
	case *east.DefinitionDescription:
		return &Node{Kind: KindDefinitionDescription, Tight: v.IsTight}, nil
	case *wikilink.Node:
		return &Node{
			Kind:     KindWikilink,
			Target:   string(v.Target),
			Fragment: string(v.Fragment),
			Embed:    v.Embed,
		}, nil
	default:
		return nil, fmt.Errorf("cannot serialize node kind %s", n.Kind())
	}
}

func (e *encoder) linesText(n gast.Node) string {
	return e.segmentsText(n.Lines())
}

func (e *encoder) segmentsText(segs *text.Segments) string {
	if segs == nil {
		return ""
	}
	var out []byte
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		out = append(out, seg.Value(e.source)...)
	}
	return string(out)
}

func (e *encoder) blockSourcepos(n gast.Node) *Sourcepos {
	if _, ok := n.(*gast.Document); ok {
		if len(e.source) == 0 {
			return nil
		}
		return &Sourcepos{
			Start: e.lines.Position(0),
			End:   e.lines.Position(len(e.source) - 1),
		}
	}
	return BlockSourcepos(n, e.lines)
}

// BlockSourcepos computes a block node's 1-based source range, or nil when
// the node covers no source text.
func BlockSourcepos(n gast.Node, lines *LineIndex) *Sourcepos {
	start, stop, ok := blockExtent(n)
	if !ok {
		return nil
	}
	if _, isHeading := n.(*gast.Heading); isHeading {
		start = lines.atxMarkerStart(start)
	}
	if stop > start {
		stop--
	}
	return &Sourcepos{
		Start: lines.Position(start),
		End:   lines.Position(stop),
	}
}

// blockExtent finds the byte range a block covers. Container blocks carry no
// line segments of their own, so the extent is taken from their descendants.
func blockExtent(n gast.Node) (start, stop int, ok bool) {
	if n.Type() == gast.TypeInline {
		return 0, 0, false
	}
	if segs := n.Lines(); segs != nil && segs.Len() > 0 {
		return segs.At(0).Start, segs.At(segs.Len() - 1).Stop, true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		cs, cstop, cok := blockExtent(c)
		if !cok {
			continue
		}
		if !ok || cs < start {
			start = cs
		}
		if !ok || cstop > stop {
			stop = cstop
		}
		ok = true
	}
	return start, stop, ok
}

func attrValue(v any) string {
	switch s := v.(type) {
	case []byte:
		return string(s)
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

func alignmentName(a east.Alignment) string {
	switch a {
	case east.AlignLeft:
		return "left"
	case east.AlignRight:
		return "right"
	case east.AlignCenter:
		return "center"
	default:
		return "none"
	}
}

// LineIndex maps byte offsets to 1-based line/column positions.
type LineIndex struct {
	source []byte
	starts []int
}

// NewLineIndex builds an index over source.
func NewLineIndex(source []byte) *LineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' && i+1 < len(source) {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{source: source, starts: starts}
}

// atxMarkerStart backs a heading's content offset up to the opening '#' so
// the range covers the marker, matching cmark positions. Setext headings
// have no marker before the content and keep their offset.
func (l *LineIndex) atxMarkerStart(start int) int {
	if start > len(l.source) {
		return start
	}
	pos := l.Position(start)
	i := start - (pos.Column - 1)
	for i < start && l.source[i] == ' ' {
		i++
	}
	if i < start && l.source[i] == '#' {
		return i
	}
	return start
}

func (l *LineIndex) Position(offset int) Position {
	lo, hi := 0, len(l.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if l.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return Position{Line: lo + 1, Column: offset - l.starts[lo] + 1}
}
