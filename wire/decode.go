package wire

import (
	"bytes"
	"fmt"

	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/wikilink"
)

// DeserializeError reports a wire tree that does not match the engine's node
// schema. Path identifies the offending node (e.g. "ast.children[2]").
type DeserializeError struct {
	Path    string
	Message string
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("ast node %q: %s", e.Path, e.Message)
}

func deserializeErrf(path, format string, args ...any) *DeserializeError {
	return &DeserializeError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// Decode rebuilds an engine AST from the host-supplied tree. The returned
// source is the synthetic buffer the node segments point into; it must be
// passed alongside the root to any renderer.
func Decode(root *Node) (gast.Node, []byte, error) {
	if root == nil {
		return nil, nil, deserializeErrf("ast", "missing root node")
	}
	if root.Kind != KindDocument {
		return nil, nil, deserializeErrf("ast", "root must be %q, got %q", KindDocument, root.Kind)
	}
	d := &decoder{}
	n, err := d.decode(root, "ast")
	if err != nil {
		return nil, nil, err
	}
	return n, d.buf.Bytes(), nil
}

type decoder struct {
	buf bytes.Buffer
}

// add appends a literal to the synthetic source and returns its segment.
func (d *decoder) add(literal string) text.Segment {
	start := d.buf.Len()
	d.buf.WriteString(literal)
	return text.NewSegment(start, d.buf.Len())
}

// addLines appends a literal and splits it into per-line segments, the shape
// block-level code and HTML nodes keep their content in.
func (d *decoder) addLines(literal string) *text.Segments {
	segs := text.NewSegments()
	start := d.buf.Len()
	d.buf.WriteString(literal)
	lineStart := start
	for i := 0; i < len(literal); i++ {
		if literal[i] == '\n' {
			segs.Append(text.NewSegment(lineStart, start+i+1))
			lineStart = start + i + 1
		}
	}
	if lineStart < d.buf.Len() {
		segs.Append(text.NewSegment(lineStart, d.buf.Len()))
	}
	return segs
}

func (d *decoder) decode(n *Node, path string) (gast.Node, error) {
	out, err := d.decodeOne(n, path)
	if err != nil {
		return nil, err
	}
	for _, attr := range n.Attributes {
		out.SetAttributeString(attr.Name, []byte(attr.Value))
	}
	for i, c := range n.Children {
		if c == nil {
			return nil, deserializeErrf(fmt.Sprintf("%s.children[%d]", path, i), "missing node")
		}
		child, err := d.decode(c, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out.AppendChild(out, child)
	}
	return out, nil
}

func (d *decoder) decodeOne(n *Node, path string) (gast.Node, error) {
	switch n.Kind {
	case KindDocument:
		return gast.NewDocument(), nil
	case KindHeading:
		if n.Level < 1 || n.Level > 6 {
			return nil, deserializeErrf(path, "heading level must be 1..6, got %d", n.Level)
		}
		return gast.NewHeading(n.Level), nil
	case KindParagraph:
		return gast.NewParagraph(), nil
	case KindTextBlock:
		return gast.NewTextBlock(), nil
	case KindBlockquote:
		return gast.NewBlockquote(), nil
	case KindList:
		marker := byte('-')
		if n.Marker != "" {
			marker = n.Marker[0]
		} else if n.Ordered {
			marker = '.'
		}
		l := gast.NewList(marker)
		l.IsTight = n.Tight
		l.Start = n.Start
		return l, nil
	case KindListItem:
		return gast.NewListItem(n.Offset), nil
	case KindFencedCodeBlock:
		var info *gast.Text
		if n.Info != "" {
			info = gast.NewTextSegment(d.add(n.Info))
		}
		f := gast.NewFencedCodeBlock(info)
		f.SetLines(d.addLines(n.Literal))
		return f, nil
	case KindCodeBlock:
		c := gast.NewCodeBlock()
		c.SetLines(d.addLines(n.Literal))
		return c, nil
	case KindHTMLBlock:
		h := gast.NewHTMLBlock(gast.HTMLBlockType(n.HTMLBlockType))
		h.SetLines(d.addLines(n.Literal))
		if n.Closure != "" {
			h.ClosureLine = d.add(n.Closure)
		}
		return h, nil
	case KindThematicBreak:
		return gast.NewThematicBreak(), nil
	case KindText:
		t := gast.NewTextSegment(d.add(n.Literal))
		t.SetSoftLineBreak(n.SoftBreak)
		t.SetHardLineBreak(n.HardBreak)
		t.SetRaw(n.Raw)
		return t, nil
	case KindString:
		s := gast.NewString([]byte(n.Literal))
		s.SetRaw(n.Raw)
		s.SetCode(n.Code)
		return s, nil
	case KindCodeSpan:
		return gast.NewCodeSpan(), nil
	case KindEmphasis:
		level := n.Level
		if level == 0 {
			level = 1
		}
		return gast.NewEmphasis(level), nil
	case KindLink:
		return d.link(n), nil
	case KindImage:
		return gast.NewImage(d.link(n)), nil
	case KindAutoLink:
		typ := gast.AutoLinkURL
		if n.AutoLinkType == "email" {
			typ = gast.AutoLinkEmail
		}
		a := gast.NewAutoLink(typ, gast.NewTextSegment(d.add(n.Literal)))
		if n.Protocol != "" {
			a.Protocol = []byte(n.Protocol)
		}
		return a, nil
	case KindRawHTML:
		r := gast.NewRawHTML()
		r.Segments.Append(d.add(n.Literal))
		return r, nil
	case KindStrikethrough:
		return east.NewStrikethrough(), nil
	case KindTaskCheckBox:
		return east.NewTaskCheckBox(n.Checked), nil
	case KindTable:
		t := east.NewTable()
		for _, a := range n.Alignments {
			t.Alignments = append(t.Alignments, alignmentValue(a))
		}
		return t, nil
	case KindTableHeader:
		return &east.TableHeader{}, nil
	case KindTableRow:
		return &east.TableRow{}, nil
	case KindTableCell:
		return &east.TableCell{Alignment: alignmentValue(n.Alignment)}, nil
	case KindFootnote:
		return &east.Footnote{Ref: []byte(n.Ref), Index: n.Index}, nil
	case KindFootnoteList:
		return &east.FootnoteList{Count: n.Count}, nil
	case KindFootnoteLink:
		return &east.FootnoteLink{Index: n.Index, RefCount: n.RefCount, RefIndex: n.RefIndex}, nil
	case KindFootnoteBacklink:
		return &east.FootnoteBacklink{Index: n.Index, RefCount: n.RefCount, RefIndex: n.RefIndex}, nil
	case KindDefinitionList:
		return &east.DefinitionList{Offset: n.Offset}, nil
	case KindDefinitionTerm:
		return &east.DefinitionTerm{}, nil
	case KindDefinitionDescription:
		return &east.DefinitionDescription{IsTight: n.Tight}, nil
	case KindWikilink:
		w := &wikilink.Node{Target: []byte(n.Target), Embed: n.Embed}
		if n.Fragment != "" {
			w.Fragment = []byte(n.Fragment)
		}
		return w, nil
	case "":
		return nil, deserializeErrf(path, "missing node kind")
	default:
		return nil, deserializeErrf(path, "unknown node kind %q", n.Kind)
	}
}

func (d *decoder) link(n *Node) *gast.Link {
	l := gast.NewLink()
	l.Destination = []byte(n.Destination)
	if n.Title != "" {
		l.Title = []byte(n.Title)
	}
	return l
}

func alignmentValue(name string) east.Alignment {
	switch name {
	case "left":
		return east.AlignLeft
	case "right":
		return east.AlignRight
	case "center":
		return east.AlignCenter
	default:
		return east.AlignNone
	}
}
