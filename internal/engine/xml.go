package engine

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	gast "github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/mdrender/options"
	"git.home.luguber.info/inful/mdrender/wire"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE document SYSTEM "CommonMark.dtd">
`

// renderXML serializes the AST as a CommonMark-DTD-style XML document. Element
// names follow the wire node kinds; literals are emitted with xml:space
// preserved so round-tripping the document keeps whitespace intact.
func renderXML(root gast.Node, source []byte, opts *options.Options) (string, error) {
	tree, err := wire.Encode(root, source, opts.Render.Sourcepos)
	if err != nil {
		return "", fmt.Errorf("xml render failed: %w", err)
	}
	return renderXMLTree(tree, opts), nil
}

// renderXMLTree serializes an already-encoded tree. Decoded trees carry no
// line segments, so the stored per-node ranges are the only sourcepos data
// available on this path.
func renderXMLTree(tree *wire.Node, opts *options.Options) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	writeXMLNode(&sb, tree, 0, true, opts.Render.Sourcepos)
	return sb.String()
}

func writeXMLNode(sb *strings.Builder, n *wire.Node, depth int, isRoot, withSourcepos bool) {
	indent := strings.Repeat("  ", depth)
	sb.WriteString(indent)
	sb.WriteByte('<')
	sb.WriteString(n.Kind)
	if isRoot {
		sb.WriteString(` xmlns="http://commonmark.org/xml/1.0"`)
	}
	writeXMLAttrs(sb, n, withSourcepos)

	switch {
	case n.Literal != "":
		sb.WriteString(` xml:space="preserve">`)
		writeXMLEscaped(sb, n.Literal)
		sb.WriteString("</")
		sb.WriteString(n.Kind)
		sb.WriteString(">\n")
	case len(n.Children) > 0:
		sb.WriteString(">\n")
		for _, c := range n.Children {
			writeXMLNode(sb, c, depth+1, false, withSourcepos)
		}
		sb.WriteString(indent)
		sb.WriteString("</")
		sb.WriteString(n.Kind)
		sb.WriteString(">\n")
	default:
		sb.WriteString(" />\n")
	}
}

func writeXMLAttrs(sb *strings.Builder, n *wire.Node, withSourcepos bool) {
	attr := func(name, value string) {
		sb.WriteByte(' ')
		sb.WriteString(name)
		sb.WriteString(`="`)
		writeXMLEscaped(sb, value)
		sb.WriteByte('"')
	}
	if withSourcepos && n.Sourcepos != nil {
		attr("sourcepos", fmt.Sprintf("%d:%d-%d:%d",
			n.Sourcepos.Start.Line, n.Sourcepos.Start.Column,
			n.Sourcepos.End.Line, n.Sourcepos.End.Column))
	}
	switch n.Kind {
	case wire.KindHeading, wire.KindEmphasis:
		if n.Level > 0 {
			attr("level", strconv.Itoa(n.Level))
		}
	case wire.KindList:
		if n.Ordered {
			attr("type", "ordered")
			attr("start", strconv.Itoa(n.Start))
		} else {
			attr("type", "bullet")
		}
		attr("tight", strconv.FormatBool(n.Tight))
		if n.Marker != "" {
			attr("delimiter", n.Marker)
		}
	case wire.KindLink, wire.KindImage:
		attr("destination", n.Destination)
		if n.Title != "" {
			attr("title", n.Title)
		}
	case wire.KindAutoLink:
		attr("destination", n.Destination)
		if n.AutoLinkType != "" {
			attr("type", n.AutoLinkType)
		}
	case wire.KindFencedCodeBlock:
		if n.Info != "" {
			attr("info", n.Info)
		}
	case wire.KindHTMLBlock:
		if n.HTMLBlockType > 0 {
			attr("type", strconv.Itoa(n.HTMLBlockType))
		}
	case wire.KindTable:
		if len(n.Alignments) > 0 {
			attr("alignments", strings.Join(n.Alignments, " "))
		}
	case wire.KindTableCell:
		if n.Alignment != "" {
			attr("alignment", n.Alignment)
		}
	case wire.KindTaskCheckBox:
		attr("checked", strconv.FormatBool(n.Checked))
	case wire.KindFootnote, wire.KindFootnoteLink, wire.KindFootnoteBacklink:
		if n.Index > 0 {
			attr("index", strconv.Itoa(n.Index))
		}
		if n.Ref != "" {
			attr("ref", n.Ref)
		}
	case wire.KindWikilink:
		attr("target", n.Target)
		if n.Fragment != "" {
			attr("fragment", n.Fragment)
		}
		if n.Embed {
			attr("embed", "true")
		}
	}
	for _, a := range n.Attributes {
		// data-sourcepos is the HTML rendition of the range already
		// emitted as the sourcepos attribute.
		if a.Name == "data-sourcepos" {
			continue
		}
		attr(a.Name, a.Value)
	}
}

func writeXMLEscaped(sb *strings.Builder, s string) {
	// xml.EscapeText cannot fail writing to a strings.Builder.
	_ = xml.EscapeText(sb, []byte(s))
}
