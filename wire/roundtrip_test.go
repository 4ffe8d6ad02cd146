package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func doc(children ...*Node) *Node {
	return &Node{Kind: KindDocument, Children: children}
}

// decodeEncode pushes a tree through Decode and back through Encode.
func decodeEncode(t *testing.T, tree *Node) *Node {
	t.Helper()
	root, source, err := Decode(tree)
	require.NoError(t, err)
	out, err := Encode(root, source, false)
	require.NoError(t, err)
	return out
}

func TestRoundTrip_HeadingAndParagraph(t *testing.T) {
	tree := doc(
		&Node{Kind: KindHeading, Level: 2, Children: []*Node{
			{Kind: KindText, Literal: "Title"},
		}},
		&Node{Kind: KindParagraph, Children: []*Node{
			{Kind: KindText, Literal: "line one", SoftBreak: true},
			{Kind: KindText, Literal: "line two"},
		}},
	)
	require.Equal(t, tree, decodeEncode(t, tree))
}

func TestRoundTrip_ListShape(t *testing.T) {
	tree := doc(
		&Node{Kind: KindList, Ordered: true, Tight: true, Start: 3, Marker: ".", Children: []*Node{
			{Kind: KindListItem, Offset: 3, Children: []*Node{
				{Kind: KindTextBlock, Children: []*Node{{Kind: KindText, Literal: "a"}}},
			}},
			{Kind: KindListItem, Offset: 3, Children: []*Node{
				{Kind: KindTextBlock, Children: []*Node{{Kind: KindText, Literal: "b"}}},
			}},
		}},
	)
	require.Equal(t, tree, decodeEncode(t, tree))
}

func TestRoundTrip_FencedCodeBlock(t *testing.T) {
	tree := doc(
		&Node{Kind: KindFencedCodeBlock, Info: "go", Literal: "func main() {}\n"},
	)
	require.Equal(t, tree, decodeEncode(t, tree))
}

func TestRoundTrip_LinkAndImage(t *testing.T) {
	tree := doc(
		&Node{Kind: KindParagraph, Children: []*Node{
			{Kind: KindLink, Destination: "/u", Title: "t", Children: []*Node{
				{Kind: KindText, Literal: "x"},
			}},
			{Kind: KindImage, Destination: "/img.png", Children: []*Node{
				{Kind: KindText, Literal: "alt"},
			}},
		}},
	)
	require.Equal(t, tree, decodeEncode(t, tree))
}

func TestRoundTrip_InlineMarks(t *testing.T) {
	tree := doc(
		&Node{Kind: KindParagraph, Children: []*Node{
			{Kind: KindEmphasis, Level: 2, Children: []*Node{{Kind: KindText, Literal: "bold"}}},
			{Kind: KindCodeSpan, Children: []*Node{{Kind: KindText, Literal: "code"}}},
			{Kind: KindStrikethrough, Children: []*Node{{Kind: KindText, Literal: "gone"}}},
		}},
	)
	require.Equal(t, tree, decodeEncode(t, tree))
}

func TestRoundTrip_TableShape(t *testing.T) {
	tree := doc(
		&Node{Kind: KindTable, Alignments: []string{"left", "none"}, Children: []*Node{
			{Kind: KindTableHeader, Children: []*Node{
				{Kind: KindTableCell, Alignment: "left", Children: []*Node{{Kind: KindText, Literal: "h1"}}},
				{Kind: KindTableCell, Alignment: "none", Children: []*Node{{Kind: KindText, Literal: "h2"}}},
			}},
			{Kind: KindTableRow, Children: []*Node{
				{Kind: KindTableCell, Alignment: "left", Children: []*Node{{Kind: KindText, Literal: "a"}}},
				{Kind: KindTableCell, Alignment: "none", Children: []*Node{{Kind: KindText, Literal: "b"}}},
			}},
		}},
	)
	require.Equal(t, tree, decodeEncode(t, tree))
}

func TestRoundTrip_Wikilink(t *testing.T) {
	tree := doc(
		&Node{Kind: KindParagraph, Children: []*Node{
			{Kind: KindWikilink, Target: "Page", Fragment: "section", Embed: true},
		}},
	)
	require.Equal(t, tree, decodeEncode(t, tree))
}

func TestRoundTrip_AutoLink(t *testing.T) {
	tree := doc(
		&Node{Kind: KindParagraph, Children: []*Node{
			{
				Kind:         KindAutoLink,
				Literal:      "https://example.com",
				Destination:  "https://example.com",
				AutoLinkType: "url",
			},
		}},
	)
	require.Equal(t, tree, decodeEncode(t, tree))
}

func TestRoundTrip_RawHTML(t *testing.T) {
	tree := doc(
		&Node{Kind: KindParagraph, Children: []*Node{
			{Kind: KindRawHTML, Literal: "<br/>"},
		}},
	)
	require.Equal(t, tree, decodeEncode(t, tree))
}

func TestRoundTrip_BlockquoteAndThematicBreak(t *testing.T) {
	tree := doc(
		&Node{Kind: KindBlockquote, Children: []*Node{
			{Kind: KindParagraph, Children: []*Node{{Kind: KindText, Literal: "quoted"}}},
		}},
		&Node{Kind: KindThematicBreak},
	)
	require.Equal(t, tree, decodeEncode(t, tree))
}

func TestDecode_NilRoot_Rejected(t *testing.T) {
	_, _, err := Decode(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing root")
}

func TestDecode_NonDocumentRoot_Rejected(t *testing.T) {
	_, _, err := Decode(&Node{Kind: KindParagraph})
	require.Error(t, err)
	require.Contains(t, err.Error(), `root must be "document"`)
}

func TestDecode_UnknownKind_ReportsPath(t *testing.T) {
	_, _, err := Decode(doc(&Node{Kind: "blink"}))
	require.Error(t, err)
	require.Contains(t, err.Error(), `"ast.children[0]"`)
	require.Contains(t, err.Error(), `unknown node kind "blink"`)
}

func TestDecode_BadHeadingLevel_ReportsPath(t *testing.T) {
	_, _, err := Decode(doc(&Node{Kind: KindHeading, Level: 7}))
	require.Error(t, err)
	require.Contains(t, err.Error(), `"ast.children[0]"`)
	require.Contains(t, err.Error(), "heading level")
}

func TestLineIndex_Positions(t *testing.T) {
	idx := NewLineIndex([]byte("ab\ncd\n\nef"))
	require.Equal(t, Position{Line: 1, Column: 1}, idx.Position(0))
	require.Equal(t, Position{Line: 1, Column: 3}, idx.Position(2))
	require.Equal(t, Position{Line: 2, Column: 1}, idx.Position(3))
	require.Equal(t, Position{Line: 3, Column: 1}, idx.Position(6))
	require.Equal(t, Position{Line: 4, Column: 2}, idx.Position(8))
}
