package engine

import (
	"bytes"
	"regexp"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/cases"

	"git.home.luguber.info/inful/mdrender/hooks"
	"git.home.luguber.info/inful/mdrender/options"
)

// refCandidate matches bracketed reference-label candidates. Escaped
// brackets inside the label are allowed; nested brackets are not labels.
var refCandidate = regexp.MustCompile(`\[((?:[^\[\]\\]|\\.)+)\]`)

// resolveBrokenLinks invokes the broken-link callback once per link label
// that lacks a matching reference definition, in source order, and returns
// the resolved labels as reference definitions for the real parse.
//
// Resolution runs before parsing: a preliminary parse collects the
// definitions the document itself provides and turns everything that is
// already a link, code span or code block into structure, leaving unresolved
// reference labels behind as literal bracketed text. Only that literal text
// is scanned for candidates, and every unresolved label is offered to the
// host resolver. Successful resolutions are injected into the parser
// context, so the engine's own link resolution turns the occurrences into
// real links.
func (e *Engine) resolveBrokenLinks(src []byte) []parser.Reference {
	pctx := parser.NewContext()
	root := e.md.Parser().Parse(text.NewReader(src), parser.WithContext(pctx))

	defined := map[string]bool{}
	for _, ref := range pctx.References() {
		defined[normalizeLabel(string(ref.Label()))] = true
	}

	callback := hooks.NewBrokenLinkCallback(e.hooks.BrokenLink)
	seen := map[string]bool{}
	var resolved []parser.Reference
	for _, chunk := range literalChunks(root, src) {
		for _, m := range refCandidate.FindAllSubmatchIndex(chunk, -1) {
			label, ok := classifyCandidate(chunk, m)
			if !ok {
				continue
			}
			normalized := normalizeLabel(label)
			if normalized == "" || defined[normalized] || seen[normalized] {
				continue
			}
			seen[normalized] = true
			ref := callback.Resolve(e.ctx, options.BrokenLinkReference{
				Normalized: normalized,
				Original:   label,
			})
			if ref == nil {
				continue
			}
			resolved = append(resolved,
				parser.NewReference([]byte(label), []byte(ref.URL), []byte(ref.Title)))
		}
	}
	return resolved
}

// literalChunks collects the literal inline text of each leaf block, one
// chunk per block. Code blocks, code spans, autolinks and raw HTML never
// contribute: bracketed text inside them is not a reference.
func literalChunks(root gast.Node, src []byte) [][]byte {
	var chunks [][]byte
	_ = gast.Walk(root, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		if n.Type() != gast.TypeBlock || n.FirstChild() == nil || n.FirstChild().Type() != gast.TypeInline {
			return gast.WalkContinue, nil
		}
		if chunk := inlineLiteral(n, src); len(chunk) > 0 {
			chunks = append(chunks, chunk)
		}
		return gast.WalkSkipChildren, nil
	})
	return chunks
}

// inlineLiteral concatenates the plain text nodes under one block. Line
// break flags become newlines so labels never merge across lines.
func inlineLiteral(block gast.Node, src []byte) []byte {
	var buf bytes.Buffer
	_ = gast.Walk(block, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *gast.CodeSpan, *gast.AutoLink, *gast.RawHTML:
			return gast.WalkSkipChildren, nil
		case *gast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *gast.String:
			buf.Write(t.Value)
		}
		return gast.WalkContinue, nil
	})
	return buf.Bytes()
}

// classifyCandidate decides whether one regex match is a reference usage and
// returns its label text.
func classifyCandidate(chunk []byte, m []int) (string, bool) {
	label := string(chunk[m[2]:m[3]])
	if strings.HasPrefix(label, "^") {
		// Footnote label, resolved by the footnote extension.
		return "", false
	}
	end := m[1]
	if end < len(chunk) {
		switch chunk[end] {
		case '(':
			// Inline link: [text](dest).
			return "", false
		case ':':
			// Reference definition: [label]: dest.
			return "", false
		case '[':
			// Full reference [text][label]: this group is the text part
			// unless the label part is empty (collapsed form []).
			if end+1 < len(chunk) && chunk[end+1] == ']' {
				return label, true
			}
			return "", false
		}
	}
	return label, true
}

// normalizeLabel applies CommonMark label normalization: trim, collapse
// internal whitespace, Unicode case fold.
func normalizeLabel(label string) string {
	collapsed := strings.Join(strings.Fields(label), " ")
	return cases.Fold().String(collapsed)
}
