package options

// BrokenLinkReference describes a link whose label lacks a matching reference
// definition in the document.
type BrokenLinkReference struct {
	// Normalized is the case-folded, whitespace-collapsed label text.
	Normalized string `json:"normalized"`
	// Original is the label text as written in the source.
	Original string `json:"original"`
}

// ResolvedReference is a resolver-supplied destination for a broken link.
type ResolvedReference struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// BrokenLinkResolverFunc resolves a broken link reference. Returning nil (or
// an error) leaves the link unresolved.
type BrokenLinkResolverFunc func(ref BrokenLinkReference) (*ResolvedReference, error)

// URLRewriterFunc rewrites a link or image destination. Returning an error
// preserves the original URL.
type URLRewriterFunc func(url string) (string, error)
