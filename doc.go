// Package mdrender renders CommonMark/GFM Markdown to HTML, XML and
// CommonMark text, with host-supplied hooks for syntax highlighting, heading
// emission, broken-link resolution and URL rewriting.
//
// Each entry point is a straight-line pipeline with no long-lived state:
// decode the options value, attach hooks, run the engine, map the outcome.
// Calls are independent; two calls never alias mutable state, so the package
// is safe for concurrent use as long as the hook callables themselves are.
//
// Failures decoding options, deserializing a host AST, or rendering are
// returned as *Error. Failures inside hook callables are swallowed: the
// render proceeds with the hook's contribution elided. SetDebugLogging
// enables logging of swallowed failures.
package mdrender
