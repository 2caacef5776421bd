// Package format turns model-generated text into an HTML fragment.
//
// It understands a small markdown-like dialect (headings, bold, italic,
// fenced and inline code, numbered and bulleted lists, "Step N:" lines and
// bare URLs) through an ordered set of line and block matchers. It is not a
// markdown parser: anything that does not match a rule is emitted literally.
package format

// Formatter converts raw text into HTML. The zero configuration (New with no
// options) does not escape the source text, so the output must only be
// rendered in a trusted context.
type Formatter struct {
	escape         bool
	highlightStyle string
}

// Option configures a Formatter.
type Option func(*Formatter)

// EscapeHTML makes the formatter escape HTML-significant characters in the
// source text and in code blocks before any rule runs.
func EscapeHTML(on bool) Option {
	return func(f *Formatter) { f.escape = on }
}

// Highlight enables chroma syntax highlighting for fenced code blocks that
// declare a known language. An empty style disables it.
func Highlight(style string) Option {
	return func(f *Formatter) { f.highlightStyle = style }
}

// New creates a Formatter.
func New(opts ...Option) *Formatter {
	f := &Formatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format parses and renders text. It never fails.
func (f *Formatter) Format(text string) string {
	return f.Render(f.Parse(text))
}

var std = New()

// Format renders text with the default Formatter.
func Format(text string) string {
	return std.Format(text)
}
