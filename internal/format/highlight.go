package format

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var chromaFormatter = chromahtml.New(chromahtml.WithClasses(true))

// highlight renders a code block with chroma. ok is false when the language
// is unknown or tokenising fails; the caller then falls back to a plain block.
func highlight(c CodeBlock, style string) (string, bool) {
	lexer := lexers.Get(c.Lang)
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, c.Code)
	if err != nil {
		return "", false
	}
	var b strings.Builder
	b.WriteString(`<div class="my-2 rounded-md overflow-auto text-sm font-mono">`)
	if err := chromaFormatter.Format(&b, styles.Get(style), it); err != nil {
		return "", false
	}
	b.WriteString(`</div>`)
	return b.String(), true
}
