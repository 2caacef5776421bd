package format

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

const (
	lineBreak      = "<br />"
	paragraphOpen  = `<p class="my-2">`
	paragraphClose = `</p>`
	preOpen        = `<pre class="bg-gray-800 p-3 my-2 rounded-md overflow-auto text-sm font-mono">`
)

var headingClass = [...]string{
	1: "font-bold text-xl my-3",
	2: "font-bold text-lg my-2",
	3: "font-bold text-md my-2",
}

// Render assembles the HTML fragment for a parsed document.
func (f *Formatter) Render(doc Document) string {
	var out strings.Builder
	if !doc.Split {
		for _, seg := range doc.Segments {
			out.WriteString(renderSegment(seg))
		}
		return f.expandCode(out.String(), doc.Code)
	}

	for _, seg := range doc.Segments {
		if seg.blank() {
			continue
		}
		body := renderSegment(seg)
		if seg.standalone() {
			out.WriteString(body)
			continue
		}
		out.WriteString(paragraphOpen)
		out.WriteString(body)
		out.WriteString(paragraphClose)
	}
	return f.expandCode(out.String(), doc.Code)
}

func renderSegment(seg Segment) string {
	lines := make([]string, len(seg.Blocks))
	for i, b := range seg.Blocks {
		lines[i] = renderBlock(b)
	}
	return strings.Join(lines, lineBreak)
}

func renderBlock(b Block) string {
	switch b.Kind {
	case KindHeading:
		return fmt.Sprintf(`<h%d class="%s">%s</h%d>`, b.Level, headingClass[b.Level], b.Text, b.Level)
	case KindListItem:
		marker := `<span class="mr-2">•</span>`
		if b.Ordered {
			marker = `<span class="mr-2 font-bold">•</span>`
		}
		return `<div class="py-1 flex">` + marker + `<span>` + b.Text + `</span></div>`
	case KindStep:
		return `<div class="py-2"><strong class="text-blue-300">` + b.Label + `</strong>` + b.Text + `</div>`
	case KindCode:
		return placeholder(b.Code)
	default:
		return b.Text
	}
}

func (f *Formatter) expandCode(s string, code []CodeBlock) string {
	if len(code) == 0 {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		idx, err := strconv.Atoi(strings.Trim(m, placeholderMark))
		if err != nil || idx >= len(code) {
			return ""
		}
		return f.renderCode(code[idx])
	})
}

func (f *Formatter) renderCode(c CodeBlock) string {
	if f.highlightStyle != "" && c.Lang != "" {
		if out, ok := highlight(c, f.highlightStyle); ok {
			return out
		}
	}
	body := c.Code
	if f.escape {
		body = html.EscapeString(body)
	}
	return preOpen + body + "</pre>"
}
