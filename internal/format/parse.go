package format

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// placeholderMark delimits an extracted code block inside line text. Parse
// replaces any placeholderMark in the input with markReplacement, so only
// extracted fences produce it. The URL rule stops at it.
const (
	placeholderMark = "\x00"
	markReplacement = "\uFFFD"
)

var (
	fenceRe       = regexp.MustCompile("(?s)```(.*?)```")
	fenceInfoRe   = regexp.MustCompile(`^[A-Za-z0-9_+#.-]+$`)
	placeholderRe = regexp.MustCompile(`\x00([0-9]+)\x00`)

	urlRe        = regexp.MustCompile(`(https?://[^\s\x00]+)`)
	boldRe       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe     = regexp.MustCompile(`\*(.*?)\*`)
	inlineCodeRe = regexp.MustCompile("`([^`]+)`")

	h1Re       = regexp.MustCompile(`^# (.*)$`)
	h2Re       = regexp.MustCompile(`^## (.*)$`)
	h3Re       = regexp.MustCompile(`^### (.*)$`)
	numberedRe = regexp.MustCompile(`^\d+\.\s+(.*)$`)
	bulletRe   = regexp.MustCompile(`^[-*]\s+(.*)$`)
	stepRe     = regexp.MustCompile(`^(Step \d+:)(.*)$`)
)

const linkTemplate = `<a href="$1" target="_blank" class="underline hover:text-blue-100 transition-colors">$1</a>`

// Parse runs every rule except final HTML assembly. Fenced code is lifted out
// first so that no other rule sees its content.
func (f *Formatter) Parse(text string) Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, placeholderMark, markReplacement)

	var doc Document
	text, doc.Code = extractFences(text)

	parts := strings.Split(text, "\n\n")
	doc.Split = len(parts) > 1
	doc.Segments = make([]Segment, 0, len(parts))
	for _, part := range parts {
		lines := strings.Split(part, "\n")
		seg := Segment{Blocks: make([]Block, 0, len(lines))}
		for _, line := range lines {
			seg.Blocks = append(seg.Blocks, f.parseLine(line))
		}
		doc.Segments = append(doc.Segments, seg)
	}
	return doc
}

func extractFences(text string) (string, []CodeBlock) {
	matches := fenceRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}
	var (
		b     strings.Builder
		code  = make([]CodeBlock, 0, len(matches))
		start int
	)
	for i, m := range matches {
		b.WriteString(text[start:m[0]])
		code = append(code, splitFence(text[m[2]:m[3]]))
		b.WriteString(placeholder(i))
		start = m[1]
	}
	b.WriteString(text[start:])
	return b.String(), code
}

// splitFence separates an info string ("```go\n...") from the code body.
func splitFence(body string) CodeBlock {
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return CodeBlock{Code: body}
	}
	info := body[:nl]
	switch {
	case info == "":
		return CodeBlock{Code: body[nl+1:]}
	case fenceInfoRe.MatchString(info):
		return CodeBlock{Lang: info, Code: body[nl+1:]}
	default:
		return CodeBlock{Code: body}
	}
}

func placeholder(i int) string {
	return placeholderMark + strconv.Itoa(i) + placeholderMark
}

func (f *Formatter) parseLine(line string) Block {
	if m := placeholderRe.FindStringSubmatch(line); m != nil && m[0] == line {
		idx, _ := strconv.Atoi(m[1])
		return Block{Kind: KindCode, Code: idx}
	}

	if f.escape {
		line = html.EscapeString(line)
	}
	line = urlRe.ReplaceAllString(line, linkTemplate)
	line = boldRe.ReplaceAllString(line, "<strong>$1</strong>")
	line = italicRe.ReplaceAllString(line, "<em>$1</em>")

	b := matchBlock(line)
	b.Text = inlineCode(b.Text)
	return b
}

// matchBlock applies the block matchers in order. Every matcher produces
// markup starting with '<', so at most one of them can apply to a line.
func matchBlock(line string) Block {
	if m := h1Re.FindStringSubmatch(line); m != nil {
		return Block{Kind: KindHeading, Level: 1, Text: m[1]}
	}
	if m := h2Re.FindStringSubmatch(line); m != nil {
		return Block{Kind: KindHeading, Level: 2, Text: m[1]}
	}
	if m := h3Re.FindStringSubmatch(line); m != nil {
		return Block{Kind: KindHeading, Level: 3, Text: m[1]}
	}
	if m := numberedRe.FindStringSubmatch(line); m != nil {
		return Block{Kind: KindListItem, Ordered: true, Text: m[1]}
	}
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		return Block{Kind: KindListItem, Text: m[1]}
	}
	if m := stepRe.FindStringSubmatch(line); m != nil {
		return Block{Kind: KindStep, Label: m[1], Text: m[2]}
	}
	return Block{Kind: KindText, Text: line}
}

func inlineCode(s string) string {
	return inlineCodeRe.ReplaceAllString(s, `<code class="bg-gray-800 px-1 py-0.5 rounded font-mono text-blue-200">$1</code>`)
}
