package format

import "strings"

// Kind tags a line-level block.
type Kind uint8

const (
	KindText Kind = iota
	KindHeading
	KindListItem
	KindStep
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list_item"
	case KindStep:
		return "step"
	case KindCode:
		return "code"
	default:
		return "text"
	}
}

// Block is one source line after inline rules and block matching ran.
type Block struct {
	Kind Kind
	// Level is the heading level (1-3).
	Level int
	// Ordered is set for list items that came from a numbered line.
	Ordered bool
	// Label holds the "Step N:" prefix of a step block.
	Label string
	// Text is the inline-rendered content. It may contain code placeholders.
	Text string
	// Code indexes Document.Code for KindCode blocks.
	Code int
}

// Segment is a run of lines between blank-line boundaries.
type Segment struct {
	Blocks []Block
}

// standalone reports whether the segment is emitted without a paragraph
// wrapper: it holds a list item, a step or a code block.
func (s Segment) standalone() bool {
	for _, b := range s.Blocks {
		switch b.Kind {
		case KindListItem, KindStep, KindCode:
			return true
		}
		if strings.Contains(b.Text, placeholderMark) {
			return true
		}
	}
	return false
}

func (s Segment) blank() bool {
	for _, b := range s.Blocks {
		if b.Kind != KindText || strings.TrimSpace(b.Text) != "" {
			return false
		}
	}
	return true
}

// CodeBlock is the verbatim content of a fenced block.
type CodeBlock struct {
	Lang string
	Code string
}

// Document is the parsed form of a text.
type Document struct {
	Segments []Segment
	Code     []CodeBlock
	// Split is false when the text had no blank-line boundary; the single
	// segment is then rendered without paragraph wrapping.
	Split bool
}
