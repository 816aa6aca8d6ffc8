// Package markup builds small HTML fragments from an immutable tree of
// typed nodes serialized in a single pass. The direct-render fallback uses
// it instead of mutating a parsed document, so rendering stays a pure
// function of its inputs.
package markup

import (
	"html"
	"strings"
)

// Node is one element or text chunk of a fragment.
type Node interface {
	render(b *strings.Builder)
}

// Attr is a single element attribute.
type Attr struct {
	Key string
	Val string
}

// Element is a tag with attributes and ordered children.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

// Text is escaped character data.
type Text string

// El builds an element node.
func El(tag string, attrs []Attr, children ...Node) Element {
	return Element{Tag: tag, Attrs: attrs, Children: children}
}

// Render serializes the nodes into an HTML string.
func Render(nodes ...Node) string {
	var b strings.Builder
	for _, n := range nodes {
		n.render(&b)
	}
	return b.String()
}

func (e Element) render(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.Tag)
	for _, a := range e.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	for _, c := range e.Children {
		c.render(b)
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteByte('>')
}

func (t Text) render(b *strings.Builder) {
	b.WriteString(html.EscapeString(string(t)))
}
