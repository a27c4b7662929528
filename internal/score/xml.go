package score

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// visibleTag is the marker child encoding hidden state in the document
// format: <visible>0</visible> means hidden, any other text (or the
// marker's absence) means visible. The codec folds the marker into the
// element's visibility flag on parse and re-emits it on serialization.
const visibleTag = "visible"

// ParseTree reads an XML document into an element tree.
//
// Whitespace-only text content is dropped. Attribute order is preserved.
func ParseTree(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse tree: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := New(t.Name.Local)
			for _, a := range t.Attr {
				el.attrs = append(el.attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			stack = append(stack, el)

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text != "" {
				top := stack[len(stack)-1]
				top.text += text
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("parse tree: unbalanced end element %q", t.Name.Local)
			}
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if len(stack) == 0 {
				root = el
				continue
			}
			parent := stack[len(stack)-1]

			// Fold the visibility marker into the parent's flag instead
			// of keeping it as a child. Direct assignment bypasses the
			// lock: a Measure hidden in the source stays hidden.
			if el.tag == visibleTag && len(el.children) == 0 {
				parent.hidden = el.text == "0"
				continue
			}
			parent.Append(el)
		}
	}

	if root == nil {
		return nil, fmt.Errorf("parse tree: empty document")
	}
	return root, nil
}

// ParseFile reads an XML document from a file.
func ParseFile(path string) (*Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}
	defer f.Close()
	return ParseTree(f)
}

// Marshal serializes the tree to UTF-8 XML with a declaration header.
// Hidden elements get their <visible>0</visible> marker back so the
// external renderer honors the visibility state.
func Marshal(root *Element) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	writeElement(&b, root, 0)
	return b.Bytes()
}

// WriteFile serializes the tree to a file.
func WriteFile(root *Element, path string) error {
	if err := os.WriteFile(path, Marshal(root), 0o644); err != nil {
		return fmt.Errorf("write tree: %w", err)
	}
	return nil
}

func writeElement(b *bytes.Buffer, e *Element, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(e.tag)
	for _, a := range e.attrs {
		b.WriteString(" " + a.Name + `="`)
		writeEscaped(b, a.Value)
		b.WriteString(`"`)
	}

	if len(e.children) == 0 && !e.hidden {
		if e.text == "" {
			b.WriteString("/>\n")
			return
		}
		b.WriteByte('>')
		writeEscaped(b, e.text)
		b.WriteString("</" + e.tag + ">\n")
		return
	}

	b.WriteString(">\n")
	if e.text != "" {
		b.WriteString(strings.Repeat("  ", depth+1))
		writeEscaped(b, e.text)
		b.WriteByte('\n')
	}
	for _, c := range e.children {
		writeElement(b, c, depth+1)
	}
	if e.hidden {
		b.WriteString(strings.Repeat("  ", depth+1))
		b.WriteString("<" + visibleTag + ">0</" + visibleTag + ">\n")
	}
	b.WriteString(indent + "</" + e.tag + ">\n")
}

func writeEscaped(b *bytes.Buffer, s string) {
	// xml.EscapeText never fails on a bytes.Buffer.
	_ = xml.EscapeText(b, []byte(s))
}
