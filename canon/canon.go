// Package canon implements a Canonical XML writer over a tree.Document,
// with the round-trip property that parsing a canonical form C and
// re-emitting it through this writer yields C back.
//
// The core parser resolves no namespaces, so the namespace axis of full
// Exclusive Canonical XML (xmlns rendering, sorting attributes by
// namespace URI before local name) has nothing to key off of here:
// attributes are sorted lexicographically by raw name instead, the one
// point where this writer diverges from the Exclusive C14N spec. The text
// and attribute-value escaping tables follow that spec exactly.
package canon

import (
	"bytes"
	"sort"

	"github.com/arturoeanton/xmlcore/tree"
)

// Canonicalize renders doc's root element (and any comments/PIs around it,
// per the canonical-XML PI/comment placement rules) as canonical XML
// text. The leading XML declaration is always omitted: the absence of a
// version number unambiguously indicates XML 1.0.
func Canonicalize(doc *tree.Document) ([]byte, error) {
	var buf bytes.Buffer
	for i, n := range doc.Prolog {
		if err := writeOuterNode(&buf, n); err != nil {
			return nil, err
		}
		if i < len(doc.Prolog)-1 || doc.Root != nil {
			buf.WriteByte('\n')
		}
	}
	if doc.Root != nil {
		if err := writeElement(&buf, doc.Root); err != nil {
			return nil, err
		}
	}
	for _, n := range doc.Epilog {
		buf.WriteByte('\n')
		if err := writeOuterNode(&buf, n); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// CanonicalizeElement renders a single element subtree (not necessarily a
// document root) as canonical XML text. This is the entry point package
// sign uses to canonicalize a ds:SignedInfo element before signing it.
func CanonicalizeElement(n *tree.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeElement(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeOuterNode(buf *bytes.Buffer, n *tree.Node) error {
	switch n.Kind {
	case tree.KindComment:
		buf.WriteString("<!--")
		buf.WriteString(n.Data)
		buf.WriteString("-->")
	case tree.KindPI:
		writePI(buf, n)
	}
	return nil
}

func writePI(buf *bytes.Buffer, n *tree.Node) {
	buf.WriteByte('<')
	buf.WriteByte('?')
	buf.WriteString(n.Name)
	if n.Data != "" {
		buf.WriteByte(' ')
		buf.WriteString(n.Data)
	}
	buf.WriteByte('?')
	buf.WriteByte('>')
}

func writeElement(buf *bytes.Buffer, n *tree.Node) error {
	buf.WriteByte('<')
	buf.WriteString(n.Name)

	// Attributes render in lexicographic order by raw name; with no
	// namespace URIs to sort by first, a plain name sort is the entire
	// ordering rule.
	attrs := append([]tree.Attr(nil), n.Attrs...)
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
	for _, a := range attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		writeAttrValue(buf, a.Value)
		buf.WriteByte('"')
	}
	buf.WriteByte('>')

	for _, c := range n.Children {
		switch c.Kind {
		case tree.KindText:
			writeText(buf, c.Data)
		case tree.KindComment:
			if err := writeOuterNode(buf, c); err != nil {
				return err
			}
		case tree.KindPI:
			writePI(buf, c)
		case tree.KindElement:
			if err := writeElement(buf, c); err != nil {
				return err
			}
		}
	}

	buf.WriteString("</")
	buf.WriteString(n.Name)
	buf.WriteByte('>')
	return nil
}

// writeText applies the c14n Text Node escaping rule: only &, <, >, and CR
// are replaced. Unlike ordinary well-formed-XML serialization, LF and TAB
// are left alone.
func writeText(buf *bytes.Buffer, s string) {
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '\r':
			buf.WriteString("&#xD;")
		default:
			buf.WriteRune(r)
		}
	}
}

// writeAttrValue applies the c14n Attribute Node escaping rule: &, <, and "
// are replaced with entity references, and the three whitespace characters
// TAB/LF/CR with character references (uppercase hex, no leading zeroes).
func writeAttrValue(buf *bytes.Buffer, s string) {
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '"':
			buf.WriteString("&quot;")
		case '\t':
			buf.WriteString("&#x9;")
		case '\n':
			buf.WriteString("&#xA;")
		case '\r':
			buf.WriteString("&#xD;")
		default:
			buf.WriteRune(r)
		}
	}
}
