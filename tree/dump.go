package tree

import (
	"fmt"
	"io"
	"strings"
)

// Dump re-emits doc as well-formed XML text. The output is not
// canonicalized (package canon does that); it is the plainest
// serialization that parses back to the same tree.
func Dump(w io.Writer, doc *Document) error {
	if doc.HasEncoding || doc.Version != "" {
		fmt.Fprintf(w, `<?xml version="%s"`, orDefault(doc.Version, "1.0"))
		if doc.HasEncoding {
			fmt.Fprintf(w, ` encoding="%s"`, doc.Encoding)
		}
		if doc.HasStandalone {
			fmt.Fprintf(w, ` standalone="%s"`, yesNo(doc.Standalone))
		}
		fmt.Fprint(w, "?>\n")
	}
	if doc.HasDoctype {
		fmt.Fprintf(w, "<!DOCTYPE %s>\n", doc.DoctypeName)
	}
	for _, n := range doc.Prolog {
		if err := dumpNode(w, n); err != nil {
			return err
		}
	}
	if doc.Root != nil {
		if err := dumpNode(w, doc.Root); err != nil {
			return err
		}
	}
	for _, n := range doc.Epilog {
		if err := dumpNode(w, n); err != nil {
			return err
		}
	}
	return nil
}

func dumpNode(w io.Writer, n *Node) error {
	switch n.Kind {
	case KindText:
		return escapeText(w, n.Data)
	case KindComment:
		_, err := fmt.Fprintf(w, "<!--%s-->", n.Data)
		return err
	case KindPI:
		if n.Data == "" {
			_, err := fmt.Fprintf(w, "<?%s?>", n.Name)
			return err
		}
		_, err := fmt.Fprintf(w, "<?%s %s?>", n.Name, n.Data)
		return err
	case KindElement:
		return dumpElement(w, n)
	}
	return nil
}

func dumpElement(w io.Writer, n *Node) error {
	if _, err := fmt.Fprintf(w, "<%s", n.Name); err != nil {
		return err
	}
	for _, a := range n.Attrs {
		if _, err := fmt.Fprintf(w, " %s=\"", a.Name); err != nil {
			return err
		}
		if err := escapeAttrValue(w, a.Value); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\""); err != nil {
			return err
		}
	}
	if len(n.Children) == 0 {
		_, err := io.WriteString(w, "/>")
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := dumpNode(w, c); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "</%s>", n.Name)
	return err
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// escapeAttrValue writes s to w with the characters that cannot appear
// literally inside a double-quoted attribute value replaced by their
// entity or character reference. Whitespace is escaped too so the value
// survives attribute-value normalization on re-parse.
func escapeAttrValue(w io.Writer, s string) error {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("&quot;")
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '\n':
			b.WriteString("&#10;")
		case '\r':
			b.WriteString("&#13;")
		case '\t':
			b.WriteString("&#9;")
		default:
			b.WriteRune(r)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// escapeText writes s to w with the characters that cannot appear
// literally in element content replaced by their entity reference.
func escapeText(w io.Writer, s string) error {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(r)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
