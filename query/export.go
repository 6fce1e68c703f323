package query

import (
	"bytes"
	"encoding/json"

	"github.com/arturoeanton/xmlcore/tree"
)

// ToJSON renders an element subtree as a JSON object, attributes prefixed
// with "@" and child elements grouped under their tag name (repeated tags
// become a JSON array). The output is assembled key-by-key against a
// buffer rather than round-tripped through a generic map, whose key order
// Go does not preserve.
func ToJSON(n *tree.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeElement(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeElement(buf *bytes.Buffer, n *tree.Node) error {
	buf.WriteByte('{')
	wroteField := false

	writeSep := func() {
		if wroteField {
			buf.WriteByte(',')
		}
		wroteField = true
	}

	for _, a := range n.Attrs {
		writeSep()
		if err := writeKV(buf, "@"+a.Name, a.Value); err != nil {
			return err
		}
	}

	// Group element children by tag name, preserving first-seen order.
	var order []string
	groups := map[string][]*tree.Node{}
	for _, c := range n.Children {
		if c.Kind != tree.KindElement {
			continue
		}
		if _, seen := groups[c.Name]; !seen {
			order = append(order, c.Name)
		}
		groups[c.Name] = append(groups[c.Name], c)
	}
	for _, name := range order {
		writeSep()
		keyBytes, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		kids := groups[name]
		if len(kids) == 1 {
			if err := writeElement(buf, kids[0]); err != nil {
				return err
			}
			continue
		}
		buf.WriteByte('[')
		for i, k := range kids {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeElement(buf, k); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}

	if text := n.Text(); text != "" {
		writeSep()
		if err := writeKV(buf, "#text", text); err != nil {
			return err
		}
	}

	buf.WriteByte('}')
	return nil
}

func writeKV(buf *bytes.Buffer, key, value string) error {
	keyBytes, err := json.Marshal(key)
	if err != nil {
		return err
	}
	valBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(keyBytes)
	buf.WriteByte(':')
	buf.Write(valBytes)
	return nil
}
