package query_test

import (
	"encoding/json"
	"testing"

	"github.com/arturoeanton/xmlcore/parser"
	"github.com/arturoeanton/xmlcore/query"
	"github.com/arturoeanton/xmlcore/tree"
)

func parseDoc(t *testing.T, src string) *tree.Document {
	t.Helper()
	b := tree.NewBuilder()
	p := parser.New(b, parser.Options{})
	if err := p.Write(src); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	return b.Document()
}

func TestGetAndAll(t *testing.T) {
	doc := parseDoc(t, `<orders><order id="1"><item>A</item></order><order id="2"><item>B</item></order></orders>`)

	root := query.Wrap(doc.Root)
	first, ok := query.Get(root, "order")
	if !ok {
		t.Fatalf("expected a match")
	}
	if v, _ := first.Attr("id"); v != "1" {
		t.Fatalf("first order id = %q", v)
	}

	all := query.All(root, "order")
	if len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(all))
	}

	item, ok := query.Get(root, "order/item")
	if !ok || item.Text() != "A" {
		t.Fatalf("order/item = %q, %v", item.Text(), ok)
	}
}

func TestToJSON(t *testing.T) {
	doc := parseDoc(t, `<order id="1"><item>A</item><item>B</item></order>`)

	b, err := query.ToJSON(doc.Root)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v (%s)", err, b)
	}
	if decoded["@id"] != "1" {
		t.Fatalf("@id = %v", decoded["@id"])
	}
	items, ok := decoded["item"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("item = %#v", decoded["item"])
	}
}
