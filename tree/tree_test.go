package tree_test

import (
	"strings"
	"testing"

	"github.com/arturoeanton/xmlcore/parser"
	"github.com/arturoeanton/xmlcore/tree"
)

func parse(t *testing.T, src string) *tree.Document {
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

func TestBuilderMaterializesTree(t *testing.T) {
	doc := parse(t, `<!-- lead --><root attr="1 &amp; 2"><a/><b>hi</b></root>`)

	if len(doc.Prolog) != 1 || doc.Prolog[0].Kind != tree.KindComment {
		t.Fatalf("expected one leading comment, got %#v", doc.Prolog)
	}
	if doc.Root == nil || doc.Root.Name != "root" {
		t.Fatalf("expected root element, got %#v", doc.Root)
	}
	if v, ok := doc.Root.Attr("attr"); !ok || v != "1 & 2" {
		t.Fatalf("attr = %q, %v", v, ok)
	}
	if len(doc.Root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(doc.Root.Children))
	}
	b := doc.Root.Child("b")
	if b == nil || b.Text() != "hi" {
		t.Fatalf("expected <b>hi</b>, got %#v", b)
	}
}

func TestDumpRoundTripsWellFormedAttrsAndText(t *testing.T) {
	doc := parse(t, `<root a="x&lt;y" b="line1&#10;line2"><c>he said &amp;&amp;</c></root>`)

	var buf strings.Builder
	if err := tree.Dump(&buf, doc); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	out := parse(t, buf.String())
	if a, _ := out.Root.Attr("a"); a != "x<y" {
		t.Fatalf("round-tripped attr a = %q", a)
	}
	if b, _ := out.Root.Attr("b"); b != "line1\nline2" {
		t.Fatalf("round-tripped attr b = %q", b)
	}
	if out.Root.Child("c").Text() != "he said &&" {
		t.Fatalf("round-tripped text = %q", out.Root.Child("c").Text())
	}
}

func TestEmptyElementHasNoChildren(t *testing.T) {
	doc := parse(t, `<root><a/></root>`)
	a := doc.Root.Child("a")
	if a == nil || len(a.Children) != 0 {
		t.Fatalf("expected empty childless <a/>, got %#v", a)
	}
}
