package canon_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/xmlcore/canon"
	"github.com/arturoeanton/xmlcore/parser"
	"github.com/arturoeanton/xmlcore/tree"
)

func parseDoc(t *testing.T, src string) *tree.Document {
	t.Helper()
	b := tree.NewBuilder()
	p := parser.New(b, parser.Options{})
	require.NoError(t, p.Write(src))
	require.NoError(t, p.End())
	return b.Document()
}

func TestCanonicalizeSortsAttributesAndEscapes(t *testing.T) {
	doc := parseDoc(t, `<root z="1" a="2&amp;3"><child>x &lt; y</child></root>`)

	out, err := canon.Canonicalize(doc)
	require.NoError(t, err)
	require.Equal(t, `<root a="2&amp;3" z="1"><child>x &lt; y</child></root>`, string(out))
}

func TestCanonicalizeOmitsXMLDeclaration(t *testing.T) {
	doc := parseDoc(t, `<?xml version="1.0" encoding="UTF-8"?><r/>`)

	out, err := canon.Canonicalize(doc)
	require.NoError(t, err)
	require.Equal(t, `<r></r>`, string(out))
}

func TestCanonicalizeIsIdempotentOnAlreadyCanonicalInput(t *testing.T) {
	doc := parseDoc(t, `<a><b/><c>text</c></a>`)
	first, err := canon.Canonicalize(doc)
	require.NoError(t, err)

	doc2 := parseDoc(t, string(first))
	second, err := canon.Canonicalize(doc2)
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
}
