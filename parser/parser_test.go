package parser_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/arturoeanton/xmlcore/parser"
)

// recorder implements parser.Reader, turning every callback into one line
// of text so test expectations can be expressed as plain string slices
// instead of hand-rolled assertions per handler.
type recorder struct {
	parser.DefaultReader
	events    []string
	resolve   map[string]string
	wantsAll  bool
}

func newRecorder() *recorder { return &recorder{wantsAll: true} }

func (r *recorder) XML(decl parser.Decl) error {
	r.events = append(r.events, fmt.Sprintf("xml(%s,%s,%v,%v)", decl.Version, decl.Encoding, decl.HasStandalone, decl.Standalone))
	return nil
}
func (r *recorder) Doctype(dt parser.Doctype) error {
	r.events = append(r.events, fmt.Sprintf("doctype(%s)", dt.Name))
	return nil
}
func (r *recorder) PI(target, content string) error {
	r.events = append(r.events, fmt.Sprintf("pi(%s,%q)", target, content))
	return nil
}
func (r *recorder) Comment(text string) error {
	r.events = append(r.events, fmt.Sprintf("comment(%q)", text))
	return nil
}
func (r *recorder) Start(name string, attrs *parser.Attrs) error {
	r.events = append(r.events, fmt.Sprintf("start(%s,%s)", name, dumpAttrs(attrs)))
	return nil
}
func (r *recorder) Empty(name string, attrs *parser.Attrs) error {
	r.events = append(r.events, fmt.Sprintf("empty(%s,%s)", name, dumpAttrs(attrs)))
	return nil
}
func (r *recorder) End(name string) error {
	r.events = append(r.events, fmt.Sprintf("end(%s)", name))
	return nil
}
func (r *recorder) Text(text string) error {
	r.events = append(r.events, fmt.Sprintf("text(%q)", text))
	return nil
}
func (r *recorder) EntityRef(name string) error {
	r.events = append(r.events, fmt.Sprintf("entityRef(%s)", name))
	return nil
}
func (r *recorder) ResolveEntityRef(name string) (string, bool) {
	if r.resolve == nil {
		return "", false
	}
	v, ok := r.resolve[name]
	return v, ok
}
func (r *recorder) WantsComments() bool  { return r.wantsAll }
func (r *recorder) WantsPI() bool        { return r.wantsAll }
func (r *recorder) WantsDoctype() bool   { return r.wantsAll }
func (r *recorder) WantsEntityRef() bool { return r.wantsAll }

func dumpAttrs(attrs *parser.Attrs) string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	attrs.Each(func(k, v string) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&b, "%s=%q", k, v)
	})
	b.WriteByte('}')
	return b.String()
}

// runWhole feeds src to a fresh Parser in one Write call.
func runWhole(t *testing.T, src string, configure func(*recorder)) ([]string, error) {
	t.Helper()
	rec := newRecorder()
	if configure != nil {
		configure(rec)
	}
	p := parser.New(rec, parser.Options{})
	werr := p.Write(src)
	if werr != nil {
		return rec.events, werr
	}
	return rec.events, p.End()
}

// runSplit feeds src to a fresh Parser split into one Write call per
// boundary in offsets (each a byte offset into src), exercising chunk
// tolerance at an arbitrary split point.
func runSplit(t *testing.T, src string, offsets []int, configure func(*recorder)) ([]string, error) {
	t.Helper()
	rec := newRecorder()
	if configure != nil {
		configure(rec)
	}
	p := parser.New(rec, parser.Options{})
	prev := 0
	for _, off := range offsets {
		if err := p.Write(src[prev:off]); err != nil {
			return rec.events, err
		}
		prev = off
	}
	if err := p.Write(src[prev:]); err != nil {
		return rec.events, err
	}
	return rec.events, p.End()
}

// everySplitPoint returns every valid single-rune-boundary split index of
// src, so a scenario can be checked both passed in as one whole write and
// split at every possible single index.
func everySplitPoint(src string) []int {
	var out []int
	for i := 0; i < len(src); {
		_, w := utf8.DecodeRuneInString(src[i:])
		i += w
		if i < len(src) {
			out = append(out, i)
		}
	}
	return out
}

func assertEventsEqual(t *testing.T, got []string, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("event count mismatch:\n got: %v\nwant: %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("event[%d] mismatch:\n got: %s\nwant: %s\n(full got: %v)", i, got[i], want[i], got)
		}
	}
}

// assertScenario runs src whole and at every single-index split, requiring
// the resulting event sequence to be identical every time.
func assertScenario(t *testing.T, src string, want []string, configure func(*recorder)) {
	t.Helper()
	t.Run("whole", func(t *testing.T) {
		got, err := runWhole(t, src, configure)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertEventsEqual(t, got, want)
	})
	for _, off := range everySplitPoint(src) {
		off := off
		t.Run(fmt.Sprintf("split@%d", off), func(t *testing.T) {
			got, err := runSplit(t, src, []int{off}, configure)
			if err != nil {
				t.Fatalf("unexpected error at split %d: %v", off, err)
			}
			assertEventsEqual(t, got, want)
		})
	}
	t.Run("byte-by-byte", func(t *testing.T) {
		got, err := runSplit(t, src, everySplitPoint(src), configure)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertEventsEqual(t, got, want)
	})
}

func TestScenario1_AttributeEntityExpansion(t *testing.T) {
	assertScenario(t, `<root><a attr="1 &amp; 2"/></root>`, []string{
		`start(root,{})`,
		`empty(a,{attr="1 & 2"})`,
		`end(root)`,
	}, nil)
}

func TestScenario2_XMLDeclaration(t *testing.T) {
	assertScenario(t, `<?xml version="1.0" encoding="UTF-8" standalone='yes'?><r/>`, []string{
		`xml(1.0,utf-8,true,true)`,
		`empty(r,{})`,
	}, nil)
}

func TestScenario3_LineEndingNormalization(t *testing.T) {
	assertScenario(t, "<a>x\r\ny\rz</a>", []string{
		`start(a,{})`,
		`text("x\ny\nz")`,
		`end(a)`,
	}, nil)
}

func TestScenario4_CDATATransparency(t *testing.T) {
	assertScenario(t, `<a>pre<![CDATA[<&]]>post</a>`, []string{
		`start(a,{})`,
		`text("pre<&post")`,
		`end(a)`,
	}, nil)
}

func TestScenario5_MismatchedEndTag(t *testing.T) {
	_, err := runWhole(t, `<a></b>`, nil)
	requireCode(t, err, parser.InvalidEndTag)
	_, err = runSplit(t, `<a></b>`, everySplitPoint(`<a></b>`), nil)
	requireCode(t, err, parser.InvalidEndTag)
}

func TestScenario6_CDEndForbiddenInText(t *testing.T) {
	_, err := runWhole(t, `<a>]]></a>`, nil)
	requireCode(t, err, parser.InvalidCDEnd)

	assertScenario(t, `<a>]]]</a>`, []string{
		`start(a,{})`,
		`text("]]]")`,
		`end(a)`,
	}, nil)
}

func requireCode(t *testing.T, err error, want parser.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error with code %s, got nil", want)
	}
	perr, ok := parser.IsParserError(err)
	if !ok {
		t.Fatalf("expected a *parser.Error, got %v (%T)", err, err)
	}
	if perr.Code != want {
		t.Fatalf("expected code %s, got %s (%v)", want, perr.Code, err)
	}
}

func TestAttributesPreserveInsertionOrder(t *testing.T) {
	assertScenario(t, `<a c="3" a="1" b="2"/>`, []string{
		`empty(a,{c="3",a="1",b="2"})`,
	}, nil)
}

func TestDuplicateAttributeFails(t *testing.T) {
	_, err := runWhole(t, `<a x="1" x="2"/>`, nil)
	requireCode(t, err, parser.DuplicateAttr)
}

func TestCommentAndPICaptureAndReject(t *testing.T) {
	assertScenario(t, `<!-- hi --><?pi data?><r/>`, []string{
		`comment(" hi ")`,
		`pi(pi,"data")`,
		`empty(r,{})`,
	}, nil)

	_, err := runWhole(t, `<!-- a -- b -->`, nil)
	requireCode(t, err, parser.InvalidComment)

	_, err = runWhole(t, `<?xml version="1.0"?><?xml bad?><r/>`, nil)
	requireCode(t, err, parser.ReservedPI)
}

func TestDoctypeNameSurfacedSubsetOpaque(t *testing.T) {
	assertScenario(t, `<!DOCTYPE root SYSTEM "a.dtd" [ <!ENTITY x "y"> ]><root/>`, []string{
		`doctype(root)`,
		`empty(root,{})`,
	}, nil)
}

func TestDoctypeKeywordRequiresWhitespace(t *testing.T) {
	_, err := runWhole(t, `<!DOCTYPEr><r/>`, nil)
	requireCode(t, err, parser.InvalidDoctypeDecl)

	_, err = runWhole(t, `<!DOCTYPE r SYSTEM"a"><r/>`, nil)
	requireCode(t, err, parser.InvalidDoctypeDecl)
}

func TestDoctypeExternalIDArity(t *testing.T) {
	_, err := runWhole(t, `<!DOCTYPE r SYSTEM "a" "b"><r/>`, nil)
	requireCode(t, err, parser.InvalidDoctypeDecl)

	_, err = runWhole(t, `<!DOCTYPE r PUBLIC "a"><r/>`, nil)
	requireCode(t, err, parser.InvalidDoctypeDecl)

	assertScenario(t, `<!DOCTYPE r PUBLIC "a" "b"><r/>`, []string{
		`doctype(r)`,
		`empty(r,{})`,
	}, nil)
}

func TestCharacterReferences(t *testing.T) {
	assertScenario(t, `<a>&#65;&#x42;</a>`, []string{
		`start(a,{})`,
		`text("AB")`,
		`end(a)`,
	}, nil)

	for _, src := range []string{`<a>&#0;</a>`, `<a>&#;</a>`, `<a>&#xFFFE;</a>`} {
		_, err := runWhole(t, src, nil)
		requireCode(t, err, parser.InvalidCharRef)
	}
}

func TestEntityRefInTextIsReportedNotExpanded(t *testing.T) {
	assertScenario(t, `<a>before&custom;after</a>`, []string{
		`start(a,{})`,
		`text("before")`,
		`entityRef(custom)`,
		`text("after")`,
		`end(a)`,
	}, nil)
}

// minimalReader embeds DefaultReader and overrides nothing, standing in for
// a host that doesn't care about entity references at all.
type minimalReader struct{ parser.DefaultReader }

func TestEntityRefInTextWithoutHandlerFails(t *testing.T) {
	p := parser.New(minimalReader{}, parser.Options{})
	err := p.Write(`<a>before&custom;after</a>`)
	requireCode(t, err, parser.UnresolvedEntity)
}

func TestEntityRefInTextUnwantedFailsEvenWithOverride(t *testing.T) {
	// wantsAll=false means WantsEntityRef reports false even though the
	// recorder happens to implement EntityRef; the capability query, not
	// the mere presence of the method, gates whether it is called.
	rec := newRecorder()
	rec.wantsAll = false
	p := parser.New(rec, parser.Options{})
	err := p.Write(`<a>before&custom;after</a>`)
	requireCode(t, err, parser.UnresolvedEntity)
}

func TestEntityRefInAttributeUsesResolver(t *testing.T) {
	configure := func(r *recorder) { r.resolve = map[string]string{"custom": "VALUE"} }
	assertScenario(t, `<a x="&custom;"/>`, []string{
		`empty(a,{x="VALUE"})`,
	}, configure)

	_, err := runWhole(t, `<a x="&custom;"/>`, nil)
	requireCode(t, err, parser.UnresolvedEntity)
}

func TestAttributeWhitespaceCollapsesToSingleSpace(t *testing.T) {
	assertScenario(t, "<a x=\"p\tq\r\nr\"/>", []string{
		`empty(a,{x="p q r"})`,
	}, nil)
}

func TestAstralPlaneNamesAndText(t *testing.T) {
	assertScenario(t, "<\U00010000tag>\U0001D11E</\U00010000tag>", []string{
		"start(\U00010000tag,{})",
		`text("` + "\U0001D11E" + `")`,
		"end(\U00010000tag)",
	}, nil)
}

func TestCommentTripleHyphenCloseFails(t *testing.T) {
	_, err := runWhole(t, `<!-- x ---><r/>`, nil)
	requireCode(t, err, parser.InvalidComment)
}

func TestUnexpectedEOFCases(t *testing.T) {
	// Each of these is valid as far as Write is concerned (the document
	// is simply incomplete), so the failure must surface from End.
	cases := []string{
		"",
		"<a>",
		"<a></a",
		"<a><b>",
	}
	for _, src := range cases {
		src := src
		t.Run(src, func(t *testing.T) {
			rec := newRecorder()
			p := parser.New(rec, parser.Options{})
			if err := p.Write(src); err != nil {
				t.Fatalf("unexpected Write error: %v", err)
			}
			err := p.End()
			requireCode(t, err, parser.UnexpectedEOF)
		})
	}
}

func TestContentAfterRootFails(t *testing.T) {
	_, err := runWhole(t, `<a/><b/>`, nil)
	requireCode(t, err, parser.InvalidStartTag)
}

func TestIncompleteTextNodesModeConcatenatesToSameValue(t *testing.T) {
	src := `<a>hello world</a>`
	rec := newRecorder()
	p := parser.New(rec, parser.Options{IncompleteTextNodes: true})
	if err := p.Write("<a>hello"); err != nil {
		t.Fatalf("Write 1: %v", err)
	}
	if err := p.Write(" world</a>"); err != nil {
		t.Fatalf("Write 2: %v", err)
	}
	if err := p.End(); err != nil {
		t.Fatalf("End: %v", err)
	}

	var concatenated string
	var sawText bool
	for _, e := range rec.events {
		if strings.HasPrefix(e, "text(") {
			sawText = true
			concatenated += strings.TrimSuffix(strings.TrimPrefix(e, `text("`), `")`)
		}
	}
	if !sawText {
		t.Fatalf("expected at least one text event")
	}

	whole, err := runWhole(t, src, nil)
	if err != nil {
		t.Fatalf("runWhole: %v", err)
	}
	var wantText string
	for _, e := range whole {
		if strings.HasPrefix(e, "text(") {
			wantText = strings.TrimSuffix(strings.TrimPrefix(e, `text("`), `")`)
		}
	}
	if concatenated != wantText {
		t.Fatalf("incomplete-mode concatenation %q != whole-mode text %q", concatenated, wantText)
	}
}

func TestWriteAfterErrorFails(t *testing.T) {
	rec := newRecorder()
	p := parser.New(rec, parser.Options{})
	if err := p.Write(`<a></b>`); err == nil {
		t.Fatalf("expected error")
	}
	if err := p.Write("more"); err == nil {
		t.Fatalf("expected write-after-error to fail")
	}
}
