package tree

import (
	"fmt"

	"github.com/arturoeanton/xmlcore/parser"
)

// Builder implements parser.Reader and assembles a Document. Construct one
// with NewBuilder, hand it to parser.New, and read Document after
// Write/End complete without error.
type Builder struct {
	parser.DefaultReader

	doc     *Document
	current *Node // innermost open element, nil while in the prolog/epilog
	sawRoot bool
}

// NewBuilder returns a Builder ready to receive events for a fresh
// Document.
func NewBuilder() *Builder {
	return &Builder{doc: &Document{}}
}

// Document returns the tree built so far. It is only meaningful to call
// this after the driving Parser's End has returned successfully.
func (b *Builder) Document() *Document { return b.doc }

func (b *Builder) XML(decl parser.Decl) error {
	b.doc.Version = decl.Version
	b.doc.Encoding = decl.Encoding
	b.doc.HasEncoding = decl.HasEncoding
	b.doc.Standalone = decl.Standalone
	b.doc.HasStandalone = decl.HasStandalone
	return nil
}

func (b *Builder) Doctype(dt parser.Doctype) error {
	b.doc.DoctypeName = dt.Name
	b.doc.HasDoctype = true
	return nil
}

func (b *Builder) WantsComments() bool { return true }
func (b *Builder) WantsPI() bool       { return true }
func (b *Builder) WantsDoctype() bool  { return true }

func (b *Builder) Start(name string, attrs *parser.Attrs) error {
	n := b.newElement(name, attrs)
	b.appendChild(n)
	b.current = n
	return nil
}

func (b *Builder) Empty(name string, attrs *parser.Attrs) error {
	n := b.newElement(name, attrs)
	b.appendChild(n)
	return nil
}

func (b *Builder) End(name string) error {
	if b.current == nil || b.current.Name != name {
		return fmt.Errorf("tree: unbalanced end tag %q", name)
	}
	b.current = b.current.Parent
	return nil
}

func (b *Builder) Text(text string) error {
	if b.current == nil {
		// Text can only legally occur between tags; the core already
		// rejects stray character data in the prolog/epilog, so this is
		// unreachable in practice but cheap to guard against.
		return nil
	}
	b.current.Children = append(b.current.Children, &Node{
		Kind: KindText, Data: text, Parent: b.current,
	})
	return nil
}

func (b *Builder) Comment(text string) error {
	b.appendChild(&Node{Kind: KindComment, Data: text})
	return nil
}

func (b *Builder) PI(target, content string) error {
	b.appendChild(&Node{Kind: KindPI, Name: target, Data: content})
	return nil
}

func (b *Builder) newElement(name string, attrs *parser.Attrs) *Node {
	n := &Node{Kind: KindElement, Name: name}
	if attrs != nil && attrs.Len() > 0 {
		n.Attrs = make([]Attr, 0, attrs.Len())
		attrs.Each(func(k, v string) {
			n.Attrs = append(n.Attrs, Attr{Name: k, Value: v})
		})
	}
	return n
}

// appendChild places n either under the currently open element, or into
// the document's prolog/root/epilog depending on whether the root has
// been seen and closed yet.
func (b *Builder) appendChild(n *Node) {
	if b.current != nil {
		n.Parent = b.current
		b.current.Children = append(b.current.Children, n)
		return
	}
	if n.Kind == KindElement {
		b.doc.Root = n
		b.sawRoot = true
		return
	}
	if b.sawRoot {
		b.doc.Epilog = append(b.doc.Epilog, n)
	} else {
		b.doc.Prolog = append(b.doc.Prolog, n)
	}
}
