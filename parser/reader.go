package parser

// Decl carries the contents of an XML declaration.
type Decl struct {
	Version       string
	Encoding      string
	HasEncoding   bool
	Standalone    bool
	HasStandalone bool
}

// Doctype carries the (partial) contents of a DOCTYPE declaration. Only the
// root element name is surfaced; the parser does not interpret the internal
// subset.
type Doctype struct {
	Name string
}

// Reader is the sink the core parser invokes: a single capability
// interface in place of the ContentHandler/LexicalHandler split a classic
// SAX API makes, with explicit "wants" queries so the core can skip
// buffering work the reader would throw away. Embed DefaultReader to get
// safe zero-value behavior for every handler you don't care about.
type Reader interface {
	// XML is invoked once, after '?>' of a leading XML declaration.
	XML(decl Decl) error
	// Doctype is invoked once, after '>' of a DOCTYPE declaration.
	Doctype(dt Doctype) error
	// PI is invoked after '?>' of a processing instruction.
	PI(target, content string) error
	// Comment is invoked after '-->' of a comment.
	Comment(text string) error
	// Start is invoked after '>' of a start tag. attrs is only valid for
	// the duration of the call; the parser reuses its backing storage
	// immediately afterward.
	Start(name string, attrs *Attrs) error
	// Empty is invoked after '/>' of a self-closing tag.
	Empty(name string, attrs *Attrs) error
	// End is invoked after '>' of an end tag.
	End(name string) error
	// Text is invoked with a run of character data at a structural
	// boundary (or, in incomplete-text-nodes mode, at any chunk boundary).
	Text(text string) error
	// EntityRef is invoked for a non-predefined `&name;` encountered in
	// text content; the parser does not expand it itself.
	EntityRef(name string) error
	// ResolveEntityRef is consulted for a non-predefined `&name;`
	// encountered inside an attribute value. Returning ok == false is
	// equivalent to having no resolver at all.
	ResolveEntityRef(name string) (value string, ok bool)

	// WantsComments, WantsPI, and WantsDoctype let the core skip buffering
	// work for constructs the reader would discard anyway. A Reader that
	// always returns true simply buffers unconditionally; DefaultReader
	// returns false so embedders who only override a couple of methods
	// don't pay for captures they never see.
	WantsComments() bool
	WantsPI() bool
	WantsDoctype() bool
	// WantsEntityRef reports whether EntityRef is meaningfully implemented.
	// A non-predefined `&name;` in text has no expansion of its own: unlike
	// WantsComments/WantsPI/WantsDoctype, which only gate a capture
	// optimization, this gates correctness: a reader that doesn't want the
	// reference must fail with UnresolvedEntity rather than have the
	// reference silently vanish. DefaultReader returns false.
	WantsEntityRef() bool
}

// DefaultReader implements Reader with no-op methods and no capture
// capabilities. Embed it in a concrete Reader to override only the
// handlers you need, an "optional handler" pattern common in languages
// without structural optionality. Used bare, it makes the parser a pure
// well-formedness checker that discards every event.
type DefaultReader struct{}

func (DefaultReader) XML(Decl) error                         { return nil }
func (DefaultReader) Doctype(Doctype) error                  { return nil }
func (DefaultReader) PI(string, string) error                { return nil }
func (DefaultReader) Comment(string) error                   { return nil }
func (DefaultReader) Start(string, *Attrs) error             { return nil }
func (DefaultReader) Empty(string, *Attrs) error             { return nil }
func (DefaultReader) End(string) error                       { return nil }
func (DefaultReader) Text(string) error                      { return nil }
func (DefaultReader) EntityRef(string) error                 { return nil }
func (DefaultReader) ResolveEntityRef(string) (string, bool) { return "", false }
func (DefaultReader) WantsComments() bool                    { return false }
func (DefaultReader) WantsPI() bool                          { return false }
func (DefaultReader) WantsDoctype() bool                     { return false }
func (DefaultReader) WantsEntityRef() bool                   { return false }
