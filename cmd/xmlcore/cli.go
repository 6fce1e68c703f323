package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arturoeanton/xmlcore/canon"
	"github.com/arturoeanton/xmlcore/decode"
	"github.com/arturoeanton/xmlcore/parser"
	"github.com/arturoeanton/xmlcore/query"
	"github.com/arturoeanton/xmlcore/tree"
)

// getInputReader resolves the input source: the first argument names a
// file unless it starts with '-'; otherwise stdin is used if it is piped.
func getInputReader(args []string) (io.Reader, error) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		return os.Stdin, nil
	}
	return nil, fmt.Errorf("no input provided (pipe or file)")
}

const readChunkSize = 4096

// streamInto pumps r through a decode.Decoder into sink in fixed-size
// chunks, exercising the same chunk-boundary-tolerant path a long-running
// network read would.
func streamInto(r io.Reader, sink decode.Sink) error {
	d := decode.New(sink)
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if werr := d.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return d.End()
		}
		if err != nil {
			return err
		}
	}
}

func cliValidate(args []string) {
	r, err := getInputReader(args)
	if err != nil {
		die(err)
	}
	if err := streamInto(r, parser.New(parser.DefaultReader{}, parser.Options{})); err != nil {
		if perr, ok := parser.IsParserError(err); ok {
			fmt.Printf("INVALID: %s\n", perr.Code)
			os.Exit(1)
		}
		die(err)
	}
	fmt.Println("OK")
}

// eventReader implements parser.Reader by printing one line per callback,
// a textual rendering of the raw SAX-style event stream.
type eventReader struct {
	parser.DefaultReader
	w io.Writer
}

func (e eventReader) XML(decl parser.Decl) error {
	fmt.Fprintf(e.w, "xml version=%q encoding=%q standalone=%v\n", decl.Version, decl.Encoding, decl.HasStandalone && decl.Standalone)
	return nil
}
func (e eventReader) Doctype(dt parser.Doctype) error {
	fmt.Fprintf(e.w, "doctype %s\n", dt.Name)
	return nil
}
func (e eventReader) PI(target, content string) error {
	fmt.Fprintf(e.w, "pi %s %q\n", target, content)
	return nil
}
func (e eventReader) Comment(text string) error {
	fmt.Fprintf(e.w, "comment %q\n", text)
	return nil
}
func (e eventReader) Start(name string, attrs *parser.Attrs) error {
	fmt.Fprintf(e.w, "start %s %s\n", name, formatAttrs(attrs))
	return nil
}
func (e eventReader) Empty(name string, attrs *parser.Attrs) error {
	fmt.Fprintf(e.w, "empty %s %s\n", name, formatAttrs(attrs))
	return nil
}
func (e eventReader) End(name string) error {
	fmt.Fprintf(e.w, "end %s\n", name)
	return nil
}
func (e eventReader) Text(text string) error {
	fmt.Fprintf(e.w, "text %q\n", text)
	return nil
}
func (e eventReader) EntityRef(name string) error {
	fmt.Fprintf(e.w, "entityRef %s\n", name)
	return nil
}
func (e eventReader) WantsComments() bool  { return true }
func (e eventReader) WantsPI() bool        { return true }
func (e eventReader) WantsDoctype() bool   { return true }
func (e eventReader) WantsEntityRef() bool { return true }

func formatAttrs(attrs *parser.Attrs) string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	attrs.Each(func(k, v string) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s=%q", k, v)
	})
	b.WriteByte('}')
	return b.String()
}

func cliEvents(args []string) {
	r, err := getInputReader(args)
	if err != nil {
		die(err)
	}
	reader := eventReader{w: os.Stdout}
	if err := streamInto(r, parser.New(reader, parser.Options{})); err != nil {
		die(err)
	}
}

func buildTree(args []string) (*tree.Document, error) {
	r, err := getInputReader(args)
	if err != nil {
		return nil, err
	}
	b := tree.NewBuilder()
	if err := streamInto(r, parser.New(b, parser.Options{})); err != nil {
		return nil, err
	}
	return b.Document(), nil
}

func cliTree(args []string) {
	doc, err := buildTree(args)
	if err != nil {
		die(err)
	}
	if err := tree.Dump(os.Stdout, doc); err != nil {
		die(err)
	}
	fmt.Println()
}

func cliCanon(args []string) {
	doc, err := buildTree(args)
	if err != nil {
		die(err)
	}
	out, err := canon.Canonicalize(doc)
	if err != nil {
		die(err)
	}
	os.Stdout.Write(out)
	fmt.Println()
}

func cliJSON(args []string) {
	doc, err := buildTree(args)
	if err != nil {
		die(err)
	}
	if doc.Root == nil {
		die(fmt.Errorf("document has no root element"))
	}
	out, err := query.ToJSON(doc.Root)
	if err != nil {
		die(err)
	}
	os.Stdout.Write(out)
	fmt.Println()
}
