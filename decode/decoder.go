// Package decode is the byte-level front end to the core parser: it
// sniffs a document's encoding from its byte-order mark, reconciles that
// against any encoding pseudo-attribute in a leading XML declaration, and
// forwards decoded text to a Sink (normally a *parser.Parser). It never
// interprets markup beyond what it needs to locate the declaration's
// encoding attribute.
package decode

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/arturoeanton/xmlcore/parser"
)

// Error codes for this layer, expressed as parser.Code values so a host
// inspecting errors with parser.IsParserError sees one error surface
// regardless of which layer raised it.
const (
	EncodingNotSupported parser.Code = "ENCODING_NOT_SUPPORTED"
	EncodingInvalidData  parser.Code = "ENCODING_INVALID_DATA"
)

// Sink is the text-consuming side a Decoder forwards decoded characters to.
// *parser.Parser satisfies this.
type Sink interface {
	Write(text string) error
	End() error
}

type bomEncoding int

const (
	bomNone bomEncoding = iota
	bomUTF8
	bomUTF16LE
	bomUTF16BE
)

// maxDeclSniff bounds how many raw bytes the decoder will buffer while
// hunting for a leading declaration's "?>" before giving up and treating
// the document as having no declaration at all.
const maxDeclSniff = 4096

// Decoder is the push-style byte-to-text adapter. Call Write with
// successive byte chunks and End exactly once, mirroring parser.Parser's
// own Write/End lifecycle.
type Decoder struct {
	sink Sink

	buf      bytes.Buffer
	resolved bool
	bom      bomEncoding

	// streaming path, used once resolved to plain UTF-8 (BOM-declared or
	// defaulted): pending holds a possibly-incomplete trailing UTF-8
	// sequence carried across Write calls.
	streamingUTF8 bool
	pending       []byte

	// buffered path, used once resolved to UTF-16 or a legacy charset:
	// every subsequent Write call's bytes are appended to buf and the
	// whole document is decoded at End. True incremental decoding of a
	// stateful multi-byte legacy charset is not worth the complexity
	// here.
	bufferedLabel string

	done bool
	err  error
}

// New creates a Decoder that forwards decoded text to sink.
func New(sink Sink) *Decoder {
	return &Decoder{sink: sink}
}

// Write feeds the next chunk of raw document bytes to the decoder.
func (d *Decoder) Write(b []byte) error {
	if d.done {
		return &parser.Error{Code: EncodingInvalidData, Msg: "write after end or error"}
	}
	if len(b) == 0 {
		return nil
	}

	if !d.resolved {
		d.buf.Write(b)
		if err := d.tryResolve(false); err != nil {
			return d.fail(err)
		}
		return nil
	}

	if d.streamingUTF8 {
		return d.writeUTF8(b)
	}

	d.buf.Write(b)
	return nil
}

// End signals that no further bytes will be written, flushing anything
// still buffered.
func (d *Decoder) End() error {
	if d.done {
		return &parser.Error{Code: EncodingInvalidData, Msg: "end called twice"}
	}
	if !d.resolved {
		if err := d.tryResolve(true); err != nil {
			return d.fail(err)
		}
	}
	if !d.resolved {
		// tryResolve(true) always resolves (falls back to UTF-8 with no
		// declared encoding) unless it already failed above.
		return d.fail(&parser.Error{Code: EncodingInvalidData, Msg: "unable to determine document encoding"})
	}

	if !d.streamingUTF8 && d.buf.Len() > 0 {
		if err := d.decodeBufferedToEnd(); err != nil {
			return d.fail(err)
		}
	} else if d.streamingUTF8 && len(d.pending) > 0 {
		return d.fail(&parser.Error{Code: EncodingInvalidData, Msg: "document ends with an incomplete UTF-8 sequence"})
	}

	d.done = true
	return d.sink.End()
}

func (d *Decoder) fail(err error) error {
	d.done = true
	d.err = err
	return err
}

// tryResolve attempts to determine the document's encoding from the bytes
// buffered so far. It needs enough of the prefix to see past any leading
// XML declaration so it can read the encoding pseudo-attribute; final is
// true once End has been reached, meaning no more bytes are coming.
func (d *Decoder) tryResolve(final bool) error {
	raw := d.buf.Bytes()
	if !final && len(raw) < 4 {
		// Too few bytes to even tell a BOM from the first character of an
		// unmarked document; wait for the next chunk.
		return nil
	}
	bom, bomLen := detectBOM(raw)
	body := raw[bomLen:]

	declText, complete := sniffDeclText(body, bom)
	if !complete && !final && len(body) < maxDeclSniff {
		return nil
	}

	declEncoding := scanDeclEncoding(declText)

	if err := reconcile(bom, declEncoding); err != nil {
		return err
	}

	d.resolved = true
	d.bom = bom

	label := declEncoding
	if label == "" {
		switch bom {
		case bomUTF16LE:
			label = "utf-16le"
		case bomUTF16BE:
			label = "utf-16be"
		default:
			label = "utf-8"
		}
	}

	switch {
	case bom == bomUTF16LE || bom == bomUTF16BE:
		// The BOM fixes the byte order; a declared "utf-16" names none.
		d.bufferedLabel = "utf-16le"
		if bom == bomUTF16BE {
			d.bufferedLabel = "utf-16be"
		}
		d.buf.Next(bomLen) // drop the BOM bytes already consumed into `body`'s view
		return nil
	case label == "utf-8" || label == "us-ascii" || label == "":
		d.streamingUTF8 = true
		d.buf.Next(bomLen)
		remaining := append([]byte(nil), d.buf.Bytes()...)
		d.buf.Reset()
		if len(remaining) > 0 {
			return d.writeUTF8(remaining)
		}
		return nil
	default:
		if _, name := charset.Lookup(label); name == "" {
			return &parser.Error{Code: EncodingNotSupported, Msg: "unsupported declared encoding", Info: label}
		}
		d.bufferedLabel = label
		d.buf.Next(bomLen)
		return nil
	}
}

// writeUTF8 decodes b as UTF-8, carrying over an incomplete trailing
// sequence to the next call exactly the way the core parser carries over a
// pending CR across chunk boundaries.
func (d *Decoder) writeUTF8(b []byte) error {
	chunk := append(d.pending, b...)
	d.pending = nil

	valid := chunk
	if n := incompleteUTF8Suffix(chunk); n > 0 {
		valid = chunk[:len(chunk)-n]
		d.pending = append(d.pending, chunk[len(chunk)-n:]...)
	}
	if !utf8.Valid(valid) {
		return d.fail(&parser.Error{Code: EncodingInvalidData, Msg: "malformed UTF-8 byte sequence"})
	}
	if err := d.sink.Write(string(valid)); err != nil {
		return d.fail(err)
	}
	return nil
}

// decodeBufferedToEnd decodes the entire document buffered for a UTF-16 or
// legacy-charset document and forwards it in one call.
func (d *Decoder) decodeBufferedToEnd() error {
	raw := d.buf.Bytes()
	switch d.bufferedLabel {
	case "utf-16le", "utf-16be":
		text, err := decodeUTF16(raw, d.bufferedLabel == "utf-16be")
		if err != nil {
			return err
		}
		return d.sink.Write(text)
	default:
		r, err := charset.NewReaderLabel(d.bufferedLabel, bytes.NewReader(raw))
		if err != nil {
			return &parser.Error{Code: EncodingNotSupported, Msg: "unsupported declared encoding", Info: d.bufferedLabel, Err: err}
		}
		decoded, err := readAll(r)
		if err != nil {
			return &parser.Error{Code: EncodingInvalidData, Msg: "could not decode declared charset", Info: d.bufferedLabel, Err: err}
		}
		return d.sink.Write(string(decoded))
	}
}

func readAll(r io.Reader) ([]byte, error) {
	var out bytes.Buffer
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			out.Write(buf[:n])
		}
		if err == io.EOF {
			return out.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func detectBOM(b []byte) (bomEncoding, int) {
	switch {
	case len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
		return bomUTF8, 3
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE:
		return bomUTF16LE, 2
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		return bomUTF16BE, 2
	}
	return bomNone, 0
}

// sniffDeclText returns the leading "<?xml ... ?>" declaration text up to
// (not including) its closing "?>", decoded to a plain Go string for
// pattern matching, and whether a verdict is final: the declaration closed
// with "?>", or there is proof no declaration is coming. The text is empty
// until "?>" has been seen, and empty if the document plainly does not open
// with a declaration.
func sniffDeclText(body []byte, bom bomEncoding) (string, bool) {
	var text string
	switch bom {
	case bomUTF16LE, bomUTF16BE:
		usable := len(body) - len(body)%2
		decoded, err := decodeUTF16(body[:usable], bom == bomUTF16BE)
		if err != nil {
			return "", true
		}
		text = decoded
	default:
		text = string(body)
	}
	if !strings.HasPrefix(text, "<?xml") {
		if len(text) < len("<?xml") && strings.HasPrefix("<?xml", text) {
			// The buffered prefix is still consistent with a declaration
			// starting; no verdict yet.
			return "", false
		}
		return "", true
	}
	if idx := strings.Index(text, "?>"); idx >= 0 {
		return text[:idx], true
	}
	return "", false
}

func scanDeclEncoding(declText string) string {
	idx := strings.Index(declText, "encoding")
	if idx < 0 {
		return ""
	}
	rest := declText[idx+len("encoding"):]
	rest = strings.TrimLeft(rest, " \t\r\n")
	if len(rest) == 0 || rest[0] != '=' {
		return ""
	}
	rest = strings.TrimLeft(rest[1:], " \t\r\n")
	if len(rest) == 0 || (rest[0] != '\'' && rest[0] != '"') {
		return ""
	}
	quote := rest[0]
	rest = rest[1:]
	end := strings.IndexByte(rest, quote)
	if end < 0 {
		return ""
	}
	return strings.ToLower(rest[:end])
}

// reconcile fails a BOM/declared-encoding combination that cannot both be
// true of the same byte stream.
func reconcile(bom bomEncoding, declared string) error {
	if declared == "" {
		return nil
	}
	switch bom {
	case bomUTF16LE:
		if declared != "utf-16" && declared != "utf-16le" {
			return &parser.Error{Code: EncodingInvalidData, Msg: "declared encoding conflicts with UTF-16LE byte-order mark", Info: declared}
		}
	case bomUTF16BE:
		if declared != "utf-16" && declared != "utf-16be" {
			return &parser.Error{Code: EncodingInvalidData, Msg: "declared encoding conflicts with UTF-16BE byte-order mark", Info: declared}
		}
	case bomUTF8:
		if strings.HasPrefix(declared, "utf-16") {
			return &parser.Error{Code: EncodingInvalidData, Msg: "declared encoding conflicts with UTF-8 byte-order mark", Info: declared}
		}
	}
	return nil
}

// decodeUTF16 decodes raw big- or little-endian UTF-16 bytes (with no BOM
// remaining) to a Go string.
func decodeUTF16(raw []byte, bigEndian bool) (string, error) {
	if len(raw)%2 != 0 {
		return "", &parser.Error{Code: EncodingInvalidData, Msg: "UTF-16 byte stream has an odd length"}
	}
	units := make([]uint16, len(raw)/2)
	for i := range units {
		if bigEndian {
			units[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
		} else {
			units[i] = uint16(raw[2*i+1])<<8 | uint16(raw[2*i])
		}
	}
	return string(utf16.Decode(units)), nil
}

// incompleteUTF8Suffix reports how many trailing bytes of b form the start
// of a multi-byte UTF-8 sequence that is not yet complete, so the caller
// can hold them back for the next chunk instead of misreading them as
// invalid.
func incompleteUTF8Suffix(b []byte) int {
	n := len(b)
	max := 4
	if max > n {
		max = n
	}
	for i := 1; i <= max; i++ {
		c := b[n-i]
		if c < 0x80 {
			return 0 // ASCII; no multi-byte sequence ends here
		}
		if c&0xC0 == 0x80 {
			continue // continuation byte, keep walking back to the lead byte
		}
		var want int
		switch {
		case c&0xE0 == 0xC0:
			want = 2
		case c&0xF0 == 0xE0:
			want = 3
		case c&0xF8 == 0xF0:
			want = 4
		default:
			return 0 // not a valid lead byte; let utf8.Valid report the error
		}
		if i < want {
			return i
		}
		return 0
	}
	return 0
}
