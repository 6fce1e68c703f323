package parser

import (
	"strings"
	"unicode/utf8"
)

// Parser is the incremental, push-style XML 1.0 well-formedness checker.
// Create one with New, feed it text with Write, and call End exactly once
// when the input is exhausted. A Parser is single-use: after End or after
// any error it is terminal and must not be written to again.
type Parser struct {
	reader Reader
	opts   Options

	state       state
	returnState state // single-slot continuation for reference/bang sub-routines

	// accumulators
	element       strings.Builder // tag name, PI target, or doctype name
	attrName      strings.Builder
	content       strings.Builder // attribute value / text / comment body / PI content / CDATA body
	entity        strings.Builder // pending entity name
	charRef       int32
	charRefOK     bool // false once an overlong/invalid char ref digit run is detected
	charRefDigits int  // digits consumed so far, to reject "&#x;"

	attrs *Attrs
	stack elemStack

	// XML declaration fields
	xmlVersion       string
	xmlEncoding      string
	xmlHasEncoding   bool
	xmlStandalone    bool
	xmlHasStandalone bool

	// literal sub-token matcher state
	litTarget string
	litPos    int

	quote rune // delimiter in progress: attribute value quote, or decl value quote

	seenXMLDecl bool
	seenDoctype bool
	seenRoot    bool
	rootClosed  bool

	pendingCR     bool
	closeBrackets int // consecutive ']' seen in text, for "]]>" forbiddance
	dtdDepth      int // internal-subset bracket depth
	dtdQuote      rune

	extIDPublic   bool // external identifier keyword was PUBLIC, not SYSTEM
	extIDLiterals int  // quoted literals consumed so far for the external identifier

	initBuf []rune // speculative "<?xml" + whitespace lookahead buffer

	refHost refHost // where a completed reference should be appended

	done bool
	err  error
}

// New creates a Parser that will invoke reader's callbacks as it recognizes
// structural events in the text fed to Write.
func New(reader Reader, opts Options) *Parser {
	return &Parser{
		reader: reader,
		opts:   opts,
		state:  stateInit,
		attrs:  newAttrs(),
	}
}

// Write feeds the next chunk of the document to the parser. It may be
// called any number of times, with the input split at any character
// boundary; the parser tolerates a construct of any kind spanning an
// arbitrary number of Write calls.
func (p *Parser) Write(text string) error {
	if p.done {
		return newError(UnexpectedEOF, "write after end or error")
	}
	if text == "" {
		return nil
	}

	for i := 0; i < len(text); {
		r, w := utf8.DecodeRuneInString(text[i:])
		i += w
		if err := p.step(r); err != nil {
			p.fail(err)
			return err
		}
	}

	if p.opts.IncompleteTextNodes && p.state == stateText {
		if err := p.flushText(); err != nil {
			p.fail(err)
			return err
		}
	}
	return nil
}

// End signals that no further input will be written. It validates that the
// document finished in a terminal state (root seen and closed, no
// in-progress construct) and returns UnexpectedEOF otherwise.
func (p *Parser) End() error {
	if p.done {
		return newError(UnexpectedEOF, "end called twice")
	}
	if p.pendingCR {
		// A lone trailing CR still normalizes to LF; nothing to flush here
		// since it was already appended when it was seen.
		p.pendingCR = false
	}
	if !p.stack.empty() || !p.seenRoot || p.state != stateMisc {
		err := newError(UnexpectedEOF, "document ended with an incomplete construct")
		p.fail(err)
		return err
	}
	p.done = true
	return nil
}

func (p *Parser) fail(err error) {
	p.done = true
	p.err = err
}

// step advances the state machine by exactly one input character. A CR
// normalized to LF by appendNormalized (or the attribute-whitespace
// collapse in tag.go) sets pendingCR so that an immediately following LF,
// whether in this chunk or the next Write call, is swallowed here rather
// than normalized a second time.
func (p *Parser) step(r rune) error {
	if p.pendingCR {
		p.pendingCR = false
		if r == '\n' {
			return nil
		}
	}
	switch p.state {
	case stateInit:
		return p.stepInit(r)
	case stateMisc:
		return p.stepMisc(r)
	case stateLT:
		return p.stepLT(r)
	case stateLTBang:
		return p.stepLTBang(r)

	case stateXMLDeclBeforeWS, stateXMLDeclAttrName, stateXMLDeclEq,
		stateXMLDeclValueStart, stateXMLDeclValue, stateXMLDeclAfterValueWS,
		stateXMLDeclEnd:
		return p.stepXMLDecl(r)

	case stateDoctypeBeforeName, stateDoctypeName, stateDoctypeAfterName,
		stateDoctypeExternalIDKeyword, stateDoctypeExternalIDBeforeQuote,
		stateDoctypeExternalIDValue, stateDoctypeBeforeSubsetOrEnd,
		stateDoctypeSubset, stateDoctypeSubsetQuoted, stateDoctypeAfterSubset:
		return p.stepDoctype(r)

	case stateBangOrPI, statePITarget, statePIBeforeContent, statePIContent, statePIEnd:
		return p.stepPI(r)

	case stateCommentOpen, stateCommentBody, stateCommentHyphen, stateCommentHyphen2:
		return p.stepComment(r)

	case stateTagName, stateTagAfterName, stateTagAttrName, stateTagAttrAfterName,
		stateTagAttrEq, stateTagAttrValueStart, stateTagAttrValue, stateTagSelfCloseSlash:
		return p.stepTag(r)

	case stateEndTagName, stateEndTagAfterName:
		return p.stepEndTag(r)

	case stateText:
		return p.stepText(r)

	case stateCDATAOpen, stateCDATABody, stateCDATABracket1, stateCDATABracket2:
		return p.stepCDATA(r)

	case stateReference, stateCharRefStart, stateCharRefDec, stateCharRefHex, stateEntityName:
		return p.stepReference(r)
	}
	return newError(UnexpectedEOF, "unreachable parser state")
}

// appendNormalized appends r to the content accumulator, normalizing CR and
// CRLF to a single LF.
func (p *Parser) appendNormalized(r rune) {
	if r == '\r' {
		p.content.WriteByte('\n')
		p.pendingCR = true
		return
	}
	p.content.WriteRune(r)
}

// resetAccumulators clears every accumulator. Called whenever a construct
// completes, to uphold invariant 2 (state determines which accumulators
// are meaningful).
func (p *Parser) resetAccumulators() {
	p.element.Reset()
	p.attrName.Reset()
	p.content.Reset()
	p.entity.Reset()
	p.charRef = 0
	p.charRefOK = true
	p.charRefDigits = 0
}

// flushText emits the accumulated content as a Text event if non-empty and
// clears it. Called whenever a structural boundary is reached so that a
// text run never spans the boundary, and before content is reused to
// accumulate a comment or PI body.
func (p *Parser) flushText() error {
	if p.content.Len() == 0 {
		return nil
	}
	text := p.content.String()
	p.content.Reset()
	return p.reader.Text(text)
}
