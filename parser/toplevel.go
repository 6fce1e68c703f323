package parser

// This file implements the inter-content region of the grammar: the
// speculative "<?xml " lookahead that only applies at the very start of
// the document, the MISC region between/around the root
// element, and the post-'<' disambiguation that fans out into every other
// construct.

const xmlDeclPrefix = "<?xml"

// stepInit handles the very first characters of the document, speculatively
// matching "<?xml" followed by a whitespace character. On any mismatch the
// buffered runes are replayed through the ordinary MISC/LT dispatch, which
// falls into MISC directly and treats a later `<?xml…` as a reserved-target
// error.
func (p *Parser) stepInit(r rune) error {
	p.initBuf = append(p.initBuf, r)

	pos := len(p.initBuf) - 1
	if pos < len(xmlDeclPrefix) {
		if byte(r) != xmlDeclPrefix[pos] || r > 0x7f {
			return p.replayInit()
		}
		return nil
	}

	// pos == len(xmlDeclPrefix): this is the 6th character, which must be
	// whitespace for a declaration attempt.
	if !isWhitespace(r) {
		return p.replayInit()
	}

	p.initBuf = nil
	p.seenXMLDecl = true
	p.state = stateXMLDeclBeforeWS
	return nil
}

// replayInit feeds every buffered lookahead rune through the normal
// top-level dispatch, starting from MISC, then discards the buffer. Since
// at most six runes are ever buffered this is cheap.
func (p *Parser) replayInit() error {
	buf := p.initBuf
	p.initBuf = nil
	p.state = stateMisc
	for _, r := range buf {
		if err := p.step(r); err != nil {
			return err
		}
	}
	return nil
}

// stepMisc handles the inter-content MISC region: whitespace, comments, PIs,
// and the '<' that introduces the root element or a DOCTYPE.
func (p *Parser) stepMisc(r rune) error {
	if isWhitespace(r) {
		return nil
	}
	if r == '<' {
		p.returnState = stateMisc
		p.state = stateLT
		return nil
	}
	if p.rootClosed {
		return newErrorf(InvalidChar, string(r), "content not allowed after the root element")
	}
	return newErrorf(InvalidStartTag, string(r), "content not allowed outside the root element")
}

// stepLT handles the character immediately following '<'.
func (p *Parser) stepLT(r rune) error {
	switch {
	case r == '?':
		p.state = stateBangOrPI
		return nil
	case r == '!':
		p.state = stateLTBang
		return nil
	case r == '/':
		if p.stack.empty() {
			return newError(InvalidEndTag, "end tag with no open element")
		}
		if err := p.flushText(); err != nil {
			return err
		}
		p.state = stateEndTagName
		return nil
	case isNameStart(r):
		if p.rootClosed {
			return newErrorf(InvalidStartTag, string(r), "multiple root elements")
		}
		if err := p.flushText(); err != nil {
			return err
		}
		p.element.WriteRune(r)
		p.state = stateTagName
		return nil
	}
	return newErrorf(InvalidStartTag, string(r), "unexpected character after '<'")
}

// stepLTBang handles the character immediately following '<!', fanning out
// to comment, CDATA, or DOCTYPE based on the first distinguishing
// character of each.
func (p *Parser) stepLTBang(r rune) error {
	switch r {
	case '-':
		p.litTarget = "-"
		p.litPos = 0
		p.state = stateCommentOpen
		return nil
	case '[':
		if p.stack.empty() {
			return newError(InvalidCDATA, "CDATA section with no open element")
		}
		p.litTarget = "CDATA["
		p.litPos = 0
		p.state = stateCDATAOpen
		return nil
	case 'D':
		if p.seenDoctype {
			return newError(InvalidDoctypeDecl, "duplicate DOCTYPE declaration")
		}
		if p.seenRoot {
			return newError(InvalidDoctypeDecl, "DOCTYPE declaration after the root element")
		}
		p.litTarget = "OCTYPE"
		p.litPos = 0
		p.state = stateDoctypeBeforeName
		return nil
	}
	return newErrorf(InvalidStartTag, string(r), "unexpected character after '<!'")
}

// matchLit advances the single in-progress literal-keyword match
// (litTarget/litPos), the mechanism used to consume multi-character
// prefix tokens like "DOCTYPE" or "CDATA[" across chunk boundaries. It
// returns done=true once the literal is fully matched.
func (p *Parser) matchLit(r rune) (done bool, ok bool) {
	if byte(r) != p.litTarget[p.litPos] || r > 0x7f {
		return false, false
	}
	p.litPos++
	if p.litPos == len(p.litTarget) {
		return true, true
	}
	return false, true
}
