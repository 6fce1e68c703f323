package parser

// stepCDATA implements the CDATA section state group. The
// body contributes to the same content accumulator as ordinary text so
// that a CDATA span is transparent to the reader; only the literal
// sequence "]]>" is special, and it must be recognized correctly even when
// the trailing one or two ']' characters fall at a chunk boundary.
func (p *Parser) stepCDATA(r rune) error {
	switch p.state {
	case stateCDATAOpen:
		return p.stepCDATAOpen(r)
	case stateCDATABody:
		return p.stepCDATABody(r)
	case stateCDATABracket1:
		return p.stepCDATABracket1(r)
	case stateCDATABracket2:
		return p.stepCDATABracket2(r)
	}
	panic("unreachable CDATA state")
}

func (p *Parser) stepCDATAOpen(r rune) error {
	done, ok := p.matchLit(r)
	if !ok {
		return newErrorf(InvalidCDATA, string(r), "expected '[CDATA['")
	}
	if done {
		p.litTarget = ""
		p.litPos = 0
		p.state = stateCDATABody
	}
	return nil
}

func (p *Parser) stepCDATABody(r rune) error {
	if r == ']' {
		p.state = stateCDATABracket1
		return nil
	}
	return p.appendCDATAChar(r)
}

func (p *Parser) stepCDATABracket1(r rune) error {
	if r == ']' {
		p.state = stateCDATABracket2
		return nil
	}
	p.content.WriteByte(']')
	p.state = stateCDATABody
	return p.appendCDATAChar(r)
}

func (p *Parser) stepCDATABracket2(r rune) error {
	if r == '>' {
		// Terminator found; the CDATA section ends but, unlike a comment
		// or PI, it does not flush an event of its own. The surrounding
		// text node continues accumulating in content.
		p.closeBrackets = 0
		p.state = stateText
		return nil
	}
	if r == ']' {
		// Any run of three or more ']' before '>' still only ever needs
		// one pending bracket; emit the first and stay put.
		p.content.WriteByte(']')
		return nil
	}
	p.content.WriteString("]]")
	p.state = stateCDATABody
	return p.appendCDATAChar(r)
}

func (p *Parser) appendCDATAChar(r rune) error {
	if !isXMLChar(r) {
		return newErrorf(InvalidChar, string(r), "invalid character in CDATA section")
	}
	p.appendNormalized(r)
	return nil
}
