package parser

// stepEndTag implements the end tag state group: `</` Name
// optional-whitespace `>`, where the read name must equal the innermost
// open element name.
func (p *Parser) stepEndTag(r rune) error {
	switch p.state {
	case stateEndTagName:
		return p.stepEndTagName(r)
	case stateEndTagAfterName:
		return p.stepEndTagAfterName(r)
	}
	panic("unreachable end tag state")
}

func (p *Parser) stepEndTagName(r rune) error {
	if isNameStart(r) && p.element.Len() == 0 {
		p.element.WriteRune(r)
		return nil
	}
	if isNameChar(r) && p.element.Len() > 0 {
		p.element.WriteRune(r)
		return nil
	}
	return p.stepEndTagAfterNameDispatch(r)
}

func (p *Parser) stepEndTagAfterName(r rune) error {
	return p.stepEndTagAfterNameDispatch(r)
}

func (p *Parser) stepEndTagAfterNameDispatch(r rune) error {
	if isWhitespace(r) {
		p.state = stateEndTagAfterName
		return nil
	}
	if r == '>' {
		return p.finishEndTag()
	}
	if p.element.Len() == 0 {
		return newErrorf(InvalidEndTag, string(r), "expected an element name after '</'")
	}
	return newErrorf(InvalidEndTag, string(r), "malformed end tag")
}

func (p *Parser) finishEndTag() error {
	name := p.element.String()
	p.element.Reset()
	if p.stack.empty() || p.stack.peek() != name {
		return newErrorf(InvalidEndTag, name, "end tag does not match the innermost open element")
	}
	p.stack.pop()
	if err := p.reader.End(name); err != nil {
		return err
	}
	if p.stack.empty() {
		p.rootClosed = true
		p.state = stateMisc
		return nil
	}
	p.state = stateText
	return nil
}
