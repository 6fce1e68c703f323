package parser

// stepTag implements the start/empty tag and attribute state groups. The
// tag name is read greedily via the Name production; after it, whitespace
// introduces zero or more attributes, '>' ends a start tag, and '/>' ends
// an empty tag.
func (p *Parser) stepTag(r rune) error {
	switch p.state {
	case stateTagName:
		return p.stepTagName(r)
	case stateTagAfterName:
		return p.stepTagAfterName(r)
	case stateTagAttrName:
		return p.stepTagAttrName(r)
	case stateTagAttrAfterName:
		return p.stepTagAttrAfterName(r)
	case stateTagAttrEq:
		return p.stepTagAttrEq(r)
	case stateTagAttrValueStart:
		return p.stepTagAttrValueStart(r)
	case stateTagAttrValue:
		return p.stepTagAttrValue(r)
	case stateTagSelfCloseSlash:
		return p.stepTagSelfCloseSlash(r)
	}
	panic("unreachable tag state")
}

func (p *Parser) stepTagName(r rune) error {
	if isNameChar(r) {
		p.element.WriteRune(r)
		return nil
	}
	return p.stepTagAfterNameDispatch(r)
}

func (p *Parser) stepTagAfterName(r rune) error {
	return p.stepTagAfterNameDispatch(r)
}

// stepTagAfterNameDispatch handles whatever follows the tag name: more
// whitespace, the start of an attribute, '/>' , or '>'. It is shared
// between the state immediately after the last name character and the
// dedicated "after name" state reached once whitespace has been seen.
func (p *Parser) stepTagAfterNameDispatch(r rune) error {
	switch {
	case isWhitespace(r):
		p.state = stateTagAfterName
		return nil
	case r == '>':
		return p.emitStartOrEmpty(false)
	case r == '/':
		p.state = stateTagSelfCloseSlash
		return nil
	case isNameStart(r):
		p.attrName.Reset()
		p.attrName.WriteRune(r)
		p.state = stateTagAttrName
		return nil
	}
	return newErrorf(InvalidStartTag, string(r), "malformed start tag")
}

func (p *Parser) stepTagSelfCloseSlash(r rune) error {
	if r != '>' {
		return newErrorf(InvalidStartTag, string(r), "expected '>' after '/'")
	}
	return p.emitStartOrEmpty(true)
}

func (p *Parser) stepTagAttrName(r rune) error {
	if isNameChar(r) {
		p.attrName.WriteRune(r)
		return nil
	}
	if isWhitespace(r) {
		p.state = stateTagAttrAfterName
		return nil
	}
	if r == '=' {
		p.state = stateTagAttrEq
		return nil
	}
	return newErrorf(InvalidStartTag, string(r), "malformed attribute name")
}

func (p *Parser) stepTagAttrAfterName(r rune) error {
	if isWhitespace(r) {
		return nil
	}
	if r == '=' {
		p.state = stateTagAttrEq
		return nil
	}
	return newErrorf(InvalidStartTag, string(r), "expected '=' after attribute name")
}

func (p *Parser) stepTagAttrEq(r rune) error {
	if isWhitespace(r) {
		return nil
	}
	p.state = stateTagAttrValueStart
	return p.stepTagAttrValueStart(r)
}

func (p *Parser) stepTagAttrValueStart(r rune) error {
	if r == '\'' || r == '"' {
		p.quote = r
		p.content.Reset()
		p.state = stateTagAttrValue
		return nil
	}
	return newErrorf(InvalidStartTag, string(r), "expected a quoted attribute value")
}

func (p *Parser) stepTagAttrValue(r rune) error {
	switch {
	case r == p.quote:
		name := p.attrName.String()
		value := p.content.String()
		p.attrName.Reset()
		p.content.Reset()
		if !p.attrs.put(name, value) {
			return newErrorf(DuplicateAttr, name, "duplicate attribute")
		}
		p.state = stateTagAfterName
		return nil
	case r == '<':
		return newError(InvalidAttributeValue, "literal '<' is not allowed in an attribute value")
	case r == '&':
		p.returnState = stateTagAttrValue
		p.refHost = refHostAttrValue
		p.state = stateReference
		return nil
	case r == '\t' || r == '\n' || r == '\r':
		// CR, LF, and CR/LF both collapse to a single SPACE; unlike
		// ordinary content this is not LF normalization, so pendingCR is
		// still needed to swallow a following LF of a CRLF pair without
		// emitting a second space.
		if r == '\r' {
			p.pendingCR = true
		}
		p.content.WriteByte(' ')
		return nil
	default:
		if !isXMLChar(r) {
			return newErrorf(InvalidChar, string(r), "invalid character in attribute value")
		}
		p.content.WriteRune(r)
		return nil
	}
}

// emitStartOrEmpty closes the tag currently in p.element/p.attrs, invoking
// Empty (for '/>') or Start (for '>') and updating the element stack and
// MISC/TEXT transition accordingly.
func (p *Parser) emitStartOrEmpty(selfClosing bool) error {
	name := p.element.String()
	attrs := p.attrs
	p.element.Reset()

	var err error
	if selfClosing {
		err = p.reader.Empty(name, attrs)
	} else {
		err = p.reader.Start(name, attrs)
	}
	attrs.reset()
	if err != nil {
		return err
	}

	if selfClosing {
		if p.stack.empty() {
			p.seenRoot = true
			p.rootClosed = true
			p.state = stateMisc
			return nil
		}
		p.state = stateText
		return nil
	}

	p.seenRoot = true
	p.stack.push(name)
	p.state = stateText
	return nil
}
