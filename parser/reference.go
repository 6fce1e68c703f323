package parser

// stepReference implements the character/entity reference sub-state-machine.
// It is entered from either text or an attribute value with p.returnState
// and p.refHost already set by the caller, and always returns to
// p.returnState once the reference is fully consumed.
func (p *Parser) stepReference(r rune) error {
	switch p.state {
	case stateReference:
		return p.stepReferenceStart(r)
	case stateCharRefStart:
		return p.stepCharRefStart(r)
	case stateCharRefDec:
		return p.stepCharRefDec(r)
	case stateCharRefHex:
		return p.stepCharRefHex(r)
	case stateEntityName:
		return p.stepEntityName(r)
	}
	panic("unreachable reference state")
}

func (p *Parser) stepReferenceStart(r rune) error {
	if r == '#' {
		p.charRef = 0
		p.charRefOK = true
		p.charRefDigits = 0
		p.state = stateCharRefStart
		return nil
	}
	if isNameStart(r) {
		p.entity.Reset()
		p.entity.WriteRune(r)
		p.state = stateEntityName
		return nil
	}
	return newErrorf(InvalidEntityRef, string(r), "expected '#' or a name after '&'")
}

func (p *Parser) stepCharRefStart(r rune) error {
	if r == 'x' {
		p.state = stateCharRefHex
		return nil
	}
	if isDigit(r) {
		p.charRef = digitValue(r)
		p.charRefDigits = 1
		p.state = stateCharRefDec
		return nil
	}
	return newErrorf(InvalidCharRef, string(r), "expected decimal digits or 'x' after '&#'")
}

func (p *Parser) stepCharRefDec(r rune) error {
	if isDigit(r) {
		p.accumulateCharRefDigit(digitValue(r), 10)
		return nil
	}
	if r == ';' {
		return p.finishCharRef()
	}
	return newErrorf(InvalidCharRef, string(r), "malformed decimal character reference")
}

func (p *Parser) stepCharRefHex(r rune) error {
	if isHexDigit(r) {
		p.accumulateCharRefDigit(hexValue(r), 16)
		return nil
	}
	if r == ';' {
		return p.finishCharRef()
	}
	return newErrorf(InvalidCharRef, string(r), "malformed hexadecimal character reference")
}

// accumulateCharRefDigit folds one more digit into the character reference
// under construction, latching charRefOK to false once the value would
// overflow a valid Unicode scalar rather than wrapping or panicking.
func (p *Parser) accumulateCharRefDigit(digit int32, base int32) {
	p.charRefDigits++
	if !p.charRefOK {
		return
	}
	if p.charRef > (0x10FFFF/base)+1 {
		p.charRefOK = false
		return
	}
	p.charRef = p.charRef*base + digit
	if p.charRef > 0x10FFFF {
		p.charRefOK = false
	}
}

// finishCharRef validates the accumulated scalar against the Char
// production and, on success, appends it to content without CR/LF
// normalization: unlike literal source text, an explicit numeric
// reference denotes its scalar exactly.
func (p *Parser) finishCharRef() error {
	ok := p.charRefOK && p.charRefDigits > 0 && p.charRef != 0 && isXMLChar(p.charRef)
	value := p.charRef
	p.charRef = 0
	p.charRefOK = true
	p.charRefDigits = 0
	if !ok {
		return newError(InvalidCharRef, "character reference is empty, zero, or out of the valid character range")
	}
	p.content.WriteRune(value)
	p.state = p.returnState
	return nil
}

func (p *Parser) stepEntityName(r rune) error {
	if isNameChar(r) {
		p.entity.WriteRune(r)
		return nil
	}
	if r == ';' {
		return p.finishEntityRef()
	}
	return newErrorf(InvalidEntityRef, p.entity.String(), "malformed entity name")
}

// finishEntityRef resolves a named, non-numeric reference. The five
// predefined entities always expand inline. Any other name is handled
// according to where the reference was found: in an attribute value the
// reader's resolver is consulted and its result appended verbatim with no
// recursive parsing; in text, a reader that declares WantsEntityRef has the
// buffered run flushed and its EntityRef hook invoked instead of expanding
// anything, while a reader that doesn't want it fails with
// UnresolvedEntity exactly as an attribute-value resolver miss does.
func (p *Parser) finishEntityRef() error {
	name := p.entity.String()
	p.entity.Reset()

	if lit, ok := predefinedEntityLiteral(name); ok {
		p.content.WriteString(lit)
		p.state = p.returnState
		return nil
	}

	switch p.refHost {
	case refHostAttrValue:
		value, ok := p.reader.ResolveEntityRef(name)
		if !ok {
			return newErrorf(UnresolvedEntity, name, "no resolver provided a value for this entity reference")
		}
		p.content.WriteString(value)
		p.state = p.returnState
		return nil
	default: // refHostText
		if !p.reader.WantsEntityRef() {
			return newErrorf(UnresolvedEntity, name, "no EntityRef handler provided for this entity reference")
		}
		if err := p.flushText(); err != nil {
			return err
		}
		if err := p.reader.EntityRef(name); err != nil {
			return err
		}
		p.state = p.returnState
		return nil
	}
}

func predefinedEntityLiteral(name string) (string, bool) {
	switch name {
	case "amp":
		return "&", true
	case "lt":
		return "<", true
	case "gt":
		return ">", true
	case "apos":
		return "'", true
	case "quot":
		return `"`, true
	}
	return "", false
}
