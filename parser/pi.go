package parser

import "strings"

// stepPI implements the processing-instruction state group:
// `<?` Name (S content)? `?>`, with the target rejected if its lower-cased
// form is "xml" (that prefix is reserved for the declaration handled in
// xmldecl.go, which never reaches this state).
func (p *Parser) stepPI(r rune) error {
	switch p.state {
	case stateBangOrPI:
		return p.stepPITargetStart(r)
	case statePITarget:
		return p.stepPITarget(r)
	case statePIBeforeContent:
		return p.stepPIBeforeContent(r)
	case statePIContent:
		return p.stepPIContent(r)
	case statePIEnd:
		return p.stepPIEnd(r)
	}
	panic("unreachable PI state")
}

func (p *Parser) stepPITargetStart(r rune) error {
	if !isNameStart(r) {
		return newErrorf(InvalidPI, string(r), "expected a processing instruction target")
	}
	p.element.Reset()
	p.element.WriteRune(r)
	p.state = statePITarget
	return nil
}

func (p *Parser) stepPITarget(r rune) error {
	if isNameChar(r) {
		p.element.WriteRune(r)
		return nil
	}
	if strings.EqualFold(p.element.String(), "xml") {
		return newErrorf(ReservedPI, p.element.String(), "the target 'xml' is reserved")
	}
	if r == '?' {
		if err := p.flushText(); err != nil {
			return err
		}
		p.state = statePIEnd
		return nil
	}
	if isWhitespace(r) {
		if err := p.flushText(); err != nil {
			return err
		}
		p.state = statePIBeforeContent
		return nil
	}
	return newErrorf(InvalidPI, string(r), "malformed processing instruction target")
}

func (p *Parser) stepPIBeforeContent(r rune) error {
	if isWhitespace(r) {
		return nil
	}
	p.state = statePIContent
	return p.stepPIContent(r)
}

func (p *Parser) stepPIContent(r rune) error {
	if r == '?' {
		p.state = statePIEnd
		return nil
	}
	if !isXMLChar(r) {
		return newErrorf(InvalidChar, string(r), "invalid character in processing instruction content")
	}
	if p.reader.WantsPI() {
		p.appendNormalized(r)
	} else if r == '\r' {
		p.pendingCR = true
	}
	return nil
}

func (p *Parser) stepPIEnd(r rune) error {
	if r == '>' {
		target := p.element.String()
		content := p.content.String()
		p.resetAccumulators()
		p.state = p.returnState
		if p.reader.WantsPI() {
			return p.reader.PI(target, content)
		}
		return nil
	}
	// A '?' not followed by '>' is just content containing '?'; resume
	// accumulating with the '?' restored.
	if p.reader.WantsPI() {
		p.content.WriteByte('?')
	}
	p.state = statePIContent
	return p.stepPIContent(r)
}
