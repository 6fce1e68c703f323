package parser

// stepText implements the text content state group: buffers
// character data between tags, normalizes line endings, forbids a bare
// `]]>`, and hands off to the post-'<' disambiguation and the reference
// sub-state-machine.
func (p *Parser) stepText(r rune) error {
	switch r {
	case '<':
		p.returnState = stateText
		p.closeBrackets = 0
		p.state = stateLT
		return nil
	case '&':
		p.returnState = stateText
		p.refHost = refHostText
		p.closeBrackets = 0
		p.state = stateReference
		return nil
	case ']':
		p.closeBrackets++
		p.appendNormalized(r)
		return nil
	case '>':
		if p.closeBrackets >= 2 {
			return newError(InvalidCDEnd, "']]>' is not allowed in text content")
		}
		p.closeBrackets = 0
		p.appendNormalized(r)
		return nil
	}
	p.closeBrackets = 0
	if !isXMLChar(r) {
		return newErrorf(InvalidChar, string(r), "invalid character in text content")
	}
	p.appendNormalized(r)
	return nil
}
