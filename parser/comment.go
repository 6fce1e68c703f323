package parser

// stepComment implements the comment state group: body must
// not contain "--", and the closing '-' must be immediately followed by
// '>' ("--->" is ill-formed).
func (p *Parser) stepComment(r rune) error {
	switch p.state {
	case stateCommentOpen:
		return p.stepCommentOpen(r)
	case stateCommentBody:
		return p.stepCommentBody(r)
	case stateCommentHyphen:
		return p.stepCommentHyphen(r)
	case stateCommentHyphen2:
		return p.stepCommentHyphen2(r)
	}
	panic("unreachable comment state")
}

func (p *Parser) stepCommentOpen(r rune) error {
	if r != '-' {
		return newErrorf(InvalidComment, string(r), "expected the second '-' opening a comment")
	}
	p.litTarget = ""
	if err := p.flushText(); err != nil {
		return err
	}
	p.state = stateCommentBody
	return nil
}

func (p *Parser) stepCommentBody(r rune) error {
	if r == '-' {
		p.state = stateCommentHyphen
		return nil
	}
	return p.appendCommentChar(r)
}

func (p *Parser) stepCommentHyphen(r rune) error {
	if r == '-' {
		p.state = stateCommentHyphen2
		return nil
	}
	p.content.WriteByte('-')
	p.state = stateCommentBody
	return p.appendCommentChar(r)
}

func (p *Parser) stepCommentHyphen2(r rune) error {
	if r == '>' {
		text := p.content.String()
		p.resetAccumulators()
		p.state = p.returnState
		if p.reader.WantsComments() {
			return p.reader.Comment(text)
		}
		return nil
	}
	return newErrorf(InvalidComment, string(r), "'--' must be immediately followed by '>'")
}

func (p *Parser) appendCommentChar(r rune) error {
	if !isXMLChar(r) {
		return newErrorf(InvalidChar, string(r), "invalid character in comment")
	}
	if p.reader.WantsComments() {
		p.appendNormalized(r)
	} else if r == '\r' {
		p.pendingCR = true
	}
	return nil
}
