package parser

import "strings"

// stepXMLDecl implements the XML declaration state group:
// pseudo-attributes must appear in the exact order version (required),
// encoding (optional), standalone (optional).

// xmlDeclAttr enumerates where stepXMLDecl is within the pseudo-attribute
// sequence. It reuses attrName to accumulate the pseudo-attribute name and
// content to accumulate its quoted value, the same accumulators the real
// tag-attribute state group uses, since the two grammars are structurally
// identical.
type xmlDeclAttr int

const (
	xmlDeclAttrVersion xmlDeclAttr = iota
	xmlDeclAttrEncoding
	xmlDeclAttrStandalone
	xmlDeclAttrDone
)

func (p *Parser) stepXMLDecl(r rune) error {
	switch p.state {
	case stateXMLDeclBeforeWS:
		return p.stepXMLDeclBeforeWS(r)
	case stateXMLDeclAttrName:
		return p.stepXMLDeclAttrName(r)
	case stateXMLDeclEq:
		return p.stepXMLDeclEq(r)
	case stateXMLDeclValueStart:
		return p.stepXMLDeclValueStart(r)
	case stateXMLDeclValue:
		return p.stepXMLDeclValue(r)
	case stateXMLDeclAfterValueWS:
		return p.stepXMLDeclAfterValueWS(r)
	case stateXMLDeclEnd:
		return p.stepXMLDeclEnd(r)
	}
	panic("unreachable xml decl state")
}

// nextDeclAttr reports which pseudo-attribute is expected next, based on
// which fields have already been filled in.
func (p *Parser) nextDeclAttr() xmlDeclAttr {
	switch {
	case p.xmlVersion == "":
		return xmlDeclAttrVersion
	case !p.xmlHasEncoding && !p.xmlHasStandalone:
		return xmlDeclAttrEncoding
	case !p.xmlHasStandalone:
		return xmlDeclAttrStandalone
	}
	return xmlDeclAttrDone
}

func (p *Parser) stepXMLDeclBeforeWS(r rune) error {
	if isWhitespace(r) {
		return nil
	}
	if r == '?' {
		if p.xmlVersion == "" {
			return newError(InvalidXMLDecl, "missing required 'version' pseudo-attribute")
		}
		p.state = stateXMLDeclEnd
		return nil
	}
	if !isNameStart(r) {
		return newErrorf(InvalidXMLDecl, string(r), "expected a pseudo-attribute name")
	}
	p.attrName.Reset()
	p.attrName.WriteRune(r)
	p.state = stateXMLDeclAttrName
	return nil
}

func (p *Parser) stepXMLDeclAttrName(r rune) error {
	if isNameChar(r) {
		p.attrName.WriteRune(r)
		return nil
	}
	if isWhitespace(r) || r == '=' {
		if err := p.checkDeclAttrName(p.attrName.String()); err != nil {
			return err
		}
		if r == '=' {
			p.state = stateXMLDeclValueStart
			return nil
		}
		p.state = stateXMLDeclEq
		return nil
	}
	return newErrorf(InvalidXMLDecl, string(r), "malformed pseudo-attribute name")
}

func (p *Parser) checkDeclAttrName(name string) error {
	switch p.nextDeclAttr() {
	case xmlDeclAttrVersion:
		if name != "version" {
			return newErrorf(InvalidXMLDecl, name, "expected 'version' first")
		}
	case xmlDeclAttrEncoding:
		if name != "encoding" && name != "standalone" {
			return newErrorf(InvalidXMLDecl, name, "unknown pseudo-attribute")
		}
	case xmlDeclAttrStandalone:
		if name != "standalone" {
			return newErrorf(InvalidXMLDecl, name, "unknown or out-of-order pseudo-attribute")
		}
	default:
		return newErrorf(InvalidXMLDecl, name, "unexpected pseudo-attribute")
	}
	return nil
}

func (p *Parser) stepXMLDeclEq(r rune) error {
	if isWhitespace(r) {
		return nil
	}
	if r == '=' {
		p.state = stateXMLDeclValueStart
		return nil
	}
	return newErrorf(InvalidXMLDecl, string(r), "expected '='")
}

func (p *Parser) stepXMLDeclValueStart(r rune) error {
	if isWhitespace(r) {
		return nil
	}
	if r == '\'' || r == '"' {
		p.quote = r
		p.content.Reset()
		p.state = stateXMLDeclValue
		return nil
	}
	return newErrorf(InvalidXMLDecl, string(r), "expected a quoted value")
}

func (p *Parser) stepXMLDeclValue(r rune) error {
	if r == p.quote {
		if err := p.finishDeclAttr(p.attrName.String(), p.content.String()); err != nil {
			return err
		}
		p.state = stateXMLDeclAfterValueWS
		return nil
	}
	p.content.WriteRune(r)
	return nil
}

func (p *Parser) finishDeclAttr(name, value string) error {
	switch name {
	case "version":
		if !isValidXMLVersion(value) {
			return newErrorf(InvalidXMLDecl, value, "malformed version number")
		}
		p.xmlVersion = value
	case "encoding":
		if !isValidEncodingName(value) {
			return newErrorf(InvalidXMLDecl, value, "malformed encoding name")
		}
		p.xmlEncoding = strings.ToLower(value)
		p.xmlHasEncoding = true
	case "standalone":
		if value != "yes" && value != "no" {
			return newErrorf(InvalidXMLDecl, value, "standalone must be 'yes' or 'no'")
		}
		p.xmlStandalone = value == "yes"
		p.xmlHasStandalone = true
	}
	return nil
}

func (p *Parser) stepXMLDeclAfterValueWS(r rune) error {
	if isWhitespace(r) {
		p.state = stateXMLDeclBeforeWS
		return nil
	}
	if r == '?' {
		p.state = stateXMLDeclEnd
		return nil
	}
	return newErrorf(InvalidXMLDecl, string(r), "expected whitespace or '?>'")
}

func (p *Parser) stepXMLDeclEnd(r rune) error {
	if r != '>' {
		return newErrorf(InvalidXMLDecl, string(r), "expected '>' to close the declaration")
	}
	decl := Decl{
		Version:       p.xmlVersion,
		Encoding:      p.xmlEncoding,
		HasEncoding:   p.xmlHasEncoding,
		Standalone:    p.xmlStandalone,
		HasStandalone: p.xmlHasStandalone,
	}
	p.attrName.Reset()
	p.content.Reset()
	p.state = stateMisc
	return p.reader.XML(decl)
}

// isValidXMLVersion reports whether s matches "1.[0-9]".
func isValidXMLVersion(s string) bool {
	if len(s) != 3 {
		return false
	}
	return s[0] == '1' && s[1] == '.' && s[2] >= '0' && s[2] <= '9'
}

// isValidEncodingName reports whether s starts with an ASCII letter and
// continues with letters, digits, '.', '_', or '-'.
func isValidEncodingName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
		if i == 0 {
			if !isLetter {
				return false
			}
			continue
		}
		if isLetter || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			continue
		}
		return false
	}
	return true
}
