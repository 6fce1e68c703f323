package parser

import "fmt"

// Code is a stable discriminant for a well-formedness violation. Hosts
// should switch on Code rather than match error text.
type Code string

// Error codes raised by the core state machine. The decode package defines
// its own two codes (EncodingNotSupported, EncodingInvalidData) using the
// same Error type so callers have a single error surface to inspect.
const (
	InvalidXMLDecl        Code = "INVALID_XML_DECL"
	InvalidDoctypeDecl    Code = "INVALID_DOCTYPE_DECL"
	InvalidComment        Code = "INVALID_COMMENT"
	ReservedPI            Code = "RESERVED_PI"
	InvalidPI             Code = "INVALID_PI"
	InvalidEntityRef      Code = "INVALID_ENTITY_REF"
	UnresolvedEntity      Code = "UNRESOLVED_ENTITY"
	InvalidCharRef        Code = "INVALID_CHAR_REF"
	InvalidStartTag       Code = "INVALID_START_TAG"
	InvalidAttributeValue Code = "INVALID_ATTRIBUTE_VALUE"
	DuplicateAttr         Code = "DUPLICATE_ATTR"
	InvalidEndTag         Code = "INVALID_END_TAG"
	InvalidChar           Code = "INVALID_CHAR"
	InvalidCDEnd          Code = "INVALID_CDEND"
	InvalidCDATA          Code = "INVALID_CDATA"
	UnexpectedEOF         Code = "UNEXPECTED_EOF"
)

// Error is the tagged error value raised by the parser: public fields
// plus Unwrap, like encoding/xml.SyntaxError, but carrying a stable Code
// instead of relying on message matching, and an optional free-form Info
// payload (entity name, offending scalar, encoding label) for diagnosis.
type Error struct {
	Code Code
	Msg  string
	Info string
	Err  error
}

func (e *Error) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Msg, e.Info)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func newErrorf(code Code, info string, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Info: info}
}

// IsParserError reports whether err is (or wraps) a *parser.Error, letting
// hosts distinguish core well-formedness failures from arbitrary errors
// raised by their own Reader callbacks.
func IsParserError(err error) (*Error, bool) {
	var perr *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			perr = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if perr == nil {
		return nil, false
	}
	return perr, true
}
