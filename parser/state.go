package parser

// state is the primary state of the incremental parser, modeled as a
// large enumerated switch with many small per-state helpers rather than a
// recursive-descent grammar. We keep that shape (one Go file per
// construct group, one case per state in the step dispatch in parser.go)
// since Go's own idiom favors small numeric constants plus a switch over a
// sum type here.
type state int

const (
	stateInit state = iota // before any input: may still be an XML declaration

	// XML declaration
	stateXMLDeclBeforeWS // '<?xml' consumed, mandatory whitespace expected
	stateXMLDeclAttrName
	stateXMLDeclEq
	stateXMLDeclValueStart
	stateXMLDeclValue
	stateXMLDeclAfterValueWS
	stateXMLDeclEnd // expect '?>'

	stateMisc // inter-content region: only S, Comment, PI permitted

	// DOCTYPE
	stateDoctypeBeforeName
	stateDoctypeName
	stateDoctypeAfterName
	stateDoctypeExternalIDKeyword
	stateDoctypeExternalIDBeforeQuote
	stateDoctypeExternalIDValue
	stateDoctypeBeforeSubsetOrEnd
	stateDoctypeSubset
	stateDoctypeSubsetQuoted
	stateDoctypeAfterSubset

	// Processing instructions
	stateBangOrPI // after '<?', expecting the target name's first character
	statePITarget
	statePIBeforeContent
	statePIContent
	statePIEnd // saw '?', expect '>'

	// Comments
	stateCommentOpen // after '<!-', expecting the second '-'
	stateCommentBody
	stateCommentHyphen  // saw one '-'
	stateCommentHyphen2 // saw "--", expect '>'

	// Post-'<' disambiguation
	stateLT     // just consumed '<'
	stateLTBang // just consumed '<!', matching "--", "[CDATA[", or "DOCTYPE"

	// Start tag
	stateTagName
	stateTagAfterName
	stateTagAttrName
	stateTagAttrAfterName
	stateTagAttrEq
	stateTagAttrValueStart
	stateTagAttrValue
	stateTagSelfCloseSlash

	// End tag
	stateEndTagName
	stateEndTagAfterName

	stateText

	// Reference sub-state-machine
	stateReference // just consumed '&'
	stateCharRefStart
	stateCharRefDec
	stateCharRefHex
	stateEntityName

	// CDATA
	stateCDATAOpen // after '<![', matching "CDATA["
	stateCDATABody
	stateCDATABracket1
	stateCDATABracket2
)

// refHost records which accumulator a completed reference (predefined,
// character, or named) should be appended to, and what to do with a named,
// non-predefined reference once the '&name;' is fully read.
type refHost int

const (
	refHostText refHost = iota
	refHostAttrValue
)
