// Copyright © 2018 The ELPS authors

package token

import "fmt"

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek should return a value to indicate the lack of a token (EOF).
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

type Token struct {
	Type   Type
	Text   string
	Source *Location
}

func (tok *Token) String() string {
	if tok.Type == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Text)
}

type Type uint

// Type constants used by the lexer and parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	COMMENT

	// Identifiers & literals
	LIDENT // initial lowercase: values, methods, packages
	UIDENT // initial uppercase: types
	NATURAL
	FLOAT
	STRING
	CHAR
	QUOTED

	keywordStart
	IMPORT
	MODULE
	CLASS
	INTERFACE
	EXTENDS
	SATISFIES
	VOID
	VALUE
	FUNCTION
	ASSIGN_KW
	RETURN
	IF
	ELSE
	WHILE
	FOR
	FAIL
	BREAK
	CONTINUE
	IN
	OUT
	IS
	EXISTS
	NONEMPTY
	THIS
	OUTER
	SUPER
	keywordEnd

	// Delimiters
	PAREN_L
	PAREN_R
	BRACE_L
	BRACE_R
	BRACKET_L
	BRACKET_R
	COMMA
	SEMICOLON
	SPECIFY  // =
	COMPUTE  // =>
	ELLIPSIS // ...

	// Member selection
	MEMBER      // .
	SAFE_MEMBER // ?.
	SPREAD      // *.
	SAFE_INDEX  // ?[

	// Operators
	QUESTION // ? (optional type suffix)
	DEFAULT  // ?:
	RANGE    // ..
	ENTRY    // ->
	PLUS
	MINUS
	TIMES
	DIVIDE
	REMAINDER
	POWER
	INCREMENT
	DECREMENT
	NOT
	AND
	OR
	INTERSECT  // &
	UNION      // |
	XOR        // ^
	COMPLEMENT // ~
	FORMAT     // $
	EQUAL
	NOT_EQUAL
	IDENTICAL
	SMALLER
	LARGER
	SMALL_AS
	LARGE_AS
	COMPARE

	// Assignment
	ASSIGN
	ADD_ASSIGN
	SUBTRACT_ASSIGN
	MULTIPLY_ASSIGN
	DIVIDE_ASSIGN
	REMAINDER_ASSIGN
	AND_ASSIGN
	OR_ASSIGN
	INTERSECT_ASSIGN
	UNION_ASSIGN
	XOR_ASSIGN
	COMPLEMENT_ASSIGN

	numTokenTypes
)

var typeStrings = [numTokenTypes]string{
	INVALID:           "invalid",
	ERROR:             "error",
	EOF:               "EOF",
	COMMENT:           "comment",
	LIDENT:            "identifier",
	UIDENT:            "type-identifier",
	NATURAL:           "integer",
	FLOAT:             "float",
	STRING:            "string",
	CHAR:              "character",
	QUOTED:            "quoted",
	keywordStart:      "<keywords>",
	IMPORT:            "import",
	MODULE:            "module",
	CLASS:             "class",
	INTERFACE:         "interface",
	EXTENDS:           "extends",
	SATISFIES:         "satisfies",
	VOID:              "void",
	VALUE:             "value",
	FUNCTION:          "function",
	ASSIGN_KW:         "assign",
	RETURN:            "return",
	IF:                "if",
	ELSE:              "else",
	WHILE:             "while",
	FOR:               "for",
	FAIL:              "fail",
	BREAK:             "break",
	CONTINUE:          "continue",
	IN:                "in",
	OUT:               "out",
	IS:                "is",
	EXISTS:            "exists",
	NONEMPTY:          "nonempty",
	THIS:              "this",
	OUTER:             "outer",
	SUPER:             "super",
	keywordEnd:        "</keywords>",
	PAREN_L:           "(",
	PAREN_R:           ")",
	BRACE_L:           "{",
	BRACE_R:           "}",
	BRACKET_L:         "[",
	BRACKET_R:         "]",
	COMMA:             ",",
	SEMICOLON:         ";",
	SPECIFY:           "=",
	COMPUTE:           "=>",
	ELLIPSIS:          "...",
	MEMBER:            ".",
	SAFE_MEMBER:       "?.",
	SPREAD:            "*.",
	SAFE_INDEX:        "?[",
	QUESTION:          "?",
	DEFAULT:           "?:",
	RANGE:             "..",
	ENTRY:             "->",
	PLUS:              "+",
	MINUS:             "-",
	TIMES:             "*",
	DIVIDE:            "/",
	REMAINDER:         "%",
	POWER:             "**",
	INCREMENT:         "++",
	DECREMENT:         "--",
	NOT:               "!",
	AND:               "&&",
	OR:                "||",
	INTERSECT:         "&",
	UNION:             "|",
	XOR:               "^",
	COMPLEMENT:        "~",
	FORMAT:            "$",
	EQUAL:             "==",
	NOT_EQUAL:         "!=",
	IDENTICAL:         "===",
	SMALLER:           "<",
	LARGER:            ">",
	SMALL_AS:          "<=",
	LARGE_AS:          ">=",
	COMPARE:           "<=>",
	ASSIGN:            ":=",
	ADD_ASSIGN:        "+=",
	SUBTRACT_ASSIGN:   "-=",
	MULTIPLY_ASSIGN:   "*=",
	DIVIDE_ASSIGN:     "/=",
	REMAINDER_ASSIGN:  "%=",
	AND_ASSIGN:        "&&=",
	OR_ASSIGN:         "||=",
	INTERSECT_ASSIGN:  "&=",
	UNION_ASSIGN:      "|=",
	XOR_ASSIGN:        "^=",
	COMPLEMENT_ASSIGN: "~=",
}

func (typ Type) String() string {
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// IsKeyword reports whether typ is a reserved word.
func (typ Type) IsKeyword() bool {
	return keywordStart < typ && typ < keywordEnd
}

var keywords map[string]Type

func init() {
	keywords = make(map[string]Type, keywordEnd-keywordStart)
	for typ := keywordStart + 1; typ < keywordEnd; typ++ {
		keywords[typeStrings[typ]] = typ
	}
}

// Keyword returns the keyword type for word, or false if word is an
// ordinary identifier.
func Keyword(word string) (Type, bool) {
	typ, ok := keywords[word]
	return typ, ok
}

type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc == nil:
		return "<unknown>"
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

// Before reports whether loc precedes other in the same stream.
func (loc *Location) Before(other *Location) bool {
	if loc.Line != other.Line {
		return loc.Line < other.Line
	}
	return loc.Col < other.Col
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
