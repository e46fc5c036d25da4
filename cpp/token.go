package cpp

import (
	"fmt"
)

// The list of tokens.
const (

	// Single char tokens are themselves.
	ADD       = '+'
	SUB       = '-'
	MUL       = '*'
	QUO       = '/'
	REM       = '%'
	AND       = '&'
	OR        = '|'
	XOR       = '^'
	QUESTION  = '?'
	HASH      = '#'
	LSS       = '<'
	GTR       = '>'
	ASSIGN    = '='
	NOT       = '!'
	BNOT      = '~'
	LPAREN    = '('
	LBRACK    = '['
	LBRACE    = '{'
	COMMA     = ','
	PERIOD    = '.'
	RPAREN    = ')'
	RBRACK    = ']'
	RBRACE    = '}'
	SEMICOLON = ';'
	COLON     = ':'

	ERROR = 10000 + iota
	EOF
	//some cpp only tokens
	FUNCLIKE_DEFINE //Occurs after ident before paren #define ident(
	DIRECTIVE       //#if #include etc
	END_DIRECTIVE   //New line at the end of a directive
	HEADER
	OTHER // Any character that starts no other token.
	// Identifiers and basic type literals
	// (these tokens stand for classes of literals)
	IDENT          // main
	INT_CONSTANT   // 12345
	FLOAT_CONSTANT // 123.45
	CHAR_CONSTANT  // 'a'
	STRING         // "abc"

	SHL        // <<
	SHR        // >>
	ADD_ASSIGN // +=
	SUB_ASSIGN // -=
	MUL_ASSIGN // *=
	QUO_ASSIGN // /=
	REM_ASSIGN // %=
	AND_ASSIGN // &=
	OR_ASSIGN  // |=
	XOR_ASSIGN // ^=
	SHL_ASSIGN // <<=
	SHR_ASSIGN // >>=
	LAND       // &&
	LOR        // ||
	ARROW      // ->
	INC        // ++
	DEC        // --
	EQL        // ==
	NEQ        // !=
	LEQ        // <=
	GEQ        // >=
	SPACESHIP  // <=>
	ELLIPSIS   // ...
	HASHHASH   // ##
	SCOPE      // ::

	// Keywords
	REGISTER
	EXTERN
	STATIC
	SHORT
	BREAK
	CASE
	DO
	CONST
	CONTINUE
	DEFAULT
	ELSE
	ENUM
	FOR
	WHILE
	GOTO
	IF
	RETURN
	STRUCT
	UNION
	VOLATILE
	SWITCH
	TYPEDEF
	SIZEOF
	VOID
	CHAR
	INT
	FLOAT
	DOUBLE
	SIGNED
	UNSIGNED
	LONG
)

var tokenKindToStr = [...]string{
	HASH:            "'#'",
	ERROR:           "error",
	EOF:             "EOF",
	FUNCLIKE_DEFINE: "funclikedefine",
	DIRECTIVE:       "cppdirective",
	END_DIRECTIVE:   "enddirective",
	HEADER:          "header",
	OTHER:           "other",
	CHAR_CONSTANT:   "charconst",
	INT_CONSTANT:    "intconst",
	FLOAT_CONSTANT:  "floatconst",
	IDENT:           "ident",
	VOID:            "void",
	INT:             "int",
	LONG:            "long",
	SHORT:           "short",
	SIGNED:          "signed",
	UNSIGNED:        "unsigned",
	FLOAT:           "float",
	DOUBLE:          "double",
	CHAR:            "char",
	STRING:          "string",
	ADD:             "'+'",
	SUB:             "'-'",
	MUL:             "'*'",
	QUO:             "'/'",
	REM:             "'%'",
	AND:             "'&'",
	OR:              "'|'",
	XOR:             "'^'",
	SHL:             "'<<'",
	SHR:             "'>>'",
	ADD_ASSIGN:      "'+='",
	SUB_ASSIGN:      "'-='",
	MUL_ASSIGN:      "'*='",
	QUO_ASSIGN:      "'/='",
	REM_ASSIGN:      "'%='",
	AND_ASSIGN:      "'&='",
	OR_ASSIGN:       "'|='",
	XOR_ASSIGN:      "'^='",
	SHL_ASSIGN:      "'<<='",
	SHR_ASSIGN:      "'>>='",
	LAND:            "'&&'",
	LOR:             "'||'",
	ARROW:           "'->'",
	INC:             "'++'",
	DEC:             "'--'",
	EQL:             "'=='",
	LSS:             "'<'",
	GTR:             "'>'",
	ASSIGN:          "'='",
	NOT:             "'!'",
	BNOT:            "'~'",
	NEQ:             "'!='",
	LEQ:             "'<='",
	GEQ:             "'>='",
	SPACESHIP:       "'<=>'",
	ELLIPSIS:        "'...'",
	HASHHASH:        "'##'",
	SCOPE:           "'::'",
	LPAREN:          "'('",
	LBRACK:          "'['",
	LBRACE:          "'{'",
	COMMA:           "','",
	PERIOD:          "'.'",
	RPAREN:          "')'",
	RBRACK:          "']'",
	RBRACE:          "'}'",
	SEMICOLON:       "';'",
	COLON:           "':'",
	QUESTION:        "'?'",
	SIZEOF:          "sizeof",
	TYPEDEF:         "typedef",
	BREAK:           "break",
	CASE:            "case",
	CONST:           "const",
	CONTINUE:        "continue",
	DEFAULT:         "default",
	ELSE:            "else",
	ENUM:            "enum",
	FOR:             "for",
	DO:              "do",
	WHILE:           "while",
	GOTO:            "goto",
	IF:              "if",
	RETURN:          "return",
	STRUCT:          "struct",
	UNION:           "union",
	SWITCH:          "switch",
	STATIC:          "static",
	EXTERN:          "extern",
	REGISTER:        "register",
	VOLATILE:        "volatile",
}

var keywordLUT = map[string]TokenKind{
	"for":      FOR,
	"while":    WHILE,
	"do":       DO,
	"if":       IF,
	"else":     ELSE,
	"goto":     GOTO,
	"break":    BREAK,
	"continue": CONTINUE,
	"case":     CASE,
	"default":  DEFAULT,
	"switch":   SWITCH,
	"struct":   STRUCT,
	"union":    UNION,
	"enum":     ENUM,
	"signed":   SIGNED,
	"unsigned": UNSIGNED,
	"typedef":  TYPEDEF,
	"return":   RETURN,
	"void":     VOID,
	"char":     CHAR,
	"int":      INT,
	"short":    SHORT,
	"long":     LONG,
	"float":    FLOAT,
	"double":   DOUBLE,
	"sizeof":   SIZEOF,
	"static":   STATIC,
	"extern":   EXTERN,
	"register": REGISTER,
	"volatile": VOLATILE,
	"const":    CONST,
}

type TokenKind uint32

func (tk TokenKind) String() string {
	if uint32(tk) >= uint32(len(tokenKindToStr)) {
		return "Unknown"
	}
	ret := tokenKindToStr[tk]
	if ret == "" {
		return "Unknown"
	}
	return ret
}

// IsKeyword reports whether tk is one of the C keywords.
func (tk TokenKind) IsKeyword() bool {
	return tk >= REGISTER && tk <= LONG
}

// FilePos is a location in a source file. Line and Col are 1 based and
// count bytes, Offset is the 0 based byte offset into the file.
type FilePos struct {
	File   string
	Line   int
	Col    int
	Offset int
}

func (pos FilePos) String() string {
	return fmt.Sprintf("%s:%d:%d", pos.File, pos.Line, pos.Col)
}

// IsValid reports whether the position was ever set.
func (pos FilePos) IsValid() bool {
	return pos.Line > 0
}

// Before orders positions of the same file.
func (pos FilePos) Before(other FilePos) bool {
	return pos.Offset < other.Offset
}

// Range is a half open byte range [Begin, End) in one file.
type Range struct {
	Begin FilePos
	End   FilePos
}

func (r Range) String() string {
	return fmt.Sprintf("<%s, %d:%d>", r.Begin, r.End.Line, r.End.Col)
}

// Empty reports whether the range covers no bytes.
func (r Range) Empty() bool {
	return r.Begin.Offset >= r.End.Offset
}

// Contains reports whether pos lies in r, treating End as inclusive the way
// declaration ranges are compared against directive locations.
func (r Range) Contains(pos FilePos) bool {
	if pos.File != r.Begin.File {
		return false
	}
	return pos.Offset >= r.Begin.Offset && pos.Offset <= r.End.Offset
}

//Token represents a grouping of characters
//that provide semantic meaning in a C program.
type Token struct {
	Kind TokenKind
	Val  string
	Pos  FilePos
	// End is the position just past the last character of the token.
	End FilePos
	// Position of the introducing '#' of a DIRECTIVE token.
	hash FilePos
}

// HashPos returns the location of the '#' that introduced a directive.
func (t *Token) HashPos() FilePos {
	if t.Kind != DIRECTIVE {
		return t.Pos
	}
	return t.hash
}

// Range returns the source range spelled by the token.
func (t *Token) Range() Range {
	return Range{Begin: t.Pos, End: t.End}
}

// IsIdent reports whether the token can name a macro. Keywords can.
func (t *Token) IsIdent() bool {
	return t.Kind == IDENT || t.Kind.IsKeyword()
}

// IsLiteral reports whether the token is a numeric, character or string literal.
func (t *Token) IsLiteral() bool {
	switch t.Kind {
	case INT_CONSTANT, FLOAT_CONSTANT, CHAR_CONSTANT, STRING:
		return true
	}
	return false
}

func (t Token) String() string {
	return fmt.Sprintf("%s at %s", t.Val, t.Pos)
}
