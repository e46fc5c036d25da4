package cpp

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

// Lexer reads raw tokens from one source buffer. No preprocessing is
// done, this is just pure reading of the unprocessed source file.
// Directives are announced with a DIRECTIVE token and terminated with
// an END_DIRECTIVE token.
type Lexer struct {
	src []byte
	// Offset at which lexing stops.
	limit     int
	pos       FilePos
	lastPos   FilePos
	markedPos FilePos
	lastChar  rune
	// At the beginning on line not including whitespace.
	bol bool
	// Set to true if we are currently reading a # directive line
	inDirective bool
	pending     []*Token
	done        bool

	err error
}

type breakout struct{}

// Lex creates a lexer over the contents of src.
// fname is used for error messages when showing the source location.
func Lex(fname string, src []byte) *Lexer {
	start := FilePos{File: fname, Line: 1, Col: 1}
	lx := newLexer(src, start, len(src))
	lx.bol = true
	return lx
}

func newLexer(src []byte, start FilePos, limit int) *Lexer {
	lx := new(Lexer)
	lx.src = src
	lx.limit = limit
	lx.pos = start
	lx.markedPos = start
	lx.lastPos = start
	return lx
}

// Next returns the next token. Once the input is exhausted an EOF
// token is returned forever.
func (lx *Lexer) Next() (*Token, error) {
	for len(lx.pending) == 0 {
		if lx.done {
			return &Token{Kind: EOF, Pos: lx.pos, End: lx.pos}, nil
		}
		lx.step()
	}
	tok := lx.pending[0]
	lx.pending = lx.pending[1:]
	if tok.Kind == ERROR {
		return tok, lx.err
	}
	return tok, nil
}

func (lx *Lexer) markPos() {
	lx.markedPos = lx.pos
}

func (lx *Lexer) sendTok(kind TokenKind, val string) {
	var tok Token
	tok.Kind = kind
	tok.Val = val
	tok.Pos = lx.markedPos
	tok.End = lx.pos
	switch kind {
	case END_DIRECTIVE:
		//Do nothing as this is a pseudo directive.
	default:
		lx.bol = false
	}
	lx.pending = append(lx.pending, &tok)
}

func (lx *Lexer) unreadRune() {
	lx.pos = lx.lastPos
	if lx.lastChar == '\n' {
		lx.bol = false
	}
}

// skipSplices steps over backslash newline pairs, which join physical
// lines before tokenization.
func (lx *Lexer) skipSplices() {
	for lx.pos.Offset < lx.limit && lx.src[lx.pos.Offset] == '\\' {
		n := lx.pos.Offset + 1
		if n < lx.limit && lx.src[n] == '\r' {
			n++
		}
		if n >= lx.limit || lx.src[n] != '\n' {
			return
		}
		lx.pos.Offset = n + 1
		lx.pos.Line += 1
		lx.pos.Col = 1
	}
}

func (lx *Lexer) readRune() (rune, bool) {
	lx.skipSplices()
	lx.lastPos = lx.pos
	if lx.pos.Offset >= lx.limit {
		lx.lastChar = 0
		return 0, true
	}
	r, size := utf8.DecodeRune(lx.src[lx.pos.Offset:lx.limit])
	lx.pos.Offset += size
	switch r {
	case '\n':
		lx.pos.Line += 1
		lx.pos.Col = 1
		lx.bol = true
	default:
		lx.pos.Col += size
	}
	lx.lastChar = r
	return r, false
}

func (lx *Lexer) peekRune() rune {
	r, eof := lx.readRune()
	if eof {
		return 0
	}
	lx.unreadRune()
	return r
}

func (lx *Lexer) Error(e string) {
	lx.err = ErrWithLoc(errors.New(e), lx.pos)
	lx.sendTok(ERROR, e)
	lx.done = true
	//recover exits the lexer cleanly
	panic(&breakout{})
}

// step lexes until at least one token is pending or input is exhausted.
func (lx *Lexer) step() {
	defer func() {
		if e := recover(); e != nil {
			_ = e.(*breakout) // Will re-panic if not a breakout.
		}
	}()
	for len(lx.pending) == 0 && !lx.done {
		lx.lexOne()
	}
}

func (lx *Lexer) lexOne() {
	first, eof := lx.readRune()
	lx.markedPos = lx.lastPos
	if eof {
		if lx.inDirective {
			lx.inDirective = false
			lx.sendTok(END_DIRECTIVE, "")
		}
		lx.sendTok(EOF, "")
		lx.done = true
		return
	}
	switch {
	case isAlpha(first) || first == '_':
		lx.unreadRune()
		lx.readIdentOrKeyword()
	case isNumeric(first):
		lx.unreadRune()
		lx.readConstantIntOrFloat(false)
	case isWhiteSpace(first):
		lx.unreadRune()
		lx.skipWhiteSpace()
	default:
		switch first {
		case '#':
			if lx.isAtLineStart() && !lx.inDirective {
				lx.readDirective()
			} else if lx.peekRune() == '#' {
				lx.readRune()
				lx.sendTok(HASHHASH, "##")
			} else {
				lx.sendTok(HASH, "#")
			}
		case '!':
			second, _ := lx.readRune()
			switch second {
			case '=':
				lx.sendTok(NEQ, "!=")
			default:
				lx.unreadRune()
				lx.sendTok(NOT, "!")
			}
		case '?':
			lx.sendTok(QUESTION, "?")
		case ':':
			second, _ := lx.readRune()
			switch second {
			case ':':
				lx.sendTok(SCOPE, "::")
			default:
				lx.unreadRune()
				lx.sendTok(COLON, ":")
			}
		case '\'':
			lx.unreadRune()
			lx.readCChar("")
		case '"':
			lx.unreadRune()
			lx.readCString("")
		case '(':
			lx.sendTok(LPAREN, "(")
		case ')':
			lx.sendTok(RPAREN, ")")
		case '{':
			lx.sendTok(LBRACE, "{")
		case '}':
			lx.sendTok(RBRACE, "}")
		case '[':
			lx.sendTok(LBRACK, "[")
		case ']':
			lx.sendTok(RBRACK, "]")
		case '<':
			second, _ := lx.readRune()
			switch second {
			case '<':
				if lx.peekRune() == '=' {
					lx.readRune()
					lx.sendTok(SHL_ASSIGN, "<<=")
				} else {
					lx.sendTok(SHL, "<<")
				}
			case '=':
				if lx.peekRune() == '>' {
					lx.readRune()
					lx.sendTok(SPACESHIP, "<=>")
				} else {
					lx.sendTok(LEQ, "<=")
				}
			default:
				lx.unreadRune()
				lx.sendTok(LSS, "<")
			}
		case '>':
			second, _ := lx.readRune()
			switch second {
			case '>':
				if lx.peekRune() == '=' {
					lx.readRune()
					lx.sendTok(SHR_ASSIGN, ">>=")
				} else {
					lx.sendTok(SHR, ">>")
				}
			case '=':
				lx.sendTok(GEQ, ">=")
			default:
				lx.unreadRune()
				lx.sendTok(GTR, ">")
			}
		case '+':
			second, _ := lx.readRune()
			switch second {
			case '+':
				lx.sendTok(INC, "++")
			case '=':
				lx.sendTok(ADD_ASSIGN, "+=")
			default:
				lx.unreadRune()
				lx.sendTok(ADD, "+")
			}
		case '.':
			afterPeriod := lx.pos
			second, _ := lx.readRune()
			switch {
			case isNumeric(second):
				lx.unreadRune()
				lx.readConstantIntOrFloat(true)
			case second == '.' && lx.peekRune() == '.':
				lx.readRune()
				lx.sendTok(ELLIPSIS, "...")
			default:
				lx.pos = afterPeriod
				lx.sendTok(PERIOD, ".")
			}
		case '~':
			lx.sendTok(BNOT, "~")
		case '^':
			second, _ := lx.readRune()
			switch second {
			case '=':
				lx.sendTok(XOR_ASSIGN, "^=")
			default:
				lx.unreadRune()
				lx.sendTok(XOR, "^")
			}
		case '-':
			second, _ := lx.readRune()
			switch second {
			case '>':
				lx.sendTok(ARROW, "->")
			case '-':
				lx.sendTok(DEC, "--")
			case '=':
				lx.sendTok(SUB_ASSIGN, "-=")
			default:
				lx.unreadRune()
				lx.sendTok(SUB, "-")
			}
		case ',':
			lx.sendTok(COMMA, ",")
		case '*':
			second, _ := lx.readRune()
			switch second {
			case '=':
				lx.sendTok(MUL_ASSIGN, "*=")
			default:
				lx.unreadRune()
				lx.sendTok(MUL, "*")
			}
		case '/':
			second, _ := lx.readRune()
			switch second {
			case '*':
				lx.skipBlockComment()
			case '/':
				for {
					c, eof := lx.readRune()
					if eof {
						break
					}
					if c == '\n' {
						//Unread so that the directive ends.
						lx.unreadRune()
						break
					}
				}
			case '=':
				lx.sendTok(QUO_ASSIGN, "/=")
			default:
				lx.unreadRune()
				lx.sendTok(QUO, "/")
			}
		case '%':
			second, _ := lx.readRune()
			switch second {
			case '=':
				lx.sendTok(REM_ASSIGN, "%=")
			default:
				lx.unreadRune()
				lx.sendTok(REM, "%")
			}
		case '|':
			second, _ := lx.readRune()
			switch second {
			case '|':
				lx.sendTok(LOR, "||")
			case '=':
				lx.sendTok(OR_ASSIGN, "|=")
			default:
				lx.unreadRune()
				lx.sendTok(OR, "|")
			}
		case '&':
			second, _ := lx.readRune()
			switch second {
			case '&':
				lx.sendTok(LAND, "&&")
			case '=':
				lx.sendTok(AND_ASSIGN, "&=")
			default:
				lx.unreadRune()
				lx.sendTok(AND, "&")
			}
		case '=':
			second, _ := lx.readRune()
			switch second {
			case '=':
				lx.sendTok(EQL, "==")
			default:
				lx.unreadRune()
				lx.sendTok(ASSIGN, "=")
			}
		case ';':
			lx.sendTok(SEMICOLON, ";")
		default:
			lx.sendTok(OTHER, string(first))
		}
	}
}

func (lx *Lexer) skipBlockComment() {
	for {
		c, eof := lx.readRune()
		if eof {
			lx.Error("unclosed comment.")
		}
		if c == '*' {
			closeBar, eof := lx.readRune()
			if eof {
				lx.Error("unclosed comment.")
			}
			if closeBar == '/' {
				return
			}
			//Unread so that we dont lose a closing star.
			lx.unreadRune()
		}
	}
}

func (lx *Lexer) readDirective() {
	hashPos := lx.markedPos
	lx.skipInlineSpace()
	lx.inDirective = true
	var buff bytes.Buffer
	lx.markPos()
	directiveChar, eof := lx.readRune()
	if eof || !isValidIdentStart(directiveChar) {
		//Null directive or a line marker, the driver skips it.
		if !eof {
			lx.unreadRune()
		}
		lx.markedPos = hashPos
		lx.sendTok(DIRECTIVE, "")
		lx.pending[len(lx.pending)-1].hash = hashPos
		return
	}
	lx.markedPos = lx.lastPos
	for isValidIdentTail(directiveChar) {
		buff.WriteRune(directiveChar)
		directiveChar, eof = lx.readRune()
		if eof {
			break
		}
	}
	if !eof {
		lx.unreadRune()
	}
	directive := buff.String()
	lx.sendTok(DIRECTIVE, directive)
	lx.pending[len(lx.pending)-1].hash = hashPos
	switch directive {
	case "include", "include_next", "import":
		lx.readHeaderInclude()
	case "define":
		lx.readDefine()
	default:
	}
}

func (lx *Lexer) readDefine() {
	lx.skipInlineSpace()
	if !isValidIdentStart(lx.peekRune()) {
		//No identifier after define, the driver reports it.
		return
	}
	lx.readIdentOrKeyword()
	//Distinguish between a funclike macro
	//and a regular macro.
	if lx.peekRune() == '(' {
		lx.markPos()
		lx.sendTok(FUNCLIKE_DEFINE, "")
	}
}

func (lx *Lexer) readHeaderInclude() {
	var buff bytes.Buffer
	lx.skipInlineSpace()
	lx.markPos()
	opening, eof := lx.readRune()
	if eof {
		return
	}
	var terminator rune
	if opening == '"' {
		terminator = '"'
	} else if opening == '<' {
		terminator = '>'
	} else {
		//Computed include, left to the driver.
		lx.unreadRune()
		return
	}
	lx.markedPos = lx.lastPos
	buff.WriteRune(opening)
	for {
		c, eof := lx.readRune()
		if eof {
			lx.Error("EOF encountered in header include.")
		}
		if c == '\n' {
			lx.Error("new line in header include.")
		}
		buff.WriteRune(c)
		if c == terminator {
			break
		}
	}
	lx.sendTok(HEADER, buff.String())
}

// isLiteralPrefix reports whether an identifier is an encoding prefix for
// a character or string literal, eg. L'a' or u8"x" or R"(raw)".
func isLiteralPrefix(s string) bool {
	switch s {
	case "L", "u", "U", "u8", "R", "LR", "uR", "UR", "u8R":
		return true
	}
	return false
}

func (lx *Lexer) readIdentOrKeyword() {
	var buff bytes.Buffer
	first, _ := lx.readRune()
	if !isValidIdentStart(first) {
		panic("internal error")
	}
	lx.markedPos = lx.lastPos
	buff.WriteRune(first)
	for {
		b, eof := lx.readRune()
		if !eof && isValidIdentTail(b) {
			buff.WriteRune(b)
			continue
		}
		if !eof {
			lx.unreadRune()
		}
		str := buff.String()
		if isLiteralPrefix(str) {
			switch {
			case b == '"' && str[len(str)-1] == 'R':
				lx.readRawString(str)
				return
			case b == '"':
				lx.readCString(str)
				return
			case b == '\'' && str[len(str)-1] != 'R':
				lx.readCChar(str)
				return
			}
		}
		tokType, ok := keywordLUT[str]
		if !ok {
			tokType = IDENT
		}
		lx.sendTok(tokType, str)
		return
	}
}

func (lx *Lexer) skipWhiteSpace() {
	for {
		r, eof := lx.readRune()
		if eof {
			return
		}
		if !isWhiteSpace(r) {
			lx.unreadRune()
			return
		}
		if r == '\n' {
			if lx.inDirective {
				lx.markedPos = lx.lastPos
				lx.sendTok(END_DIRECTIVE, "")
				lx.inDirective = false
				lx.bol = true
			}
		}
	}
}

// skipInlineSpace skips blanks without crossing a newline.
func (lx *Lexer) skipInlineSpace() {
	for {
		r, eof := lx.readRune()
		if eof {
			return
		}
		if r == '\n' || !isWhiteSpace(r) {
			lx.unreadRune()
			return
		}
	}
}

// readConstantIntOrFloat reads a preprocessing number. Any malformed
// suffix is kept in the spelling, the parser decides what it means.
// Due to the 1 character lookahead we need this bool.
func (lx *Lexer) readConstantIntOrFloat(startedWithPeriod bool) {
	var buff bytes.Buffer
	if startedWithPeriod {
		buff.WriteRune('.')
	}
	var prev rune
	for {
		r, eof := lx.readRune()
		if eof {
			break
		}
		switch {
		case isValidIdentTail(r) || r == '.':
		case (r == '+' || r == '-') && isExponentMarker(prev, buff.Bytes()):
		case r == '\'' && isHexDigit(prev) && isHexDigit(lx.peekRune()):
		default:
			lx.unreadRune()
			lx.sendTok(classifyNumber(buff.String()), buff.String())
			return
		}
		buff.WriteRune(r)
		prev = r
	}
	lx.sendTok(classifyNumber(buff.String()), buff.String())
}

func isExponentMarker(r rune, spelling []byte) bool {
	isHex := len(spelling) > 2 && spelling[0] == '0' && (spelling[1] == 'x' || spelling[1] == 'X')
	if isHex {
		return r == 'p' || r == 'P'
	}
	return r == 'e' || r == 'E' || r == 'p' || r == 'P'
}

func classifyNumber(s string) TokenKind {
	isHex := len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
	for _, c := range s {
		switch c {
		case '.':
			return FLOAT_CONSTANT
		case 'p', 'P':
			if isHex {
				return FLOAT_CONSTANT
			}
		case 'e', 'E':
			if !isHex {
				return FLOAT_CONSTANT
			}
		}
	}
	return INT_CONSTANT
}

func (lx *Lexer) readCString(prefix string) {
	lx.readQuoted(prefix, '"', STRING)
}

func (lx *Lexer) readCChar(prefix string) {
	lx.readQuoted(prefix, '\'', CHAR_CONSTANT)
}

// readQuoted reads a string or char literal. A literal cut off by the
// end of the line is sent as OTHER so that it never looks like a value.
func (lx *Lexer) readQuoted(prefix string, quote rune, kind TokenKind) {
	const (
		START = iota
		MID
		ESCAPED
		END
	)
	var buff bytes.Buffer
	buff.WriteString(prefix)
	state := START
	if prefix != "" {
		//markedPos already points at the prefix.
	} else {
		lx.markPos()
	}
	for state != END {
		r, eof := lx.readRune()
		if eof {
			lx.sendTok(OTHER, buff.String())
			return
		}
		switch state {
		case START:
			if r != quote {
				lx.Error("internal error")
			}
			buff.WriteRune(r)
			state = MID
		case MID:
			switch r {
			case '\\':
				state = ESCAPED
			case '\n':
				lx.unreadRune()
				lx.sendTok(OTHER, buff.String())
				return
			case quote:
				buff.WriteRune(r)
				state = END
			default:
				buff.WriteRune(r)
			}
		case ESCAPED:
			buff.WriteRune('\\')
			buff.WriteRune(r)
			state = MID
		}
	}
	lx.sendTok(kind, buff.String())
}

func (lx *Lexer) readRawString(prefix string) {
	var buff bytes.Buffer
	buff.WriteString(prefix)
	// Raw strings are not subject to line splicing, read the bytes directly.
	start := lx.pos.Offset
	end := bytes.IndexByte(lx.src[start:lx.limit], '(')
	if end < 0 {
		lx.Error("malformed raw string literal")
	}
	delim := ")" + string(lx.src[start+1:start+end]) + "\""
	closeAt := bytes.Index(lx.src[start+end:lx.limit], []byte(delim))
	if closeAt < 0 {
		lx.Error("unterminated raw string literal")
	}
	stop := start + end + closeAt + len(delim)
	for lx.pos.Offset < stop {
		c := lx.src[lx.pos.Offset]
		buff.WriteByte(c)
		lx.pos.Offset++
		if c == '\n' {
			lx.pos.Line++
			lx.pos.Col = 1
		} else {
			lx.pos.Col++
		}
	}
	lx.sendTok(STRING, buff.String())
}

func (lx *Lexer) isAtLineStart() bool {
	return lx.bol
}

func isValidIdentTail(b rune) bool {
	return isValidIdentStart(b) || isNumeric(b) || b == '$'
}

func isValidIdentStart(b rune) bool {
	return b == '_' || isAlpha(b)
}

func isAlpha(b rune) bool {
	if b >= 'a' && b <= 'z' {
		return true
	}
	if b >= 'A' && b <= 'Z' {
		return true
	}
	return false
}

func isWhiteSpace(b rune) bool {
	return b == ' ' || b == '\r' || b == '\n' || b == '\t' || b == '\f' || b == '\v'
}

func isNumeric(b rune) bool {
	if b >= '0' && b <= '9' {
		return true
	}
	return false
}

func isHexDigit(b rune) bool {
	return isNumeric(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
