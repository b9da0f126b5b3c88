package lexer

import (
	"fmt"
	"unicode"
)

type TokenType string

const (
	// Keywords
	TokenFn     TokenType = "FN"
	TokenIf     TokenType = "IF"
	TokenElse   TokenType = "ELSE"
	TokenReturn TokenType = "RETURN"
	TokenWhile  TokenType = "WHILE"

	// Literals
	TokenTrue   TokenType = "TRUE"
	TokenFalse  TokenType = "FALSE"
	TokenUndef  TokenType = "UNDEF"
	TokenIdent  TokenType = "IDENT"
	TokenGlobal TokenType = "GLOBAL" // $name
	TokenString TokenType = "STRING"
	TokenNumber TokenType = "NUMBER"

	// Symbols
	TokenLParen      TokenType = "("
	TokenRParen      TokenType = ")"
	TokenLBrace      TokenType = "{"
	TokenRBrace      TokenType = "}"
	TokenLBracket    TokenType = "["
	TokenRBracket    TokenType = "]"
	TokenPlus        TokenType = "+"
	TokenMinus       TokenType = "-"
	TokenStar        TokenType = "*"
	TokenSlash       TokenType = "/"
	TokenPercent     TokenType = "%"
	TokenTilde       TokenType = "~"
	TokenEqual       TokenType = "="
	TokenDoubleEqual TokenType = "=="
	TokenNotEqual    TokenType = "!="
	TokenLT          TokenType = "<"
	TokenGT          TokenType = ">"
	TokenLE          TokenType = "<="
	TokenGE          TokenType = ">="
	TokenAnd         TokenType = "&&"
	TokenOr          TokenType = "||"
	TokenNot         TokenType = "!"
	TokenComma       TokenType = ","
	TokenColon       TokenType = ":"
	TokenSemicolon   TokenType = ";"
	TokenError       TokenType = "ERROR"
	TokenEOF         TokenType = "EOF"
)

type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
}

func (t Token) String() string {
	return fmt.Sprintf("[%s] '%s'", t.Type, t.Lexeme)
}

type Scanner struct {
	source  string
	tokens  []Token
	start   int
	current int
	line    int
}

func NewScanner(source string) *Scanner {
	return &Scanner{
		source: source,
		line:   1,
	}
}

func (s *Scanner) ScanTokens() []Token {
	// Handle shebang at the beginning of the file
	if s.current == 0 && len(s.source) >= 2 && s.source[0] == '#' && s.source[1] == '!' {
		s.skipShebang()
	}

	for !s.isAtEnd() {
		s.skipSpace()
		s.start = s.current
		if s.isAtEnd() {
			break
		}
		s.scanToken()
	}
	s.tokens = append(s.tokens, Token{Type: TokenEOF, Lexeme: "", Line: s.line})
	return s.tokens
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(TokenLParen)
	case ')':
		s.addToken(TokenRParen)
	case '{':
		s.addToken(TokenLBrace)
	case '}':
		s.addToken(TokenRBrace)
	case '[':
		s.addToken(TokenLBracket)
	case ']':
		s.addToken(TokenRBracket)
	case '+':
		s.addToken(TokenPlus)
	case '-':
		s.addToken(TokenMinus)
	case '*':
		s.addToken(TokenStar)
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else {
			s.addToken(TokenSlash)
		}
	case '%':
		s.addToken(TokenPercent)
	case '~':
		s.addToken(TokenTilde)
	case '=':
		if s.match('=') {
			s.addToken(TokenDoubleEqual)
		} else {
			s.addToken(TokenEqual)
		}
	case '!':
		if s.match('=') {
			s.addToken(TokenNotEqual)
		} else {
			s.addToken(TokenNot)
		}
	case '<':
		if s.match('=') {
			s.addToken(TokenLE)
		} else {
			s.addToken(TokenLT)
		}
	case '>':
		if s.match('=') {
			s.addToken(TokenGE)
		} else {
			s.addToken(TokenGT)
		}
	case ':':
		s.addToken(TokenColon)
	case '"':
		s.string()
	case ',':
		s.addToken(TokenComma)
	case ';':
		s.addToken(TokenSemicolon)
	case '&':
		if s.match('&') {
			s.addToken(TokenAnd)
		} else {
			s.addToken(TokenError)
		}
	case '|':
		if s.match('|') {
			s.addToken(TokenOr)
		} else {
			s.addToken(TokenError)
		}
	case '$':
		s.global()
	case '\n':
		s.line++
	case ' ', '\r', '\t':
		// Ignore whitespace
	default:
		if isDigit(c) {
			s.number()
		} else if isAlpha(c) {
			s.identifier()
		} else {
			// Unknown byte. Keep it as an error token so the parser
			// reports it instead of the program silently changing meaning.
			s.addToken(TokenError)
		}
	}
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	switch text {
	case "fn":
		s.addToken(TokenFn)
	case "if":
		s.addToken(TokenIf)
	case "else":
		s.addToken(TokenElse)
	case "return":
		s.addToken(TokenReturn)
	case "while":
		s.addToken(TokenWhile)
	case "true":
		s.addToken(TokenTrue)
	case "false":
		s.addToken(TokenFalse)
	case "undef":
		s.addToken(TokenUndef)
	default:
		s.addToken(TokenIdent)
	}
}

// global scans a $name variable. The lexeme keeps the sigil.
func (s *Scanner) global() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	s.addToken(TokenGlobal)
}

func (s *Scanner) number() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	if s.peek() == 'e' || s.peek() == 'E' {
		save := s.current
		s.advance()
		if s.peek() == '+' || s.peek() == '-' {
			s.advance()
		}
		if isDigit(s.peek()) {
			for isDigit(s.peek()) {
				s.advance()
			}
		} else {
			s.current = save
		}
	}
	s.tokens = append(s.tokens, Token{Type: TokenNumber, Lexeme: s.source[s.start:s.current], Line: s.line})
}

func (s *Scanner) string() {
	var out []byte
	for s.peek() != '"' && !s.isAtEnd() {
		c := s.advance()
		if c == '\n' {
			s.line++
		}
		if c == '\\' && !s.isAtEnd() {
			switch e := s.advance(); e {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '0':
				out = append(out, 0)
			case '\\', '"':
				out = append(out, e)
			default:
				out = append(out, '\\', e)
			}
			continue
		}
		out = append(out, c)
	}
	if s.isAtEnd() {
		return // Unterminated string; the parser reports the missing token
	}
	s.advance()
	s.tokens = append(s.tokens, Token{Type: TokenString, Lexeme: string(out), Line: s.line})
}

func (s *Scanner) addToken(t TokenType) {
	text := s.source[s.start:s.current]
	s.tokens = append(s.tokens, Token{Type: t, Lexeme: text, Line: s.line})
}

func (s *Scanner) advance() byte {
	s.current++
	return s.source[s.current-1]
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return '\000'
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return '\000'
	}
	return s.source[s.current+1]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) skipSpace() {
	for !s.isAtEnd() && unicode.IsSpace(rune(s.peek())) {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
}

func isAlpha(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || unicode.IsDigit(rune(c))
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// skipShebang skips over a shebang line at the beginning of the file
func (s *Scanner) skipShebang() {
	for !s.isAtEnd() && s.peek() != '\n' {
		s.advance()
	}
	if !s.isAtEnd() && s.peek() == '\n' {
		s.line++
		s.advance()
	}
}
