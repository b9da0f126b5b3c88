// internal/parser/parser.go
package parser

import (
	"strconv"
	"strings"

	"petra/internal/errors"
	"petra/internal/lexer"
)

type Parser struct {
	tokens  []lexer.Token
	current int
	file    string
}

func NewParser(tokens []lexer.Token, file string) *Parser {
	return &Parser{
		tokens: tokens,
		file:   file,
	}
}

// ParseSource scans and parses a complete source fragment.
func ParseSource(src, file string) ([]Stmt, error) {
	tokens := lexer.NewScanner(src).ScanTokens()
	return NewParser(tokens, file).Parse()
}

func (p *Parser) Parse() (stmts []Stmt, err error) {
	defer p.catch(&err)
	for !p.isAtEnd() {
		stmts = append(stmts, p.statement())
	}
	return stmts, nil
}

// Parse errors unwind through parseErr; Parse converts them back to a
// plain error return at the boundary.
type parseErr struct{ err error }

func (p *Parser) catch(out *error) {
	if r := recover(); r != nil {
		pe, ok := r.(parseErr)
		if !ok {
			panic(r)
		}
		*out = pe.err
	}
}

func (p *Parser) fail(msg string) {
	tok := p.peek()
	panic(parseErr{errors.NewSyntax(msg, p.file, tok.Line, 0)})
}

func (p *Parser) statement() Stmt {
	switch {
	case p.match(lexer.TokenFn):
		return p.function()
	case p.match(lexer.TokenReturn):
		return p.returnStatement()
	case p.match(lexer.TokenIf):
		return p.ifStatement()
	case p.match(lexer.TokenWhile):
		return p.whileStatement()
	}

	// $x = expr is an assignment statement; a lone expression otherwise.
	if p.check(lexer.TokenGlobal) && p.checkNext(lexer.TokenEqual) {
		name := strings.TrimPrefix(p.advance().Lexeme, "$")
		p.advance() // '='
		value := p.expression()
		p.match(lexer.TokenSemicolon)
		return &AssignStmt{Name: name, Value: value}
	}

	e := p.expression()
	p.match(lexer.TokenSemicolon)
	return &ExprStmt{E: e}
}

func (p *Parser) function() Stmt {
	name := p.consume(lexer.TokenIdent, "expected function name after 'fn'")
	p.consume(lexer.TokenLParen, "expected '(' after function name")
	var params []string
	if !p.check(lexer.TokenRParen) {
		for {
			param := p.consume(lexer.TokenIdent, "expected parameter name")
			params = append(params, param.Lexeme)
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.consume(lexer.TokenRParen, "expected ')' after parameters")
	body := p.block()
	return &FnStmt{Name: name.Lexeme, Params: params, Body: body, Line: name.Line}
}

func (p *Parser) returnStatement() Stmt {
	var values []Expr
	if !p.check(lexer.TokenSemicolon) && !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		values = append(values, p.expression())
		for p.match(lexer.TokenComma) {
			values = append(values, p.expression())
		}
	}
	p.match(lexer.TokenSemicolon)
	return &ReturnStmt{Values: values}
}

func (p *Parser) ifStatement() Stmt {
	cond := p.expression()
	then := p.block()
	var alt []Stmt
	if p.match(lexer.TokenElse) {
		if p.match(lexer.TokenIf) {
			alt = []Stmt{p.ifStatement()}
		} else {
			alt = p.block()
		}
	}
	return &IfStmt{Cond: cond, Then: then, Else: alt}
}

func (p *Parser) whileStatement() Stmt {
	cond := p.expression()
	body := p.block()
	return &WhileStmt{Cond: cond, Body: body}
}

func (p *Parser) block() []Stmt {
	p.consume(lexer.TokenLBrace, "expected '{'")
	var stmts []Stmt
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		stmts = append(stmts, p.statement())
	}
	p.consume(lexer.TokenRBrace, "expected '}'")
	return stmts
}

func (p *Parser) expression() Expr {
	return p.or()
}

func (p *Parser) or() Expr {
	left := p.and()
	for p.match(lexer.TokenOr) {
		right := p.and()
		left = &Logical{Left: left, Operator: "||", Right: right}
	}
	return left
}

func (p *Parser) and() Expr {
	left := p.equality()
	for p.match(lexer.TokenAnd) {
		right := p.equality()
		left = &Logical{Left: left, Operator: "&&", Right: right}
	}
	return left
}

func (p *Parser) equality() Expr {
	left := p.comparison()
	for p.check(lexer.TokenDoubleEqual) || p.check(lexer.TokenNotEqual) {
		op := p.advance().Lexeme
		right := p.comparison()
		left = &Binary{Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) comparison() Expr {
	left := p.additive()
	for p.check(lexer.TokenLT) || p.check(lexer.TokenGT) ||
		p.check(lexer.TokenLE) || p.check(lexer.TokenGE) {
		op := p.advance().Lexeme
		right := p.additive()
		left = &Binary{Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) additive() Expr {
	left := p.multiplicative()
	for p.check(lexer.TokenPlus) || p.check(lexer.TokenMinus) || p.check(lexer.TokenTilde) {
		op := p.advance().Lexeme
		right := p.multiplicative()
		left = &Binary{Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) multiplicative() Expr {
	left := p.unary()
	for p.check(lexer.TokenStar) || p.check(lexer.TokenSlash) || p.check(lexer.TokenPercent) {
		op := p.advance().Lexeme
		right := p.unary()
		left = &Binary{Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) unary() Expr {
	if p.check(lexer.TokenNot) || p.check(lexer.TokenMinus) {
		op := p.advance().Lexeme
		operand := p.unary()
		return &Unary{Operator: op, Operand: operand}
	}
	return p.postfix()
}

func (p *Parser) postfix() Expr {
	e := p.primary()
	for p.check(lexer.TokenLBracket) {
		line := p.advance().Line
		key := p.expression()
		p.consume(lexer.TokenRBracket, "expected ']' after index")
		e = &Index{Object: e, Key: key, Line: line}
	}
	return e
}

func (p *Parser) primary() Expr {
	switch {
	case p.match(lexer.TokenTrue):
		return &Literal{Value: true}
	case p.match(lexer.TokenFalse):
		return &Literal{Value: false}
	case p.match(lexer.TokenUndef):
		return &Literal{Value: nil}
	case p.check(lexer.TokenNumber):
		return p.numberLiteral()
	case p.check(lexer.TokenString):
		return &Literal{Value: p.advance().Lexeme}
	case p.check(lexer.TokenGlobal):
		return &Global{Name: strings.TrimPrefix(p.advance().Lexeme, "$")}
	case p.check(lexer.TokenIdent):
		return p.callOrName()
	case p.match(lexer.TokenLParen):
		e := p.expression()
		p.consume(lexer.TokenRParen, "expected ')' after expression")
		return e
	case p.match(lexer.TokenLBracket):
		return p.arrayLiteral()
	case p.match(lexer.TokenLBrace):
		return p.hashLiteral()
	}
	if p.check(lexer.TokenError) {
		p.fail("unexpected character '" + p.peek().Lexeme + "'")
	}
	p.fail("unexpected token " + string(p.peek().Type))
	return nil
}

func (p *Parser) numberLiteral() Expr {
	tok := p.advance()
	if strings.ContainsAny(tok.Lexeme, ".eE") {
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.fail("invalid number literal " + tok.Lexeme)
		}
		return &Literal{Value: f}
	}
	i, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(tok.Lexeme, 64)
		if ferr != nil {
			p.fail("invalid number literal " + tok.Lexeme)
		}
		return &Literal{Value: f}
	}
	return &Literal{Value: i}
}

func (p *Parser) callOrName() Expr {
	tok := p.advance()
	if p.match(lexer.TokenLParen) {
		var args []Expr
		if !p.check(lexer.TokenRParen) {
			for {
				args = append(args, p.expression())
				if !p.match(lexer.TokenComma) {
					break
				}
			}
		}
		p.consume(lexer.TokenRParen, "expected ')' after arguments")
		return &Call{Name: tok.Lexeme, Args: args, Line: tok.Line}
	}
	return &Name{Ident: tok.Lexeme, Line: tok.Line}
}

func (p *Parser) arrayLiteral() Expr {
	var elems []Expr
	if !p.check(lexer.TokenRBracket) {
		for {
			elems = append(elems, p.expression())
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.consume(lexer.TokenRBracket, "expected ']' after array elements")
	return &ArrayLit{Elements: elems}
}

func (p *Parser) hashLiteral() Expr {
	var keys, values []Expr
	if !p.check(lexer.TokenRBrace) {
		for {
			keys = append(keys, p.expression())
			p.consume(lexer.TokenColon, "expected ':' after hash key")
			values = append(values, p.expression())
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.consume(lexer.TokenRBrace, "expected '}' after hash entries")
	return &HashLit{Keys: keys, Values: values}
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) checkNext(t lexer.TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == t
}

func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.fail(msg)
	return lexer.Token{}
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}
