package parser

type Expr interface{ expr() }

// Literal expression: number, string, true/false, undef
type Literal struct {
	Value any // int64, float64, string, bool, or nil for undef
}

// Global variable expression: $x
type Global struct {
	Name string // without the sigil
}

// Binary expression: a + b, a ~ b, a == b
type Binary struct {
	Left     Expr
	Operator string
	Right    Expr
}

// Logical expression: a && b, a || b (short-circuiting)
type Logical struct {
	Left     Expr
	Operator string
	Right    Expr
}

// Unary expression: !x, -x
type Unary struct {
	Operator string
	Operand  Expr
}

// Name expression: a bare identifier, resolved against call-frame locals
type Name struct {
	Ident string
	Line  int
}

// Call expression: name(args...)
type Call struct {
	Name string
	Args []Expr
	Line int
}

// Array literal: [1, 2, 3]
type ArrayLit struct {
	Elements []Expr
}

// Hash literal: {"key": value, ...}
type HashLit struct {
	Keys   []Expr
	Values []Expr
}

// Index expression: e[i]
type Index struct {
	Object Expr
	Key    Expr
	Line   int
}

func (*Literal) expr()  {}
func (*Global) expr()   {}
func (*Name) expr()     {}
func (*Binary) expr()   {}
func (*Logical) expr()  {}
func (*Unary) expr()    {}
func (*Call) expr()     {}
func (*ArrayLit) expr() {}
func (*HashLit) expr()  {}
func (*Index) expr()    {}

type Stmt interface{ stmt() }

// Expression statement
type ExprStmt struct {
	E Expr
}

// Assignment statement: $x = e
type AssignStmt struct {
	Name  string
	Value Expr
}

// Function definition: fn name(a, b) { ... }
type FnStmt struct {
	Name   string
	Params []string
	Body   []Stmt
	Line   int
}

// Return statement; Values empty means return undef
type ReturnStmt struct {
	Values []Expr
}

// If statement with optional else branch
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While loop
type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

func (*ExprStmt) stmt()   {}
func (*AssignStmt) stmt() {}
func (*FnStmt) stmt()     {}
func (*ReturnStmt) stmt() {}
func (*IfStmt) stmt()     {}
func (*WhileStmt) stmt()  {}
