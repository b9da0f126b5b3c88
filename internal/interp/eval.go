package interp

import (
	"petra/internal/cell"
	"petra/internal/errors"
	"petra/internal/parser"
)

// Stringify renders a cell with the runtime's native string coercion.
func (in *Interp) Stringify(c *cell.Cell) string { return cell.Stringify(c) }

// execStmt runs one statement. v is the statement's value (owned, only
// for expression statements), ret is non-nil when a return unwinds
// (owned cells, possibly zero of them).
func (in *Interp) execStmt(s parser.Stmt, fr *frame) (v *cell.Cell, ret []*cell.Cell, err error) {
	switch st := s.(type) {
	case *parser.ExprStmt:
		c, err := in.evalExpr(st.E, fr)
		return c, nil, err

	case *parser.AssignStmt:
		c, err := in.evalExpr(st.Value, fr)
		if err != nil {
			return nil, nil, err
		}
		in.DefineGlobal(st.Name, c)
		return nil, nil, nil

	case *parser.FnStmt:
		code := in.rt.Code(&userFn{name: st.Name, params: st.Params, body: st.Body}, st.Name)
		in.DefineFn(st.Name, code)
		return nil, nil, nil

	case *parser.ReturnStmt:
		rets := make([]*cell.Cell, 0, len(st.Values))
		for _, e := range st.Values {
			c, err := in.evalExpr(e, fr)
			if err != nil {
				for _, r := range rets {
					in.rt.Decref(r)
				}
				return nil, nil, err
			}
			rets = append(rets, c)
		}
		return nil, rets, nil

	case *parser.IfStmt:
		cond, err := in.evalExpr(st.Cond, fr)
		if err != nil {
			return nil, nil, err
		}
		truthy := cell.Truth(cond)
		in.rt.Decref(cond)
		branch := st.Then
		if !truthy {
			branch = st.Else
		}
		return in.execBlock(branch, fr)

	case *parser.WhileStmt:
		for {
			cond, err := in.evalExpr(st.Cond, fr)
			if err != nil {
				return nil, nil, err
			}
			truthy := cell.Truth(cond)
			in.rt.Decref(cond)
			if !truthy {
				return nil, nil, nil
			}
			if _, ret, err := in.execBlock(st.Body, fr); err != nil || ret != nil {
				return nil, ret, err
			}
		}
	}
	return nil, nil, errors.New(errors.InterpreterError, "unknown statement")
}

func (in *Interp) execBlock(stmts []parser.Stmt, fr *frame) (*cell.Cell, []*cell.Cell, error) {
	for _, s := range stmts {
		v, ret, err := in.execStmt(s, fr)
		if v != nil {
			in.rt.Decref(v)
		}
		if err != nil || ret != nil {
			return nil, ret, err
		}
	}
	return nil, nil, nil
}

// evalExpr evaluates an expression to an owned cell.
func (in *Interp) evalExpr(e parser.Expr, fr *frame) (*cell.Cell, error) {
	switch ex := e.(type) {
	case *parser.Literal:
		return in.literal(ex.Value), nil

	case *parser.Global:
		if c, ok := in.globals[ex.Name]; ok {
			in.rt.Incref(c)
			return c, nil
		}
		return in.rt.Undef(), nil

	case *parser.Name:
		if fr != nil {
			if c, ok := fr.locals[ex.Ident]; ok {
				in.rt.Incref(c)
				return c, nil
			}
		}
		return nil, errors.Newf(errors.InterpreterError, "undefined name %s", ex.Ident)

	case *parser.Unary:
		return in.evalUnary(ex, fr)

	case *parser.Binary:
		return in.evalBinary(ex, fr)

	case *parser.Logical:
		left, err := in.evalExpr(ex.Left, fr)
		if err != nil {
			return nil, err
		}
		truthy := cell.Truth(left)
		if (ex.Operator == "&&" && !truthy) || (ex.Operator == "||" && truthy) {
			return left, nil
		}
		in.rt.Decref(left)
		return in.evalExpr(ex.Right, fr)

	case *parser.Call:
		return in.evalCall(ex, fr)

	case *parser.ArrayLit:
		arr := in.rt.Array()
		for i, el := range ex.Elements {
			c, err := in.evalExpr(el, fr)
			if err != nil {
				in.rt.Decref(arr)
				return nil, err
			}
			in.rt.ArrayStore(arr, i, c)
		}
		ref := in.rt.Ref(arr)
		in.rt.Decref(arr)
		return ref, nil

	case *parser.HashLit:
		h := in.rt.Hash()
		for i := range ex.Keys {
			k, err := in.evalExpr(ex.Keys[i], fr)
			if err != nil {
				in.rt.Decref(h)
				return nil, err
			}
			key := cell.Stringify(k)
			in.rt.Decref(k)
			v, err := in.evalExpr(ex.Values[i], fr)
			if err != nil {
				in.rt.Decref(h)
				return nil, err
			}
			in.rt.HashStore(h, key, v)
		}
		ref := in.rt.Ref(h)
		in.rt.Decref(h)
		return ref, nil

	case *parser.Index:
		return in.evalIndex(ex, fr)
	}
	return nil, errors.New(errors.InterpreterError, "unknown expression")
}

func (in *Interp) literal(v any) *cell.Cell {
	switch val := v.(type) {
	case int64:
		return in.rt.Int(val)
	case float64:
		return in.rt.Float(val)
	case string:
		return in.rt.Str(val)
	case bool:
		if val {
			return in.rt.Int(1)
		}
		return in.rt.Int(0)
	}
	return in.rt.Undef()
}

func (in *Interp) evalUnary(ex *parser.Unary, fr *frame) (*cell.Cell, error) {
	c, err := in.evalExpr(ex.Operand, fr)
	if err != nil {
		return nil, err
	}
	defer in.rt.Decref(c)
	switch ex.Operator {
	case "!":
		if cell.Truth(c) {
			return in.rt.Int(0), nil
		}
		return in.rt.Int(1), nil
	case "-":
		i, f, isF := cell.Numify(c)
		if isF {
			return in.rt.Float(-f), nil
		}
		return in.rt.Int(-i), nil
	}
	return nil, errors.Newf(errors.InterpreterError, "unknown unary operator %s", ex.Operator)
}

func (in *Interp) evalBinary(ex *parser.Binary, fr *frame) (*cell.Cell, error) {
	a, err := in.evalExpr(ex.Left, fr)
	if err != nil {
		return nil, err
	}
	b, err := in.evalExpr(ex.Right, fr)
	if err != nil {
		in.rt.Decref(a)
		return nil, err
	}
	defer in.rt.Decref(a)
	defer in.rt.Decref(b)

	if ex.Operator == "~" {
		return in.rt.Str(cell.Stringify(a) + cell.Stringify(b)), nil
	}

	ai, af, aF := cell.Numify(a)
	bi, bf, bF := cell.Numify(b)
	fa, fb := af, bf
	if !aF {
		fa = float64(ai)
	}
	if !bF {
		fb = float64(bi)
	}
	bothInt := !aF && !bF

	switch ex.Operator {
	case "+":
		if bothInt {
			return in.rt.Int(ai + bi), nil
		}
		return in.rt.Float(fa + fb), nil
	case "-":
		if bothInt {
			return in.rt.Int(ai - bi), nil
		}
		return in.rt.Float(fa - fb), nil
	case "*":
		if bothInt {
			return in.rt.Int(ai * bi), nil
		}
		return in.rt.Float(fa * fb), nil
	case "/":
		if fb == 0 {
			return nil, errors.New(errors.InterpreterError, "illegal division by zero")
		}
		if bothInt && ai%bi == 0 {
			return in.rt.Int(ai / bi), nil
		}
		return in.rt.Float(fa / fb), nil
	case "%":
		ib := bi
		if bF {
			ib = cell.TruncInt(fb)
		}
		if ib == 0 {
			return nil, errors.New(errors.InterpreterError, "illegal modulus zero")
		}
		ia := ai
		if aF {
			ia = cell.TruncInt(fa)
		}
		return in.rt.Int(ia % ib), nil
	case "==", "!=", "<", ">", "<=", ">=":
		return in.rt.Int(boolInt(compare(a, b, fa, fb, ex.Operator))), nil
	}
	return nil, errors.Newf(errors.InterpreterError, "unknown operator %s", ex.Operator)
}

func compare(a, b *cell.Cell, fa, fb float64, op string) bool {
	// String-to-string comparison is lexical; everything else numeric.
	if a.Tag() == cell.TagStr && b.Tag() == cell.TagStr {
		sa, sb := string(a.StrVal()), string(b.StrVal())
		switch op {
		case "==":
			return sa == sb
		case "!=":
			return sa != sb
		case "<":
			return sa < sb
		case ">":
			return sa > sb
		case "<=":
			return sa <= sb
		case ">=":
			return sa >= sb
		}
	}
	switch op {
	case "==":
		return fa == fb
	case "!=":
		return fa != fb
	case "<":
		return fa < fb
	case ">":
		return fa > fb
	case "<=":
		return fa <= fb
	case ">=":
		return fa >= fb
	}
	return false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (in *Interp) evalCall(ex *parser.Call, fr *frame) (*cell.Cell, error) {
	args := make([]*cell.Cell, 0, len(ex.Args))
	release := func() {
		for _, a := range args {
			in.rt.Decref(a)
		}
	}
	for _, ae := range ex.Args {
		c, err := in.evalExpr(ae, fr)
		if err != nil {
			release()
			return nil, err
		}
		args = append(args, c)
	}
	rets, err := in.CallNamed(ex.Name, args)
	release()
	if err != nil {
		return nil, err
	}
	first := firstOrNil(in.rt, rets)
	if first == nil {
		first = in.rt.Undef()
	}
	return first, nil
}

func (in *Interp) evalIndex(ex *parser.Index, fr *frame) (*cell.Cell, error) {
	obj, err := in.evalExpr(ex.Object, fr)
	if err != nil {
		return nil, err
	}
	defer in.rt.Decref(obj)

	target := obj
	if target.Tag() == cell.TagRef {
		target = target.Target()
	}

	key, err := in.evalExpr(ex.Key, fr)
	if err != nil {
		return nil, err
	}
	defer in.rt.Decref(key)

	switch target.Tag() {
	case cell.TagArray:
		i, f, isF := cell.Numify(key)
		if isF {
			i = cell.TruncInt(f)
		}
		if got := in.rt.ArrayFetch(target, int(i)); got != nil {
			in.rt.Incref(got)
			return got, nil
		}
		return in.rt.Undef(), nil
	case cell.TagHash:
		if got := in.rt.HashFetch(target, cell.Stringify(key)); got != nil {
			in.rt.Incref(got)
			return got, nil
		}
		return in.rt.Undef(), nil
	}
	return nil, errors.Newf(errors.InterpreterError, "cannot index %s value", target.Tag())
}
