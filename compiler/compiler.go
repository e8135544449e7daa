// Package compiler lowers a parsed line's ast.Stmt sequence to a flat
// bytecode.Instruction vector, per spec.md §4.3's stack discipline: the
// left operand is evaluated first and pushed deeper, the right operand is
// evaluated second and pushed on top; consumers pop right, then left.
//
// Grounded on informatter-nilan/compiler/ast_compiler.go's visitor-driven
// emission and its "pre-reserve capacity proportional to node count"
// convention, retargeted from a general-purpose AST to YOLOL's statement
// grammar and jump-offset arithmetic.
package compiler

import (
	"yolol/ast"
	"yolol/bytecode"
	"yolol/value"
)

// estimatedNodesPerStmt is a rough multiplier used to pre-size the
// instruction vector, mirroring NewASTCompiler's capacity pre-reservation
// so the steady-state compile path does as few slice growths as possible.
const estimatedNodesPerStmt = 6

// CompileLine lowers one line's statements to a flat instruction vector.
// A line that failed to parse is a single ast.ErrorStmt, which compiles to
// nothing. It returns an InternalError for a pre/post inc/dec whose operand
// is not a Variable, which the parser does not reject.
func CompileLine(stmts []ast.Stmt) ([]bytecode.Instruction, error) {
	c := &compiler{ins: make([]bytecode.Instruction, 0, len(stmts)*estimatedNodesPerStmt)}
	for _, s := range stmts {
		if err := c.compileStmt(s); err != nil {
			return nil, err
		}
	}
	return c.ins, nil
}

type compiler struct {
	ins []bytecode.Instruction
}

func (c *compiler) emit(i bytecode.Instruction) { c.ins = append(c.ins, i) }

func (c *compiler) compileStmt(s ast.Stmt) error {
	switch st := s.(type) {
	case ast.AssignStmt:
		return c.compileAssign(st)
	case ast.IfStmt:
		return c.compileIf(st)
	case ast.GotoStmt:
		if err := c.compileExpr(st.Target); err != nil {
			return err
		}
		c.emit(bytecode.Simple(bytecode.Goto))
		return nil
	case ast.ExprStmt:
		return c.compileExpr(st.Expression)
	case ast.CommentStmt, ast.EmptyStmt, ast.ErrorStmt:
		return nil
	default:
		return InternalError{Message: "unknown statement kind"}
	}
}

var assignOpInstr = map[ast.AssignOp]bytecode.Op{
	ast.AssignAdd: bytecode.Add,
	ast.AssignSub: bytecode.Sub,
	ast.AssignMul: bytecode.Mul,
	ast.AssignDiv: bytecode.Div,
	ast.AssignMod: bytecode.Mod,
	ast.AssignExp: bytecode.Exp,
}

// compileAssign lowers `v = E` directly (emit(E); Store(idx)) and the six
// compound forms as `v = v op E`: Push(idx) supplies the left operand so
// non-commutative ops (Sub, Div, Mod, Exp) land on the correct side — the
// invariant in spec.md §8 ("the executed effect equals v = v op E") takes
// precedence over a literal left-to-right reading of §4.3's compound bullet,
// which would instead compute E op v.
func (c *compiler) compileAssign(st ast.AssignStmt) error {
	if st.Op == ast.Assign {
		if err := c.compileExpr(st.Value); err != nil {
			return err
		}
		c.emit(bytecode.WithIndex(bytecode.Store, st.Target.Index))
		return nil
	}
	op, ok := assignOpInstr[st.Op]
	if !ok {
		return InternalError{Message: "unknown compound assignment operator"}
	}
	c.emit(bytecode.WithIndex(bytecode.Push, st.Target.Index))
	if err := c.compileExpr(st.Value); err != nil {
		return err
	}
	c.emit(bytecode.Simple(op))
	c.emit(bytecode.WithIndex(bytecode.Store, st.Target.Index))
	return nil
}

// compileIf lowers if/then[/else]/end using forward relative jumps, per
// spec.md §4.3: JumpFalse(len(Sₜ)) with no else, JumpFalse(len(Sₜ)+1) plus a
// trailing Jump(len(Sₑ)) with one.
func (c *compiler) compileIf(st ast.IfStmt) error {
	if err := c.compileExpr(st.Cond); err != nil {
		return err
	}
	thenIns, err := CompileLine(st.Then)
	if err != nil {
		return err
	}
	if st.Else == nil {
		c.emit(bytecode.WithRel(bytecode.JumpFalse, len(thenIns)))
		c.ins = append(c.ins, thenIns...)
		return nil
	}
	elseIns, err := CompileLine(st.Else)
	if err != nil {
		return err
	}
	c.emit(bytecode.WithRel(bytecode.JumpFalse, len(thenIns)+1))
	c.ins = append(c.ins, thenIns...)
	c.emit(bytecode.WithRel(bytecode.Jump, len(elseIns)))
	c.ins = append(c.ins, elseIns...)
	return nil
}

var binaryOpInstr = map[ast.BinaryOp]bytecode.Op{
	ast.OpAnd: bytecode.And,
	ast.OpOr:  bytecode.Or,
	ast.OpAdd: bytecode.Add,
	ast.OpSub: bytecode.Sub,
	ast.OpEq:  bytecode.Eq,
	ast.OpNe:  bytecode.Ne,
	ast.OpLt:  bytecode.Lt,
	ast.OpGt:  bytecode.Gt,
	ast.OpLte: bytecode.Lte,
	ast.OpGte: bytecode.Gte,
	ast.OpMul: bytecode.Mul,
	ast.OpDiv: bytecode.Div,
	ast.OpMod: bytecode.Mod,
	ast.OpExp: bytecode.Exp,
}

var unaryOpInstr = map[ast.UnaryOp]bytecode.Op{
	ast.OpNot:  bytecode.Not,
	ast.OpAbs:  bytecode.Abs,
	ast.OpSqrt: bytecode.Sqrt,
	ast.OpSin:  bytecode.Sin,
	ast.OpCos:  bytecode.Cos,
	ast.OpTan:  bytecode.Tan,
	ast.OpAsin: bytecode.Asin,
	ast.OpAcos: bytecode.Acos,
	ast.OpAtan: bytecode.Atan,
	ast.OpFac:  bytecode.Fac,
}

func (c *compiler) compileExpr(e ast.Expression) error {
	switch ex := e.(type) {
	case ast.Literal:
		v, ok := ex.Value.(value.Value)
		if !ok {
			return InternalError{Message: "literal node did not carry a value.Value"}
		}
		c.emit(bytecode.WithValue(bytecode.PushValue, v))
		return nil
	case ast.Variable:
		c.emit(bytecode.WithIndex(bytecode.Push, ex.Index))
		return nil
	case ast.Binary:
		return c.compileBinary(ex)
	case ast.Unary:
		return c.compileUnary(ex)
	default:
		return InternalError{Message: "unknown expression kind"}
	}
}

func (c *compiler) compileBinary(b ast.Binary) error {
	if err := c.compileExpr(b.Left); err != nil {
		return err
	}
	if err := c.compileExpr(b.Right); err != nil {
		return err
	}
	op, ok := binaryOpInstr[b.Op]
	if !ok {
		return InternalError{Message: "unknown binary operator"}
	}
	c.emit(bytecode.Simple(op))
	return nil
}

func (c *compiler) compileUnary(u ast.Unary) error {
	switch u.Op {
	case ast.OpNeg:
		if err := c.compileExpr(u.Operand); err != nil {
			return err
		}
		c.emit(bytecode.WithValue(bytecode.PushValue, value.Number(-value.Scale)))
		c.emit(bytecode.Simple(bytecode.Mul))
		return nil
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		return c.compileIncDec(u)
	default:
		if err := c.compileExpr(u.Operand); err != nil {
			return err
		}
		op, ok := unaryOpInstr[u.Op]
		if !ok {
			return InternalError{Message: "unknown unary operator"}
		}
		c.emit(bytecode.Simple(op))
		return nil
	}
}

// compileIncDec lowers the four pre/post inc/dec forms. The operand must be
// a Variable; any other operand yields an InternalError. Pre forms store
// and return the new value; post forms store the new value but leave the
// old value as the expression result.
func (c *compiler) compileIncDec(u ast.Unary) error {
	v, ok := u.Operand.(ast.Variable)
	if !ok {
		return InternalError{Message: "inc/dec operand is not a variable"}
	}
	step := bytecode.Inc
	if u.Op == ast.OpPreDec || u.Op == ast.OpPostDec {
		step = bytecode.Dec
	}
	c.emit(bytecode.WithIndex(bytecode.Push, v.Index))
	switch u.Op {
	case ast.OpPreInc, ast.OpPreDec:
		c.emit(bytecode.Simple(step))
		c.emit(bytecode.Simple(bytecode.Dup))
	case ast.OpPostInc, ast.OpPostDec:
		c.emit(bytecode.Simple(bytecode.Dup))
		c.emit(bytecode.Simple(step))
	}
	c.emit(bytecode.WithIndex(bytecode.Store, v.Index))
	return nil
}
