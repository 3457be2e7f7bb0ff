package tree

import (
	. "github.com/duna-lang/duna/common"
	"github.com/duna-lang/duna/source"
)

// The unchecked syntax tree handed to the checker by the parser.
// Nodes are immutable once produced; every node carries its span.

type Node interface {
	Span() source.Span
}

type NodeBase struct {
	Sp source.Span
}

func (n NodeBase) Span() source.Span { return n.Sp }

// ========================

type BinaryOp int

const (
	BinaryOpAdd BinaryOp = iota
	BinaryOpSub
	BinaryOpMul
	BinaryOpDiv

	BinaryOpGt
	BinaryOpLt
	BinaryOpGte
	BinaryOpLte
	BinaryOpEq

	BinaryOpAndAnd
	BinaryOpOrOr

	BinaryOpAssign
)

func (op BinaryOp) String() string {
	switch op {
	case BinaryOpAdd:
		return "+"
	case BinaryOpSub:
		return "-"
	case BinaryOpMul:
		return "*"
	case BinaryOpDiv:
		return "/"
	case BinaryOpGt:
		return ">"
	case BinaryOpLt:
		return "<"
	case BinaryOpGte:
		return ">="
	case BinaryOpLte:
		return "<="
	case BinaryOpEq:
		return "=="
	case BinaryOpAndAnd:
		return "&&"
	case BinaryOpOrOr:
		return "||"
	case BinaryOpAssign:
		return "="
	default:
		panic("unreachable")
	}
}

type UnaryOp int

const (
	UnaryOpNot UnaryOp = iota
	UnaryOpNegate
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryOpNot:
		return "!"
	case UnaryOpNegate:
		return "-"
	default:
		panic("unreachable")
	}
}

// PermissionOp converts a place into a value under a permission discipline.
type PermissionOp int

const (
	// PermissionOpGive moves the value out of the place.
	PermissionOpGive PermissionOp = iota
	// PermissionOpMutate takes an exclusive lease on the place.
	PermissionOpMutate
	// PermissionOpRef takes a shared reference to the place.
	PermissionOpRef
)

func (op PermissionOp) String() string {
	switch op {
	case PermissionOpGive:
		return "give"
	case PermissionOpMutate:
		return "mutate"
	case PermissionOpRef:
		return "ref"
	default:
		panic("unreachable")
	}
}

type LiteralKind int

const (
	LiteralInteger LiteralKind = iota
	LiteralString
	LiteralBoolean
)

// ========================

type Expr interface {
	Node
	_Expr()
}

type ExprBase struct {
	NodeBase
}

func (ExprBase) _Expr() {}

type LiteralExpr struct {
	ExprBase
	Kind LiteralKind
	Text string
}

type TupleExpr struct {
	ExprBase
	Elems []Expr
}

type BinaryExpr struct {
	ExprBase
	Op     BinaryOp
	OpSpan source.Span
	Left   Expr
	Right  Expr
}

type UnaryExpr struct {
	ExprBase
	Op      UnaryOp
	OpSpan  source.Span
	Operand Expr
}

type NameExpr struct {
	ExprBase
	Id Identifier
}

// DotExpr is member access, `owner.id`.
type DotExpr struct {
	ExprBase
	Owner  Expr
	Id     Identifier
	IdSpan source.Span
}

// SquareExpr is `owner[args...]`: explicit generic arguments for a pending
// method call, or generic application of a name resolution.
type SquareExpr struct {
	ExprBase
	Owner Expr
	Args  []GenericTerm
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

type ReturnExpr struct {
	ExprBase
	Value Expr // nil for bare `return`
}

type AwaitExpr struct {
	ExprBase
	Value     Expr
	AwaitSpan source.Span
}

// IfExpr covers both if/else chains and match-style arm lists.
// An arm with a nil condition is the `else` arm.
type IfExpr struct {
	ExprBase
	Arms []*IfArm
}

type IfArm struct {
	Condition Expr // nil = else
	Body      Expr
}

type PermExpr struct {
	ExprBase
	Op    PermissionOp
	Value Expr
}

type BlockExpr struct {
	ExprBase
	Block *Block
}

// ========================

type Block struct {
	NodeBase
	Statements []Stmt
}

type Stmt interface {
	Node
	_Stmt()
}

type StmtBase struct {
	NodeBase
}

func (StmtBase) _Stmt() {}

type LetStmt struct {
	StmtBase
	Name        Identifier
	NameSpan    source.Span
	Type        Type // nil = inferred
	Initializer Expr // nil = uninitialized
}

type ExprStmt struct {
	StmtBase
	Expr Expr
}
