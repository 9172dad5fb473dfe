// Package astjson decodes a JSON-encoded program tree into internal/ast
// nodes. It exists only because this repo's lexer and parser are an
// external collaborator out of scope (spec §1): cmd/lacewing needs some
// concrete, parseable input format to drive the compiler end to end, and
// a small tagged-union JSON tree is the simplest one that doesn't
// pretend to be a real lacewing source-text grammar.
package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/lacewing-lang/lacewing/internal/ast"
)

// node is the wire shape of one AST node: Kind selects which fields
// apply, the rest are optional depending on Kind.
type node struct {
	Kind string `json:"kind"`

	// Literal
	Bool   bool    `json:"bool,omitempty"`
	Int    int32   `json:"int,omitempty"`
	Real   float64 `json:"real,omitempty"`
	String string  `json:"string,omitempty"`

	// Identifier / Let / Set / binding name
	Name string `json:"name,omitempty"`

	// BinOp / UnaryOp
	Op  string `json:"op,omitempty"`
	Lhs *node  `json:"lhs,omitempty"`
	Rhs *node  `json:"rhs,omitempty"`
	Arg *node  `json:"arg,omitempty"`

	// Call
	Fn   *node  `json:"fn,omitempty"`
	Args []node `json:"args,omitempty"`

	// Function
	Params []string `json:"params,omitempty"`
	Body   []node   `json:"body,omitempty"`

	// ExprStat / Let / Set / Log / Return
	Expr *node `json:"expr,omitempty"`

	// Cond
	Branches []branch `json:"branches,omitempty"`

	// While
	Cond *node `json:"cond,omitempty"`

	Line uint32 `json:"line,omitempty"`
}

type branch struct {
	Cond *node  `json:"cond,omitempty"`
	Body []node `json:"body,omitempty"`
}

// DecodeBlock parses data as a JSON-encoded top-level statement list.
func DecodeBlock(data []byte) (ast.Block, error) {
	var nodes []node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("astjson: %w", err)
	}
	return toBlock(nodes)
}

func toBlock(nodes []node) (ast.Block, error) {
	block := make(ast.Block, 0, len(nodes))
	for _, n := range nodes {
		stat, err := toStat(n)
		if err != nil {
			return nil, err
		}
		block = append(block, stat)
	}
	return block, nil
}

func toStat(n node) (ast.Stat, error) {
	pos := ast.Pos{SourceLine: n.Line}
	switch n.Kind {
	case "exprstat":
		e, err := toExpr(*n.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStat{Pos: pos, Expr: e}, nil

	case "let":
		e, err := toExpr(*n.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Let{Pos: pos, Name: n.Name, Expr: e}, nil

	case "set":
		e, err := toExpr(*n.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Set{Pos: pos, Name: n.Name, Expr: e}, nil

	case "log":
		e, err := toExpr(*n.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Log{Pos: pos, Expr: e}, nil

	case "return":
		e, err := toExpr(*n.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Return{Pos: pos, Expr: e}, nil

	case "if":
		branches := make([]ast.CondBranch, 0, len(n.Branches))
		for _, b := range n.Branches {
			body, err := toBlock(b.Body)
			if err != nil {
				return nil, err
			}
			var cond ast.Expr
			if b.Cond != nil {
				cond, err = toExpr(*b.Cond)
				if err != nil {
					return nil, err
				}
			}
			branches = append(branches, ast.CondBranch{Cond: cond, Body: body})
		}
		return &ast.Cond{Pos: pos, Branches: branches}, nil

	case "while":
		cond, err := toExpr(*n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := toBlock(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.While{Pos: pos, Cond: cond, Body: body}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown statement kind %q", n.Kind)
	}
}

var binOps = map[string]ast.BinOperator{
	"+": ast.OpPlus, "-": ast.OpMinus, "*": ast.OpTimes, "/": ast.OpDivides,
	"%": ast.OpModulo, "**": ast.OpPower, "<=": ast.OpLEq, ">=": ast.OpGEq,
	"<": ast.OpLess, ">": ast.OpGreater, "==": ast.OpEqual, "!=": ast.OpNEq,
	"&&": ast.OpAnd, "||": ast.OpOr,
}

var unaryOps = map[string]ast.UnaryOperator{
	"!": ast.OpNot, "-": ast.OpNeg,
}

func toExpr(n node) (ast.Expr, error) {
	pos := ast.Pos{SourceLine: n.Line}
	switch n.Kind {
	case "nil":
		return &ast.Literal{Pos: pos, Kind: ast.LitNil}, nil
	case "bool":
		return &ast.Literal{Pos: pos, Kind: ast.LitBool, Bool: n.Bool}, nil
	case "int":
		return &ast.Literal{Pos: pos, Kind: ast.LitInt, Int: n.Int}, nil
	case "real":
		return &ast.Literal{Pos: pos, Kind: ast.LitReal, Real: n.Real}, nil
	case "string":
		return &ast.Literal{Pos: pos, Kind: ast.LitString, Str: n.String}, nil

	case "id":
		return &ast.Identifier{Pos: pos, Name: n.Name}, nil

	case "bin":
		op, ok := binOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("astjson: unknown binary operator %q", n.Op)
		}
		lhs, err := toExpr(*n.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := toExpr(*n.Rhs)
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Pos: pos, Op: op, Lhs: lhs, Rhs: rhs}, nil

	case "un":
		op, ok := unaryOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("astjson: unknown unary operator %q", n.Op)
		}
		arg, err := toExpr(*n.Arg)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Pos: pos, Op: op, Arg: arg}, nil

	case "call":
		fn, err := toExpr(*n.Fn)
		if err != nil {
			return nil, err
		}
		args := make([]ast.Expr, 0, len(n.Args))
		for _, a := range n.Args {
			ae, err := toExpr(a)
			if err != nil {
				return nil, err
			}
			args = append(args, ae)
		}
		return &ast.Call{Pos: pos, Fn: fn, Args: args}, nil

	case "fn":
		body, err := toBlock(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Function{Pos: pos, Params: n.Params, Body: body}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown expression kind %q", n.Kind)
	}
}
