package codegen

import "fmt"

// Node is one node of a tier-2 expression parsed from a strategy
// document's entry/exit condition (spec §4.7's DSL: `sma, ema, roc,
// rsi, std, max, min, cross_above, cross_below`, boolean and arithmetic
// operators, no Turing-complete constructs).
type Node interface {
	// Canonical renders a deterministic, whitespace-normalized textual
	// form, relied on for byte-identical output (P2) regardless of the
	// source text's original spacing.
	Canonical() string
	// Identifiers collects every function name and bare identifier
	// referenced transitively, feeding the logic fingerprint (spec §4.7).
	Identifiers() []string
}

type Number float64

func (n Number) Canonical() string    { return fmt.Sprintf("%g", float64(n)) }
func (n Number) Identifiers() []string { return nil }

type Ident string

func (i Ident) Canonical() string     { return string(i) }
func (i Ident) Identifiers() []string { return []string{string(i)} }

// Call is a function application, e.g. rsi(14) or cross_above(a, b).
type Call struct {
	Func string
	Args []Node
}

func (c Call) Canonical() string {
	s := c.Func + "("
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.Canonical()
	}
	return s + ")"
}

func (c Call) Identifiers() []string {
	ids := []string{c.Func}
	for _, a := range c.Args {
		ids = append(ids, a.Identifiers()...)
	}
	return ids
}

// BinOp is a binary arithmetic or boolean operator application.
type BinOp struct {
	Op          string
	Left, Right Node
}

func (b BinOp) Canonical() string {
	return "(" + b.Left.Canonical() + " " + b.Op + " " + b.Right.Canonical() + ")"
}

func (b BinOp) Identifiers() []string {
	return append(b.Left.Identifiers(), b.Right.Identifiers()...)
}

// Neg is unary negation.
type Neg struct{ Operand Node }

func (n Neg) Canonical() string     { return "-" + n.Operand.Canonical() }
func (n Neg) Identifiers() []string { return n.Operand.Identifiers() }
