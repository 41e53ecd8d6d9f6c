package render

import "github.com/yaklabco/pyfmt/pkg/pytree"

// operatorKeywords are names that sit in operator position, so the token
// after them starts a fresh operand. None, True, False and Ellipsis are
// deliberately absent: they are operands.
var operatorKeywords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

type bracketFrame struct {
	open      pytree.Kind
	colonSeen bool // a ':' since the last ',' at this level
}

type lambdaFrame struct {
	depth int
}

// lineState carries the left context needed to place spaces. It is
// rebuilt for every physical line.
type lineState struct {
	brackets  []bracketFrame
	lambdas   []lambdaFrame
	started   bool
	prevKind  pytree.Kind
	prevValue string
	prevUnary bool // previous token was a prefix operator
}

func (s *lineState) top() *bracketFrame {
	if len(s.brackets) == 0 {
		return nil
	}
	return &s.brackets[len(s.brackets)-1]
}

// operandEnd reports whether the previous token can end an operand, i.e.
// an operator following it is binary.
func (s *lineState) operandEnd() bool {
	switch s.prevKind {
	case pytree.KindNumber, pytree.KindString,
		pytree.KindRPar, pytree.KindRSqb, pytree.KindRBrace:
		return true
	case pytree.KindName:
		return !operatorKeywords[s.prevValue]
	case pytree.KindOp:
		return s.prevValue == "..."
	}
	return false
}

func (s *lineState) inLambdaParams() bool {
	return len(s.lambdas) > 0 &&
		s.lambdas[len(s.lambdas)-1].depth == len(s.brackets)
}

// needSpace decides whether a space separates the previous token from
// the one about to be written.
func (s *lineState) needSpace(kind pytree.Kind, value string) bool {
	if !s.started {
		return false
	}

	// Tokens that never take a space before them.
	switch kind {
	case pytree.KindComma, pytree.KindSemi, pytree.KindColon,
		pytree.KindRPar, pytree.KindRSqb, pytree.KindRBrace:
		return false
	case pytree.KindDot:
		// "from . import x" keeps the dot free standing.
		return s.prevKind == pytree.KindName && operatorKeywords[s.prevValue]
	}

	switch s.prevKind {
	case pytree.KindLPar, pytree.KindLSqb, pytree.KindLBrace:
		return false
	case pytree.KindDot:
		return kind == pytree.KindName && value == "import"
	case pytree.KindComma, pytree.KindSemi:
		return true
	case pytree.KindColon:
		// Tight colons inside subscripts, spaced everywhere else.
		top := s.top()
		return top == nil || top.open != pytree.KindLSqb
	}

	if s.prevKind == pytree.KindOp {
		switch s.prevValue {
		case "**":
			return false
		case "+", "-", "~", "*", "@":
			if s.prevUnary {
				return false
			}
		case "=":
			if s.tightEquals() {
				return false
			}
		}
	}

	switch kind {
	case pytree.KindLPar, pytree.KindLSqb:
		// Calls and subscripts hug their target.
		return !s.operandEnd()
	case pytree.KindOp:
		switch value {
		case "**":
			return false
		case "=":
			return !s.tightEqualsNext()
		}
	}
	return true
}

// tightEquals reports whether the "=" just written was a keyword
// argument equals, which binds tightly.
func (s *lineState) tightEquals() bool {
	if s.inLambdaParams() {
		return true
	}
	top := s.top()
	return top != nil && top.open == pytree.KindLPar && !top.colonSeen
}

// tightEqualsNext is tightEquals for an "=" about to be written; the
// state has not advanced yet so the same predicate applies.
func (s *lineState) tightEqualsNext() bool { return s.tightEquals() }

// advance folds a freshly written token into the state.
func (s *lineState) advance(kind pytree.Kind, value string) {
	unary := false
	switch kind {
	case pytree.KindLPar, pytree.KindLSqb, pytree.KindLBrace:
		s.brackets = append(s.brackets, bracketFrame{open: kind})
	case pytree.KindRPar, pytree.KindRSqb, pytree.KindRBrace:
		if len(s.brackets) > 0 {
			s.brackets = s.brackets[:len(s.brackets)-1]
		}
	case pytree.KindComma:
		if top := s.top(); top != nil {
			top.colonSeen = false
		}
	case pytree.KindColon:
		if top := s.top(); top != nil {
			top.colonSeen = true
		}
		if s.inLambdaParams() {
			s.lambdas = s.lambdas[:len(s.lambdas)-1]
		}
	case pytree.KindName:
		if value == "lambda" {
			s.lambdas = append(s.lambdas, lambdaFrame{depth: len(s.brackets)})
		}
	case pytree.KindOp:
		switch value {
		case "+", "-", "~", "*", "**":
			unary = !s.operandEnd()
		case "@":
			unary = !s.started
		}
	}
	s.prevKind = kind
	s.prevValue = value
	s.prevUnary = unary
	s.started = true
}
