package pytree

// Kind identifies what a tree node is. Leaf kinds correspond to token
// categories produced by the tokenizer; composite kinds are grammar-rule
// tags. The set is closed: classification logic switches over it
// exhaustively.
type Kind int

const (
	// KindInvalid is the zero value and never appears in a valid tree.
	KindInvalid Kind = iota

	// Leaf kinds.

	// KindName is an identifier or keyword.
	KindName

	// KindNumber is a numeric literal.
	KindNumber

	// KindString is a string literal, including its prefix and quotes.
	KindString

	// KindOp is an operator token (+, ==, ->, :=, ...).
	KindOp

	// KindLPar, KindRPar, KindLSqb, KindRSqb, KindLBrace and KindRBrace
	// are the bracket tokens. They get their own kinds because bracket
	// nesting drives both the tokenizer and the spacing policy.
	KindLPar
	KindRPar
	KindLSqb
	KindRSqb
	KindLBrace
	KindRBrace

	// KindComma, KindColon, KindSemi and KindDot are punctuation with
	// dedicated spacing rules.
	KindComma
	KindColon
	KindSemi
	KindDot

	// KindNewline terminates a logical line. Its value is "\n".
	KindNewline

	// KindEndMarker is the synthetic end-of-input leaf. Trailing comments
	// and blank lines live in its prefix.
	KindEndMarker

	// KindFrozen is a synthetic leaf substituted for a span of nodes whose
	// original text must be rendered verbatim (fmt: off/on and fmt: skip
	// regions). Its value holds the exact original rendering.
	KindFrozen

	// Composite kinds.

	// KindFile is the root node of a parsed source file.
	KindFile

	// KindStatement is one logical line, simple or compound. A compound
	// statement's indented block appears as a trailing KindSuite child.
	KindStatement

	// KindSuite is an indented block of statements.
	KindSuite
)

// IsLeaf reports whether nodes of this kind are leaves.
func (k Kind) IsLeaf() bool {
	switch k {
	case KindFile, KindStatement, KindSuite:
		return false
	default:
		return k != KindInvalid
	}
}

// IsBracketOpen reports whether the kind opens a bracket pair.
func (k Kind) IsBracketOpen() bool {
	return k == KindLPar || k == KindLSqb || k == KindLBrace
}

// IsBracketClose reports whether the kind closes a bracket pair.
func (k Kind) IsBracketClose() bool {
	return k == KindRPar || k == KindRSqb || k == KindRBrace
}

// String returns a short name for debugging output.
func (k Kind) String() string {
	switch k {
	case KindName:
		return "NAME"
	case KindNumber:
		return "NUMBER"
	case KindString:
		return "STRING"
	case KindOp:
		return "OP"
	case KindLPar:
		return "LPAR"
	case KindRPar:
		return "RPAR"
	case KindLSqb:
		return "LSQB"
	case KindRSqb:
		return "RSQB"
	case KindLBrace:
		return "LBRACE"
	case KindRBrace:
		return "RBRACE"
	case KindComma:
		return "COMMA"
	case KindColon:
		return "COLON"
	case KindSemi:
		return "SEMI"
	case KindDot:
		return "DOT"
	case KindNewline:
		return "NEWLINE"
	case KindEndMarker:
		return "ENDMARKER"
	case KindFrozen:
		return "FROZEN"
	case KindFile:
		return "file"
	case KindStatement:
		return "stmt"
	case KindSuite:
		return "suite"
	default:
		return "INVALID"
	}
}
