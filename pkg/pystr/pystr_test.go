package pystr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		literal string
		want    string
	}{
		{`"plain"`, ""},
		{`r"raw"`, "r"},
		{`Rb"both"`, "Rb"},
		{`f'{x}'`, "f"},
		{`u'legacy'`, "u"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Prefix(tt.literal), tt.literal)
	}
}

func TestHasTripleQuotes(t *testing.T) {
	t.Parallel()

	assert.True(t, HasTripleQuotes(`"""doc"""`))
	assert.True(t, HasTripleQuotes("r'''doc'''"))
	assert.False(t, HasTripleQuotes(`"x"`))
	assert.False(t, HasTripleQuotes("f'x'"))
}

func TestNormalizePrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		literal string
		want    string
	}{
		{"upper f lowered", `F"x"`, `f"x"`},
		{"upper b lowered", `B"x"`, `b"x"`},
		{"legacy u dropped", `u"x"`, `"x"`},
		{"legacy upper u dropped", `U"x"`, `"x"`},
		{"r kept as is", `R"x"`, `R"x"`},
		{"two chars reordered", `bR"x"`, `Rb"x"`},
		{"fr reordered", `fr"{x}"`, `rf"{x}"`},
		{"already canonical", `rb"x"`, `rb"x"`},
		{"no prefix untouched", `"x"`, `"x"`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizePrefix(tt.literal))
		})
	}
}

func TestNormalizeQuotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		literal string
		want    string
	}{
		{"single to double", `'abc'`, `"abc"`},
		{"double stays", `"abc"`, `"abc"`},
		{"escaped quote unescaped on swap", `'it\'s'`, `"it's"`},
		{"swap would add escapes", `'say "hi"'`, `'say "hi"'`},
		{"double with escapes loses them", `"a\"b"`, `'a"b'`},
		{"escaped single becomes bare in double", `'\''`, `"'"`},
		{"double holding single quote stays", `"'"`, `"'"`},
		{"raw converts when safe", `r'abc'`, `r"abc"`},
		{"raw with double quote aborts", `r'say "hi"'`, `r'say "hi"'`},
		{"triple double untouched", `"""doc"""`, `"""doc"""`},
		{"triple single converts", `'''doc'''`, `"""doc"""`},
		{"triple ending in double quote aborts", `'''she said "'''`, `'''she said "'''`},
		{"fstring converts when clean", `f'{x}'`, `f"{x}"`},
		{"fstring nested quote aborts", `f'{"a"}'`, `f'{"a"}'`},
		{"empty string", `''`, `""`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeQuotes(tt.literal))
		})
	}
}

func TestNormalizeFString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		literal string
		want    string
	}{
		{"no fields drops prefix", `f"hello"`, `"hello"`},
		{"doubled braces collapse", `f"{{x}}"`, `"{x}"`},
		{"real field untouched", `f"{x}"`, `f"{x}"`},
		{"mixed field keeps prefix", `f"{{literal}} {x}"`, `f"{{literal}} {x}"`},
		{"not an fstring", `"{{x}}"`, `"{{x}}"`},
		{"raw fstring no fields", `rf"a{{b}}"`, `r"a{b}"`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeFString(tt.literal))
		})
	}
}

func TestFStringSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want []Span
	}{
		{"single field", "{x}", []Span{{0, 3}}},
		{"two fields", "a{x}b{y}", []Span{{1, 4}, {5, 8}}},
		{"doubled braces literal", "{{literal}}", nil},
		{"nested braces one span", "{ {1: 2}[1] }", []Span{{0, 13}}},
		{"string delimiter skipped", `{"}"}`, []Span{{0, 5}}},
		{"no fields", "plain", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FStringSpans(tt.body))
		})
	}
}

func TestFixDocstring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		prefix string
		want   string
	}{
		{
			name:   "single line trimmed",
			body:   "  hello  ",
			prefix: "    ",
			want:   "hello",
		},
		{
			name:   "common indent stripped and reapplied",
			body:   "Summary.\n        detail\n    ",
			prefix: "    ",
			want:   "Summary.\n    detail\n    ",
		},
		{
			name:   "deeper target indent",
			body:   "Summary.\n  detail\n  ",
			prefix: "        ",
			want:   "Summary.\n        detail\n        ",
		},
		{
			name:   "blank interior line emptied",
			body:   "a\n\n  b",
			prefix: "  ",
			want:   "a\n\n  b",
		},
		{
			name:   "leading tabs expanded before measuring",
			body:   "a\n\tb\n        c",
			prefix: "    ",
			want:   "a\n    b\n    c",
		},
		{
			name:   "empty body",
			body:   "",
			prefix: "    ",
			want:   "",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FixDocstring(tt.body, tt.prefix))
		})
	}
}
