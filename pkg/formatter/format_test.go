package formatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyfmt/pkg/formatter"
	"github.com/yaklabco/pyfmt/pkg/pyparse"
	"github.com/yaklabco/pyfmt/pkg/pytree"
	"github.com/yaklabco/pyfmt/pkg/render"
)

func newFormatter() *formatter.Formatter {
	return formatter.New(render.New())
}

func TestFormatFileContents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"spacing", "x=1\n", "x = 1\n"},
		{"strings", "x = 'a'\n", "x = \"a\"\n"},
		{"blank lines", "x = 1\n\n\n\n\ny = 2\n", "x = 1\n\n\ny = 2\n"},
		{"def spacing", "import os\ndef f():\n    pass\n", "import os\n\n\ndef f():\n    pass\n"},
		{"missing final newline", "x = 1", "x = 1\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := newFormatter().FormatFileContents(tt.src, formatter.DefaultMode(), false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFileContentsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFormatter()
	sources := []string{
		"x=1\n",
		"def f( a,b ):\n    return a+b\n",
		"class C:\n    '''Doc.'''\n    def m(self):\n        pass\n",
		"# fmt: off\nx  =  1\n# fmt: on\ny=2\n",
		"x = { 'a' : 1 }\nif x:\n    del x['a']\n",
	}
	for _, src := range sources {
		first, err := f.FormatFileContents(src, formatter.DefaultMode(), false)
		require.NoError(t, err, src)

		_, err = f.FormatFileContents(first, formatter.DefaultMode(), false)
		assert.ErrorIs(t, err, formatter.ErrNothingChanged, src)
	}
}

func TestFormatFileContentsRegionInsideBrackets(t *testing.T) {
	t.Parallel()

	// Disable markers between brackets, enable markers mid-expression and
	// a region straddling an elif chain. Canonical input passes through
	// untouched with the safety checks on.
	src := "setup(\n" +
		"    entry_points={\n" +
		"        # fmt: off\n" +
		"        \"console_scripts\": [\n" +
		"            \"foo-bar\"\n" +
		"            \"=foo.bar.:main\",\n" +
		"        # fmt: on\n" +
		"        ]\n" +
		"    },\n" +
		")\n" +
		"\n" +
		"\n" +
		"run(\n" +
		"    # fmt: off\n" +
		"    [\n" +
		"        \"ls\",\n" +
		"        \"-la\",\n" +
		"    ]\n" +
		"    # fmt: on\n" +
		"    + path,\n" +
		"    check=True,\n" +
		")\n" +
		"\n" +
		"\n" +
		"def test_func():\n" +
		"    # yapf: disable\n" +
		"    if a:\n" +
		"        return True\n" +
		"    # yapf: enable\n" +
		"    elif b:\n" +
		"        return True\n" +
		"\n" +
		"    return False\n"

	f := newFormatter()
	_, err := f.FormatFileContents(src, formatter.DefaultMode(), false)
	assert.ErrorIs(t, err, formatter.ErrNothingChanged)
}

func TestFormatFileContentsRegionInsideBracketsReformatsNeighbours(t *testing.T) {
	t.Parallel()

	src := "x   = 1\n" +
		"setup(\n" +
		"    entry_points={\n" +
		"        # fmt: off\n" +
		"        \"console_scripts\": [\n" +
		"            \"foo-bar\",\n" +
		"        # fmt: on\n" +
		"        ]\n" +
		"    },\n" +
		")\n" +
		"y   = 2\n"

	got, err := newFormatter().FormatFileContents(src, formatter.DefaultMode(), false)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n"+
		"setup(\n"+
		"    entry_points={\n"+
		"        # fmt: off\n"+
		"        \"console_scripts\": [\n"+
		"            \"foo-bar\",\n"+
		"        # fmt: on\n"+
		"        ]\n"+
		"    },\n"+
		")\n"+
		"y = 2\n", got)
}

func TestFormatFileContentsNothingChanged(t *testing.T) {
	t.Parallel()

	f := newFormatter()
	for _, src := range []string{"", "   \n\t\n", "x = 1\n"} {
		_, err := f.FormatFileContents(src, formatter.DefaultMode(), false)
		assert.ErrorIs(t, err, formatter.ErrNothingChanged, "%q", src)
	}
}

func TestFormatFileContentsInvalidInput(t *testing.T) {
	t.Parallel()

	f := newFormatter()
	_, err := f.FormatFileContents("x = (1\n", formatter.DefaultMode(), false)

	var invalid *pyparse.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.False(t, formatter.IsInternalFault(err))
}

// stubRenderer replays a fixed sequence of outputs, one per Render call.
type stubRenderer struct {
	outputs []string
	calls   int
}

func (r *stubRenderer) Render(_ *pytree.Tree, _ formatter.Mode) string {
	out := r.outputs[r.calls%len(r.outputs)]
	r.calls++
	return out
}

func TestEquivalenceCheckCatchesBadOutput(t *testing.T) {
	t.Parallel()

	f := formatter.New(&stubRenderer{outputs: []string{"y = 2\n"}})
	_, err := f.FormatFileContents("x = 1\n", formatter.DefaultMode(), false)

	var eq *formatter.EquivalenceError
	require.ErrorAs(t, err, &eq)
	assert.True(t, formatter.IsInternalFault(err))
	assert.Contains(t, err.Error(), "INTERNAL ERROR")
}

func TestFastModeSkipsSafetyChecks(t *testing.T) {
	t.Parallel()

	f := formatter.New(&stubRenderer{outputs: []string{"y = 2\n"}})
	got, err := f.FormatFileContents("x = 1\n", formatter.DefaultMode(), true)
	require.NoError(t, err)
	assert.Equal(t, "y = 2\n", got)
}

func TestStabilityCheckCatchesOscillation(t *testing.T) {
	t.Parallel()

	// Equivalent on the first pass, different again on the second.
	f := formatter.New(&stubRenderer{outputs: []string{"x = 1\n", "x  = 1\n"}})
	_, err := f.FormatFileContents("x=1\n", formatter.DefaultMode(), false)

	var st *formatter.StabilityError
	require.ErrorAs(t, err, &st)
	assert.True(t, formatter.IsInternalFault(err))
	assert.Equal(t, "x = 1\n", st.First)
	assert.Equal(t, "x  = 1\n", st.Second)
}

func TestEnsureEquivalent(t *testing.T) {
	t.Parallel()

	assert.NoError(t, formatter.EnsureEquivalent("x=1\n", "x = 1\n"))
	assert.NoError(t, formatter.EnsureEquivalent("x = 'a'\n", "x = \"a\"\n"))

	err := formatter.EnsureEquivalent("x = 1\n", "x = 2\n")
	var eq *formatter.EquivalenceError
	assert.ErrorAs(t, err, &eq)
}

func TestIsInternalFault(t *testing.T) {
	t.Parallel()

	assert.True(t, formatter.IsInternalFault(&formatter.EquivalenceError{}))
	assert.True(t, formatter.IsInternalFault(&formatter.StabilityError{}))
	assert.False(t, formatter.IsInternalFault(formatter.ErrNothingChanged))
	assert.False(t, formatter.IsInternalFault(nil))
}
