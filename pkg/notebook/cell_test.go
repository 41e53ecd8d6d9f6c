package notebook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveTrailingSemicolon(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		want    string
		removed bool
	}{
		{"plain", "plt.show();", "plt.show()", true},
		{"before comment", "x = 1;  # mute", "x = 1  # mute", true},
		{"trailing newline kept", "x = 1;\n", "x = 1\n", true},
		{"no semicolon", "x = 1", "x = 1", false},
		{"interior semicolon ignored", "a = 1; b = 2", "a = 1; b = 2", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, removed := RemoveTrailingSemicolon(tt.src)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.removed, removed)
		})
	}
}

func TestPutTrailingSemicolonBack(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "x = 1;", PutTrailingSemicolonBack("x = 1", true))
	assert.Equal(t, "x = 1;\n", PutTrailingSemicolonBack("x = 1\n", true))
	assert.Equal(t, "x = 1;  # mute", PutTrailingSemicolonBack("x = 1  # mute", true))
	assert.Equal(t, "x = 1", PutTrailingSemicolonBack("x = 1", false))
}

func TestMaskCellMagics(t *testing.T) {
	t.Parallel()

	masked, masks, err := MaskCellMagics("%matplotlib inline\nx = 1")
	require.NoError(t, err)
	require.Len(t, masks, 1)

	lines := strings.Split(masked, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "__magic_"))
	assert.True(t, strings.HasSuffix(lines[0], "__"))
	assert.Equal(t, "x = 1", lines[1])
	assert.Equal(t, "%matplotlib inline", masks[lines[0]])
}

func TestMaskCellMagicsKeepsIndent(t *testing.T) {
	t.Parallel()

	masked, masks, err := MaskCellMagics("for p in paths:\n    !ls {p}")
	require.NoError(t, err)
	require.Len(t, masks, 1)

	lines := strings.Split(masked, "\n")
	assert.True(t, strings.HasPrefix(lines[1], "    __magic_"))
}

func TestMaskCellMagicsRejectsLateCellMagic(t *testing.T) {
	t.Parallel()

	_, _, err := MaskCellMagics("x = 1\n%%timeit\ny = 2")
	require.Error(t, err)
	assert.True(t, IsUnsupportedCell(err))
}

func TestMaskCellMagicsNoMagics(t *testing.T) {
	t.Parallel()

	masked, masks, err := MaskCellMagics("x = 1\ny = 2")
	require.NoError(t, err)
	assert.Empty(t, masks)
	assert.Equal(t, "x = 1\ny = 2", masked)
}

func TestUnmaskCellMagicsRoundTrip(t *testing.T) {
	t.Parallel()

	src := "%load_ext autoreload\n%autoreload 2\nx = 1"
	masked, masks, err := MaskCellMagics(src)
	require.NoError(t, err)
	require.Len(t, masks, 2)

	restored, err := UnmaskCellMagics(masked, masks)
	require.NoError(t, err)
	assert.Equal(t, src, restored)
}

func TestUnmaskCellMagicsRefusesDamage(t *testing.T) {
	t.Parallel()

	masked, masks, err := MaskCellMagics("!ls")
	require.NoError(t, err)
	require.Len(t, masks, 1)
	var mask string
	for m := range masks {
		mask = m
	}

	// Placeholder dropped entirely.
	_, err = UnmaskCellMagics("x = 1", masks)
	assert.True(t, IsUnsupportedCell(err))

	// Placeholder duplicated.
	_, err = UnmaskCellMagics(masked+"\n"+masked, masks)
	assert.True(t, IsUnsupportedCell(err))

	// Placeholder absorbed into an expression.
	_, err = UnmaskCellMagics("x = "+mask, masks)
	assert.True(t, IsUnsupportedCell(err))
}

func TestValidateCell(t *testing.T) {
	t.Parallel()

	magics := DefaultPythonCellMagics()

	assert.NoError(t, ValidateCell("x = 1", magics))
	assert.NoError(t, ValidateCell("%%time\nx = 1", magics))

	err := ValidateCell("%%bash\nls", magics)
	require.Error(t, err)
	assert.True(t, IsUnsupportedCell(err))

	err = ValidateCell("some_object?", magics)
	require.Error(t, err)
	assert.True(t, IsUnsupportedCell(err))
}

func TestValidateCellRejectsStalePlaceholder(t *testing.T) {
	t.Parallel()

	// A placeholder left behind by an earlier run would collide with the
	// masks generated for this one.
	stale := magicMask("%matplotlib inline")
	err := ValidateCell("x = 1\n"+stale, DefaultPythonCellMagics())
	require.Error(t, err)
	assert.True(t, IsUnsupportedCell(err))
}
