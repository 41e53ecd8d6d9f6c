package formatter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyfmt/pkg/formatter"
)

func ipynbMode() formatter.Mode {
	mode := formatter.DefaultMode()
	mode.IsIpynb = true
	return mode
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"spacing", "x=1", "x = 1"},
		{"trailing semicolon kept", "plt.show( );", "plt.show();"},
		{"line magic preserved", "%matplotlib inline\nx=1", "%matplotlib inline\nx = 1"},
		{"shell escape preserved", "!pip install requests\nx=1", "!pip install requests\nx = 1"},
		{"python cell magic body formatted", "%%time\nx=1", "%%time\nx = 1"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := newFormatter().FormatCell(tt.src, ipynbMode(), false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCellUnchanged(t *testing.T) {
	t.Parallel()

	f := newFormatter()
	for _, src := range []string{
		"x = 1",
		"%matplotlib inline\nx = 1",
		"plt.show();",
	} {
		_, err := f.FormatCell(src, ipynbMode(), false)
		assert.ErrorIs(t, err, formatter.ErrNothingChanged, "%q", src)
	}
}

func TestFormatCellSkipsUnsupported(t *testing.T) {
	t.Parallel()

	f := newFormatter()
	for _, src := range []string{
		"some_object?",
		"%%bash\nls -la",
		"x = 1\n%%timeit\ny = 2",
	} {
		_, err := f.FormatCell(src, ipynbMode(), false)
		assert.ErrorIs(t, err, formatter.ErrNothingChanged, "%q", src)
	}
}

const sampleNotebook = `{
 "cells": [
  {
   "cell_type": "code",
   "execution_count": null,
   "metadata": {},
   "outputs": [],
   "source": ["x=1\n", "y  = 2"]
  },
  {
   "cell_type": "markdown",
   "metadata": {},
   "source": ["# A heading\n"]
  }
 ],
 "metadata": {
  "language_info": {
   "name": "python"
  }
 },
 "nbformat": 4,
 "nbformat_minor": 5
}
`

func TestFormatIpynb(t *testing.T) {
	t.Parallel()

	got, err := newFormatter().FormatIpynb(sampleNotebook, ipynbMode(), false)
	require.NoError(t, err)

	assert.Contains(t, got, `"x = 1\n"`)
	assert.Contains(t, got, `"y = 2"`)
	assert.NotContains(t, got, `"x=1\n"`)
	assert.Contains(t, got, "# A heading")
	assert.True(t, strings.HasSuffix(got, "\n"))
}

func TestFormatIpynbUnparseableCellLeftAlone(t *testing.T) {
	t.Parallel()

	nb := `{
 "cells": [
  {
   "cell_type": "code",
   "metadata": {},
   "outputs": [],
   "source": ["x = (1"]
  },
  {
   "cell_type": "code",
   "metadata": {},
   "outputs": [],
   "source": ["y  = 2"]
  }
 ],
 "metadata": {"language_info": {"name": "python"}},
 "nbformat": 4,
 "nbformat_minor": 5
}
`
	got, err := newFormatter().FormatIpynb(nb, ipynbMode(), false)
	require.NoError(t, err)

	// The broken cell keeps its bytes while the rest still formats.
	assert.Contains(t, got, `"x = (1"`)
	assert.Contains(t, got, `"y = 2"`)
	assert.NotContains(t, got, `"y  = 2"`)
}

func TestFormatIpynbUnchanged(t *testing.T) {
	t.Parallel()

	clean := strings.Replace(sampleNotebook, `["x=1\n", "y  = 2"]`, `["x = 1\n", "y = 2"]`, 1)
	_, err := newFormatter().FormatIpynb(clean, ipynbMode(), false)
	assert.ErrorIs(t, err, formatter.ErrNothingChanged)
}

func TestFormatIpynbStringSource(t *testing.T) {
	t.Parallel()

	nb := strings.Replace(sampleNotebook, `["x=1\n", "y  = 2"]`, `"x=1"`, 1)
	got, err := newFormatter().FormatIpynb(nb, ipynbMode(), false)
	require.NoError(t, err)

	// A string cell source stays a string rather than becoming a list.
	assert.Contains(t, got, `"source": "x = 1"`)
}

func TestFormatIpynbNonPython(t *testing.T) {
	t.Parallel()

	nb := strings.Replace(sampleNotebook, `"name": "python"`, `"name": "julia"`, 1)
	_, err := newFormatter().FormatIpynb(nb, ipynbMode(), false)
	assert.ErrorIs(t, err, formatter.ErrNothingChanged)
}

func TestFormatIpynbMalformed(t *testing.T) {
	t.Parallel()

	_, err := newFormatter().FormatIpynb("not json", ipynbMode(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed notebook")
}
