package formatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/pyfmt/pkg/notebook"
	"github.com/yaklabco/pyfmt/pkg/pyparse"
)

// FormatCell reformats one code cell. Magics are masked before parsing
// and restored afterwards; cells the masking cannot round trip safely
// are reported as unchanged.
func (f *Formatter) FormatCell(src string, mode Mode, fast bool) (string, error) {
	magics := mode.PythonCellMagics
	if magics == nil {
		magics = notebook.DefaultPythonCellMagics()
	}
	if err := notebook.ValidateCell(src, magics); err != nil {
		return "", ErrNothingChanged
	}

	stripped, hadSemicolon := notebook.RemoveTrailingSemicolon(src)
	masked, masks, err := notebook.MaskCellMagics(stripped)
	if err != nil {
		return "", ErrNothingChanged
	}

	dst, err := f.FormatFileContents(masked, mode, fast)
	if err != nil {
		if errors.Is(err, ErrNothingChanged) && (hadSemicolon || len(masks) > 0) {
			// The masked text may be canonical while the original cell
			// still differs from it.
			dst = masked
		} else {
			return "", err
		}
	}

	dst = strings.TrimRight(dst, "\n")
	dst, err = notebook.UnmaskCellMagics(dst, masks)
	if err != nil {
		return "", ErrNothingChanged
	}
	dst = notebook.PutTrailingSemicolonBack(dst, hadSemicolon)
	if dst == src {
		return "", ErrNothingChanged
	}
	return dst, nil
}

type ipynbDocument struct {
	raw   map[string]json.RawMessage
	cells []map[string]json.RawMessage
}

// FormatIpynb reformats every code cell of a notebook document. The
// JSON is re-emitted only when at least one cell changed.
func (f *Formatter) FormatIpynb(src string, mode Mode, fast bool) (string, error) {
	doc, err := parseIpynb(src)
	if err != nil {
		return "", err
	}
	if err := validateIpynbMetadata(doc.raw); err != nil {
		return "", err
	}

	changed := false
	for _, cell := range doc.cells {
		var cellType string
		if err := json.Unmarshal(cell["cell_type"], &cellType); err != nil || cellType != "code" {
			continue
		}
		source, asList, err := cellSource(cell["source"])
		if err != nil {
			return "", fmt.Errorf("malformed notebook cell source: %w", err)
		}
		dst, err := f.FormatCell(source, mode, fast)
		if errors.Is(err, ErrNothingChanged) {
			continue
		}
		var invalid *pyparse.InvalidInputError
		if errors.As(err, &invalid) {
			// A cell that does not parse stays as it is; the rest of the
			// notebook still formats.
			continue
		}
		if err != nil {
			return "", err
		}
		cell["source"] = encodeCellSource(dst, asList)
		changed = true
	}
	if !changed {
		return "", ErrNothingChanged
	}

	rawCells, err := json.Marshal(doc.cells)
	if err != nil {
		return "", err
	}
	doc.raw["cells"] = rawCells

	out, err := json.MarshalIndent(doc.raw, "", " ")
	if err != nil {
		return "", err
	}
	text := string(out)
	if strings.HasSuffix(src, "\n") {
		text += "\n"
	}
	return text, nil
}

func parseIpynb(src string) (*ipynbDocument, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		return nil, fmt.Errorf("malformed notebook: %w", err)
	}
	var cells []map[string]json.RawMessage
	if rawCells, ok := raw["cells"]; ok {
		if err := json.Unmarshal(rawCells, &cells); err != nil {
			return nil, fmt.Errorf("malformed notebook cells: %w", err)
		}
	}
	return &ipynbDocument{raw: raw, cells: cells}, nil
}

func validateIpynbMetadata(raw map[string]json.RawMessage) error {
	meta, ok := raw["metadata"]
	if !ok {
		return nil
	}
	var m struct {
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	}
	if err := json.Unmarshal(meta, &m); err != nil {
		return nil
	}
	if m.LanguageInfo.Name != "" && m.LanguageInfo.Name != "python" {
		return ErrNothingChanged
	}
	return nil
}

func cellSource(raw json.RawMessage) (source string, asList bool, err error) {
	if raw == nil {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, false, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", false, err
	}
	return strings.Join(lines, ""), true, nil
}

func encodeCellSource(src string, asList bool) json.RawMessage {
	if !asList {
		out, _ := json.Marshal(src)
		return out
	}
	var lines []string
	rest := src
	for {
		idx := strings.IndexByte(rest, '\n')
		if idx < 0 {
			if rest != "" {
				lines = append(lines, rest)
			}
			break
		}
		lines = append(lines, rest[:idx+1])
		rest = rest[idx+1:]
	}
	out, _ := json.Marshal(lines)
	return out
}
