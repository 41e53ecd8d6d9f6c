package formatter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// TargetVersion is a Python minor release the output must stay
// compatible with.
type TargetVersion int

const (
	Py33 TargetVersion = iota
	Py34
	Py35
	Py36
	Py37
	Py38
	Py39
	Py310
	Py311
	Py312
	Py313
)

var versionNames = map[TargetVersion]string{
	Py33: "py33", Py34: "py34", Py35: "py35", Py36: "py36",
	Py37: "py37", Py38: "py38", Py39: "py39", Py310: "py310",
	Py311: "py311", Py312: "py312", Py313: "py313",
}

func (v TargetVersion) String() string {
	if s, ok := versionNames[v]; ok {
		return s
	}
	return fmt.Sprintf("TargetVersion(%d)", int(v))
}

// ParseTargetVersion resolves a name such as "py38". The match is case
// insensitive.
func ParseTargetVersion(name string) (TargetVersion, error) {
	lower := strings.ToLower(name)
	for v, s := range versionNames {
		if s == lower {
			return v, nil
		}
	}
	return 0, fmt.Errorf("invalid target version %q", name)
}

// AllTargetVersions lists every supported version in ascending order.
func AllTargetVersions() []TargetVersion {
	out := make([]TargetVersion, 0, len(versionNames))
	for v := range versionNames {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultLineLength is the width the formatter aims for.
const DefaultLineLength = 88

// Mode carries every switch that changes the output. Two runs with the
// same Mode and the same input produce the same bytes.
type Mode struct {
	TargetVersions      map[TargetVersion]bool
	LineLength          int
	IsPyi               bool
	IsIpynb             bool
	StringNormalization bool
	MagicTrailingComma  bool
	Preview             bool
	PythonCellMagics    map[string]bool
}

// DefaultMode mirrors the command line defaults.
func DefaultMode() Mode {
	return Mode{
		LineLength:          DefaultLineLength,
		StringNormalization: true,
		MagicTrailingComma:  true,
	}
}

// CacheKey folds the mode into a short stable digest. Formatting results
// cached under one key must never be reused under another.
func (m Mode) CacheKey() string {
	versions := make([]string, 0, len(m.TargetVersions))
	for v, on := range m.TargetVersions {
		if on {
			versions = append(versions, v.String())
		}
	}
	sort.Strings(versions)

	magics := make([]string, 0, len(m.PythonCellMagics))
	for magic := range m.PythonCellMagics {
		magics = append(magics, magic)
	}
	sort.Strings(magics)

	raw := fmt.Sprintf("%s|%d|%t|%t|%t|%t|%t|%s",
		strings.Join(versions, ","), m.LineLength,
		m.IsPyi, m.IsIpynb, m.StringNormalization,
		m.MagicTrailingComma, m.Preview, strings.Join(magics, ","))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:8])
}

var (
	fstringPat    = regexp.MustCompile(`(?i)(^|[^\w"'])[furb]*f[furb]*['"]`)
	walrusPat     = regexp.MustCompile(`:=`)
	underscorePat = regexp.MustCompile(`\b\d[\d_]*_\d`)
)

// DetectTargetVersions guesses the oldest versions a source still
// supports from the syntax it uses. Used when no target is configured.
func DetectTargetVersions(src string) map[TargetVersion]bool {
	min := Py33
	if fstringPat.MatchString(src) || underscorePat.MatchString(src) {
		min = Py36
	}
	if walrusPat.MatchString(src) {
		min = Py38
	}
	out := make(map[TargetVersion]bool)
	for _, v := range AllTargetVersions() {
		if v >= min {
			out[v] = true
		}
	}
	return out
}
