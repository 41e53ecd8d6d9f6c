// Package formatter orchestrates one formatting run: parse, isolate the
// regions formatting must not touch, render, and prove the result safe
// before anyone sees it.
package formatter

import (
	"strings"

	"github.com/yaklabco/pyfmt/pkg/comments"
	"github.com/yaklabco/pyfmt/pkg/pyparse"
	"github.com/yaklabco/pyfmt/pkg/pytree"
)

// Renderer turns a prepared tree into output text. The concrete
// implementation lives in the render package; the indirection keeps this
// package free of rendering policy.
type Renderer interface {
	Render(tree *pytree.Tree, mode Mode) string
}

// Formatter applies one Mode worth of formatting policy.
type Formatter struct {
	renderer Renderer
}

// New builds a Formatter around r.
func New(r Renderer) *Formatter {
	return &Formatter{renderer: r}
}

// FormatFileContents reformats a whole file. It returns
// ErrNothingChanged when the input is already in canonical form. Unless
// fast is set, the result is checked for equivalence with the input and
// for stability under a second pass before being returned.
func (f *Formatter) FormatFileContents(src string, mode Mode, fast bool) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", ErrNothingChanged
	}

	dst, err := f.formatStr(src, mode)
	if err != nil {
		return "", err
	}
	if dst == src {
		return "", ErrNothingChanged
	}
	if !fast {
		if err := EnsureEquivalent(src, dst); err != nil {
			return "", err
		}
		if err := f.EnsureStable(dst, mode); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func (f *Formatter) formatStr(src string, mode Mode) (string, error) {
	if len(mode.TargetVersions) == 0 {
		mode.TargetVersions = DetectTargetVersions(src)
	}
	tree, err := pyparse.Parse(src)
	if err != nil {
		return "", err
	}
	comments.NormalizeFmtOff(tree)
	return f.renderer.Render(tree, mode), nil
}

// EnsureEquivalent proves dst carries the same program as src by
// comparing canonical token fingerprints.
func EnsureEquivalent(src, dst string) error {
	want, err := pyparse.Structural(src)
	if err != nil {
		// The source parsed a moment ago; failing here means the
		// fingerprint pass itself is broken.
		return &EquivalenceError{Src: src, Dst: dst, Reason: err}
	}
	got, err := pyparse.Structural(dst)
	if err != nil {
		return &EquivalenceError{Src: src, Dst: dst, Reason: err}
	}
	if want != got {
		return &EquivalenceError{Src: src, Dst: dst}
	}
	return nil
}

// EnsureStable proves that formatting dst again reproduces dst.
func (f *Formatter) EnsureStable(dst string, mode Mode) error {
	again, err := f.formatStr(dst, mode)
	if err != nil {
		return &EquivalenceError{Src: dst, Dst: "", Reason: err}
	}
	if again != dst {
		return &StabilityError{First: dst, Second: again}
	}
	return nil
}
